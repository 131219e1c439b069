package domain

import (
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Lesson is a bookable class offering. Attributes holds any descriptive
// fields beyond the ones the booking flow cares about.
type Lesson struct {
	ID         primitive.ObjectID
	Subject    string
	Location   string
	Price      float64
	Spaces     int
	Attributes map[string]interface{}
}

// MarshalJSON flattens Attributes next to the known fields so clients see the
// lesson document as it is stored.
func (l Lesson) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(l.Attributes)+5)
	for k, v := range l.Attributes {
		out[k] = v
	}
	out["_id"] = l.ID.Hex()
	out["subject"] = l.Subject
	out["location"] = l.Location
	out["price"] = l.Price
	out["spaces"] = l.Spaces
	return json.Marshal(out)
}
