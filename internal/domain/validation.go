package domain

import (
	"math"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IsValidID reports whether s is an ObjectID in its canonical hex form.
// Uppercase hex parses but does not round-trip, so it is rejected.
func IsValidID(s string) bool {
	oid, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return false
	}
	return oid.Hex() == s
}

func ParseID(s string) (primitive.ObjectID, error) {
	if !IsValidID(s) {
		return primitive.NilObjectID, ErrInvalidLessonID
	}
	oid, _ := primitive.ObjectIDFromHex(s)
	return oid, nil
}

// Validate checks the payload shape and returns the parsed lesson ids in
// request order. Repeated ids are kept: each occurrence books one seat.
func (r OrderRequest) Validate() ([]primitive.ObjectID, error) {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Phone) == "" || len(r.LessonIDs) == 0 {
		return nil, ErrInvalidOrder
	}
	ids := make([]primitive.ObjectID, 0, len(r.LessonIDs))
	for _, raw := range r.LessonIDs {
		id, err := ParseID(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ParseSpaces accepts any non-negative whole number, e.g. 3 or 3.0.
func ParseSpaces(v float64) (int, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v != math.Trunc(v) || v > math.MaxInt32 {
		return 0, ErrInvalidSpaces
	}
	return int(v), nil
}

// CountIDs returns how many seats each distinct lesson needs, plus the
// distinct ids in first-seen order.
func CountIDs(ids []primitive.ObjectID) (map[primitive.ObjectID]int, []primitive.ObjectID) {
	counts := make(map[primitive.ObjectID]int, len(ids))
	distinct := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if counts[id] == 0 {
			distinct = append(distinct, id)
		}
		counts[id]++
	}
	return counts, distinct
}
