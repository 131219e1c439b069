package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	OutboxStatusNew       = "NEW"
	OutboxStatusPublished = "PUBLISHED"

	EventOrderPlaced = "order.placed"
)

type OutboxRecord struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	Status        string
	DedupeKey     string
	CreatedAt     time.Time
	PublishedAt   *time.Time
}

// NewOrderPlacedRecord builds the event that announces a committed order.
func NewOrderPlacedRecord(order Order) (OutboxRecord, error) {
	lessonIDs := make([]string, len(order.LessonIDs))
	for i, id := range order.LessonIDs {
		lessonIDs[i] = id.Hex()
	}
	payload, err := json.Marshal(map[string]interface{}{
		"order_id":   order.ID.Hex(),
		"lesson_ids": lessonIDs,
		"order_date": order.OrderDate.Format(time.RFC3339),
	})
	if err != nil {
		return OutboxRecord{}, err
	}
	return OutboxRecord{
		ID:            uuid.New(),
		AggregateType: "order",
		AggregateID:   order.ID.Hex(),
		EventType:     EventOrderPlaced,
		Payload:       payload,
		Status:        OutboxStatusNew,
		DedupeKey:     uuid.New().String(),
		CreatedAt:     order.OrderDate,
	}, nil
}
