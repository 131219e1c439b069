package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Order struct {
	ID        primitive.ObjectID
	Name      string
	Phone     string
	LessonIDs []primitive.ObjectID
	OrderDate time.Time
}

func NewOrder(name, phone string, lessonIDs []primitive.ObjectID, now time.Time) Order {
	return Order{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Phone:     phone,
		LessonIDs: lessonIDs,
		OrderDate: now,
	}
}

// OrderRequest is the client payload for placing an order, before validation.
type OrderRequest struct {
	Name      string
	Phone     string
	LessonIDs []string
}
