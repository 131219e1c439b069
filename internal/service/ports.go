package service

import (
	"context"

	"github.com/robertarktes/after-school-classes/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type LessonRepository interface {
	ListLessons(ctx context.Context) ([]domain.Lesson, error)
	SearchLessons(ctx context.Context, query string) ([]domain.Lesson, error)
	FindLessonsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Lesson, error)
	// DecrementSpaces takes one seat, failing with domain.ErrFullyBooked when
	// the lesson has none left.
	DecrementSpaces(ctx context.Context, id primitive.ObjectID) error
	// SetSpaces reports whether a lesson with id exists.
	SetSpaces(ctx context.Context, id primitive.ObjectID, spaces int) (bool, error)
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order domain.Order) error
}

type OutboxWriter interface {
	InsertOutbox(ctx context.Context, record domain.OutboxRecord) error
}

// TxRunner runs fn as one atomic unit. Repository calls made with the ctx
// passed to fn take part in the transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLogger interface {
	LogOrder(ctx context.Context, order domain.Order) error
	LogSpacesUpdate(ctx context.Context, lessonID primitive.ObjectID, spaces int) error
}

type nopAudit struct{}

func (nopAudit) LogOrder(context.Context, domain.Order) error { return nil }

func (nopAudit) LogSpacesUpdate(context.Context, primitive.ObjectID, int) error { return nil }
