package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type AuditLogger struct {
	coll *mongo.Collection
}

func NewAuditLogger(s *Store) *AuditLogger {
	return &AuditLogger{coll: s.db.Collection(auditCollection)}
}

type AuditLog struct {
	ID        string    `bson:"_id"`
	Action    string    `bson:"action"`
	Subject   string    `bson:"subject"`
	Timestamp time.Time `bson:"timestamp"`
	Data      bson.M    `bson:"data"`
}

func (a *AuditLogger) LogEvent(ctx context.Context, action, subject string, data bson.M) error {
	log := AuditLog{
		ID:        uuid.New().String(),
		Action:    action,
		Subject:   subject,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	_, err := a.coll.InsertOne(ctx, log)
	return errors.Wrapf(err, "insert audit log %s", action)
}

func (a *AuditLogger) LogOrder(ctx context.Context, order domain.Order) error {
	return a.LogEvent(ctx, domain.EventOrderPlaced, order.ID.Hex(), bson.M{
		"lesson_ids": order.LessonIDs,
		"order_date": order.OrderDate,
	})
}

func (a *AuditLogger) LogSpacesUpdate(ctx context.Context, lessonID primitive.ObjectID, spaces int) error {
	return a.LogEvent(ctx, "lesson.spaces_updated", lessonID.Hex(), bson.M{"spaces": spaces})
}
