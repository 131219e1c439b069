package mongo

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OutboxRepository struct {
	coll *mongo.Collection
}

func NewOutboxRepository(s *Store) *OutboxRepository {
	return &OutboxRepository{coll: s.db.Collection(outboxCollection)}
}

type outboxDoc struct {
	ID            string     `bson:"_id"`
	AggregateType string     `bson:"aggregate_type"`
	AggregateID   string     `bson:"aggregate_id"`
	EventType     string     `bson:"event_type"`
	Payload       []byte     `bson:"payload"`
	Status        string     `bson:"status"` // NEW, PUBLISHED
	DedupeKey     string     `bson:"dedupe_key"`
	CreatedAt     time.Time  `bson:"created_at"`
	PublishedAt   *time.Time `bson:"published_at,omitempty"`
}

func (r *OutboxRepository) InsertOutbox(ctx context.Context, record domain.OutboxRecord) error {
	_, err := r.coll.InsertOne(ctx, outboxDoc{
		ID:            record.ID.String(),
		AggregateType: record.AggregateType,
		AggregateID:   record.AggregateID,
		EventType:     record.EventType,
		Payload:       record.Payload,
		Status:        domain.OutboxStatusNew,
		DedupeKey:     record.DedupeKey,
		CreatedAt:     record.CreatedAt,
	})
	return err
}

func (r *OutboxRepository) GetUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxRecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetLimit(int64(limit))
	cur, err := r.coll.Find(ctx, bson.M{"status": domain.OutboxStatusNew}, opts)
	if err != nil {
		return nil, err
	}
	var docs []outboxDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	records := make([]domain.OutboxRecord, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "outbox record %q", d.ID)
		}
		records = append(records, domain.OutboxRecord{
			ID:            id,
			AggregateType: d.AggregateType,
			AggregateID:   d.AggregateID,
			EventType:     d.EventType,
			Payload:       d.Payload,
			Status:        d.Status,
			DedupeKey:     d.DedupeKey,
			CreatedAt:     d.CreatedAt,
			PublishedAt:   d.PublishedAt,
		})
	}
	return records, nil
}

func (r *OutboxRepository) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"status": domain.OutboxStatusPublished, "published_at": publishedAt}},
	)
	return err
}
