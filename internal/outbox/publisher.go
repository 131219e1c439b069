// Package outbox relays order events committed alongside orders to the
// message broker.
package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
)

const batchSize = 10

type Source interface {
	GetUnpublishedOutbox(ctx context.Context, limit int) ([]domain.OutboxRecord, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
}

type Broker interface {
	Publish(ctx context.Context, routingKey, messageID string, body []byte) error
}

type Relay struct {
	source Source
	broker Broker
	logger observability.Logger
	now    func() time.Time
}

func NewRelay(source Source, broker Broker, logger observability.Logger) *Relay {
	return &Relay{source: source, broker: broker, logger: logger, now: time.Now}
}

func (r *Relay) Run(ctx context.Context, interval time.Duration) {
	r.logger.WithField("interval", interval.String()).Info("outbox relay started")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := r.RunOnce(ctx); err != nil {
				r.logger.WithError(err).Error("outbox relay pass failed")
			}
		}
	}
}

// RunOnce publishes one batch and returns how many records were marked
// published. A record that fails to publish stays NEW for the next pass.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	records, err := r.source.GetUnpublishedOutbox(ctx, batchSize)
	if err != nil {
		return 0, err
	}

	published := 0
	for _, rec := range records {
		log := r.logger.WithField("outbox_id", rec.ID.String()).WithField("event_type", rec.EventType)
		if err := r.broker.Publish(ctx, rec.EventType, rec.DedupeKey, rec.Payload); err != nil {
			observability.RabbitPublishFailures.Inc()
			log.WithError(err).Warn("failed to publish outbox record")
			continue
		}
		now := r.now()
		if err := r.source.MarkPublished(ctx, rec.ID, now); err != nil {
			log.WithError(err).Error("failed to mark outbox record published")
			continue
		}
		if published == 0 {
			observability.OutboxLag.Set(now.Sub(rec.CreatedAt).Seconds())
		}
		published++
	}
	return published, nil
}
