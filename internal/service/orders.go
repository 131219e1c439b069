package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/after-school-classes/internal/domain"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type OrderService struct {
	tx      TxRunner
	lessons LessonRepository
	orders  OrderRepository
	outbox  OutboxWriter
	audit   AuditLogger
	logger  observability.Logger
	now     func() time.Time
}

func NewOrderService(tx TxRunner, lessons LessonRepository, orders OrderRepository, outbox OutboxWriter, audit AuditLogger, logger observability.Logger) *OrderService {
	if audit == nil {
		audit = nopAudit{}
	}
	return &OrderService{
		tx:      tx,
		lessons: lessons,
		orders:  orders,
		outbox:  outbox,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the clock used for order timestamps.
func (s *OrderService) WithClock(now func() time.Time) {
	s.now = now
}

// PlaceOrder books one seat per requested lesson id and records the order.
// Either everything commits or nothing does.
func (s *OrderService) PlaceOrder(ctx context.Context, req domain.OrderRequest) (*domain.Order, error) {
	ctx, span := otel.Tracer("service").Start(ctx, "OrderService.PlaceOrder")
	defer span.End()

	ids, err := req.Validate()
	if err != nil {
		observability.OrdersTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	span.SetAttributes(attribute.Int("order.lessons", len(ids)))

	var order domain.Order
	start := time.Now()
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		wanted, distinct := domain.CountIDs(ids)

		lessons, err := s.lessons.FindLessonsByIDs(ctx, distinct)
		if err != nil {
			return errors.Wrap(err, "find lessons")
		}
		if len(lessons) != len(distinct) {
			return domain.ErrLessonsNotFound
		}
		for _, l := range lessons {
			if l.Spaces < wanted[l.ID] {
				return domain.ErrFullyBooked
			}
		}

		order = domain.NewOrder(req.Name, req.Phone, ids, s.now().UTC())
		if err := s.orders.CreateOrder(ctx, order); err != nil {
			return errors.Wrap(err, "insert order")
		}
		for _, id := range ids {
			if err := s.lessons.DecrementSpaces(ctx, id); err != nil {
				return errors.Wrapf(err, "decrement spaces of %s", id.Hex())
			}
		}

		record, err := domain.NewOrderPlacedRecord(order)
		if err != nil {
			return errors.Wrap(err, "build outbox record")
		}
		return errors.Wrap(s.outbox.InsertOutbox(ctx, record), "insert outbox")
	})
	observability.DBTxDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		observability.OrdersTotal.WithLabelValues(orderResult(err)).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	observability.OrdersTotal.WithLabelValues("placed").Inc()

	log := s.logger.WithField("order_id", order.ID.Hex())
	if err := s.audit.LogOrder(ctx, order); err != nil {
		log.WithError(err).Warn("failed to audit order")
	}
	log.WithField("lessons", len(order.LessonIDs)).Info("order placed")
	return &order, nil
}

func orderResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrUnavailable):
		return "fully_booked"
	default:
		return "error"
	}
}
