// Package memory is an in-process implementation of the persistence ports.
// Transactions are serialized by a single mutex and rolled back by restoring a
// snapshot, which is enough to exercise the booking rules without MongoDB.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/robertarktes/after-school-classes/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Store struct {
	mu      sync.Mutex
	ready   atomic.Bool
	lessons map[primitive.ObjectID]domain.Lesson
	order   []primitive.ObjectID
	orders  []domain.Order
	outbox  []domain.OutboxRecord
}

func NewStore(lessons ...domain.Lesson) *Store {
	s := &Store{lessons: make(map[primitive.ObjectID]domain.Lesson)}
	for _, l := range lessons {
		s.lessons[l.ID] = l
		s.order = append(s.order, l.ID)
	}
	s.ready.Store(true)
	return s
}

func (s *Store) Ready() bool {
	return s.ready.Load()
}

func (s *Store) SetReady(ready bool) {
	s.ready.Store(ready)
}

type txKey struct{}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(struct{})
	return ok
}

// lock takes the store mutex unless ctx already belongs to a running
// transaction, which holds it for its whole duration.
func (s *Store) lock(ctx context.Context) func() {
	if inTx(ctx) {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lessons := make(map[primitive.ObjectID]domain.Lesson, len(s.lessons))
	for k, v := range s.lessons {
		lessons[k] = v
	}
	nOrders, nOutbox := len(s.orders), len(s.outbox)

	if err := fn(context.WithValue(ctx, txKey{}, struct{}{})); err != nil {
		s.lessons = lessons
		s.orders = s.orders[:nOrders]
		s.outbox = s.outbox[:nOutbox]
		return err
	}
	return nil
}

func (s *Store) ListLessons(ctx context.Context) ([]domain.Lesson, error) {
	defer s.lock(ctx)()
	out := make([]domain.Lesson, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.lessons[id])
	}
	return out, nil
}

func (s *Store) SearchLessons(ctx context.Context, query string) ([]domain.Lesson, error) {
	defer s.lock(ctx)()
	q := strings.ToLower(query)
	var out []domain.Lesson
	for _, id := range s.order {
		l := s.lessons[id]
		if strings.Contains(strings.ToLower(l.Subject), q) || strings.Contains(strings.ToLower(l.Location), q) {
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) FindLessonsByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.Lesson, error) {
	defer s.lock(ctx)()
	seen := make(map[primitive.ObjectID]bool, len(ids))
	var out []domain.Lesson
	for _, id := range ids {
		if l, ok := s.lessons[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, l)
		}
	}
	return out, nil
}

func (s *Store) DecrementSpaces(ctx context.Context, id primitive.ObjectID) error {
	defer s.lock(ctx)()
	l, ok := s.lessons[id]
	if !ok || l.Spaces <= 0 {
		return domain.ErrFullyBooked
	}
	l.Spaces--
	s.lessons[id] = l
	return nil
}

func (s *Store) SetSpaces(ctx context.Context, id primitive.ObjectID, spaces int) (bool, error) {
	defer s.lock(ctx)()
	l, ok := s.lessons[id]
	if !ok {
		return false, nil
	}
	l.Spaces = spaces
	s.lessons[id] = l
	return true, nil
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) error {
	defer s.lock(ctx)()
	s.orders = append(s.orders, order)
	return nil
}

func (s *Store) InsertOutbox(ctx context.Context, record domain.OutboxRecord) error {
	defer s.lock(ctx)()
	s.outbox = append(s.outbox, record)
	return nil
}

// Lesson returns the current state of a lesson.
func (s *Store) Lesson(id primitive.ObjectID) (domain.Lesson, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lessons[id]
	return l, ok
}

func (s *Store) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Order(nil), s.orders...)
}

// Outbox returns the recorded events, oldest first.
func (s *Store) Outbox() []domain.OutboxRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]domain.OutboxRecord(nil), s.outbox...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
