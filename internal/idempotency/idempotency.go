// Package idempotency remembers responses to order placements keyed by the
// client's Idempotency-Key so a retried request is answered, not re-booked.
package idempotency

import (
	"context"
	"time"

	redisadapter "github.com/robertarktes/after-school-classes/internal/adapters/redis"
)

// MinKeyLength rejects keys too short to be unique per request.
const MinKeyLength = 16

type Store interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
	Get(ctx context.Context, key string) (*redisadapter.IdempResponse, error)
	Set(ctx context.Context, key string, resp redisadapter.IdempResponse, ttl time.Duration) error
}

type Idempotency struct {
	store Store
	ttl   time.Duration
}

func NewIdempotency(store Store, ttl time.Duration) *Idempotency {
	return &Idempotency{store: store, ttl: ttl}
}

type Response struct {
	Status  int
	Result  []byte
	Pending bool
}

// Reserve atomically claims key. Only the caller that gets true may run the
// request; everyone else reads the stored response with Get.
func (i *Idempotency) Reserve(ctx context.Context, key string) (bool, error) {
	return i.store.Reserve(ctx, key, i.ttl)
}

func (i *Idempotency) Release(ctx context.Context, key string) error {
	return i.store.Release(ctx, key)
}

func (i *Idempotency) Get(ctx context.Context, key string) (*Response, error) {
	stored, err := i.store.Get(ctx, key)
	if err != nil || stored == nil {
		return nil, err
	}
	return &Response{Status: stored.Status, Result: stored.Result, Pending: stored.Pending}, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp Response) error {
	return i.store.Set(ctx, key, redisadapter.IdempResponse{Status: resp.Status, Result: resp.Result}, i.ttl)
}
