package idempotency_test

import (
	"context"
	"testing"
	"time"

	redisadapter "github.com/robertarktes/after-school-classes/internal/adapters/redis"
	"github.com/robertarktes/after-school-classes/internal/idempotency"
)

type mapStore struct {
	data map[string]redisadapter.IdempResponse
	ttl  time.Duration
}

func (m *mapStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = redisadapter.IdempResponse{Pending: true}
	m.ttl = ttl
	return true, nil
}

func (m *mapStore) Release(_ context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func (m *mapStore) Get(_ context.Context, key string) (*redisadapter.IdempResponse, error) {
	resp, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return &resp, nil
}

func (m *mapStore) Set(_ context.Context, key string, resp redisadapter.IdempResponse, ttl time.Duration) error {
	m.data[key] = resp
	m.ttl = ttl
	return nil
}

func TestIdempotency_GetSet(t *testing.T) {
	store := &mapStore{data: map[string]redisadapter.IdempResponse{}}
	idemp := idempotency.NewIdempotency(store, 30*time.Minute)
	ctx := context.Background()

	got, err := idemp.Get(ctx, "order-key-0000000001")
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v %v", got, err)
	}

	if err := idemp.Set(ctx, "order-key-0000000001", idempotency.Response{Status: 200, Result: []byte(`{"message":"ok"}`)}); err != nil {
		t.Fatal(err)
	}
	if store.ttl != 30*time.Minute {
		t.Errorf("expected configured ttl, got %v", store.ttl)
	}

	got, err = idemp.Get(ctx, "order-key-0000000001")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != 200 || string(got.Result) != `{"message":"ok"}` {
		t.Errorf("unexpected replay %+v", got)
	}
}

func TestIdempotency_ReserveOnce(t *testing.T) {
	store := &mapStore{data: map[string]redisadapter.IdempResponse{}}
	idemp := idempotency.NewIdempotency(store, time.Hour)
	ctx := context.Background()
	const key = "order-key-0000000002"

	ok, err := idemp.Reserve(ctx, key)
	if err != nil || !ok {
		t.Fatalf("expected first reservation to win, got %v %v", ok, err)
	}
	ok, err = idemp.Reserve(ctx, key)
	if err != nil || ok {
		t.Fatalf("expected second reservation to lose, got %v %v", ok, err)
	}

	got, err := idemp.Get(ctx, key)
	if err != nil || got == nil || !got.Pending {
		t.Fatalf("expected pending marker, got %+v %v", got, err)
	}

	if err := idemp.Release(ctx, key); err != nil {
		t.Fatal(err)
	}
	ok, err = idemp.Reserve(ctx, key)
	if err != nil || !ok {
		t.Errorf("expected released key to be reservable, got %v %v", ok, err)
	}
}
