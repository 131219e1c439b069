package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/redis/go-redis/v9"
)

// pendingMarker holds a reserved key until the first request's response is stored.
const pendingMarker = "pending"

type Idempotency struct {
	client *redis.Client
}

func NewIdempotency(client *redis.Client) *Idempotency {
	return &Idempotency{client: client}
}

type IdempResponse struct {
	Status int
	Result []byte
	// Pending is set when the key is reserved but no response is stored yet.
	Pending bool `json:"-"`
}

func idempKey(key string) string {
	return "idemp:" + key
}

// Reserve claims the key for the caller. It reports false when another
// request already holds it or has stored a response.
func (i *Idempotency) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := i.client.SetNX(ctx, idempKey(key), pendingMarker, ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "reserve idempotency key %q", key)
	}
	return ok, nil
}

// Release drops a reservation so the request can be retried.
func (i *Idempotency) Release(ctx context.Context, key string) error {
	return i.client.Del(ctx, idempKey(key)).Err()
}

func (i *Idempotency) Get(ctx context.Context, key string) (*IdempResponse, error) {
	val, err := i.client.Get(ctx, idempKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if string(val) == pendingMarker {
		return &IdempResponse{Pending: true}, nil
	}
	var resp IdempResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, errors.Wrapf(err, "decode idempotent response %q", key)
	}
	return &resp, nil
}

func (i *Idempotency) Set(ctx context.Context, key string, resp IdempResponse, ttl time.Duration) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return i.client.Set(ctx, idempKey(key), data, ttl).Err()
}
