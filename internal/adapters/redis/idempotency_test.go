package redis_test

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/after-school-classes/internal/adapters/redis"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestIdempotency_RoundTrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: endpoint})
	defer client.Close()

	idemp := redisadapter.NewIdempotency(client)

	got, err := idemp.Get(ctx, "missing-key")
	if err != nil || got != nil {
		t.Fatalf("expected miss, got %v %v", got, err)
	}

	want := redisadapter.IdempResponse{Status: 200, Result: []byte(`{"message":"Order placed successfully"}`)}
	if err := idemp.Set(ctx, "order-key", want, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err = idemp.Get(ctx, "order-key")
	if err != nil {
		t.Fatal(err)
	}
	if got == nil || got.Status != want.Status || string(got.Result) != string(want.Result) {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	ttl, err := client.TTL(ctx, "idemp:order-key").Result()
	if err != nil {
		t.Fatal(err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}
}

func TestIdempotency_ReserveAndRelease(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	defer redisContainer.Terminate(ctx)

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: endpoint})
	defer client.Close()

	idemp := redisadapter.NewIdempotency(client)

	ok, err := idemp.Reserve(ctx, "race-key", time.Minute)
	if err != nil || !ok {
		t.Fatalf("expected reservation, got %v %v", ok, err)
	}
	ok, err = idemp.Reserve(ctx, "race-key", time.Minute)
	if err != nil || ok {
		t.Fatalf("expected second reservation to lose, got %v %v", ok, err)
	}
	got, err := idemp.Get(ctx, "race-key")
	if err != nil || got == nil || !got.Pending {
		t.Fatalf("expected pending marker, got %+v %v", got, err)
	}

	want := redisadapter.IdempResponse{Status: 200, Result: []byte(`{"message":"Order placed successfully"}`)}
	if err := idemp.Set(ctx, "race-key", want, time.Minute); err != nil {
		t.Fatal(err)
	}
	got, err = idemp.Get(ctx, "race-key")
	if err != nil || got == nil || got.Pending || got.Status != 200 {
		t.Fatalf("expected stored response, got %+v %v", got, err)
	}

	if err := idemp.Release(ctx, "race-key"); err != nil {
		t.Fatal(err)
	}
	ok, err = idemp.Reserve(ctx, "race-key", time.Minute)
	if err != nil || !ok {
		t.Errorf("expected released key to be reservable, got %v %v", ok, err)
	}
}
