package mongo

import (
	"context"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const (
	lessonsCollection = "lessons"
	ordersCollection  = "orders"
	outboxCollection  = "outbox"
	auditCollection   = "audit_logs"
)

// Store owns the process-wide client. Repositories share its database handle.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	closed atomic.Bool
	logger observability.Logger
}

// Connect dials MongoDB and pings the primary so a bad URI fails at startup
// rather than on the first request.
func Connect(ctx context.Context, uri, database string, logger observability.Logger) (*Store, error) {
	// Nested documents in lesson extras decode as maps so they render as JSON objects.
	opts := options.Client().
		ApplyURI(uri).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	logger.WithField("database", database).Info("connected to mongo")
	return &Store{client: client, db: client.Database(database), logger: logger}, nil
}

func (s *Store) Ready() bool {
	return s != nil && s.client != nil && !s.closed.Load()
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if !s.Ready() {
		return errors.New("store closed")
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Close(ctx context.Context) error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Info("disconnecting from mongo")
	return s.client.Disconnect(ctx)
}

func (s *Store) Database() *mongo.Database {
	return s.db
}

// WithTx runs fn inside a multi-document transaction. The context handed to
// fn is the session context; repository calls must use it to join the
// transaction. Write conflicts are retried by the driver, so fn can run more
// than once. The session is always ended.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := s.client.StartSession()
	if err != nil {
		return errors.Wrap(err, "start session")
	}
	defer sess.EndSession(context.Background())

	opts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		return nil, fn(sc)
	}, opts)
	return err
}

// EnsureIndexes creates the indexes the relay depends on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.db.Collection(outboxCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return errors.Wrap(err, "create outbox index")
}
