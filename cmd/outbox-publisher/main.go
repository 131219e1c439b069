package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	amqp "github.com/rabbitmq/amqp091-go"
	mongoadapter "github.com/robertarktes/after-school-classes/internal/adapters/mongo"
	"github.com/robertarktes/after-school-classes/internal/adapters/rabbit"
	"github.com/robertarktes/after-school-classes/internal/config"
	"github.com/robertarktes/after-school-classes/internal/observability"
	"github.com/robertarktes/after-school-classes/internal/outbox"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("outbox publisher exited with error")
		os.Exit(1)
	}
	logger.Info("Shutdown outbox publisher")
}

// run owns every resource it opens, so deferred closes also fire on the
// error paths.
func run(cfg *config.Config, logger observability.Logger) error {
	if cfg.RabbitURL == "" {
		return errors.New("RABBIT_URL is required")
	}

	shutdownOtel, err := observability.SetupOTel(context.Background(), cfg, "afterschool-outbox")
	if err != nil {
		return errors.Wrap(err, "setup otel")
	}
	defer shutdownOtel()

	observability.InitMetrics()

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := mongoadapter.Connect(connectCtx, cfg.MongoURI, cfg.MongoDatabase, logger)
	cancelConnect()
	if err != nil {
		return err
	}
	defer store.Close(context.Background())

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		return errors.Wrap(err, "connect to rabbitmq")
	}
	defer conn.Close()

	rabbitPub, err := rabbit.NewPublisher(conn)
	if err != nil {
		return errors.Wrap(err, "create publisher")
	}
	defer rabbitPub.Close()

	relay := outbox.NewRelay(mongoadapter.NewOutboxRepository(store), rabbitPub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		relay.Run(gctx, cfg.OutboxPollInterval)
		return nil
	})
	return g.Wait()
}
