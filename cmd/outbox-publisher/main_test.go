package main

import (
	"strings"
	"testing"
	"time"

	"github.com/robertarktes/after-school-classes/internal/config"
	"github.com/robertarktes/after-school-classes/internal/observability"
)

func TestRun_ReturnsSetupErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"missing rabbit url", config.Config{MongoURI: "mongodb://localhost:27017"}, "RABBIT_URL is required"},
		{"bad mongo uri", config.Config{MongoURI: "not-a-uri", RabbitURL: "amqp://localhost"}, "connect to mongo"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := c.cfg
			cfg.OutboxPollInterval = time.Second
			err := run(&cfg, observability.NewNopLogger())
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Errorf("expected error containing %q, got %v", c.want, err)
			}
		})
	}
}
