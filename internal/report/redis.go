package report

import (
	"context"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/redis"
)

type listStore interface {
	ReplaceList(ctx context.Context, key string, values []string, ttl time.Duration) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisSink stores the report lines as a Redis list under keyPrefix+runID.
type RedisSink struct {
	client    listStore
	keyPrefix string
	ttl       time.Duration
}

func NewRedisSink(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisSink) Name() string { return "redis" }

// Key returns the list key used for runID.
func (s *RedisSink) Key(runID string) string {
	return s.keyPrefix + runID
}

func (s *RedisSink) Publish(ctx context.Context, runID string, r ranker.Report) error {
	lines := make([]string, len(r))
	for i, e := range r {
		lines[i] = Line(e.Word, e.Count)
	}
	return s.client.ReplaceList(ctx, s.Key(runID), lines, s.ttl)
}

func (s *RedisSink) Ping(ctx context.Context) error {
	return s.client.Ping(ctx)
}

func (s *RedisSink) Close() error {
	return s.client.Close()
}
