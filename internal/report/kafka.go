package report

import (
	"context"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/wordfreq/internal/ranker"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/wordfreq/pkg/resilience"
)

// EntryEvent is the JSON value of one Kafka message.
type EntryEvent struct {
	RunID string `json:"run_id"`
	Rank  int    `json:"rank"`
	Word  string `json:"word"`
	Count uint64 `json:"count"`
}

type kafkaPublisher interface {
	PublishBatch(ctx context.Context, events []kafka.Event) error
	Ping(ctx context.Context) error
	Close() error
}

// KafkaSink publishes one event per entry, keyed by word, in batches. Each
// batch is retried on its own, so a transient failure never resends batches
// that were already acknowledged. Do not wrap it in WithRetry.
type KafkaSink struct {
	producer  kafkaPublisher
	batchSize int
	retry     resilience.RetryConfig
	timeout   time.Duration
}

// NewKafkaSink builds a sink over producer. timeout bounds each batch attempt
// when it is positive.
func NewKafkaSink(producer *kafka.Producer, batchSize int, retry resilience.RetryConfig, timeout time.Duration) *KafkaSink {
	return newKafkaSink(producer, batchSize, retry, timeout)
}

func newKafkaSink(producer kafkaPublisher, batchSize int, retry resilience.RetryConfig, timeout time.Duration) *KafkaSink {
	if batchSize <= 0 {
		batchSize = 500
	}
	return &KafkaSink{producer: producer, batchSize: batchSize, retry: retry, timeout: timeout}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, runID string, r ranker.Report) error {
	batch := make([]kafka.Event, 0, min(s.batchSize, len(r)))
	for i, e := range r {
		batch = append(batch, kafka.Event{
			Key: e.Word,
			Value: EntryEvent{
				RunID: runID,
				Rank:  i + 1,
				Word:  e.Word,
				Count: e.Count,
			},
		})
		if len(batch) == s.batchSize || i == len(r)-1 {
			if err := s.sendBatch(ctx, batch, i+2-len(batch)); err != nil {
				return err
			}
			// A timed-out attempt may still hold the old slice.
			batch = make([]kafka.Event, 0, min(s.batchSize, len(r)-i-1))
		}
	}
	return nil
}

// sendBatch delivers one batch whose first entry has the given rank.
func (s *KafkaSink) sendBatch(ctx context.Context, batch []kafka.Event, firstRank int) error {
	name := fmt.Sprintf("kafka-batch-%d", firstRank)
	err := resilience.Retry(ctx, name, s.retry, func() error {
		return resilience.WithTimeout(ctx, s.timeout, name, func(ctx context.Context) error {
			return s.producer.PublishBatch(ctx, batch)
		})
	})
	if err != nil {
		return fmt.Errorf("publishing ranks %d-%d: %w", firstRank, firstRank+len(batch)-1, err)
	}
	return nil
}

func (s *KafkaSink) Ping(ctx context.Context) error {
	return s.producer.Ping(ctx)
}

func (s *KafkaSink) Close() error {
	return s.producer.Close()
}
