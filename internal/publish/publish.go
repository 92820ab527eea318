// Package publish announces a freshly written artifact to downstream
// systems. Publication is best effort: the host document on disk is the
// source of truth and a failed sink never fails a build.
package publish

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/Adithya-Monish-Kumar-K/lexstats/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/lexstats/pkg/resilience"
)

// Notice describes one published artifact.
type Notice struct {
	Digest      string    `json:"digest"`
	TotalPages  int       `json:"totalPages"`
	Words       int       `json:"words"`
	GeneratedAt time.Time `json:"generatedAt"`
	// Artifact is the serialised artifact; it is not part of the event body.
	Artifact []byte `json:"-"`
}

// Sink receives notices.
type Sink interface {
	Name() string
	Publish(ctx context.Context, n Notice) error
}

// KeyValueStore is the subset of the Redis client used by RedisSink.
type KeyValueStore interface {
	SetAll(ctx context.Context, values map[string][]byte) error
}

// RedisSink stores the artifact and its digest under a key prefix.
type RedisSink struct {
	store  KeyValueStore
	prefix string
}

func NewRedisSink(store KeyValueStore, prefix string) *RedisSink {
	return &RedisSink{store: store, prefix: prefix}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Publish(ctx context.Context, n Notice) error {
	return s.store.SetAll(ctx, map[string][]byte{
		s.prefix + ":artifact": n.Artifact,
		s.prefix + ":digest":   []byte(n.Digest),
	})
}

// EventPublisher is the subset of the Kafka producer used by KafkaSink.
type EventPublisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// KafkaSink emits a stats-updated event keyed by digest.
type KafkaSink struct {
	producer EventPublisher
}

func NewKafkaSink(p EventPublisher) *KafkaSink {
	return &KafkaSink{producer: p}
}

func (s *KafkaSink) Name() string { return "kafka" }

func (s *KafkaSink) Publish(ctx context.Context, n Notice) error {
	return s.producer.Publish(ctx, kafka.Event{Key: n.Digest, Value: n})
}

// Options configures a Fanout. Metrics may be nil.
type Options struct {
	// Timeout bounds each attempt against a sink.
	Timeout time.Duration
	Retry   resilience.Backoff
	Metrics *metrics.Metrics
}

// Fanout delivers a notice to every sink in order. Failures are retried,
// then logged, counted and joined into the returned error.
type Fanout struct {
	sinks  []Sink
	opts   Options
	logger *slog.Logger
}

func NewFanout(opts Options, sinks ...Sink) *Fanout {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	return &Fanout{
		sinks:  sinks,
		opts:   opts,
		logger: slog.Default().With("component", "publish"),
	}
}

// Len reports the number of configured sinks.
func (f *Fanout) Len() int { return len(f.sinks) }

func (f *Fanout) Publish(ctx context.Context, n Notice) error {
	var errs []error
	for _, s := range f.sinks {
		err := resilience.Retry(ctx, "publish-"+s.Name(), f.opts.Retry, func(ctx context.Context) error {
			actx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
			defer cancel()
			return s.Publish(actx, n)
		})
		status := "ok"
		if err != nil {
			status = "error"
			f.logger.Warn("publish failed", "sink", s.Name(), "digest", n.Digest, "error", err)
			errs = append(errs, fmt.Errorf("%w: %s: %w", apperrors.ErrPublish, s.Name(), err))
		} else {
			f.logger.Info("artifact published", "sink", s.Name(), "digest", n.Digest)
		}
		if f.opts.Metrics != nil {
			f.opts.Metrics.PublishTotal.WithLabelValues(s.Name(), status).Inc()
		}
	}
	return errors.Join(errs...)
}
