// Package queue moves ingestion and aggregation jobs between the API
// surface and the workers over NATS.
package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/Ethan-new/LoL-Wrapped/internal/config"
)

const (
	SubjectIngestYear   = "wrapped.ingest.year"
	SubjectRecapCompute = "wrapped.recap.compute"

	// Workers join one queue group so each job is delivered to exactly
	// one of them.
	WorkerQueueGroup = "wrapped-workers"
)

// Job is the wire envelope for both subjects.
type Job struct {
	JobID string `json:"job_id"`
	PUUID string `json:"puuid"`
	Year  int    `json:"year"`
}

type Client struct {
	conn   *nats.Conn
	logger zerolog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func New(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	log := logger.With().Str("component", "queue").Logger()

	opts := []nats.Option{
		nats.Name("lol-wrapped"),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("nats disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			log.Info().Msg("nats connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.NatsURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nats: %w", err)
	}
	log.Info().Str("url", nc.ConnectedUrl()).Msg("connected to nats")

	return &Client{conn: nc, logger: log}, nil
}

// EnqueueIngest publishes an ingestion job and returns its id, which
// the progress store echoes back to pollers.
func (c *Client) EnqueueIngest(_ context.Context, puuid string, year int) (string, error) {
	jobID := uuid.NewString()
	if err := c.publish(SubjectIngestYear, Job{JobID: jobID, PUUID: puuid, Year: year}); err != nil {
		return "", err
	}
	return jobID, nil
}

// EnqueueCompute hands a finished ingestion to the aggregation stage,
// keeping the originating job id for correlation.
func (c *Client) EnqueueCompute(_ context.Context, puuid string, year int, jobID string) error {
	return c.publish(SubjectRecapCompute, Job{JobID: jobID, PUUID: puuid, Year: year})
}

func (c *Client) publish(subject string, job Job) error {
	data, err := sonic.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	if err := c.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}
	c.logger.Debug().Str("subject", subject).Str("jobId", job.JobID).Str("puuid", job.PUUID).Int("year", job.Year).Msg("job published")
	return nil
}

// SubscribeIngest delivers ingestion jobs to handler via the worker
// queue group. Malformed envelopes are logged and dropped.
func (c *Client) SubscribeIngest(handler func(Job)) error {
	return c.queueSubscribe(SubjectIngestYear, handler)
}

// SubscribeCompute delivers aggregation jobs to handler via the worker
// queue group.
func (c *Client) SubscribeCompute(handler func(Job)) error {
	return c.queueSubscribe(SubjectRecapCompute, handler)
}

func (c *Client) queueSubscribe(subject string, handler func(Job)) error {
	sub, err := c.conn.QueueSubscribe(subject, WorkerQueueGroup, func(msg *nats.Msg) {
		var job Job
		if err := sonic.Unmarshal(msg.Data, &job); err != nil {
			c.logger.Error().Err(err).Str("subject", subject).Msg("failed to decode job envelope")
			return
		}
		handler(job)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
	}

	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
	return nil
}

// Drain unsubscribes and flushes pending messages before closing.
func (c *Client) Drain() error {
	return c.conn.Drain()
}

func (c *Client) Close() {
	c.conn.Close()
}

var Module = fx.Provide(New)
