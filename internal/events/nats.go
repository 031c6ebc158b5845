// Package events publishes complaint lifecycle events to NATS.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/models"
	"github.com/elangabilan/AI-Powered-Railway-Complaint-System/internal/resilience"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends one JSON message per event on <prefix>.<event type>.
type Publisher struct {
	nc       *nats.Conn
	conn     conn
	prefix   string
	executor *resilience.Executor
	logger   *zap.SugaredLogger
}

// Connect dials url and keeps reconnecting in the background.
func Connect(url, prefix string, executor *resilience.Executor, logger *zap.SugaredLogger) (*Publisher, error) {
	nc, err := nats.Connect(
		url,
		nats.Name("rail-madad-api"),
		nats.Timeout(2*time.Second),
		nats.ReconnectWait(2*time.Second),
		nats.MaxReconnects(60),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warnw("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Infow("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	p := newPublisher(nc, prefix, executor, logger)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, prefix string, executor *resilience.Executor, logger *zap.SugaredLogger) *Publisher {
	return &Publisher{conn: c, prefix: prefix, executor: executor, logger: logger}
}

// Subject returns the subject an event type is published on.
func (p *Publisher) Subject(t models.EventType) string {
	return p.prefix + "." + string(t)
}

// Publish encodes evt and sends it.
func (p *Publisher) Publish(ctx context.Context, evt models.ComplaintEvent) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	subject := p.Subject(evt.Type)

	call := func(context.Context) error {
		if err := p.conn.Publish(subject, data); err != nil {
			return fmt.Errorf("nats publish %s: %w", subject, err)
		}
		return nil
	}
	if p.executor != nil {
		return p.executor.Execute(ctx, "nats.publish", call, nil)
	}
	return call(ctx)
}

// Close drains pending messages and closes the connection.
func (p *Publisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}
