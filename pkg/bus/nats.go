package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBus carries messages over NATS core publish/subscribe. Subjects map
// one to one; the wildcard syntax is NATS's own.
type NATSBus struct {
	conn    *nats.Conn
	timeout time.Duration
	logger  *slog.Logger
	closed  atomic.Bool
}

// NewNATSBus connects to cfg.URL. The connection reconnects forever and
// logs every state change.
func NewNATSBus(cfg Config) (*NATSBus, error) {
	if cfg.URL == "" {
		cfg.URL = nats.DefaultURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With(slog.String("url", cfg.URL))

	conn, err := nats.Connect(cfg.URL,
		nats.Name(cfg.Name),
		nats.Timeout(cfg.Timeout),
		nats.ReconnectWait(time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", slog.String("error", err.Error()))
			}
		}),
		nats.ReconnectHandler(func(*nats.Conn) {
			logger.Info("nats reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, sub *nats.Subscription, err error) {
			subject := ""
			if sub != nil {
				subject = sub.Subject
			}
			logger.Warn("nats async error", slog.String("subject", subject), slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect %s: %w", cfg.URL, err)
	}
	logger.Info("nats connected")

	return &NATSBus{conn: conn, timeout: cfg.Timeout, logger: logger}, nil
}

func (b *NATSBus) Publish(ctx context.Context, subject string, data []byte) error {
	if b.closed.Load() {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validSubject(subject, false); err != nil {
		return err
	}
	if err := b.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("nats publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers handler and flushes, so messages published after it
// returns are not missed.
func (b *NATSBus) Subscribe(ctx context.Context, pattern string, handler MessageHandler) (Subscription, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if err := validSubject(pattern, true); err != nil {
		return nil, err
	}

	sub, err := b.conn.Subscribe(pattern, func(msg *nats.Msg) {
		handler(&Message{Subject: msg.Subject, Data: msg.Data})
	})
	if err != nil {
		return nil, fmt.Errorf("nats subscribe %s: %w", pattern, err)
	}

	flushCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := b.conn.FlushWithContext(flushCtx); err != nil {
		_ = sub.Unsubscribe()
		return nil, fmt.Errorf("nats subscribe %s: %w", pattern, err)
	}

	// NATS subscriptions have no context; end this one with ctx.
	stop := context.AfterFunc(ctx, func() {
		if sub.IsValid() {
			_ = sub.Unsubscribe()
		}
	})
	return &natsSubscription{sub: sub, stop: stop}, nil
}

// Close drains pending messages and closes the connection.
func (b *NATSBus) Close() error {
	if b.closed.Swap(true) {
		return ErrClosed
	}
	if err := b.conn.Drain(); err != nil {
		b.logger.Warn("nats drain", slog.String("error", err.Error()))
		b.conn.Close()
	}
	return nil
}

type natsSubscription struct {
	sub  *nats.Subscription
	stop func() bool
}

func (s *natsSubscription) Unsubscribe() error {
	s.stop()
	if !s.sub.IsValid() {
		return nil
	}
	return s.sub.Unsubscribe()
}

func (s *natsSubscription) Subject() string {
	return s.sub.Subject
}
