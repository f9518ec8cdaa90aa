// Package bus carries encoded events between processes. Subjects are
// dot-separated tokens; subscriptions may use "*" for one token and ">" for
// the rest of the subject. The in-memory transport keeps everything in the
// process and NATS reaches collaborators elsewhere.
package bus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrClosed is returned when operating on a closed transport.
	ErrClosed = errors.New("transport closed")

	// ErrUnknownKind is returned by Open for an unsupported transport kind.
	ErrUnknownKind = errors.New("unknown transport kind")

	// ErrSubject is returned for an empty subject, an empty token, or a
	// wildcard in a published subject.
	ErrSubject = errors.New("invalid subject")
)

// Transport kinds accepted by Open.
const (
	KindMemory = "memory"
	KindNATS   = "nats"
)

// MessageBus publishes and subscribes to subjects. Implementations are safe
// for concurrent use.
type MessageBus interface {
	// Publish sends data to every subscription matching subject. It does
	// not wait for delivery.
	Publish(ctx context.Context, subject string, data []byte) error

	// Subscribe calls handler for every message matching pattern. Handlers
	// of one subscription run one at a time, in publish order, on a
	// transport goroutine.
	Subscribe(ctx context.Context, pattern string, handler MessageHandler) (Subscription, error)

	// Close ends every subscription and releases the transport.
	Close() error
}

// MessageHandler processes one message.
type MessageHandler func(msg *Message)

// Message is a received payload and the subject it was published on.
type Message struct {
	Subject string
	Data    []byte
}

// Subscription is an active subscription.
type Subscription interface {
	// Unsubscribe stops delivery. Calling it twice is a no-op.
	Unsubscribe() error

	// Subject returns the pattern the subscription was made with.
	Subject() string
}

// Config selects and configures a transport.
type Config struct {
	// Kind is KindMemory or KindNATS. Empty means memory.
	Kind string

	// URL is the NATS server URL. Ignored by the memory transport.
	URL string

	// Name identifies this client to the NATS server.
	Name string

	// Timeout bounds connecting and flushing subscriptions.
	Timeout time.Duration

	// Buffer is the per-subscription queue length of the memory transport.
	Buffer int

	// Logger receives connection state changes.
	Logger *slog.Logger
}

// DefaultConfig returns an in-memory transport configuration.
func DefaultConfig() Config {
	return Config{
		Kind:    KindMemory,
		URL:     "nats://127.0.0.1:4222",
		Name:    "cursing",
		Timeout: 10 * time.Second,
		Buffer:  defaultBuffer,
	}
}

// Open creates the transport selected by cfg.Kind.
func Open(cfg Config) (MessageBus, error) {
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemoryBusSize(cfg.Buffer), nil
	case KindNATS:
		return NewNATSBus(cfg)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, cfg.Kind)
	}
}

// validSubject checks a subject or, with wildcards set, a pattern.
func validSubject(subject string, wildcards bool) error {
	if subject == "" {
		return fmt.Errorf("%w: empty", ErrSubject)
	}
	tokens := strings.Split(subject, ".")
	for i, tok := range tokens {
		switch {
		case tok == "":
			return fmt.Errorf("%w: %q has an empty token", ErrSubject, subject)
		case tok == "*" || tok == ">":
			if !wildcards {
				return fmt.Errorf("%w: %q contains a wildcard", ErrSubject, subject)
			}
			if tok == ">" && i != len(tokens)-1 {
				return fmt.Errorf("%w: %q has '>' before the last token", ErrSubject, subject)
			}
		}
	}
	return nil
}

// matchSubject reports whether subject matches pattern.
func matchSubject(pattern, subject string) bool {
	if pattern == subject {
		return true
	}
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, tok := range pt {
		if tok == ">" {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if tok != "*" && tok != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
