package signal

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/cursing/pkg/bus"
)

// DefaultPrefix is the subject prefix used when a bridge is created without one.
const DefaultPrefix = "cursing"

type wireField struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// envelope is the transport encoding of an event.
type envelope struct {
	ID     string      `json:"id"`
	Name   string      `json:"name"`
	Fields []wireField `json:"fields"`
}

// Encode serialises ev into its transport envelope.
func Encode(ev *Event) ([]byte, error) {
	env := envelope{
		ID:     ulid.Make().String(),
		Name:   ev.Name(),
		Fields: make([]wireField, 0, ev.fields.Len()),
	}
	ev.fields.Each(func(name string, value any) {
		env.Fields = append(env.Fields, wireField{Name: name, Value: value})
	})
	return json.Marshal(env)
}

// Decode parses a transport envelope. When catalog is non-nil, field values
// are converted back to their declared kinds.
func Decode(data []byte, catalog *Catalog) (*Event, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Name == "" {
		return nil, fmt.Errorf("decode envelope: missing name")
	}
	var fields Fields
	for _, f := range env.Fields {
		fields.Set(f.Name, f.Value)
	}
	if catalog != nil {
		coerced, err := catalog.Coerce(env.Name, fields)
		if err != nil {
			return nil, err
		}
		fields = coerced
	}
	return New(env.Name, fields, FromRemote()), nil
}

// Bridge connects a local Bus to a message transport so collaborators can
// run in another process. Outbound events are published on
// "<prefix>.<event name>". Inbound messages are decoded and handed to post,
// which must deliver them on the goroutine that owns the local bus.
type Bridge struct {
	local     *Bus
	transport bus.MessageBus
	prefix    string
	post      func(*Event)
	logger    *slog.Logger

	regs Registrations

	mu   sync.Mutex
	subs []bus.Subscription
}

// BridgeOption configures a Bridge.
type BridgeOption func(*Bridge)

// WithPrefix sets the subject prefix.
func WithPrefix(prefix string) BridgeOption {
	return func(b *Bridge) {
		if prefix != "" {
			b.prefix = strings.TrimSuffix(prefix, ".")
		}
	}
}

// WithBridgeLogger sets the logger used for transport failures.
func WithBridgeLogger(logger *slog.Logger) BridgeOption {
	return func(b *Bridge) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// NewBridge creates a bridge between local and transport. post receives
// every inbound event; when nil, inbound events are dispatched directly,
// which is only safe if the caller serialises access to local.
func NewBridge(local *Bus, transport bus.MessageBus, post func(*Event), opts ...BridgeOption) *Bridge {
	b := &Bridge{
		local:     local,
		transport: transport,
		prefix:    DefaultPrefix,
		post:      post,
		logger:    slog.New(slog.DiscardHandler),
	}
	if b.post == nil {
		b.post = func(ev *Event) { local.Dispatch(ev) }
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subject returns the transport subject for an event name or pattern.
func (b *Bridge) Subject(name string) string {
	return b.prefix + "." + name
}

// Forward publishes every local event called one of names. Events that
// arrived from the transport are not published again.
func (b *Bridge) Forward(ctx context.Context, names ...string) {
	for _, name := range names {
		b.regs.Add(b.local.Register(name, b, func(ev *Event) {
			if ev.Remote() {
				return
			}
			b.publish(ctx, ev)
		}))
	}
}

func (b *Bridge) publish(ctx context.Context, ev *Event) {
	data, err := Encode(ev)
	if err != nil {
		b.logger.Warn("encode event", slog.String("event", ev.Name()), slog.String("error", err.Error()))
		return
	}
	if err := b.transport.Publish(ctx, b.Subject(ev.Name()), data); err != nil {
		b.logger.Warn("publish event", slog.String("event", ev.Name()), slog.String("error", err.Error()))
	}
}

// Listen subscribes to the given event names or wildcard patterns
// ("ui.*") and posts decoded events.
func (b *Bridge) Listen(ctx context.Context, patterns ...string) error {
	for _, pattern := range patterns {
		sub, err := b.transport.Subscribe(ctx, b.Subject(pattern), b.receive)
		if err != nil {
			return fmt.Errorf("listen %s: %w", pattern, err)
		}
		b.mu.Lock()
		b.subs = append(b.subs, sub)
		b.mu.Unlock()
	}
	return nil
}

func (b *Bridge) receive(msg *bus.Message) {
	ev, err := Decode(msg.Data, b.local.Catalog())
	if err != nil {
		b.logger.Warn("drop inbound message", slog.String("subject", msg.Subject), slog.String("error", err.Error()))
		return
	}
	b.post(ev)
}

// Close releases local registrations and transport subscriptions. The
// transport itself is left open.
func (b *Bridge) Close() error {
	b.regs.ReleaseAll()

	b.mu.Lock()
	subs := b.subs
	b.subs = nil
	b.mu.Unlock()

	var firstErr error
	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
