package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/odvcencio/cursing/pkg/bus"
	"github.com/odvcencio/cursing/pkg/config"
	"github.com/odvcencio/cursing/pkg/mockdb"
	"github.com/odvcencio/cursing/pkg/signal"
	"github.com/odvcencio/cursing/pkg/sqlitedb"
)

// requestNames are the events the interface sends to collaborators.
var requestNames = []string{
	signal.DBConnect,
	signal.DBDisconnect,
	signal.DBListDatabases,
	signal.DBListTables,
	signal.DBSetDatabase,
	signal.DBSetTable,
	signal.DBTableContent,
	signal.DBTableStructure,
	signal.DBRawQuery,
	signal.DBImportDatabase,
	signal.DBExportDatabase,
}

// replyNames are the events collaborators send back.
var replyNames = []string{
	signal.UIFeedback,
	signal.UIDatabaseList,
	signal.UITableList,
	signal.UITableContent,
	signal.UITableStructure,
	signal.UIRawQueryResult,
	signal.UISetDatabase,
	signal.UISetTable,
}

// collaborator is whatever answers db.* events for this process: a
// manager on the UI bus, or a transport bridge with an optional manager on
// the far side.
type collaborator struct {
	closers []func() error
}

func (c *collaborator) onClose(fn func() error) {
	c.closers = append(c.closers, fn)
}

// Close tears everything down in reverse order of construction.
func (c *collaborator) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

// startCollaborator wires local to the collaborator selected by cfg.
// post receives replies arriving from a transport; it must hand them to
// the goroutine that owns local.
func startCollaborator(ctx context.Context, cfg *config.Config, local *signal.Bus, post func(*signal.Event), logger *slog.Logger) (*collaborator, error) {
	c := &collaborator{}

	if cfg.Transport.Kind == config.TransportNone {
		if cfg.Collaborator.Kind == config.CollaboratorNone {
			logger.Warn("no collaborator configured; db events will be dropped")
			return c, nil
		}
		if err := c.attach(local, cfg.Collaborator, logger); err != nil {
			return nil, err
		}
		logger.Info("collaborator attached to the local bus", slog.String("kind", cfg.Collaborator.Kind))
		return c, nil
	}

	transport, err := bus.Open(bus.Config{
		Kind:    cfg.Transport.Kind,
		URL:     cfg.Transport.URL,
		Name:    "cursing",
		Timeout: 10 * time.Second,
		Logger:  logger.With(slog.String("component", "transport")),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s transport: %w", cfg.Transport.Kind, err)
	}
	c.onClose(transport.Close)

	bridgeOpts := []signal.BridgeOption{
		signal.WithPrefix(cfg.Transport.Prefix),
		signal.WithBridgeLogger(logger.With(slog.String("component", "bridge"))),
	}

	ui := signal.NewBridge(local, transport, post, bridgeOpts...)
	c.onClose(ui.Close)
	ui.Forward(ctx, requestNames...)
	if err := ui.Listen(ctx, "ui.*"); err != nil {
		c.Close()
		return nil, err
	}

	// A manager behind the transport stands in for a remote collaborator.
	if cfg.Collaborator.Kind != config.CollaboratorNone {
		remote := signal.NewBus(busOptions(cfg,
			logger.With(slog.String("component", "remote-bus")),
			signal.WithCatalog(local.Catalog()),
		)...)
		if err := c.attach(remote, cfg.Collaborator, logger); err != nil {
			c.Close()
			return nil, err
		}

		far := signal.NewBridge(remote, transport, nil, bridgeOpts...)
		c.onClose(far.Close)
		far.Forward(ctx, replyNames...)
		if err := far.Listen(ctx, "db.*"); err != nil {
			c.Close()
			return nil, err
		}
	} else if cfg.Transport.Kind == config.TransportMemory {
		logger.Warn("memory transport without a collaborator; db events will go unanswered")
	}

	logger.Info("collaborator bridge started",
		slog.String("transport", cfg.Transport.Kind),
		slog.String("prefix", cfg.Transport.Prefix),
		slog.String("collaborator", cfg.Collaborator.Kind),
	)
	return c, nil
}

// attach starts the manager selected by cfg on b.
func (c *collaborator) attach(b *signal.Bus, cfg config.CollaboratorConfig, logger *slog.Logger) error {
	switch cfg.Kind {
	case config.CollaboratorMock:
		fixtures, err := loadFixtures(cfg.Fixtures)
		if err != nil {
			return err
		}
		m := mockdb.New(b, fixtures, logger.With(slog.String("component", "mockdb")))
		c.onClose(func() error {
			m.Close()
			return nil
		})
	case config.CollaboratorSQLite:
		m := sqlitedb.New(b, sqlitedb.Config{
			RowLimit: cfg.SQLite.RowLimit,
			Timeout:  cfg.SQLite.Timeout,
			ReadOnly: cfg.SQLite.ReadOnly,
		}, logger.With(slog.String("component", "sqlitedb")))
		c.onClose(m.Close)
	default:
		return fmt.Errorf("unknown collaborator %q", cfg.Kind)
	}
	return nil
}

func loadFixtures(path string) (*mockdb.Fixtures, error) {
	if path == "" {
		return mockdb.DefaultFixtures(), nil
	}
	fixtures, err := mockdb.LoadFixtures(path)
	if err != nil {
		return nil, fmt.Errorf("load fixtures: %w", err)
	}
	return fixtures, nil
}
