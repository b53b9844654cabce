// ABOUTME: Wiring shared by every command: config, logger, charm store, ledger, and notifiers
// ABOUTME: Opened once in main and closed on exit
package cli

import (
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/harperreed/bannerbook/charm"
	"github.com/harperreed/bannerbook/config"
	"github.com/harperreed/bannerbook/db"
	"github.com/harperreed/bannerbook/engine"
	"github.com/harperreed/bannerbook/ledger"
	"github.com/harperreed/bannerbook/notify"
	"github.com/harperreed/bannerbook/store"
	"github.com/nats-io/nats.go"
	"github.com/sirupsen/logrus"
)

// App holds the collaborators commands run against.
type App struct {
	Config *config.Config
	Logger *logrus.Entry
	Client *charm.Client
	Store  *store.Store
	Ledger ledger.Ledger
	Out    io.Writer

	sqlDB *sql.DB
	nc    *nats.Conn
}

// Open builds an App from cfg. The charm client is always opened; the
// SQLite ledger only when configured.
func Open(cfg *config.Config) (*App, error) {
	logger := cfg.NewLogger().WithField("app", charm.AppName)

	charmCfg, err := charm.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load charm config: %w", err)
	}
	client, err := charm.Open(charmCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm store: %w", err)
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Client: client,
		Store:  store.New(client),
		Out:    os.Stdout,
	}

	switch cfg.LedgerBackend {
	case config.LedgerSQLite:
		database, err := db.OpenDatabase(cfg.DBPath)
		if err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("failed to open ledger database: %w", err)
		}
		app.sqlDB = database
		app.Ledger = db.NewLedgerRepository(database)
		logger.WithField("path", cfg.DBPath).Debug("Using SQLite ledger")
	default:
		app.Ledger = ledger.NewKV(client)
		logger.Debug("Using KV ledger")
	}

	return app, nil
}

// Close releases the database, NATS connection, and charm client.
func (a *App) Close() error {
	if a.nc != nil {
		a.nc.Close()
	}
	if a.sqlDB != nil {
		_ = a.sqlDB.Close()
	}
	if a.Client != nil {
		return a.Client.Close()
	}
	return nil
}

// Notifier fans alerts out to the log, the terminal when requested, and
// NATS when a URL is configured.
func (a *App) Notifier(terminal bool) (notify.Notifier, error) {
	notifiers := notify.Multi{notify.NewLogNotifier(a.Logger.WithField("component", "notify"))}
	if terminal {
		notifiers = append(notifiers, notify.NewTerminalNotifier(a.Out))
	}
	if a.Config.NATSURL == "" {
		return notifiers, nil
	}
	if a.nc == nil {
		nc, err := notify.Connect(a.Config.NATSURL, a.Logger.WithField("component", "nats"))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to NATS: %w", err)
		}
		a.nc = nc
	}
	subject := a.Config.NATSSubject
	if subject == "" {
		subject = notify.DefaultSubject
	}
	return append(notifiers, notify.NewNATSNotifier(a.nc, subject, a.Logger.WithField("component", "nats"))), nil
}

// Engine builds an evaluation engine with the configured policy and retention.
func (a *App) Engine(n notify.Notifier) *engine.Engine {
	return engine.New(a.Ledger, n,
		engine.WithPolicy(a.Config.Policy()),
		engine.WithRetention(a.Config.Retention()),
		engine.WithLogger(a.Logger.WithField("component", "engine")),
	)
}
