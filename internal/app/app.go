// Package app wires configuration, storage, schemas and the exploration
// engines together for the CLI and the MCP server.
package app

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/teranos/provgraph/am"
	"github.com/teranos/provgraph/db"
	"github.com/teranos/provgraph/errors"
	"github.com/teranos/provgraph/frame"
	"github.com/teranos/provgraph/graph"
	"github.com/teranos/provgraph/logger"
	"github.com/teranos/provgraph/prov"
	"github.com/teranos/provgraph/resolve"
	"github.com/teranos/provgraph/schema"
	"github.com/teranos/provgraph/store"
)

// App holds the long-lived components of one provgraph process.
type App struct {
	Config   *am.Config
	DB       *sql.DB
	Store    *store.SQLStore
	Schemas  *schema.DirProvider
	Explorer *prov.Explorer
	Frames   *frame.Builder
	Resolver *resolve.Resolver
	Graphs   *graph.Builder

	mu      sync.RWMutex // guards Config after Open
	watcher *schema.Watcher
	logger  *zap.SugaredLogger
}

// Options selects optional components.
type Options struct {
	// Schemas loads the schema directory. Lineage, query and nearest need
	// it; frame and db commands do not.
	Schemas bool
}

// Open opens and migrates the configured database and builds the engines.
func Open(cfg *am.Config, opts Options, log *zap.SugaredLogger) (*App, error) {
	log = logger.OrNop(log)

	path := cfg.GetDatabasePath()
	database, err := db.OpenWithMigrations(path, log)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database at %s", path)
	}

	a := &App{
		Config: cfg,
		DB:     database,
		Store:  store.NewSQLStore(database, log),
		logger: log.Named("app"),
	}
	a.Frames = frame.NewBuilder(a.Store, log)
	a.Graphs = graph.NewBuilder(cfg.Graph.Styles, log)

	if opts.Schemas {
		a.Schemas, err = schema.NewDirProvider(cfg.GetSchemaDir(), log)
		if err != nil {
			database.Close()
			return nil, errors.WithHintf(err, "set schema.dir in %s or %s", am.ConfigFileName, am.EnvKey("schema.dir"))
		}
		a.Explorer = prov.NewExplorer(a.Store, a.Store, a.Schemas, log)
		a.Resolver = resolve.New(a.Explorer, a.Frames, a.Store, a.Store, log)
	}
	return a, nil
}

// WatchSchemas reloads schemas on change when schema.watch is set. It is a
// no-op otherwise or when schemas were not loaded.
func (a *App) WatchSchemas() error {
	if a.Schemas == nil || !a.Config.Schema.Watch {
		return nil
	}
	w, err := schema.NewWatcher(a.Schemas, func(err error) {
		if err != nil {
			a.logger.Warnw("Schema reload failed, keeping previous schemas", logger.FieldError, err)
		}
	})
	if err != nil {
		return err
	}
	w.Start()
	a.watcher = w
	return nil
}

// Close stops the schema watcher and closes the database.
func (a *App) Close() error {
	if a.watcher != nil {
		a.watcher.Stop()
	}
	return a.DB.Close()
}

// Reconfigure swaps in a reloaded configuration. Only explore settings take
// effect; the database, schema directory and graph styles stay as opened.
func (a *App) Reconfigure(cfg *am.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Config = cfg
	logger.OrNop(a.logger).Infow("Applied reloaded configuration",
		"default_strategy", cfg.GetDefaultStrategy(),
		"timeout", cfg.GetTimeout().String(),
		"max_radius", cfg.Explore.MaxRadius,
	)
}

func (a *App) config() *am.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.Config
}

// WithTimeout applies explore.timeout_seconds to ctx.
func (a *App) WithTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, a.config().GetTimeout())
}

// Strategy parses text, falling back to explore.default_strategy when it is
// empty, and enforces explore.max_radius.
func (a *App) Strategy(text string) (prov.Strategy, error) {
	cfg := a.config()
	if strings.TrimSpace(text) == "" {
		text = cfg.GetDefaultStrategy()
	}
	s, err := prov.ParseStrategy(text)
	if err != nil {
		return prov.Strategy{}, err
	}
	if err := cfg.CheckRadius(s); err != nil {
		return prov.Strategy{}, err
	}
	return s, nil
}

// RequireSchemas reports a usable error when the app was opened without
// schemas.
func (a *App) RequireSchemas() error {
	if a.Explorer == nil {
		return errors.New("schemas are not loaded")
	}
	return nil
}

// SplitIDs splits a comma or whitespace separated id list.
func SplitIDs(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
