package cmd

import (
	"context"
	"database/sql"

	"github.com/sqlpilot/sqlpilot/internal/agent"
	"github.com/sqlpilot/sqlpilot/internal/config"
	"github.com/sqlpilot/sqlpilot/internal/db"
	"github.com/sqlpilot/sqlpilot/internal/errors"
	"github.com/sqlpilot/sqlpilot/internal/llm"
	"github.com/sqlpilot/sqlpilot/internal/logging"
	"github.com/sqlpilot/sqlpilot/internal/schema"
)

// app bundles the wired collaborators behind one Close.
type app struct {
	conn     *sql.DB
	registry *schema.Registry
	agent    *agent.Agent
}

// buildApp opens the database, loads or introspects the schema registry, and
// assembles the agent with its LLM service and executor.
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	conn, err := db.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	registry, err := loadRegistry(ctx, cfg, conn)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	svc, err := llm.NewService(cfg.LLM)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, errors.ErrTypeConfig, "failed to configure LLM service")
	}

	ag := agent.New(agent.Options{
		Registry:       registry,
		LLM:            svc,
		Runner:         db.NewExecutor(conn, cfg.QueryTimeout()),
		Config:         cfg.Agent,
		DuplicateCheck: cfg.Schema.DuplicateCheck,
	})

	return &app{conn: conn, registry: registry, agent: ag}, nil
}

// loadRegistry prefers the YAML schema file; without one, the live database
// is introspected once at startup.
func loadRegistry(ctx context.Context, cfg *config.Config, conn *sql.DB) (*schema.Registry, error) {
	if cfg.Schema.Path != "" {
		logging.GetLogger().WithField("path", cfg.Schema.Path).Debug("loading schema file")
		return schema.LoadFile(cfg.Schema.Path)
	}

	columns, err := db.IntrospectColumns(ctx, cfg.Database.Driver, conn)
	if err != nil {
		return nil, err
	}

	if len(columns) == 0 {
		return nil, errors.New(errors.ErrTypeConfig, "database has no tables to introspect").
			WithSuggestion("run 'sqlpilot seed' to create the demo tables, or pass --schema")
	}

	return schema.FromColumns(columns)
}

func (a *app) Close() {
	if a.conn != nil {
		_ = a.conn.Close()
	}
}
