package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/rediwo/redi-datasource/config"
	"github.com/rediwo/redi-datasource/datasource"
	"github.com/rediwo/redi-datasource/logger"
	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/schema"
	"github.com/rediwo/redi-datasource/sqlstore"
)

// environment holds what every data command needs: the database, the
// metadata registry and the data source settings.
type environment struct {
	db       *sqlstore.DB
	schemas  []*schema.Schema
	registry *metadata.Registry
	options  datasource.Options
	loggers  []logger.Logger
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.dbURI != "" {
		cfg.Database.URL = opts.dbURI
	}
	if opts.schemaPath != "" {
		cfg.Schema.Path = opts.schemaPath
	}
	return cfg, nil
}

func loadRegistry(path string) ([]*schema.Schema, *metadata.Registry, error) {
	if path == "" {
		return nil, nil, errors.New("no schema file, set --schema or schema.path")
	}
	schemas, err := schema.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	registry := metadata.NewRegistry(metadata.NewSchemaBackend(schemas...))
	if err := registry.Build(); err != nil {
		return nil, nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}
	return schemas, registry, nil
}

func setup(opts *options) (*environment, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	if cfg.Database.URL == "" {
		return nil, errors.New("no database, set --db or database.url")
	}
	schemas, registry, err := loadRegistry(cfg.Schema.Path)
	if err != nil {
		return nil, err
	}
	db, err := sqlstore.Open(context.Background(), cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	sqlLog := cfg.NewLogger("sql")
	db.SetLogger(sqlLog)
	options := cfg.DataSourceOptions()
	return &environment{
		db:       db,
		schemas:  schemas,
		registry: registry,
		options:  options,
		loggers:  []logger.Logger{sqlLog, options.Logger},
	}, nil
}

func (e *environment) dataSource(model string) (*datasource.StandardDataSource[map[string]any], error) {
	class, err := e.registry.Class(model)
	if err != nil {
		return nil, err
	}
	provider := sqlstore.NewProvider[map[string]any](e.db, class)
	return datasource.New[map[string]any](provider, class, e.options), nil
}

func (e *environment) Close() error {
	syncLoggers(e.loggers...)
	return e.db.Close()
}

// syncLoggers flushes loggers that buffer, such as zap. Sync errors are
// ignored: zap reports one for every terminal or pipe on stdout.
func syncLoggers(loggers ...logger.Logger) {
	for _, l := range loggers {
		if s, ok := l.(interface{ Sync() error }); ok {
			_ = s.Sync()
		}
	}
}
