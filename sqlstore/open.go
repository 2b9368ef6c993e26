package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/reflectx"

	"github.com/rediwo/redi-datasource/logger"
	"github.com/rediwo/redi-datasource/utils"
)

// DB is a connection pool with the dialect used to write its SQL.
type DB struct {
	*sqlx.DB
	Dialect Dialect
	logger  *logger.DBLogger
}

// Open connects to the database a URI names and pings it.
func Open(ctx context.Context, uri string) (*DB, error) {
	config, err := ParseURI(uri)
	if err != nil {
		return nil, err
	}
	dialect, err := DialectFor(config.Scheme)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(dialect.Driver, config.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", config.Scheme, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", config.Scheme, err)
	}
	if config.FilePath == ":memory:" {
		// every pooled connection would open its own empty database
		db.SetMaxOpenConns(1)
	}
	return Wrap(db, dialect), nil
}

// Wrap adopts an existing connection. Struct fields without a db tag map
// to their snake_case name.
func Wrap(db *sqlx.DB, dialect Dialect) *DB {
	db.Mapper = reflectx.NewMapperFunc("db", utils.ToSnakeCase)
	return &DB{DB: db, Dialect: dialect, logger: logger.NewDBLogger(nil)}
}

// SetLogger logs every statement at debug level.
func (db *DB) SetLogger(l logger.Logger) {
	db.logger = logger.NewDBLogger(l)
}

func (db *DB) queryx(ctx context.Context, sql string, args []any) (*sqlx.Rows, error) {
	start := time.Now()
	rows, err := db.QueryxContext(ctx, sql, args...)
	db.logger.LogSQL(sql, args, time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return rows, nil
}
