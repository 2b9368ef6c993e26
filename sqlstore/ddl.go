package sqlstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rediwo/redi-datasource/schema"
)

func (d Dialect) quote(name string) string {
	if d.Name == "mysql" {
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// columnType maps a schema field type to the dialect's column type.
func (d Dialect) columnType(f schema.Field) string {
	switch f.Type {
	case schema.FieldTypeInt, schema.FieldTypeEnum:
		return "INTEGER"
	case schema.FieldTypeInt64:
		return "BIGINT"
	case schema.FieldTypeFloat:
		if d.Name == "postgres" {
			return "DOUBLE PRECISION"
		}
		return "DOUBLE"
	case schema.FieldTypeDecimal:
		return "DECIMAL(18,4)"
	case schema.FieldTypeBool:
		return "BOOLEAN"
	case schema.FieldTypeDate, schema.FieldTypeDateTime:
		if d.Name == "postgres" {
			return "TIMESTAMP"
		}
		return "DATETIME"
	case schema.FieldTypeDateTimeOffset:
		if d.Name == "postgres" {
			return "TIMESTAMPTZ"
		}
		return "DATETIME"
	case schema.FieldTypeUUID:
		switch d.Name {
		case "postgres":
			return "UUID"
		case "mysql":
			return "CHAR(36)"
		}
		return "TEXT"
	default:
		if d.Name == "sqlite3" {
			return "TEXT"
		}
		return "VARCHAR(255)"
	}
}

// CreateTableSQL renders a CREATE TABLE IF NOT EXISTS statement for s.
// Many-to-one and one-to-one relations become foreign key constraints when
// the related model is in models.
func (d Dialect) CreateTableSQL(s *schema.Schema, models map[string]*schema.Schema) (string, error) {
	if err := s.Validate(); err != nil {
		return "", err
	}
	var columns []string
	for _, f := range s.Fields {
		parts := []string{d.quote(f.GetColumnName()), d.columnType(f)}
		switch {
		case f.PrimaryKey:
			parts = append(parts, "PRIMARY KEY")
		case !f.Nullable:
			parts = append(parts, "NOT NULL")
		}
		columns = append(columns, strings.Join(parts, " "))
	}

	for _, r := range s.Relations {
		if r.IsCollection() {
			continue
		}
		related, ok := models[r.Model]
		if !ok {
			continue
		}
		fk, err := s.GetField(r.ForeignKey)
		if err != nil {
			return "", fmt.Errorf("model %s: relation %s: %w", s.Name, r.Name, err)
		}
		var ref *schema.Field
		if r.References != "" {
			ref, err = related.GetField(r.References)
		} else {
			ref, err = related.GetPrimaryKey()
		}
		if err != nil {
			return "", fmt.Errorf("model %s: relation %s: %w", s.Name, r.Name, err)
		}
		columns = append(columns, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			d.quote(fk.GetColumnName()), d.quote(related.TableName), d.quote(ref.GetColumnName())))
	}

	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n  %s\n)",
		d.quote(s.TableName), strings.Join(columns, ",\n  ")), nil
}

// creationOrder puts referenced models before the models that point at
// them. Models caught in a cycle keep their relative order at the end.
func creationOrder(schemas []*schema.Schema) []*schema.Schema {
	byName := make(map[string]*schema.Schema, len(schemas))
	for _, s := range schemas {
		byName[s.Name] = s
	}
	done := make(map[string]bool, len(schemas))
	out := make([]*schema.Schema, 0, len(schemas))
	for len(out) < len(schemas) {
		progressed := false
		for _, s := range schemas {
			if done[s.Name] {
				continue
			}
			ready := true
			for _, r := range s.Relations {
				if !r.IsCollection() && r.Model != s.Name && byName[r.Model] != nil && !done[r.Model] {
					ready = false
					break
				}
			}
			if ready {
				done[s.Name] = true
				out = append(out, s)
				progressed = true
			}
		}
		if !progressed {
			for _, s := range schemas {
				if !done[s.Name] {
					done[s.Name] = true
					out = append(out, s)
				}
			}
		}
	}
	return out
}

// CreateTables creates any missing table for the given models.
func (db *DB) CreateTables(ctx context.Context, schemas []*schema.Schema) error {
	models := make(map[string]*schema.Schema, len(schemas))
	for _, s := range schemas {
		models[s.Name] = s
	}
	for _, s := range creationOrder(schemas) {
		stmt, err := db.Dialect.CreateTableSQL(s, models)
		if err != nil {
			return err
		}
		start := time.Now()
		_, err = db.ExecContext(ctx, stmt)
		db.logger.LogSQL(stmt, nil, time.Since(start))
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", s.TableName, err)
		}
	}
	return nil
}
