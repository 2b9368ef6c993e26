package sqlstore

import (
	"context"
	"fmt"
	"reflect"

	"github.com/rediwo/redi-datasource/include"
	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/utils"
)

// keys per IN list
const batchSize = 500

// loader fills relations named by an include tree. Each level issues one
// statement per relation (per batch of keys) and recurses into the loaded
// records before assigning them to their owners.
type loader struct {
	db *DB
}

func (l *loader) load(ctx context.Context, class *metadata.Class, records []any, node *include.Tree) error {
	for _, child := range node.Children() {
		prop := class.PropertyByName(child.PropertyName)
		if prop == nil || !prop.IsPOCO() {
			return fmt.Errorf("%s has no relation %s", class.Name, child.PropertyName)
		}
		if err := l.loadRelation(ctx, class, prop, records, child); err != nil {
			return fmt.Errorf("failed to load %s.%s: %w", class.Name, prop.Name, err)
		}
	}
	return nil
}

func (l *loader) loadRelation(ctx context.Context, class *metadata.Class, prop *metadata.Property, records []any, node *include.Tree) error {
	related := prop.Object()
	ownerKey, relatedKey := class.PropertyByName(prop.ForeignKey), related.PropertyByName(prop.References)
	if prop.IsCollection {
		ownerKey, relatedKey = class.PropertyByName(prop.References), related.PropertyByName(prop.ForeignKey)
	}
	if ownerKey == nil || relatedKey == nil {
		return fmt.Errorf("unresolved keys %s/%s", prop.ForeignKey, prop.References)
	}

	seen := make(map[string]bool)
	var keys []any
	for _, rec := range records {
		v, _ := utils.Field(rec, ownerKey.Name)
		if v = utils.Deref(v); v == nil {
			continue
		}
		if k := utils.ToString(v); !seen[k] {
			seen[k] = true
			keys = append(keys, v)
		}
	}

	var loaded []any
	for start := 0; start < len(keys); start += batchSize {
		batch, err := l.fetch(ctx, related, relatedKey, keys[start:min(start+batchSize, len(keys))])
		if err != nil {
			return err
		}
		loaded = append(loaded, batch...)
	}
	if node.Len() > 0 && len(loaded) > 0 {
		if err := l.load(ctx, related, loaded, node); err != nil {
			return err
		}
	}

	groups := make(map[string][]any)
	for _, rec := range loaded {
		v, _ := utils.Field(rec, relatedKey.Name)
		k := utils.ToString(utils.Deref(v))
		groups[k] = append(groups[k], rec)
	}
	for _, rec := range records {
		v, _ := utils.Field(rec, ownerKey.Name)
		group := groups[utils.ToString(utils.Deref(v))]
		var value any
		switch {
		case prop.IsCollection:
			if group == nil {
				group = []any{}
			}
			value = group
		case len(group) > 0:
			value = group[0]
		default:
			continue
		}
		if err := utils.SetField(rec, prop.Name, value); err != nil {
			return err
		}
	}
	return nil
}

func (l *loader) fetch(ctx context.Context, class *metadata.Class, key *metadata.Property, keys []any) ([]any, error) {
	t := class.GoType
	c := NewCompiler(l.db.Dialect)
	c.aliasByProperty = t == nil

	sql, args, err := c.Related(class, key, keys).Prepared(true).ToSQL()
	if err != nil {
		return nil, fmt.Errorf("failed to build SQL: %w", err)
	}
	rows, err := l.db.queryx(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []any
	for rows.Next() {
		if t == nil {
			m, err := scanMap(rows)
			if err != nil {
				return nil, err
			}
			out = append(out, m)
			continue
		}
		v := reflect.New(t)
		if err := rows.StructScan(v.Interface()); err != nil {
			return nil, err
		}
		out = append(out, v.Interface())
	}
	return out, rows.Err()
}
