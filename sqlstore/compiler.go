package sqlstore

import (
	"fmt"
	"math"
	"strings"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"

	"github.com/rediwo/redi-datasource/metadata"
	"github.com/rediwo/redi-datasource/query"
	"github.com/rediwo/redi-datasource/types"
	"github.com/rediwo/redi-datasource/utils"
)

// Compiler turns flattened queries into SQL for one dialect. Conditions
// and orderings on a relation path become correlated subqueries: an EXISTS
// for filters (a collection matches when any element does) and a scalar
// subquery for sort keys.
type Compiler struct {
	dialect Dialect
	// select columns under their property names instead of their column
	// names, for map records
	aliasByProperty bool
}

func NewCompiler(dialect Dialect) *Compiler {
	return &Compiler{dialect: dialect}
}

// scope carries alias numbering through one statement.
type scope struct {
	next int
}

func (s *scope) alias() string {
	a := fmt.Sprintf("t%d", s.next)
	s.next++
	return a
}

func col(alias string, p *metadata.Property) exp.IdentifierExpression {
	return goqu.I(alias + "." + p.Column)
}

// Select builds the statement returning class rows for plan.
func (c *Compiler) Select(class *metadata.Class, plan *query.Plan) (*goqu.SelectDataset, error) {
	s := &scope{}
	root := s.alias()
	ds, err := c.filtered(class, plan, s, root)
	if err != nil {
		return nil, err
	}
	ds = ds.Select(c.columns(class, root)...)

	if len(plan.Order) > 0 {
		order := make([]exp.OrderedExpression, 0, len(plan.Order))
		for _, clause := range plan.Order {
			e, err := c.orderExpression(class, root, clause.Path, s)
			if err != nil {
				return nil, err
			}
			if clause.Direction == types.Desc {
				order = append(order, e.Desc())
			} else {
				order = append(order, e.Asc())
			}
		}
		ds = ds.Order(order...)
	}
	return c.window(ds, plan), nil
}

// Count builds the statement counting the rows plan returns.
func (c *Compiler) Count(class *metadata.Class, plan *query.Plan) (*goqu.SelectDataset, error) {
	if plan.Offset > 0 || plan.Limit != nil {
		inner, err := c.Select(class, &query.Plan{Class: plan.Class, Where: plan.Where, Offset: plan.Offset, Limit: plan.Limit})
		if err != nil {
			return nil, err
		}
		return c.dialect.builder().From(inner.As("c")).Select(goqu.COUNT(goqu.Star())), nil
	}
	s := &scope{}
	ds, err := c.filtered(class, plan, s, s.alias())
	if err != nil {
		return nil, err
	}
	return ds.Select(goqu.COUNT(goqu.Star())), nil
}

// Related builds the statement loading class rows whose key is in values.
func (c *Compiler) Related(class *metadata.Class, key *metadata.Property, values []any) *goqu.SelectDataset {
	const alias = "t0"
	return c.dialect.builder().
		From(goqu.T(class.Table).As(alias)).
		Select(c.columns(class, alias)...).
		Where(col(alias, key).In(values...))
}

func (c *Compiler) filtered(class *metadata.Class, plan *query.Plan, s *scope, alias string) (*goqu.SelectDataset, error) {
	ds := c.dialect.builder().From(goqu.T(class.Table).As(alias))
	if plan.Where != nil {
		where, err := c.condition(class, alias, plan.Where, s)
		if err != nil {
			return nil, err
		}
		ds = ds.Where(where)
	}
	return ds, nil
}

func (c *Compiler) window(ds *goqu.SelectDataset, plan *query.Plan) *goqu.SelectDataset {
	if plan.Offset > 0 {
		ds = ds.Offset(uint(plan.Offset))
		if plan.Limit == nil && c.dialect.LimitWithOffset {
			ds = ds.Limit(math.MaxInt64)
		}
	}
	if plan.Limit != nil {
		ds = ds.Limit(uint(*plan.Limit))
	}
	return ds
}

func (c *Compiler) columns(class *metadata.Class, alias string) []any {
	var out []any
	for _, p := range class.Properties {
		if p.IsPOCO() {
			continue
		}
		name := p.Column
		if c.aliasByProperty {
			name = p.Name
		}
		out = append(out, col(alias, p).As(name))
	}
	return out
}

func (c *Compiler) condition(class *metadata.Class, alias string, cond types.Condition, s *scope) (exp.Expression, error) {
	switch cond := cond.(type) {
	case *types.AndCondition:
		parts, err := c.conditions(class, alias, cond.Conditions, s)
		if err != nil {
			return nil, err
		}
		return goqu.And(parts...), nil
	case *types.OrCondition:
		parts, err := c.conditions(class, alias, cond.Conditions, s)
		if err != nil {
			return nil, err
		}
		return goqu.Or(parts...), nil
	case *types.NotCondition:
		inner, err := c.condition(class, alias, cond.Condition, s)
		if err != nil {
			return nil, err
		}
		return goqu.L("NOT (?)", inner), nil
	case *types.ConstCondition:
		if cond.Value {
			return goqu.L("1 = 1"), nil
		}
		return goqu.L("1 = 0"), nil
	case *types.FieldCondition:
		return c.field(class, alias, cond, cond.Path, s)
	}
	return nil, fmt.Errorf("unsupported condition %T", cond)
}

func (c *Compiler) conditions(class *metadata.Class, alias string, conds []types.Condition, s *scope) ([]exp.Expression, error) {
	out := make([]exp.Expression, 0, len(conds))
	for _, sub := range conds {
		e, err := c.condition(class, alias, sub, s)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *Compiler) field(class *metadata.Class, alias string, cond *types.FieldCondition, path []string, s *scope) (exp.Expression, error) {
	p := class.PropertyByName(path[0])
	if p == nil {
		return nil, fmt.Errorf("%s has no property %s", class.Name, path[0])
	}
	if len(path) == 1 {
		if p.IsPOCO() {
			return nil, fmt.Errorf("cannot compare relation %s.%s", class.Name, p.Name)
		}
		return comparison(col(alias, p), cond)
	}
	if !p.IsPOCO() {
		return nil, fmt.Errorf("%s.%s is not a relation", class.Name, p.Name)
	}

	related := s.alias()
	join, err := joinCondition(class, alias, p, related)
	if err != nil {
		return nil, err
	}
	inner, err := c.field(p.Object(), related, cond, path[1:], s)
	if err != nil {
		return nil, err
	}
	sub := c.dialect.builder().
		From(goqu.T(p.Object().Table).As(related)).
		Select(goqu.L("1")).
		Where(join, inner)
	return goqu.L("EXISTS ?", sub), nil
}

// joinCondition links rows of p's related class (as related) to the
// owner's rows (as alias).
func joinCondition(owner *metadata.Class, alias string, p *metadata.Property, related string) (exp.Expression, error) {
	target := p.Object()
	if p.IsCollection {
		fk := target.PropertyByName(p.ForeignKey)
		ref := owner.PropertyByName(p.References)
		if fk == nil || ref == nil {
			return nil, fmt.Errorf("relation %s.%s has unresolved keys %s/%s", owner.Name, p.Name, p.ForeignKey, p.References)
		}
		return col(related, fk).Eq(col(alias, ref)), nil
	}
	fk := owner.PropertyByName(p.ForeignKey)
	ref := target.PropertyByName(p.References)
	if fk == nil || ref == nil {
		return nil, fmt.Errorf("relation %s.%s has unresolved keys %s/%s", owner.Name, p.Name, p.ForeignKey, p.References)
	}
	return col(related, ref).Eq(col(alias, fk)), nil
}

func (c *Compiler) orderExpression(class *metadata.Class, alias string, path []string, s *scope) (exp.Orderable, error) {
	p := class.PropertyByName(path[0])
	if p == nil {
		return nil, fmt.Errorf("%s has no property %s", class.Name, path[0])
	}
	if len(path) == 1 {
		if p.IsPOCO() {
			return nil, fmt.Errorf("cannot order by relation %s.%s", class.Name, p.Name)
		}
		return col(alias, p), nil
	}
	if !p.IsPOCO() || p.IsCollection {
		return nil, fmt.Errorf("cannot order by %s through %s.%s", strings.Join(path, "."), class.Name, p.Name)
	}

	related := s.alias()
	join, err := joinCondition(class, alias, p, related)
	if err != nil {
		return nil, err
	}
	inner, err := c.orderExpression(p.Object(), related, path[1:], s)
	if err != nil {
		return nil, err
	}
	sub := c.dialect.builder().
		From(goqu.T(p.Object().Table).As(related)).
		Select(inner).
		Where(join).
		Limit(1)
	return goqu.L("?", sub), nil
}

func comparison(column exp.IdentifierExpression, cond *types.FieldCondition) (exp.Expression, error) {
	var target interface {
		exp.Comparable
		exp.Inable
	} = column
	value := cond.Value
	if cond.IgnoreCase {
		target = goqu.Func("LOWER", column)
		if s, ok := value.(string); ok {
			value = strings.ToLower(s)
		}
	}

	switch cond.Operator {
	case types.OpEqual:
		return target.Eq(value), nil
	case types.OpNotEqual:
		return target.Neq(value), nil
	case types.OpGreater:
		return target.Gt(value), nil
	case types.OpGreaterEqual:
		return target.Gte(value), nil
	case types.OpLess:
		return target.Lt(value), nil
	case types.OpLessEqual:
		return target.Lte(value), nil
	case types.OpIn:
		values := cond.Values
		if cond.IgnoreCase {
			values = make([]any, len(cond.Values))
			for i, v := range cond.Values {
				if s, ok := v.(string); ok {
					v = strings.ToLower(s)
				}
				values[i] = v
			}
		}
		return target.In(values...), nil
	case types.OpContains:
		return like(target, "%"+escapeLike(utils.ToString(value))+"%"), nil
	case types.OpStartsWith:
		return like(target, escapeLike(utils.ToString(value))+"%"), nil
	case types.OpEndsWith:
		return like(target, "%"+escapeLike(utils.ToString(value))), nil
	case types.OpIsNull:
		return column.IsNull(), nil
	case types.OpIsNotNull:
		return column.IsNotNull(), nil
	}
	return nil, fmt.Errorf("unsupported operator %s", cond.Operator)
}

// likeEscape is the LIKE escape character. Backslash would need doubling
// in MySQL string literals; '!' reads the same in every dialect.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// escapeLike makes s match literally inside a LIKE pattern.
func escapeLike(s string) string { return likeEscaper.Replace(s) }

func like(target exp.Expression, pattern string) exp.Expression {
	return goqu.L("? LIKE ? ESCAPE '"+likeEscape+"'", target, pattern)
}
