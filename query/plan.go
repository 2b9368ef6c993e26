package query

import (
	"errors"
	"fmt"

	"github.com/rediwo/redi-datasource/types"
)

// ErrUnsupported is returned by Flatten for operation sequences a single
// statement cannot express.
var ErrUnsupported = errors.New("unsupported query shape")

// Plan is a query flattened into one filter, one ordering and one window,
// the form a statement-based store executes.
type Plan struct {
	Class string
	Where types.Condition
	Order []types.OrderClause
	// Offset is 0 and Limit nil when no window applies.
	Offset int
	Limit  *int
}

// Flatten folds the calls of expr into a Plan. Includes are ignored;
// filters and ordering applied after Skip or Take are rejected.
func Flatten(expr Expression) (*Plan, error) {
	root, calls, err := Calls(expr)
	if err != nil {
		return nil, err
	}
	plan := &Plan{Class: root.Class}
	var where []types.Condition
	windowed := false

	for _, call := range calls {
		switch call.Method {
		case MethodWhere:
			if windowed {
				return nil, fmt.Errorf("%w: Where after Skip or Take", ErrUnsupported)
			}
			where = append(where, call.Argument.(types.Condition))
		case MethodOrderBy:
			if windowed {
				return nil, fmt.Errorf("%w: OrderBy after Skip or Take", ErrUnsupported)
			}
			plan.Order = call.Argument.([]types.OrderClause)
		case MethodSkip:
			windowed = true
			n := call.Argument.(int)
			plan.Offset += n
			if plan.Limit != nil {
				plan.Limit = ptr(max(*plan.Limit-n, 0))
			}
		case MethodTake:
			windowed = true
			n := call.Argument.(int)
			if plan.Limit == nil || n < *plan.Limit {
				plan.Limit = ptr(n)
			}
		}
	}
	if len(where) > 0 {
		plan.Where = types.And(where...)
	}
	return plan, nil
}

func ptr[V any](v V) *V { return &v }
