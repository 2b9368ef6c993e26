package datasource

import "errors"

var (
	// ErrNotFound is returned by GetItem when no record has the requested key.
	ErrNotFound = errors.New("item not found")
	// ErrInvalidWhere wraps parse failures of a request's freeform where clause.
	ErrInvalidWhere = errors.New("invalid where clause")
)
