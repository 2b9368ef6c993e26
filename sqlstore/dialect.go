package sqlstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"    // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"  // dialect registration
	_ "github.com/go-sql-driver/mysql"                  // driver import
	_ "github.com/lib/pq"                               // driver import
	_ "github.com/mattn/go-sqlite3"                     // driver import
)

// Dialect pairs a database/sql driver with the goqu dialect that writes
// its SQL.
type Dialect struct {
	// Name is the goqu dialect name.
	Name string
	// Driver is the database/sql driver name.
	Driver string
	// LimitWithOffset is set when OFFSET is only valid after a LIMIT.
	LimitWithOffset bool
}

func (d Dialect) builder() goqu.DialectWrapper { return goqu.Dialect(d.Name) }

var (
	dialects = make(map[string]Dialect)
	mu       sync.RWMutex
)

func init() {
	RegisterDialect(Dialect{Name: "sqlite3", Driver: "sqlite3", LimitWithOffset: true}, "sqlite", "sqlite3")
	RegisterDialect(Dialect{Name: "postgres", Driver: "postgres"}, "postgres", "postgresql")
	RegisterDialect(Dialect{Name: "mysql", Driver: "mysql", LimitWithOffset: true}, "mysql")
}

// RegisterDialect makes d available for the given URI schemes. Registering
// a scheme twice panics.
func RegisterDialect(d Dialect, schemes ...string) {
	mu.Lock()
	defer mu.Unlock()

	for _, scheme := range schemes {
		if _, exists := dialects[scheme]; exists {
			panic(fmt.Sprintf("dialect for scheme %s already registered", scheme))
		}
		dialects[scheme] = d
	}
}

// DialectFor returns the dialect registered for a URI scheme.
func DialectFor(scheme string) (Dialect, error) {
	mu.RLock()
	defer mu.RUnlock()

	d, exists := dialects[scheme]
	if !exists {
		return Dialect{}, fmt.Errorf("unsupported database type: %s", scheme)
	}
	return d, nil
}

// Schemes lists the registered URI schemes.
func Schemes() []string {
	mu.RLock()
	defer mu.RUnlock()

	out := make([]string, 0, len(dialects))
	for scheme := range dialects {
		out = append(out, scheme)
	}
	sort.Strings(out)
	return out
}
