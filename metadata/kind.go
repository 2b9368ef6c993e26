package metadata

import "strings"

// Kind is the category of a property's values as far as filtering,
// searching and sorting are concerned.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindEnum
	KindUUID
	KindDate
	// KindDateOffset values are instants; date-only input against them is
	// interpreted in the caller's time zone.
	KindDateOffset
	// KindObject is a related model, either one record or a collection.
	KindObject
)

var kindNames = [...]string{"string", "number", "bool", "enum", "uuid", "date", "dateOffset", "object"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// IsDate reports whether values are points in time.
func (k Kind) IsDate() bool { return k == KindDate || k == KindDateOffset }

type SearchMethod int

const (
	SearchBeginsWith SearchMethod = iota
	SearchContains
	SearchEquals
	// SearchEqualsNatural is a case-sensitive equality left to the store's
	// own collation.
	SearchEqualsNatural
)

func (m SearchMethod) String() string {
	switch m {
	case SearchContains:
		return "contains"
	case SearchEquals:
		return "equals"
	case SearchEqualsNatural:
		return "equalsNatural"
	default:
		return "beginsWith"
	}
}

// ParseSearchMethod reads a method name; empty means beginsWith.
func ParseSearchMethod(s string) (SearchMethod, bool) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "", "beginswith", "startswith":
		return SearchBeginsWith, true
	case "contains":
		return SearchContains, true
	case "equals":
		return SearchEquals, true
	case "equalsnatural":
		return SearchEqualsNatural, true
	}
	return SearchBeginsWith, false
}

type EnumValue struct {
	Name  string
	Value int64
}

// Enumerator can be implemented by named integer types to describe their
// values to the reflection backend.
type Enumerator interface {
	EnumValues() []EnumValue
}
