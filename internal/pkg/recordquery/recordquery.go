// Package recordquery implements the shared search + sort engine behind
// every list view (offers, customers, agents, claims, policies, documents).
// Each view supplies only its own field selectors; the matching and
// comparison logic lives here once.
package recordquery

import (
	"sort"
	"strings"
	"time"
)

// DateLayout is the display format dates are matched against when searching.
const DateLayout = "02/01/2006"

// Direction controls sort order.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection normalizes a caller-supplied direction, defaulting to asc.
func ParseDirection(s string) Direction {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Fields describes how one record type participates in querying: which
// string fields are searchable, which date fields are matched by their
// formatted value, and which sort keys map to value selectors.
type Fields[T any] struct {
	Search []func(T) string
	Dates  []func(T) time.Time
	Sort   map[string]func(T) any
}

// Run filters records by a case-insensitive substring search and stable-sorts
// them by the selected key. An empty search term matches everything; an
// unknown sort key leaves input order untouched. Records with equal sort
// values keep their relative input order.
func Run[T any](records []T, fields Fields[T], searchTerm, sortKey string, dir Direction) []T {
	out := make([]T, 0, len(records))

	term := strings.ToLower(strings.TrimSpace(searchTerm))
	for _, r := range records {
		if term == "" || matches(r, fields, term) {
			out = append(out, r)
		}
	}

	selector, ok := fields.Sort[sortKey]
	if !ok {
		return out
	}

	sort.SliceStable(out, func(i, j int) bool {
		less := compare(normalize(selector(out[i])), normalize(selector(out[j])))
		if dir == Desc {
			return less > 0
		}
		return less < 0
	})
	return out
}

func matches[T any](record T, fields Fields[T], term string) bool {
	for _, get := range fields.Search {
		if strings.Contains(strings.ToLower(get(record)), term) {
			return true
		}
	}
	for _, get := range fields.Dates {
		t := get(record)
		if t.IsZero() {
			continue
		}
		if strings.Contains(t.Format(DateLayout), term) {
			return true
		}
	}
	return false
}

// normalized is a comparable projection of a field value: numbers, booleans
// and dates become floats, everything else a lowercased string. Nil values
// collapse to the zero of their bucket so missing data sorts to one end.
type normalized struct {
	num   float64
	str   string
	isNum bool
}

func normalize(v any) normalized {
	switch x := v.(type) {
	case nil:
		return normalized{str: ""}
	case string:
		return normalized{str: strings.ToLower(x)}
	case bool:
		if x {
			return normalized{num: 1, isNum: true}
		}
		return normalized{num: 0, isNum: true}
	case int:
		return normalized{num: float64(x), isNum: true}
	case int64:
		return normalized{num: float64(x), isNum: true}
	case uint:
		return normalized{num: float64(x), isNum: true}
	case float64:
		return normalized{num: x, isNum: true}
	case time.Time:
		if x.IsZero() {
			return normalized{num: 0, isNum: true}
		}
		return normalized{num: float64(x.UnixMilli()), isNum: true}
	case *time.Time:
		if x == nil {
			return normalized{num: 0, isNum: true}
		}
		return normalize(*x)
	case *float64:
		if x == nil {
			return normalized{num: 0, isNum: true}
		}
		return normalized{num: *x, isNum: true}
	case *string:
		if x == nil {
			return normalized{str: ""}
		}
		return normalized{str: strings.ToLower(*x)}
	default:
		return normalized{str: ""}
	}
}

// compare returns -1, 0 or 1. Numeric values sort before strings when a
// selector yields mixed kinds.
func compare(a, b normalized) int {
	if a.isNum && b.isNum {
		switch {
		case a.num < b.num:
			return -1
		case a.num > b.num:
			return 1
		}
		return 0
	}
	if a.isNum != b.isNum {
		if a.isNum {
			return -1
		}
		return 1
	}
	return strings.Compare(a.str, b.str)
}
