package view

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Doc is one record flowing through a pipeline. Keys use the JSON field
// names of the stored entities (id, owner, createdAt, ...). Values are kept
// typed: uuid.UUID, string, bool, int64, float64, time.Time, []any or []Doc.
type Doc map[string]any

// Get resolves a dotted path such as "owner.username". Missing segments
// yield nil.
func (d Doc) Get(path string) any {
	if d == nil {
		return nil
	}
	head, rest, nested := strings.Cut(path, ".")
	v, ok := d[head]
	if !ok {
		return nil
	}
	if !nested {
		return v
	}
	switch child := v.(type) {
	case Doc:
		return child.Get(rest)
	case map[string]any:
		return Doc(child).Get(rest)
	}
	return nil
}

// Clone makes a shallow copy so stages can add or drop keys without
// touching documents shared between lookups.
func (d Doc) Clone() Doc {
	out := make(Doc, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// asSlice normalizes the array shapes a Doc may carry.
func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case []any:
		return s, true
	case []Doc:
		out := make([]any, len(s))
		for i, d := range s {
			out[i] = d
		}
		return out, true
	case []uuid.UUID:
		out := make([]any, len(s))
		for i, id := range s {
			out[i] = id
		}
		return out, true
	case []string:
		out := make([]any, len(s))
		for i, str := range s {
			out[i] = str
		}
		return out, true
	}
	return nil, false
}

func asDoc(v any) (Doc, bool) {
	switch d := v.(type) {
	case Doc:
		return d, true
	case map[string]any:
		return Doc(d), true
	}
	return nil, false
}

// keyOf gives a comparable identity for join and group keys so that a
// uuid.UUID and its string form match.
func keyOf(v any) (string, bool) {
	switch k := v.(type) {
	case nil:
		return "", false
	case uuid.UUID:
		return k.String(), true
	case string:
		return k, true
	case fmt.Stringer:
		return k.String(), true
	}
	return fmt.Sprint(v), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// compare orders two scalar values. Mixed or unknown types compare by their
// string form; nil sorts first.
func compare(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	if ta, ok := a.(time.Time); ok {
		if tb, ok := b.(time.Time); ok {
			return ta.Compare(tb)
		}
	}
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			}
			return 0
		}
	}
	ka, _ := keyOf(a)
	kb, _ := keyOf(b)
	return strings.Compare(ka, kb)
}
