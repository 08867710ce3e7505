package view

import "github.com/google/uuid"

// Expr computes a derived value from a document.
type Expr func(d Doc) any

// Field reads a (dotted) path.
func Field(path string) Expr {
	return func(d Doc) any { return d.Get(path) }
}

// Literal always yields v.
func Literal(v any) Expr {
	return func(Doc) any { return v }
}

// Size is the length of the array at path, 0 when missing.
func Size(path string) Expr {
	return func(d Doc) any {
		s, _ := asSlice(d.Get(path))
		return int64(len(s))
	}
}

// First is the first element of the array at path, nil when empty.
func First(path string) Expr {
	return func(d Doc) any {
		s, _ := asSlice(d.Get(path))
		if len(s) == 0 {
			return nil
		}
		return s[0]
	}
}

// Contains reports whether any element of the array at path has field equal
// to value. A nil or zero uuid value never matches, which is how anonymous
// viewers end up with false.
func Contains(path, field string, value any) Expr {
	return func(d Doc) any {
		if value == nil {
			return false
		}
		if id, ok := value.(uuid.UUID); ok && id == uuid.Nil {
			return false
		}
		want, _ := keyOf(value)
		s, _ := asSlice(d.Get(path))
		for _, el := range s {
			var got any = el
			if field != "" {
				sub, ok := asDoc(el)
				if !ok {
					continue
				}
				got = sub.Get(field)
			}
			if k, ok := keyOf(got); ok && k == want {
				return true
			}
		}
		return false
	}
}

// SumOf adds up the numeric field of every element of the array at path.
// The result stays an int64 unless a float shows up.
func SumOf(path, field string) Expr {
	return func(d Doc) any {
		s, _ := asSlice(d.Get(path))
		return sum(s, func(el any) any {
			sub, ok := asDoc(el)
			if !ok {
				return nil
			}
			return sub.Get(field)
		})
	}
}

func sum(items []any, pick func(any) any) any {
	var (
		total   int64
		ftotal  float64
		isFloat bool
	)
	for _, it := range items {
		switch n := pick(it).(type) {
		case int:
			total += int64(n)
		case int32:
			total += int64(n)
		case int64:
			total += n
		case float32:
			isFloat = true
			ftotal += float64(n)
		case float64:
			isFloat = true
			ftotal += n
		}
	}
	if isFloat {
		return ftotal + float64(total)
	}
	return total
}
