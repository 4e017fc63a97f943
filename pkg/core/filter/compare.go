package filter

import (
	"encoding/json"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/golang/groupcache/lru"
)

// toFloat converts any Go numeric kind (and json.Number) to float64.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// toList returns the elements of any slice or array value.
func toList(v any) ([]any, bool) {
	switch l := v.(type) {
	case []any:
		return l, true
	case []string:
		out := make([]any, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out, true
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	// []byte is treated as a scalar, not a list of numbers.
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// sameKind reports whether a and b are of a kind that can be tested for
// equality: both numbers, both strings, both bools, both lists or both nil.
func sameKind(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if _, ok := toFloat(a); ok {
		_, ok = toFloat(b)
		return ok
	}
	switch a.(type) {
	case string:
		_, ok := b.(string)
		return ok
	case bool:
		_, ok := b.(bool)
		return ok
	}
	_, okA := toList(a)
	_, okB := toList(b)
	return okA && okB
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}

	la, okA := toList(a)
	lb, okB := toList(b)
	if !okA || !okB || len(la) != len(lb) {
		return false
	}
	for i := range la {
		if !equal(la[i], lb[i]) {
			return false
		}
	}
	return true
}

// compare orders numbers numerically and strings lexicographically. The
// second result is false when a and b cannot be ordered against each other.
func compare(a, b any) (int, bool) {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		if !ok {
			return 0, false
		}
		switch {
		case fa < fb:
			return -1, true
		case fa > fb:
			return 1, true
		}
		return 0, true
	}
	sa, okA := a.(string)
	sb, okB := b.(string)
	if okA && okB {
		return strings.Compare(sa, sb), true
	}
	return 0, false
}

// contains is substring search on strings and element membership on lists.
func contains(got, want any) bool {
	if s, ok := got.(string); ok {
		sub, ok := want.(string)
		return ok && strings.Contains(s, sub)
	}
	list, ok := toList(got)
	if !ok {
		return false
	}
	for _, item := range list {
		if equal(item, want) {
			return true
		}
	}
	return false
}

func in(got, want any) bool {
	list, ok := toList(want)
	return ok && overlaps(got, list)
}

// overlaps reports whether got (a scalar or a list) shares an element with
// list.
func overlaps(got any, list []any) bool {
	if values, ok := toList(got); ok {
		for _, v := range values {
			for _, item := range list {
				if equal(v, item) {
					return true
				}
			}
		}
		return false
	}
	for _, item := range list {
		if equal(got, item) {
			return true
		}
	}
	return false
}

// between is an inclusive numeric range test. Bounds must be a two element
// list of numbers with lo <= hi.
func between(got, bounds any) bool {
	list, ok := toList(bounds)
	if !ok || len(list) != 2 {
		return false
	}
	lo, okLo := toFloat(list[0])
	hi, okHi := toFloat(list[1])
	v, okV := toFloat(got)
	if !okLo || !okHi || !okV || lo > hi {
		return false
	}
	return v >= lo && v <= hi
}

// maxCachedPatterns bounds the compiled regex cache. Patterns come from
// client filters, so the set is unbounded.
const maxCachedPatterns = 256

var (
	regexMu    sync.Mutex
	regexCache = lru.New(maxCachedPatterns)
)

// compileCached returns the compiled pattern, or nil when it does not
// compile. Invalid patterns are not cached.
func compileCached(pattern string) *regexp.Regexp {
	regexMu.Lock()
	if re, ok := regexCache.Get(pattern); ok {
		regexMu.Unlock()
		return re.(*regexp.Regexp)
	}
	regexMu.Unlock()

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil
	}
	regexMu.Lock()
	regexCache.Add(pattern, re)
	regexMu.Unlock()
	return re
}

func regexMatch(got, pattern any) bool {
	s, ok := got.(string)
	if !ok {
		return false
	}
	p, ok := pattern.(string)
	if !ok {
		return false
	}
	re := compileCached(p)
	return re != nil && re.MatchString(s)
}
