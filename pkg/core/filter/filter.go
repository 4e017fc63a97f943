// Package filter evaluates metadata predicates against stored records.
//
// A filter is a post-search test: it never guides graph traversal, it only
// decides whether a candidate the index already found is accepted. Evaluation
// is total. Missing keys, mismatched types and malformed expressions all
// evaluate to "no match" instead of returning an error or panicking.
package filter

// Filter is a predicate over a record's metadata.
type Filter interface {
	Match(meta map[string]any) bool
}

// Matches reports whether meta satisfies f. A nil filter accepts everything.
func Matches(f Filter, meta map[string]any) bool {
	if f == nil {
		return true
	}
	return f.Match(meta)
}

// Op is a condition operator.
type Op string

const (
	Eq        Op = "eq"
	Ne        Op = "ne"
	Gt        Op = "gt"
	Lt        Op = "lt"
	Gte       Op = "gte"
	Lte       Op = "lte"
	Contains  Op = "contains"
	In        Op = "in"
	NotIn     Op = "not_in"
	Between   Op = "between"
	Regex     Op = "regex"
	Exists    Op = "exists"
	NotExists Op = "not_exists"
)

// Equals is a flat exact-match filter: every key must be present and equal.
type Equals map[string]any

// Match implements Filter.
func (e Equals) Match(meta map[string]any) bool {
	for k, want := range e {
		got, ok := meta[k]
		if !ok || !equal(got, want) {
			return false
		}
	}
	return true
}

// Condition tests a single metadata field.
//
// Value depends on Op: a scalar for comparisons, a list for In and NotIn,
// a two element numeric list for Between, a pattern string for Regex, and
// nothing for Exists and NotExists.
type Condition struct {
	Field string `json:"field"`
	Op    Op     `json:"op"`
	Value any    `json:"value,omitempty"`
}

// Match implements Filter.
func (c Condition) Match(meta map[string]any) bool {
	got, ok := meta[c.Field]
	if c.Op == NotExists {
		return !ok
	}
	if !ok {
		return false
	}

	switch c.Op {
	case Exists:
		return true
	case Eq:
		return equal(got, c.Value)
	case Ne:
		return sameKind(got, c.Value) && !equal(got, c.Value)
	case Gt:
		cmp, ok := compare(got, c.Value)
		return ok && cmp > 0
	case Gte:
		cmp, ok := compare(got, c.Value)
		return ok && cmp >= 0
	case Lt:
		cmp, ok := compare(got, c.Value)
		return ok && cmp < 0
	case Lte:
		cmp, ok := compare(got, c.Value)
		return ok && cmp <= 0
	case Contains:
		return contains(got, c.Value)
	case In:
		return in(got, c.Value)
	case NotIn:
		list, ok := toList(c.Value)
		return ok && !overlaps(got, list)
	case Between:
		return between(got, c.Value)
	case Regex:
		return regexMatch(got, c.Value)
	}
	return false
}

// Logic combines the children of a Group.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// Group combines filters with AND or OR. Groups nest.
type Group struct {
	Logic   Logic
	Filters []Filter
}

// And matches when every child matches. An empty And matches everything.
func And(filters ...Filter) Group {
	return Group{Logic: LogicAnd, Filters: filters}
}

// Or matches when at least one child matches. An empty Or matches nothing.
func Or(filters ...Filter) Group {
	return Group{Logic: LogicOr, Filters: filters}
}

// Match implements Filter. Nil children are skipped.
func (g Group) Match(meta map[string]any) bool {
	switch g.Logic {
	case LogicAnd:
		for _, f := range g.Filters {
			if f != nil && !f.Match(meta) {
				return false
			}
		}
		return true
	case LogicOr:
		for _, f := range g.Filters {
			if f != nil && f.Match(meta) {
				return true
			}
		}
		return false
	}
	return false
}
