package filter

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidExpression is returned by Parse and FromMap for expressions whose
// structure cannot be decoded. It is a build-time error only; a Filter that
// was built never fails at evaluation time.
var ErrInvalidExpression = errors.New("invalid filter expression")

// ParseOp resolves an operator name or symbol.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eq", "=", "==", "equals":
		return Eq, nil
	case "ne", "!=", "<>", "not_equals":
		return Ne, nil
	case "gt", ">", "greater_than":
		return Gt, nil
	case "lt", "<", "less_than":
		return Lt, nil
	case "gte", ">=", "greater_or_equal":
		return Gte, nil
	case "lte", "<=", "less_or_equal":
		return Lte, nil
	case "contains":
		return Contains, nil
	case "in":
		return In, nil
	case "not_in", "nin":
		return NotIn, nil
	case "between", "range":
		return Between, nil
	case "regex", "matches", "~":
		return Regex, nil
	case "exists":
		return Exists, nil
	case "not_exists":
		return NotExists, nil
	}
	return "", fmt.Errorf("%w: unknown operator %q", ErrInvalidExpression, s)
}

// Parse decodes a JSON filter expression. Accepted shapes:
//
//	{"genre": "sci-fi", "year": 1984}                 flat exact match
//	{"field": "year", "op": "gte", "value": 1980}     single condition
//	{"and": [ ... ]} / {"or": [ ... ]}                nested groups
//
// Numbers are kept as json.Number so integer metadata compares exactly.
// An empty or "null" document yields a nil Filter.
func Parse(data []byte) (Filter, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidExpression, err)
	}
	return FromMap(raw)
}

// FromMap builds a Filter from an already decoded expression.
func FromMap(m map[string]any) (Filter, error) {
	if m == nil {
		return nil, nil
	}

	if len(m) == 1 {
		for key, v := range m {
			switch strings.ToLower(key) {
			case "and":
				return parseGroup(LogicAnd, v)
			case "or":
				return parseGroup(LogicOr, v)
			}
		}
	}

	if _, hasField := m["field"]; hasField {
		if _, hasOp := m["op"]; hasOp {
			return parseCondition(m)
		}
	}

	return Equals(m), nil
}

func parseGroup(logic Logic, v any) (Filter, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: %q expects a list, got %T", ErrInvalidExpression, logic, v)
	}
	children := make([]Filter, 0, len(items))
	for i, item := range items {
		sub, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s[%d] is %T, not an object", ErrInvalidExpression, logic, i, item)
		}
		f, err := FromMap(sub)
		if err != nil {
			return nil, err
		}
		children = append(children, f)
	}
	return Group{Logic: logic, Filters: children}, nil
}

func parseCondition(m map[string]any) (Filter, error) {
	field, ok := m["field"].(string)
	if !ok || field == "" {
		return nil, fmt.Errorf("%w: condition field must be a non-empty string", ErrInvalidExpression)
	}
	opName, ok := m["op"].(string)
	if !ok {
		return nil, fmt.Errorf("%w: condition op must be a string", ErrInvalidExpression)
	}
	op, err := ParseOp(opName)
	if err != nil {
		return nil, err
	}
	for k := range m {
		if k != "field" && k != "op" && k != "value" {
			return nil, fmt.Errorf("%w: unexpected key %q in condition", ErrInvalidExpression, k)
		}
	}
	return Condition{Field: field, Op: op, Value: m["value"]}, nil
}
