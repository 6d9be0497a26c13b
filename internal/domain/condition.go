package domain

import (
	"strconv"
	"strings"
)

// Operator is a condition comparison operator. The set is closed on the
// evaluator side but open on the data side: tenant configuration written
// against a newer schema may carry operators this build does not know,
// and those must not hide fields.
type Operator string

const (
	OpEq         Operator = "=="
	OpEqWord     Operator = "eq"
	OpNotEq      Operator = "!="
	OpIn         Operator = "in"
	OpNotIn      Operator = "not_in"
	OpEmpty      Operator = "empty"
	OpNotEmpty   Operator = "not_empty"
	OpGt         Operator = ">"
	OpLt         Operator = "<"
	OpGte        Operator = ">="
	OpLte        Operator = "<="
	OpContains   Operator = "contains"
	OpStartsWith Operator = "starts_with"
	OpEndsWith   Operator = "ends_with"
)

// Condition is a single field/operator/value predicate.
type Condition struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Value    any      `json:"value,omitempty"`
}

// Evaluate applies an ordered list of conditions to a flat record and
// returns true only if every condition holds (logical AND). An empty
// list means no restriction.
//
// The evaluator is deliberately fail-open: a condition whose field is
// absent from the record is vacuously true, and an unknown operator is
// true. Partially submitted forms must never hide fields the user still
// needs, and configuration written by a newer schema must keep working.
func Evaluate(conditions []Condition, record map[string]any) bool {
	for _, cond := range conditions {
		value, present := record[cond.Field]
		if !present {
			continue
		}
		if !cond.holds(value) {
			return false
		}
	}
	return true
}

func (c Condition) holds(value any) bool {
	switch c.Operator {
	case OpEq, OpEqWord:
		return looseEqual(value, c.Value)
	case OpNotEq:
		return !looseEqual(value, c.Value)
	case OpIn:
		return inSet(value, c.Value)
	case OpNotIn:
		return !inSet(value, c.Value)
	case OpEmpty:
		return isEmpty(value)
	case OpNotEmpty:
		return !isEmpty(value)
	case OpGt, OpLt, OpGte, OpLte:
		return numericCompare(c.Operator, value, c.Value)
	case OpContains, OpStartsWith, OpEndsWith:
		return stringMatch(c.Operator, value, c.Value)
	}
	// Unknown operator: fail open.
	return true
}

// looseEqual compares two values the way tenant-authored configuration
// expects: the number 5 and the string "5" are equal.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
	}
	if ab, aok := a.(bool); aok {
		if bb, bok := b.(bool); bok {
			return ab == bb
		}
	}
	return stringify(a) == stringify(b)
}

// inSet treats the condition value as a set and tests membership using
// loose equality. A scalar condition value is a one-element set.
func inSet(value, set any) bool {
	switch items := set.(type) {
	case []any:
		for _, item := range items {
			if looseEqual(value, item) {
				return true
			}
		}
		return false
	case []string:
		for _, item := range items {
			if looseEqual(value, item) {
				return true
			}
		}
		return false
	default:
		return looseEqual(value, set)
	}
}

func isEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	if f, ok := toFloat(value); ok {
		return f == 0
	}
	return false
}

// numericCompare resolves ordering operators. A non-numeric side makes
// the condition false, not an error.
func numericCompare(op Operator, a, b any) bool {
	af, aok := toFloat(a)
	bf, bok := toFloat(b)
	if !aok || !bok {
		return false
	}
	switch op {
	case OpGt:
		return af > bf
	case OpLt:
		return af < bf
	case OpGte:
		return af >= bf
	case OpLte:
		return af <= bf
	}
	return false
}

// stringMatch resolves containment operators. A non-string field value
// is false, not an error.
func stringMatch(op Operator, value, needle any) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	n := stringify(needle)
	switch op {
	case OpContains:
		return strings.Contains(s, n)
	case OpStartsWith:
		return strings.HasPrefix(s, n)
	case OpEndsWith:
		return strings.HasSuffix(s, n)
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case bool:
		return strconv.FormatBool(s)
	case nil:
		return ""
	}
	return ""
}
