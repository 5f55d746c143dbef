package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxConditions is the maximum number of conditions in one expression.
const MaxConditions = 32

// Op is a native comparison operator supported by every index backend.
type Op int

const (
	// OpEq is exact equality on a flat scalar field.
	OpEq Op = iota
	// OpLte is numeric less-than-or-equal.
	OpLte
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "=="
	case OpLte:
		return "<="
	default:
		return "?"
	}
}

// Condition is a single scalar predicate on a flat metadata field.
type Condition struct {
	key    string
	op     Op
	value  string
	number float64
}

// Eq creates an equality condition.
func Eq(key, value string) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	if value == "" {
		return Condition{}, fmt.Errorf("match value is required for key %q", key)
	}
	return Condition{key: key, op: OpEq, value: value}, nil
}

// EqBool creates an equality condition on a boolean field.
func EqBool(key string, v bool) (Condition, error) {
	return Eq(key, strconv.FormatBool(v))
}

// Lte creates a numeric upper-bound condition.
func Lte(key string, n float64) (Condition, error) {
	if key == "" {
		return Condition{}, fmt.Errorf("filter key is required")
	}
	return Condition{key: key, op: OpLte, number: n}, nil
}

// Key returns the field name.
func (c Condition) Key() string { return c.key }

// Op returns the comparison operator.
func (c Condition) Op() Op { return c.op }

// Value returns the equality operand.
func (c Condition) Value() string { return c.value }

// Number returns the numeric operand.
func (c Condition) Number() float64 { return c.number }

func (c Condition) String() string {
	if c.op == OpLte {
		return c.key + " <= " + strconv.FormatFloat(c.number, 'f', -1, 64)
	}
	return c.key + " == " + c.value
}

// Expression is a conjunction of conditions. The zero value matches everything.
type Expression struct {
	conds []Condition
}

// And validates and creates a conjunction.
func And(conds ...Condition) (Expression, error) {
	if len(conds) > MaxConditions {
		return Expression{}, fmt.Errorf("too many conditions (max %d)", MaxConditions)
	}
	return Expression{conds: conds}, nil
}

// Conditions returns the conjuncts in insertion order.
func (e Expression) Conditions() []Condition { return e.conds }

// IsEmpty reports whether the expression has no conditions.
func (e Expression) IsEmpty() bool { return len(e.conds) == 0 }

func (e Expression) String() string {
	if e.IsEmpty() {
		return "*"
	}
	parts := make([]string, len(e.conds))
	for i, c := range e.conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, " AND ")
}
