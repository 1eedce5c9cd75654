package predicates

import (
	"fmt"
	"math"
)

// Operator is a numeric comparison operator
type Operator int

const (
	Less Operator = iota
	LessOrEqual
	Equal
	GreaterOrEqual
	Greater
)

// String returns the symbol of the operator
func (o Operator) String() string {
	switch o {
	case Less:
		return "<"
	case LessOrEqual:
		return "<="
	case Equal:
		return "=="
	case GreaterOrEqual:
		return ">="
	case Greater:
		return ">"
	default:
		return "?"
	}
}

// ParseOperator reads a symbol or a name (lt, le, eq, ge, gt)
func ParseOperator(value string) (Operator, error) {
	switch value {
	case "<", "lt":
		return Less, nil
	case "<=", "le", "lte":
		return LessOrEqual, nil
	case "==", "=", "eq":
		return Equal, nil
	case ">=", "ge", "gte":
		return GreaterOrEqual, nil
	case ">", "gt":
		return Greater, nil
	}

	return Equal, fmt.Errorf("unknown operator %q", value)
}

// FloatComparator compares floats, values closer than epsilon are equal
func FloatComparator(epsilon float64) func(a, b float64) int {
	return func(a, b float64) int {
		switch {
		case math.Abs(a-b) <= epsilon:
			return 0
		case a < b:
			return -1
		default:
			return 1
		}
	}
}

// accepts returns true if comparison result matches the operator
func (o Operator) accepts(comparison int) bool {
	switch o {
	case Less:
		return comparison < 0
	case LessOrEqual:
		return comparison <= 0
	case Equal:
		return comparison == 0
	case GreaterOrEqual:
		return comparison >= 0
	case Greater:
		return comparison > 0
	default:
		return false
	}
}
