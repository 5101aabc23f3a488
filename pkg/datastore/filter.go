package datastore

import (
	"strconv"
	"strings"
	"time"
)

// Operator is a user-facing query operator as selected in the console.
type Operator string

// Query operators.
const (
	OpEqual        Operator = "EQUAL"
	OpNot          Operator = "NOT"
	OpGreater      Operator = "GREATER"
	OpGreaterEqual Operator = "GREATER_EQUAL"
	OpLess         Operator = "LESS"
	OpLessEqual    Operator = "LESS_EQUAL"
	OpExists       Operator = "EXISTS"
	OpNotExists    Operator = "NOT_EXISTS"
	OpIn           Operator = "IN"
	OpNotIn        Operator = "NOT_IN"
	OpBefore       Operator = "BEFORE"
	OpAfter        Operator = "AFTER"
	OpBetween      Operator = "BETWEEN"
	OpNotBetween   Operator = "NOT_BETWEEN"
	OpContains     Operator = "CONTAINS"
	OpNotContains  Operator = "NOT_CONTAINS"
)

const (
	setSeparator   = ","
	rangeSeparator = "~"
)

// Condition is a single UI-level query condition before translation to
// the wire filter tree.
type Condition struct {
	ColumnName string   `json:"columnName"`
	Operator   Operator `json:"operator"`
	Type       DataType `json:"type"`
	Value      string   `json:"value"`
}

// FromUI translates a condition into the store's filter tree. An empty
// value yields (nil, nil): no filter contributed. CONTAINS and
// NOT_CONTAINS are recognized but unimplemented and yield
// ErrUnsupportedOperator alongside a nil filter.
func FromUI(cond Condition) (*FilterDesc, error) {
	if cond.Value == "" {
		return nil, nil
	}

	switch cond.Operator {
	case OpIn:
		return inFilter(cond), nil
	case OpNotIn:
		return notNode(inFilter(cond)), nil
	case OpBefore:
		return timestampFilter(cond, string(OpLess))
	case OpAfter:
		return timestampFilter(cond, string(OpGreater))
	case OpBetween:
		return rangeFilter(cond, string(OpGreaterEqual), string(OpLessEqual), string(OpAnd))
	case OpNotBetween:
		return rangeFilter(cond, string(OpLessEqual), string(OpGreaterEqual), string(OpOr))
	case OpContains, OpNotContains:
		return nil, ErrUnsupportedOperator
	default:
		return comparison(string(cond.Operator), cond.ColumnName, typedOperand(cond.Type, cond.Value)), nil
	}
}

// Boolean combinators of the wire filter tree.
const (
	OpAnd Operator = "AND"
	OpOr  Operator = "OR"
)

// And combines operand filters: nil for empty input, the single child
// unwrapped for one, an AND node otherwise.
func And(filters []*FilterDesc) *FilterDesc {
	nonNil := make([]*FilterDesc, 0, len(filters))
	for _, f := range filters {
		if f != nil {
			nonNil = append(nonNil, f)
		}
	}
	switch len(nonNil) {
	case 0:
		return nil
	case 1:
		return nonNil[0]
	default:
		node := &FilterDesc{Operator: string(OpAnd)}
		for _, f := range nonNil {
			node.Operands = append(node.Operands, OperandDesc{Filter: f})
		}
		return node
	}
}

// inFilter expands a comma-separated value into EQUAL (one element) or
// an OR of EQUAL leaves (several).
func inFilter(cond Condition) *FilterDesc {
	parts := strings.Split(cond.Value, setSeparator)
	if len(parts) == 1 {
		return comparison(string(OpEqual), cond.ColumnName, typedOperand(cond.Type, parts[0]))
	}
	node := &FilterDesc{Operator: string(OpOr)}
	for _, part := range parts {
		eq := comparison(string(OpEqual), cond.ColumnName, typedOperand(cond.Type, part))
		node.Operands = append(node.Operands, OperandDesc{Filter: eq})
	}
	return node
}

func notNode(f *FilterDesc) *FilterDesc {
	return &FilterDesc{
		Operator: string(OpNot),
		Operands: []OperandDesc{{Filter: f}},
	}
}

// timestampFilter compares the column against the first tilde-delimited
// segment parsed as epoch millis.
func timestampFilter(cond Condition, operator string) (*FilterDesc, error) {
	first, _, _ := strings.Cut(cond.Value, rangeSeparator)
	millis, err := parseMillis(first)
	if err != nil {
		return nil, err
	}
	return comparison(operator, cond.ColumnName, intOperand(millis)), nil
}

// rangeFilter builds the BETWEEN family: two bounds joined by combine,
// degrading to the lower-bound comparison alone when the upper bound is
// absent.
func rangeFilter(cond Condition, lowerOp, upperOp, combine string) (*FilterDesc, error) {
	lower, upper, _ := strings.Cut(cond.Value, rangeSeparator)
	lowerMillis, err := parseMillis(lower)
	if err != nil {
		return nil, err
	}
	lowerNode := comparison(lowerOp, cond.ColumnName, intOperand(lowerMillis))
	if strings.TrimSpace(upper) == "" {
		return lowerNode, nil
	}
	upperMillis, err := parseMillis(upper)
	if err != nil {
		return nil, err
	}
	upperNode := comparison(upperOp, cond.ColumnName, intOperand(upperMillis))
	return &FilterDesc{
		Operator: combine,
		Operands: []OperandDesc{{Filter: lowerNode}, {Filter: upperNode}},
	}, nil
}

// comparison builds a leaf node: column reference plus typed value.
func comparison(operator, columnName string, value OperandDesc) *FilterDesc {
	return &FilterDesc{
		Operator: operator,
		Operands: []OperandDesc{{ColumnName: columnName}, value},
	}
}

// typedOperand encodes the UI string value into the wire field matching
// the declared type. Unrecognized types default to stringValue.
func typedOperand(t DataType, value string) OperandDesc {
	value = strings.TrimSpace(value)
	switch t {
	case TypeFloat16, TypeFloat32, TypeFloat64:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return OperandDesc{FloatValue: &f}
		}
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64:
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return OperandDesc{IntValue: &i}
		}
	case TypeBool:
		b := value == "true" || value == "1"
		return OperandDesc{BoolValue: &b}
	case TypeBytes:
		return OperandDesc{BytesValue: &value}
	}
	return OperandDesc{StringValue: &value}
}

func intOperand(i int64) OperandDesc {
	return OperandDesc{IntValue: &i}
}

// parseMillis parses a timestamp segment: epoch millis as digits, or an
// RFC 3339 / date-only string.
func parseMillis(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UnixMilli(), nil
		}
	}
	return 0, &UnsupportedTypeError{Type: TypeInt64, Value: s}
}
