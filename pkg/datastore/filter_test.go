package datastore

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int64) *int64   { return &i }

func equalLeaf(col, v string) *FilterDesc {
	return &FilterDesc{
		Operator: "EQUAL",
		Operands: []OperandDesc{{ColumnName: col}, {StringValue: strPtr(v)}},
	}
}

func TestFromUI_InSingleValue(t *testing.T) {
	got, err := FromUI(Condition{
		ColumnName: "sys/id",
		Operator:   OpIn,
		Type:       TypeString,
		Value:      "45",
	})
	require.NoError(t, err)
	assert.Equal(t, equalLeaf("sys/id", "45"), got)
}

func TestFromUI_InMultiValue(t *testing.T) {
	got, err := FromUI(Condition{
		ColumnName: "sys/id",
		Operator:   OpIn,
		Type:       TypeString,
		Value:      "45,46",
	})
	require.NoError(t, err)
	assert.Equal(t, &FilterDesc{
		Operator: "OR",
		Operands: []OperandDesc{
			{Filter: equalLeaf("sys/id", "45")},
			{Filter: equalLeaf("sys/id", "46")},
		},
	}, got)
}

func TestFromUI_NotInWrapsInNot(t *testing.T) {
	single, err := FromUI(Condition{ColumnName: "sys/id", Operator: OpNotIn, Type: TypeString, Value: "45"})
	require.NoError(t, err)
	assert.Equal(t, &FilterDesc{
		Operator: "NOT",
		Operands: []OperandDesc{{Filter: equalLeaf("sys/id", "45")}},
	}, single)

	multi, err := FromUI(Condition{ColumnName: "sys/id", Operator: OpNotIn, Type: TypeString, Value: "45,46"})
	require.NoError(t, err)
	require.Equal(t, "NOT", multi.Operator)
	require.Len(t, multi.Operands, 1)
	assert.Equal(t, "OR", multi.Operands[0].Filter.Operator)
}

func TestFromUI_EmptyValueYieldsNoFilter(t *testing.T) {
	for _, op := range []Operator{OpEqual, OpIn, OpNotIn, OpBetween, OpContains, OpGreater} {
		got, err := FromUI(Condition{ColumnName: "c", Operator: op, Type: TypeString, Value: ""})
		require.NoError(t, err, "operator %s", op)
		assert.Nil(t, got, "operator %s", op)
	}
}

func TestFromUI_DefaultComparison(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "sys/score", Operator: OpGreaterEqual, Type: TypeFloat64, Value: "0.5"})
	require.NoError(t, err)
	f := 0.5
	assert.Equal(t, &FilterDesc{
		Operator: "GREATER_EQUAL",
		Operands: []OperandDesc{{ColumnName: "sys/score"}, {FloatValue: &f}},
	}, got)
}

func TestFromUI_TypedOperands(t *testing.T) {
	intGot, err := FromUI(Condition{ColumnName: "n", Operator: OpEqual, Type: TypeInt64, Value: "42"})
	require.NoError(t, err)
	assert.Equal(t, intPtr(42), intGot.Operands[1].IntValue)

	boolGot, err := FromUI(Condition{ColumnName: "b", Operator: OpEqual, Type: TypeBool, Value: "true"})
	require.NoError(t, err)
	require.NotNil(t, boolGot.Operands[1].BoolValue)
	assert.True(t, *boolGot.Operands[1].BoolValue)

	// Unrecognized types default to stringValue.
	listGot, err := FromUI(Condition{ColumnName: "l", Operator: OpEqual, Type: TypeList, Value: "x"})
	require.NoError(t, err)
	assert.Equal(t, strPtr("x"), listGot.Operands[1].StringValue)
}

func TestFromUI_BeforeAfter(t *testing.T) {
	before, err := FromUI(Condition{ColumnName: "sys/createdtime", Operator: OpBefore, Type: TypeInt64, Value: "1700000000000~1710000000000"})
	require.NoError(t, err)
	assert.Equal(t, "LESS", before.Operator)
	assert.Equal(t, intPtr(1700000000000), before.Operands[1].IntValue)

	after, err := FromUI(Condition{ColumnName: "sys/createdtime", Operator: OpAfter, Type: TypeInt64, Value: "1700000000000"})
	require.NoError(t, err)
	assert.Equal(t, "GREATER", after.Operator)
	assert.Equal(t, intPtr(1700000000000), after.Operands[1].IntValue)
}

func TestFromUI_Between(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "ts", Operator: OpBetween, Type: TypeInt64, Value: "100~200"})
	require.NoError(t, err)
	require.Equal(t, "AND", got.Operator)
	require.Len(t, got.Operands, 2)
	assert.Equal(t, "GREATER_EQUAL", got.Operands[0].Filter.Operator)
	assert.Equal(t, intPtr(100), got.Operands[0].Filter.Operands[1].IntValue)
	assert.Equal(t, "LESS_EQUAL", got.Operands[1].Filter.Operator)
	assert.Equal(t, intPtr(200), got.Operands[1].Filter.Operands[1].IntValue)
}

func TestFromUI_BetweenMissingUpperBound(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "ts", Operator: OpBetween, Type: TypeInt64, Value: "100"})
	require.NoError(t, err)
	assert.Equal(t, "GREATER_EQUAL", got.Operator)
	assert.Equal(t, intPtr(100), got.Operands[1].IntValue)
}

func TestFromUI_NotBetweenInvertsComparators(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "ts", Operator: OpNotBetween, Type: TypeInt64, Value: "100~200"})
	require.NoError(t, err)
	require.Equal(t, "OR", got.Operator)
	assert.Equal(t, "LESS_EQUAL", got.Operands[0].Filter.Operator)
	assert.Equal(t, "GREATER_EQUAL", got.Operands[1].Filter.Operator)

	lone, err := FromUI(Condition{ColumnName: "ts", Operator: OpNotBetween, Type: TypeInt64, Value: "100"})
	require.NoError(t, err)
	assert.Equal(t, "LESS_EQUAL", lone.Operator)
}

func TestFromUI_ContainsUnimplemented(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "c", Operator: OpContains, Type: TypeString, Value: "x"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)

	got, err = FromUI(Condition{ColumnName: "c", Operator: OpNotContains, Type: TypeString, Value: "x"})
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrUnsupportedOperator)
}

func TestAnd_Combinator(t *testing.T) {
	assert.Nil(t, And(nil))
	assert.Nil(t, And([]*FilterDesc{}))
	assert.Nil(t, And([]*FilterDesc{nil, nil}))

	single := equalLeaf("a", "1")
	assert.Same(t, single, And([]*FilterDesc{single}))
	// Single-child input returns the child unwrapped, never a
	// one-operand AND node.
	assert.Same(t, single, And([]*FilterDesc{nil, single}))

	other := equalLeaf("b", "2")
	combined := And([]*FilterDesc{single, other})
	require.Equal(t, "AND", combined.Operator)
	require.Len(t, combined.Operands, 2)
	assert.Same(t, single, combined.Operands[0].Filter)
	assert.Same(t, other, combined.Operands[1].Filter)
}

func TestFilterDesc_WireJSON(t *testing.T) {
	got, err := FromUI(Condition{ColumnName: "sys/id", Operator: OpIn, Type: TypeString, Value: "45"})
	require.NoError(t, err)

	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"operator": "EQUAL",
		"operands": [
			{"columnName": "sys/id"},
			{"stringValue": "45"}
		]
	}`, string(raw))
}
