package grid

import (
	"testing"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(values map[string]string) datastore.Record {
	rec := datastore.Record{}
	for k, v := range values {
		rec[k] = &datastore.SchemaValue{Name: k, Type: datastore.TypeString, Value: v}
	}
	return rec
}

func TestNew_KeyDerivedFromTitle(t *testing.T) {
	c := New(Options{Title: "Created Time"})
	assert.Equal(t, "createdtime", c.Key)

	c = New(Options{Key: "explicit", Title: "Created Time"})
	assert.Equal(t, "explicit", c.Key)
}

func TestNew_CapabilityGating(t *testing.T) {
	// A sortable flag without a sort function confers nothing.
	c := New(Options{Key: "a", Sortable: true})
	assert.False(t, c.Sortable)

	c = New(Options{Key: "a", Sortable: true, SortFn: func(a, b any) int { return 0 }})
	assert.True(t, c.Sortable)

	// Filterable needs both the control and the builder.
	c = New(Options{Key: "a", Filterable: true, BuildFilter: func(FilterParams) Predicate { return nil }})
	assert.False(t, c.Filterable)

	c = New(Options{
		Key:          "a",
		Filterable:   true,
		BuildFilter:  func(FilterParams) Predicate { return nil },
		RenderFilter: func() FilterControl { return FilterControl{} },
	})
	assert.True(t, c.Filterable)
}

func TestStringColumn_FilterAndSort(t *testing.T) {
	c := String(Options{Key: "label", Title: "Label"})
	require.True(t, c.Sortable)
	require.True(t, c.Filterable)

	pred := c.Filter(FilterParams{Query: "CAT"})
	require.NotNil(t, pred)
	assert.True(t, pred("bobcat"))
	assert.False(t, pred("dog"))

	assert.Nil(t, c.Filter(FilterParams{}), "empty query filters nothing")

	assert.Negative(t, c.Compare("apple", "banana"))
	assert.Positive(t, c.Compare("banana", "apple"))
	assert.Zero(t, c.Compare("same", "same"))
}

func TestNumberColumn_RangeFilter(t *testing.T) {
	c := Number(Options{Key: "acc", Title: "Accuracy"})

	low, high := 0.3, 0.8
	pred := c.Filter(FilterParams{Min: &low, Max: &high})
	require.NotNil(t, pred)
	assert.True(t, pred(0.5))
	assert.False(t, pred(0.1))
	assert.False(t, pred(0.9))

	onlyMin := c.Filter(FilterParams{Min: &low})
	assert.True(t, onlyMin(100.0))

	assert.Nil(t, c.Filter(FilterParams{}))
	assert.Negative(t, c.Compare(int64(1), 2.0))
}

func TestBoolColumn(t *testing.T) {
	c := Bool(Options{Key: "ok", Title: "OK"})

	assert.Equal(t, "T", c.RenderCell(true))
	assert.Equal(t, "F", c.RenderCell(false))

	pred := c.Filter(FilterParams{Selected: []string{"true"}})
	require.NotNil(t, pred)
	assert.True(t, pred(true))
	assert.False(t, pred(false))

	control, ok := c.FilterControl()
	require.True(t, ok)
	assert.Equal(t, []string{"true", "false"}, control.Values)
}

func TestCategoricalColumn_TagColors(t *testing.T) {
	c := Categorical(Options{Key: "tag", Title: "Tag", Values: []string{"dev", "prod"}})

	control, ok := c.FilterControl()
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"dev", "prod"}, control.Values)
	require.Len(t, control.Colors, 2)

	// Colors are deterministic for the same tag.
	assert.Equal(t, TagColor("dev"), control.Colors["dev"])
	assert.Equal(t, TagColor("dev"), TagColor("dev"))

	pred := c.Filter(FilterParams{Selected: []string{"dev"}})
	assert.True(t, pred("dev"))
	assert.False(t, pred("prod"))
}

func TestRowIndexColumn(t *testing.T) {
	c := RowIndex()
	assert.False(t, c.Sortable)
	assert.False(t, c.Filterable)
	assert.Equal(t, "1", RenderRowIndex(0))
	assert.Equal(t, "42", RenderRowIndex(41))
}

func TestCustomColumn_FullyCallerSupplied(t *testing.T) {
	c := Custom(Options{
		Key:            "custom",
		MapDataToValue: func(datastore.Record) any { return "fixed" },
		RenderCell:     func(any) string { return "rendered" },
		Sortable:       true,
		SortFn:         func(a, b any) int { return -1 },
	})
	assert.Equal(t, "fixed", c.Value(nil))
	assert.Equal(t, "rendered", c.RenderCell(nil))
	assert.True(t, c.Sortable)
	assert.False(t, c.Filterable)
}

func TestValueOf_DecodesCell(t *testing.T) {
	rec := datastore.Record{
		"n": &datastore.SchemaValue{Name: "n", Type: datastore.TypeInt64, Value: "ff"},
	}
	assert.Equal(t, int64(255), ValueOf("n")(rec))
	assert.Nil(t, ValueOf("missing")(rec))
}

func TestColumnsFromTypes(t *testing.T) {
	cols := ColumnsFromTypes([]datastore.ColumnSchemaDesc{
		{Name: "sys/id", Type: datastore.TypeString},
		{Name: "acc", Type: datastore.TypeFloat64},
		{Name: "ok", Type: datastore.TypeBool},
		{Name: "_private", Type: datastore.TypeString},
		{Name: "blob", Type: datastore.TypeMap},
	})
	require.Len(t, cols, 3)
	assert.Equal(t, KindString, cols[0].Kind)
	assert.Equal(t, KindNumber, cols[1].Kind)
	assert.Equal(t, KindBool, cols[2].Kind)
}

func TestColumn_ValueFromRecord(t *testing.T) {
	c := String(Options{Key: "label", Title: "Label"})
	rec := record(map[string]string{"label": "cat"})
	assert.Equal(t, "cat", c.Value(rec))
}
