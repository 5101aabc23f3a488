package grid

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numRecord(id string, acc float64) datastore.Record {
	wire, _ := datastore.Encode(datastore.TypeFloat64, acc)
	return datastore.Record{
		"sys/id": &datastore.SchemaValue{Name: "sys/id", Type: datastore.TypeString, Value: id},
		"acc":    &datastore.SchemaValue{Name: "acc", Type: datastore.TypeFloat64, Value: wire},
	}
}

var compareTypes = []datastore.ColumnSchemaDesc{
	{Name: "sys/id", Type: datastore.TypeString},
	{Name: "acc", Type: datastore.TypeFloat64},
}

func findRow(t *testing.T, rows []AttributeRow, name string) AttributeRow {
	t.Helper()
	for _, r := range rows {
		if r.Name == name {
			return r
		}
	}
	t.Fatalf("attribute row %q not found", name)
	return AttributeRow{}
}

func TestBuildComparison_NumericUpDown(t *testing.T) {
	records := []datastore.Record{
		numRecord("r1", 0.5),
		numRecord("r2", 0.8),
		numRecord("r3", 0.2),
	}

	rows := BuildComparison(records, "r1", compareTypes, CompareOptions{})
	acc := findRow(t, rows, "acc")
	require.Len(t, acc.Cells, 3)

	// The pinned row's own cell is always plain.
	assert.Equal(t, DiffNone, acc.Cells[0].Kind)
	assert.Equal(t, DiffUp, acc.Cells[1].Kind, "greater than reference renders up")
	assert.Equal(t, DiffDown, acc.Cells[2].Kind, "less than reference renders down")
}

func TestBuildComparison_EqualValuesNeverDiff(t *testing.T) {
	records := []datastore.Record{
		numRecord("r1", 0.5),
		numRecord("r2", 0.5),
	}
	rows := BuildComparison(records, "r1", compareTypes, CompareOptions{})
	acc := findRow(t, rows, "acc")
	assert.Equal(t, DiffNone, acc.Cells[1].Kind)
}

func TestBuildComparison_MissingPinnedKeyDefaultsToFirst(t *testing.T) {
	records := []datastore.Record{
		numRecord("r1", 0.5),
		numRecord("r2", 0.8),
	}
	rows := BuildComparison(records, "gone", compareTypes, CompareOptions{})
	acc := findRow(t, rows, "acc")
	assert.Equal(t, DiffNone, acc.Cells[0].Kind)
	assert.Equal(t, DiffUp, acc.Cells[1].Kind)
}

func TestBuildComparison_StringLCSHighlight(t *testing.T) {
	records := []datastore.Record{
		record(map[string]string{"sys/id": "r1", "model": "resnet-18"}),
		record(map[string]string{"sys/id": "r2", "model": "resnet-50"}),
	}
	types := []datastore.ColumnSchemaDesc{
		{Name: "sys/id", Type: datastore.TypeString},
		{Name: "model", Type: datastore.TypeString},
	}

	rows := BuildComparison(records, "r1", types, CompareOptions{})
	model := findRow(t, rows, "model")

	assert.Equal(t, DiffNone, model.Cells[0].Kind)
	cell := model.Cells[1]
	assert.Equal(t, DiffHighlight, cell.Kind)

	// Segments reassemble the value, with the shared substring marked.
	var joined strings.Builder
	var matched string
	for _, seg := range cell.Segments {
		joined.WriteString(seg.Text)
		if seg.Match {
			matched = seg.Text
		}
	}
	assert.Equal(t, "resnet-50", joined.String())
	assert.Equal(t, "resnet-", matched)
}

func TestBuildComparison_LongValuesSkipDiff(t *testing.T) {
	long := strings.Repeat("x", 101) + "tail"
	records := []datastore.Record{
		record(map[string]string{"sys/id": "r1", "log": "short"}),
		record(map[string]string{"sys/id": "r2", "log": long}),
	}
	types := []datastore.ColumnSchemaDesc{{Name: "log", Type: datastore.TypeString}}

	rows := BuildComparison(records, "r1", types, CompareOptions{})
	cell := findRow(t, rows, "log").Cells[1]
	assert.Equal(t, DiffNone, cell.Kind)
	assert.Empty(t, cell.Segments)
}

func TestBuildComparison_ExcludesPrivateColumns(t *testing.T) {
	records := []datastore.Record{record(map[string]string{"sys/id": "r1", "_hidden": "x"})}
	types := []datastore.ColumnSchemaDesc{
		{Name: "sys/id", Type: datastore.TypeString},
		{Name: "_hidden", Type: datastore.TypeString},
	}
	rows := BuildComparison(records, "r1", types, CompareOptions{})
	for _, r := range rows {
		assert.NotEqual(t, "_hidden", r.Name)
	}
}

func TestBuildComparison_DiffOnly(t *testing.T) {
	records := []datastore.Record{
		record(map[string]string{"sys/id": "r1", "same": "x", "diff": "a"}),
		record(map[string]string{"sys/id": "r2", "same": "x", "diff": "b"}),
	}
	types := []datastore.ColumnSchemaDesc{
		{Name: "same", Type: datastore.TypeString},
		{Name: "diff", Type: datastore.TypeString},
	}

	rows := BuildComparison(records, "r1", types, CompareOptions{DiffOnly: true})
	require.Len(t, rows, 1)
	assert.Equal(t, "diff", rows[0].Name)
}

func TestBuildComparison_BoolRendersDirection(t *testing.T) {
	mk := func(id string, ok bool) datastore.Record {
		wire, _ := datastore.Encode(datastore.TypeBool, ok)
		return datastore.Record{
			"sys/id": &datastore.SchemaValue{Name: "sys/id", Type: datastore.TypeString, Value: id},
			"ok":     &datastore.SchemaValue{Name: "ok", Type: datastore.TypeBool, Value: wire},
		}
	}
	types := []datastore.ColumnSchemaDesc{{Name: "ok", Type: datastore.TypeBool}}

	rows := BuildComparison([]datastore.Record{mk("r1", false), mk("r2", true)}, "r1", types, CompareOptions{})
	assert.Equal(t, DiffUp, findRow(t, rows, "ok").Cells[1].Kind)
}

func TestBuildComparison_EmptyRecords(t *testing.T) {
	assert.Nil(t, BuildComparison(nil, "x", compareTypes, CompareOptions{}))
}

func TestLongestCommonSubstring(t *testing.T) {
	tests := []struct {
		a, b       string
		wantStart  int
		wantLength int
	}{
		{"resnet-18", "resnet-50", 0, 7},
		{"abcdef", "zzcdzz", 2, 2},
		{"abc", "xyz", 0, 0},
		{"", "abc", 0, 0},
		{"same", "same", 0, 4},
	}
	for _, tt := range tests {
		start, length := longestCommonSubstring(tt.a, tt.b)
		assert.Equal(t, tt.wantStart, start, "%q vs %q", tt.a, tt.b)
		assert.Equal(t, tt.wantLength, length, "%q vs %q", tt.a, tt.b)
	}
}

func TestRenderers_TimeAndDuration(t *testing.T) {
	assert.Equal(t, "1970-01-01 00:00:01", renderTimestamp(int64(1000)))
	assert.Equal(t, "500ms", renderDuration(int64(500)))
	assert.Equal(t, "1.5s", renderDuration(int64(1500)))
	// Non-numeric values fall back to plain rendering.
	assert.Equal(t, "n/a", renderDuration("n/a"))
}
