package grid

import (
	"fmt"
	"strings"
	"time"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// maxDiffLength is the performance guard: rendered values longer than
// this skip substring diffing even when unequal.
const maxDiffLength = 100

// DiffKind classifies how a compared cell renders against the pinned
// row.
type DiffKind string

// Diff kinds.
const (
	DiffNone      DiffKind = ""
	DiffUp        DiffKind = "up"
	DiffDown      DiffKind = "down"
	DiffHighlight DiffKind = "highlight"
)

// Segment is one piece of a highlighted string diff. Match marks the
// longest common substring.
type Segment struct {
	Text  string `json:"text"`
	Match bool   `json:"match"`
}

// CellDiff is one record's rendered value for an attribute, compared
// against the pinned record.
type CellDiff struct {
	Value    string    `json:"value"`
	Kind     DiffKind  `json:"kind,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
}

// AttributeRow is one logical column of the comparison table: the
// column's value across every candidate record.
type AttributeRow struct {
	Name  string             `json:"name"`
	Type  datastore.DataType `json:"type"`
	Cells []CellDiff         `json:"cells"`
}

// CompareOptions configures BuildComparison.
type CompareOptions struct {
	// KeyColumn identifies records; default "sys/id".
	KeyColumn string
	// DiffOnly keeps only attribute rows where at least one candidate
	// differs from the first record.
	DiffOnly bool
}

// BuildComparison computes the side-by-side diff of records against the
// row identified by pinnedKey. When the remembered key no longer
// matches any record, the first record becomes the reference. One
// attribute row is built per searchable column.
func BuildComparison(records []datastore.Record, pinnedKey string, columnTypes []datastore.ColumnSchemaDesc, opts CompareOptions) []AttributeRow {
	if len(records) == 0 {
		return nil
	}
	keyColumn := opts.KeyColumn
	if keyColumn == "" {
		keyColumn = "sys/id"
	}

	pinnedIndex := 0
	for i, rec := range records {
		if recordKey(rec, keyColumn) == pinnedKey {
			pinnedIndex = i
			break
		}
	}

	var rows []AttributeRow
	for _, ct := range columnTypes {
		if !datastore.IsSearchColumn(ct.Name) {
			continue
		}
		render := rendererFor(ct.Name)

		rendered := make([]string, len(records))
		natives := make([]any, len(records))
		for i, rec := range records {
			natives[i] = cellNative(rec, ct.Name)
			rendered[i] = render(natives[i])
		}

		row := AttributeRow{Name: ct.Name, Type: ct.Type, Cells: make([]CellDiff, len(records))}
		for i := range records {
			row.Cells[i] = compareCell(ct.Type, rendered[i], natives[i], rendered[pinnedIndex], natives[pinnedIndex], i == pinnedIndex)
		}

		if opts.DiffOnly && !hasDiff(rendered) {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}

// compareCell classifies one cell against the pinned value. The pinned
// row's own cell always renders plain.
func compareCell(t datastore.DataType, value string, native any, pinnedValue string, pinnedNative any, isPinned bool) CellDiff {
	cell := CellDiff{Value: value}
	if isPinned || value == pinnedValue {
		return cell
	}

	if t.IsNumeric() || t == datastore.TypeBool {
		if asFloat(boolAsNumber(native)) > asFloat(boolAsNumber(pinnedNative)) {
			cell.Kind = DiffUp
		} else {
			cell.Kind = DiffDown
		}
		return cell
	}

	if len(value) > maxDiffLength {
		return cell
	}
	cell.Kind = DiffHighlight
	cell.Segments = highlightCommon(value, pinnedValue)
	return cell
}

// highlightCommon splits value into plain/match segments around the
// longest substring it shares with reference.
func highlightCommon(value, reference string) []Segment {
	start, length := longestCommonSubstring(value, reference)
	if length == 0 {
		return []Segment{{Text: value}}
	}

	var segments []Segment
	if start > 0 {
		segments = append(segments, Segment{Text: value[:start]})
	}
	segments = append(segments, Segment{Text: value[start : start+length], Match: true})
	if start+length < len(value) {
		segments = append(segments, Segment{Text: value[start+length:]})
	}
	return segments
}

// longestCommonSubstring returns the start offset in a and the length
// of the longest substring shared by a and b.
func longestCommonSubstring(a, b string) (start, length int) {
	if a == "" || b == "" {
		return 0, 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
				if cur[j] > length {
					length = cur[j]
					start = i - length
				}
			} else {
				cur[j] = 0
			}
		}
		prev, cur = cur, prev
	}
	return start, length
}

func hasDiff(rendered []string) bool {
	for _, v := range rendered[1:] {
		if v != rendered[0] {
			return true
		}
	}
	return false
}

func recordKey(rec datastore.Record, keyColumn string) string {
	return renderPlain(cellNative(rec, keyColumn))
}

func cellNative(rec datastore.Record, name string) any {
	sv, ok := rec[name]
	if !ok {
		return nil
	}
	native, err := sv.Decode()
	if err != nil {
		return nil
	}
	return native
}

func boolAsNumber(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return float64(1)
		}
		return float64(0)
	}
	return v
}

// rendererFor picks a value renderer by column name suffix: timestamps
// for *time columns, durations for *duration columns, plain otherwise.
func rendererFor(name string) func(any) string {
	switch {
	case strings.HasSuffix(name, "time"):
		return renderTimestamp
	case strings.HasSuffix(name, "duration"):
		return renderDuration
	default:
		return renderPlain
	}
}

func renderTimestamp(v any) string {
	millis, ok := asMillis(v)
	if !ok {
		return renderPlain(v)
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02 15:04:05")
}

func renderDuration(v any) string {
	millis, ok := asMillis(v)
	if !ok {
		return renderPlain(v)
	}
	d := time.Duration(millis) * time.Millisecond
	if d < time.Second {
		return fmt.Sprintf("%dms", millis)
	}
	return d.Truncate(time.Millisecond).String()
}

func asMillis(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}
