// Package grid provides the generic, column-typed data-table
// abstraction the console builds its tables from: declarative column
// descriptors with typed cell rendering, sort and filter contracts, the
// per-table view state (selected/pinned columns, sort, saved views, row
// selection), and the row comparison engine used for side-by-side
// evaluation diffing.
package grid

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"

	"github.com/leapstack-labs/leapboard/pkg/datastore"
	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Kind classifies a column's behavior.
type Kind string

// Column kinds.
const (
	KindString      Kind = "string"
	KindNumber      Kind = "number"
	KindBool        Kind = "bool"
	KindCategorical Kind = "categorical"
	KindCustom      Kind = "custom"
	KindRowIndex    Kind = "rowIndex"
)

// PinPosition pins a column to a table edge.
type PinPosition string

// Pin positions. Empty means unpinned.
const (
	PinNone PinPosition = ""
	PinLeft PinPosition = "LEFT"
)

// ValueFunc extracts a column's native value from a decoded record.
type ValueFunc func(row datastore.Record) any

// CellRenderer formats a native value for display.
type CellRenderer func(value any) string

// SortFunc compares two native values; negative means a sorts first.
type SortFunc func(a, b any) int

// Predicate reports whether a native value passes the active filter.
type Predicate func(value any) bool

// FilterParams carries the state of a column's filter control.
type FilterParams struct {
	// Query is the text query for string columns.
	Query string
	// Selected the chosen members for set-style filters.
	Selected []string
	// Min/Max bound numeric range filters (nil = unbounded).
	Min *float64
	Max *float64
}

// FilterBuilder turns filter-control state into a row predicate.
type FilterBuilder func(params FilterParams) Predicate

// FilterControl describes a column's filter UI contract: which control
// kind to render and, for set-style filters, the candidate values.
type FilterControl struct {
	Kind   Kind              `json:"kind"`
	Values []string          `json:"values,omitempty"`
	Colors map[string]string `json:"colors,omitempty"`
}

// Options configures a column. A column only claims a capability it can
// fulfill: Sortable requires SortFn, Filterable requires both
// RenderFilter and BuildFilter.
type Options struct {
	Key   string
	Title string
	Kind  Kind
	Type  datastore.DataType

	MapDataToValue ValueFunc
	RenderCell     CellRenderer
	RenderFilter   func() FilterControl
	BuildFilter    FilterBuilder
	SortFn         SortFunc

	Sortable   bool
	Filterable bool
	FillWidth  bool
	MinWidth   int
	MaxWidth   int
	Pin        PinPosition

	// Values enumerates the members of categorical columns.
	Values []string
	// Locale controls string matching and collation (default und).
	Locale language.Tag
}

// Column is a declarative column descriptor consumed by the table view.
type Column struct {
	Key        string
	Title      string
	Kind       Kind
	Type       datastore.DataType
	Sortable   bool
	Filterable bool
	FillWidth  bool
	MinWidth   int
	MaxWidth   int
	Pin        PinPosition

	mapValue     ValueFunc
	renderCell   CellRenderer
	renderFilter func() FilterControl
	buildFilter  FilterBuilder
	sortFn       SortFunc
}

// New builds a column from options, deriving the key from the title
// when absent and gating the sortable/filterable capabilities.
func New(opts Options) *Column {
	key := opts.Key
	if key == "" {
		key = strings.ToLower(strings.ReplaceAll(opts.Title, " ", ""))
	}
	mapValue := opts.MapDataToValue
	if mapValue == nil {
		mapValue = ValueOf(key)
	}
	renderCell := opts.RenderCell
	if renderCell == nil {
		renderCell = renderPlain
	}
	return &Column{
		Key:          key,
		Title:        opts.Title,
		Kind:         opts.Kind,
		Type:         opts.Type,
		Sortable:     opts.Sortable && opts.SortFn != nil,
		Filterable:   opts.Filterable && opts.RenderFilter != nil && opts.BuildFilter != nil,
		FillWidth:    opts.FillWidth,
		MinWidth:     opts.MinWidth,
		MaxWidth:     opts.MaxWidth,
		Pin:          opts.Pin,
		mapValue:     mapValue,
		renderCell:   renderCell,
		renderFilter: opts.RenderFilter,
		buildFilter:  opts.BuildFilter,
		sortFn:       opts.SortFn,
	}
}

// Value extracts this column's native value from a record.
func (c *Column) Value(row datastore.Record) any {
	return c.mapValue(row)
}

// RenderCell formats a native value for display.
func (c *Column) RenderCell(value any) string {
	return c.renderCell(value)
}

// Compare orders two values; 0 when the column is not sortable.
func (c *Column) Compare(a, b any) int {
	if !c.Sortable {
		return 0
	}
	return c.sortFn(a, b)
}

// FilterControl returns the filter UI contract, false when the column
// is not filterable.
func (c *Column) FilterControl() (FilterControl, bool) {
	if !c.Filterable {
		return FilterControl{}, false
	}
	return c.renderFilter(), true
}

// Filter builds a predicate from filter-control state; a nil predicate
// means no filtering.
func (c *Column) Filter(params FilterParams) Predicate {
	if !c.Filterable {
		return nil
	}
	return c.buildFilter(params)
}

// ValueOf is the default value extractor: scalar-decode the record's
// cell under key.
func ValueOf(key string) ValueFunc {
	return func(row datastore.Record) any {
		sv, ok := row[key]
		if !ok {
			return nil
		}
		native, err := sv.Decode()
		if err != nil {
			return nil
		}
		return native
	}
}

func renderPlain(value any) string {
	if value == nil {
		return "-"
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(value)
	}
}

// String builds a string column: locale-aware substring query filter,
// collated lexicographic sort.
func String(opts Options) *Column {
	opts.Kind = KindString
	if opts.Type == "" {
		opts.Type = datastore.TypeString
	}
	lower := cases.Lower(opts.Locale)
	coll := collate.New(opts.Locale)
	if opts.SortFn == nil {
		opts.SortFn = func(a, b any) int {
			return coll.CompareString(renderPlain(a), renderPlain(b))
		}
	}
	if opts.BuildFilter == nil {
		opts.BuildFilter = func(params FilterParams) Predicate {
			if params.Query == "" {
				return nil
			}
			query := lower.String(params.Query)
			return func(value any) bool {
				return strings.Contains(lower.String(renderPlain(value)), query)
			}
		}
	}
	if opts.RenderFilter == nil {
		opts.RenderFilter = func() FilterControl {
			return FilterControl{Kind: KindString}
		}
	}
	opts.Sortable = true
	opts.Filterable = true
	return New(opts)
}

// Number builds a numeric column: numeric sort and range filter.
func Number(opts Options) *Column {
	opts.Kind = KindNumber
	if opts.Type == "" {
		opts.Type = datastore.TypeFloat64
	}
	if opts.SortFn == nil {
		opts.SortFn = func(a, b any) int {
			fa, fb := asFloat(a), asFloat(b)
			switch {
			case fa < fb:
				return -1
			case fa > fb:
				return 1
			default:
				return 0
			}
		}
	}
	if opts.BuildFilter == nil {
		opts.BuildFilter = func(params FilterParams) Predicate {
			if params.Min == nil && params.Max == nil {
				return nil
			}
			return func(value any) bool {
				f := asFloat(value)
				if params.Min != nil && f < *params.Min {
					return false
				}
				if params.Max != nil && f > *params.Max {
					return false
				}
				return true
			}
		}
	}
	if opts.RenderFilter == nil {
		opts.RenderFilter = func() FilterControl {
			return FilterControl{Kind: KindNumber}
		}
	}
	opts.Sortable = true
	opts.Filterable = true
	return New(opts)
}

// Bool builds a boolean column with true/false short labels and a
// set-membership filter.
func Bool(opts Options) *Column {
	opts.Kind = KindBool
	if opts.Type == "" {
		opts.Type = datastore.TypeBool
	}
	if opts.RenderCell == nil {
		opts.RenderCell = func(value any) string {
			if b, ok := value.(bool); ok {
				if b {
					return "T"
				}
				return "F"
			}
			return "-"
		}
	}
	if opts.SortFn == nil {
		opts.SortFn = func(a, b any) int {
			ba, _ := a.(bool)
			bb, _ := b.(bool)
			switch {
			case ba == bb:
				return 0
			case bb:
				return -1
			default:
				return 1
			}
		}
	}
	if opts.BuildFilter == nil {
		opts.BuildFilter = setFilter(func(value any) string {
			if b, ok := value.(bool); ok {
				return strconv.FormatBool(b)
			}
			return ""
		})
	}
	if opts.RenderFilter == nil {
		opts.RenderFilter = func() FilterControl {
			return FilterControl{Kind: KindBool, Values: []string{"true", "false"}}
		}
	}
	opts.Sortable = true
	opts.Filterable = true
	return New(opts)
}

// Categorical builds a tag-membership column. Each tag gets a
// deterministic color derived from its name.
func Categorical(opts Options) *Column {
	opts.Kind = KindCategorical
	if opts.Type == "" {
		opts.Type = datastore.TypeString
	}
	values := opts.Values
	if opts.SortFn == nil {
		coll := collate.New(opts.Locale)
		opts.SortFn = func(a, b any) int {
			return coll.CompareString(renderPlain(a), renderPlain(b))
		}
	}
	if opts.BuildFilter == nil {
		opts.BuildFilter = setFilter(renderPlain)
	}
	if opts.RenderFilter == nil {
		opts.RenderFilter = func() FilterControl {
			colors := make(map[string]string, len(values))
			for _, v := range values {
				colors[v] = TagColor(v)
			}
			return FilterControl{Kind: KindCategorical, Values: values, Colors: colors}
		}
	}
	opts.Sortable = true
	opts.Filterable = true
	return New(opts)
}

// Custom builds a column whose cell, filter and sort behavior is fully
// caller-supplied; capabilities are gated on what was provided.
func Custom(opts Options) *Column {
	if opts.Kind == "" {
		opts.Kind = KindCustom
	}
	return New(opts)
}

// RowIndex builds the 1-based row position column. It is neither
// sortable nor filterable.
func RowIndex() *Column {
	return New(Options{
		Key:   "rowIndex",
		Title: "#",
		Kind:  KindRowIndex,
		MapDataToValue: func(datastore.Record) any {
			return nil
		},
		RenderCell: renderPlain,
		MaxWidth:   60,
	})
}

// RenderRowIndex formats a 0-based position as the displayed 1-based
// index.
func RenderRowIndex(position int) string {
	return strconv.Itoa(position + 1)
}

// setFilter builds set-membership predicates over a value-to-label
// function.
func setFilter(label func(any) string) FilterBuilder {
	return func(params FilterParams) Predicate {
		if len(params.Selected) == 0 {
			return nil
		}
		selected := make(map[string]bool, len(params.Selected))
		for _, s := range params.Selected {
			selected[s] = true
		}
		return func(value any) bool {
			return selected[label(value)]
		}
	}
}

// tagPalette is the fixed color set tags hash into.
var tagPalette = []string{
	"#4c78a8", "#f58518", "#e45756", "#72b7b2",
	"#54a24b", "#eeca3b", "#b279a2", "#ff9da6",
	"#9d755d", "#bab0ac",
}

// TagColor returns the deterministic display color for a tag.
func TagColor(tag string) string {
	h := fnv.New32a()
	_, _ = h.Write([]byte(tag))
	return tagPalette[h.Sum32()%uint32(len(tagPalette))]
}

// ColumnsFromTypes derives default columns from datastore column
// metadata: one column per searchable basic-typed descriptor.
func ColumnsFromTypes(columnTypes []datastore.ColumnSchemaDesc) []*Column {
	cols := make([]*Column, 0, len(columnTypes))
	for _, ct := range columnTypes {
		if !datastore.IsSearchColumn(ct.Name) || !datastore.IsBasicType(ct.Type) {
			continue
		}
		opts := Options{Key: ct.Name, Title: ct.Name, Type: ct.Type}
		switch {
		case ct.Type.IsNumeric():
			cols = append(cols, Number(opts))
		case ct.Type == datastore.TypeBool:
			cols = append(cols, Bool(opts))
		default:
			cols = append(cols, String(opts))
		}
	}
	return cols
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
