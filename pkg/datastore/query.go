package datastore

// DefaultPageSize is used when a query options page size is zero.
const DefaultPageSize = 20

// QueryOptions are the caller-facing knobs for a point query. Page
// numbers are 1-based.
type QueryOptions struct {
	TableName string
	PageNum   int
	PageSize  int
	Filters   []SimpleFilter
	OrderBy   []OrderBy
	Columns   []string
	Revision  string
}

// SimpleFilter is the flattened filter shape the console sends: a
// property, an operator and a raw string value. Values are treated as
// STRING in mixed-schema mode.
type SimpleFilter struct {
	Property string   `json:"property"`
	Op       Operator `json:"op"`
	Value    string   `json:"value"`
}

// ScanOptions are the caller-facing knobs for a multi-table scan. The
// pagination fields apply globally across all referenced tables.
type ScanOptions struct {
	Tables   []TableDesc
	PageNum  int
	PageSize int
}

// BuildQuery assembles a QueryTableRequest. rawResult, encodeWithType
// and ignoreNonExistingTable are protocol-level defaults, always set.
func BuildQuery(opts QueryOptions) QueryTableRequest {
	start, limit := pageWindow(opts.PageNum, opts.PageSize)

	filters := make([]*FilterDesc, 0, len(opts.Filters))
	for _, f := range opts.Filters {
		node, err := FromUI(Condition{
			ColumnName: f.Property,
			Operator:   f.Op,
			Type:       TypeString,
			Value:      f.Value,
		})
		if err != nil || node == nil {
			// Per-condition failures contribute no filter; the rest of
			// the request is still valid.
			continue
		}
		filters = append(filters, node)
	}

	return QueryTableRequest{
		TableName:              opts.TableName,
		Columns:                opts.Columns,
		OrderBy:                opts.OrderBy,
		Filter:                 And(filters),
		Start:                  start,
		Limit:                  limit,
		RawResult:              true,
		EncodeWithType:         true,
		IgnoreNonExistingTable: true,
		Revision:               opts.Revision,
	}
}

// BuildScanQuery assembles a ScanTableRequest over several tables.
func BuildScanQuery(opts ScanOptions) ScanTableRequest {
	start, limit := pageWindow(opts.PageNum, opts.PageSize)
	return ScanTableRequest{
		Tables:                 opts.Tables,
		Start:                  start,
		Limit:                  limit,
		RawResult:              true,
		EncodeWithType:         true,
		IgnoreNonExistingTable: true,
	}
}

// pageWindow converts 1-based pagination to start/limit, substituting
// defaults so a zero page size never produces a zero window.
func pageWindow(pageNum, pageSize int) (start, limit int) {
	if pageNum < 1 {
		pageNum = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	return (pageNum - 1) * pageSize, pageSize
}
