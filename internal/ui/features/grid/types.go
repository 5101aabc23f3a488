// Package grid provides the JSON API for the evaluation grid: table
// queries, multi-table scans, and persisted view state.
package grid

import (
	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// QueryRequest is the body of POST /api/grid/query.
type QueryRequest struct {
	Table    string                   `json:"table"`
	Columns  []string                 `json:"columns,omitempty"`
	Filters  []datastore.SimpleFilter `json:"filters,omitempty"`
	OrderBy  []datastore.OrderBy      `json:"orderBy,omitempty"`
	PageNum  int                      `json:"pageNum"`
	PageSize int                      `json:"pageSize"`
}

// ScanRequest is the body of POST /api/grid/scan.
type ScanRequest struct {
	Tables   []string `json:"tables"`
	Prefixes []string `json:"prefixes,omitempty"`
	Start    string   `json:"start,omitempty"`
	End      string   `json:"end,omitempty"`
	Limit    int      `json:"limit,omitempty"`
}

// RecordsResponse carries reconciled records back to the browser.
type RecordsResponse struct {
	Records     []datastore.Record           `json:"records"`
	ColumnTypes []datastore.ColumnSchemaDesc `json:"columnTypes"`
	Errors      []string                     `json:"errors,omitempty"`
}

// ViewsResponse carries the persisted view-state blob for a store key.
type ViewsResponse struct {
	StoreKey string `json:"storeKey"`
	Content  string `json:"content"`
}

// SaveViewsRequest is the body of PUT /api/grid/views.
type SaveViewsRequest struct {
	StoreKey string `json:"storeKey"`
	Content  string `json:"content"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
