package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// Datastore endpoint paths.
const (
	pathQueryTable  = "/api/v1/datastore/queryTable"
	pathScanTable   = "/api/v1/datastore/scanTable"
	pathListTables  = "/api/v1/datastore/listTables"
	pathExportTable = "/api/v1/datastore/queryTable/export"
)

const defaultTimeout = 30 * time.Second

// ClientConfig holds configuration for a datastore Client.
type ClientConfig struct {
	// BaseURL is the root of the datastore service.
	BaseURL string
	// HTTPClient overrides the default client (nil uses a client with
	// a 30s timeout). Retry and backoff belong to this layer, not to
	// the query/decode path.
	HTTPClient *http.Client
	// Logger for request logging (nil discards).
	Logger *slog.Logger
}

// Client talks to the remote table store. All calls take a
// context.Context and are safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger
}

// NewClient creates a datastore client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		logger:  logger,
	}
}

// QueryTable runs a point query against one table.
func (c *Client) QueryTable(ctx context.Context, req QueryTableRequest) (*RecordList, error) {
	var out RecordList
	if err := c.post(ctx, pathQueryTable, req, &out); err != nil {
		return nil, fmt.Errorf("query table %s: %w", req.TableName, err)
	}
	return &out, nil
}

// ScanTable runs a multi-table scan; the backend merges the referenced
// tables into one combined payload in a single round trip.
func (c *Client) ScanTable(ctx context.Context, req ScanTableRequest) (*RecordList, error) {
	var out RecordList
	if err := c.post(ctx, pathScanTable, req, &out); err != nil {
		return nil, fmt.Errorf("scan tables: %w", err)
	}
	return &out, nil
}

// ListTables lists table names under the given prefix(es).
func (c *Client) ListTables(ctx context.Context, req ListTablesRequest) (*TableNameList, error) {
	var out TableNameList
	if err := c.post(ctx, pathListTables, req, &out); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return &out, nil
}

// ExportTable streams the export payload of a query to w.
func (c *Client) ExportTable(ctx context.Context, req QueryTableRequest, w io.Writer) error {
	resp, err := c.do(ctx, pathExportTable, req)
	if err != nil {
		return fmt.Errorf("export table %s: %w", req.TableName, err)
	}
	defer resp.Body.Close()
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("export table %s: %w", req.TableName, err)
	}
	return nil
}

// FetchTables is the client-side fan-out variant of ScanTable: it
// queries every table concurrently, then merges the responses under
// their column prefixes once all requests settle.
func (c *Client) FetchTables(ctx context.Context, tables []TableDesc, pageNum, pageSize int) (*RecordList, error) {
	start, limit := pageWindow(pageNum, pageSize)

	lists := make([]RecordList, len(tables))
	eg, egctx := errgroup.WithContext(ctx)
	for i, t := range tables {
		eg.Go(func() error {
			out, err := c.QueryTable(egctx, QueryTableRequest{
				TableName:              t.TableName,
				Columns:                t.Columns,
				Start:                  start,
				Limit:                  limit,
				RawResult:              true,
				EncodeWithType:         true,
				IgnoreNonExistingTable: true,
				KeepNone:               t.KeepNone,
				Revision:               t.Revision,
			})
			if err != nil {
				return err
			}
			lists[i] = *out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	merged := MergeRecordLists(lists, tables)
	return &merged, nil
}

// post sends a JSON request and decodes the JSON response into out.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	resp, err := c.do(ctx, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("datastore request", "path", path, "status", resp.StatusCode, "elapsed", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("datastore %s: status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	return resp, nil
}
