package datastore

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(ClientConfig{BaseURL: srv.URL})
}

func TestClient_QueryTable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/datastore/queryTable", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req QueryTableRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "project/p/eval/summary", req.TableName)
		assert.True(t, req.RawResult)

		_ = json.NewEncoder(w).Encode(RecordList{
			ColumnTypes: []ColumnSchemaDesc{{Name: "sys/id", Type: TypeString}},
			Records: []map[string]any{
				{"sys/id": map[string]any{"type": "STRING", "value": "45"}},
			},
			LastKey: "45",
		})
	})

	out, err := client.QueryTable(context.Background(), BuildQuery(QueryOptions{
		TableName: TableNameOfSummary("p"),
	}))
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "45", out.LastKey)
}

func TestClient_ScanTable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/datastore/scanTable", r.URL.Path)
		var req ScanTableRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Tables, 2)
		_ = json.NewEncoder(w).Encode(RecordList{})
	})

	_, err := client.ScanTable(context.Background(), BuildScanQuery(ScanOptions{
		Tables: []TableDesc{{TableName: "t1"}, {TableName: "t2", ColumnPrefix: "b-"}},
	}))
	require.NoError(t, err)
}

func TestClient_ListTables(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/datastore/listTables", r.URL.Path)
		_ = json.NewEncoder(w).Encode(TableNameList{Tables: []string{"a", "b"}})
	})

	out, err := client.ListTables(context.Background(), ListTablesRequest{Prefix: "project/p/"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, out.Tables)
}

func TestClient_ExportTable(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/datastore/queryTable/export", r.URL.Path)
		_, _ = w.Write([]byte("sys/id,label\n45,cat\n"))
	})

	var buf strings.Builder
	err := client.ExportTable(context.Background(), QueryTableRequest{TableName: "t"}, &buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "45,cat")
}

func TestClient_ErrorStatusSurfacesBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "table wrecked", http.StatusInternalServerError)
	})

	_, err := client.QueryTable(context.Background(), QueryTableRequest{TableName: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	assert.Contains(t, err.Error(), "table wrecked")
}

func TestClient_FetchTablesMergesUnderPrefixes(t *testing.T) {
	var calls atomic.Int32
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		var req QueryTableRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch req.TableName {
		case "t1":
			_ = json.NewEncoder(w).Encode(RecordList{
				ColumnTypes: []ColumnSchemaDesc{{Name: "id", Type: TypeString}, {Name: "x", Type: TypeInt64}},
				Records: []map[string]any{
					{"id": map[string]any{"type": "STRING", "value": "r1"}, "x": map[string]any{"type": "INT64", "value": "1"}},
				},
			})
		case "t2":
			_ = json.NewEncoder(w).Encode(RecordList{
				ColumnTypes: []ColumnSchemaDesc{{Name: "id", Type: TypeString}, {Name: "y", Type: TypeInt64}},
				Records: []map[string]any{
					{"id": map[string]any{"type": "STRING", "value": "r1"}, "y": map[string]any{"type": "INT64", "value": "2"}},
				},
			})
		default:
			t.Errorf("unexpected table %q", req.TableName)
		}
	})

	out, err := client.FetchTables(context.Background(), []TableDesc{
		{TableName: "t1", ColumnPrefix: "a-"},
		{TableName: "t2", ColumnPrefix: "b-"},
	}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())

	require.Len(t, out.Records, 1)
	rec := out.Records[0]
	assert.Contains(t, rec, "a-id")
	assert.Contains(t, rec, "a-x")
	assert.Contains(t, rec, "b-id")
	assert.Contains(t, rec, "b-y")
}

func TestClient_FetchTablesPropagatesFailure(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req QueryTableRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.TableName == "bad" {
			http.Error(w, "nope", http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(RecordList{})
	})

	_, err := client.FetchTables(context.Background(), []TableDesc{
		{TableName: "ok"},
		{TableName: "bad"},
	}, 1, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}
