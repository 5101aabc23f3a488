package grid

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/leapstack-labs/leapboard/internal/settings"
	"github.com/leapstack-labs/leapboard/internal/ui/notifier"
	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// Datastore is the subset of the table store client the grid API needs.
type Datastore interface {
	QueryTable(ctx context.Context, req datastore.QueryTableRequest) (*datastore.RecordList, error)
	ScanTable(ctx context.Context, req datastore.ScanTableRequest) (*datastore.RecordList, error)
	ListTables(ctx context.Context, req datastore.ListTablesRequest) (*datastore.TableNameList, error)
}

// Handlers provides HTTP handlers for the grid feature.
type Handlers struct {
	store    Datastore
	settings *settings.Store
	notifier *notifier.Notifier
	project  string
	logger   *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(store Datastore, s *settings.Store, notify *notifier.Notifier, project string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		store:    store,
		settings: s,
		notifier: notify,
		project:  project,
		logger:   logger,
	}
}

// Query runs a single-table query and returns reconciled records.
func (h *Handlers) Query(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Table == "" {
		writeError(w, http.StatusBadRequest, errors.New("table is required"))
		return
	}

	query := datastore.BuildQuery(datastore.QueryOptions{
		TableName: req.Table,
		Columns:   req.Columns,
		Filters:   req.Filters,
		OrderBy:   req.OrderBy,
		PageNum:   req.PageNum,
		PageSize:  req.PageSize,
	})

	list, err := h.store.QueryTable(r.Context(), query)
	if err != nil {
		h.logger.Error("query table failed", "table", req.Table, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	rec := datastore.NewReconciler(datastore.DefaultDecodeCacheSize)
	result := rec.Reconcile(list.Records, list.ColumnTypes, list.ColumnHints)
	writeJSON(w, http.StatusOK, recordsResponse(result))
}

// Scan runs a multi-table scan, reconciles the merged records and
// unifies column names across the per-table prefixes.
func (h *Handlers) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(req.Tables) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("at least one table is required"))
		return
	}

	descs := make([]datastore.TableDesc, len(req.Tables))
	for i, name := range req.Tables {
		desc := datastore.TableDesc{TableName: name}
		if i < len(req.Prefixes) {
			desc.ColumnPrefix = req.Prefixes[i]
		}
		descs[i] = desc
	}

	scan := datastore.BuildScanQuery(datastore.ScanOptions{
		Tables:   descs,
		PageSize: req.Limit,
	})

	list, err := h.store.ScanTable(r.Context(), scan)
	if err != nil {
		h.logger.Error("scan tables failed", "tables", len(req.Tables), "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}

	rec := datastore.NewReconciler(datastore.DefaultDecodeCacheSize)
	result := rec.Reconcile(list.Records, list.ColumnTypes, list.ColumnHints)
	result = datastore.UnifyByPrefix(result, req.Prefixes)
	writeJSON(w, http.StatusOK, recordsResponse(result))
}

// Tables lists table names under a prefix.
func (h *Handlers) Tables(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")

	names, err := h.store.ListTables(r.Context(), datastore.ListTablesRequest{Prefix: prefix})
	if err != nil {
		h.logger.Error("list tables failed", "prefix", prefix, "error", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// Views returns the persisted view state for a store key. A key with no
// saved state yields an empty content string rather than a 404 so the
// browser can start from the raw default view.
func (h *Handlers) Views(w http.ResponseWriter, r *http.Request) {
	storeKey := r.URL.Query().Get("storeKey")
	if storeKey == "" {
		writeError(w, http.StatusBadRequest, errors.New("storeKey is required"))
		return
	}

	content, err := h.settings.Get(h.project, storeKey)
	if err != nil && !errors.Is(err, settings.ErrNotFound) {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, ViewsResponse{StoreKey: storeKey, Content: content})
}

// SaveViews persists the view state for a store key and notifies
// subscribed listeners.
func (h *Handlers) SaveViews(w http.ResponseWriter, r *http.Request) {
	var req SaveViewsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.StoreKey == "" {
		writeError(w, http.StatusBadRequest, errors.New("storeKey is required"))
		return
	}
	if !json.Valid([]byte(req.Content)) {
		writeError(w, http.StatusBadRequest, errors.New("content must be valid JSON"))
		return
	}

	if err := h.settings.Put(h.project, req.StoreKey, req.Content); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.notifier.Broadcast(req.StoreKey)
	writeJSON(w, http.StatusOK, ViewsResponse{StoreKey: req.StoreKey, Content: req.Content})
}

func recordsResponse(result datastore.ReconcileResult) RecordsResponse {
	resp := RecordsResponse{
		Records:     result.Records,
		ColumnTypes: result.ColumnTypes,
	}
	for _, err := range result.Errors {
		resp.Errors = append(resp.Errors, err.Error())
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
