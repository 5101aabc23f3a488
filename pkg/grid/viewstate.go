package grid

import (
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/leapstack-labs/leapboard/pkg/datastore"
)

// AllViewID is the sentinel view id meaning "no view selected, show
// every column". It is never persisted.
const AllViewID = "all"

// SortDirection orders a sorted column.
type SortDirection string

// Sort directions.
const (
	SortNone SortDirection = ""
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

// View is a named, persisted grid configuration: visible/pinned columns,
// sort, filters and resize state.
type View struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	Filters        []datastore.Condition    `json:"filters,omitempty"`
	Queries        []datastore.SimpleFilter `json:"queries,omitempty"`
	IDs            []string                 `json:"ids,omitempty"`
	PinnedIDs      []string                 `json:"pinnedIds,omitempty"`
	SortBy         string                   `json:"sortBy,omitempty"`
	SortDirection  SortDirection            `json:"sortDirection,omitempty"`
	MeasuredWidths map[string]float64       `json:"measuredWidths,omitempty"`
	ResizeDeltas   map[string]float64       `json:"resizeDeltas,omitempty"`
	IsDefault      bool                     `json:"def"`
	IsShow         bool                     `json:"isShow"`
	Updated        bool                     `json:"updated"`
	Version        int                      `json:"version"`
}

// RowSelectionFunc is notified synchronously after every row selection
// change; it is the seam the compare table synchronizes through.
type RowSelectionFunc func(ids []string, records []datastore.Record)

// Store holds the view state of one table instance. A store key scopes
// each grid, so several grids coexist independently. Safe for
// concurrent use.
type Store struct {
	mu sync.Mutex

	key         string
	views       []View
	currentView View

	rowSelectedIDs     []string
	rowSelectedRecords []datastore.Record
	onRowSelected      RowSelectionFunc
}

// NewStore creates a view-state store for the given store key.
func NewStore(key string, onRowSelected RowSelectionFunc) *Store {
	return &Store{
		key:         key,
		currentView: rawDefaultView(),
		onRowSelected: func(ids []string, records []datastore.Record) {
			if onRowSelected != nil {
				onRowSelected(ids, records)
			}
		},
	}
}

// rawDefaultView is the unsaved sentinel state: every column visible,
// no filters or sort.
func rawDefaultView() View {
	return View{ID: AllViewID, Name: "all"}
}

// Key returns the store key.
func (s *Store) Key() string { return s.key }

// CurrentView returns a copy of the active view.
func (s *Store) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentView
}

// Views returns a copy of the saved views.
func (s *Store) Views() []View {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]View, len(s.views))
	copy(out, s.views)
	return out
}

// SetViews replaces the saved view list (bulk load from persistence).
func (s *Store) SetViews(views []View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.views = append([]View(nil), views...)
}

// SetCurrentView bulk-replaces the active view without touching the
// version or updated flag; used on initial load.
func (s *Store) SetCurrentView(v View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView = v
}

// ChangeView activates the view with the given id. The sentinel "all"
// resets to the raw default; an unknown id falls back to the view
// marked default, then to the raw default. Switching views is not
// itself a persistable change.
func (s *Store) ChangeView(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id == AllViewID {
		s.currentView = rawDefaultView()
		return
	}
	if v, ok := s.findView(func(v View) bool { return v.ID == id }); ok {
		s.currentView = v
		return
	}
	if v, ok := s.findView(func(v View) bool { return v.IsDefault }); ok {
		s.currentView = v
		return
	}
	s.currentView = rawDefaultView()
}

func (s *Store) findView(match func(View) bool) (View, bool) {
	for _, v := range s.views {
		if match(v) {
			return v, true
		}
	}
	return View{}, false
}

// touch records a persistable mutation of the current view.
func (s *Store) touch() {
	s.currentView.Version++
	s.currentView.Updated = true
}

// SetFilters replaces the current view's filter conditions.
func (s *Store) SetFilters(filters []datastore.Condition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView.Filters = filters
	s.touch()
}

// SetQueries replaces the current view's advanced query list.
func (s *Store) SetQueries(queries []datastore.SimpleFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView.Queries = queries
	s.touch()
}

// SetColumns replaces the selected column order and pin set.
func (s *Store) SetColumns(ids, pinnedIDs []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView.IDs = ids
	s.currentView.PinnedIDs = pinnedIDs
	s.touch()
}

// SetSort sets the sorted column and direction.
func (s *Store) SetSort(columnKey string, direction SortDirection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView.SortBy = columnKey
	s.currentView.SortDirection = direction
	s.touch()
}

// ResizeColumn accumulates a width delta for the column.
func (s *Store) ResizeColumn(columnKey string, delta float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentView.ResizeDeltas == nil {
		s.currentView.ResizeDeltas = map[string]float64{}
	}
	s.currentView.ResizeDeltas[columnKey] += delta
	s.touch()
}

// TogglePin pins or unpins a column, keeping pinned columns ahead of
// unpinned ones while preserving relative order inside both groups.
func (s *Store) TogglePin(columnKey string, pinned bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	set := make(map[string]bool, len(s.currentView.PinnedIDs))
	for _, id := range s.currentView.PinnedIDs {
		set[id] = true
	}
	set[columnKey] = pinned

	var pinnedIDs, rest []string
	for _, id := range s.currentView.IDs {
		if set[id] {
			pinnedIDs = append(pinnedIDs, id)
		} else {
			rest = append(rest, id)
		}
	}
	s.currentView.PinnedIDs = pinnedIDs
	s.currentView.IDs = append(pinnedIDs, rest...)
	s.touch()
}

// SaveView persists v into the view list. A matching id is replaced in
// place with its updated flag and version cleared; an unknown (or
// empty) id becomes a new view with a generated id, marked visible and
// as the sole default.
func (s *Store) SaveView(v View) View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v.Updated = false
	v.Version = 0

	for i := range s.views {
		if s.views[i].ID == v.ID {
			s.views[i] = v
			if s.currentView.ID == v.ID {
				s.currentView = v
			}
			return v
		}
	}

	for i := range s.views {
		s.views[i].IsDefault = false
	}
	v.ID = uuid.New().String()
	v.IsDefault = true
	v.IsShow = true
	s.views = append(s.views, v)
	s.currentView = v
	return v
}

// MarkSaved clears the current view's unsaved-changes flag after an
// explicit persist.
func (s *Store) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentView.Updated = false
}

// SelectedIDs returns a copy of the selected row ids.
func (s *Store) SelectedIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.rowSelectedIDs...)
}

// SelectedRecords returns a copy of the cached selected records,
// index-aligned with SelectedIDs.
func (s *Store) SelectedRecords() []datastore.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]datastore.Record(nil), s.rowSelectedRecords...)
}

// SelectRow adds or removes one row from the selection.
func (s *Store) SelectRow(id string, record datastore.Record, selected bool) {
	s.mu.Lock()
	if selected {
		if !slices.Contains(s.rowSelectedIDs, id) {
			s.rowSelectedIDs = append(s.rowSelectedIDs, id)
			s.rowSelectedRecords = append(s.rowSelectedRecords, record)
		}
	} else {
		for i, existing := range s.rowSelectedIDs {
			if existing == id {
				s.rowSelectedIDs = append(s.rowSelectedIDs[:i], s.rowSelectedIDs[i+1:]...)
				s.rowSelectedRecords = append(s.rowSelectedRecords[:i], s.rowSelectedRecords[i+1:]...)
				break
			}
		}
	}
	ids, records := s.selectionSnapshot()
	s.mu.Unlock()

	s.onRowSelected(ids, records)
}

// SelectRows replaces the whole selection.
func (s *Store) SelectRows(ids []string, records []datastore.Record) {
	s.mu.Lock()
	s.rowSelectedIDs = append([]string(nil), ids...)
	s.rowSelectedRecords = append([]datastore.Record(nil), records...)
	ids, records = s.selectionSnapshot()
	s.mu.Unlock()

	s.onRowSelected(ids, records)
}

// ClearSelection removes every selected row.
func (s *Store) ClearSelection() {
	s.mu.Lock()
	s.rowSelectedIDs = nil
	s.rowSelectedRecords = nil
	s.mu.Unlock()

	s.onRowSelected(nil, nil)
}

func (s *Store) selectionSnapshot() ([]string, []datastore.Record) {
	return append([]string(nil), s.rowSelectedIDs...),
		append([]datastore.Record(nil), s.rowSelectedRecords...)
}

// ActiveColumns derives the visible column list for the current view:
// the view's selection order when set, every column otherwise, pinned
// ones first.
func (s *Store) ActiveColumns(all []*Column) []*Column {
	s.mu.Lock()
	view := s.currentView
	s.mu.Unlock()

	byKey := make(map[string]*Column, len(all))
	for _, c := range all {
		byKey[c.Key] = c
	}

	keys := view.IDs
	if view.ID == AllViewID && len(keys) == 0 {
		keys = make([]string, 0, len(all))
		for _, c := range all {
			keys = append(keys, c.Key)
		}
	}

	pinned := make(map[string]bool, len(view.PinnedIDs))
	for _, id := range view.PinnedIDs {
		pinned[id] = true
	}

	var head, tail []*Column
	for _, key := range keys {
		c, ok := byKey[key]
		if !ok {
			continue
		}
		if pinned[key] {
			head = append(head, c)
		} else {
			tail = append(tail, c)
		}
	}
	return append(head, tail...)
}
