package datastore

import (
	"fmt"
	"sort"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultDecodeCacheSize bounds the per-(row, column) decode cache.
const DefaultDecodeCacheSize = 1000

// Record is one decoded row: column name to schema-decoded value. Keys
// keep any table column prefix, which is what disambiguates collisions
// when several tables merge into one row.
type Record map[string]*SchemaValue

// ReconcileResult is the output of a Reconciler pass. Errors collects
// per-cell decode failures; the affected entries are skipped or partial
// while the rest of the batch decodes normally.
type ReconcileResult struct {
	Records     []Record
	ColumnTypes []ColumnSchemaDesc
	Errors      []error
}

// Reconciler decodes record batches using explicit column metadata when
// present, or wire type hints otherwise ("mixed schema"). Decode results
// are memoized per (row, column) in a bounded LRU; both reads and writes
// refresh recency.
//
// The cache carries no batch identity, so a Reconciler must not be
// reused across batches: create one per response (or call Reset).
type Reconciler struct {
	cache *lru.Cache[string, *SchemaValue]
}

// NewReconciler creates a Reconciler. capacity <= 0 uses
// DefaultDecodeCacheSize; the parameter exists for tests.
func NewReconciler(capacity int) *Reconciler {
	if capacity <= 0 {
		capacity = DefaultDecodeCacheSize
	}
	cache, _ := lru.New[string, *SchemaValue](capacity)
	return &Reconciler{cache: cache}
}

// Reset drops all memoized decode results.
func (r *Reconciler) Reset() {
	r.cache.Purge()
}

// CacheLen reports the number of memoized entries.
func (r *Reconciler) CacheLen() int {
	return r.cache.Len()
}

// Reconcile decodes rawRecords into Records and resolves the column
// type list. Empty input yields empty output. A key whose decode
// produces nothing is skipped; failures are isolated per entry.
func (r *Reconciler) Reconcile(rawRecords []map[string]any, columnTypes []ColumnSchemaDesc, columnHints map[string]ColumnHintsDesc) ReconcileResult {
	out := ReconcileResult{
		ColumnTypes: resolveColumnTypes(columnTypes, columnHints),
	}
	if len(rawRecords) == 0 {
		return out
	}

	out.Records = make([]Record, 0, len(rawRecords))
	for rowIndex, raw := range rawRecords {
		record := make(Record, len(raw))
		for name, wire := range raw {
			sv, err := r.decodeCell(rowIndex, name, wire)
			if err != nil {
				out.Errors = append(out.Errors, fmt.Errorf("row %d column %s: %w", rowIndex, name, err))
			}
			if sv == nil {
				continue
			}
			record[name] = sv
		}
		out.Records = append(out.Records, record)
	}
	return out
}

// decodeCell schema-decodes one cell through the memoization cache.
// Partial map decodes are still cached and returned; the error reports
// the entries that were skipped.
func (r *Reconciler) decodeCell(rowIndex int, name string, wire any) (*SchemaValue, error) {
	key := fmt.Sprintf("%d.%s", rowIndex, name)
	if sv, ok := r.cache.Get(key); ok {
		return sv, nil
	}

	sv, err := DecodeSchema(wire)
	if sv == nil {
		return nil, err
	}
	sv.Name = name
	r.cache.Add(key, sv)
	return sv, err
}

// resolveColumnTypes prefers explicit metadata; otherwise it derives one
// descriptor per hint key, defaulting the type to STRING. The derived
// list is sorted by name for determinism.
func resolveColumnTypes(columnTypes []ColumnSchemaDesc, columnHints map[string]ColumnHintsDesc) []ColumnSchemaDesc {
	if len(columnTypes) > 0 {
		return columnTypes
	}
	if len(columnHints) == 0 {
		return nil
	}

	derived := make([]ColumnSchemaDesc, 0, len(columnHints))
	for name, hints := range columnHints {
		t := TypeString
		if len(hints.TypeHints) > 0 {
			t = hints.TypeHints[0]
		}
		derived = append(derived, ColumnSchemaDesc{Name: name, Type: t})
	}
	sort.Slice(derived, func(i, j int) bool { return derived[i].Name < derived[j].Name })
	return derived
}

// MergeRecordLists merges per-table responses fetched client-side into
// one list, applying each table's column prefix to its record keys and
// column type names. Collisions across tables stay distinguishable
// because the prefix remains part of the key.
func MergeRecordLists(lists []RecordList, descs []TableDesc) RecordList {
	var merged RecordList
	rows := 0
	for _, l := range lists {
		if len(l.Records) > rows {
			rows = len(l.Records)
		}
	}

	records := make([]map[string]any, rows)
	for i := range records {
		records[i] = map[string]any{}
	}
	seenTypes := map[string]bool{}

	for li, l := range lists {
		prefix := ""
		if li < len(descs) {
			prefix = descs[li].ColumnPrefix
		}
		for _, ct := range l.ColumnTypes {
			name := prefix + ct.Name
			if seenTypes[name] {
				continue
			}
			seenTypes[name] = true
			ct.Name = name
			merged.ColumnTypes = append(merged.ColumnTypes, ct)
		}
		for hint, desc := range l.ColumnHints {
			if merged.ColumnHints == nil {
				merged.ColumnHints = map[string]ColumnHintsDesc{}
			}
			merged.ColumnHints[prefix+hint] = desc
		}
		for ri, rec := range l.Records {
			for name, v := range rec {
				records[ri][prefix+name] = v
			}
		}
		if l.LastKey > merged.LastKey {
			merged.LastKey = l.LastKey
		}
	}
	merged.Records = records
	return merged
}

// UnifyByPrefix reshapes a prefixed result into the unified row view:
// record keys drop their table prefix and the column type list is
// deduplicated by post-strip name. Later tables win on key collision.
func UnifyByPrefix(result ReconcileResult, prefixes []string) ReconcileResult {
	strip := func(name string) string {
		for _, p := range prefixes {
			if p == "" {
				continue
			}
			if len(name) > len(p) && name[:len(p)] == p {
				return name[len(p):]
			}
		}
		return name
	}

	unified := ReconcileResult{}
	seen := map[string]bool{}
	for _, ct := range result.ColumnTypes {
		name := strip(ct.Name)
		if seen[name] {
			continue
		}
		seen[name] = true
		ct.Name = name
		unified.ColumnTypes = append(unified.ColumnTypes, ct)
	}

	unified.Records = make([]Record, 0, len(result.Records))
	for _, rec := range result.Records {
		row := make(Record, len(rec))
		for name, v := range rec {
			row[strip(name)] = v
		}
		unified.Records = append(unified.Records, row)
	}
	return unified
}
