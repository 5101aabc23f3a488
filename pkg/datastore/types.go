// Package datastore implements the typed query/record layer over the
// remote column-oriented table store. It builds filter trees and request
// payloads for the store's query/scan endpoints, decodes the
// schema-tagged wire format into native values, and reconciles record
// batches (optionally merged from several physical tables) into a
// unified row view.
package datastore

// DataType identifies the declared type of a column or wire value.
type DataType string

// Data type constants recognized on the wire.
const (
	TypeBool    DataType = "BOOL"
	TypeBytes   DataType = "BYTES"
	TypeFloat16 DataType = "FLOAT16"
	TypeFloat32 DataType = "FLOAT32"
	TypeFloat64 DataType = "FLOAT64"
	TypeInt8    DataType = "INT8"
	TypeInt16   DataType = "INT16"
	TypeInt32   DataType = "INT32"
	TypeInt64   DataType = "INT64"
	TypeString  DataType = "STRING"
	TypeUnknown DataType = "UNKNOWN"
	TypeList    DataType = "LIST"
	TypeTuple   DataType = "TUPLE"
	TypeMap     DataType = "MAP"
	TypeObject  DataType = "OBJECT"
)

// IsScalar reports whether t is a non-composite type.
func (t DataType) IsScalar() bool {
	switch t {
	case TypeList, TypeTuple, TypeMap, TypeObject:
		return false
	default:
		return true
	}
}

// IsNumeric reports whether t is an integer or float type.
func (t DataType) IsNumeric() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64,
		TypeFloat16, TypeFloat32, TypeFloat64:
		return true
	default:
		return false
	}
}

// ColumnSchemaDesc describes a column's declared type. Composite types
// carry nested descriptors; scalar types do not.
type ColumnSchemaDesc struct {
	Name       string   `json:"name"`
	Type       DataType `json:"type"`
	PythonType string   `json:"pythonType,omitempty"`

	// Nested descriptors for composite types.
	ElementType *ColumnSchemaDesc `json:"elementType,omitempty"`
	KeyType     *ColumnSchemaDesc `json:"keyType,omitempty"`
	ValueType   *ColumnSchemaDesc `json:"valueType,omitempty"`
}

// ColumnHintsDesc carries type hints for a column when no explicit
// schema metadata is returned ("mixed schema" mode).
type ColumnHintsDesc struct {
	TypeHints        []DataType `json:"typeHints,omitempty"`
	ColumnValueHints []string   `json:"columnValueHints,omitempty"`
}

// TableDesc identifies one physical table in a scan request. ColumnPrefix
// namespaces the table's columns when several tables merge into one row.
type TableDesc struct {
	TableName    string   `json:"tableName"`
	ColumnPrefix string   `json:"columnPrefix,omitempty"`
	Columns      []string `json:"columns,omitempty"`
	KeepNone     bool     `json:"keepNone,omitempty"`
	Revision     string   `json:"revision,omitempty"`
}

// QueryTableRequest is the payload for the point-query endpoint.
type QueryTableRequest struct {
	TableName              string      `json:"tableName"`
	Columns                []string    `json:"columns,omitempty"`
	OrderBy                []OrderBy   `json:"orderBy,omitempty"`
	Filter                 *FilterDesc `json:"filter,omitempty"`
	Start                  int         `json:"start"`
	Limit                  int         `json:"limit"`
	RawResult              bool        `json:"rawResult"`
	EncodeWithType         bool        `json:"encodeWithType"`
	IgnoreNonExistingTable bool        `json:"ignoreNonExistingTable"`
	KeepNone               bool        `json:"keepNone,omitempty"`
	Revision               string      `json:"revision,omitempty"`
}

// ScanTableRequest is the payload for the multi-table scan endpoint.
type ScanTableRequest struct {
	Tables                 []TableDesc `json:"tables"`
	Start                  int         `json:"start"`
	Limit                  int         `json:"limit"`
	RawResult              bool        `json:"rawResult"`
	EncodeWithType         bool        `json:"encodeWithType"`
	IgnoreNonExistingTable bool        `json:"ignoreNonExistingTable"`
	KeepNone               bool        `json:"keepNone,omitempty"`
}

// OrderBy names a column to sort by and the direction.
type OrderBy struct {
	ColumnName string `json:"columnName"`
	Descending bool   `json:"descending,omitempty"`
}

// FilterDesc is a node of the nested boolean filter tree sent to the
// store. Leaf comparisons hold exactly two operands: a column reference
// and a typed value. AND/OR/NOT hold sub-filters.
type FilterDesc struct {
	Operator string        `json:"operator"`
	Operands []OperandDesc `json:"operands,omitempty"`
}

// OperandDesc is one operand of a filter node. Exactly one field is
// populated per operand.
type OperandDesc struct {
	Filter      *FilterDesc `json:"filter,omitempty"`
	ColumnName  string      `json:"columnName,omitempty"`
	BoolValue   *bool       `json:"boolValue,omitempty"`
	IntValue    *int64      `json:"intValue,omitempty"`
	FloatValue  *float64    `json:"floatValue,omitempty"`
	StringValue *string     `json:"stringValue,omitempty"`
	BytesValue  *string     `json:"bytesValue,omitempty"`
}

// RecordList is the response shape of query and scan requests. Records
// map column names to tagged wire values. ColumnTypes is explicit schema
// metadata; ColumnHints is the fallback used in mixed-schema mode.
type RecordList struct {
	ColumnTypes []ColumnSchemaDesc         `json:"columnTypes,omitempty"`
	ColumnHints map[string]ColumnHintsDesc `json:"columnHints,omitempty"`
	Records     []map[string]any           `json:"records,omitempty"`
	LastKey     string                     `json:"lastKey,omitempty"`
}

// ListTablesRequest asks the store for table names under the given
// prefix(es).
type ListTablesRequest struct {
	Prefix   string   `json:"prefix,omitempty"`
	Prefixes []string `json:"prefixes,omitempty"`
}

// TableNameList is the response of a list-tables request.
type TableNameList struct {
	Tables []string `json:"tables"`
}
