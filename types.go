package oramcp

// QueryInput is the input for the ExecuteQuery tool. Params are positional
// bind values substituted for :1, :2, ... placeholders.
type QueryInput struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params,omitempty"`
}

// QueryOutput is the output of the ExecuteQuery tool. All errors (Oracle
// errors, policy rejections, Go errors) are placed in Error; matching
// error-prompt guidance is appended to the message.
//
// For read statements Rows holds the (row-capped) result set. For write
// statements Rows holds a single summary record {affected_rows, status} and
// RowsAffected carries the driver-reported count.
type QueryOutput struct {
	Columns      []string         `json:"columns"`
	Rows         []map[string]any `json:"rows"`
	RowsAffected int64            `json:"rows_affected"`
	Truncated    bool             `json:"truncated,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// ListTablesInput is the input for the ListTables tool.
type ListTablesInput struct {
	Schema string `json:"schema"`
}

// TableEntry represents a single table in the ListTables output.
type TableEntry struct {
	Schema  string `json:"schema"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	NumRows int64  `json:"num_rows"`
	Comment string `json:"comment,omitempty"`
}

// ListTablesOutput is the output of the ListTables tool.
type ListTablesOutput struct {
	Schema string       `json:"schema"`
	Tables []TableEntry `json:"tables"`
}

// ListSchemasOutput is the output of the ListSchemas tool.
type ListSchemasOutput struct {
	Schemas []SchemaEntry `json:"schemas"`
}

// SchemaEntry represents a single accessible schema.
type SchemaEntry struct {
	Name       string `json:"name"`
	TableCount int64  `json:"table_count"`
}

// DescribeTableInput is the input for the DescribeTable tool.
type DescribeTableInput struct {
	Table  string `json:"table"`
	Schema string `json:"schema"`
}

// ColumnInfo describes a single column.
type ColumnInfo struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Length       int64  `json:"length,omitempty"`
	Precision    int64  `json:"precision,omitempty"`
	Scale        int64  `json:"scale,omitempty"`
	Nullable     bool   `json:"nullable"`
	Default      string `json:"default,omitempty"`
	IsPrimaryKey bool   `json:"is_primary_key"`
	Comment      string `json:"comment,omitempty"`
}

// IndexInfo describes a single index.
type IndexInfo struct {
	Name     string `json:"name"`
	IsUnique bool   `json:"is_unique"`
	Columns  string `json:"columns"`
}

// ConstraintInfo describes a single constraint.
type ConstraintInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"` // PRIMARY KEY, FOREIGN KEY, UNIQUE, CHECK
	Column     string `json:"column,omitempty"`
	References string `json:"references,omitempty"` // owner.table.column for foreign keys
}

// DescribeTableOutput is the output of the DescribeTable tool.
type DescribeTableOutput struct {
	Schema      string           `json:"schema"`
	Name        string           `json:"name"`
	Columns     []ColumnInfo     `json:"columns"`
	Indexes     []IndexInfo      `json:"indexes"`
	Constraints []ConstraintInfo `json:"constraints"`
}

// SecurityInfo reports the active security configuration.
type SecurityInfo struct {
	SecurityMode     string   `json:"security_mode"`
	AllowedSchemas   []string `json:"allowed_schemas"`
	SchemaAccessMode string   `json:"schema_access_mode"`
	WriteAllowed     bool     `json:"write_allowed"`
	DangerousAllowed bool     `json:"dangerous_operations_allowed"`
	MaxResultRows    int      `json:"max_result_rows"`
	QueryLogEnabled  bool     `json:"query_log_enabled"`
}
