package oramcp

import (
	"context"
	"fmt"
	"time"
)

const listTablesSQL = `
SELECT t.OWNER AS schema_name,
       t.TABLE_NAME AS table_name,
       'BASE TABLE' AS table_type,
       NVL(t.NUM_ROWS, 0) AS num_rows,
       c.COMMENTS AS table_comment
FROM ALL_TABLES t
LEFT JOIN ALL_TAB_COMMENTS c
    ON t.OWNER = c.OWNER AND t.TABLE_NAME = c.TABLE_NAME
WHERE t.OWNER = :1
ORDER BY t.TABLE_NAME
`

// ListTables returns the tables in the given schema (the connected user's
// schema when empty). The schema access policy is enforced before any
// catalog SQL is issued. Catalog reads run through the forced-readonly
// pipeline regardless of the configured security mode.
func (o *OracleMcp) ListTables(ctx context.Context, input ListTablesInput) (*ListTablesOutput, error) {
	startTime := time.Now()

	queryCtx, cancel := o.introspectionContext(ctx)
	defer cancel()

	schema, err := o.resolveSchema(queryCtx, input.Schema)
	if err != nil {
		return nil, err
	}

	output := o.ExecuteReadOnly(queryCtx, QueryInput{SQL: listTablesSQL, Params: []any{schema}})
	if output.Error != "" {
		return nil, fmt.Errorf("ListTables query failed: %s", output.Error)
	}

	tables := make([]TableEntry, 0, len(output.Rows))
	for _, row := range output.Rows {
		tables = append(tables, TableEntry{
			Schema:  stringField(row, "SCHEMA_NAME"),
			Name:    stringField(row, "TABLE_NAME"),
			Type:    stringField(row, "TABLE_TYPE"),
			NumRows: intField(row, "NUM_ROWS"),
			Comment: stringField(row, "TABLE_COMMENT"),
		})
	}

	o.logger.Info().
		Str("schema", schema).
		Dur("duration", time.Since(startTime)).
		Int("table_count", len(tables)).
		Msg("ListTables executed")

	return &ListTablesOutput{Schema: schema, Tables: tables}, nil
}
