package oramcp

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SQL queries for DescribeTable

const columnsSQL = `
SELECT c.COLUMN_NAME AS column_name,
       c.DATA_TYPE AS data_type,
       c.DATA_LENGTH AS data_length,
       NVL(c.DATA_PRECISION, 0) AS data_precision,
       NVL(c.DATA_SCALE, 0) AS data_scale,
       c.NULLABLE AS nullable,
       c.DATA_DEFAULT AS data_default,
       CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'YES' ELSE 'NO' END AS is_primary_key,
       com.COMMENTS AS column_comment
FROM ALL_TAB_COLUMNS c
LEFT JOIN ALL_COL_COMMENTS com
    ON c.OWNER = com.OWNER AND c.TABLE_NAME = com.TABLE_NAME AND c.COLUMN_NAME = com.COLUMN_NAME
LEFT JOIN (
    SELECT cc.OWNER, cc.TABLE_NAME, cc.COLUMN_NAME
    FROM ALL_CONS_COLUMNS cc
    JOIN ALL_CONSTRAINTS ac
        ON cc.CONSTRAINT_NAME = ac.CONSTRAINT_NAME AND cc.OWNER = ac.OWNER
    WHERE ac.CONSTRAINT_TYPE = 'P'
) pk ON c.OWNER = pk.OWNER AND c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
WHERE c.TABLE_NAME = :1
  AND c.OWNER = :2
ORDER BY c.COLUMN_ID
`

const indexesSQL = `
SELECT i.INDEX_NAME AS index_name,
       i.UNIQUENESS AS uniqueness,
       LISTAGG(ic.COLUMN_NAME, ', ') WITHIN GROUP (ORDER BY ic.COLUMN_POSITION) AS index_columns
FROM ALL_INDEXES i
JOIN ALL_IND_COLUMNS ic
    ON i.INDEX_NAME = ic.INDEX_NAME AND i.OWNER = ic.INDEX_OWNER
WHERE i.TABLE_NAME = :1
  AND i.OWNER = :2
  AND i.INDEX_TYPE != 'LOB'
GROUP BY i.INDEX_NAME, i.UNIQUENESS
ORDER BY i.INDEX_NAME
`

const constraintsSQL = `
SELECT c.CONSTRAINT_NAME AS constraint_name,
       CASE c.CONSTRAINT_TYPE
           WHEN 'P' THEN 'PRIMARY KEY'
           WHEN 'R' THEN 'FOREIGN KEY'
           WHEN 'U' THEN 'UNIQUE'
           WHEN 'C' THEN 'CHECK'
           ELSE c.CONSTRAINT_TYPE
       END AS constraint_type,
       cc.COLUMN_NAME AS column_name,
       CASE
           WHEN c.CONSTRAINT_TYPE = 'R' THEN
               rc.OWNER || '.' || rc.TABLE_NAME || '.' || rcc.COLUMN_NAME
           ELSE NULL
       END AS fk_references
FROM ALL_CONSTRAINTS c
LEFT JOIN ALL_CONS_COLUMNS cc
    ON c.CONSTRAINT_NAME = cc.CONSTRAINT_NAME AND c.OWNER = cc.OWNER
LEFT JOIN ALL_CONSTRAINTS rc
    ON c.R_CONSTRAINT_NAME = rc.CONSTRAINT_NAME
LEFT JOIN ALL_CONS_COLUMNS rcc
    ON rc.CONSTRAINT_NAME = rcc.CONSTRAINT_NAME AND rc.OWNER = rcc.OWNER
WHERE c.TABLE_NAME = :1
  AND c.OWNER = :2
  AND c.CONSTRAINT_TYPE IN ('P', 'R', 'U', 'C')
ORDER BY c.CONSTRAINT_TYPE, c.CONSTRAINT_NAME
`

// DescribeTable returns column, index, and constraint metadata for a table.
// The schema access policy is enforced once, before any catalog SQL. Index
// and constraint lookups are supplementary: when they fail (permissions,
// catalog quirks) the output degrades to empty lists instead of erroring.
func (o *OracleMcp) DescribeTable(ctx context.Context, input DescribeTableInput) (*DescribeTableOutput, error) {
	startTime := time.Now()

	if input.Table == "" {
		return nil, fmt.Errorf("table name must not be empty")
	}
	table := strings.ToUpper(strings.TrimSpace(input.Table))

	queryCtx, cancel := o.introspectionContext(ctx)
	defer cancel()

	schema, err := o.resolveSchema(queryCtx, input.Schema)
	if err != nil {
		return nil, err
	}

	output := &DescribeTableOutput{
		Schema:      schema,
		Name:        table,
		Columns:     []ColumnInfo{},
		Indexes:     []IndexInfo{},
		Constraints: []ConstraintInfo{},
	}

	if err := o.fetchColumns(queryCtx, table, schema, output); err != nil {
		return nil, err
	}
	if len(output.Columns) == 0 {
		return nil, fmt.Errorf("table %s does not exist in schema %s", table, schema)
	}

	o.fetchIndexes(queryCtx, table, schema, output)
	o.fetchConstraints(queryCtx, table, schema, output)

	o.logger.Info().
		Str("schema", schema).
		Str("table", table).
		Dur("duration", time.Since(startTime)).
		Int("column_count", len(output.Columns)).
		Msg("DescribeTable executed")

	return output, nil
}

func (o *OracleMcp) fetchColumns(ctx context.Context, table, schema string, output *DescribeTableOutput) error {
	result := o.ExecuteReadOnly(ctx, QueryInput{SQL: columnsSQL, Params: []any{table, schema}})
	if result.Error != "" {
		return fmt.Errorf("failed to fetch columns: %s", result.Error)
	}

	for _, row := range result.Rows {
		output.Columns = append(output.Columns, ColumnInfo{
			Name:         stringField(row, "COLUMN_NAME"),
			Type:         stringField(row, "DATA_TYPE"),
			Length:       intField(row, "DATA_LENGTH"),
			Precision:    intField(row, "DATA_PRECISION"),
			Scale:        intField(row, "DATA_SCALE"),
			Nullable:     stringField(row, "NULLABLE") == "Y",
			Default:      strings.TrimSpace(stringField(row, "DATA_DEFAULT")),
			IsPrimaryKey: stringField(row, "IS_PRIMARY_KEY") == "YES",
			Comment:      stringField(row, "COLUMN_COMMENT"),
		})
	}
	return nil
}

func (o *OracleMcp) fetchIndexes(ctx context.Context, table, schema string, output *DescribeTableOutput) {
	result := o.ExecuteReadOnly(ctx, QueryInput{SQL: indexesSQL, Params: []any{table, schema}})
	if result.Error != "" {
		o.logger.Warn().
			Str("table", table).
			Str("error", result.Error).
			Msg("failed to fetch indexes, returning empty list")
		return
	}

	for _, row := range result.Rows {
		output.Indexes = append(output.Indexes, IndexInfo{
			Name:     stringField(row, "INDEX_NAME"),
			IsUnique: stringField(row, "UNIQUENESS") == "UNIQUE",
			Columns:  stringField(row, "INDEX_COLUMNS"),
		})
	}
}

func (o *OracleMcp) fetchConstraints(ctx context.Context, table, schema string, output *DescribeTableOutput) {
	result := o.ExecuteReadOnly(ctx, QueryInput{SQL: constraintsSQL, Params: []any{table, schema}})
	if result.Error != "" {
		o.logger.Warn().
			Str("table", table).
			Str("error", result.Error).
			Msg("failed to fetch constraints, returning empty list")
		return
	}

	for _, row := range result.Rows {
		output.Constraints = append(output.Constraints, ConstraintInfo{
			Name:       stringField(row, "CONSTRAINT_NAME"),
			Type:       stringField(row, "CONSTRAINT_TYPE"),
			Column:     stringField(row, "COLUMN_NAME"),
			References: stringField(row, "FK_REFERENCES"),
		})
	}
}
