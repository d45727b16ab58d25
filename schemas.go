package oramcp

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// SchemaDeniedError is returned when a schema-scoped operation targets a
// schema outside the configured access policy.
type SchemaDeniedError struct {
	Schema  string
	Allowed string // display form of the allowed set
}

func (e *SchemaDeniedError) Error() string {
	return fmt.Sprintf("access to schema %s is not allowed, allowed schemas: %s", e.Schema, e.Allowed)
}

const schemaProbeSQL = `
SELECT DISTINCT OWNER
FROM ALL_TABLES
WHERE OWNER = :1
`

const listSchemasSQL = `
SELECT OWNER AS schema_name,
       COUNT(TABLE_NAME) AS table_count
FROM ALL_TABLES
WHERE OWNER NOT IN ('SYS', 'SYSTEM', 'CTXSYS', 'MDSYS', 'OLAPSYS', 'ORDSYS', 'OUTLN', 'WMSYS', 'XDB')
GROUP BY OWNER
ORDER BY OWNER
`

// isSchemaAllowed decides whether the caller may address the given schema
// under the configured access regime. The auto-discovery probe runs through
// the forced-readonly pipeline and fails closed: any probe failure counts as
// not allowed.
func (o *OracleMcp) isSchemaAllowed(ctx context.Context, schema string) bool {
	switch o.schemaMode {
	case SchemaAllowAll:
		return true

	case SchemaAutoDiscover:
		output := o.ExecuteReadOnly(ctx, QueryInput{
			SQL:    schemaProbeSQL,
			Params: []any{strings.ToUpper(schema)},
		})
		if output.Error != "" {
			o.logger.Warn().
				Str("schema", schema).
				Str("error", output.Error).
				Msg("schema discovery probe failed, denying access")
			return false
		}
		return len(output.Rows) > 0

	default:
		for _, allowed := range o.config.AllowedSchemas {
			if strings.EqualFold(allowed, schema) {
				return true
			}
		}
		return false
	}
}

// allowedSchemasDisplay returns the display form of the allowed set for
// denial messages.
func (o *OracleMcp) allowedSchemasDisplay() string {
	switch o.schemaMode {
	case SchemaAllowAll:
		return "all schemas (*)"
	case SchemaAutoDiscover:
		return "auto-discovered (auto)"
	default:
		return strings.Join(o.config.AllowedSchemas, ", ")
	}
}

// resolveSchema normalizes the requested schema name, defaulting to the
// connected user, and enforces the schema access policy. Every schema-scoped
// operation goes through here before issuing catalog SQL.
func (o *OracleMcp) resolveSchema(ctx context.Context, schema string) (string, error) {
	if schema == "" {
		user, err := o.currentUser(ctx)
		if err != nil {
			return "", err
		}
		schema = user
	}
	schema = strings.ToUpper(strings.TrimSpace(schema))

	if !o.isSchemaAllowed(ctx, schema) {
		return "", &SchemaDeniedError{Schema: schema, Allowed: o.allowedSchemasDisplay()}
	}
	return schema, nil
}

// ListSchemas returns the schemas the connected user can see, with table
// counts. Oracle system schemas are excluded.
func (o *OracleMcp) ListSchemas(ctx context.Context) (*ListSchemasOutput, error) {
	startTime := time.Now()

	queryCtx, cancel := o.introspectionContext(ctx)
	defer cancel()

	output := o.ExecuteReadOnly(queryCtx, QueryInput{SQL: listSchemasSQL})
	if output.Error != "" {
		return nil, fmt.Errorf("ListSchemas query failed: %s", output.Error)
	}

	schemas := make([]SchemaEntry, 0, len(output.Rows))
	for _, row := range output.Rows {
		schemas = append(schemas, SchemaEntry{
			Name:       stringField(row, "SCHEMA_NAME"),
			TableCount: intField(row, "TABLE_COUNT"),
		})
	}

	o.logger.Info().
		Dur("duration", time.Since(startTime)).
		Int("schema_count", len(schemas)).
		Msg("ListSchemas executed")

	return &ListSchemasOutput{Schemas: schemas}, nil
}

// introspectionContext applies the introspection timeout.
func (o *OracleMcp) introspectionContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(o.config.Query.IntrospectionTimeoutSeconds)*time.Second)
}

// stringField reads a string column from a normalized result row.
func stringField(row map[string]any, col string) string {
	if v, ok := row[col].(string); ok {
		return v
	}
	return ""
}

// intField reads a numeric column from a normalized result row. Oracle
// NUMBER columns may surface as int64, float64, or string depending on scale.
func intField(row map[string]any, col string) int64 {
	switch v := row[col].(type) {
	case int64:
		return v
	case float64:
		return int64(v)
	case string:
		var n int64
		fmt.Sscanf(v, "%d", &n)
		return n
	default:
		return 0
	}
}
