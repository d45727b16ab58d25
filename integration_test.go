package oramcp_test

import (
	"context"
	"strings"
	"testing"

	oramcp "github.com/rickchristie/oracle-mcp"
)

// These tests run against a live Oracle database addressed by
// ORAMCP_TEST_CONNSTRING and are skipped otherwise. The connected user needs
// CREATE TABLE privileges in its own schema.

func TestIntegration_ReadOnlySelect(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "read_only"
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{SQL: "SELECT 1 AS N FROM DUAL"})
	if output.Error != "" {
		t.Fatalf("query failed: %s", output.Error)
	}
	if len(output.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(output.Rows))
	}
}

func TestIntegration_ReadOnlyBlocksInsert(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "read_only"
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{SQL: "INSERT INTO t VALUES (1)"})
	if !strings.Contains(output.Error, "write operation forbidden under read-only mode") {
		t.Fatalf("expected policy rejection, got %q", output.Error)
	}
}

func TestIntegration_BindParams(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "read_only"
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{
		SQL:    "SELECT :1 AS A, :2 AS B FROM DUAL",
		Params: []any{"hello", 42},
	})
	if output.Error != "" {
		t.Fatalf("query failed: %s", output.Error)
	}
	if output.Rows[0]["A"] != "hello" {
		t.Fatalf("bind A = %v", output.Rows[0]["A"])
	}
}

func TestIntegration_WriteSummaryRow(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "limited_write"
	engine := newTestInstance(t, config)

	// DDL needs full access; use a separate instance to manage the table.
	adminConfig := defaultConfig()
	adminConfig.SecurityMode = "full_access"
	admin := newTestInstance(t, adminConfig)
	dropTableIfExists(t, admin, "oramcp_test_write")
	setupTable(t, admin, "CREATE TABLE oramcp_test_write (id NUMBER, name VARCHAR2(50))")
	t.Cleanup(func() { dropTableIfExists(t, admin, "oramcp_test_write") })

	output := engine.Execute(context.Background(), oramcp.QueryInput{
		SQL:    "INSERT INTO oramcp_test_write (id, name) VALUES (:1, :2)",
		Params: []any{1, "alice"},
	})
	if output.Error != "" {
		t.Fatalf("insert failed: %s", output.Error)
	}
	if output.RowsAffected != 1 {
		t.Fatalf("expected 1 affected row, got %d", output.RowsAffected)
	}
	if len(output.Rows) != 1 || output.Rows[0]["status"] != "success" {
		t.Fatalf("unexpected summary row: %v", output.Rows)
	}
}

func TestIntegration_LimitedWriteBlocksDrop(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "limited_write"
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{SQL: "DROP TABLE oramcp_nope"})
	if !strings.Contains(output.Error, "dangerous operation forbidden under limited-write mode") {
		t.Fatalf("expected policy rejection, got %q", output.Error)
	}
}

func TestIntegration_RowCapTruncates(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.SecurityMode = "read_only"
	config.Query.MaxResultRows = 5
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{
		SQL: "SELECT LEVEL AS N FROM DUAL CONNECT BY LEVEL <= 20",
	})
	if output.Error != "" {
		t.Fatalf("query failed: %s", output.Error)
	}
	if len(output.Rows) != 5 {
		t.Fatalf("expected 5 rows, got %d", len(output.Rows))
	}
	if !output.Truncated {
		t.Fatal("expected truncated flag")
	}
}

func TestIntegration_ErrorPromptAppended(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{
		SQL: "SELECT * FROM oramcp_definitely_missing",
	})
	if !strings.Contains(output.Error, "ORA-00942") {
		t.Fatalf("expected ORA-00942, got %q", output.Error)
	}
	if !strings.Contains(output.Error, "list_tables") {
		t.Fatalf("expected error prompt guidance, got %q", output.Error)
	}
}

func TestIntegration_Sanitization(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.Sanitization = []oramcp.SanitizationRule{
		{Pattern: `\b\d{3}-\d{2}-\d{4}\b`, Replacement: "***-**-****"},
	}
	engine := newTestInstance(t, config)

	output := engine.Execute(context.Background(), oramcp.QueryInput{
		SQL: "SELECT '123-45-6789' AS SSN FROM DUAL",
	})
	if output.Error != "" {
		t.Fatalf("query failed: %s", output.Error)
	}
	if output.Rows[0]["SSN"] != "***-**-****" {
		t.Fatalf("value not sanitized: %v", output.Rows[0]["SSN"])
	}
}

func TestIntegration_Ping(t *testing.T) {
	t.Parallel()
	engine := newTestInstance(t, defaultConfig())
	if err := engine.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestIntegration_ListTablesAndDescribe(t *testing.T) {
	t.Parallel()
	adminConfig := defaultConfig()
	adminConfig.SecurityMode = "full_access"
	admin := newTestInstance(t, adminConfig)
	dropTableIfExists(t, admin, "oramcp_test_meta")
	setupTable(t, admin, `CREATE TABLE oramcp_test_meta (
		id NUMBER(10) NOT NULL,
		name VARCHAR2(50),
		CONSTRAINT oramcp_test_meta_pk PRIMARY KEY (id)
	)`)
	t.Cleanup(func() { dropTableIfExists(t, admin, "oramcp_test_meta") })

	engine := newTestInstance(t, defaultConfig())
	ctx := context.Background()

	tables, err := engine.ListTables(ctx, oramcp.ListTablesInput{})
	if err != nil {
		t.Fatalf("ListTables: %v", err)
	}
	found := false
	for _, tbl := range tables.Tables {
		if tbl.Name == "ORAMCP_TEST_META" {
			found = true
		}
	}
	if !found {
		t.Fatalf("ORAMCP_TEST_META not in table list: %v", tables.Tables)
	}

	desc, err := engine.DescribeTable(ctx, oramcp.DescribeTableInput{Table: "oramcp_test_meta"})
	if err != nil {
		t.Fatalf("DescribeTable: %v", err)
	}
	if len(desc.Columns) != 2 {
		t.Fatalf("expected 2 columns, got %d", len(desc.Columns))
	}
	var idCol *oramcp.ColumnInfo
	for i := range desc.Columns {
		if desc.Columns[i].Name == "ID" {
			idCol = &desc.Columns[i]
		}
	}
	if idCol == nil || !idCol.IsPrimaryKey || idCol.Nullable {
		t.Fatalf("unexpected ID column: %+v", idCol)
	}
}

func TestIntegration_DescribeMissingTable(t *testing.T) {
	t.Parallel()
	engine := newTestInstance(t, defaultConfig())
	_, err := engine.DescribeTable(context.Background(), oramcp.DescribeTableInput{Table: "oramcp_definitely_missing"})
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("expected does-not-exist error, got %v", err)
	}
}

func TestIntegration_ListSchemas(t *testing.T) {
	t.Parallel()
	engine := newTestInstance(t, defaultConfig())
	output, err := engine.ListSchemas(context.Background())
	if err != nil {
		t.Fatalf("ListSchemas: %v", err)
	}
	for _, s := range output.Schemas {
		if s.Name == "SYS" || s.Name == "SYSTEM" {
			t.Fatalf("system schema %s leaked into listing", s.Name)
		}
	}
}

func TestIntegration_SchemaAllowListDenies(t *testing.T) {
	t.Parallel()
	config := defaultConfig()
	config.AllowedSchemas = []string{"ORAMCP_NOT_A_REAL_SCHEMA"}
	engine := newTestInstance(t, config)

	_, err := engine.ListTables(context.Background(), oramcp.ListTablesInput{Schema: "HR"})
	if err == nil || !strings.Contains(err.Error(), "not allowed") {
		t.Fatalf("expected schema denial, got %v", err)
	}
}

func TestIntegration_SchemaAllowListCaseInsensitive(t *testing.T) {
	t.Parallel()
	engine := newTestInstance(t, defaultConfig())
	user, ok := func() (string, bool) {
		output := engine.ExecuteReadOnly(context.Background(), oramcp.QueryInput{SQL: "SELECT USER FROM DUAL"})
		if output.Error != "" || len(output.Rows) == 0 {
			return "", false
		}
		s, ok := output.Rows[0]["USER"].(string)
		return s, ok
	}()
	if !ok {
		t.Fatal("could not resolve connected user")
	}

	config := defaultConfig()
	config.AllowedSchemas = []string{strings.ToLower(user)}
	scoped := newTestInstance(t, config)
	if _, err := scoped.ListTables(context.Background(), oramcp.ListTablesInput{Schema: user}); err != nil {
		t.Fatalf("expected case-insensitive allow-list match, got %v", err)
	}
}
