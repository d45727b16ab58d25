package oramcp_test

import (
	"context"
	"os"
	"testing"

	oramcp "github.com/rickchristie/oracle-mcp"
	"github.com/rs/zerolog"
)

// testConnStringEnv names the env variable carrying a go-ora connection URL
// for a disposable test database. Integration tests skip when it is unset.
const testConnStringEnv = "ORAMCP_TEST_CONNSTRING"

func acquireTestDB(t *testing.T) string {
	t.Helper()
	connStr := os.Getenv(testConnStringEnv)
	if connStr == "" {
		t.Skipf("%s not set, skipping integration test", testConnStringEnv)
	}
	return connStr
}

func testLogger() zerolog.Logger {
	return zerolog.New(os.Stderr).Level(zerolog.Disabled)
}

func defaultConfig() oramcp.Config {
	return oramcp.Config{
		Query: oramcp.QueryConfig{
			DefaultTimeoutSeconds:       30,
			IntrospectionTimeoutSeconds: 10,
			MaxSQLLength:                100000,
			MaxResultRows:               1000,
		},
	}
}

func newTestInstance(t *testing.T, config oramcp.Config) *oramcp.OracleMcp {
	t.Helper()
	connStr := acquireTestDB(t)
	ctx := context.Background()
	engine, err := oramcp.New(ctx, connStr, config, testLogger())
	if err != nil {
		t.Fatalf("failed to create OracleMcp: %v", err)
	}
	t.Cleanup(func() { engine.Close(ctx) })
	return engine
}

// newOfflineInstance creates an engine over a dummy connection string.
// sql.Open defers connecting, so tests that never touch the database can use
// this without a live Oracle.
func newOfflineInstance(t *testing.T, config oramcp.Config) *oramcp.OracleMcp {
	t.Helper()
	ctx := context.Background()
	engine, err := oramcp.New(ctx, dummyConnString, config, testLogger())
	if err != nil {
		t.Fatalf("failed to create OracleMcp: %v", err)
	}
	t.Cleanup(func() { engine.Close(ctx) })
	return engine
}

func setupTable(t *testing.T, engine *oramcp.OracleMcp, sql string) {
	t.Helper()
	output := engine.Execute(context.Background(), oramcp.QueryInput{SQL: sql})
	if output.Error != "" {
		t.Fatalf("setup failed: %s", output.Error)
	}
}

// dropTableIfExists removes leftovers from earlier runs; ORA-00942 is fine.
func dropTableIfExists(t *testing.T, engine *oramcp.OracleMcp, table string) {
	t.Helper()
	engine.Execute(context.Background(), oramcp.QueryInput{SQL: "DROP TABLE " + table + " PURGE"})
}
