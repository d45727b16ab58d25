// Package oramcp provides safe, controlled Oracle database access for AI
// agents through the Model Context Protocol (MCP).
//
// It exposes query, introspection, and documentation tools behind a tiered
// security policy. Every statement is classified by its leading keyword
// (read-only, write, dangerous, unrecognized) and checked against the
// configured security mode before any I/O happens:
//
//   - read_only permits only SELECT, WITH, DESC, DESCRIBE, and EXPLAIN, and
//     additionally scans SELECTs for embedded mutating sub-clauses.
//   - limited_write adds INSERT, UPDATE, and MERGE, and rejects any statement
//     carrying a dangerous keyword anywhere in its text.
//   - full_access disables all guardrails.
//
// The classifier is a heuristic string pass over untrusted input, not a SQL
// parser: it does not build an AST and cannot see through every vendor
// extension. Treat it as defense in depth on top of database-level grants,
// never as a replacement for them.
//
// Introspection tools (list_tables, describe_table, list_schemas) run on a
// forced-readonly execution path that ignores the configured security mode,
// and enforce the schema access policy (allow-list, wildcard, or
// auto-discovery) before issuing catalog SQL.
//
// # Library Usage
//
//	engine, err := oramcp.New(ctx, connString, oramcp.Config{
//		SecurityMode:   "read_only",
//		AllowedSchemas: []string{"HR"},
//		Query: oramcp.QueryConfig{
//			DefaultTimeoutSeconds:       60,
//			IntrospectionTimeoutSeconds: 10,
//		},
//	}, logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer engine.Close(ctx)
//
//	// Use directly
//	output := engine.Execute(ctx, oramcp.QueryInput{SQL: "SELECT * FROM employees WHERE ROWNUM <= 10"})
//
//	// Or register as MCP tools
//	docGen := oramcp.NewDocumentGenerator(engine, "docs", logger)
//	oramcp.RegisterMCPTools(mcpServer, engine, docGen)
//
// Each call runs on its own database session, acquired fresh and released on
// every exit path. There is no cross-call session reuse and no shared
// mutable state beyond the immutable configuration.
package oramcp
