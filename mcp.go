package oramcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the engine's tools and schema resources on the
// given MCP server. The engine and document generator are injected here; no
// package-level state is involved.
func RegisterMCPTools(mcpServer *server.MCPServer, engine *OracleMcp, docGen *DocumentGenerator) {
	// ExecuteQuery tool
	queryTool := mcp.NewTool("execute_query",
		mcp.WithDescription("Execute a SQL statement against the Oracle database. Operations are restricted by the configured security mode. Returns results as JSON."),
		mcp.WithString("sql",
			mcp.Required(),
			mcp.Description("The SQL statement to execute"),
		),
		mcp.WithArray("params",
			mcp.Description("Positional bind values for :1, :2, ... placeholders"),
		),
	)

	mcpServer.AddTool(queryTool, engine.loggedToolHandler("execute_query", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sqlText, err := req.RequireString("sql")
		if err != nil {
			return mcp.NewToolResultError("sql parameter is required"), nil
		}
		var params []any
		if raw, ok := req.GetArguments()["params"].([]any); ok {
			params = raw
		}
		output := engine.Execute(ctx, QueryInput{SQL: sqlText, Params: params})
		if output.Error != "" {
			return mcp.NewToolResultError(output.Error), nil
		}
		return marshalToolResult(output, "failed to marshal query result")
	}))

	// ListTables tool
	listTablesTool := mcp.NewTool("list_tables",
		mcp.WithDescription("List all tables in a schema. Defaults to the connected user's schema."),
		mcp.WithString("schema",
			mcp.Description("The schema name (defaults to the connected user)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listTablesTool, engine.loggedToolHandler("list_tables", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		output, err := engine.ListTables(ctx, ListTablesInput{Schema: req.GetString("schema", "")})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal list tables result")
	}))

	// ListSchemas tool
	listSchemasTool := mcp.NewTool("list_schemas",
		mcp.WithDescription("List all schemas the connected user can access, with table counts."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(listSchemasTool, engine.loggedToolHandler("list_schemas", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		output, err := engine.ListSchemas(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal list schemas result")
	}))

	// DescribeTable tool
	describeTableTool := mcp.NewTool("describe_table",
		mcp.WithDescription("Describe the structure of a table including columns, types, indexes, and constraints."),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("The table name to describe"),
		),
		mcp.WithString("schema",
			mcp.Description("The schema name (defaults to the connected user)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(describeTableTool, engine.loggedToolHandler("describe_table", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := req.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError("table parameter is required"), nil
		}
		output, err := engine.DescribeTable(ctx, DescribeTableInput{Table: table, Schema: req.GetString("schema", "")})
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return marshalToolResult(output, "failed to marshal describe table result")
	}))

	// TestConnection tool
	testConnectionTool := mcp.NewTool("test_connection",
		mcp.WithDescription("Test connectivity to the Oracle database."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(testConnectionTool, engine.loggedToolHandler("test_connection", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if err := engine.Ping(ctx); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText("connection test successful"), nil
	}))

	// SecurityInfo tool
	securityInfoTool := mcp.NewTool("get_security_info",
		mcp.WithDescription("Report the active security configuration: security mode, schema access policy, and result limits."),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(securityInfoTool, engine.loggedToolHandler("get_security_info", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return marshalToolResult(engine.SecurityInfo(), "failed to marshal security info")
	}))

	// GenerateTableDoc tool
	generateTableDocTool := mcp.NewTool("generate_table_doc",
		mcp.WithDescription("Generate a table structure document and save it to the docs directory. Supports markdown, json, and sql formats."),
		mcp.WithString("table",
			mcp.Required(),
			mcp.Description("The table name to document"),
		),
		mcp.WithString("schema",
			mcp.Description("The schema name (defaults to the connected user)"),
		),
		mcp.WithString("format",
			mcp.Description("Document format: markdown, json, or sql (defaults to markdown)"),
			mcp.Enum(FormatMarkdown, FormatJSON, FormatSQL),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(generateTableDocTool, engine.loggedToolHandler("generate_table_doc", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		table, err := req.RequireString("table")
		if err != nil {
			return mcp.NewToolResultError("table parameter is required"), nil
		}
		schema := req.GetString("schema", "")
		format := req.GetString("format", FormatMarkdown)

		content, err := docGen.GenerateTableDoc(ctx, table, schema, format)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filename := docGen.DocumentFilename(schemaOrUser(ctx, engine, schema), table, format)
		path, err := docGen.SaveDocument(content, filename)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("document saved to %s\n\n%s", path, clip(content, 500))), nil
	}))

	// GenerateDatabaseOverview tool
	generateOverviewTool := mcp.NewTool("generate_database_overview",
		mcp.WithDescription("Generate a schema overview document and save it as Markdown to the docs directory."),
		mcp.WithString("schema",
			mcp.Description("The schema name (defaults to the connected user)"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	mcpServer.AddTool(generateOverviewTool, engine.loggedToolHandler("generate_database_overview", func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		schema := req.GetString("schema", "")
		content, err := docGen.GenerateDatabaseOverview(ctx, schema)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		filename := docGen.DocumentFilename(schemaOrUser(ctx, engine, schema), "overview", FormatMarkdown)
		path, err := docGen.SaveDocument(content, filename)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("document saved to %s\n\n%s", path, clip(content, 500))), nil
	}))

	registerResources(mcpServer, engine, docGen)
}

// registerResources exposes the schema overview and table list as MCP
// resources.
func registerResources(mcpServer *server.MCPServer, engine *OracleMcp, docGen *DocumentGenerator) {
	overviewResource := mcp.NewResource("oracle://schema/overview", "Schema overview",
		mcp.WithResourceDescription("Markdown overview of the connected user's schema, including all tables"),
		mcp.WithMIMEType("text/markdown"),
	)
	mcpServer.AddResource(overviewResource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		content, err := docGen.GenerateDatabaseOverview(ctx, "")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "text/markdown",
			Text:     content,
		}}, nil
	})

	tablesResource := mcp.NewResource("oracle://schema/tables", "Schema table list",
		mcp.WithResourceDescription("JSON list of all tables in the connected user's schema"),
		mcp.WithMIMEType("application/json"),
	)
	mcpServer.AddResource(tablesResource, func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		output, err := engine.ListTables(ctx, ListTablesInput{})
		if err != nil {
			return nil, err
		}
		b, err := json.MarshalIndent(output, "", "  ")
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		}}, nil
	})
}

// loggedToolHandler wraps a tool handler to log request and response lengths.
func (o *OracleMcp) loggedToolHandler(tool string, handler server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		reqLen := requestLength(req)
		result, err := handler(ctx, req)
		respLen := resultLength(result)
		o.logger.Info().
			Str("tool", tool).
			Int("request_bytes", reqLen).
			Int("response_bytes", respLen).
			Msg("tool call")
		return result, err
	}
}

// schemaOrUser returns the explicit schema or the connected user's name for
// document filenames. Falls back to "SCHEMA" when the user cannot be
// resolved; the document content itself carries the real name.
func schemaOrUser(ctx context.Context, engine *OracleMcp, schema string) string {
	if schema != "" {
		return schema
	}
	user, err := engine.currentUser(ctx)
	if err != nil {
		return "SCHEMA"
	}
	return user
}

func marshalToolResult(v any, errMsg string) (*mcp.CallToolResult, error) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(errMsg), nil
	}
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

// requestLength returns the JSON-encoded byte length of the request
// arguments.
func requestLength(req mcp.CallToolRequest) int {
	args := req.GetArguments()
	if len(args) == 0 {
		return 0
	}
	b, err := json.Marshal(args)
	if err != nil {
		return 0
	}
	return len(b)
}

// resultLength returns the total byte length of text content in a
// CallToolResult.
func resultLength(result *mcp.CallToolResult) int {
	if result == nil {
		return 0
	}
	total := 0
	for _, c := range result.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			total += len(tc.Text)
		}
	}
	return total
}
