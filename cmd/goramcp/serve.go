package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	oramcp "github.com/rickchristie/oracle-mcp"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	go_ora "github.com/sijms/go-ora/v2"
	"golang.org/x/term"
)

func runServe() error {
	ctx := context.Background()

	// 1. Load ServerConfig
	serverConfig, err := loadServerConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// 2. Resolve connection string. The engine never constructs DSNs; this
	// is the only place the go-ora URL is built.
	connString := os.Getenv("GORAMCP_CONNSTRING")
	if connString == "" {
		connString, err = buildConnString(serverConfig.Connection)
		if err != nil {
			return err
		}
	}

	// 3. Setup logger
	logger := setupLogger(serverConfig.Logging)

	// 4. Create the engine and document generator
	engine, err := oramcp.New(ctx, connString, serverConfig.Config, logger)
	if err != nil {
		return fmt.Errorf("failed to create engine: %w", err)
	}
	defer engine.Close(ctx)

	docGen := oramcp.NewDocumentGenerator(engine, os.Getenv("GORAMCP_DOCS_DIR"), logger)

	// 5. Test database connection
	logger.Info().Msg("testing database connection")
	if err := engine.Ping(ctx); err != nil {
		logger.Error().Err(err).Msg("database connection test failed")
		return fmt.Errorf("database connection test failed: %w", err)
	}
	logger.Info().Msg("database connection test successful")

	// 6. Create MCP server with initialize lifecycle logging
	hooks := &server.Hooks{}
	hooks.AddAfterInitialize(func(ctx context.Context, id any, req *mcp.InitializeRequest, result *mcp.InitializeResult) {
		logger.Info().
			Str("client_name", req.Params.ClientInfo.Name).
			Str("client_version", req.Params.ClientInfo.Version).
			Msg("AI agent connected (MCP initialize)")
	})

	mcpServer := server.NewMCPServer("goramcp", version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithHooks(hooks),
	)

	oramcp.RegisterMCPTools(mcpServer, engine, docGen)

	// 7. Serve. With no port configured the server speaks MCP over stdio
	// (IDE integrations); with a port it serves streamable HTTP.
	if serverConfig.Server.Port <= 0 {
		logger.Info().Msg("starting goramcp server on stdio")
		return server.ServeStdio(mcpServer)
	}

	addr := fmt.Sprintf(":%d", serverConfig.Server.Port)
	mux := http.NewServeMux()

	// Health check endpoint (process liveness only, not DB connectivity)
	if serverConfig.Server.HealthCheckEnabled {
		if serverConfig.Server.HealthCheckPath == "" {
			return fmt.Errorf("health_check_path must be set when health_check_enabled is true")
		}
		mux.HandleFunc(serverConfig.Server.HealthCheckPath, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})
	}

	httpSrv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	streamableServer := server.NewStreamableHTTPServer(mcpServer,
		server.WithEndpointPath("/mcp"),
		server.WithStateLess(true),
		server.WithStreamableHTTPServer(httpSrv),
	)

	// Manually register the MCP handler. Start() does NOT register it
	// when a custom *http.Server is provided via WithStreamableHTTPServer.
	mux.Handle("/mcp", streamableServer)

	logger.Info().Int("port", serverConfig.Server.Port).Msg("starting goramcp server")
	return streamableServer.Start(addr)
}

func loadServerConfig() (*oramcp.ServerConfig, error) {
	configPath := os.Getenv("GORAMCP_CONFIG_PATH")
	if configPath == "" {
		configPath = ".goramcp/config.json"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config oramcp.ServerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// buildConnString resolves credentials and builds the go-ora connection URL
// from the connection parameter bundle. Exactly one of service_name and sid
// must be configured.
func buildConnString(conn oramcp.ConnectionConfig) (string, error) {
	if conn.Host == "" {
		return "", fmt.Errorf("connection.host must be set")
	}
	if conn.Port <= 0 {
		return "", fmt.Errorf("connection.port must be > 0")
	}
	if conn.ServiceName == "" && conn.SID == "" {
		return "", fmt.Errorf("one of connection.service_name or connection.sid must be set")
	}
	if conn.ServiceName != "" && conn.SID != "" {
		return "", fmt.Errorf("connection.service_name and connection.sid are mutually exclusive")
	}

	username := os.Getenv("ORACLE_USERNAME")
	if username == "" {
		username = promptInput("Username: ")
	}
	password := os.Getenv("ORACLE_PASSWORD")
	if password == "" {
		password = promptPassword("Password: ")
	}

	options := map[string]string{}
	if conn.SID != "" {
		options["SID"] = conn.SID
	}
	if conn.ConnectTimeoutSeconds > 0 {
		options["TIMEOUT"] = fmt.Sprintf("%d", conn.ConnectTimeoutSeconds)
	}
	// conn.Encoding is accepted for config compatibility; go-ora negotiates
	// AL32UTF8 with the server itself.

	return go_ora.BuildUrl(conn.Host, conn.Port, conn.ServiceName, username, password, options), nil
}

func setupLogger(config oramcp.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	var output io.Writer = os.Stderr
	if config.Output == "stdout" {
		output = os.Stdout
	} else if config.Output != "" && config.Output != "stderr" {
		f, err := os.OpenFile(config.Output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			output = f
		}
	}

	if config.Format == "text" {
		output = zerolog.ConsoleWriter{Out: output}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

func promptInput(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	var input string
	fmt.Scanln(&input)
	return input
}

func promptPassword(prompt string) string {
	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr) // newline after password input
	if err != nil {
		return ""
	}
	return string(password)
}
