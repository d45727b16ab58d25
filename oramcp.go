package oramcp

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "github.com/sijms/go-ora/v2"

	"github.com/rickchristie/oracle-mcp/internal/errprompt"
	"github.com/rickchristie/oracle-mcp/internal/policy"
	"github.com/rickchristie/oracle-mcp/internal/sanitize"
	"github.com/rickchristie/oracle-mcp/internal/timeout"
)

// OracleMcp is the core engine that provides ExecuteQuery, ListTables,
// ListSchemas, and DescribeTable tools. All exported methods are safe for
// concurrent use from multiple goroutines: the only shared state is the
// immutable configuration and the database handle, and every call runs on
// its own session.
type OracleMcp struct {
	config     Config
	guard      policy.Guard
	schemaMode SchemaAccessMode
	db         *sql.DB
	sanitizer  *sanitize.Sanitizer
	errPrompts *errprompt.Matcher
	timeoutMgr *timeout.Manager
	logger     zerolog.Logger

	userMu   sync.Mutex
	userName string // connected user, resolved lazily; default schema
}

// New creates a new OracleMcp instance.
// connString is the go-ora connection URL (must include credentials). The
// CLI is responsible for building it from ConnectionConfig plus prompted
// credentials; the engine never constructs DSNs.
// Panics on invalid config. Returns error only for runtime failures.
func New(ctx context.Context, connString string, config Config, logger zerolog.Logger) (*OracleMcp, error) {
	// --- Config validation (panics on invalid config) ---

	if connString == "" {
		panic("oramcp: connString must be non-empty")
	}

	if config.SecurityMode == "" {
		config.SecurityMode = string(policy.ReadOnly)
	}
	mode, err := policy.ParseMode(config.SecurityMode)
	if err != nil {
		panic(fmt.Sprintf("oramcp: %v", err))
	}

	if len(config.AllowedSchemas) == 0 {
		config.AllowedSchemas = []string{"*"}
	}
	for _, s := range config.AllowedSchemas {
		if strings.TrimSpace(s) == "" {
			panic("oramcp: allowed_schemas must not contain empty entries")
		}
	}

	if config.Query.DefaultTimeoutSeconds <= 0 {
		panic("oramcp: query.default_timeout_seconds must be > 0")
	}
	if config.Query.IntrospectionTimeoutSeconds <= 0 {
		panic("oramcp: query.introspection_timeout_seconds must be > 0")
	}
	if config.Query.MaxTimeoutSeconds < 0 {
		panic("oramcp: query.max_timeout_seconds must be >= 0")
	}
	if config.Query.MaxSQLLength == 0 {
		config.Query.MaxSQLLength = 100000
	}
	if config.Query.MaxSQLLength < 0 {
		panic("oramcp: query.max_sql_length must be > 0")
	}
	if config.Query.MaxResultRows == 0 {
		config.Query.MaxResultRows = 1000
	}
	if config.Query.MaxResultRows < 0 {
		panic("oramcp: query.max_result_rows must be > 0")
	}
	if config.Query.MaxConnectRetries < 0 {
		panic("oramcp: query.max_connect_retries must be >= 0")
	}
	for _, rule := range config.Query.TimeoutRules {
		if rule.TimeoutSeconds <= 0 {
			panic(fmt.Sprintf("oramcp: timeout_rule with pattern %q has timeout_seconds <= 0", rule.Pattern))
		}
	}

	// --- Initialize internal components ---

	san, err := sanitize.NewSanitizer(mapSanitizationRules(config.Sanitization))
	if err != nil {
		panic(fmt.Sprintf("oramcp: %v", err))
	}
	matcher, err := errprompt.NewMatcher(mapErrorPromptRules(config.ErrorPrompts))
	if err != nil {
		panic(fmt.Sprintf("oramcp: %v", err))
	}

	timeoutRules := make([]timeout.Rule, len(config.Query.TimeoutRules))
	for i, r := range config.Query.TimeoutRules {
		timeoutRules[i] = timeout.Rule{
			Pattern: r.Pattern,
			Timeout: time.Duration(r.TimeoutSeconds) * time.Second,
		}
	}
	tmgr := timeout.NewManager(timeout.Config{
		DefaultTimeout: time.Duration(config.Query.DefaultTimeoutSeconds) * time.Second,
		MaxTimeout:     time.Duration(config.Query.MaxTimeoutSeconds) * time.Second,
		Rules:          timeoutRules,
	})

	// --- Open database handle ---

	db, err := sql.Open("oracle", connString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database handle: %w", err)
	}
	// Every call runs on a fresh session with guaranteed release; idle
	// sessions are not kept across calls.
	db.SetMaxIdleConns(0)

	logger.Info().
		Str("security_mode", string(mode)).
		Str("schema_access_mode", string(config.SchemaAccessMode())).
		Msg("oracle-mcp engine initialized")

	return &OracleMcp{
		config:     config,
		guard:      policy.ForMode(mode),
		schemaMode: config.SchemaAccessMode(),
		db:         db,
		sanitizer:  san,
		errPrompts: matcher,
		timeoutMgr: tmgr,
		logger:     logger,
	}, nil
}

// Close closes the database handle. Accepts context for API
// forward-compatibility; sql.DB.Close does not support context-based
// shutdown.
func (o *OracleMcp) Close(ctx context.Context) {
	o.db.Close()
}

// Ping verifies connectivity with a forced-readonly SELECT 1 FROM DUAL.
func (o *OracleMcp) Ping(ctx context.Context) error {
	output := o.ExecuteReadOnly(ctx, QueryInput{SQL: "SELECT 1 FROM DUAL"})
	if output.Error != "" {
		return fmt.Errorf("connection test failed: %s", output.Error)
	}
	if len(output.Rows) == 0 {
		return fmt.Errorf("connection test failed: no row returned")
	}
	return nil
}

// SecurityInfo reports the active security configuration. It never includes
// credentials.
func (o *OracleMcp) SecurityInfo() SecurityInfo {
	mode := o.guard.Mode()
	return SecurityInfo{
		SecurityMode:     string(mode),
		AllowedSchemas:   o.config.AllowedSchemas,
		SchemaAccessMode: string(o.schemaMode),
		WriteAllowed:     mode == policy.LimitedWrite || mode == policy.FullAccess,
		DangerousAllowed: mode == policy.FullAccess,
		MaxResultRows:    o.config.Query.MaxResultRows,
		QueryLogEnabled:  o.config.EnableQueryLog,
	}
}

// currentUser resolves the connected user name, the default schema for
// introspection calls. Resolved once on first use; retried on failure.
func (o *OracleMcp) currentUser(ctx context.Context) (string, error) {
	o.userMu.Lock()
	defer o.userMu.Unlock()
	if o.userName != "" {
		return o.userName, nil
	}

	output := o.ExecuteReadOnly(ctx, QueryInput{SQL: "SELECT USER FROM DUAL"})
	if output.Error != "" {
		return "", fmt.Errorf("failed to resolve current user: %s", output.Error)
	}
	if len(output.Rows) == 0 || len(output.Columns) == 0 {
		return "", fmt.Errorf("failed to resolve current user: no row returned")
	}
	name, ok := output.Rows[0][output.Columns[0]].(string)
	if !ok || name == "" {
		return "", fmt.Errorf("failed to resolve current user: unexpected result %v", output.Rows[0])
	}
	o.userName = strings.ToUpper(name)
	return o.userName, nil
}

// mapSanitizationRules converts oramcp SanitizationRules to internal
// sanitize.Rules.
func mapSanitizationRules(rules []SanitizationRule) []sanitize.Rule {
	result := make([]sanitize.Rule, len(rules))
	for i, r := range rules {
		result[i] = sanitize.Rule{
			Pattern:     r.Pattern,
			Replacement: r.Replacement,
		}
	}
	return result
}

// mapErrorPromptRules converts oramcp ErrorPromptRules to internal
// errprompt.Rules.
func mapErrorPromptRules(rules []ErrorPromptRule) []errprompt.Rule {
	result := make([]errprompt.Rule, len(rules))
	for i, r := range rules {
		result[i] = errprompt.Rule{
			Pattern: r.Pattern,
			Message: r.Message,
		}
	}
	return result
}
