package oramcp

// Config is the base configuration used by library mode via New().
type Config struct {
	// SecurityMode is one of "read_only", "limited_write", "full_access".
	// Immutable for the process lifetime; drives every permission decision.
	SecurityMode string `json:"security_mode"`
	// AllowedSchemas governs which schema names are reachable: "*" allows
	// every schema, "auto" probes the catalog per request, and any other
	// entries form an explicit allow-list.
	AllowedSchemas []string           `json:"allowed_schemas"`
	Query          QueryConfig        `json:"query"`
	ErrorPrompts   []ErrorPromptRule  `json:"error_prompts"`
	Sanitization   []SanitizationRule `json:"sanitization"`
	EnableQueryLog bool               `json:"enable_query_log"`
}

// ServerConfig embeds Config and adds server-only fields for CLI mode.
type ServerConfig struct {
	Config
	Connection ConnectionConfig `json:"connection"`
	Server     ServerSettings   `json:"server"`
	Logging    LoggingConfig    `json:"logging"`
}

// ConnectionConfig holds connection parameters used by CLI mode to build the
// go-ora connection URL. Exactly one of ServiceName and SID must be set.
type ConnectionConfig struct {
	Host                  string `json:"host"`
	Port                  int    `json:"port"`
	ServiceName           string `json:"service_name"`
	SID                   string `json:"sid"`
	Encoding              string `json:"encoding"`
	ConnectTimeoutSeconds int    `json:"connect_timeout_seconds"`
}

// ServerSettings holds transport settings for CLI mode. With Port == 0 the
// server speaks MCP over stdio; with Port > 0 it serves streamable HTTP.
type ServerSettings struct {
	Port               int    `json:"port"`
	HealthCheckEnabled bool   `json:"health_check_enabled"`
	HealthCheckPath    string `json:"health_check_path"`
}

// LoggingConfig holds logging settings for CLI mode.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
	Output string `json:"output"` // stderr, stdout, or file path
}

// QueryConfig holds query execution settings.
type QueryConfig struct {
	DefaultTimeoutSeconds       int           `json:"default_timeout_seconds"`
	IntrospectionTimeoutSeconds int           `json:"introspection_timeout_seconds"`
	MaxTimeoutSeconds           int           `json:"max_timeout_seconds"`
	MaxSQLLength                int           `json:"max_sql_length"`
	MaxResultRows               int           `json:"max_result_rows"`
	MaxConnectRetries           int           `json:"max_connect_retries"`
	TimeoutRules                []TimeoutRule `json:"timeout_rules"`
}

// TimeoutRule maps a SQL pattern to a specific timeout duration.
type TimeoutRule struct {
	Pattern        string `json:"pattern"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// ErrorPromptRule maps an error message pattern to a guidance message.
type ErrorPromptRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// SanitizationRule defines a regex-based field sanitization rule.
type SanitizationRule struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
	Description string `json:"description"`
}

// SchemaAccessMode is the configured regime governing schema reachability,
// derived once from AllowedSchemas.
type SchemaAccessMode string

const (
	// SchemaAllowAll permits any schema name ("*" configured).
	SchemaAllowAll SchemaAccessMode = "allow_all"
	// SchemaAutoDiscover probes the catalog per requested name ("auto").
	SchemaAutoDiscover SchemaAccessMode = "auto_discover"
	// SchemaAllowList permits only explicitly configured names.
	SchemaAllowList SchemaAccessMode = "allow_list"
)

// SchemaAccessMode derives the active regime from AllowedSchemas. Exactly
// one mode is active at a time; the wildcard wins over the auto marker when
// both are present.
func (c Config) SchemaAccessMode() SchemaAccessMode {
	for _, s := range c.AllowedSchemas {
		if s == "*" {
			return SchemaAllowAll
		}
	}
	for _, s := range c.AllowedSchemas {
		if s == "auto" {
			return SchemaAutoDiscover
		}
	}
	return SchemaAllowList
}
