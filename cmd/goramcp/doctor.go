package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"regexp"

	oramcp "github.com/rickchristie/oracle-mcp"
	"github.com/rickchristie/oracle-mcp/internal/policy"
)

func runDoctor() error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	configPath := fs.String("config", ".goramcp/config.json", "Path to configuration file")
	fs.Parse(os.Args[2:])

	useColor := isTTY(os.Stderr.Fd())
	return doctor(os.Stderr, useColor, *configPath)
}

func doctor(w io.Writer, useColor bool, configPath string) error {
	printBanner(w, useColor)
	fmt.Fprintf(w, "goramcp %s\n\n", version)

	config, ok := doctorValidateConfig(w, useColor, configPath)
	if !ok {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Fix the issues above and run 'goramcp doctor' again.")
		return nil
	}

	fmt.Fprintln(w)
	printAgentSnippets(w, useColor, config)
	return nil
}

// doctorValidateConfig loads and validates the config file, printing check
// results. Returns the parsed config and true if all checks passed.
func doctorValidateConfig(w io.Writer, useColor bool, configPath string) (*oramcp.ServerConfig, bool) {
	allPassed := true

	// Check 1: Config file exists and is valid JSON
	data, err := os.ReadFile(configPath)
	if err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file readable (%s)", configPath))
		return nil, false
	}
	printCheck(w, useColor, true, fmt.Sprintf("Config file readable (%s)", configPath))

	var config oramcp.ServerConfig
	if err := json.Unmarshal(data, &config); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("Config file is valid JSON: %v", err))
		return nil, false
	}
	printCheck(w, useColor, true, "Config file is valid JSON")

	// Check 2: exactly one of service_name / sid
	switch {
	case config.Connection.ServiceName == "" && config.Connection.SID == "":
		printCheck(w, useColor, false, "one of connection.service_name or connection.sid is set")
		allPassed = false
	case config.Connection.ServiceName != "" && config.Connection.SID != "":
		printCheck(w, useColor, false, "connection.service_name and connection.sid are mutually exclusive")
		allPassed = false
	default:
		printCheck(w, useColor, true, "connection identifier is set (service_name or sid)")
	}

	// Check 3: host and port
	if config.Connection.Host == "" {
		printCheck(w, useColor, false, "connection.host is set")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("connection.host is set (%s)", config.Connection.Host))
	}
	if config.Connection.Port <= 0 {
		printCheck(w, useColor, false, "connection.port is > 0")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("connection.port is > 0 (%d)", config.Connection.Port))
	}

	// Check 4: security mode parses
	mode := config.SecurityMode
	if mode == "" {
		mode = string(policy.ReadOnly)
	}
	if _, err := policy.ParseMode(mode); err != nil {
		printCheck(w, useColor, false, fmt.Sprintf("security_mode is valid: %v", err))
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("security_mode is valid (%s)", mode))
	}

	// Check 5: timeouts
	if config.Query.DefaultTimeoutSeconds <= 0 {
		printCheck(w, useColor, false, "query.default_timeout_seconds is > 0")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("query.default_timeout_seconds is > 0 (%d)", config.Query.DefaultTimeoutSeconds))
	}
	if config.Query.IntrospectionTimeoutSeconds <= 0 {
		printCheck(w, useColor, false, "query.introspection_timeout_seconds is > 0")
		allPassed = false
	} else {
		printCheck(w, useColor, true, fmt.Sprintf("query.introspection_timeout_seconds is > 0 (%d)", config.Query.IntrospectionTimeoutSeconds))
	}

	// Check 6: health check path set when enabled
	if config.Server.HealthCheckEnabled {
		if config.Server.HealthCheckPath == "" {
			printCheck(w, useColor, false, "health_check_path is set (required when health_check_enabled)")
			allPassed = false
		} else {
			printCheck(w, useColor, true, fmt.Sprintf("health_check_path is set (%s)", config.Server.HealthCheckPath))
		}
	}

	// Check 7: regex patterns compile
	regexOK := true
	for i, rule := range config.ErrorPrompts {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("error_prompts[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	for i, rule := range config.Sanitization {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("sanitization[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	for i, rule := range config.Query.TimeoutRules {
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			printCheck(w, useColor, false, fmt.Sprintf("timeout_rules[%d] regex compiles: %v", i, err))
			regexOK = false
			allPassed = false
		}
	}
	if regexOK {
		printCheck(w, useColor, true, "All regex patterns compile")
	}

	return &config, allPassed
}

// printCheck prints a colored ✓ or ✗ check line.
func printCheck(w io.Writer, useColor bool, pass bool, msg string) {
	if pass {
		if useColor {
			fmt.Fprintf(w, "  \033[32m✓\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✓ %s\n", msg)
		}
	} else {
		if useColor {
			fmt.Fprintf(w, "  \033[31m✗\033[0m %s\n", msg)
		} else {
			fmt.Fprintf(w, "  ✗ %s\n", msg)
		}
	}
}

// printAgentSnippets prints MCP connection config snippets for various AI
// agents. Stdio mode (no port) gets a command-based snippet, HTTP mode a
// URL-based one.
func printAgentSnippets(w io.Writer, useColor bool, config *oramcp.ServerConfig) {
	heading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "\033[1;33m%s\033[0m\n", title)
		} else {
			fmt.Fprintln(w, title)
		}
	}
	subheading := func(title string) {
		if useColor {
			fmt.Fprintf(w, "  \033[1m%s\033[0m\n", title)
		} else {
			fmt.Fprintf(w, "  %s\n", title)
		}
	}

	heading("Agent Connection Snippets")
	fmt.Fprintln(w)

	if config.Server.Port <= 0 {
		subheading("Cursor / Claude Code (stdio, .cursor/mcp.json or .mcp.json)")
		fmt.Fprintf(w, `  {
    "mcpServers": {
      "oracle": {
        "command": "goramcp",
        "args": ["serve"],
        "env": {
          "GORAMCP_CONFIG_PATH": "%s",
          "ORACLE_USERNAME": "<user>",
          "ORACLE_PASSWORD": "<password>"
        }
      }
    }
  }
`, ".goramcp/config.json")
		fmt.Fprintln(w)
		return
	}

	url := fmt.Sprintf("http://localhost:%d/mcp", config.Server.Port)

	subheading("Claude Code")
	fmt.Fprintf(w, "  Run this command to add the server:\n\n")
	fmt.Fprintf(w, "    claude mcp add --transport http oracle %s\n\n", url)
	fmt.Fprintf(w, "  Or add to .mcp.json (project scope):\n\n")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "oracle": {
        "type": "http",
        "url": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	subheading("Cursor (.cursor/mcp.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "oracle": {
        "url": "%s"
      }
    }
  }
`, url)
	fmt.Fprintln(w)

	subheading("Gemini CLI (~/.gemini/settings.json)")
	fmt.Fprintf(w, `  {
    "mcpServers": {
      "oracle": {
        "httpUrl": "%s"
      }
    }
  }
`, url)
}
