// Package timeout resolves per-statement execution deadlines.
package timeout

import (
	"fmt"
	"regexp"
	"time"
)

// Rule maps a SQL regex pattern to a specific timeout.
type Rule struct {
	Pattern string
	Timeout time.Duration
}

// Config is the timeout manager's own config type.
type Config struct {
	// DefaultTimeout applies when no rule matches. Required.
	DefaultTimeout time.Duration
	// MaxTimeout, when > 0, caps the timeout any rule can grant.
	MaxTimeout time.Duration
	Rules      []Rule
}

type compiledRule struct {
	pattern *regexp.Regexp
	timeout time.Duration
}

// Manager resolves statement timeouts based on SQL pattern matching.
type Manager struct {
	rules          []compiledRule
	defaultTimeout time.Duration
	maxTimeout     time.Duration
}

// NewManager creates a new Manager. Panics on invalid regex patterns.
func NewManager(config Config) *Manager {
	compiled := make([]compiledRule, len(config.Rules))
	for i, r := range config.Rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			panic(fmt.Sprintf("timeout: invalid regex pattern %q: %v", r.Pattern, err))
		}
		compiled[i] = compiledRule{pattern: re, timeout: r.Timeout}
	}
	return &Manager{
		rules:          compiled,
		defaultTimeout: config.DefaultTimeout,
		maxTimeout:     config.MaxTimeout,
	}
}

// Resolve returns the timeout for the given SQL and the pattern of the rule
// that granted it ("" when the default applied). First matching rule wins.
func (m *Manager) Resolve(sql string) (time.Duration, string) {
	for _, rule := range m.rules {
		if rule.pattern.MatchString(sql) {
			return m.clamp(rule.timeout), rule.pattern.String()
		}
	}
	return m.clamp(m.defaultTimeout), ""
}

func (m *Manager) clamp(d time.Duration) time.Duration {
	if m.maxTimeout > 0 && d > m.maxTimeout {
		return m.maxTimeout
	}
	return d
}
