// Package errprompt appends agent guidance to recognizable database errors.
package errprompt

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule maps an error message pattern to a guidance message.
type Rule struct {
	Pattern string
	Message string
}

type compiledRule struct {
	pattern *regexp.Regexp
	message string
}

// Matcher checks error messages against patterns and returns guidance prompts.
type Matcher struct {
	rules []compiledRule
}

// defaultRules cover common ORA- error codes agents run into. Configured
// rules are evaluated first and may repeat or override this guidance.
var defaultRules = []Rule{
	{Pattern: `ORA-00942`, Message: "The table or view does not exist or is not visible to this user. Use list_tables to see what is available, and qualify the table with its schema."},
	{Pattern: `ORA-00904`, Message: "An identifier in the statement is invalid. Use describe_table to check the exact column names."},
	{Pattern: `ORA-01017`, Message: "The database rejected the configured credentials. This is a server configuration problem, not a query problem."},
	{Pattern: `ORA-00933|ORA-00936|ORA-00907`, Message: "The SQL statement is malformed for Oracle. Note that Oracle requires FROM DUAL for table-less SELECTs and does not accept a trailing semicolon."},
	{Pattern: `ORA-01013|timeout|context deadline exceeded`, Message: "The statement exceeded its time budget. Narrow the query or add a WHERE clause."},
}

// NewMatcher creates a Matcher from the configured rules followed by the
// built-in ORA- defaults. Returns an error on invalid regex patterns.
func NewMatcher(rules []Rule) (*Matcher, error) {
	all := make([]Rule, 0, len(rules)+len(defaultRules))
	all = append(all, rules...)
	all = append(all, defaultRules...)

	compiled := make([]compiledRule, len(all))
	for i, r := range all {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("errprompt: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, message: r.Message}
	}
	return &Matcher{rules: compiled}, nil
}

// Match checks the error message against all rules (top to bottom) and
// returns matching prompt messages joined with newlines. Empty string when
// nothing matches.
func (m *Matcher) Match(errMsg string) string {
	var matches []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			matches = append(matches, rule.message)
		}
	}
	return strings.Join(matches, "\n")
}

// MatchedPatterns returns the regex patterns that matched the given error
// message, for log fields. Nil when nothing matches.
func (m *Matcher) MatchedPatterns(errMsg string) []string {
	var patterns []string
	for _, rule := range m.rules {
		if rule.pattern.MatchString(errMsg) {
			patterns = append(patterns, rule.pattern.String())
		}
	}
	return patterns
}
