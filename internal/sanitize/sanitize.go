// Package sanitize applies regex-based masking to result row values before
// they leave the server.
package sanitize

import (
	"fmt"
	"regexp"
)

// Rule is the sanitizer's own rule type.
type Rule struct {
	Pattern     string
	Replacement string
}

type compiledRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// Sanitizer applies the configured rules to every string value in a result
// set. Non-string scalars pass through untouched.
type Sanitizer struct {
	rules []compiledRule
}

// NewSanitizer creates a new Sanitizer. Returns an error on invalid regex
// patterns.
func NewSanitizer(rules []Rule) (*Sanitizer, error) {
	compiled := make([]compiledRule, len(rules))
	for i, r := range rules {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("sanitize: invalid regex pattern %q: %v", r.Pattern, err)
		}
		compiled[i] = compiledRule{pattern: re, replacement: r.Replacement}
	}
	return &Sanitizer{rules: compiled}, nil
}

// HasRules returns true if the sanitizer has any rules configured.
func (s *Sanitizer) HasRules() bool {
	return len(s.rules) > 0
}

// SanitizeRows rewrites each field value in place and returns rows.
func (s *Sanitizer) SanitizeRows(rows []map[string]any) []map[string]any {
	if len(s.rules) == 0 {
		return rows
	}
	for _, row := range rows {
		for k, v := range row {
			if str, ok := v.(string); ok {
				row[k] = s.sanitizeString(str)
			}
		}
	}
	return rows
}

func (s *Sanitizer) sanitizeString(v string) string {
	for _, rule := range s.rules {
		v = rule.pattern.ReplaceAllString(v, rule.replacement)
	}
	return v
}
