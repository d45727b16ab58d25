package errprompt

import (
	"strings"
	"testing"
)

func TestMatch_DefaultTableNotFound(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	prompt := m.Match(`ORA-00942: table or view does not exist`)
	if !strings.Contains(prompt, "list_tables") {
		t.Fatalf("expected list_tables guidance, got %q", prompt)
	}
}

func TestMatch_DefaultInvalidIdentifier(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	prompt := m.Match(`ORA-00904: "SALLARY": invalid identifier`)
	if !strings.Contains(prompt, "describe_table") {
		t.Fatalf("expected describe_table guidance, got %q", prompt)
	}
}

func TestMatch_DefaultTimeout(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	for _, msg := range []string{
		"ORA-01013: user requested cancel of current operation",
		"context deadline exceeded",
	} {
		if prompt := m.Match(msg); !strings.Contains(prompt, "time budget") {
			t.Fatalf("expected timeout guidance for %q, got %q", msg, prompt)
		}
	}
}

func TestMatch_NoMatch(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	if prompt := m.Match("ORA-12345: something obscure"); prompt != "" {
		t.Fatalf("expected empty prompt, got %q", prompt)
	}
}

func TestMatch_ConfiguredRulesFirst(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `ORA-00942`, Message: "Check the ETL schema first."},
	})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	prompt := m.Match("ORA-00942: table or view does not exist")
	lines := strings.Split(prompt, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected configured + default match, got %d lines: %q", len(lines), prompt)
	}
	if lines[0] != "Check the ETL schema first." {
		t.Fatalf("expected configured rule first, got %q", lines[0])
	}
}

func TestMatch_MultipleMatchesJoined(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher([]Rule{
		{Pattern: `ORA-`, Message: "first"},
		{Pattern: `timeout`, Message: "second"},
	})
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	prompt := m.Match("ORA-01013 timeout")
	if !strings.HasPrefix(prompt, "first\nsecond") {
		t.Fatalf("expected ordered joined prompts, got %q", prompt)
	}
}

func TestMatchedPatterns(t *testing.T) {
	t.Parallel()
	m, err := NewMatcher(nil)
	if err != nil {
		t.Fatalf("NewMatcher: %v", err)
	}
	patterns := m.MatchedPatterns("ORA-00942: table or view does not exist")
	if len(patterns) != 1 || patterns[0] != "ORA-00942" {
		t.Fatalf("unexpected patterns: %v", patterns)
	}
	if p := m.MatchedPatterns("nothing here"); p != nil {
		t.Fatalf("expected nil, got %v", p)
	}
}

func TestNewMatcher_InvalidPattern(t *testing.T) {
	t.Parallel()
	if _, err := NewMatcher([]Rule{{Pattern: `[invalid`, Message: "x"}}); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}
