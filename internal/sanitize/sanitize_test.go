package sanitize

import "testing"

func TestSanitizeRows_MasksStrings(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{
		{Pattern: `\b\d{3}-\d{2}-\d{4}\b`, Replacement: "***-**-****"},
	})
	if err != nil {
		t.Fatalf("NewSanitizer: %v", err)
	}
	rows := []map[string]any{
		{"NAME": "Alice", "SSN": "123-45-6789"},
		{"NAME": "Bob", "SSN": "987-65-4321"},
	}
	out := s.SanitizeRows(rows)
	for i, row := range out {
		if row["SSN"] != "***-**-****" {
			t.Fatalf("row %d SSN not masked: %v", i, row["SSN"])
		}
	}
	if out[0]["NAME"] != "Alice" {
		t.Fatalf("non-matching string altered: %v", out[0]["NAME"])
	}
}

func TestSanitizeRows_NonStringPassThrough(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{{Pattern: `\d+`, Replacement: "X"}})
	if err != nil {
		t.Fatalf("NewSanitizer: %v", err)
	}
	rows := []map[string]any{
		{"ID": int64(42), "RATE": 1.5, "ACTIVE": true, "NOTE": nil},
	}
	out := s.SanitizeRows(rows)
	if out[0]["ID"] != int64(42) || out[0]["RATE"] != 1.5 || out[0]["ACTIVE"] != true || out[0]["NOTE"] != nil {
		t.Fatalf("non-string values altered: %v", out[0])
	}
}

func TestSanitizeRows_MultipleRulesInOrder(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer([]Rule{
		{Pattern: `secret`, Replacement: "hidden"},
		{Pattern: `hidden`, Replacement: "[redacted]"},
	})
	if err != nil {
		t.Fatalf("NewSanitizer: %v", err)
	}
	rows := []map[string]any{{"V": "a secret value"}}
	out := s.SanitizeRows(rows)
	if out[0]["V"] != "a [redacted] value" {
		t.Fatalf("rules not applied in order: %v", out[0]["V"])
	}
}

func TestSanitizeRows_NoRules(t *testing.T) {
	t.Parallel()
	s, err := NewSanitizer(nil)
	if err != nil {
		t.Fatalf("NewSanitizer: %v", err)
	}
	if s.HasRules() {
		t.Fatal("expected HasRules to be false")
	}
	rows := []map[string]any{{"V": "untouched"}}
	out := s.SanitizeRows(rows)
	if out[0]["V"] != "untouched" {
		t.Fatalf("value altered with no rules: %v", out[0]["V"])
	}
}

func TestNewSanitizer_InvalidPattern(t *testing.T) {
	t.Parallel()
	if _, err := NewSanitizer([]Rule{{Pattern: `[invalid`, Replacement: ""}}); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}
