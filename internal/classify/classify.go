// Package classify categorizes SQL statements by their leading keyword and
// scans for mutating sub-clauses embedded in nominally read-only statements.
//
// This is a heuristic string-analysis pass, not a SQL parser: it does not
// build an AST and does not understand nested sub-queries beyond keyword and
// word-boundary pattern detection. Callers must treat it as defense in depth,
// not a complete grammar check.
package classify

import (
	"regexp"
	"strings"
)

// Category is the classifier's verdict on a single SQL statement.
type Category int

const (
	// CategoryUnknown is any statement whose leading keyword is not recognized.
	CategoryUnknown Category = iota
	// CategoryReadOnly covers SELECT, WITH, DESC, DESCRIBE, and EXPLAIN.
	CategoryReadOnly
	// CategoryWrite covers INSERT, UPDATE, and MERGE.
	CategoryWrite
	// CategoryDangerous covers DELETE, DROP, CREATE, ALTER, TRUNCATE,
	// GRANT, REVOKE, and PURGE.
	CategoryDangerous
)

// String returns a human-readable name for the category.
func (c Category) String() string {
	switch c {
	case CategoryReadOnly:
		return "read-only"
	case CategoryWrite:
		return "write"
	case CategoryDangerous:
		return "dangerous"
	default:
		return "unrecognized"
	}
}

var readonlyKeywords = map[string]bool{
	"SELECT": true, "WITH": true, "DESC": true, "DESCRIBE": true, "EXPLAIN": true,
}

var writeKeywords = map[string]bool{
	"INSERT": true, "UPDATE": true, "MERGE": true,
}

var dangerousKeywords = map[string]bool{
	"DELETE": true, "DROP": true, "CREATE": true, "ALTER": true,
	"TRUNCATE": true, "GRANT": true, "REVOKE": true, "PURGE": true,
}

// embeddedPatterns match mutating sub-clauses smuggled inside a statement
// whose leading keyword is SELECT (multi-statement batching, vendor
// extensions). Word-boundary matching against the upper-cased text.
var embeddedPatterns = []struct {
	re      *regexp.Regexp
	keyword string
}{
	{regexp.MustCompile(`\bDROP\s+TABLE\b`), "DROP"},
	{regexp.MustCompile(`\bTRUNCATE\s+TABLE\b`), "TRUNCATE"},
	{regexp.MustCompile(`\bDELETE\s+FROM\b`), "DELETE"},
	{regexp.MustCompile(`\bINSERT\s+INTO\b`), "INSERT"},
	{regexp.MustCompile(`\bUPDATE\s+\w+\s+SET\b`), "UPDATE"},
	{regexp.MustCompile(`\bCREATE\s+TABLE\b`), "CREATE"},
	{regexp.MustCompile(`\bALTER\s+TABLE\b`), "ALTER"},
	{regexp.MustCompile(`\bMERGE\s+INTO\b`), "MERGE"},
}

// wordRe extracts whitespace-delimited upper-cased tokens for whole-text
// keyword scans.
var wordRe = regexp.MustCompile(`[A-Z]+`)

// FirstKeyword returns the first whitespace-delimited token of sql,
// upper-cased. Returns "" for blank input.
func FirstKeyword(sql string) string {
	fields := strings.Fields(strings.ToUpper(sql))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// Classify categorizes sql by its leading keyword alone. Embedded-clause
// detection is separate; see EmbeddedViolation.
func Classify(sql string) Category {
	kw := FirstKeyword(sql)
	switch {
	case readonlyKeywords[kw]:
		return CategoryReadOnly
	case writeKeywords[kw]:
		return CategoryWrite
	case dangerousKeywords[kw]:
		return CategoryDangerous
	default:
		return CategoryUnknown
	}
}

// EmbeddedViolation reports whether a statement with a read-only leading
// keyword carries a mutating fragment in its body. For a leading SELECT it
// matches the fixed sub-clause patterns; for the other read-only keywords it
// rejects any write or dangerous keyword token anywhere in the text.
// Returns the offending keyword when a violation is found.
func EmbeddedViolation(sql string) (string, bool) {
	upper := strings.ToUpper(sql)
	if FirstKeyword(sql) == "SELECT" {
		for _, p := range embeddedPatterns {
			if p.re.MatchString(upper) {
				return p.keyword, true
			}
		}
		return "", false
	}
	for _, tok := range wordRe.FindAllString(upper, -1) {
		if writeKeywords[tok] || dangerousKeywords[tok] {
			return tok, true
		}
	}
	return "", false
}

// ContainsDangerousKeyword scans the whole upper-cased text for any
// dangerous keyword token and returns the first one found.
func ContainsDangerousKeyword(sql string) (string, bool) {
	for _, tok := range wordRe.FindAllString(strings.ToUpper(sql), -1) {
		if dangerousKeywords[tok] {
			return tok, true
		}
	}
	return "", false
}
