package classify

import "testing"

func assertCategory(t *testing.T, sql string, want Category) {
	t.Helper()
	got := Classify(sql)
	if got != want {
		t.Fatalf("Classify(%q) = %s, want %s", sql, got, want)
	}
}

// --- Leading Keyword Classification ---

func TestClassify_Select(t *testing.T) {
	t.Parallel()
	assertCategory(t, "SELECT 1 FROM DUAL", CategoryReadOnly)
}

func TestClassify_With(t *testing.T) {
	t.Parallel()
	assertCategory(t, "WITH x AS (SELECT 1 FROM DUAL) SELECT * FROM x", CategoryReadOnly)
}

func TestClassify_Describe(t *testing.T) {
	t.Parallel()
	assertCategory(t, "DESCRIBE employees", CategoryReadOnly)
	assertCategory(t, "DESC employees", CategoryReadOnly)
}

func TestClassify_Explain(t *testing.T) {
	t.Parallel()
	assertCategory(t, "EXPLAIN PLAN FOR SELECT * FROM employees", CategoryReadOnly)
}

func TestClassify_Write(t *testing.T) {
	t.Parallel()
	assertCategory(t, "INSERT INTO t (a) VALUES (1)", CategoryWrite)
	assertCategory(t, "UPDATE t SET a = 1", CategoryWrite)
	assertCategory(t, "MERGE INTO t USING s ON (t.id = s.id) WHEN MATCHED THEN UPDATE SET t.a = s.a", CategoryWrite)
}

func TestClassify_Dangerous(t *testing.T) {
	t.Parallel()
	assertCategory(t, "DELETE FROM t", CategoryDangerous)
	assertCategory(t, "DROP TABLE t", CategoryDangerous)
	assertCategory(t, "CREATE TABLE t (a NUMBER)", CategoryDangerous)
	assertCategory(t, "ALTER TABLE t ADD (b NUMBER)", CategoryDangerous)
	assertCategory(t, "TRUNCATE TABLE t", CategoryDangerous)
	assertCategory(t, "GRANT SELECT ON t TO alice", CategoryDangerous)
	assertCategory(t, "REVOKE SELECT ON t FROM alice", CategoryDangerous)
	assertCategory(t, "PURGE RECYCLEBIN", CategoryDangerous)
}

func TestClassify_Unknown(t *testing.T) {
	t.Parallel()
	assertCategory(t, "BEGIN NULL; END;", CategoryUnknown)
	assertCategory(t, "CALL my_proc()", CategoryUnknown)
	assertCategory(t, "", CategoryUnknown)
	assertCategory(t, "   ", CategoryUnknown)
}

func TestClassify_CaseInsensitive(t *testing.T) {
	t.Parallel()
	assertCategory(t, "select * from employees", CategoryReadOnly)
	assertCategory(t, "Drop Table t", CategoryDangerous)
	assertCategory(t, "iNsErT INTO t VALUES (1)", CategoryWrite)
}

func TestClassify_LeadingWhitespace(t *testing.T) {
	t.Parallel()
	assertCategory(t, "   \n\t SELECT 1 FROM DUAL", CategoryReadOnly)
}

func TestFirstKeyword(t *testing.T) {
	t.Parallel()
	if kw := FirstKeyword("  select * from t"); kw != "SELECT" {
		t.Fatalf("FirstKeyword = %q, want SELECT", kw)
	}
	if kw := FirstKeyword(""); kw != "" {
		t.Fatalf("FirstKeyword(empty) = %q, want empty", kw)
	}
}

// --- Embedded Sub-Clause Detection ---

func TestEmbedded_DropTableAfterSemicolon(t *testing.T) {
	t.Parallel()
	kw, found := EmbeddedViolation("SELECT * FROM t; DROP TABLE t")
	if !found || kw != "DROP" {
		t.Fatalf("expected DROP violation, got (%q, %v)", kw, found)
	}
}

func TestEmbedded_AllSelectPatterns(t *testing.T) {
	t.Parallel()
	cases := []struct {
		sql     string
		keyword string
	}{
		{"SELECT 1 FROM DUAL; TRUNCATE TABLE t", "TRUNCATE"},
		{"SELECT 1 FROM DUAL; DELETE FROM t", "DELETE"},
		{"SELECT 1 FROM DUAL; INSERT INTO t VALUES (1)", "INSERT"},
		{"SELECT 1 FROM DUAL; UPDATE t SET a = 1", "UPDATE"},
		{"SELECT 1 FROM DUAL; CREATE TABLE t (a NUMBER)", "CREATE"},
		{"SELECT 1 FROM DUAL; ALTER TABLE t ADD (b NUMBER)", "ALTER"},
		{"SELECT 1 FROM DUAL; MERGE INTO t USING s ON (1=1)", "MERGE"},
	}
	for _, tc := range cases {
		kw, found := EmbeddedViolation(tc.sql)
		if !found || kw != tc.keyword {
			t.Fatalf("EmbeddedViolation(%q) = (%q, %v), want (%q, true)", tc.sql, kw, found, tc.keyword)
		}
	}
}

func TestEmbedded_CleanSelect(t *testing.T) {
	t.Parallel()
	if kw, found := EmbeddedViolation("SELECT * FROM employees WHERE id = :1"); found {
		t.Fatalf("unexpected violation %q for clean SELECT", kw)
	}
}

func TestEmbedded_SelectColumnNamesNotFlagged(t *testing.T) {
	t.Parallel()
	// Bare keyword tokens inside a SELECT are fine when they don't form a
	// full mutating clause.
	if kw, found := EmbeddedViolation("SELECT created_at, update_count FROM audit_log"); found {
		t.Fatalf("unexpected violation %q", kw)
	}
	if kw, found := EmbeddedViolation("SELECT 'DROP' AS action FROM DUAL"); found {
		t.Fatalf("unexpected violation %q", kw)
	}
}

func TestEmbedded_CaseInsensitive(t *testing.T) {
	t.Parallel()
	kw, found := EmbeddedViolation("select 1 from dual; drop table t")
	if !found || kw != "DROP" {
		t.Fatalf("expected DROP violation, got (%q, %v)", kw, found)
	}
}

func TestEmbedded_WithStrictTokenScan(t *testing.T) {
	t.Parallel()
	// Non-SELECT read-only statements reject any mutating keyword token.
	kw, found := EmbeddedViolation("WITH x AS (SELECT 1 FROM DUAL) INSERT INTO t SELECT * FROM x")
	if !found || kw != "INSERT" {
		t.Fatalf("expected INSERT violation, got (%q, %v)", kw, found)
	}
}

func TestEmbedded_ExplainOfWriteRejected(t *testing.T) {
	t.Parallel()
	kw, found := EmbeddedViolation("EXPLAIN PLAN FOR DELETE FROM t")
	if !found || kw != "DELETE" {
		t.Fatalf("expected DELETE violation, got (%q, %v)", kw, found)
	}
}

func TestEmbedded_CleanWith(t *testing.T) {
	t.Parallel()
	if kw, found := EmbeddedViolation("WITH x AS (SELECT id FROM t) SELECT * FROM x"); found {
		t.Fatalf("unexpected violation %q", kw)
	}
}

// --- Dangerous Keyword Scan ---

func TestContainsDangerous_Found(t *testing.T) {
	t.Parallel()
	kw, found := ContainsDangerousKeyword("INSERT INTO t SELECT * FROM s; DROP TABLE s")
	if !found || kw != "DROP" {
		t.Fatalf("expected DROP, got (%q, %v)", kw, found)
	}
}

func TestContainsDangerous_NotFound(t *testing.T) {
	t.Parallel()
	if kw, found := ContainsDangerousKeyword("UPDATE t SET a = 1 WHERE id = :1"); found {
		t.Fatalf("unexpected dangerous keyword %q", kw)
	}
}

func TestContainsDangerous_WordBoundary(t *testing.T) {
	t.Parallel()
	// DROPPED contains DROP as a substring but not as a token.
	if kw, found := ContainsDangerousKeyword("UPDATE t SET status = 'DONE' WHERE kind = 'DROPPED'"); found {
		t.Fatalf("unexpected dangerous keyword %q", kw)
	}
}
