// Package policy decides whether a classified SQL statement may execute
// under a configured security tier.
package policy

import (
	"fmt"
	"strings"

	"github.com/rickchristie/oracle-mcp/internal/classify"
)

// Mode is the configured global permission tier.
type Mode string

const (
	// ReadOnly permits only read-only statements.
	ReadOnly Mode = "read_only"
	// LimitedWrite permits read-only and write statements, never dangerous ones.
	LimitedWrite Mode = "limited_write"
	// FullAccess permits everything. No guardrails: callers opting into this
	// tier accept full responsibility.
	FullAccess Mode = "full_access"
)

// ParseMode converts a configuration string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ReadOnly:
		return ReadOnly, nil
	case LimitedWrite:
		return LimitedWrite, nil
	case FullAccess:
		return FullAccess, nil
	}
	return "", fmt.Errorf("invalid security mode %q: supported modes are read_only, limited_write, full_access", s)
}

// Violation is a policy rejection. It is produced before any I/O and is
// never retried.
type Violation struct {
	Mode     Mode
	Category classify.Category
	Keyword  string
	Reason   string
}

func (v *Violation) Error() string {
	return fmt.Sprintf("operation blocked by security policy: %s", v.Reason)
}

// Guard is a capability that validates statements against one fixed tier.
// Holding a read-only Guard is the only way introspection code shares the
// execution pipeline without inheriting write privileges.
type Guard struct {
	mode Mode
}

// ForMode returns a Guard bound to the given tier.
func ForMode(mode Mode) Guard {
	return Guard{mode: mode}
}

// ReadOnlyGuard returns a Guard pinned to the read-only tier regardless of
// the process configuration.
func ReadOnlyGuard() Guard {
	return Guard{mode: ReadOnly}
}

// Mode returns the tier this Guard enforces.
func (g Guard) Mode() Mode {
	return g.mode
}

// Validate returns nil when sql is permitted under the Guard's tier, and a
// *Violation carrying the tier, category, and offending keyword otherwise.
// The decision is a pure function of (tier, statement text).
func (g Guard) Validate(sql string) error {
	if g.mode == FullAccess {
		return nil
	}

	kw := classify.FirstKeyword(sql)
	cat := classify.Classify(sql)

	switch g.mode {
	case ReadOnly:
		if cat != classify.CategoryReadOnly {
			return &Violation{
				Mode:     g.mode,
				Category: cat,
				Keyword:  kw,
				Reason:   readonlyReason(cat, kw),
			}
		}
		if bad, found := classify.EmbeddedViolation(sql); found {
			return &Violation{
				Mode:     g.mode,
				Category: classify.CategoryDangerous,
				Keyword:  bad,
				Reason:   fmt.Sprintf("embedded %s clause forbidden under read-only mode", bad),
			}
		}
		return nil

	case LimitedWrite:
		if cat != classify.CategoryReadOnly && cat != classify.CategoryWrite {
			return &Violation{
				Mode:     g.mode,
				Category: cat,
				Keyword:  kw,
				Reason:   limitedWriteReason(cat, kw),
			}
		}
		if bad, found := classify.ContainsDangerousKeyword(sql); found {
			return &Violation{
				Mode:     g.mode,
				Category: classify.CategoryDangerous,
				Keyword:  bad,
				Reason:   fmt.Sprintf("dangerous operation forbidden under limited-write mode: %s", bad),
			}
		}
		return nil
	}

	return &Violation{Mode: g.mode, Category: cat, Keyword: kw, Reason: "unknown security mode"}
}

func readonlyReason(cat classify.Category, kw string) string {
	switch cat {
	case classify.CategoryWrite:
		return fmt.Sprintf("write operation forbidden under read-only mode: %s", kw)
	case classify.CategoryDangerous:
		return fmt.Sprintf("dangerous operation forbidden under read-only mode: %s", kw)
	default:
		return fmt.Sprintf("unsupported operation under read-only mode: %s", kw)
	}
}

func limitedWriteReason(cat classify.Category, kw string) string {
	if cat == classify.CategoryDangerous {
		return fmt.Sprintf("dangerous operation forbidden under limited-write mode: %s", kw)
	}
	return fmt.Sprintf("unsupported operation under limited-write mode: %s", kw)
}
