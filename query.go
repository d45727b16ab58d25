package oramcp

import (
	"context"
	"database/sql"
	"encoding/base64"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/rickchristie/oracle-mcp/internal/classify"
	"github.com/rickchristie/oracle-mcp/internal/policy"
)

// Execute runs the full pipeline under the configured security mode and
// returns only QueryOutput. All errors (Oracle errors, policy rejections,
// Go errors) are converted to output.Error, with matching error-prompt
// guidance appended. Callers only need to check output.Error, never a Go
// error.
func (o *OracleMcp) Execute(ctx context.Context, input QueryInput) *QueryOutput {
	return o.execute(ctx, o.guard, input)
}

// ExecuteReadOnly runs the same pipeline under a guard pinned to the
// read-only tier, regardless of the configured security mode. Introspection
// helpers use this path exclusively so they can never mutate state.
func (o *OracleMcp) ExecuteReadOnly(ctx context.Context, input QueryInput) *QueryOutput {
	return o.execute(ctx, policy.ReadOnlyGuard(), input)
}

// execute is the per-call state machine:
// validate → connect → execute-statement → (fetch-and-normalize |
// commit-and-count) → release-connection. The session is acquired fresh for
// this call and released on every exit path.
func (o *OracleMcp) execute(ctx context.Context, guard policy.Guard, input QueryInput) *QueryOutput {
	startTime := time.Now()
	stmt := input.SQL

	// 1. Check SQL length before any processing
	if len(stmt) > o.config.Query.MaxSQLLength {
		return o.handleError(fmt.Errorf("SQL statement too long: %d bytes exceeds maximum of %d bytes", len(stmt), o.config.Query.MaxSQLLength))
	}

	// 2. Validate against the guard's tier. Fails before touching the
	// network.
	if err := guard.Validate(stmt); err != nil {
		return o.handleError(err)
	}

	if o.config.EnableQueryLog {
		o.logger.Info().
			Str("mode", string(guard.Mode())).
			Str("sql", truncateForLog(stmt, 200)).
			Msg("executing statement")
	}

	// 3. Determine timeout
	dur, timeoutRule := o.timeoutMgr.Resolve(stmt)
	queryCtx, cancel := context.WithTimeout(ctx, dur)
	defer cancel()

	// 4. Establish the session. Connection establishment is the only step
	// with a retry budget; statement execution is never retried, so
	// non-idempotent writes cannot run twice.
	conn, err := o.acquireSession(queryCtx, guard)
	if err != nil {
		return o.handleError(fmt.Errorf("failed to establish database session: %w", err))
	}
	defer conn.Close()

	// 5. Execute and branch on the statement category
	var output *QueryOutput
	if classify.Classify(stmt) == classify.CategoryReadOnly {
		rows, err := conn.QueryContext(queryCtx, stmt, input.Params...)
		if err != nil {
			return o.handleError(fmt.Errorf("statement execution failed: %w", err))
		}
		output, err = o.collectRows(rows)
		if err != nil {
			return o.handleError(fmt.Errorf("statement execution failed: %w", err))
		}
	} else {
		output, err = o.executeWrite(queryCtx, conn, stmt, input.Params)
		if err != nil {
			return o.handleError(err)
		}
	}

	// 6. Apply sanitization rules to outgoing values
	output.Rows = o.sanitizer.SanitizeRows(output.Rows)

	logEvent := o.logger.Info().
		Str("sql", truncateForLog(stmt, 200)).
		Dur("duration", time.Since(startTime)).
		Int("row_count", len(output.Rows)).
		Int64("rows_affected", output.RowsAffected)
	if timeoutRule != "" {
		logEvent = logEvent.Str("timeout_rule", timeoutRule)
	}
	if output.Truncated {
		logEvent = logEvent.Bool("truncated", true)
	}
	logEvent.Msg("statement executed")

	return output
}

// acquireSession opens a fresh session, retrying establishment with a short
// backoff. For read-only guards it additionally disables query rewrite so a
// query cannot trigger materialized-view refreshes or other rewrite side
// effects.
func (o *OracleMcp) acquireSession(ctx context.Context, guard policy.Guard) (*sql.Conn, error) {
	var conn *sql.Conn
	var err error

	retries := o.config.Query.MaxConnectRetries
	for attempt := 0; ; attempt++ {
		conn, err = o.db.Conn(ctx)
		if err == nil {
			break
		}
		if attempt >= retries || ctx.Err() != nil {
			return nil, err
		}
		o.logger.Warn().Err(err).Int("attempt", attempt+1).Msg("session establishment failed, retrying")
		select {
		case <-time.After(500 * time.Millisecond):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if guard.Mode() == policy.ReadOnly {
		if _, err := conn.ExecContext(ctx, "ALTER SESSION SET QUERY_REWRITE_ENABLED = FALSE"); err != nil {
			conn.Close()
			return nil, fmt.Errorf("failed to disable query rewrite for read-only session: %w", err)
		}
	}
	return conn, nil
}

// executeWrite runs a mutating statement in an explicit transaction and
// returns the single-row summary record.
func (o *OracleMcp) executeWrite(ctx context.Context, conn *sql.Conn, stmt string, params []any) (*QueryOutput, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	result, err := tx.ExecContext(ctx, stmt, params...)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("statement execution failed: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to read affected row count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &QueryOutput{
		Columns:      []string{"affected_rows", "status"},
		Rows:         []map[string]any{{"affected_rows": affected, "status": "success"}},
		RowsAffected: affected,
	}, nil
}

// collectRows reads rows up to the configured cap and normalizes every
// value. Rows beyond the cap are discarded with a warning log, not an error.
func (o *OracleMcp) collectRows(rows *sql.Rows) (*QueryOutput, error) {
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	maxRows := o.config.Query.MaxResultRows
	resultRows := make([]map[string]any, 0)
	truncated := false

	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if len(resultRows) >= maxRows {
			truncated = true
			o.logger.Warn().
				Int("max_result_rows", maxRows).
				Msg("result exceeds row cap, truncating")
			break
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = convertValue(values[i])
		}
		resultRows = append(resultRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &QueryOutput{Columns: columns, Rows: resultRows, Truncated: truncated}, nil
}

// convertValue converts a driver-returned value to a JSON-friendly Go type.
// Datetime values become ISO-8601 text; binary values are fully materialized
// and base64-encoded.
func convertValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case float32:
		return normalizeFloat(float64(val))
	case float64:
		return normalizeFloat(val)
	case []byte:
		// RAW / BLOB. CLOBs arrive as string from go-ora.
		return base64.StdEncoding.EncodeToString(val)
	default:
		return val
	}
}

func normalizeFloat(f float64) any {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	return f
}

// handleError converts any error into a QueryOutput with an error message.
// The message is evaluated against error prompts; matching guidance is
// appended.
func (o *OracleMcp) handleError(err error) *QueryOutput {
	errMsg := err.Error()
	prompt := o.errPrompts.Match(errMsg)
	patterns := o.errPrompts.MatchedPatterns(errMsg)

	logEvent := o.logger.Error().Err(err)
	if len(patterns) > 0 {
		logEvent = logEvent.Strs("error_prompts", patterns)
	}
	logEvent.Msg("statement error")

	if prompt != "" {
		errMsg = errMsg + "\n\n" + prompt
	}
	return &QueryOutput{Error: errMsg}
}

// truncateForLog truncates a string for log output to avoid oversized log
// entries.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	truncateAt := maxLen
	for truncateAt > 0 && !utf8.RuneStart(s[truncateAt]) {
		truncateAt--
	}
	return s[:truncateAt] + "...[truncated]"
}
