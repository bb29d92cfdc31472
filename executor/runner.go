package executor

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/shibukawa/sqlscript/splitter"
)

// invalidCharacterIndicators are driver diagnostics signalling that a stray
// statement terminator reached the server (Oracle reports ORA-00911).
var invalidCharacterIndicators = []string{"ORA-00911", "invalid character"}

// statementRunner executes one statement at a time with a narrow retry
// policy. It is shared by the combined short-circuit path and the recovery
// pass. Failures are logged, never propagated.
type statementRunner struct {
	logger    log.Logger
	separator string
}

func newStatementRunner(logger log.Logger, separator string) *statementRunner {
	if separator == "" {
		separator = splitter.DefaultSeparator
	}

	return &statementRunner{logger: logger, separator: separator}
}

// Run executes the statement. When the driver reports an invalid character,
// a trailing separator is stripped and the statement retried exactly once.
func (r *statementRunner) Run(ctx context.Context, conn Conn, statement, resource string) {
	_, err := conn.ExecContext(ctx, statement)
	if err == nil {
		return
	}

	if isInvalidCharacterError(err) {
		trimmed := strings.TrimSpace(statement)
		if strings.HasSuffix(trimmed, r.separator) {
			statement = trimmed[:len(trimmed)-len(r.separator)]
		}
		if _, err := conn.ExecContext(ctx, statement); err != nil {
			level.Error(r.logger).Log("msg", statementFailureMessage(statement, 0, resource), "err", err)
		}

		return
	}

	if startsWithKeyword(statement, "drop") {
		level.Debug(r.logger).Log("msg", statementFailureMessage(statement, 0, resource), "err", err)

		return
	}
	level.Error(r.logger).Log("msg", statementFailureMessage(statement, 0, resource), "err", err)
}

func isInvalidCharacterError(err error) bool {
	msg := err.Error()
	for _, indicator := range invalidCharacterIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}

	return false
}

// statementFailureMessage formats the diagnostic for a failed statement.
// The ordinal is 1-based; 0 means the statement did not come out of the
// splitter (combined or recovered statements).
func statementFailureMessage(statement string, ordinal int, resource string) string {
	return fmt.Sprintf("failed to execute SQL script statement #%d of %s: %s", ordinal, resource, statement)
}
