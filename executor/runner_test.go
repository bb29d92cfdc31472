package executor

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/go-kit/log"

	"github.com/shibukawa/sqlscript/splitter"
)

var errInvalidCharacter = errors.New("ORA-00911: invalid character")

func TestRunnerRetriesOnInvalidCharacter(t *testing.T) {
	conn := &fakeConn{fail: func(call int, _ string) error {
		if call == 0 {
			return errInvalidCharacter
		}

		return nil
	}}

	runner := newStatementRunner(log.NewNopLogger(), splitter.DefaultSeparator)
	runner.Run(context.Background(), conn, "create view v as select 1;", "view.sql")

	assert.Equal(t, []string{
		"create view v as select 1;",
		"create view v as select 1",
	}, conn.queries)
}

func TestRunnerRetriesExactlyOnce(t *testing.T) {
	var buf strings.Builder

	conn := &fakeConn{fail: func(int, string) error { return errInvalidCharacter }}

	runner := newStatementRunner(log.NewLogfmtLogger(&buf), splitter.DefaultSeparator)
	runner.Run(context.Background(), conn, "create view v as select 1;", "view.sql")

	assert.Equal(t, 2, len(conn.queries))
	assert.Contains(t, buf.String(), "level=error")
}

func TestRunnerToleratesFailedDrop(t *testing.T) {
	var buf strings.Builder

	conn := &fakeConn{fail: func(int, string) error { return errStatementRejected }}

	runner := newStatementRunner(log.NewLogfmtLogger(&buf), splitter.DefaultSeparator)
	runner.Run(context.Background(), conn, "drop table missing", "drop.sql")

	assert.Equal(t, 1, len(conn.queries))
	assert.Contains(t, buf.String(), "level=debug")
	assert.NotContains(t, buf.String(), "level=error")
}

func TestRunnerLogsOtherFailures(t *testing.T) {
	var buf strings.Builder

	conn := &fakeConn{fail: func(int, string) error { return errStatementRejected }}

	runner := newStatementRunner(log.NewLogfmtLogger(&buf), splitter.DefaultSeparator)
	runner.Run(context.Background(), conn, "create view v as select 1", "view.sql")

	assert.Equal(t, 1, len(conn.queries))
	assert.Contains(t, buf.String(), "level=error")
}

func TestIsInvalidCharacterError(t *testing.T) {
	assert.True(t, isInvalidCharacterError(errInvalidCharacter))
	assert.True(t, isInvalidCharacterError(errors.New("driver: invalid character in statement")))
	assert.False(t, isInvalidCharacterError(errStatementRejected))
}
