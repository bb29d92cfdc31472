package executor

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/google/uuid"

	"github.com/shibukawa/sqlscript/splitter"
)

// ErrUncategorized wraps a failure that is neither a read, contract, parse
// nor statement failure, identifying the offending resource.
var ErrUncategorized = errors.New("failed to execute database script")

// executableKeywords are the leading keywords that mark a statement worth
// replaying. Anything else (select and friends) is skipped silently.
var executableKeywords = []string{"alter", "comment", "insert", "update", "delete", "commit", "create"}

// Conn is the execution surface the pipeline needs from a database
// connection. *sql.DB, *sql.Conn and *sql.Tx all satisfy it.
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Options configure script splitting and failure tolerance.
type Options struct {
	// Separator delimits statements. Defaults to splitter.DefaultSeparator
	// and falls back to a newline when it never occurs in the script. Set
	// it to splitter.EOFSeparator for single-statement scripts.
	Separator string
	// CommentPrefix identifies single-line comments. Defaults to "--".
	CommentPrefix string
	// BlockCommentStart and BlockCommentEnd delimit block comments.
	// Default to "/*" and "*/".
	BlockCommentStart string
	BlockCommentEnd   string
	// ContinueOnError demotes every statement failure to a debug log line.
	ContinueOnError bool
	// IgnoreFailedDrops demotes failures of DROP statements only.
	IgnoreFailedDrops bool
}

// DefaultOptions returns the option set used when fields are left zero.
func DefaultOptions() Options {
	return Options{
		Separator:         splitter.DefaultSeparator,
		CommentPrefix:     splitter.DefaultCommentPrefix,
		BlockCommentStart: splitter.DefaultBlockCommentStart,
		BlockCommentEnd:   splitter.DefaultBlockCommentEnd,
	}
}

// ScriptExecutor replays SQL scripts statement by statement with
// best-effort error tolerance. It runs two passes: the per-statement loop
// over the splitter output, then a recovery pass that re-scans the raw
// script for CREATE blocks the splitter fragmented. A script that looks
// like a single non-table CREATE short-circuits into one combined
// execution instead.
type ScriptExecutor struct {
	logger log.Logger
	opts   Options
}

// NewScriptExecutor creates an executor. Zero option fields are filled
// with defaults; a nil logger discards everything.
func NewScriptExecutor(logger log.Logger, opts Options) *ScriptExecutor {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	defaults := DefaultOptions()
	if opts.Separator == "" {
		opts.Separator = defaults.Separator
	}
	if opts.CommentPrefix == "" {
		opts.CommentPrefix = defaults.CommentPrefix
	}
	if opts.BlockCommentStart == "" {
		opts.BlockCommentStart = defaults.BlockCommentStart
	}
	if opts.BlockCommentEnd == "" {
		opts.BlockCommentEnd = defaults.BlockCommentEnd
	}

	return &ScriptExecutor{logger: logger, opts: opts}
}

// ExecuteScript reads the script from r and replays it against conn.
// resource identifies the script origin in diagnostics only.
//
// Read, contract and parse failures abort before anything executes.
// Individual statement failures never propagate: they are logged at debug
// level when tolerated (ContinueOnError, or IgnoreFailedDrops for DROP
// statements) and at error level otherwise, and the pipeline continues
// either way.
func (e *ScriptExecutor) ExecuteScript(ctx context.Context, conn Conn, resource string, r io.Reader) error {
	err := e.executeScript(ctx, conn, resource, r)
	if err != nil && !isScriptError(err) {
		return fmt.Errorf("%w from resource %q: %w", ErrUncategorized, resource, err)
	}

	return err
}

func (e *ScriptExecutor) executeScript(ctx context.Context, conn Conn, resource string, r io.Reader) error {
	logger := log.With(e.logger, "resource", resource, "run_id", uuid.NewString())
	level.Info(logger).Log("msg", "executing SQL script")
	start := time.Now()

	script, err := splitter.ReadScript(r, e.opts.CommentPrefix, e.opts.Separator)
	if err != nil {
		return err
	}

	separator := splitter.ResolveSeparator(script, e.opts.Separator)

	statements, err := splitter.Split(resource, script, separator, e.opts.CommentPrefix, e.opts.BlockCommentStart, e.opts.BlockCommentEnd)
	if err != nil {
		return err
	}

	runner := newStatementRunner(logger, splitter.DefaultSeparator)

	// Export tools split some creation scripts apart; a script that is one
	// non-table CREATE in pieces has to run whole.
	if combined, ok := combineCreateScript(statements); ok {
		runner.Run(ctx, conn, combined, resource)
		level.Info(logger).Log("msg", "executed SQL script as single statement", "elapsed", time.Since(start))

		return nil
	}

	for _, stmt := range statements {
		e.runStatement(ctx, conn, logger, stmt)
	}

	e.recoverCreateBlocks(ctx, conn, runner, logger, script, resource)

	level.Info(logger).Log("msg", "executed SQL script", "elapsed", time.Since(start))

	return nil
}

// runStatement preprocesses, classifies and executes one split statement.
func (e *ScriptExecutor) runStatement(ctx context.Context, conn Conn, logger log.Logger, stmt splitter.Statement) {
	text := preprocessStatement(stmt.Text)
	if !startsWithKeyword(text, executableKeywords...) {
		level.Debug(logger).Log("msg", "statement has no executable keyword, skipping", "ordinal", stmt.Index, "statement", text)

		return
	}

	res, err := conn.ExecContext(ctx, text)
	if err != nil {
		tolerated := e.opts.ContinueOnError ||
			(e.opts.IgnoreFailedDrops && startsWithKeyword(text, "drop"))
		if tolerated {
			level.Debug(logger).Log("msg", statementFailureMessage(text, stmt.Index, stmt.Resource), "err", err)
		} else {
			level.Error(logger).Log("msg", statementFailureMessage(text, stmt.Index, stmt.Resource), "err", err)
		}

		return
	}

	rows, err := res.RowsAffected()
	if err != nil {
		// Not an error signal, some drivers cannot report a count.
		level.Debug(logger).Log("msg", "driver warning ignored", "ordinal", stmt.Index, "err", err)

		return
	}
	level.Debug(logger).Log("msg", "update count for SQL", "rows", rows, "ordinal", stmt.Index, "statement", text)
}

// combineCreateScript concatenates all non-blank, non-commit preprocessed
// statements and reports whether the result defines a single non-table
// object (view, procedure, trigger, sequence, ...). A trailing separator
// is stripped from the combined statement.
func combineCreateScript(statements []splitter.Statement) (string, bool) {
	var sb strings.Builder

	for _, stmt := range statements {
		text := preprocessStatement(stmt.Text)
		if strings.TrimSpace(text) == "" || text == "commit" {
			continue
		}
		sb.WriteString(" ")
		sb.WriteString(text)
		sb.WriteString("; ")
	}

	combined := sb.String()
	if !startsWithKeyword(combined, "create") {
		return "", false
	}
	if strings.Contains(combined, "table ") || strings.Contains(combined, "TABLE ") {
		return "", false
	}

	combined = strings.TrimSpace(combined)
	if strings.HasSuffix(combined, ";") {
		combined = combined[:strings.LastIndex(combined, ";")]
	}

	return combined, true
}

// recoverCreateBlocks re-scans the raw script for CREATE statements that
// the per-statement pass fragmented, typically multi-line blocks in
// tool-generated mixed scripts, and executes each reconstructed block. A
// failed block falls back once to its first-create prefix, unless that
// prefix targets a table (already created by the per-statement pass).
func (e *ScriptExecutor) recoverCreateBlocks(ctx context.Context, conn Conn, runner *statementRunner, logger log.Logger, script, resource string) {
	normalized := strings.ReplaceAll(script, "create ", "CREATE ")
	for _, chunk := range strings.Split(normalized, "\nCREATE ") {
		lines := strings.Split(chunk, "\n")
		if len(lines) <= 1 {
			continue
		}

		block := buildRecoveryBlock(lines).repair()
		if len(strings.TrimSpace(block.body)) <= 5 {
			continue
		}

		body := "CREATE " + block.body
		prefix := "CREATE " + block.prefix

		if _, err := conn.ExecContext(ctx, body); err != nil {
			level.Debug(logger).Log("msg", "recovered CREATE block failed", "statement", body, "err", err)

			if !strings.Contains(prefix, "table ") && !strings.Contains(prefix, "TABLE ") && len(prefix) > 10 {
				runner.Run(ctx, conn, prefix, resource)
			}
		}
	}
}

// isScriptError reports whether err is one of the categorized script
// failure kinds that must pass through unwrapped.
func isScriptError(err error) bool {
	return errors.Is(err, splitter.ErrCannotReadScript) ||
		errors.Is(err, splitter.ErrUnterminatedBlockComment) ||
		errors.Is(err, splitter.ErrEmptyScript) ||
		errors.Is(err, splitter.ErrMissingSeparator) ||
		errors.Is(err, splitter.ErrEmptyCommentPrefix) ||
		errors.Is(err, splitter.ErrEmptyBlockCommentDelimiter)
}
