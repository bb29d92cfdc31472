package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/go-kit/log"

	sqlscript "github.com/shibukawa/sqlscript"
	"github.com/shibukawa/sqlscript/executor"
	"github.com/shibukawa/sqlscript/splitter"
)

// Error definitions
var (
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrScriptNotFound     = errors.New("script file not found")
	ErrScriptFailed       = errors.New("script execution failed")
)

var (
	okFmt   = color.New(color.FgGreen, color.Bold).SprintFunc()
	failFmt = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Context represents the global context for commands
type Context struct {
	Config  string
	Verbose bool
	Quiet   bool
	Logger  log.Logger
}

// RunCmd represents the run command
type RunCmd struct {
	Scripts           []string `arg:"" help:"SQL script files to execute, in order" type:"path"`
	Environment       string   `short:"e" long:"env" help:"Database environment from config" default:"development"`
	Driver            string   `long:"driver" help:"Database driver (postgres, mysql, sqlite), overrides config"`
	Connection        string   `long:"connection" help:"Database connection string, overrides config"`
	Separator         string   `long:"separator" help:"Statement separator" default:";"`
	SingleStatement   bool     `long:"single-statement" help:"Treat each script as one statement with no separator"`
	CommentPrefix     string   `long:"comment-prefix" help:"Line comment prefix" default:"--"`
	BlockCommentStart string   `long:"block-comment-start" help:"Block comment start delimiter" default:"/*"`
	BlockCommentEnd   string   `long:"block-comment-end" help:"Block comment end delimiter" default:"*/"`
	ContinueOnError   bool     `long:"continue-on-error" help:"Log statement failures at debug level and continue"`
	IgnoreFailedDrops bool     `long:"ignore-failed-drops" help:"Tolerate failing DROP statements"`
	Timeout           int      `long:"timeout" help:"Connection timeout in seconds" default:"30"`
}

// Run executes the run command
func (cmd *RunCmd) Run(ctx *Context) error {
	config, err := sqlscript.LoadConfig(ctx.Config)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	driver, connection, err := cmd.resolveConnection(config)
	if err != nil {
		return err
	}

	for _, script := range cmd.Scripts {
		if !fileExists(script) {
			return fmt.Errorf("%w: %s", ErrScriptNotFound, script)
		}
	}

	connectCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cmd.Timeout)*time.Second)
	defer cancel()

	db, err := openDatabase(connectCtx, driver, connection, config.Pool)
	if err != nil {
		return err
	}
	defer db.Close()

	exec := executor.NewScriptExecutor(ctx.Logger, cmd.executorOptions(config))

	var failed int

	for _, script := range cmd.Scripts {
		err := cmd.runScript(context.Background(), exec, db, script)
		if err != nil {
			failed++

			if !ctx.Quiet {
				fmt.Printf("%s %s: %v\n", failFmt("FAIL"), script, err)
			}

			continue
		}
		if !ctx.Quiet {
			fmt.Printf("%s %s\n", okFmt("OK"), script)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d scripts", ErrScriptFailed, failed, len(cmd.Scripts))
	}

	return nil
}

func (cmd *RunCmd) runScript(ctx context.Context, exec *executor.ScriptExecutor, conn executor.Conn, script string) error {
	f, err := os.Open(script)
	if err != nil {
		return fmt.Errorf("%w: %w", splitter.ErrCannotReadScript, err)
	}
	defer f.Close()

	return exec.ExecuteScript(ctx, conn, script, f)
}

// executorOptions merges config file settings with flag overrides. Flags
// carry kong defaults, so an explicitly configured script section only
// wins where the flag was left at its default.
func (cmd *RunCmd) executorOptions(config *sqlscript.Config) executor.Options {
	opts := executor.Options{
		Separator:         cmd.Separator,
		CommentPrefix:     cmd.CommentPrefix,
		BlockCommentStart: cmd.BlockCommentStart,
		BlockCommentEnd:   cmd.BlockCommentEnd,
		ContinueOnError:   cmd.ContinueOnError || config.Script.ContinueOnError,
		IgnoreFailedDrops: cmd.IgnoreFailedDrops || config.Script.IgnoreFailedDrops,
	}

	if opts.Separator == splitter.DefaultSeparator && config.Script.Separator != "" {
		opts.Separator = config.Script.Separator
	}
	if opts.CommentPrefix == splitter.DefaultCommentPrefix && config.Script.CommentPrefix != "" {
		opts.CommentPrefix = config.Script.CommentPrefix
	}
	if opts.BlockCommentStart == splitter.DefaultBlockCommentStart && config.Script.BlockCommentStart != "" {
		opts.BlockCommentStart = config.Script.BlockCommentStart
		opts.BlockCommentEnd = config.Script.BlockCommentEnd
	}
	if cmd.SingleStatement {
		opts.Separator = splitter.EOFSeparator
	}

	return opts
}

// resolveConnection picks explicit --driver/--connection flags over the
// named environment from the configuration file.
func (cmd *RunCmd) resolveConnection(config *sqlscript.Config) (driver, connection string, err error) {
	if cmd.Connection != "" {
		driver = cmd.Driver
		if driver == "" {
			driver = "postgres"
		}

		return driver, cmd.Connection, nil
	}

	db, ok := config.Databases[cmd.Environment]
	if !ok {
		if len(config.Databases) == 0 {
			return "", "", fmt.Errorf("%w: pass --connection or add a databases section to the config file", sqlscript.ErrNoConnection)
		}

		return "", "", fmt.Errorf("%w: %q", sqlscript.ErrUnknownEnvironment, cmd.Environment)
	}

	return db.Driver, db.Connection, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
