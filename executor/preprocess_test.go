package executor

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestPreprocessStatement(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "clean statement passes through",
			input:    "insert into t values (1)",
			expected: "insert into t values (1)",
		},
		{
			name:     "three prompt occurrences keep only the tail",
			input:    "prompt Creating table A prompt Creating table B prompt create table c (id integer)",
			expected: " create table c (id integer)",
		},
		{
			name:     "two prompt occurrences are left alone",
			input:    "prompt Creating prompt messages create table c (id integer)",
			expected: "prompt Creating prompt messages create table c (id integer)",
		},
		{
			name:     "spool off replaced with a space",
			input:    "create table c (id integer) spool off",
			expected: "create table c (id integer)  ",
		},
		{
			name:     "every spool off occurrence replaced",
			input:    "spool off alter table c add d integer spool off",
			expected: "  alter table c add d integer  ",
		},
		{
			name:     "trailing slash terminator truncated",
			input:    "create procedure p is begin null; end; /",
			expected: "create procedure p is begin null; end; ",
		},
		{
			name:     "only the last slash is a terminator",
			input:    "comment on column a.b is 'x/y' /",
			expected: "comment on column a.b is 'x/y' ",
		},
		{
			name:     "no trailing slash means no truncation",
			input:    "comment on column a.b is 'x/y'",
			expected: "comment on column a.b is 'x/y'",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, preprocessStatement(tt.input))
		})
	}
}

// Re-running on already-cleaned input must return it unchanged.
func TestPreprocessStatementIdempotent(t *testing.T) {
	inputs := []string{
		"insert into t values (1)",
		"create table c (id integer)",
		"update t set a = 'prompt'", // single prompt occurrence stays
	}

	for _, input := range inputs {
		once := preprocessStatement(input)
		assert.Equal(t, once, preprocessStatement(once))
	}
}

func TestStartsWithKeyword(t *testing.T) {
	assert.True(t, startsWithKeyword("  INSERT INTO t VALUES (1)", "insert"))
	assert.True(t, startsWithKeyword("\tCreate Table t (id integer)", "alter", "create"))
	assert.False(t, startsWithKeyword("select 1", "insert", "update", "delete"))
	assert.False(t, startsWithKeyword("", "insert"))
}
