package splitter

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestContainsDelimiters(t *testing.T) {
	tests := []struct {
		name     string
		script   string
		delim    string
		expected bool
	}{
		{"delimiter between statements", "select 1; select 2", ";", true},
		{"delimiter only inside literal", "select 'a;b' from t", ";", false},
		{"no delimiter at all", "select 1\nselect 2", ";", false},
		{"delimiter after literal", "select 'a;b' from t;", ";", true},
		{"multi-character delimiter", "select 1\nGO\nselect 2", "\nGO\n", true},
		{"multi-character delimiter quoted", "select 'x\nGO\ny'", "\nGO\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ContainsDelimiters(tt.script, tt.delim))
		})
	}
}

func TestResolveSeparator(t *testing.T) {
	tests := []struct {
		name      string
		script    string
		separator string
		expected  string
	}{
		{"configured separator present", "select 1; select 2", ";", ";"},
		{"fallback to newline when separator never occurs", "select 1\nselect 2", ";", FallbackSeparator},
		{"separator only in literal falls back", "select 'a;b'\nselect 2", ";", FallbackSeparator},
		{"empty separator resolves to default", "select 1; select 2", "", DefaultSeparator},
		{"eof sentinel kept as-is", "select 1; select 2", EOFSeparator, EOFSeparator},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolveSeparator(tt.script, tt.separator))
		})
	}
}

// The fallback separator must actually produce per-line statements.
func TestResolveSeparatorFallbackSplits(t *testing.T) {
	script := "select 1\nselect 2"
	separator := ResolveSeparator(script, ";")

	statements, err := Split("test.sql", script, separator, "--", "/*", "*/")
	assert.NoError(t, err)
	assert.Equal(t, []string{"select 1", "select 2"}, texts(statements))
}
