package splitter

import "strings"

// Statement separator and comment delimiter defaults.
const (
	// DefaultSeparator is the default statement separator within SQL scripts.
	DefaultSeparator = ";"

	// FallbackSeparator is used if neither a custom separator nor the
	// default separator is present in a given script.
	FallbackSeparator = "\n"

	// EOFSeparator is a virtual separator denoting that a script contains
	// a single statement, potentially spanning multiple lines, with no
	// explicit separator. A script should not actually contain this value.
	EOFSeparator = "^^^ END OF SCRIPT ^^^"

	// DefaultCommentPrefix is the default prefix for single-line comments.
	DefaultCommentPrefix = "--"

	// DefaultBlockCommentStart is the default start delimiter for block comments.
	DefaultBlockCommentStart = "/*"

	// DefaultBlockCommentEnd is the default end delimiter for block comments.
	DefaultBlockCommentEnd = "*/"
)

// ResolveSeparator decides the effective separator for a script. An empty
// separator resolves to DefaultSeparator. The EOFSeparator sentinel is kept
// as-is so the whole script degenerates to a single statement. Any other
// separator that never occurs in the script outside a single-quoted literal
// falls back to FallbackSeparator, which accommodates scripts delimited by
// line breaks only.
func ResolveSeparator(script, separator string) string {
	if separator == "" {
		separator = DefaultSeparator
	}
	if separator != EOFSeparator && !ContainsDelimiters(script, separator) {
		separator = FallbackSeparator
	}

	return separator
}

// ContainsDelimiters reports whether the script contains the delimiter
// outside of a single-quoted literal. Double quotes are intentionally not
// tracked here; only the statement splitter needs that level of fidelity.
func ContainsDelimiters(script, delim string) bool {
	inLiteral := false
	for i := 0; i < len(script); i++ {
		if script[i] == '\'' {
			inLiteral = !inLiteral
		}
		if !inLiteral && strings.HasPrefix(script[i:], delim) {
			return true
		}
	}

	return false
}
