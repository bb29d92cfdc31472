package splitter

import (
	"errors"
	"fmt"
	"strings"
)

// Splitter errors
var (
	// ErrEmptyScript indicates the script was empty or whitespace only.
	ErrEmptyScript = errors.New("script must not be empty")
	// ErrMissingSeparator indicates no statement separator was supplied.
	ErrMissingSeparator = errors.New("statement separator must not be empty")
	// ErrEmptyCommentPrefix indicates the line comment prefix was empty.
	ErrEmptyCommentPrefix = errors.New("comment prefix must not be empty")
	// ErrEmptyBlockCommentDelimiter indicates a block comment delimiter was empty.
	ErrEmptyBlockCommentDelimiter = errors.New("block comment delimiter must not be empty")
	// ErrUnterminatedBlockComment indicates a block comment was not properly terminated.
	ErrUnterminatedBlockComment = errors.New("missing block comment end delimiter")
)

// Statement is one executable unit extracted from a script. Statements
// are immutable once emitted; Index is 1-based and follows lexical order.
type Statement struct {
	Text     string
	Index    int
	Resource string
}

// Split splits an SQL script into separate statements delimited by the
// provided separator. Text from the comment prefix to the end of the
// line and text enclosed in block comments are omitted from the output,
// and runs of adjacent whitespace collapse into a single space. Content
// inside single or double quoted literals is copied verbatim, including
// separators and comment markers. Backslash escapes the next character
// (MySQL style) before any quote handling applies.
//
// resource identifies the script origin and is only used for diagnostics.
func Split(resource, script, separator, commentPrefix, blockCommentStart, blockCommentEnd string) ([]Statement, error) {
	if strings.TrimSpace(script) == "" {
		return nil, ErrEmptyScript
	}
	if separator == "" {
		return nil, ErrMissingSeparator
	}
	if commentPrefix == "" {
		return nil, ErrEmptyCommentPrefix
	}
	if blockCommentStart == "" || blockCommentEnd == "" {
		return nil, ErrEmptyBlockCommentDelimiter
	}

	var (
		statements    []Statement
		sb            strings.Builder
		inSingleQuote bool
		inDoubleQuote bool
		inEscape      bool
	)

	emit := func(text string) {
		statements = append(statements, Statement{
			Text:     text,
			Index:    len(statements) + 1,
			Resource: resource,
		})
	}

	for i := 0; i < len(script); i++ {
		c := script[i]
		if inEscape {
			inEscape = false
			sb.WriteByte(c)

			continue
		}
		if c == '\\' {
			inEscape = true
			sb.WriteByte(c)

			continue
		}
		if !inDoubleQuote && c == '\'' {
			inSingleQuote = !inSingleQuote
		} else if !inSingleQuote && c == '"' {
			inDoubleQuote = !inDoubleQuote
		}
		if !inSingleQuote && !inDoubleQuote {
			rest := script[i:]
			switch {
			case strings.HasPrefix(rest, separator):
				// End of the current statement.
				if sb.Len() > 0 {
					emit(sb.String())
					sb.Reset()
				}
				i += len(separator) - 1

				continue
			case strings.HasPrefix(rest, commentPrefix):
				// Skip from the comment prefix to the end of the line.
				if nl := strings.IndexByte(rest, '\n'); nl > 0 {
					i += nl

					continue
				}
				// No EOL left, so the comment runs to the end of the script.
				i = len(script)

				continue
			case strings.HasPrefix(rest, blockCommentStart):
				end := strings.Index(rest, blockCommentEnd)
				if end <= 0 {
					return nil, fmt.Errorf("%w %q in script %q", ErrUnterminatedBlockComment, blockCommentEnd, resource)
				}
				i += end + len(blockCommentEnd) - 1

				continue
			case c == ' ' || c == '\n' || c == '\t':
				// Collapse adjacent whitespace into one space.
				if sb.Len() == 0 || sb.String()[sb.Len()-1] == ' ' {
					continue
				}
				c = ' '
			}
		}
		sb.WriteByte(c)
	}

	if strings.TrimSpace(sb.String()) != "" {
		emit(sb.String())
	}

	return statements, nil
}
