package splitter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrCannotReadScript indicates the script source could not be read.
var ErrCannotReadScript = errors.New("cannot read SQL script")

// ReadScript reads a script from r and builds a string containing its
// lines. Lines beginning with the comment prefix are excluded; line
// comments anywhere else, for example within a statement, are kept.
// When the script ends with the trimmed form of a separator that itself
// ends in whitespace, that trailing whitespace is appended so the last
// separator still matches during splitting.
func ReadScript(r io.Reader, commentPrefix, separator string) (string, error) {
	var sb strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if commentPrefix != "" && strings.HasPrefix(line, commentPrefix) {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(line)
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", ErrCannotReadScript, err)
	}

	return appendSeparatorIfNecessary(sb.String(), separator), nil
}

// appendSeparatorIfNecessary restores trailing separator whitespace. A
// separator such as ";\n" loses its newline when the script is rebuilt
// line by line; if the script ends in the separator's trimmed form the
// whitespace tail is put back.
func appendSeparatorIfNecessary(script, separator string) string {
	if separator == "" {
		return script
	}
	trimmed := strings.TrimSpace(separator)
	if len(trimmed) == len(separator) {
		return script
	}
	if strings.HasSuffix(script, trimmed) {
		return script + separator[len(trimmed):]
	}

	return script
}
