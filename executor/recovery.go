package executor

import "strings"

// blockState drives the per-line accumulation inside one CREATE-bounded
// chunk of the raw script.
type blockState int

const (
	// accumulating appends lines to the block body.
	accumulating blockState = iota
	// prefixCaptured keeps appending lines but the first-create prefix is
	// frozen; a DML line showed that the chunk carries trailing data rows.
	prefixCaptured
	// stopped ends accumulation for the chunk entirely.
	stopped
)

// recoveryBlock is one textual unit rebuilt directly from the raw script,
// independent of the splitter output. prefix holds the body accumulated up
// to the first DML line and serves as the fallback statement when the full
// body fails.
type recoveryBlock struct {
	body   string
	prefix string
}

// buildRecoveryBlock walks the lines of one CREATE-bounded chunk. Tool
// banner lines ("prompt ...") and bare "/" terminators are dropped; every
// other line is appended followed by a newline. The first insert/update/
// delete line freezes the prefix, the first alter/comment/commit/drop line
// freezes it and stops the walk.
func buildRecoveryBlock(lines []string) recoveryBlock {
	var body strings.Builder

	var prefix string

	state := accumulating

	for _, line := range lines {
		if startsWithKeyword(line, "insert ", "update ", "delete ") {
			if state == accumulating {
				prefix = body.String()
				state = prefixCaptured
			}
		} else if startsWithKeyword(line, "alter ", "comment ", "commit ", "drop ") {
			if state == accumulating {
				prefix = body.String()
			}
			state = stopped

			break
		}

		if strings.HasPrefix(line, "prompt") || strings.HasPrefix(line, "PROMPT") || line == "/" {
			continue
		}
		body.WriteString(line)
		body.WriteString("\n")
	}

	// A chunk without DML or stop lines keeps an empty prefix; there is
	// nothing narrower than the body to fall back to.
	return recoveryBlock{body: body.String(), prefix: prefix}
}

// repair applies the same export-tool cleanup the preprocessor performs on
// split statements, plus the procedural-block fix: a body containing a
// begin marker is truncated to end exactly at its last END keyword.
func (b recoveryBlock) repair() recoveryBlock {
	body := strings.ReplaceAll(b.body, "spool off", " ")
	if strings.HasSuffix(body, "/") {
		body = body[:strings.LastIndex(body, "/")]
	}
	if strings.Contains(body, "begin") || strings.Contains(body, "BEGIN") {
		body = strings.ReplaceAll(body, "end", "END")
		if idx := strings.LastIndex(body, "END"); idx >= 0 {
			body = body[:idx] + " END;"
		}
	}

	prefix := strings.ReplaceAll(b.prefix, "spool off", " ")
	if strings.HasSuffix(prefix, "/") {
		prefix = prefix[:strings.LastIndex(prefix, "/")]
	}

	return recoveryBlock{body: body, prefix: prefix}
}
