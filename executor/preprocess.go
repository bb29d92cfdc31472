package executor

import "strings"

const promptToken = "prompt"

// preprocessStatement strips artifacts that database export tools leave
// behind when their output gets merged into a single statement upstream:
// "prompt" banner lines, the "spool off" output-control directive, and a
// trailing "/" block terminator. Already-clean statements pass through
// unchanged, so applying it twice is safe.
//
// Order matters: prompt chatter first, then spool off, then the trailing
// slash.
func preprocessStatement(statement string) string {
	if strings.Contains(statement, promptToken) {
		// Three or more prompt occurrences means leading tool chatter got
		// collapsed into this statement; only the text after the last
		// prompt is real SQL.
		if len(strings.Split(statement, promptToken)) > 3 {
			statement = statement[strings.LastIndex(statement, promptToken)+len(promptToken):]
		}
	}
	if strings.Contains(statement, "spool off") {
		statement = strings.ReplaceAll(statement, "spool off", " ")
	}
	if strings.HasSuffix(statement, "/") {
		statement = statement[:strings.LastIndex(statement, "/")]
	}

	return statement
}

// startsWithKeyword reports whether the trimmed, lower-cased statement
// begins with any of the given lower-case keywords.
func startsWithKeyword(statement string, keywords ...string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(statement))
	for _, kw := range keywords {
		if strings.HasPrefix(trimmed, kw) {
			return true
		}
	}

	return false
}
