// Package logging prepares captured test output for submission and
// local persistence.
package logging

import (
	"strings"

	"github.com/acarl005/stripansi"
)

// StripANSI removes ANSI escape sequences from test output. Test
// frameworks and loggers commonly colorize their output; the escape
// sequences are noise in a submitted report.
func StripANSI(s string) string {
	return stripansi.Strip(s)
}

// Sanitize prepares captured test output for submission to the result
// sink: ANSI escape sequences are stripped and trailing newlines are
// dropped. The original output is left untouched for local display.
func Sanitize(s string) string {
	return strings.TrimRight(stripansi.Strip(s), "\n")
}
