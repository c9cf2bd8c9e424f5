// Package util provides common utility functions used across the codebase.
package util

import "strings"

// ShellQuote wraps a string in single quotes, escaping any existing single quotes.
// This is safe for use in shell commands where the string should be treated literally.
func ShellQuote(s string) string {
	// Replace ' with '\'' (end quote, escaped quote, start quote)
	escaped := strings.ReplaceAll(s, "'", "'\\''")
	return "'" + escaped + "'"
}

// BuildCommand joins a verb and its arguments into one shell command.
// Arguments are inserted verbatim, in order; quoting is the caller's job.
// An empty verb yields just the arguments.
func BuildCommand(verb string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	if verb != "" {
		parts = append(parts, verb)
	}
	parts = append(parts, args...)
	return strings.Join(parts, " ")
}

const (
	backgroundPrefix = `cmd=$"`
	backgroundSuffix = `"; nohup bash -c "$cmd" > /dev/null 2>&1 < /dev/null &`
)

// WrapBackground turns cmd into a launcher that runs it detached under nohup.
// The command is embedded as a double-quoted literal, so embedded double
// quotes are escaped to keep the literal a single shell token.
//
// The detached process gets its own stdio. If it inherited the exec
// channel's pipes, the channel would stay open until the job exited.
func WrapBackground(cmd string) string {
	return backgroundPrefix + strings.ReplaceAll(cmd, `"`, `\"`) + backgroundSuffix
}

// UnwrapBackground reverses WrapBackground.
// The second return value is false when s is not a background launcher.
func UnwrapBackground(s string) (string, bool) {
	if !strings.HasPrefix(s, backgroundPrefix) || !strings.HasSuffix(s, backgroundSuffix) {
		return "", false
	}
	inner := s[len(backgroundPrefix) : len(s)-len(backgroundSuffix)]
	return strings.ReplaceAll(inner, `\"`, `"`), true
}
