package submit

import "strings"

// Query is a beeline run of a SQL file that already sits on the remote host.
type Query struct {
	// Options is the raw HIVE_OPTS string from the profile.
	Options string

	// JDBC is the connection URL passed with -u.
	JDBC string

	// File is the remote path of the .sql file.
	File string

	// RemoveBlankTopLine pipes the output through sed 1d; beeline prints a
	// blank first line before results.
	RemoveBlankTopLine bool

	// OutputFile, when set, redirects results into this remote file.
	OutputFile string
}

// OutputPath is where results for file are written on the remote host.
func OutputPath(file string) string {
	return file + ".output"
}

// Command renders the beeline command line, omitting empty segments.
func (q Query) Command() string {
	parts := []string{"beeline"}
	if opts := strings.TrimSpace(q.Options); opts != "" {
		parts = append(parts, opts)
	}
	if q.JDBC != "" {
		parts = append(parts, `-u "`+q.JDBC+`"`)
	}
	parts = append(parts, "-f", q.File)
	if q.RemoveBlankTopLine {
		parts = append(parts, "| sed 1d")
	}
	if q.OutputFile != "" {
		parts = append(parts, "> "+q.OutputFile)
	}
	return strings.Join(parts, " ")
}
