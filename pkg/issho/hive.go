package issho

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/submit"
	"github.com/rileyhilliard/issho/internal/util"
)

// HiveOptions tune a Hive run.
type HiveOptions struct {
	// OutputFile is a local path to save the results to. The results also
	// stay on the remote host next to the uploaded query.
	OutputFile string

	// KeepBlankTopLine keeps beeline's blank first output line.
	KeepBlankTopLine bool
}

// IsQueryFile reports whether query names a SQL file rather than holding
// the SQL itself.
func IsQueryFile(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	return strings.HasSuffix(q, ".sql") || strings.HasSuffix(q, ".hql")
}

// Hive runs a query with beeline using the profile's HIVE_OPTS and
// HIVE_JDBC. query is either SQL text or the path of a local .sql/.hql
// file. The query is uploaded to TMP_DIR on the remote host and run from
// there.
func (s *Session) Hive(ctx context.Context, query string, opts HiveOptions) (Result, error) {
	remoteSQL := util.TempName(s.config.TmpDir, "issho", "sql")
	localSQL := filepath.Join(os.TempDir(), path.Base(remoteSQL))

	if err := writeQuery(query, localSQL); err != nil {
		return Result{ExitCode: -1}, err
	}
	defer os.Remove(localSQL)

	if err := s.Put(ctx, localSQL, remoteSQL, false); err != nil {
		return Result{ExitCode: -1}, err
	}

	q := submit.Query{
		Options:            s.config.HiveOpts,
		JDBC:               s.config.HiveJDBC,
		File:               remoteSQL,
		RemoveBlankTopLine: !opts.KeepBlankTopLine,
	}
	if opts.OutputFile != "" {
		q.OutputFile = submit.OutputPath(remoteSQL)
	}

	res, err := s.Exec(ctx, ExecOptions{}, q.Command())
	if err != nil {
		return res, err
	}

	if opts.OutputFile != "" {
		if !res.OK() {
			s.log.Warn("beeline exited %d; fetching whatever output it wrote", res.ExitCode)
		}
		if err := s.Get(ctx, q.OutputFile, opts.OutputFile, false); err != nil {
			return res, err
		}
	}
	return res, nil
}

// writeQuery puts the SQL at dst, copying it from a file when query
// names one.
func writeQuery(query, dst string) error {
	content := []byte(query)
	if IsQueryFile(query) {
		src := strings.TrimSpace(query)
		data, err := os.ReadFile(src)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrTransfer,
				fmt.Sprintf("Can't read query file %s", src),
				"Pass SQL text, or the path of an existing .sql/.hql file.")
		}
		content = data
	}

	if err := os.WriteFile(dst, content, 0600); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't stage query at %s", dst),
			"Check the temp directory is writable.")
	}
	return nil
}
