package issho

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// hdfsScheme on a remote path means the file lives in HDFS, not on the
// remote host's disk.
const hdfsScheme = "hdfs:"

// TextProgress reports transfers as a single rewritten line on w:
// "1.2 MB transferred out of a total of 4.8 MB". A total of 0 means the
// size is unknown, so the line is only ended for an empty file's single
// (0, 0) report.
func TextProgress(w io.Writer) sshutil.ProgressFunc {
	return func(transferred, total int64) {
		fmt.Fprintf(w, "\r%s transferred out of a total of %s",
			humanize.Bytes(uint64(transferred)), humanize.Bytes(uint64(total)))
		if transferred >= total && (total > 0 || transferred == 0) {
			fmt.Fprintln(w)
		}
	}
}

// Get copies remote to local. Either path may be empty, in which case it
// takes the last segment of the other. A remote path starting with hdfs:,
// or viaHDFS, stages the file out of HDFS through TMP_DIR on the remote
// host first: HDFS get into a temp file, download it, then remove it. The
// temp file is left behind if the download fails.
func (s *Session) Get(ctx context.Context, remote, local string, viaHDFS bool) error {
	local, remote, err := s.resolvePaths(local, remote)
	if err != nil {
		return err
	}
	if strings.HasPrefix(remote, hdfsScheme) {
		viaHDFS = true
	}

	conn, err := s.connection()
	if err != nil {
		return err
	}

	if !viaHDFS {
		return conn.Download(ctx, remote, local, s.progress)
	}

	tmp := util.TempName(s.config.TmpDir, util.SanitizeName(remote), "")
	res, err := s.Hadoop(ctx, "get", "-f", remote, tmp)
	if err != nil {
		return err
	}
	if !res.OK() {
		return bridgeError("get", remote, res.ExitCode)
	}

	if err := conn.Download(ctx, tmp, local, s.progress); err != nil {
		return err
	}

	s.cleanup(ctx, tmp)
	return nil
}

// Put copies local to remote, defaulting a missing path as Get does. With
// an hdfs: remote or viaHDFS, the file is uploaded to a temp file in
// TMP_DIR, put into HDFS, then the temp file is removed. The temp file is
// left behind if the upload fails.
func (s *Session) Put(ctx context.Context, local, remote string, viaHDFS bool) error {
	local, remote, err := s.resolvePaths(local, remote)
	if err != nil {
		return err
	}
	if strings.HasPrefix(remote, hdfsScheme) {
		viaHDFS = true
	}

	conn, err := s.connection()
	if err != nil {
		return err
	}

	if !viaHDFS {
		return conn.Upload(ctx, local, remote, s.progress)
	}

	tmp := util.TempName(s.config.TmpDir, util.SanitizeName(local), "")
	if err := conn.Upload(ctx, local, tmp, s.progress); err != nil {
		return err
	}

	res, bridgeErr := s.Hadoop(ctx, "put", tmp, remote)
	s.cleanup(ctx, tmp)

	if bridgeErr != nil {
		return bridgeErr
	}
	if !res.OK() {
		return bridgeError("put", remote, res.ExitCode)
	}
	return nil
}

// resolvePaths fills in a missing side and expands ~ on each side against
// the right home directory.
func (s *Session) resolvePaths(local, remote string) (string, string, error) {
	if local == "" && remote == "" {
		return "", "", errors.New(errors.ErrTransfer,
			"A transfer needs at least one path",
			"Pass the remote path, the local path, or both.")
	}

	// The scheme isn't part of the file name a local path defaults to.
	local, resolved := util.ResolvePair(local, strings.TrimPrefix(remote, hdfsScheme))
	if remote == "" {
		remote = resolved
	}

	return config.ExpandTilde(local), util.ExpandRemoteHome(remote, s.home), nil
}

// cleanup removes a staging file. A failed rm is logged, not returned: the
// transfer itself already succeeded.
func (s *Session) cleanup(ctx context.Context, tmp string) {
	res, err := s.Remove(ctx, tmp)
	if err != nil {
		s.log.Warn("couldn't remove staging file %s: %v", tmp, err)
		return
	}
	if !res.OK() {
		s.log.Warn("rm %s exited %d; staging file may be left behind", tmp, res.ExitCode)
	}
}

func bridgeError(verb, remote string, code int) error {
	return errors.New(errors.ErrTransfer,
		fmt.Sprintf("HDFS %s of %s exited %d", verb, remote, code),
		"Check the HDFS path and your Kerberos ticket (klist).")
}
