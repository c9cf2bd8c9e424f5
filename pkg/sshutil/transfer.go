package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pkg/sftp"
	"github.com/rileyhilliard/issho/internal/errors"
)

// copyBufferSize matches the SFTP max packet so each write is one request.
const copyBufferSize = 32 * 1024

// Download copies remotePath to localPath. The local file is created or
// truncated; a missing remote file is an ErrTransfer error.
func (c *Client) Download(ctx context.Context, remotePath, localPath string, progress ProgressFunc) error {
	sc, err := c.openSFTP()
	if err != nil {
		return err
	}
	defer sc.Close()

	src, err := sc.Open(remotePath)
	if err != nil {
		return remoteOpenError(err, remotePath, c.Host)
	}
	defer src.Close()

	var total int64
	if info, err := src.Stat(); err == nil {
		total = info.Size()
	}

	dst, err := os.Create(localPath)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't write local file %s", localPath),
			"Check the directory exists and is writable.")
	}

	if err := copyWithProgress(ctx, dst, src, total, progress); err != nil {
		dst.Close()
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Download of %s from '%s' failed", remotePath, c.Host),
			"The connection may have dropped. Try again.")
	}

	if err := dst.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't finish writing %s", localPath),
			"Check free disk space.")
	}
	log.Debug("downloaded %s:%s -> %s (%d bytes)", c.Host, remotePath, localPath, total)
	return nil
}

// Upload copies localPath to remotePath, creating or truncating the remote
// file. A missing local file is an ErrTransfer error.
func (c *Client) Upload(ctx context.Context, localPath, remotePath string, progress ProgressFunc) error {
	src, err := os.Open(localPath)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return errors.New(errors.ErrTransfer,
				fmt.Sprintf("Local file %s doesn't exist", localPath),
				"Check the path and try again.")
		}
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't read local file %s", localPath),
			"Check the file permissions.")
	}
	defer src.Close()

	info, err := src.Stat()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't stat local file %s", localPath), "")
	}
	if info.IsDir() {
		return errors.New(errors.ErrTransfer,
			fmt.Sprintf("%s is a directory", localPath),
			"Only single files can be transferred. Tar the directory first.")
	}

	sc, err := c.openSFTP()
	if err != nil {
		return err
	}
	defer sc.Close()

	dst, err := sc.OpenFile(remotePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't write %s on '%s'", remotePath, c.Host),
			"Check the remote directory exists and is writable.")
	}

	if err := copyWithProgress(ctx, dst, src, info.Size(), progress); err != nil {
		dst.Close()
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Upload of %s to '%s' failed", localPath, c.Host),
			"The connection may have dropped. Try again.")
	}

	if err := dst.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Can't finish writing %s on '%s'", remotePath, c.Host),
			"Check free space on the remote host.")
	}
	log.Debug("uploaded %s -> %s:%s (%d bytes)", localPath, c.Host, remotePath, info.Size())
	return nil
}

// openSFTP starts a file-transfer subsystem on the connection.
// The caller closes it when the transfer is done.
func (c *Client) openSFTP() (*sftp.Client, error) {
	sc, err := sftp.NewClient(c.Client)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't open a file transfer channel to '%s'", c.Host),
			"Check that the sftp subsystem is enabled in the host's sshd_config.")
	}
	return sc, nil
}

func remoteOpenError(err error, remotePath, host string) error {
	if stderrors.Is(err, fs.ErrNotExist) {
		return errors.New(errors.ErrTransfer,
			fmt.Sprintf("Remote file %s doesn't exist on '%s'", remotePath, host),
			"Check the path with: issho exec ls "+remotePath)
	}
	if stderrors.Is(err, fs.ErrPermission) {
		return errors.WrapWithCode(err, errors.ErrTransfer,
			fmt.Sprintf("Permission denied reading %s on '%s'", remotePath, host), "")
	}
	return errors.WrapWithCode(err, errors.ErrTransfer,
		fmt.Sprintf("Can't open %s on '%s'", remotePath, host), "")
}

// progressWriter counts bytes as they pass and stops the copy once the
// context is done.
type progressWriter struct {
	ctx      context.Context
	w        io.Writer
	written  int64
	total    int64
	progress ProgressFunc
}

func (p *progressWriter) Write(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.w.Write(b)
	p.written += int64(n)
	if p.progress != nil {
		p.progress(p.written, p.total)
	}
	return n, err
}

// copyWithProgress copies src to dst, reporting cumulative progress.
// A final report is always made so callers see completion even for empty files.
func copyWithProgress(ctx context.Context, dst io.Writer, src io.Reader, total int64, progress ProgressFunc) error {
	pw := &progressWriter{ctx: ctx, w: dst, total: total, progress: progress}
	buf := make([]byte, copyBufferSize)
	if _, err := io.CopyBuffer(pw, src, buf); err != nil {
		return err
	}
	if pw.written == 0 && progress != nil {
		progress(0, total)
	}
	return nil
}
