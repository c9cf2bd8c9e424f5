package sshutil

import (
	"context"
	"io"
)

// ProgressFunc receives the cumulative bytes transferred and the total size
// of the file being transferred. It is called repeatedly during a transfer
// and must not block for long.
type ProgressFunc func(transferred, total int64)

// Conn is one authenticated connection to a remote host.
// Both the real Client and the mock in sshutil/testing satisfy it.
//
// A Conn is not meant for concurrent use by several callers; each session
// owns its own Conn.
type Conn interface {
	// ExecStream runs a command, wiring stdin (may be nil) and streaming
	// stdout and stderr to the given writers as output arrives.
	// A non-zero exit code with nil error means the command ran but failed.
	// Exit code is -1 if the command couldn't be executed at all.
	ExecStream(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int, err error)

	// Upload copies a local file to the remote host over a fresh SFTP
	// channel that is closed before returning.
	Upload(ctx context.Context, localPath, remotePath string, progress ProgressFunc) error

	// Download copies a remote file to the local machine over a fresh SFTP
	// channel that is closed before returning.
	Download(ctx context.Context, remotePath, localPath string, progress ProgressFunc) error

	// Forward starts a local port forward through the connection.
	// The returned Tunnel outlives the call; the caller must Stop it.
	Forward(ctx context.Context, spec TunnelSpec) (*Tunnel, error)

	// Close closes the connection.
	Close() error

	// GetHost returns the original host/alias used to connect.
	GetHost() string

	// GetAddress returns the resolved host:port address.
	GetAddress() string
}
