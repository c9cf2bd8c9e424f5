package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"

	"github.com/rileyhilliard/issho/internal/errors"
	"golang.org/x/crypto/ssh"
)

// ExecStream runs a command and streams output to the provided writers.
// stdin may be nil. Returns the exit code and any error.
// Exit code is -1 if the command couldn't be executed at all.
//
// Cancelling ctx signals the remote process and closes the channel; the
// returned error then wraps ctx.Err().
func (c *Client) ExecStream(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int, err error) {
	session, err := c.NewSession()
	if err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	if stdin != nil {
		session.Stdin = stdin
	}
	session.Stdout = stdout
	session.Stderr = stderr

	if err := session.Start(cmd); err != nil {
		return -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Failed to start command: %s", cmd),
			"Connection may have been closed. Try reconnecting.")
	}

	done := make(chan error, 1)
	go func() { done <- session.Wait() }()

	select {
	case err = <-done:
	case <-ctx.Done():
		_ = session.Signal(ssh.SIGKILL)
		session.Close()
		<-done
		return -1, errors.WrapWithCode(ctx.Err(), errors.ErrExec,
			fmt.Sprintf("Command cancelled: %s", cmd),
			"Raise COMMAND_TIMEOUT for this profile if the command needs longer.")
	}

	return exitStatus(cmd, err)
}

// exitStatus turns a session result into an exit code.
// A non-zero exit is not an error; the command ran.
func exitStatus(cmd string, err error) (int, error) {
	if err == nil {
		return 0, nil
	}

	var exitErr *ssh.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitStatus(), nil
	}

	var missing *ssh.ExitMissingError
	if stderrors.As(err, &missing) {
		return -1, errors.WrapWithCode(err, errors.ErrExec,
			fmt.Sprintf("Remote side closed without an exit status: %s", cmd),
			"The connection may have dropped mid-command.")
	}

	return -1, errors.WrapWithCode(err, errors.ErrExec,
		fmt.Sprintf("Failed to execute command: %s", cmd),
		"Check if the command exists on the remote host.")
}
