package issho

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/rileyhilliard/issho/internal/util"
)

// Mode selects how a command's stdout is handled.
type Mode int

const (
	// ModeStream copies stdout to the session's Stdout as it arrives.
	ModeStream Mode = iota
	// ModeCapture collects stdout into Result.Output.
	ModeCapture
	// ModeBackground launches the command detached under nohup and returns
	// as soon as the launch does.
	ModeBackground
)

// String returns a human-readable name for the mode.
func (m Mode) String() string {
	switch m {
	case ModeStream:
		return "stream"
	case ModeCapture:
		return "capture"
	case ModeBackground:
		return "background"
	default:
		return "unknown"
	}
}

// ExecOptions tune a single Exec call.
type ExecOptions struct {
	Mode Mode

	// Debug logs the arguments and the final command line.
	Debug bool

	// Stdin is piped to the command when set.
	Stdin io.Reader
}

// Result is what a remote command produced.
type Result struct {
	// Output is the captured stdout; empty unless Mode is ModeCapture.
	Output string

	// ExitCode is the remote exit status. A non-zero code is not an error.
	ExitCode int
}

// OK reports whether the command exited zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Exec runs verb with args joined by spaces. Arguments are passed through
// verbatim; quote them with util.ShellQuote if they need it.
//
// Stderr always goes to the session's Stderr. The returned error is set
// only when the command couldn't be run; check Result.ExitCode for the
// command's own status.
func (s *Session) Exec(ctx context.Context, opts ExecOptions, verb string, args ...string) (Result, error) {
	conn, err := s.connection()
	if err != nil {
		return Result{ExitCode: -1}, err
	}

	cmd := util.BuildCommand(verb, args...)
	if opts.Mode == ModeBackground {
		cmd = util.WrapBackground(cmd)
	}

	if opts.Debug {
		s.log.Info("args: %q", args)
		s.log.Info("command: %s", cmd)
	} else {
		s.log.Debug("exec (%s): %s", opts.Mode, cmd)
	}

	ctx, cancel := s.commandContext(ctx)
	defer cancel()

	var captured bytes.Buffer
	stdout := s.stdout
	if opts.Mode == ModeCapture {
		stdout = &captured
	}

	code, err := conn.ExecStream(ctx, cmd, opts.Stdin, stdout, s.stderr)
	if err != nil {
		return Result{ExitCode: code}, err
	}
	if code != 0 {
		s.log.Debug("exit %d: %s", code, cmd)
	}

	return Result{Output: captured.String(), ExitCode: code}, nil
}

// Run streams a command named with underscores for spaces, so
// Run(ctx, "hadoop_fs", "-ls", "/") runs "hadoop fs -ls /".
func (s *Session) Run(ctx context.Context, name string, args ...string) (Result, error) {
	return s.Exec(ctx, ExecOptions{}, strings.ReplaceAll(name, "_", " "), args...)
}

// GetOutput runs a command and returns its stdout with trailing
// whitespace trimmed.
func (s *Session) GetOutput(ctx context.Context, verb string, args ...string) (string, error) {
	res, err := s.Exec(ctx, ExecOptions{Mode: ModeCapture}, verb, args...)
	if err != nil {
		return "", err
	}
	return trimOutput(res.Output), nil
}

// ExecBackground launches a command detached under nohup.
func (s *Session) ExecBackground(ctx context.Context, verb string, args ...string) (Result, error) {
	return s.Exec(ctx, ExecOptions{Mode: ModeBackground}, verb, args...)
}

// Remove deletes a remote file.
func (s *Session) Remove(ctx context.Context, path string) (Result, error) {
	return s.Exec(ctx, ExecOptions{}, "rm", path)
}

// Hadoop runs a filesystem subcommand through the profile's HDFS tool:
// Hadoop(ctx, "ls", "/data") runs "hadoop fs -ls /data". Leading dashes on
// sub are optional.
func (s *Session) Hadoop(ctx context.Context, sub string, args ...string) (Result, error) {
	verb := s.config.HDFSCommand + " -" + strings.TrimLeft(sub, "-")
	return s.Exec(ctx, ExecOptions{}, verb, args...)
}

// HDFS is an alias for Hadoop.
func (s *Session) HDFS(ctx context.Context, sub string, args ...string) (Result, error) {
	return s.Hadoop(ctx, sub, args...)
}
