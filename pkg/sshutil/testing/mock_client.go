package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	isshoerrors "github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// CommandResponse defines a canned response for a specific command pattern.
type CommandResponse struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Error    error
}

// CallKind identifies which Conn method a recorded call went through.
type CallKind string

const (
	CallExec     CallKind = "exec"
	CallUpload   CallKind = "upload"
	CallDownload CallKind = "download"
	CallForward  CallKind = "forward"
)

// Call is one recorded interaction with the mock.
type Call struct {
	Kind CallKind

	// Command is the command as sent, for exec calls.
	Command string

	// Background is set when Command was a nohup launcher; Inner holds the
	// command it wraps.
	Background bool
	Inner      string

	// Stdin is whatever the caller piped into the command.
	Stdin []byte

	// Local and Remote are the transfer endpoints.
	Local  string
	Remote string

	Tunnel sshutil.TunnelSpec
}

type cannedResponse struct {
	pattern string
	resp    CommandResponse
}

// MockClient simulates an SSH connection for testing.
// It records every call in order, and runs a handful of shell and hadoop
// commands against a virtual filesystem. File transfers move bytes between
// the real local disk and that filesystem.
type MockClient struct {
	mu        sync.Mutex
	host      string
	address   string
	home      string
	fs        *MockFS
	closed    bool
	responses []cannedResponse
	calls     []Call

	// Echo makes every command print itself followed by a newline instead
	// of being interpreted.
	Echo bool

	// UploadErr and DownloadErr make the matching transfer fail.
	UploadErr   error
	DownloadErr error

	// ForwardErr makes Forward fail before binding anything.
	ForwardErr error

	// ForwardDial replaces the far-side dialer for tunnels. Defaults to a
	// direct net.Dial, so a tunnel to a local test server works end to end.
	ForwardDial sshutil.DialFunc
}

var _ sshutil.Conn = (*MockClient)(nil)

// NewMockClient creates a new mock SSH client with an empty filesystem.
// The remote home directory is /home/<host>.
func NewMockClient(host string) *MockClient {
	home := "/home/" + host
	m := &MockClient{
		host:    host,
		address: host + ":22",
		home:    home,
		fs:      NewMockFS(),
	}
	_ = m.fs.MkdirAll(home)
	_ = m.fs.MkdirAll("/tmp")
	return m
}

// ExecStream records the command and writes its simulated output.
func (m *MockClient) ExecStream(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr io.Writer) (exitCode int, err error) {
	select {
	case <-ctx.Done():
		return -1, ctx.Err()
	default:
	}

	call := Call{Kind: CallExec, Command: cmd}
	if stdin != nil {
		call.Stdin, _ = io.ReadAll(stdin)
	}
	if inner, ok := util.UnwrapBackground(cmd); ok {
		call.Background = true
		call.Inner = inner
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return -1, errors.New("connection closed")
	}
	m.calls = append(m.calls, call)
	out, errOut, code, execErr := m.respond(cmd, call)
	m.mu.Unlock()

	if execErr != nil {
		return -1, execErr
	}
	if stdout != nil && len(out) > 0 {
		_, _ = stdout.Write(out)
	}
	if stderr != nil && len(errOut) > 0 {
		_, _ = stderr.Write(errOut)
	}
	return code, nil
}

// respond picks canned, echo, or simulated output. Caller holds m.mu.
func (m *MockClient) respond(cmd string, call Call) (stdout, stderr []byte, exitCode int, err error) {
	// "<cmd> > <file>" writes what <cmd> prints into the virtual filesystem.
	if !m.Echo && !call.Background {
		if inner, target, ok := splitRedirect(cmd); ok {
			out, errOut, code, err := m.respond(inner, Call{})
			if err == nil {
				_ = m.fs.WriteFile(target, out)
			}
			return nil, errOut, code, err
		}
	}

	if resp, ok := m.canned(cmd); ok {
		return resp.Stdout, resp.Stderr, resp.ExitCode, resp.Error
	}

	if m.Echo {
		return []byte(cmd + "\n"), nil, 0, nil
	}

	// A detached launcher returns at once with no output.
	if call.Background {
		return nil, nil, 0, nil
	}

	return m.parseAndExecute(cmd)
}

// canned finds a registered response: exact matches first, then patterns
// in registration order.
func (m *MockClient) canned(cmd string) (CommandResponse, bool) {
	for _, c := range m.responses {
		if c.pattern == cmd {
			return c.resp, true
		}
	}
	for _, c := range m.responses {
		if matched, _ := regexp.MatchString(c.pattern, cmd); matched {
			return c.resp, true
		}
	}
	return CommandResponse{}, false
}

func splitRedirect(cmd string) (inner, target string, ok bool) {
	idx := strings.LastIndex(cmd, " > ")
	if idx < 0 {
		return "", "", false
	}
	target = extractPath(cmd[idx+3:])
	if target == "" || strings.ContainsAny(target, " |;&") {
		return "", "", false
	}
	return strings.TrimSpace(cmd[:idx]), target, true
}

// Upload copies a real local file into the virtual filesystem.
func (m *MockClient) Upload(ctx context.Context, localPath, remotePath string, progress sshutil.ProgressFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New("connection closed")
	}
	m.calls = append(m.calls, Call{Kind: CallUpload, Local: localPath, Remote: remotePath})

	if m.UploadErr != nil {
		return m.UploadErr
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return isshoerrors.WrapWithCode(err, isshoerrors.ErrTransfer,
			fmt.Sprintf("Local file %s doesn't exist", localPath), "")
	}
	if err := m.fs.WriteFile(remotePath, content); err != nil {
		return isshoerrors.WrapWithCode(err, isshoerrors.ErrTransfer,
			fmt.Sprintf("Can't write %s on '%s'", remotePath, m.host), "")
	}
	if progress != nil {
		progress(int64(len(content)), int64(len(content)))
	}
	return nil
}

// Download copies a file from the virtual filesystem onto the real local disk.
func (m *MockClient) Download(ctx context.Context, remotePath, localPath string, progress sshutil.ProgressFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return errors.New("connection closed")
	}
	m.calls = append(m.calls, Call{Kind: CallDownload, Local: localPath, Remote: remotePath})

	if m.DownloadErr != nil {
		return m.DownloadErr
	}

	content, err := m.fs.ReadFile(remotePath)
	if err != nil {
		return isshoerrors.New(isshoerrors.ErrTransfer,
			fmt.Sprintf("Remote file %s doesn't exist on '%s'", remotePath, m.host), "")
	}
	if err := os.WriteFile(localPath, content, 0644); err != nil {
		return isshoerrors.WrapWithCode(err, isshoerrors.ErrTransfer,
			fmt.Sprintf("Can't write local file %s", localPath), "")
	}
	if progress != nil {
		progress(int64(len(content)), int64(len(content)))
	}
	return nil
}

// Forward starts a real tunnel whose far side is dialed with ForwardDial.
func (m *MockClient) Forward(ctx context.Context, spec sshutil.TunnelSpec) (*sshutil.Tunnel, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, errors.New("connection closed")
	}
	m.calls = append(m.calls, Call{Kind: CallForward, Tunnel: spec})
	forwardErr := m.ForwardErr
	dial := m.ForwardDial
	m.mu.Unlock()

	if forwardErr != nil {
		return nil, forwardErr
	}
	if dial == nil {
		dial = net.Dial
	}
	return sshutil.StartTunnel(ctx, spec, dial)
}

// Close marks the connection as closed.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// GetHost returns the host name.
func (m *MockClient) GetHost() string {
	return m.host
}

// GetAddress returns the host:port address.
func (m *MockClient) GetAddress() string {
	return m.address
}

// Home returns the simulated remote home directory.
func (m *MockClient) Home() string {
	return m.home
}

// SetCommandResponse registers a canned response for a command pattern.
// The pattern can be an exact string or a regex pattern. Exact matches
// win; otherwise patterns are tried in registration order.
func (m *MockClient) SetCommandResponse(pattern string, resp CommandResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, cannedResponse{pattern: pattern, resp: resp})
}

// GetFS returns the mock filesystem for direct manipulation in tests.
func (m *MockClient) GetFS() *MockFS {
	return m.fs
}

// Calls returns a copy of every recorded call in order.
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// Commands returns the commands sent through ExecStream, in order.
func (m *MockClient) Commands() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, c := range m.calls {
		if c.Kind == CallExec {
			out = append(out, c.Command)
		}
	}
	return out
}

// Kinds returns the kind of every recorded call, in order.
func (m *MockClient) Kinds() []CallKind {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CallKind, len(m.calls))
	for i, c := range m.calls {
		out[i] = c.Kind
	}
	return out
}

// Reset forgets recorded calls and reopens the connection, keeping the
// filesystem and responses.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
	m.closed = false
}

var (
	hdfsGetRe = regexp.MustCompile(`\s-get\s+(?:-f\s+)?(\S+)\s+(\S+)\s*$`)
	hdfsPutRe = regexp.MustCompile(`\s-put\s+(?:-f\s+)?(\S+)\s+(\S+)\s*$`)
)

// parseAndExecute handles the shell commands a session sends.
// Unknown commands succeed with no output.
func (m *MockClient) parseAndExecute(cmd string) (stdout, stderr []byte, exitCode int, err error) {
	cmd = strings.TrimSuffix(cmd, " 2>/dev/null")
	cmd = strings.TrimSpace(cmd)

	switch {
	case cmd == "echo $HOME":
		return []byte(m.home + "\n"), nil, 0, nil
	case strings.HasPrefix(cmd, "echo "):
		return []byte(strings.TrimPrefix(cmd, "echo ") + "\n"), nil, 0, nil
	case strings.HasPrefix(cmd, "mkdir "):
		return m.handleMkdir(cmd)
	case strings.HasPrefix(cmd, "cat "):
		return m.handleCatRead(cmd)
	case strings.HasPrefix(cmd, "rm "):
		return m.handleRm(cmd)
	case strings.HasPrefix(cmd, "test -f "):
		if m.fs.IsFile(extractPath(strings.TrimPrefix(cmd, "test -f "))) {
			return nil, nil, 0, nil
		}
		return nil, nil, 1, nil
	case hdfsGetRe.MatchString(cmd):
		match := hdfsGetRe.FindStringSubmatch(cmd)
		return m.copyFile("get", extractPath(match[1]), extractPath(match[2]))
	case hdfsPutRe.MatchString(cmd):
		match := hdfsPutRe.FindStringSubmatch(cmd)
		return m.copyFile("put", extractPath(match[1]), extractPath(match[2]))
	}

	return nil, nil, 0, nil
}

// copyFile stands in for the HDFS bridge: both sides live in the same
// virtual filesystem.
func (m *MockClient) copyFile(verb, src, dst string) ([]byte, []byte, int, error) {
	content, err := m.fs.ReadFile(src)
	if err != nil {
		return nil, []byte(fmt.Sprintf("%s: `%s': No such file or directory\n", verb, src)), 1, nil
	}
	_ = m.fs.WriteFile(dst, content)
	return nil, nil, 0, nil
}

// handleMkdir processes: mkdir [-p] "path" or mkdir [-p] path
func (m *MockClient) handleMkdir(cmd string) ([]byte, []byte, int, error) {
	args := strings.TrimSpace(strings.TrimPrefix(cmd, "mkdir "))

	createParents := false
	if strings.HasPrefix(args, "-p ") {
		createParents = true
		args = strings.TrimSpace(strings.TrimPrefix(args, "-p "))
	}

	path := extractPath(args)
	if path == "" {
		return nil, []byte("mkdir: missing operand"), 1, nil
	}

	if createParents {
		if err := m.fs.MkdirAll(path); err != nil {
			return nil, []byte("mkdir: cannot create directory: " + err.Error()), 1, nil
		}
		return nil, nil, 0, nil
	}

	parent := filepath.Dir(path)
	if parent != "" && parent != "/" && parent != "." && !m.fs.IsDir(parent) {
		return nil, []byte(fmt.Sprintf("mkdir: cannot create directory '%s': No such file or directory", path)), 1, nil
	}
	if err := m.fs.Mkdir(path); err != nil {
		return nil, []byte("mkdir: cannot create directory: " + err.Error()), 1, nil
	}
	return nil, nil, 0, nil
}

// handleCatRead processes: cat "path" or cat path
func (m *MockClient) handleCatRead(cmd string) ([]byte, []byte, int, error) {
	path := extractPath(strings.TrimPrefix(cmd, "cat "))
	if path == "" {
		return nil, []byte("cat: missing file operand"), 1, nil
	}

	content, err := m.fs.ReadFile(path)
	if err != nil {
		return nil, []byte("cat: " + path + ": No such file or directory"), 1, nil
	}
	return content, nil, 0, nil
}

// handleRm processes: rm [-f|-rf] path
func (m *MockClient) handleRm(cmd string) ([]byte, []byte, int, error) {
	args := strings.Fields(strings.TrimPrefix(cmd, "rm "))
	force := false
	var paths []string
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			force = force || strings.Contains(a, "f")
			continue
		}
		paths = append(paths, extractPath(a))
	}
	if len(paths) == 0 {
		return nil, []byte("rm: missing operand"), 1, nil
	}

	for _, p := range paths {
		if !m.fs.Exists(p) && !force {
			return nil, []byte(fmt.Sprintf("rm: cannot remove '%s': No such file or directory", p)), 1, nil
		}
		_ = m.fs.Remove(p)
	}
	return nil, nil, 0, nil
}

// extractPath removes quotes from a path argument.
func extractPath(arg string) string {
	arg = strings.TrimSpace(arg)
	if len(arg) >= 2 {
		if (arg[0] == '"' && arg[len(arg)-1] == '"') || (arg[0] == '\'' && arg[len(arg)-1] == '\'') {
			return arg[1 : len(arg)-1]
		}
	}
	return arg
}
