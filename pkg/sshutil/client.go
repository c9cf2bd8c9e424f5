package sshutil

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/rileyhilliard/issho/internal/errors"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// DefaultTimeout bounds the dial and handshake when Settings.Timeout is zero.
const DefaultTimeout = 10 * time.Second

// Client wraps an SSH connection with additional metadata.
type Client struct {
	*ssh.Client
	Host    string // The original host/alias used to connect
	Address string // The resolved address (host:port)
}

// Settings are the resolved connection parameters for one host.
type Settings struct {
	// Host is the alias the user asked for; used in messages only.
	Host string

	// Hostname is the address to dial. Defaults to Host.
	Hostname string

	// Port defaults to 22.
	Port string

	// User defaults to the local user.
	User string

	// KeyPath is the private key to authenticate with. The SSH agent is
	// tried as well when SSH_AUTH_SOCK is set.
	KeyPath string

	// Timeout bounds the TCP dial and SSH handshake. Defaults to DefaultTimeout.
	Timeout time.Duration

	// StrictHostKeyChecking verifies the server key against KnownHostsPath.
	// When false, any host key is accepted.
	StrictHostKeyChecking bool

	// KnownHostsPath defaults to ~/.ssh/known_hosts.
	KnownHostsPath string
}

func (s Settings) withDefaults() Settings {
	if s.Hostname == "" {
		s.Hostname = s.Host
	}
	if s.Port == "" {
		s.Port = "22"
	}
	if s.User == "" {
		s.User = currentUser()
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.KnownHostsPath == "" {
		s.KnownHostsPath = filepath.Join(homeDir(), ".ssh", "known_hosts")
	}
	return s
}

// address returns the host:port string for dialing.
func (s Settings) address() string {
	return net.JoinHostPort(s.Hostname, s.Port)
}

// Dial establishes an authenticated SSH connection.
// Failures are ErrSSH errors carrying a suggestion for the user.
func Dial(ctx context.Context, settings Settings) (*Client, error) {
	settings = settings.withDefaults()

	config, encryptedKeys, err := buildSSHConfig(settings)
	if err != nil {
		var isshoErr *errors.Error
		if stderrors.As(err, &isshoErr) {
			return nil, err
		}
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Couldn't set up SSH for '%s'", settings.Host),
			"Check the key path in your profile, or that your agent has keys: ssh-add -l")
	}

	address := settings.address()
	dialer := net.Dialer{Timeout: settings.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("Can't reach '%s' at %s", settings.Host, address),
			suggestionForDialError(err))
	}

	// Bound the handshake as well as the dial; cleared once connected.
	_ = conn.SetDeadline(time.Now().Add(settings.Timeout))

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()

		var hostKeyErr *HostKeyMismatchError
		if stderrors.As(err, &hostKeyErr) {
			return nil, errors.New(errors.ErrSSH,
				hostKeyErr.Error(),
				hostKeyErr.Suggestion())
		}

		return nil, errors.WrapWithCode(err, errors.ErrSSH,
			fmt.Sprintf("SSH handshake with '%s' didn't go through", settings.Host),
			suggestionForHandshakeError(err, encryptedKeys))
	}
	_ = conn.SetDeadline(time.Time{})

	return &Client{
		Client:  ssh.NewClient(sshConn, chans, reqs),
		Host:    settings.Host,
		Address: address,
	}, nil
}

// Close closes the SSH connection.
func (c *Client) Close() error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Close()
}

// GetHost returns the original host/alias used to connect.
func (c *Client) GetHost() string {
	return c.Host
}

// GetAddress returns the resolved host:port address.
func (c *Client) GetAddress() string {
	return c.Address
}

// buildSSHConfig creates an SSH client config with authentication methods.
// It also returns any keys that exist but are encrypted, for error hints.
func buildSSHConfig(settings Settings) (*ssh.ClientConfig, []string, error) {
	var authMethods []ssh.AuthMethod
	var encryptedKeys []string

	if settings.KeyPath != "" {
		keyAuth, err := keyFileAuth(settings.KeyPath)
		if err != nil {
			var encErr *EncryptedKeyError
			if !stderrors.As(err, &encErr) {
				return nil, nil, errors.WrapWithCode(err, errors.ErrSSH,
					fmt.Sprintf("Can't load private key %s", settings.KeyPath),
					"Fix RSA_ID_PATH in ~/.issho/config.toml or the IdentityFile in your SSH config.")
			}
			encryptedKeys = append(encryptedKeys, settings.KeyPath)
		} else {
			authMethods = append(authMethods, keyAuth)
		}
	}

	if agentAuth := sshAgentAuth(); agentAuth != nil {
		authMethods = append(authMethods, agentAuth)
	}

	if len(authMethods) == 0 {
		msg := "No SSH auth methods available"
		suggestion := "Set RSA_ID_PATH for this profile, or load a key: ssh-add -l"

		if len(encryptedKeys) > 0 {
			msg = fmt.Sprintf("Found SSH key(s) but they're encrypted: %s", strings.Join(encryptedKeys, ", "))
			suggestion = addKeysSuggestion(encryptedKeys)
		}

		return nil, encryptedKeys, errors.New(errors.ErrSSH, msg, suggestion)
	}

	var hostKeyCallback ssh.HostKeyCallback
	if settings.StrictHostKeyChecking {
		var err error
		hostKeyCallback, err = createHostKeyCallback(settings.KnownHostsPath)
		if err != nil {
			return nil, encryptedKeys, fmt.Errorf("failed to load known_hosts: %w", err)
		}
	} else {
		hostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // unknown hosts accepted unless STRICT_HOST_KEY_CHECKING is set
	}

	return &ssh.ClientConfig{
		User:            settings.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         settings.Timeout,
	}, encryptedKeys, nil
}

// agentConn holds the reusable SSH agent connection.
var (
	agentConn     net.Conn
	agentClient   agent.ExtendedAgent
	agentConnOnce sync.Once
)

// sshAgentAuth returns an auth method using the SSH agent if available.
// The agent connection is reused across multiple SSH connections.
// Returns nil if the agent has no keys loaded.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}

	agentConnOnce.Do(func() {
		conn, err := net.Dial("unix", socket)
		if err != nil {
			return
		}
		agentConn = conn
		agentClient = agent.NewClient(conn)
	})

	if agentClient == nil {
		return nil
	}

	// An empty agent causes auth failures when placed before other methods.
	signers, err := agentClient.Signers()
	if err != nil || len(signers) == 0 {
		return nil
	}

	return ssh.PublicKeysCallback(agentClient.Signers)
}

// CloseAgent closes the SSH agent connection if one is open.
// This should be called when the application is shutting down.
func CloseAgent() {
	if agentConn != nil {
		agentConn.Close()
	}
}

// keyFileAuth returns an auth method using a private key file.
// Returns EncryptedKeyError if the key requires a passphrase.
func keyFileAuth(keyPath string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		var missing *ssh.PassphraseMissingError
		if stderrors.As(err, &missing) ||
			strings.Contains(err.Error(), "encrypted") ||
			isEncryptedPEM(key) {
			return nil, &EncryptedKeyError{Path: keyPath}
		}
		return nil, err
	}

	return ssh.PublicKeys(signer), nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func addKeysSuggestion(keys []string) string {
	var sb strings.Builder
	sb.WriteString("Add your key(s) to the agent:\n")
	for _, key := range keys {
		if runtime.GOOS == "darwin" {
			sb.WriteString(fmt.Sprintf("  ssh-add --apple-use-keychain %s\n", key))
		} else {
			sb.WriteString(fmt.Sprintf("  ssh-add %s\n", key))
		}
	}
	sb.WriteString("\nNot sure which key? Check with: ssh -v <host>")
	return sb.String()
}

func suggestionForDialError(err error) string {
	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") {
		return "Is SSH running on that box? Try: ssh <host>"
	}
	if strings.Contains(errStr, "no route to host") || strings.Contains(errStr, "network is unreachable") {
		return "Can't route to the host. Check your network connection or VPN."
	}
	if strings.Contains(errStr, "timeout") || strings.Contains(errStr, "i/o timeout") {
		return "Connection timed out. Host might be offline or blocked by a firewall."
	}
	return "Make sure the host is reachable: ping <host>"
}

func suggestionForHandshakeError(err error, encryptedKeys []string) string {
	errStr := err.Error()
	if strings.Contains(errStr, "unable to authenticate") || strings.Contains(errStr, "no supported methods") {
		if len(encryptedKeys) > 0 {
			return "Your key(s) are encrypted. " + addKeysSuggestion(encryptedKeys)
		}
		return "Auth failed. Check RSA_ID_PATH for this profile and that the key is authorized on the host."
	}
	if strings.Contains(errStr, "host key") {
		return "Host key issue. Try connecting manually first: ssh <host>"
	}
	return "Something went wrong during SSH setup. Try: ssh <host>"
}

// EncryptedKeyError is returned when an SSH key requires a passphrase.
type EncryptedKeyError struct {
	Path string
}

func (e *EncryptedKeyError) Error() string {
	return fmt.Sprintf("SSH key at %s is encrypted (passphrase protected)", e.Path)
}

// HostKeyMismatchError provides helpful context when known_hosts verification fails.
type HostKeyMismatchError struct {
	Hostname     string
	ReceivedType string
	KnownHosts   string
	Want         []knownhosts.KnownKey
}

func (e *HostKeyMismatchError) Error() string {
	return fmt.Sprintf("host key mismatch for %s: server sent %s key", e.Hostname, e.ReceivedType)
}

// Suggestion returns actionable steps to fix the host key mismatch.
func (e *HostKeyMismatchError) Suggestion() string {
	host := e.Hostname
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	var wantTypes []string
	for _, k := range e.Want {
		wantTypes = append(wantTypes, k.Key.Type())
	}
	wantStr := "unknown"
	if len(wantTypes) > 0 {
		wantStr = strings.Join(wantTypes, ", ")
	}

	return fmt.Sprintf(
		"The server's host key doesn't match what's in known_hosts.\n"+
			"  Known types: %s\n"+
			"  Server sent: %s\n\n"+
			"  To update known_hosts with all key types:\n"+
			"    ssh-keyscan -t rsa,ecdsa,ed25519 %s >> %s\n\n"+
			"  Or remove the old entry:\n"+
			"    ssh-keygen -R %s",
		wantStr, e.ReceivedType, host, e.KnownHosts, host)
}

// isEncryptedPEM checks if PEM data contains encryption markers.
func isEncryptedPEM(data []byte) bool {
	return bytes.Contains(data, []byte("ENCRYPTED"))
}

// createHostKeyCallback wraps the knownhosts callback to provide better error messages.
func createHostKeyCallback(knownHostsPath string) (ssh.HostKeyCallback, error) {
	if _, err := os.Stat(knownHostsPath); os.IsNotExist(err) {
		dir := filepath.Dir(knownHostsPath)
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create .ssh directory: %w", err)
		}
		if err := os.WriteFile(knownHostsPath, []byte{}, 0600); err != nil {
			return nil, fmt.Errorf("failed to create known_hosts: %w", err)
		}
	}

	callback, err := knownhosts.New(knownHostsPath)
	if err != nil {
		return nil, err
	}

	return func(hostname string, remote net.Addr, key ssh.PublicKey) error {
		err := callback(hostname, remote, key)
		if err != nil {
			var keyErr *knownhosts.KeyError
			if stderrors.As(err, &keyErr) && len(keyErr.Want) > 0 {
				return &HostKeyMismatchError{
					Hostname:     hostname,
					ReceivedType: key.Type(),
					KnownHosts:   knownHostsPath,
					Want:         keyErr.Want,
				}
			}
		}
		return err
	}, nil
}
