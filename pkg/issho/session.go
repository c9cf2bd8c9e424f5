// Package issho runs shell commands, file transfers, Hive queries and Spark
// jobs on a remote host over one SSH connection.
//
// A Session is built from a profile in ~/.issho/config.toml:
//
//	sess, err := issho.New(ctx, issho.Options{Config: profile, Kinit: true})
//	if err != nil {
//		return err
//	}
//	defer sess.Close()
//
//	sess.Run(ctx, "ls", "-la")
//	sess.Get(ctx, "hdfs:/warehouse/t/part-0", "part-0", false)
package issho

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/logger"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// State is where a Session is in its bootstrap.
type State int

const (
	// StateUnconnected is before dialing, and again after Close.
	StateUnconnected State = iota
	// StateConnected means the transport is up but not yet authenticated.
	StateConnected
	// StateAuthenticated means Kerberos authentication is done (or skipped).
	StateAuthenticated
	// StateReady means the remote home directory is known; the session is usable.
	StateReady
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateUnconnected:
		return "unconnected"
	case StateConnected:
		return "connected"
	case StateAuthenticated:
		return "authenticated"
	case StateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// DialFunc opens the transport for a session. Tests swap in a mock.
type DialFunc func(ctx context.Context, settings sshutil.Settings) (sshutil.Conn, error)

// DialSSH is the default DialFunc.
func DialSSH(ctx context.Context, settings sshutil.Settings) (sshutil.Conn, error) {
	client, err := sshutil.Dial(ctx, settings)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Options configure a Session. Only Config is required.
type Options struct {
	// Profile names the profile; defaults to Config.Name. It is also the
	// SSH config Host alias that is dialed.
	Profile string

	// Config holds the profile's settings.
	Config config.Profile

	// LocalUser is the account the kinit password is stored under.
	// Defaults to the current user.
	LocalUser string

	// Credentials is where the kinit password is read from.
	// Defaults to the OS keyring.
	Credentials credentials.Store

	// Kinit runs Kerberos authentication during bootstrap.
	Kinit bool

	// Dial defaults to DialSSH.
	Dial DialFunc

	// Stdout and Stderr receive remote output. Default to os.Stdout/os.Stderr.
	Stdout io.Writer
	Stderr io.Writer

	// Logger defaults to an env logger with the "[issho]" prefix.
	Logger logger.Logger

	// Progress is called during byte transfers. Defaults to a text line on Stdout.
	Progress sshutil.ProgressFunc
}

func (o Options) withDefaults() Options {
	if o.Profile == "" {
		o.Profile = o.Config.Name
	}
	if o.Config.Name == "" {
		o.Config.Name = o.Profile
	}
	if o.LocalUser == "" {
		o.LocalUser = util.CurrentUser()
	}
	if o.Credentials == nil {
		o.Credentials = credentials.NewKeyring()
	}
	if o.Dial == nil {
		o.Dial = DialSSH
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = logger.NewEnvLogger("[issho]")
	}
	if o.Progress == nil {
		o.Progress = TextProgress(o.Stdout)
	}
	if o.Config.HDFSCommand == "" {
		o.Config.HDFSCommand = "hadoop fs"
	}
	if o.Config.TmpDir == "" {
		o.Config.TmpDir = "/tmp"
	}
	return o
}

// Session is one authenticated connection to a profile's host.
// Methods may be called from one goroutine at a time.
type Session struct {
	profile   string
	config    config.Profile
	localUser string
	creds     credentials.Store
	stdout    io.Writer
	stderr    io.Writer
	log       logger.Logger
	progress  sshutil.ProgressFunc

	mu    sync.Mutex
	conn  sshutil.Conn
	state State
	home  string
}

// New connects to the profile's host, authenticates with kinit when
// opts.Kinit is set, and reads the remote home directory. If any step
// fails the connection is closed and no Session is returned.
func New(ctx context.Context, opts Options) (*Session, error) {
	opts = opts.withDefaults()
	if opts.Profile == "" {
		return nil, errors.New(errors.ErrConfig,
			"No profile given",
			"Pass a profile name, e.g. issho -p dev")
	}

	s := &Session{
		profile:   opts.Profile,
		config:    opts.Config,
		localUser: opts.LocalUser,
		creds:     opts.Credentials,
		stdout:    opts.Stdout,
		stderr:    opts.Stderr,
		log:       opts.Logger,
		progress:  opts.Progress,
		state:     StateUnconnected,
	}

	settings, err := resolveSettings(s.profile, s.config, s.localUser)
	if err != nil {
		return nil, err
	}

	s.log.Debug("dialing %s (%s@%s:%s)", s.profile, settings.User, settings.Hostname, settings.Port)
	conn, err := opts.Dial(ctx, settings)
	if err != nil {
		return nil, err
	}
	s.conn = conn
	s.state = StateConnected

	if opts.Kinit {
		if err := s.Kinit(ctx); err != nil {
			s.abort()
			return nil, err
		}
	}
	s.state = StateAuthenticated

	home, err := s.GetOutput(ctx, "echo $HOME")
	if err != nil {
		s.abort()
		return nil, err
	}
	s.home = home
	s.state = StateReady

	s.log.Debug("session ready on %s (home %s)", conn.GetAddress(), home)
	return s, nil
}

// resolveSettings looks the profile up in its SSH config. Values from the
// issho profile win over the SSH config; the local user is the last resort.
func resolveSettings(profile string, cfg config.Profile, localUser string) (sshutil.Settings, error) {
	entry := sshutil.SSHHostEntry{Alias: profile, Hostname: profile}
	if cfg.SSHConfigPath != "" {
		var err error
		entry, err = sshutil.LookupHost(config.ExpandTilde(cfg.SSHConfigPath), profile)
		if err != nil {
			return sshutil.Settings{}, err
		}
	}

	settings := entry.Settings()
	if settings.User == "" {
		settings.User = localUser
	}
	if key := cfg.KeyPath(); key != "" {
		settings.KeyPath = config.ExpandTilde(key)
	}
	settings.Timeout = cfg.ConnectTimeout
	settings.StrictHostKeyChecking = cfg.StrictHostKeyChecking
	if cfg.KnownHostsPath != "" {
		settings.KnownHostsPath = config.ExpandTilde(cfg.KnownHostsPath)
	}
	return settings, nil
}

func (s *Session) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			s.log.Debug("close after failed bootstrap: %v", err)
		}
		s.conn = nil
	}
	s.state = StateUnconnected
}

// Close closes the transport. Tunnels started with LocalForward are not
// stopped; they end when their own Stop is called or the process exits.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.state = StateUnconnected
	return err
}

// State reports the bootstrap state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Home is the remote home directory, read once at bootstrap.
func (s *Session) Home() string {
	return s.home
}

// Profile is the profile name the session was opened for.
func (s *Session) Profile() string {
	return s.profile
}

// Config returns the profile settings in effect.
func (s *Session) Config() config.Profile {
	return s.config
}

// Host is the resolved host:port of the connection, or "" once closed.
func (s *Session) Host() string {
	conn, err := s.connection()
	if err != nil {
		return ""
	}
	return conn.GetAddress()
}

func (s *Session) connection() (sshutil.Conn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn == nil {
		return nil, errors.New(errors.ErrSSH,
			fmt.Sprintf("Session for '%s' is closed", s.profile),
			"Open a new session.")
	}
	return s.conn, nil
}

// commandContext applies the profile's per-command timeout, if any.
func (s *Session) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.CommandTimeout > 0 {
		return context.WithTimeout(ctx, s.config.CommandTimeout)
	}
	return context.WithCancel(ctx)
}

func trimOutput(out string) string {
	return strings.TrimRight(out, " \t\r\n")
}
