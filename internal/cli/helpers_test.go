package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/issho/internal/config"
	credtesting "github.com/rileyhilliard/issho/internal/credentials/testing"
	"github.com/rileyhilliard/issho/internal/logger"
	"github.com/rileyhilliard/issho/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
)

// cliEnv is a config file, SSH config and fakes for running commands.
type cliEnv struct {
	dir       string
	cfgPath   string
	sshConfig string
	mock      *sshtesting.MockClient
	store     *credtesting.FakeStore
	dialed    []sshutil.Settings
	stdin     string
}

// newCLIEnv writes a "dev" profile pointing at a temp SSH config and
// routes dialing to a mock client.
func newCLIEnv(t *testing.T, edit func(*config.Profile)) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	env := &cliEnv{
		dir:       dir,
		cfgPath:   filepath.Join(dir, "config.toml"),
		sshConfig: filepath.Join(dir, "ssh_config"),
		mock:      sshtesting.NewMockClient("dev"),
		store:     credtesting.NewFakeStore(),
	}
	require.NoError(t, os.WriteFile(env.sshConfig, []byte("Host dev\n    HostName edge01.cluster\n    User analyst\n"), 0600))

	p := config.DefaultProfile("dev")
	p.SSHConfigPath = env.sshConfig
	p.Kinit = false
	p.HiveOpts = "--silent=true"
	p.HiveJDBC = "jdbc:hive2://hive:10000/default"
	if edit != nil {
		edit(&p)
	}
	require.NoError(t, config.WriteProfile(env.cfgPath, p))

	oldDial, oldStore := dialFunc, credentialStore
	dialFunc = func(ctx context.Context, s sshutil.Settings) (sshutil.Conn, error) {
		env.dialed = append(env.dialed, s)
		return env.mock, nil
	}
	credentialStore = env.store
	t.Cleanup(func() {
		dialFunc, credentialStore = oldDial, oldStore
	})
	return env
}

// run executes issho with args against the env's config file.
func (e *cliEnv) run(t *testing.T, args ...string) (string, string, error) {
	return e.runContext(context.Background(), t, args...)
}

func (e *cliEnv) runContext(ctx context.Context, t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(e.stdin))
	rootCmd.SetArgs(append([]string{"--config", e.cfgPath}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		logger.SetOutput(os.Stderr)
	})

	err := rootCmd.ExecuteContext(ctx)
	return out.String(), errOut.String(), err
}

// resetFlags puts every flag back to its default so one test's flags
// don't leak into the next.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// commandsAfterBootstrap drops the "echo $HOME" every session starts with.
func (e *cliEnv) commandsAfterBootstrap() []string {
	cmds := e.mock.Commands()
	if len(cmds) > 0 && cmds[0] == "echo $HOME" {
		return cmds[1:]
	}
	return cmds
}

