package issho

import (
	"bytes"
	"context"
	"testing"

	"github.com/rileyhilliard/issho/internal/config"
	credtesting "github.com/rileyhilliard/issho/internal/credentials/testing"
	"github.com/rileyhilliard/issho/internal/logger"
	"github.com/rileyhilliard/issho/pkg/sshutil"
	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
	"github.com/stretchr/testify/require"
)

// harness bundles a session with the fakes behind it.
type harness struct {
	sess   *Session
	mock   *sshtesting.MockClient
	store  *credtesting.FakeStore
	log    *logger.BufferLogger
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	dialed []sshutil.Settings
}

// testProfile is a profile that needs no files on disk.
func testProfile() config.Profile {
	p := config.DefaultProfile("dev")
	p.SSHConfigPath = ""
	p.KnownHostsPath = ""
	p.HiveOpts = "--silent=true"
	p.HiveJDBC = "jdbc:hive2://hive.cluster:10000/default"
	return p
}

// testOptions returns options wired to fresh fakes. The session isn't
// created, so tests can adjust options or the mock first.
func testOptions(t *testing.T) (Options, *harness) {
	t.Helper()
	h := &harness{
		mock:   sshtesting.NewMockClient("dev"),
		store:  credtesting.NewFakeStore(),
		log:    logger.NewBufferLogger(),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	opts := Options{
		Config:      testProfile(),
		LocalUser:   "analyst",
		Credentials: h.store,
		Dial: func(ctx context.Context, settings sshutil.Settings) (sshutil.Conn, error) {
			h.dialed = append(h.dialed, settings)
			return h.mock, nil
		},
		Stdout:   h.stdout,
		Stderr:   h.stderr,
		Logger:   h.log,
		Progress: func(int64, int64) {},
	}
	return opts, h
}

// newHarness opens a ready session without kinit and clears the calls
// bootstrap made, so tests see only their own.
func newHarness(t *testing.T) *harness {
	t.Helper()
	opts, h := testOptions(t)
	sess, err := New(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })

	h.sess = sess
	h.mock.Reset()
	h.stdout.Reset()
	return h
}
