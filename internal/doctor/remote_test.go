package doctor

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/pkg/issho"
)

// fakeRemote answers commands from a table; anything else exits 127.
type fakeRemote struct {
	results map[string]issho.Result
	err     error
	seen    []string
}

func (f *fakeRemote) Exec(ctx context.Context, opts issho.ExecOptions, verb string, args ...string) (issho.Result, error) {
	f.seen = append(f.seen, verb)
	if f.err != nil {
		return issho.Result{ExitCode: -1}, f.err
	}
	if res, ok := f.results[verb]; ok {
		return res, nil
	}
	return issho.Result{ExitCode: 127}, nil
}

func TestToolCheck(t *testing.T) {
	remote := &fakeRemote{results: map[string]issho.Result{
		"command -v 'beeline'": {Output: "/usr/bin/beeline\n"},
	}}

	r := (&ToolCheck{Remote: remote, Tool: "beeline", Needed: "Hive queries"}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
	assert.Equal(t, "beeline: /usr/bin/beeline", r.Message)

	r = (&ToolCheck{Remote: remote, Tool: "spark-submit", Needed: "Spark jobs"}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Suggestion, "Spark jobs")
}

func TestTmpDirCheck(t *testing.T) {
	remote := &fakeRemote{results: map[string]issho.Result{
		"test -d '/tmp' && test -w '/tmp'": {},
	}}

	r := (&TmpDirCheck{Remote: remote, Dir: "/tmp"}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)

	r = (&TmpDirCheck{Remote: remote, Dir: "/readonly"}).Run(context.Background())
	assert.Equal(t, StatusFail, r.Status)
}

func TestTicketCheck(t *testing.T) {
	r := (&TicketCheck{Remote: &fakeRemote{results: map[string]issho.Result{"klist -s": {}}}}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)

	r = (&TicketCheck{Remote: &fakeRemote{}}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
}

func TestRemoteChecks_ConnectionError(t *testing.T) {
	remote := &fakeRemote{err: fmt.Errorf("connection closed")}
	results := RunAll(context.Background(), NewRemoteChecks(remote, config.DefaultProfile("dev"), false))

	for _, r := range results {
		assert.Equal(t, StatusFail, r.Status, r.Name)
	}
}

func TestNewRemoteChecks(t *testing.T) {
	p := config.DefaultProfile("dev")
	p.HDFSCommand = "hdfs dfs"
	remote := &fakeRemote{}

	checks := NewRemoteChecks(remote, p, true)
	require.Len(t, checks, 5)
	assert.Equal(t, "remote_tool_hdfs", checks[1].Name())
	assert.Equal(t, "kerberos_ticket", checks[4].Name())

	assert.Len(t, NewRemoteChecks(remote, p, false), 4)
}

func TestConnectResult(t *testing.T) {
	ok := ConnectResult("dev", nil)
	assert.Equal(t, StatusPass, ok.Status)
	assert.Equal(t, CategoryRemote, ok.Category)

	bad := ConnectResult("dev", fmt.Errorf("dial tcp: connection refused"))
	assert.Equal(t, StatusFail, bad.Status)
	assert.Equal(t, "dial tcp: connection refused", bad.Suggestion)
}
