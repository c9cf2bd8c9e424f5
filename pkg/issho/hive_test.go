package issho

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rileyhilliard/issho/internal/errors"
	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const remoteQuery = `/tmp/issho_\d+-[0-9a-f]{8}\.sql`

func TestHive_InlineQuery(t *testing.T) {
	h := newHarness(t)

	res, err := h.sess.Hive(context.Background(), "select count(*) from events", HiveOptions{})
	require.NoError(t, err)
	assert.True(t, res.OK())

	calls := h.mock.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, sshtesting.CallUpload, calls[0].Kind)
	assert.Regexp(t, "^"+remoteQuery+"$", calls[0].Remote)
	assert.Equal(t,
		`beeline --silent=true -u "jdbc:hive2://hive.cluster:10000/default" -f `+calls[0].Remote+` | sed 1d`,
		calls[1].Command)

	sql, err := h.mock.GetFS().ReadFile(calls[0].Remote)
	require.NoError(t, err)
	assert.Equal(t, "select count(*) from events", string(sql))
	assert.NoFileExists(t, calls[0].Local, "local staging copy is removed")
}

func TestHive_TmpDirIsRemoteOnly(t *testing.T) {
	h := newHarness(t)
	h.sess.config.TmpDir = "/scratch/etl"

	_, err := h.sess.Hive(context.Background(), "select 1", HiveOptions{})
	require.NoError(t, err)

	calls := h.mock.Calls()
	require.NotEmpty(t, calls)
	assert.Regexp(t, `^/scratch/etl/issho_\d+-[0-9a-f]{8}\.sql$`, calls[0].Remote)
	assert.Equal(t, filepath.Clean(os.TempDir()), filepath.Dir(calls[0].Local), "the local copy uses the OS temp dir")
}

func TestHive_KeepBlankTopLine(t *testing.T) {
	h := newHarness(t)
	h.sess.config.HiveOpts = ""
	h.sess.config.HiveJDBC = ""

	_, err := h.sess.Hive(context.Background(), "show tables", HiveOptions{KeepBlankTopLine: true})
	require.NoError(t, err)

	cmds := h.mock.Commands()
	require.Len(t, cmds, 1)
	assert.Regexp(t, `^beeline -f `+remoteQuery+`$`, cmds[0])
}

func TestHive_QueryFile(t *testing.T) {
	h := newHarness(t)
	file := filepath.Join(t.TempDir(), "daily.HQL")
	require.NoError(t, os.WriteFile(file, []byte("select 1;\n"), 0644))

	_, err := h.sess.Hive(context.Background(), file, HiveOptions{})
	require.NoError(t, err)

	calls := h.mock.Calls()
	require.NotEmpty(t, calls)
	sql, err := h.mock.GetFS().ReadFile(calls[0].Remote)
	require.NoError(t, err)
	assert.Equal(t, "select 1;\n", string(sql))
}

func TestHive_MissingQueryFile(t *testing.T) {
	h := newHarness(t)

	_, err := h.sess.Hive(context.Background(), filepath.Join(t.TempDir(), "nope.sql"), HiveOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransfer))
	assert.Empty(t, h.mock.Calls())
}

func TestHive_OutputFile(t *testing.T) {
	h := newHarness(t)
	h.mock.SetCommandResponse(`^beeline`, sshtesting.CommandResponse{Stdout: []byte("event_date\tn\n2024-01-01\t42\n")})
	out := filepath.Join(t.TempDir(), "results.tsv")

	_, err := h.sess.Hive(context.Background(), "select event_date, count(*) from events group by 1", HiveOptions{OutputFile: out})
	require.NoError(t, err)

	calls := h.mock.Calls()
	require.Len(t, calls, 3)
	remoteSQL := calls[0].Remote
	assert.Equal(t, `beeline --silent=true -u "jdbc:hive2://hive.cluster:10000/default" -f `+remoteSQL+` | sed 1d > `+remoteSQL+`.output`, calls[1].Command)
	assert.Equal(t, sshtesting.CallDownload, calls[2].Kind)
	assert.Equal(t, remoteSQL+".output", calls[2].Remote)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "event_date\tn\n2024-01-01\t42\n", string(data))
	assert.Empty(t, h.stdout.String(), "results went to the file")
}

func TestIsQueryFile(t *testing.T) {
	assert.True(t, IsQueryFile("q.sql"))
	assert.True(t, IsQueryFile(" reports/Q.HQL "))
	assert.False(t, IsQueryFile("select * from t"))
	assert.False(t, IsQueryFile("q.sql.bak"))
}
