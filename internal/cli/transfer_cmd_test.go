package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/issho/internal/errors"
	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
)

func TestGetCmd_Direct(t *testing.T) {
	env := newCLIEnv(t, nil)
	require.NoError(t, env.mock.GetFS().WriteFile("/var/log/app.log", []byte("line 1\nline 2\n")))
	local := filepath.Join(env.dir, "app.log")

	_, stderr, err := env.run(t, "get", "/var/log/app.log", local)
	require.NoError(t, err)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "line 1\nline 2\n", string(got))
	assert.Contains(t, stderr, "app.log: 14 B transferred out of a total of 14 B")
	assert.Equal(t, []sshtesting.CallKind{sshtesting.CallExec, sshtesting.CallDownload}, env.mock.Kinds())
}

func TestGetCmd_ViaHDFS(t *testing.T) {
	env := newCLIEnv(t, nil)
	require.NoError(t, env.mock.GetFS().WriteFile("/warehouse/events/part-0", []byte("a,b\n")))
	local := filepath.Join(env.dir, "events.csv")

	_, _, err := env.run(t, "get", "--hdfs", "/warehouse/events/part-0", local)
	require.NoError(t, err)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n", string(got))

	cmds := env.commandsAfterBootstrap()
	require.Len(t, cmds, 2)
	assert.Regexp(t, regexp.MustCompile(`^hadoop fs -get -f /warehouse/events/part-0 /tmp/\S+$`), cmds[0])
	assert.Regexp(t, `^rm `, cmds[1])
}

func TestGetCmd_MissingRemote(t *testing.T) {
	env := newCLIEnv(t, nil)

	_, _, err := env.run(t, "get", "/nope.txt", filepath.Join(env.dir, "nope.txt"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTransfer))
}

func TestPutCmd(t *testing.T) {
	env := newCLIEnv(t, nil)
	local := filepath.Join(env.dir, "train.py")
	require.NoError(t, os.WriteFile(local, []byte("print('hi')\n"), 0644))

	_, _, err := env.run(t, "put", local)
	require.NoError(t, err)

	// Relative remote paths resolve against the SFTP working directory,
	// which is the remote home.
	got, err := env.mock.GetFS().ReadFile("train.py")
	require.NoError(t, err)
	assert.Equal(t, "print('hi')\n", string(got))
}

func TestPutCmd_HDFSScheme(t *testing.T) {
	env := newCLIEnv(t, nil)
	local := filepath.Join(env.dir, "lookup.csv")
	require.NoError(t, os.WriteFile(local, []byte("k,v\n"), 0644))

	_, _, err := env.run(t, "put", local, "hdfs:/warehouse/lookup/lookup.csv")
	require.NoError(t, err)

	got, err := env.mock.GetFS().ReadFile("hdfs:/warehouse/lookup/lookup.csv")
	require.NoError(t, err)
	assert.Equal(t, "k,v\n", string(got))
}
