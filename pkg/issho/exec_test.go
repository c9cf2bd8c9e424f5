package issho

import (
	"context"
	"strings"
	"testing"
	"time"

	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExec_StreamsStdout(t *testing.T) {
	h := newHarness(t)

	res, err := h.sess.Exec(context.Background(), ExecOptions{}, "echo", "hello", "world")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.Empty(t, res.Output, "stream mode captures nothing")
	assert.Equal(t, "hello world\n", h.stdout.String())
	assert.Equal(t, []string{"echo hello world"}, h.mock.Commands())
}

func TestExec_Capture(t *testing.T) {
	h := newHarness(t)
	h.mock.SetCommandResponse("hostname -f", sshtesting.CommandResponse{Stdout: []byte("edge01.cluster\n")})

	res, err := h.sess.Exec(context.Background(), ExecOptions{Mode: ModeCapture}, "hostname", "-f")
	require.NoError(t, err)
	assert.Equal(t, "edge01.cluster\n", res.Output)
	assert.Empty(t, h.stdout.String())
}

func TestExec_NonZeroExitIsNotAnError(t *testing.T) {
	h := newHarness(t)
	h.mock.SetCommandResponse(`^ls /nope`, sshtesting.CommandResponse{
		ExitCode: 2,
		Stderr:   []byte("ls: cannot access '/nope': No such file or directory\n"),
	})

	res, err := h.sess.Run(context.Background(), "ls", "/nope")
	require.NoError(t, err)
	assert.Equal(t, 2, res.ExitCode)
	assert.False(t, res.OK())
	assert.Contains(t, h.stderr.String(), "No such file or directory", "stderr is forwarded")
}

func TestExec_Background(t *testing.T) {
	h := newHarness(t)

	res, err := h.sess.ExecBackground(context.Background(), "python", "train.py", `--name "run 1"`)
	require.NoError(t, err)
	assert.True(t, res.OK())

	calls := h.mock.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Background)
	assert.Equal(t, `python train.py --name "run 1"`, calls[0].Inner)
	assert.Equal(t, `cmd=$"python train.py --name \"run 1\""; nohup bash -c "$cmd" > /dev/null 2>&1 < /dev/null &`, calls[0].Command)
}

func TestExec_DebugLogsAtInfo(t *testing.T) {
	h := newHarness(t)

	_, err := h.sess.Exec(context.Background(), ExecOptions{Debug: true}, "ls", "-la", "/data")
	require.NoError(t, err)

	var infos []string
	for _, m := range h.log.Messages {
		if m.Level == "info" {
			infos = append(infos, m.Message)
		}
	}
	assert.Equal(t, []string{`args: ["-la" "/data"]`, "command: ls -la /data"}, infos)
}

func TestExec_CommandTimeout(t *testing.T) {
	h := newHarness(t)
	h.sess.config.CommandTimeout = time.Minute

	ctx, cancel := h.sess.commandContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)

	h.sess.config.CommandTimeout = 0
	ctx2, cancel2 := h.sess.commandContext(context.Background())
	defer cancel2()
	_, ok = ctx2.Deadline()
	assert.False(t, ok, "zero means no limit")
}

func TestExec_CanceledContext(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.sess.Run(ctx, "sleep", "10")
	assert.Error(t, err)
}

func TestRun_UnderscoresBecomeSpaces(t *testing.T) {
	h := newHarness(t)

	_, err := h.sess.Run(context.Background(), "hadoop_fs", "-ls", "/")
	require.NoError(t, err)
	assert.Equal(t, []string{"hadoop fs -ls /"}, h.mock.Commands())
}

func TestGetOutput_Trims(t *testing.T) {
	h := newHarness(t)
	h.mock.SetCommandResponse("whoami", sshtesting.CommandResponse{Stdout: []byte("analyst \r\n\n")})

	out, err := h.sess.GetOutput(context.Background(), "whoami")
	require.NoError(t, err)
	assert.Equal(t, "analyst", out)
}

func TestRemove(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.mock.GetFS().WriteFile("/tmp/stale.csv", []byte("x")))

	res, err := h.sess.Remove(context.Background(), "/tmp/stale.csv")
	require.NoError(t, err)
	assert.True(t, res.OK())
	assert.False(t, h.mock.GetFS().Exists("/tmp/stale.csv"))
}

func TestHadoop(t *testing.T) {
	tests := []struct {
		name    string
		hdfsCmd string
		sub     string
		args    []string
		want    string
	}{
		{name: "bare subcommand", hdfsCmd: "hadoop fs", sub: "ls", args: []string{"/data"}, want: "hadoop fs -ls /data"},
		{name: "dashed subcommand", hdfsCmd: "hadoop fs", sub: "-du", args: []string{"-h", "/data"}, want: "hadoop fs -du -h /data"},
		{name: "double dash", hdfsCmd: "hadoop fs", sub: "--cat", args: []string{"/a"}, want: "hadoop fs -cat /a"},
		{name: "custom tool", hdfsCmd: "hdfs dfs", sub: "mkdir", args: []string{"-p", "/x"}, want: "hdfs dfs -mkdir -p /x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.sess.config.HDFSCommand = tt.hdfsCmd

			_, err := h.sess.Hadoop(context.Background(), tt.sub, tt.args...)
			require.NoError(t, err)
			assert.Equal(t, []string{tt.want}, h.mock.Commands())
		})
	}
}

func TestHDFS_IsHadoop(t *testing.T) {
	h := newHarness(t)

	_, err := h.sess.HDFS(context.Background(), "ls")
	require.NoError(t, err)
	assert.Equal(t, []string{"hadoop fs -ls"}, h.mock.Commands())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "stream", ModeStream.String())
	assert.Equal(t, "capture", ModeCapture.String())
	assert.Equal(t, "background", ModeBackground.String())
	assert.True(t, strings.HasPrefix(Mode(9).String(), "unknown"))
}
