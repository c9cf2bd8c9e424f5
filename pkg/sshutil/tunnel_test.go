package sshutil

import (
	"context"
	stderrors "errors"
	"io"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoServer stands in for the service on the remote side.
func echoServer(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	go func() {
		for {
			c, err := l.Accept()
			if err != nil {
				return
			}
			go func() {
				defer c.Close()
				_, _ = io.Copy(c, c)
			}()
		}
	}()
	return l.Addr().(*net.TCPAddr).Port
}

func localSpec(t *testing.T, remotePort int) TunnelSpec {
	return TunnelSpec{LocalHost: "127.0.0.1", LocalPort: ephemeralPort(t), RemoteHost: "127.0.0.1", RemotePort: remotePort}
}

func TestTunnelSpec_Defaults(t *testing.T) {
	s := TunnelSpec{RemotePort: 8888}.WithDefaults()
	assert.Equal(t, "0.0.0.0:44556", s.LocalAddr())
	assert.Equal(t, "127.0.0.1:8888", s.RemoteAddr())
}

func TestStartTunnel_Relays(t *testing.T) {
	port := echoServer(t)

	spec := localSpec(t, port)

	tunnel, err := StartTunnel(context.Background(), spec, net.Dial)
	require.NoError(t, err)
	defer tunnel.Stop()

	assert.Equal(t, "127.0.0.1:"+strconv.Itoa(port), tunnel.RemoteAddr())

	for i := 0; i < 2; i++ {
		conn, err := net.Dial("tcp", tunnel.LocalAddr())
		require.NoError(t, err)

		_, err = conn.Write([]byte("hello"))
		require.NoError(t, err)
		buf := make([]byte, 5)
		_, err = io.ReadFull(conn, buf)
		require.NoError(t, err)
		assert.Equal(t, "hello", string(buf))
		conn.Close()
	}
}

func TestStartTunnel_RemoteUnreachable(t *testing.T) {
	dial := func(network, addr string) (net.Conn, error) {
		return nil, stderrors.New("connect failed")
	}

	_, err := StartTunnel(context.Background(), TunnelSpec{LocalHost: "127.0.0.1", LocalPort: ephemeralPort(t), RemotePort: 8888}, dial)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTunnel))
	assert.Contains(t, err.Error(), "127.0.0.1:8888")
}

func TestStartTunnel_PortInUse(t *testing.T) {
	remote := echoServer(t)

	busy, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer busy.Close()
	busyPort := busy.Addr().(*net.TCPAddr).Port

	_, err = StartTunnel(context.Background(), TunnelSpec{
		LocalHost: "127.0.0.1", LocalPort: busyPort, RemoteHost: "127.0.0.1", RemotePort: remote,
	}, net.Dial)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTunnel))
	assert.Contains(t, err.Error(), "already listening")
}

func TestStartTunnel_BadRemotePort(t *testing.T) {
	_, err := StartTunnel(context.Background(), localSpec(t, 0), net.Dial)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestTunnel_StopClosesConnections(t *testing.T) {
	port := echoServer(t)
	spec := localSpec(t, port)

	tunnel, err := StartTunnel(context.Background(), spec, net.Dial)
	require.NoError(t, err)

	conn, err := net.Dial("tcp", tunnel.LocalAddr())
	require.NoError(t, err)
	defer conn.Close()
	_, err = conn.Write([]byte("x"))
	require.NoError(t, err)
	buf := make([]byte, 1)
	_, err = io.ReadFull(conn, buf)
	require.NoError(t, err)

	require.NoError(t, tunnel.Stop())
	assert.NoError(t, tunnel.Stop(), "Stop is idempotent")

	select {
	case <-tunnel.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("tunnel did not finish stopping")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = conn.Read(buf)
	assert.Error(t, err, "relayed connection is closed on Stop")

	_, err = net.Dial("tcp", tunnel.LocalAddr())
	assert.Error(t, err, "listener is closed on Stop")
}

func ephemeralPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())
	return port
}
