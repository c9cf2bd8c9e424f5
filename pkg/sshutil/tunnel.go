package sshutil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"syscall"

	"github.com/rileyhilliard/issho/internal/errors"
)

// Tunnel defaults, used when a TunnelSpec leaves the local side empty.
const (
	DefaultTunnelLocalHost = "0.0.0.0"
	DefaultTunnelLocalPort = 44556
	DefaultTunnelRemote    = "127.0.0.1"
)

// TunnelSpec describes a local port forward: connections accepted on
// LocalHost:LocalPort are relayed to RemoteHost:RemotePort as seen from
// the remote machine.
type TunnelSpec struct {
	LocalHost  string
	LocalPort  int
	RemoteHost string
	RemotePort int
}

// WithDefaults fills in the local bind address and remote host.
func (s TunnelSpec) WithDefaults() TunnelSpec {
	if s.LocalHost == "" {
		s.LocalHost = DefaultTunnelLocalHost
	}
	if s.LocalPort == 0 {
		s.LocalPort = DefaultTunnelLocalPort
	}
	if s.RemoteHost == "" {
		s.RemoteHost = DefaultTunnelRemote
	}
	return s
}

// LocalAddr is the host:port the tunnel listens on.
func (s TunnelSpec) LocalAddr() string {
	return net.JoinHostPort(s.LocalHost, strconv.Itoa(s.LocalPort))
}

// RemoteAddr is the host:port dialed on the far side.
func (s TunnelSpec) RemoteAddr() string {
	return net.JoinHostPort(s.RemoteHost, strconv.Itoa(s.RemotePort))
}

// DialFunc opens a stream to an address on the far side of a tunnel.
// For a real connection it is the SSH client's Dial.
type DialFunc func(network, addr string) (net.Conn, error)

// Tunnel is a running local port forward.
type Tunnel struct {
	spec     TunnelSpec
	listener net.Listener
	dial     DialFunc

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	stopping bool

	wg       sync.WaitGroup
	done     chan struct{}
	stopOnce sync.Once
}

// Forward starts a local port forward through the SSH connection.
func (c *Client) Forward(ctx context.Context, spec TunnelSpec) (*Tunnel, error) {
	return StartTunnel(ctx, spec, c.Client.Dial)
}

// StartTunnel binds the local side and starts relaying. The remote side is
// dialed once before binding so an unreachable target fails fast.
// ctx only bounds setup; the tunnel runs until Stop.
func StartTunnel(ctx context.Context, spec TunnelSpec, dial DialFunc) (*Tunnel, error) {
	spec = spec.WithDefaults()
	if spec.RemotePort <= 0 || spec.RemotePort > 65535 {
		return nil, errors.New(errors.ErrTunnel,
			fmt.Sprintf("Remote port %d is out of range", spec.RemotePort),
			"Pass a port between 1 and 65535.")
	}

	check, err := dial("tcp", spec.RemoteAddr())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTunnel,
			fmt.Sprintf("Can't reach %s from the remote host", spec.RemoteAddr()),
			"Check that the service is listening on the remote side.")
	}
	check.Close()

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", spec.LocalAddr())
	if err != nil {
		suggestion := "Check the local address is valid."
		if stderrors.Is(err, syscall.EADDRINUSE) {
			suggestion = "Something is already listening there. Pick another local port."
		}
		return nil, errors.WrapWithCode(err, errors.ErrTunnel,
			fmt.Sprintf("Can't listen on %s", spec.LocalAddr()),
			suggestion)
	}

	t := &Tunnel{
		spec:     spec,
		listener: listener,
		dial:     dial,
		conns:    make(map[net.Conn]struct{}),
		done:     make(chan struct{}),
	}

	t.wg.Add(1)
	go t.serve()

	log.Debug("forwarding %s -> %s", listener.Addr(), spec.RemoteAddr())
	return t, nil
}

// LocalAddr returns the address actually bound, which differs from the
// spec when port 0 was requested.
func (t *Tunnel) LocalAddr() string {
	return t.listener.Addr().String()
}

// RemoteAddr returns the forwarded destination.
func (t *Tunnel) RemoteAddr() string {
	return t.spec.RemoteAddr()
}

// Spec returns the resolved spec the tunnel was started with.
func (t *Tunnel) Spec() TunnelSpec {
	return t.spec
}

// Active is the number of connections currently being relayed.
func (t *Tunnel) Active() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.conns) / 2
}

// Done is closed once the tunnel has fully stopped.
func (t *Tunnel) Done() <-chan struct{} {
	return t.done
}

// Stop closes the listener and every relayed connection, then waits for the
// relays to exit. Safe to call more than once.
func (t *Tunnel) Stop() error {
	var err error
	t.stopOnce.Do(func() {
		err = t.listener.Close()

		t.mu.Lock()
		t.stopping = true
		for conn := range t.conns {
			conn.Close()
		}
		t.mu.Unlock()

		t.wg.Wait()
		close(t.done)
	})
	return err
}

func (t *Tunnel) serve() {
	defer t.wg.Done()
	for {
		local, err := t.listener.Accept()
		if err != nil {
			if !stderrors.Is(err, net.ErrClosed) {
				log.Warn("tunnel on %s stopped accepting: %v", t.spec.LocalAddr(), err)
			}
			return
		}

		t.wg.Add(1)
		go t.relay(local)
	}
}

func (t *Tunnel) relay(local net.Conn) {
	defer t.wg.Done()

	remote, err := t.dial("tcp", t.spec.RemoteAddr())
	if err != nil {
		log.Warn("tunnel can't reach %s: %v", t.spec.RemoteAddr(), err)
		local.Close()
		return
	}

	if !t.track(local, remote) {
		local.Close()
		remote.Close()
		return
	}
	defer t.untrack(local, remote)

	var once sync.Once
	closeBoth := func() {
		local.Close()
		remote.Close()
	}

	var copies sync.WaitGroup
	copies.Add(2)
	go func() {
		defer copies.Done()
		_, _ = io.Copy(remote, local)
		once.Do(closeBoth)
	}()
	go func() {
		defer copies.Done()
		_, _ = io.Copy(local, remote)
		once.Do(closeBoth)
	}()
	copies.Wait()
}

// track registers both ends so Stop can close them. Returns false if the
// tunnel is already stopping.
func (t *Tunnel) track(conns ...net.Conn) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopping {
		return false
	}
	for _, c := range conns {
		t.conns[c] = struct{}{}
	}
	return true
}

func (t *Tunnel) untrack(conns ...net.Conn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, c := range conns {
		delete(t.conns, c)
	}
}
