package issho

import (
	"context"

	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// LocalForward forwards localHost:localPort to remoteHost:remotePort as
// seen from the remote host, e.g. to reach a notebook server or Spark UI.
// An empty localHost binds 0.0.0.0 and a zero localPort uses 44556.
//
// The tunnel is independent of the Session: Close doesn't stop it. It does
// cut the transport new streams are opened over, so keep the session open
// while the tunnel is in use and call Stop on the tunnel when done.
func (s *Session) LocalForward(ctx context.Context, remoteHost string, remotePort int, localHost string, localPort int) (*sshutil.Tunnel, error) {
	conn, err := s.connection()
	if err != nil {
		return nil, err
	}

	spec := sshutil.TunnelSpec{
		LocalHost:  localHost,
		LocalPort:  localPort,
		RemoteHost: remoteHost,
		RemotePort: remotePort,
	}.WithDefaults()

	tunnel, err := conn.Forward(ctx, spec)
	if err != nil {
		return nil, err
	}
	s.log.Debug("tunnel %s -> %s via %s", tunnel.LocalAddr(), tunnel.RemoteAddr(), s.profile)
	return tunnel, nil
}
