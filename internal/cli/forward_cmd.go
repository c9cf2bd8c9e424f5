package cli

import (
	stderrors "errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/ui"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

var (
	forwardRemoteHost string
	forwardLocalHost  string
)

var forwardCmd = &cobra.Command{
	Use:     "forward <remote-port> [local-port]",
	Aliases: []string{"tunnel"},
	Short:   "Forward a local port to a port on the remote side",
	Long: fmt.Sprintf(`Forward connections on a local port to remote-host:remote-port as seen
from the remote host, e.g. a Jupyter server or the Spark UI. The local port
defaults to %d and binds %s; the remote host defaults to %s.

Runs until interrupted.

Examples:
  issho forward 8888
  issho forward 4040 14040 --local-host 127.0.0.1
  issho forward 10000 --remote-host hive-server.internal`,
		sshutil.DefaultTunnelLocalPort, sshutil.DefaultTunnelLocalHost, sshutil.DefaultTunnelRemote),
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remotePort, localPort, err := forwardPorts(args)
		if err != nil {
			return err
		}

		sess, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		tunnel, err := sess.LocalForward(cmd.Context(), forwardRemoteHost, remotePort, forwardLocalHost, localPort)
		if err != nil {
			return err
		}
		defer tunnel.Stop()

		out := cmd.OutOrStdout()
		if ui.IsTerminal(out) {
			program := tea.NewProgram(ui.NewTunnelModel(tunnel, sess.Profile()),
				tea.WithOutput(out), tea.WithContext(cmd.Context()))
			if _, err := program.Run(); err != nil && !stderrors.Is(err, tea.ErrProgramKilled) {
				return err
			}
			return nil
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Forwarding %s %s %s via %s",
			tunnel.LocalAddr(), ui.SymbolArrow, tunnel.RemoteAddr(), sess.Profile())))
		select {
		case <-cmd.Context().Done():
		case <-tunnel.Done():
		}
		return nil
	},
}

// forwardPorts parses <remote-port> [local-port]. A missing local port is 0,
// which the tunnel turns into the default.
func forwardPorts(args []string) (remote, local int, err error) {
	remote, err = parsePort(args[0], "remote")
	if err != nil {
		return 0, 0, err
	}
	if len(args) > 1 {
		local, err = parsePort(args[1], "local")
		if err != nil {
			return 0, 0, err
		}
	}
	return remote, local, nil
}

func init() {
	forwardCmd.Flags().StringVar(&forwardRemoteHost, "remote-host", "", "host to reach from the remote side (default "+sshutil.DefaultTunnelRemote+")")
	forwardCmd.Flags().StringVar(&forwardLocalHost, "local-host", "", "local address to bind (default "+sshutil.DefaultTunnelLocalHost+")")
	rootCmd.AddCommand(forwardCmd)
}
