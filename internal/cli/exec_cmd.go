package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/pkg/issho"
)

var (
	execBackground bool
	execCapture    bool
	execDebug      bool
)

var execCmd = &cobra.Command{
	Use:   "exec <command> [args...]",
	Short: "Run a command on the remote host",
	Long: `Run a command on the remote host. Output streams back as it arrives
and issho exits with the command's exit code.

Arguments are joined with spaces and passed to the remote shell as-is, so
pipes and redirects work when quoted.

Examples:
  issho exec ls -la /data
  issho exec "hadoop fs -du -h /warehouse | sort -h"
  issho exec --bg python train.py --epochs 10
  issho -p prod exec --capture hostname -f`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return execCommand(cmd, args)
	},
}

func execCommand(cmd *cobra.Command, args []string) error {
	mode := issho.ModeStream
	switch {
	case execBackground:
		mode = issho.ModeBackground
	case execCapture:
		mode = issho.ModeCapture
	}

	sess, err := openSession(cmd, nil)
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.Exec(cmd.Context(), issho.ExecOptions{Mode: mode, Debug: execDebug}, args[0], args[1:]...)
	if err != nil {
		return err
	}
	if mode == issho.ModeCapture {
		fmt.Fprint(cmd.OutOrStdout(), res.Output)
	}
	return resultError(res)
}

func init() {
	execCmd.Flags().SetInterspersed(false)
	execCmd.Flags().BoolVar(&execBackground, "bg", false, "launch detached under nohup and return immediately")
	execCmd.Flags().BoolVar(&execCapture, "capture", false, "collect output and print it when the command ends")
	execCmd.Flags().BoolVar(&execDebug, "debug", false, "log the arguments and final command line")
	execCmd.MarkFlagsMutuallyExclusive("bg", "capture")
	rootCmd.AddCommand(execCmd)
}
