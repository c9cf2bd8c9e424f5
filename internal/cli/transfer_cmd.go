package cli

import (
	"path"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/ui"
)

var (
	getViaHDFS bool
	putViaHDFS bool
)

var getCmd = &cobra.Command{
	Use:   "get <remote> [local]",
	Short: "Download a file from the remote host",
	Long: `Download a file. The local name defaults to the last segment of the
remote path. A remote path starting with hdfs: (or --hdfs) is staged out of
HDFS through TMP_DIR on the remote host first.

Examples:
  issho get /var/log/app.log
  issho get hdfs:/warehouse/events/part-00000 events.csv
  issho get --hdfs /warehouse/events/part-00000`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, local := args[0], ""
		if len(args) > 1 {
			local = args[1]
		}

		bar := ui.NewTransferBar(path.Base(remote), cmd.ErrOrStderr())
		sess, err := openSession(cmd, bar.Update)
		if err != nil {
			return err
		}
		defer sess.Close()

		return sess.Get(cmd.Context(), remote, local, getViaHDFS)
	},
}

var putCmd = &cobra.Command{
	Use:   "put <local> [remote]",
	Short: "Upload a file to the remote host",
	Long: `Upload a file. The remote name defaults to the local file name, in the
remote home directory. A remote path starting with hdfs: (or --hdfs) is
staged through TMP_DIR and then put into HDFS.

Examples:
  issho put train.py
  issho put lookup.csv hdfs:/warehouse/lookup/lookup.csv
  issho put --hdfs lookup.csv /warehouse/lookup/lookup.csv`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		local, remote := args[0], ""
		if len(args) > 1 {
			remote = args[1]
		}

		bar := ui.NewTransferBar(path.Base(local), cmd.ErrOrStderr())
		sess, err := openSession(cmd, bar.Update)
		if err != nil {
			return err
		}
		defer sess.Close()

		return sess.Put(cmd.Context(), local, remote, putViaHDFS)
	},
}

func init() {
	getCmd.Flags().BoolVar(&getViaHDFS, "hdfs", false, "stage the file out of HDFS")
	putCmd.Flags().BoolVar(&putViaHDFS, "hdfs", false, "stage the file into HDFS")
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(putCmd)
}
