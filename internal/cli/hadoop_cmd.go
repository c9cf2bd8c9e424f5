package cli

import (
	"github.com/spf13/cobra"
)

var hadoopCmd = &cobra.Command{
	Use:     "hadoop <subcommand> [args...]",
	Aliases: []string{"hdfs"},
	Short:   "Run an HDFS filesystem command",
	Long: `Run a filesystem subcommand through the profile's HDFS_COMMAND
(default "hadoop fs"). The leading dash on the subcommand is optional.

Examples:
  issho hadoop ls /warehouse
  issho hadoop du -h /warehouse/events
  issho hadoop -- -mkdir -p /user/me/out`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sess, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.Hadoop(cmd.Context(), args[0], args[1:]...)
		if err != nil {
			return err
		}
		return resultError(res)
	},
}

func init() {
	hadoopCmd.Flags().SetInterspersed(false)
	rootCmd.AddCommand(hadoopCmd)
}
