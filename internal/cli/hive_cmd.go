package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/pkg/issho"
)

var (
	hiveOutput      string
	hiveKeepTopLine bool
)

var hiveCmd = &cobra.Command{
	Use:   "hive <query | file.sql | ->",
	Short: "Run a Hive query with beeline",
	Long: `Run a query with beeline using the profile's HIVE_OPTS and HIVE_JDBC.
The query is SQL text, the path of a local .sql/.hql file, or - to read it
from stdin. It is uploaded to TMP_DIR on the remote host and run from there.

Examples:
  issho hive "select count(*) from events"
  issho hive reports/daily.sql --output daily.tsv
  cat query.sql | issho hive -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query, err := readQuery(args[0], cmd.InOrStdin())
		if err != nil {
			return err
		}

		sess, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.Hive(cmd.Context(), query, issho.HiveOptions{
			OutputFile:       hiveOutput,
			KeepBlankTopLine: hiveKeepTopLine,
		})
		if err != nil {
			return err
		}
		return resultError(res)
	},
}

// readQuery returns arg, or stdin when arg is "-".
func readQuery(arg string, stdin io.Reader) (string, error) {
	if arg != "-" {
		return arg, nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Couldn't read the query from stdin", "")
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New(errors.ErrConfig,
			"The query on stdin is empty",
			"Pipe SQL in, e.g. cat query.sql | issho hive -")
	}
	return string(data), nil
}

func init() {
	hiveCmd.Flags().StringVarP(&hiveOutput, "output", "o", "", "save the results to this local file")
	hiveCmd.Flags().BoolVar(&hiveKeepTopLine, "keep-top-line", false, "keep beeline's blank first output line")
	rootCmd.AddCommand(hiveCmd)
}
