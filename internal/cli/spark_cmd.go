package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/submit"
)

// sparkFlags holds the spark command's flags.
type sparkFlags struct {
	Master          string
	Jars            string
	Files           string
	DriverClassPath string
	Class           string
	Options         []string
	ConfFile        string
	Conf            string
}

var sparkOpts sparkFlags

var sparkCmd = &cobra.Command{
	Use:   "spark <application> [app args...]",
	Short: "Submit a Spark job with spark-submit",
	Long: `Submit a jar or python application with spark-submit. Options come from
--conf-file (YAML), then --option flags, then the shorthand flags; later
sources win. Option keys may use underscores: num_executors becomes
--num-executors. The profile's SPARK_CONF is appended unless --conf is given.

Examples:
  issho spark --class com.example.Daily daily.jar 2024-01-01
  issho spark --master yarn -o num_executors=8 -o executor_memory=4g etl.py
  issho spark --conf-file job.yaml etl.py`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		job, err := buildJob(sparkOpts, args)
		if err != nil {
			return err
		}
		if err := job.Validate(); err != nil {
			return err
		}

		sess, err := openSession(cmd, nil)
		if err != nil {
			return err
		}
		defer sess.Close()

		res, err := sess.SparkSubmit(cmd.Context(), job)
		if err != nil {
			return err
		}
		return resultError(res)
	},
}

// buildJob assembles the job from flags and positional arguments.
func buildJob(f sparkFlags, args []string) (submit.Job, error) {
	opts := submit.NewOptions()
	if f.ConfFile != "" {
		fromFile, err := submit.LoadOptionsFile(f.ConfFile)
		if err != nil {
			return submit.Job{}, err
		}
		opts.Merge(fromFile)
	}

	pairs, err := parseKeyValues(f.Options)
	if err != nil {
		return submit.Job{}, err
	}
	opts.Merge(submit.OptionsFromMap(pairs))

	job := submit.Job{
		Options:          opts,
		Master:           f.Master,
		Jars:             f.Jars,
		Files:            f.Files,
		DriverClassPath:  f.DriverClassPath,
		ApplicationClass: f.Class,
		Conf:             f.Conf,
	}
	if len(args) > 0 {
		job.Application = args[0]
		job.ApplicationArgs = args[1:]
	}
	return job, nil
}

func init() {
	f := sparkCmd.Flags()
	f.SetInterspersed(false)
	f.StringVar(&sparkOpts.Master, "master", "", "--master for spark-submit")
	f.StringVar(&sparkOpts.Jars, "jars", "", "comma-separated jars")
	f.StringVar(&sparkOpts.Files, "files", "", "comma-separated files")
	f.StringVar(&sparkOpts.DriverClassPath, "driver-class-path", "", "extra driver class path")
	f.StringVar(&sparkOpts.Class, "class", "", "main class of a jar application")
	f.StringArrayVarP(&sparkOpts.Options, "option", "o", nil, "extra option as key=value (repeatable)")
	f.StringVar(&sparkOpts.ConfFile, "conf-file", "", "YAML file of options")
	f.StringVar(&sparkOpts.Conf, "conf", "", "trailing options replacing the profile's SPARK_CONF")
	rootCmd.AddCommand(sparkCmd)
}
