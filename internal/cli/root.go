package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/logger"
	"github.com/rileyhilliard/issho/internal/ui"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// Global flags
var (
	cfgFile     string
	profileName string
	verbose     bool
	noKinit     bool
	noColor     bool
)

var rootCmd = &cobra.Command{
	Use:   "issho",
	Short: "Work on a remote Hadoop edge node over SSH",
	Long: `issho runs commands, file transfers, Hive queries and Spark jobs on a
remote host through one SSH connection, with optional Kerberos (kinit)
authentication.

Profiles live in ~/.issho/config.toml; each profile name is also the Host
alias looked up in your SSH config. Create one with: issho config <profile>`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		ui.ApplyColorEnv(noColor)
		logger.SetOutput(cmd.ErrOrStderr())
		logger.SetVerbose(verbose)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&profileName, "profile", "p", "dev", "profile (and SSH config Host) to use")
	pf.StringVar(&cfgFile, "config", "", "config file (default is ~/.issho/config.toml)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "print debug logs")
	pf.BoolVar(&noKinit, "no-kinit", false, "skip Kerberos authentication even if the profile enables it")
	pf.BoolVar(&noColor, "no-color", false, "disable colored output")
	_ = rootCmd.RegisterFlagCompletionFunc("profile", completeProfiles)
}

// Execute runs the root command and exits the process with its status.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	sshutil.CloseAgent()
	os.Exit(exitCode(err, os.Stderr))
}

// exitCode maps a command error to a process exit status, printing it
// unless it only carries a remote exit code.
func exitCode(err error, stderr io.Writer) int {
	if err == nil {
		return 0
	}
	if code, ok := errors.GetExitCode(err); ok {
		if code <= 0 {
			return 1
		}
		return code
	}

	var structured *errors.Error
	if stderrors.As(err, &structured) {
		fmt.Fprint(stderr, structured.Error())
	} else {
		fmt.Fprintf(stderr, "%s %s\n", ui.SymbolFail, err)
	}
	return 1
}
