package cli

import (
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/ui"
	"github.com/rileyhilliard/issho/pkg/issho"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// Seams for tests; nil means the real SSH dialer and OS keyring.
var (
	dialFunc        issho.DialFunc
	credentialStore credentials.Store
)

// loadProfile finds the config file and returns the selected profile.
func loadProfile() (*config.Profile, error) {
	path, err := config.Find(cfgFile)
	if err != nil {
		return nil, err
	}
	p, err := config.LoadProfile(path, profileName)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

// openSession connects to the selected profile with a spinner on stderr.
// progress receives transfer updates; nil discards them.
func openSession(cmd *cobra.Command, progress sshutil.ProgressFunc) (*issho.Session, error) {
	p, err := loadProfile()
	if err != nil {
		return nil, err
	}
	if progress == nil {
		progress = func(int64, int64) {}
	}

	spinner := ui.NewSpinner("Connecting to "+p.Name, cmd.ErrOrStderr())
	spinner.Start()

	sess, err := issho.New(cmd.Context(), issho.Options{
		Config:      *p,
		Kinit:       p.Kinit && !noKinit,
		Dial:        dialFunc,
		Credentials: credentialStore,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
		Progress:    progress,
	})
	if err != nil {
		spinner.Fail()
		return nil, err
	}
	spinner.Success()
	return sess, nil
}

// resultError turns a non-zero remote exit into an ExitError.
func resultError(res issho.Result) error {
	if res.OK() {
		return nil
	}
	return errors.NewExitError(res.ExitCode)
}
