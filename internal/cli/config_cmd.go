package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/ui"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// configFlags holds the non-interactive values for `issho config`.
type configFlags struct {
	NonInteractive bool
	PasswordStdin  bool
	SSHConfigPath  string
	KeyPath        string
	HiveOpts       string
	HiveJDBC       string
	SparkConf      string
	Kinit          bool
}

var configOpts configFlags

var configCmd = &cobra.Command{
	Use:   "config [profile]",
	Short: "Create or update a profile",
	Long: `Create or update a profile in ~/.issho/config.toml and store its kinit
password in the system keyring.

The profile name must match a Host alias in your SSH config. Without a
profile argument you can pick one from the hosts that config defines.

Examples:
  issho config
  issho config prod
  echo "$PW" | issho config dev --yes --kinit --password-stdin \
      --hive-jdbc "jdbc:hive2://hive:10000/default"`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return configCommand(cmd, args)
	},
}

// profileAnswers is what the wizard collects.
type profileAnswers struct {
	Profile  config.Profile
	Password string
}

func configCommand(cmd *cobra.Command, args []string) error {
	path := configWritePath()

	name := profileName
	if len(args) > 0 {
		name = args[0]
	}

	var answers profileAnswers
	var err error
	if configOpts.NonInteractive {
		answers, err = configFromFlags(cmd, path, name)
	} else {
		explicit := len(args) > 0 || cmd.Flags().Changed("profile")
		answers, err = configInteractive(path, name, explicit)
	}
	if err != nil {
		return err
	}

	p := answers.Profile
	if err := config.WriteProfile(path, p); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if p.Kinit && answers.Password != "" {
		store := credentialStore
		if store == nil {
			store = credentials.NewKeyring()
		}
		if err := credentials.Save(store, p.Name, credentials.KindKinit, util.CurrentUser(), answers.Password); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success("Stored the kinit password in the keyring"))
	}

	fmt.Fprintln(out, ui.Success(fmt.Sprintf("Saved profile '%s' to %s", p.Name, path)))
	warnUnknownHost(out, p)
	return nil
}

// configWritePath is where the profile is written. Unlike config.Find, the
// file doesn't have to exist yet.
func configWritePath() string {
	if cfgFile != "" {
		return config.ExpandTilde(cfgFile)
	}
	if env := os.Getenv(config.EnvConfigPath); env != "" {
		return config.ExpandTilde(env)
	}
	return config.DefaultPath()
}

// existingProfile returns the saved profile, or defaults for a new one.
func existingProfile(path, name string) config.Profile {
	if cfg, err := config.Load(path); err == nil {
		if p, err := cfg.Profile(name); err == nil {
			return *p
		}
	}
	return config.DefaultProfile(name)
}

func configFromFlags(cmd *cobra.Command, path, name string) (profileAnswers, error) {
	if err := config.ValidateName(name); err != nil {
		return profileAnswers{}, err
	}
	p := existingProfile(path, name)

	flags := cmd.Flags()
	override := func(flag string, dst *string, value string) {
		if flags.Changed(flag) {
			*dst = value
		}
	}
	override("ssh-config", &p.SSHConfigPath, configOpts.SSHConfigPath)
	override("key", &p.RSAIDPath, configOpts.KeyPath)
	override("hive-opts", &p.HiveOpts, configOpts.HiveOpts)
	override("hive-jdbc", &p.HiveJDBC, configOpts.HiveJDBC)
	override("spark-conf", &p.SparkConf, configOpts.SparkConf)
	if flags.Changed("kinit") {
		p.Kinit = configOpts.Kinit
	}

	answers := profileAnswers{Profile: p}
	if configOpts.PasswordStdin {
		pw, err := readPassword(cmd.InOrStdin())
		if err != nil {
			return profileAnswers{}, err
		}
		answers.Password = pw
	}
	return answers, nil
}

// readPassword reads the first line of r.
func readPassword(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.WrapWithCode(err, errors.ErrCredential, "Couldn't read the password from stdin", "")
	}
	pw := strings.TrimRight(line, "\r\n")
	if pw == "" {
		return "", errors.New(errors.ErrCredential,
			"No password on stdin",
			"Pipe it in, e.g. echo \"$PW\" | issho config dev --yes --password-stdin")
	}
	return pw, nil
}

func configInteractive(path, name string, explicit bool) (profileAnswers, error) {
	if !explicit {
		picked, err := pickProfileHost(config.DefaultProfile(name).SSHConfigPath, name)
		if err != nil {
			return profileAnswers{}, err
		}
		name = picked
	}
	if err := config.ValidateName(name); err != nil {
		return profileAnswers{}, err
	}

	p := existingProfile(path, name)
	var password, confirm string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("SSH config file").
				Description(fmt.Sprintf("Where Host %s is defined", name)).
				Value(&p.SSHConfigPath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("SSH config path is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Private key (optional)").
				Description("Leave empty to use the SSH config's IdentityFile or ssh-agent").
				Value(&p.RSAIDPath),
		),
		huh.NewGroup(
			huh.NewConfirm().
				Title("Authenticate with kinit when connecting?").
				Value(&p.Kinit),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Kerberos password").
				Description("Stored in the system keyring, never in the config file. Leave empty to keep the current one.").
				EchoMode(huh.EchoModePassword).
				Value(&password),
			huh.NewInput().
				Title("Confirm password").
				EchoMode(huh.EchoModePassword).
				Value(&confirm).
				Validate(func(s string) error {
					if s != password {
						return fmt.Errorf("passwords don't match")
					}
					return nil
				}),
		).WithHideFunc(func() bool { return !p.Kinit }),
		huh.NewGroup(
			huh.NewInput().
				Title("Hive options").
				Description("Inserted after beeline, e.g. --silent=true --outputformat=tsv2").
				Value(&p.HiveOpts),
			huh.NewInput().
				Title("Hive JDBC URL").
				Placeholder("jdbc:hive2://hive-server:10000/default").
				Value(&p.HiveJDBC),
			huh.NewInput().
				Title("Spark conf").
				Description("Appended to every spark-submit, e.g. --conf spark.yarn.queue=etl").
				Value(&p.SparkConf),
		),
	)

	if err := form.Run(); err != nil {
		return profileAnswers{}, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Use --yes with flags to configure non-interactively")
	}

	p.Name = name
	return profileAnswers{Profile: p, Password: password}, nil
}

// pickProfileHost lets the user choose a profile from the SSH config's
// hosts, falling back to typing one in.
func pickProfileHost(sshConfigPath, fallback string) (string, error) {
	hosts, err := sshutil.ParseSSHConfigFile(config.ExpandTilde(sshConfigPath))
	if err != nil || len(hosts) == 0 {
		return fallback, nil
	}

	picked, err := ui.PickHost("Which SSH host is this profile for?", hosts)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Failed to get user input", "")
	}
	if picked != ui.ManualHost {
		return picked, nil
	}

	name := fallback
	form := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Profile name").
			Description("Must match a Host alias in your SSH config").
			Value(&name).
			Validate(config.ValidateName),
	))
	if err := form.Run(); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig, "Failed to get user input", "")
	}
	return name, nil
}

// warnUnknownHost notes when the profile isn't a Host in its SSH config,
// in which case the name is dialed as a plain hostname.
func warnUnknownHost(out io.Writer, p config.Profile) {
	hosts, err := sshutil.ParseSSHConfigFile(config.ExpandTilde(p.SSHConfigPath))
	if err != nil {
		return
	}
	for _, h := range hosts {
		if strings.EqualFold(h.Alias, p.Name) {
			return
		}
	}
	fmt.Fprintln(out, ui.Muted(fmt.Sprintf("  Host %s isn't in %s; it will be dialed as a hostname.", p.Name, p.SSHConfigPath)))
}

func init() {
	f := configCmd.Flags()
	f.BoolVarP(&configOpts.NonInteractive, "yes", "y", false, "don't prompt; take values from flags")
	f.BoolVar(&configOpts.PasswordStdin, "password-stdin", false, "read the kinit password from stdin")
	f.StringVar(&configOpts.SSHConfigPath, "ssh-config", "", "SSH config file defining the profile's Host")
	f.StringVar(&configOpts.KeyPath, "key", "", "private key path")
	f.StringVar(&configOpts.HiveOpts, "hive-opts", "", "options inserted after beeline")
	f.StringVar(&configOpts.HiveJDBC, "hive-jdbc", "", "beeline JDBC URL")
	f.StringVar(&configOpts.SparkConf, "spark-conf", "", "options appended to spark-submit")
	f.BoolVar(&configOpts.Kinit, "kinit", true, "authenticate with kinit when connecting")
	rootCmd.AddCommand(configCmd)
}
