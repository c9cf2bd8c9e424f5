package doctor

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"strings"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/util"
	"github.com/rileyhilliard/issho/pkg/sshutil"
)

// ConfigFileCheck verifies that the config file exists and parses.
type ConfigFileCheck struct {
	ConfigPath string // Explicit path, or empty to search
}

func (c *ConfigFileCheck) Name() string     { return "config_file" }
func (c *ConfigFileCheck) Category() string { return CategoryConfig }

func (c *ConfigFileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return fail("No config file found", "Create one with: issho config <profile>")
	}
	if _, err := config.Load(path); err != nil {
		return fail(fmt.Sprintf("Can't load %s", path), summarize(err))
	}
	return pass("Config file: " + path)
}

// ProfileCheck verifies the profile exists and validates.
type ProfileCheck struct {
	ConfigPath string
	Profile    string
}

func (c *ProfileCheck) Name() string     { return "profile" }
func (c *ProfileCheck) Category() string { return CategoryConfig }

func (c *ProfileCheck) Run(context.Context) CheckResult {
	path, err := config.Find(c.ConfigPath)
	if err != nil {
		return fail(fmt.Sprintf("Profile '%s': no config file", c.Profile), "")
	}
	p, err := config.LoadProfile(path, c.Profile)
	if err != nil {
		return fail(fmt.Sprintf("Profile '%s' not found", c.Profile), summarize(err))
	}
	if err := config.Validate(p); err != nil {
		return fail(fmt.Sprintf("Profile '%s' is invalid", c.Profile), summarize(err))
	}
	return pass(fmt.Sprintf("Profile '%s' is valid", c.Profile))
}

// SSHHostCheck verifies the profile resolves to a Host in its SSH config.
type SSHHostCheck struct {
	Profile config.Profile
}

func (c *SSHHostCheck) Name() string     { return "ssh_host" }
func (c *SSHHostCheck) Category() string { return CategorySSH }

func (c *SSHHostCheck) Run(context.Context) CheckResult {
	if c.Profile.SSHConfigPath == "" {
		return warn(fmt.Sprintf("No SSH config; %s is dialed as a hostname", c.Profile.Name),
			"Set SSH_CONFIG_PATH to use a Host entry.")
	}

	path := config.ExpandTilde(c.Profile.SSHConfigPath)
	hosts, err := sshutil.ParseSSHConfigFile(path)
	if err != nil {
		return fail(fmt.Sprintf("Can't read SSH config %s", c.Profile.SSHConfigPath), err.Error())
	}
	for _, h := range hosts {
		if strings.EqualFold(h.Alias, c.Profile.Name) {
			return pass(fmt.Sprintf("Host %s: %s", h.Alias, h.Description()))
		}
	}
	return warn(fmt.Sprintf("Host %s isn't in %s", c.Profile.Name, c.Profile.SSHConfigPath),
		"It will be dialed as a hostname. Add a Host entry to set HostName, User and IdentityFile.")
}

// KeyFileCheck verifies the private key the profile names, if any.
type KeyFileCheck struct {
	Profile config.Profile
}

func (c *KeyFileCheck) Name() string     { return "ssh_key" }
func (c *KeyFileCheck) Category() string { return CategorySSH }

func (c *KeyFileCheck) Run(context.Context) CheckResult {
	key := c.Profile.RSAIDPath
	if key == "" {
		return pass("No profile key; using the SSH config's IdentityFile or ssh-agent")
	}

	info, err := os.Stat(config.ExpandTilde(key))
	if err != nil {
		return fail(fmt.Sprintf("Key %s doesn't exist", key),
			"Fix RSA_ID_PATH or generate a key with: ssh-keygen -t ed25519")
	}
	if info.Mode().Perm()&0o077 != 0 {
		return warn(fmt.Sprintf("Key %s is readable by others (%04o)", key, info.Mode().Perm()),
			"Restrict it with: chmod 600 "+key)
	}
	return pass("Key: " + key)
}

// KinitPasswordCheck verifies a kinit password is stored when the profile
// authenticates with kinit.
type KinitPasswordCheck struct {
	Profile config.Profile
	Store   credentials.Store
	Account string
}

func (c *KinitPasswordCheck) Name() string     { return "kinit_password" }
func (c *KinitPasswordCheck) Category() string { return CategoryCredentials }

func (c *KinitPasswordCheck) Run(context.Context) CheckResult {
	if !c.Profile.Kinit {
		return pass("kinit is off for this profile")
	}

	account := c.Account
	if account == "" {
		account = util.CurrentUser()
	}
	secret, err := credentials.Lookup(c.Store, c.Profile.Name, credentials.KindKinit, account)
	if err != nil {
		return fail(fmt.Sprintf("No kinit password for '%s'", c.Profile.Name), summarize(err))
	}
	secret.Destroy()
	return pass(fmt.Sprintf("kinit password stored for %s", account))
}

// NewLocalChecks returns the checks that don't need a connection. p may be
// nil when the profile couldn't be loaded; only the config checks run then.
func NewLocalChecks(configPath, profile string, p *config.Profile, store credentials.Store) []Check {
	checks := []Check{
		&ConfigFileCheck{ConfigPath: configPath},
		&ProfileCheck{ConfigPath: configPath, Profile: profile},
	}
	if p == nil {
		return checks
	}
	return append(checks,
		&SSHHostCheck{Profile: *p},
		&KeyFileCheck{Profile: *p},
		&KinitPasswordCheck{Profile: *p, Store: store},
	)
}

// summarize picks the most useful line of err for a check suggestion.
func summarize(err error) string {
	var e *errors.Error
	if stderrors.As(err, &e) {
		if e.Suggestion != "" {
			return e.Suggestion
		}
		return e.Message
	}
	return err.Error()
}
