package config

import (
	"fmt"
	"os"
	"path"
	"regexp"

	"github.com/rileyhilliard/issho/internal/errors"
)

// profileNamePattern is what a profile name may look like. It doubles as the
// SSH config Host alias and as part of the keyring key, so keep it plain.
var profileNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]*$`)

// ValidateName checks a profile name before it is written or looked up.
func ValidateName(name string) error {
	if !profileNamePattern.MatchString(name) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a valid profile name", name),
			"Use letters, numbers, dots, dashes and underscores, e.g. 'dev' or 'prod-east'.")
	}
	return nil
}

// Validate checks a profile for errors and returns structured error messages.
func Validate(p *Profile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}

	if p.SSHConfigPath == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile '%s' has no SSH_CONFIG_PATH", p.Name),
			"Point it at the ssh_config file that defines Host "+p.Name+", usually ~/.ssh/config.")
	}
	if _, err := os.Stat(p.SSHConfigPath); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't read SSH config %s for profile '%s'", p.SSHConfigPath, p.Name),
			"Fix SSH_CONFIG_PATH in ~/.issho/config.toml.")
	}

	if p.ConnectTimeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("CONNECT_TIMEOUT can't be negative (got %s)", p.ConnectTimeout),
			"Use a duration like 10s or 1m.")
	}
	if p.CommandTimeout < 0 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("COMMAND_TIMEOUT can't be negative (got %s)", p.CommandTimeout),
			"Use a duration like 30m, or 0 for no limit.")
	}

	if p.HDFSCommand == "" {
		return errors.New(errors.ErrConfig,
			"HDFS_COMMAND is empty",
			"Remove the key to use the default 'hadoop fs'.")
	}

	if !path.IsAbs(p.TmpDir) {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("TMP_DIR must be an absolute path (got '%s')", p.TmpDir),
			"Remove the key to use the default /tmp.")
	}

	return nil
}
