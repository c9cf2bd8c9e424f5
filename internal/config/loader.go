package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigDir is the per-user directory holding issho state.
	ConfigDir = ".issho"
	// ConfigFileName is the profile file inside ConfigDir.
	ConfigFileName = "config.toml"
	// EnvConfigPath overrides the config location.
	EnvConfigPath = "ISSHO_CONFIG"
)

// DefaultPath returns ~/.issho/config.toml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(ConfigDir, ConfigFileName)
	}
	return filepath.Join(home, ConfigDir, ConfigFileName)
}

// Find returns the config path using the search order:
// 1. Explicit path (from --config flag)
// 2. $ISSHO_CONFIG
// 3. ~/.issho/config.toml
//
// Only an explicit path must exist; the others may be missing (setup creates them).
func Find(explicit string) (string, error) {
	if explicit != "" {
		explicit = ExpandTilde(explicit)
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if env := os.Getenv(EnvConfigPath); env != "" {
		return ExpandTilde(env), nil
	}

	return DefaultPath(), nil
}

// Load reads every profile from the config file at path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run 'issho config <profile>' to create one")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check "+path+" is valid TOML")
	}

	cfg := &Config{
		Path:     path,
		Profiles: make(map[string]Profile),
	}

	for name, value := range v.AllSettings() {
		if _, ok := value.(map[string]interface{}); !ok {
			continue
		}
		p, err := decodeProfile(v, name)
		if err != nil {
			return nil, err
		}
		cfg.Profiles[name] = p
	}

	return cfg, nil
}

// LoadProfile reads a single named profile, with defaults filled in and
// local paths expanded.
func LoadProfile(path, name string) (*Profile, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	return cfg.Profile(name)
}

// Profile returns the named profile or a CONFIG error listing what exists.
// Tables match case-insensitively, but the returned Name is name as given:
// it is the SSH Host alias and the credential key, and both are
// case-sensitive.
func (c *Config) Profile(name string) (*Profile, error) {
	p, ok := c.Profiles[strings.ToLower(name)]
	if !ok {
		return nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile '%s' not found in %s", name, c.Path),
			fmt.Sprintf("Known profiles: %s. Add one with: issho config %s", joinOrNone(c.Names()), name))
	}
	p.Name = name
	return &p, nil
}

// Names returns the profile names in sorted order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// decodeProfile unmarshals one profile table on top of the defaults.
func decodeProfile(v *viper.Viper, name string) (Profile, error) {
	p := DefaultProfile(name)

	sub := v.Sub(name)
	if sub != nil {
		if err := sub.Unmarshal(&p); err != nil {
			return Profile{}, errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("Invalid settings for profile '%s'", name),
				"Check the value types in "+v.ConfigFileUsed()+" (timeouts look like 10s or 2m)")
		}
	}
	p.Name = name

	p.SSHConfigPath = ExpandTilde(p.SSHConfigPath)
	p.RSAIDPath = ExpandTilde(p.RSAIDPath)
	p.IDRSA = ExpandTilde(p.IDRSA)
	p.KnownHostsPath = ExpandTilde(p.KnownHostsPath)

	return p, nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}
