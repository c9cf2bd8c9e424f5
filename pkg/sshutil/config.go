package sshutil

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/kevinburke/ssh_config"
	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/rileyhilliard/issho/internal/logger"
)

var log = logger.NewEnvLogger("[ssh]")

// SSHHostEntry represents a parsed host entry from SSH config.
type SSHHostEntry struct {
	Alias        string // The Host pattern (alias)
	Hostname     string // The HostName value (actual host to connect to)
	User         string // The User value
	Port         string // The Port value
	IdentityFile string // The IdentityFile value
}

// Description returns a user-friendly description of the host.
func (h SSHHostEntry) Description() string {
	parts := []string{}

	if h.Hostname != "" && h.Hostname != h.Alias {
		parts = append(parts, h.Hostname)
	}
	if h.User != "" {
		parts = append(parts, "user: "+h.User)
	}
	if h.Port != "" && h.Port != "22" {
		parts = append(parts, "port: "+h.Port)
	}

	if len(parts) == 0 {
		return h.Alias
	}
	return strings.Join(parts, ", ")
}

// Settings converts the entry into dial settings. Empty fields are left for
// Settings defaults to fill in.
func (h SSHHostEntry) Settings() Settings {
	return Settings{
		Host:     h.Alias,
		Hostname: h.Hostname,
		Port:     h.Port,
		User:     h.User,
		KeyPath:  h.IdentityFile,
	}
}

// LookupHost resolves one alias from an SSH config file. A missing config
// file is an ErrConfig error since a profile without connection details
// can't connect anywhere.
func LookupHost(configPath, alias string) (SSHHostEntry, error) {
	content, matchLine, err := preprocessSSHConfig(configPath)
	if err != nil {
		return SSHHostEntry{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't read SSH config %s", configPath),
			"Point SSH_CONFIG_PATH in ~/.issho/config.toml at your ssh config file.")
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return SSHHostEntry{}, errors.WrapWithCode(err, errors.ErrConfig,
			fmt.Sprintf("Can't parse SSH config %s", configPath),
			"Check the file with: ssh -G "+alias)
	}

	entry := SSHHostEntry{Alias: alias}
	found := false

	if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
		entry.Hostname = hostname
		found = true
	}
	if user, _ := cfg.Get(alias, "User"); user != "" {
		entry.User = user
		found = true
	}
	if port, _ := cfg.Get(alias, "Port"); port != "" {
		entry.Port = port
		found = true
	}
	if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
		entry.IdentityFile = expandPath(identity)
		found = true
	}

	if !found {
		if matchLine > 0 {
			log.Warn("Host '%s' not found in %s (a Match block at line %d may hide later entries)",
				alias, configPath, matchLine)
		} else {
			log.Debug("Host '%s' not found in %s, dialing it directly", alias, configPath)
		}
	}
	if entry.Hostname == "" {
		entry.Hostname = alias
	}

	return entry, nil
}

// ParseSSHConfigFile parses the specified SSH config file.
// It filters out wildcards, returning only concrete host aliases.
func ParseSSHConfigFile(configPath string) ([]SSHHostEntry, error) {
	content, _, err := preprocessSSHConfig(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No SSH config is fine
		}
		return nil, err
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}

	var hosts []SSHHostEntry
	seen := make(map[string]bool)

	for _, host := range cfg.Hosts {
		for _, pattern := range host.Patterns {
			alias := pattern.String()

			if strings.ContainsAny(alias, "*?") {
				continue
			}
			if seen[alias] {
				continue
			}
			seen[alias] = true

			entry := SSHHostEntry{Alias: alias}
			if hostname, _ := cfg.Get(alias, "HostName"); hostname != "" {
				entry.Hostname = hostname
			}
			if user, _ := cfg.Get(alias, "User"); user != "" {
				entry.User = user
			}
			if port, _ := cfg.Get(alias, "Port"); port != "" {
				entry.Port = port
			}
			if identity, _ := cfg.Get(alias, "IdentityFile"); identity != "" {
				entry.IdentityFile = expandPath(identity)
			}

			hosts = append(hosts, entry)
		}
	}

	sort.Slice(hosts, func(i, j int) bool {
		return hosts[i].Alias < hosts[j].Alias
	})

	return hosts, nil
}

// preprocessSSHConfig reads the SSH config and returns content up to the first Match directive,
// which ssh_config can't decode. Also returns the 1-indexed line of that directive (0 if none).
func preprocessSSHConfig(configPath string) ([]byte, int, error) {
	content, err := os.ReadFile(configPath)
	if err != nil {
		return nil, 0, err
	}

	lines := strings.Split(string(content), "\n")
	var result []string
	matchLine := 0

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			matchLine = i + 1
			break
		}
		result = append(result, line)
	}

	return []byte(strings.Join(result, "\n")), matchLine, nil
}
