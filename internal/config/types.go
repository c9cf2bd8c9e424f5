package config

import "time"

// Config is the parsed ~/.issho/config.toml: one table per profile.
type Config struct {
	// Path is the file the config was read from.
	Path string

	// Profiles maps profile name to its settings. Names are case-insensitive
	// and stored lowercased.
	Profiles map[string]Profile
}

// Profile holds the connection and workflow settings for one remote host.
// Keys in the file are the upper-case names (SSH_CONFIG_PATH, HIVE_OPTS, ...);
// matching is case-insensitive.
type Profile struct {
	// Name is the profile (and SSH config Host alias) this entry belongs to.
	Name string `mapstructure:"-"`

	// SSHConfigPath is the ssh_config file the host, user and port are read from.
	SSHConfigPath string `mapstructure:"ssh_config_path"`

	// RSAIDPath is the private key used to authenticate.
	RSAIDPath string `mapstructure:"rsa_id_path"`

	// IDRSA is the older spelling of RSAIDPath, honoured when RSAIDPath is unset.
	IDRSA string `mapstructure:"id_rsa"`

	// HiveOpts is inserted verbatim after `beeline`.
	HiveOpts string `mapstructure:"hive_opts"`

	// HiveJDBC is the beeline -u connection string.
	HiveJDBC string `mapstructure:"hive_jdbc"`

	// SparkConf is appended to every spark-submit option list.
	SparkConf string `mapstructure:"spark_conf"`

	// HDFSCommand is the distributed filesystem tool used for staging.
	HDFSCommand string `mapstructure:"hdfs_command"`

	// TmpDir is the directory on the remote host that holds HDFS staging
	// files and query files. Local scratch files go to the OS temp dir.
	TmpDir string `mapstructure:"tmp_dir"`

	// Kinit runs Kerberos authentication during session bootstrap.
	Kinit bool `mapstructure:"kinit"`

	// ConnectTimeout bounds the TCP dial and SSH handshake.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`

	// CommandTimeout bounds each remote command. Zero means no limit.
	CommandTimeout time.Duration `mapstructure:"command_timeout"`

	// StrictHostKeyChecking verifies the host key against known_hosts.
	// Off by default: unknown host keys are accepted for unattended use.
	StrictHostKeyChecking bool `mapstructure:"strict_host_key_checking"`

	// KnownHostsPath is consulted when StrictHostKeyChecking is on.
	KnownHostsPath string `mapstructure:"known_hosts_path"`
}

// KeyPath returns the private key path, preferring RSA_ID_PATH over ID_RSA.
func (p Profile) KeyPath() string {
	if p.RSAIDPath != "" {
		return p.RSAIDPath
	}
	return p.IDRSA
}

// DefaultProfile returns a Profile with sensible defaults.
func DefaultProfile(name string) Profile {
	return Profile{
		Name:           name,
		SSHConfigPath:  "~/.ssh/config",
		RSAIDPath:      "",
		HDFSCommand:    "hadoop fs",
		TmpDir:         "/tmp",
		Kinit:          true,
		ConnectTimeout: 10 * time.Second,
		KnownHostsPath: "~/.ssh/known_hosts",
	}
}
