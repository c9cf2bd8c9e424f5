package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/issho/internal/errors"
	"github.com/spf13/viper"
)

// WriteProfile merges p into the config file at path, creating the file
// (and ~/.issho) if needed. Other profiles are left untouched. Empty string
// fields are not written so the defaults keep applying.
func WriteProfile(path string, p Profile) error {
	if err := ValidateName(p.Name); err != nil {
		return err
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil && !os.IsNotExist(err) {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read existing config before updating it",
			"Check "+path+" is valid TOML")
	}

	name := strings.ToLower(p.Name)
	set := func(key, value string) {
		if value != "" {
			v.Set(name+"."+key, value)
		}
	}

	set("ssh_config_path", p.SSHConfigPath)
	set("rsa_id_path", p.RSAIDPath)
	set("hive_opts", p.HiveOpts)
	set("hive_jdbc", p.HiveJDBC)
	set("spark_conf", p.SparkConf)
	if p.HDFSCommand != "" && p.HDFSCommand != DefaultProfile(name).HDFSCommand {
		v.Set(name+".hdfs_command", p.HDFSCommand)
	}
	v.Set(name+".kinit", p.Kinit)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create "+filepath.Dir(path),
			"Check directory permissions")
	}

	if err := v.WriteConfigAs(path); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write "+path,
			"Check file permissions")
	}
	return nil
}
