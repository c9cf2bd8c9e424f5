package doctor

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/issho/internal/config"
	"github.com/rileyhilliard/issho/internal/credentials"
	credtesting "github.com/rileyhilliard/issho/internal/credentials/testing"
)

func writeSSHConfig(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "ssh_config")
	require.NoError(t, os.WriteFile(path, []byte("Host dev\n    HostName edge01.cluster\n    User analyst\n"), 0600))
	return path
}

func TestConfigChecks(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.toml")

	missing := (&ConfigFileCheck{ConfigPath: cfgPath}).Run(context.Background())
	assert.Equal(t, StatusFail, missing.Status)

	p := config.DefaultProfile("dev")
	p.SSHConfigPath = writeSSHConfig(t, dir)
	require.NoError(t, config.WriteProfile(cfgPath, p))

	found := (&ConfigFileCheck{ConfigPath: cfgPath}).Run(context.Background())
	assert.Equal(t, StatusPass, found.Status)
	assert.Contains(t, found.Message, cfgPath)

	ok := (&ProfileCheck{ConfigPath: cfgPath, Profile: "dev"}).Run(context.Background())
	assert.Equal(t, StatusPass, ok.Status)

	unknown := (&ProfileCheck{ConfigPath: cfgPath, Profile: "prod"}).Run(context.Background())
	assert.Equal(t, StatusFail, unknown.Status)
	assert.Contains(t, unknown.Suggestion, "issho config prod")
}

func TestSSHHostCheck(t *testing.T) {
	sshConfig := writeSSHConfig(t, t.TempDir())

	p := config.DefaultProfile("dev")
	p.SSHConfigPath = sshConfig
	r := (&SSHHostCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
	assert.Contains(t, r.Message, "edge01.cluster")

	p.Name = "prod"
	r = (&SSHHostCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)

	p.SSHConfigPath = ""
	r = (&SSHHostCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Message, "dialed as a hostname")
}

func TestKeyFileCheck(t *testing.T) {
	dir := t.TempDir()
	p := config.DefaultProfile("dev")

	r := (&KeyFileCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status, "no key configured")

	p.RSAIDPath = filepath.Join(dir, "id_missing")
	r = (&KeyFileCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusFail, r.Status)

	key := filepath.Join(dir, "id_ed25519")
	require.NoError(t, os.WriteFile(key, []byte("key"), 0644))
	require.NoError(t, os.Chmod(key, 0644))
	p.RSAIDPath = key
	r = (&KeyFileCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusWarn, r.Status)
	assert.Contains(t, r.Suggestion, "chmod 600")

	require.NoError(t, os.Chmod(key, 0600))
	r = (&KeyFileCheck{Profile: p}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
}

func TestKinitPasswordCheck(t *testing.T) {
	store := credtesting.NewFakeStore()
	p := config.DefaultProfile("dev")
	p.Kinit = false

	r := (&KinitPasswordCheck{Profile: p, Store: store, Account: "analyst"}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status, "kinit off")

	p.Kinit = true
	r = (&KinitPasswordCheck{Profile: p, Store: store, Account: "analyst"}).Run(context.Background())
	assert.Equal(t, StatusFail, r.Status)
	assert.Contains(t, r.Suggestion, "issho config dev")

	require.NoError(t, credentials.Save(store, "dev", credentials.KindKinit, "analyst", "pw"))
	r = (&KinitPasswordCheck{Profile: p, Store: store, Account: "analyst"}).Run(context.Background())
	assert.Equal(t, StatusPass, r.Status)
}

func TestNewLocalChecks(t *testing.T) {
	assert.Len(t, NewLocalChecks("", "dev", nil, nil), 2)

	p := config.DefaultProfile("dev")
	assert.Len(t, NewLocalChecks("", "dev", &p, credtesting.NewFakeStore()), 5)
}
