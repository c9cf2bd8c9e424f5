package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"dev", "dev"},
		{"1.2.0", "v1.2.0"},
		{"v1.2.0", "v1.2.0"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatVersion(tt.in), tt.in)
	}
}

func TestVersionCmd(t *testing.T) {
	env := newCLIEnv(t, nil)
	oldV, oldC, oldD := version, commit, date
	SetVersionInfo("0.3.1", "abc1234", "2026-01-02")
	t.Cleanup(func() { SetVersionInfo(oldV, oldC, oldD) })

	out, _, err := env.run(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "issho v0.3.1\n"), out)
	assert.Contains(t, out, "commit: abc1234")

	out, _, err = env.run(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "0.3.1\n", out)
}
