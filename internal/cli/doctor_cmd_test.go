package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/issho/internal/doctor"
	"github.com/rileyhilliard/issho/internal/errors"
	sshtesting "github.com/rileyhilliard/issho/pkg/sshutil/testing"
)

func withRemoteTools(env *cliEnv) {
	for tool, path := range map[string]string{
		"hadoop":       "/usr/bin/hadoop",
		"beeline":      "/usr/bin/beeline",
		"spark-submit": "/opt/spark/bin/spark-submit",
	} {
		env.mock.SetCommandResponse(`^command -v '`+tool+`'$`, sshtesting.CommandResponse{Stdout: []byte(path + "\n")})
	}
}

func TestDoctorCmd_AllClear(t *testing.T) {
	env := newCLIEnv(t, nil)
	withRemoteTools(env)

	out, _, err := env.run(t, "doctor")
	require.NoError(t, err)

	assert.Contains(t, out, "CONFIG")
	assert.Contains(t, out, "Host dev: edge01.cluster")
	assert.Contains(t, out, "Connected to dev")
	assert.Contains(t, out, "beeline: /usr/bin/beeline")
	assert.Contains(t, out, "TMP_DIR /tmp is writable")
	assert.Contains(t, out, "Everything looks good")
	assert.True(t, env.mock.Closed())
}

func TestDoctorCmd_MissingToolWarns(t *testing.T) {
	env := newCLIEnv(t, nil)

	out, _, err := env.run(t, "doctor")
	require.NoError(t, err, "warnings don't fail")
	assert.Contains(t, out, "beeline isn't on the remote PATH")
	assert.Contains(t, out, "3 issues found")
}

func TestDoctorCmd_UnknownProfileSkipsRemote(t *testing.T) {
	env := newCLIEnv(t, nil)

	out, _, err := env.run(t, "-p", "prod", "doctor")
	code, ok := errors.GetExitCode(err)
	require.True(t, ok)
	assert.Equal(t, 1, code)

	assert.Contains(t, out, "Profile 'prod' not found")
	assert.NotContains(t, out, "REMOTE")
	assert.Empty(t, env.dialed)
}

func TestDoctorCmd_Local(t *testing.T) {
	env := newCLIEnv(t, nil)

	_, _, err := env.run(t, "doctor", "--local")
	require.NoError(t, err)
	assert.Empty(t, env.dialed)
}

func TestDoctorCmd_JSON(t *testing.T) {
	env := newCLIEnv(t, nil)
	withRemoteTools(env)

	out, _, err := env.run(t, "doctor", "--json")
	require.NoError(t, err)

	var got DoctorOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "dev", got.Profile)
	assert.True(t, got.Summary.AllClear)
	assert.Zero(t, got.Summary.Fail)

	var categories []string
	for _, r := range got.Results {
		categories = append(categories, r.Category)
	}
	assert.Contains(t, categories, doctor.CategoryRemote)
}
