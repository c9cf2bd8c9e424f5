package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	codes := []string{
		ErrConfig,
		ErrSSH,
		ErrCredential,
		ErrSubmission,
		ErrTransfer,
		ErrTunnel,
		ErrExec,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Profile 'dev' not found in ~/.issho/config.toml",
			suggestion: "Run: issho config dev",
		},
		{
			name:       "credential error",
			code:       ErrCredential,
			message:    "No kinit password stored for profile 'dev'",
			suggestion: "Run: issho config dev",
		},
		{
			name:       "submission error",
			code:       ErrSubmission,
			message:    "spark-submit needs an application",
			suggestion: "Pass the jar or python file to submit",
		},
		{
			name:       "transfer error",
			code:       ErrTransfer,
			message:    "Remote file /data/x.csv doesn't exist",
			suggestion: "Check the path with: issho exec ls /data",
		},
		{
			name:       "tunnel error",
			code:       ErrTunnel,
			message:    "Local port 44556 is already in use",
			suggestion: "Pick another port with --local-port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name:          "basic error formatting",
			err:           New(ErrConfig, "Invalid configuration", "Check config.toml syntax"),
			expectedParts: []string{"Invalid configuration", "Check config.toml syntax"},
		},
		{
			name:          "error with failure symbol",
			err:           New(ErrSSH, "Connection failed", "Try again"),
			expectedParts: []string{"✗", "Connection failed"},
		},
		{
			name:          "error without suggestion",
			err:           New(ErrExec, "Command failed", ""),
			expectedParts: []string{"Command failed"},
			notExpected:   []string{"\n\n  \n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part)
			}
			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying network error")
	wrapped := Wrap(cause, "SSH connection failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrSSH, wrapped.Code, "Wrap should default to ErrSSH code")
	assert.Equal(t, "SSH connection failed", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := WrapWithCode(cause, ErrTransfer, "Can't write out.csv", "Check the directory is writable")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrTransfer, wrapped.Code)
	assert.Equal(t, "Can't write out.csv", wrapped.Message)
	assert.Equal(t, "Check the directory is writable", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Cause)
	assert.Contains(t, wrapped.Error(), "permission denied")
}

func TestErrorsIsAndAs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := WrapWithCode(cause, ErrTunnel, "Tunnel error", "")

	assert.True(t, errors.Is(wrapped, cause))

	var isshoErr *Error
	require.True(t, errors.As(wrapped, &isshoErr))
	assert.Equal(t, ErrTunnel, isshoErr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrCredential, "Missing password", "")

	assert.True(t, IsCode(err, ErrCredential))
	assert.False(t, IsCode(err, ErrSSH))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("dial tcp 10.0.0.4:22: i/o timeout"),
		ErrSSH,
		"Can't reach 'dev' at 10.0.0.4:22",
		"Make sure the host is reachable: ping <host>",
	)

	lines := strings.Split(err.Error(), "\n")
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"))
	assert.Contains(t, lines[0], "Can't reach 'dev'")
}

func TestExitError(t *testing.T) {
	tests := []struct {
		code    int
		wantMsg string
	}{
		{0, "exit code 0"},
		{1, "exit code 1"},
		{137, "exit code 137"},
		{-1, "exit code -1"},
	}

	for _, tt := range tests {
		t.Run(tt.wantMsg, func(t *testing.T) {
			err := NewExitError(tt.code)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.wantMsg, err.Error())
		})
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOk   bool
	}{
		{"ExitError returns code", NewExitError(42), 42, true},
		{"standard error returns false", errors.New("standard error"), 0, false},
		{"nil error returns false", nil, 0, false},
		{"structured Error returns false", New(ErrExec, "test", ""), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := GetExitCode(tt.err)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.wantCode, code)
		})
	}
}
