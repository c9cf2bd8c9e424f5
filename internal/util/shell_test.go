package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShellQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", "'simple'"},
		{"with space", "'with space'"},
		{"with'quote", "'with'\\''quote'"},
		{"", "''"},
		{"$variable", "'$variable'"},
		{"$(command)", "'$(command)'"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShellQuote(tt.input))
		})
	}
}

func TestBuildCommand(t *testing.T) {
	tests := []struct {
		name string
		verb string
		args []string
		want string
	}{
		{"verb only", "ls", nil, "ls"},
		{"verb and args", "ls", []string{"-la", "/tmp"}, "ls -la /tmp"},
		{"multi-word verb", "hadoop fs", []string{"-ls", "/user"}, "hadoop fs -ls /user"},
		{"args kept verbatim", "echo", []string{"$HOME", "a|b"}, "echo $HOME a|b"},
		{"order preserved", "cp", []string{"c", "a", "b"}, "cp c a b"},
		{"empty verb", "", []string{"echo", "hi"}, "echo hi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BuildCommand(tt.verb, tt.args...))
		})
	}
}

func TestWrapBackground(t *testing.T) {
	got := WrapBackground("sleep 10")
	assert.Equal(t, `cmd=$"sleep 10"; nohup bash -c "$cmd" > /dev/null 2>&1 < /dev/null &`, got)
}

func TestWrapBackground_EscapesQuotes(t *testing.T) {
	got := WrapBackground(`echo "hi there" > out.txt`)
	assert.Equal(t, `cmd=$"echo \"hi there\" > out.txt"; nohup bash -c "$cmd" > /dev/null 2>&1 < /dev/null &`, got)
}

func TestUnwrapBackground_RoundTrip(t *testing.T) {
	cmds := []string{
		"sleep 10",
		`echo "quoted"`,
		`spark-submit --conf "a=b" app.jar`,
		"",
	}

	for _, cmd := range cmds {
		t.Run(cmd, func(t *testing.T) {
			inner, ok := UnwrapBackground(WrapBackground(cmd))
			assert.True(t, ok)
			assert.Equal(t, cmd, inner)
		})
	}
}

func TestUnwrapBackground_NotWrapped(t *testing.T) {
	_, ok := UnwrapBackground("ls -la")
	assert.False(t, ok)
}
