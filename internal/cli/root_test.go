package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "toolingctl", cmd.Use)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"migrate", "reconcile", "version"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestReconcileCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	rc, _, err := cmd.Find([]string{"reconcile"})
	require.NoError(t, err)

	assert.Equal(t, "k", rc.Flags().Lookup("kind").Shorthand)
	assert.Equal(t, "f", rc.Flags().Lookup("file").Shorthand)
	assert.Equal(t, "", rc.Flags().Lookup("policy").DefValue)
	assert.Equal(t, "0", rc.Flags().Lookup("workers").DefValue)
}

func TestInvalidFormatRejected(t *testing.T) {
	cmd := NewRootCommand()
	cmd.SetArgs([]string{"version", "--format", "xml"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestVersionJSON(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"version", "--format", "json"})
	require.NoError(t, cmd.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &info))
	assert.Equal(t, Version, info["version"])
}

func TestReconcileRejectsBadArgsBeforeConnecting(t *testing.T) {
	cases := map[string][]string{
		"unknown kind":   {"reconcile", "--kind", "welding", "--file", "-"},
		"unknown policy": {"reconcile", "--kind", "purchase", "--file", "-", "--policy", "retry"},
		"missing file":   {"reconcile", "--kind", "purchase", "--file", "/nonexistent/batch.json"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetArgs(args)
			cmd.SetIn(strings.NewReader(`[]`))
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			err := cmd.Execute()
			require.Error(t, err)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}
