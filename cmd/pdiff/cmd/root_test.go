package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := GetRootCommand()

	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

func TestRootCommand_VersionFlag(t *testing.T) {
	out, err := executeCommand(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, out, "pdiff version")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	root := GetRootCommand()

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Contains(t, names, "compare")
	assert.Contains(t, names, "serve")
}

func TestCompareCommand_RequiresTwoArgs(t *testing.T) {
	_, err := executeCommand(t, "compare", "only-one.pdf")
	require.Error(t, err)
}

func TestCompareCommand_RejectsUnknownFormat(t *testing.T) {
	_, err := executeCommand(t, "compare", "left.pdf", "right.pdf",
		"--no-render", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported report format")
}
