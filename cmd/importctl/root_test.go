package main

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRootCommandTree(t *testing.T) {
	t.Parallel()

	root := newRootCmd()

	cases := map[string][]string{
		"create":  {"source"},
		"advance": {"job", "action", "until-done", "busy-retry"},
		"run":     {"job"},
		"migrate": nil,
	}
	for name, flags := range cases {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, cmd.Name())
		for _, flag := range flags {
			require.NotNil(t, cmd.Flags().Lookup(flag), "%s --%s", name, flag)
		}
	}
}

func TestCreateRequiresSource(t *testing.T) {
	t.Parallel()

	root := newRootCmd()
	root.SetArgs([]string{"create"})
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	err := root.Execute()
	require.ErrorContains(t, err, `"source" not set`)
}
