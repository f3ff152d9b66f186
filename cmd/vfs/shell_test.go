package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vorteil/vfsdisk/pkg/elog"
)

// withScriptedStdin temporarily replaces os.Stdin with a pipe fed the given
// script, for the duration of fn.
func withScriptedStdin(t *testing.T, script string, fn func()) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)

	orig := os.Stdin
	os.Stdin = r
	defer func() { os.Stdin = orig }()

	go func() {
		_, _ = w.WriteString(script)
		w.Close()
	}()

	fn()
}

func TestShellScriptCreatesAndListsDirectory(t *testing.T) {
	log = &elog.CLI{}

	path := filepath.Join(t.TempDir(), "disk.img")
	script := "y\n4M\nmkdir /a\nmkdir /a/b\nls /a\ncd /a/b\npwd\nexit\n"

	withScriptedStdin(t, script, func() {
		err := runShell(path)
		require.NoError(t, err)
	})

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("disk image was not created: %v", err)
	}
}

func TestShellUnknownCommandDoesNotAbortTheLoop(t *testing.T) {
	log = &elog.CLI{}

	path := filepath.Join(t.TempDir(), "disk.img")
	script := "y\n1M\nbogus-command\npwd\nexit\n"

	withScriptedStdin(t, script, func() {
		err := runShell(path)
		require.NoError(t, err)
	})
}
