package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// testBinary locates the compiled outreach_agent binary. CLI tests drive
// the real executable, so they skip under -short and when nothing has been
// built yet.
func testBinary(t *testing.T) string {
	t.Helper()

	if testing.Short() {
		t.Skip("CLI tests exec the compiled binary, skipped in short mode")
	}
	path := filepath.Join("..", "..", "bin", "outreach_agent")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("no binary at %s, run 'make build' first", path)
	}
	return path
}

// envWithout returns the current environment with the named variables
// removed, so a subprocess cannot pick them up from a developer's .env
func envWithout(keys ...string) []string {
	var env []string
	for _, e := range os.Environ() {
		keep := true
		for _, k := range keys {
			if strings.HasPrefix(e, k+"=") {
				keep = false
				break
			}
		}
		if keep {
			env = append(env, e)
		}
	}
	return env
}
