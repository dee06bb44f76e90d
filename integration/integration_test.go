//go:build integration

// Package integration exercises the full client stack against real worker
// processes. Workers here are small shell scripts speaking the line
// protocol over stdio, so these tests cover process spawning, pipe
// framing, correlation, event fan-out, and exit diagnostics end to end.
//
// Run with:
//
//	go test -tags integration ./integration
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// echoWorker answers every request with a status event followed by a
// result echoing the numeric "n" param, correlated by the request's id.
const echoWorker = `#!/bin/sh
echo '{"ready":true}'
while IFS= read -r line; do
  id=$(printf '%s\n' "$line" | sed -n 's/.*"id":\([0-9][0-9]*\).*/\1/p')
  n=$(printf '%s\n' "$line" | sed -n 's/.*"n":\([0-9][0-9]*\).*/\1/p')
  printf '{"event":"agent_status","state":"thinking"}\n'
  printf '{"id":%s,"result":"got-%s"}\n' "$id" "${n:-0}"
done
`

// errorWorker rejects every request with the same error response.
const errorWorker = `#!/bin/sh
while IFS= read -r line; do
  id=$(printf '%s\n' "$line" | sed -n 's/.*"id":\([0-9][0-9]*\).*/\1/p')
  printf '{"id":%s,"error":{"code":429,"message":"worker saturated; retry later"}}\n' "$id"
done
`

// silentWorker consumes requests and never answers.
const silentWorker = `#!/bin/sh
while IFS= read -r line; do
  :
done
`

// floodWorker streams delta events as fast as the pipe accepts them.
const floodWorker = `#!/bin/sh
while :; do
  printf '{"event":"assistant_delta","delta":"chunk"}\n'
done
`

// crashWorker prints a diagnostic to stderr, swallows one request, and dies.
const crashWorker = `#!/bin/sh
printf 'worker: fatal: upstream unreachable\n' >&2
IFS= read -r line
exit 3
`

// requireShell skips the test when no POSIX shell is available to act as
// the worker.
func requireShell(t *testing.T) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("integration workers require a POSIX shell")
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

// writeWorker materializes a worker script and returns its path.
func writeWorker(t *testing.T, script string) string {
	t.Helper()

	requireShell(t)

	path := filepath.Join(t.TempDir(), "worker.sh")

	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write worker script: %v", err)
	}

	return path
}
