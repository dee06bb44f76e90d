//go:build integration

package integration

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	sidecarrpc "github.com/wagiedev/sidecar-rpc-go"
)

// TestClient_CloseMidStream closes the client while a real worker floods
// events and verifies shutdown is prompt.
func TestClient_CloseMidStream(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	worker := writeWorker(t, floodWorker)

	client := sidecarrpc.NewClient()

	require.NoError(t, client.Start(ctx, sidecarrpc.WithWorkerCommand(worker)))

	sub, err := client.Subscribe(sidecarrpc.EventAssistantDelta)
	require.NoError(t, err)

	received := 0

	for received < 3 {
		select {
		case _, ok := <-sub.Events():
			require.True(t, ok, "subscription closed before enough events arrived")

			received++
		case <-time.After(10 * time.Second):
			t.Fatal("timed out waiting for events")
		}
	}

	closeStart := time.Now()
	err = client.Close()
	closeDuration := time.Since(closeStart)

	require.NoError(t, err, "Close should succeed")
	t.Logf("Close completed in %v after %d events", closeDuration, received)

	require.Less(t, closeDuration, 10*time.Second,
		"Close should not wait for the stream to end")
}

// TestClient_RapidCloseReopen starts, uses, and closes fresh clients in
// quick succession against the same worker binary.
func TestClient_RapidCloseReopen(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	worker := writeWorker(t, echoWorker)

	for i := range 3 {
		t.Run(fmt.Sprintf("iteration_%d", i), func(t *testing.T) {
			client := sidecarrpc.NewClient()

			require.NoError(t, client.Start(ctx, sidecarrpc.WithWorkerCommand(worker)))

			result, err := client.Call(ctx, "echo", map[string]any{"n": i})
			require.NoError(t, err)
			require.Equal(t, fmt.Sprintf("got-%d", i), result)

			require.NoError(t, client.Close())
		})
	}
}

// TestClient_WorkerCrashFailsCalls verifies a worker that dies mid-call
// fails the caller with exit diagnostics instead of hanging, and that
// later calls fail fast.
func TestClient_WorkerCrashFailsCalls(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	worker := writeWorker(t, crashWorker)

	var mu sync.Mutex

	var stderrLines []string

	client := sidecarrpc.NewClient()
	defer client.Close()

	err := client.Start(ctx,
		sidecarrpc.WithWorkerCommand(worker),
		sidecarrpc.WithStderr(func(line string) {
			mu.Lock()
			stderrLines = append(stderrLines, line)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)

	_, err = client.Call(ctx, "echo", map[string]any{"n": 1})
	require.ErrorIs(t, err, sidecarrpc.ErrTransportUnavailable)

	procErr, ok := errors.AsType[*sidecarrpc.ProcessError](err)
	require.True(t, ok, "expected ProcessError in the chain, got: %v", err)
	require.Equal(t, 3, procErr.ExitCode)
	require.Contains(t, procErr.Stderr, "upstream unreachable")

	mu.Lock()
	captured := strings.Join(stderrLines, "\n")
	mu.Unlock()

	require.Contains(t, captured, "upstream unreachable")

	// The stream is gone; later calls must not sit out a timeout.
	start := time.Now()

	_, err = client.Call(ctx, "echo", map[string]any{"n": 2})
	require.ErrorIs(t, err, sidecarrpc.ErrTransportUnavailable)
	require.Less(t, time.Since(start), 5*time.Second)
}
