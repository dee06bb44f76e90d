package journal

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// openJournal opens a journal backed by a temp file and returns it with
// its path so tests can reopen it after Close.
func openJournal(t *testing.T) (*Journal, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "traffic.db")

	j, err := Open(context.Background(), slog.Default(), path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

// reopen opens an existing journal file for inspection.
func reopen(t *testing.T, path string) *Journal {
	t.Helper()

	j, err := Open(context.Background(), slog.Default(), path)
	require.NoError(t, err)

	t.Cleanup(func() { _ = j.Close() })

	return j
}

func TestJournal_RecordsRoundTrip(t *testing.T) {
	j, path := openJournal(t)

	id := uint64(7)
	result := "ok"

	j.RecordSend(
		&wire.Request{ID: 7, Method: "sendMessage"},
		[]byte(`{"id":7,"method":"sendMessage"}`+"\n"),
	)
	j.RecordResponse(
		&wire.Response{ID: &id, Result: &result},
		[]byte(`{"id":7,"result":"ok"}`),
	)
	j.RecordEvent(
		&wire.Event{Tag: "agent_status", Fields: map[string]any{"event": "agent_status"}},
		[]byte(`{"event":"agent_status"}`),
	)

	// Close drains the async queue; reopen to inspect what was written.
	require.NoError(t, j.Close())

	entries, err := reopen(t, path).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// Newest first.
	event := entries[0]
	require.Equal(t, DirectionRecv, event.Direction)
	require.Equal(t, KindEvent, event.Kind)
	require.Equal(t, "agent_status", event.Label)
	require.Nil(t, event.CallID)
	require.JSONEq(t, `{"event":"agent_status"}`, string(event.Payload))

	resp := entries[1]
	require.Equal(t, DirectionRecv, resp.Direction)
	require.Equal(t, KindResponse, resp.Kind)
	require.NotNil(t, resp.CallID)
	require.Equal(t, uint64(7), *resp.CallID)

	req := entries[2]
	require.Equal(t, DirectionSend, req.Direction)
	require.Equal(t, KindRequest, req.Kind)
	require.Equal(t, "sendMessage", req.Label)
	require.NotNil(t, req.CallID)
	require.Equal(t, uint64(7), *req.CallID)
	// The framing newline is not part of the journaled document.
	require.Equal(t, `{"id":7,"method":"sendMessage"}`, string(req.Payload))

	require.False(t, event.Time.IsZero())
}

func TestJournal_RecentRespectsLimit(t *testing.T) {
	j, path := openJournal(t)

	for i := range uint64(5) {
		j.RecordSend(&wire.Request{ID: i + 1, Method: "ping"}, []byte(`{}`))
	}

	require.NoError(t, j.Close())

	entries, err := reopen(t, path).Recent(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first means the highest call ids.
	require.Equal(t, uint64(5), *entries[0].CallID)
	require.Equal(t, uint64(4), *entries[1].CallID)
}

func TestJournal_RecentOnEmptyJournal(t *testing.T) {
	j, _ := openJournal(t)

	entries, err := j.Recent(context.Background(), 10)

	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestJournal_IDLessResponseHasNilCallID(t *testing.T) {
	j, path := openJournal(t)

	j.RecordResponse(&wire.Response{}, []byte(`{"ready":true}`))

	require.NoError(t, j.Close())

	entries, err := reopen(t, path).Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Nil(t, entries[0].CallID)
}

func TestJournal_RecordAfterCloseIsDropped(t *testing.T) {
	j, path := openJournal(t)

	require.NoError(t, j.Close())

	require.NotPanics(t, func() {
		j.RecordSend(&wire.Request{ID: 1, Method: "ping"}, []byte(`{}`))
	})

	entries, err := reopen(t, path).Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestJournal_CloseIsIdempotent(t *testing.T) {
	j, _ := openJournal(t)

	require.NoError(t, j.Close())
	require.NoError(t, j.Close())
}

func TestOpen_CreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "traffic.db")

	j, err := Open(context.Background(), slog.Default(), path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	_, err = os.Stat(path)
	require.NoError(t, err)
}
