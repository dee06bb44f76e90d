package wire

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeRequest(t *testing.T) {
	req := &Request{
		ID:     1,
		Method: "sendMessage",
		Params: map[string]any{"model": "opus"},
	}

	data, err := EncodeRequest(req)
	require.NoError(t, err)

	require.Equal(t, byte('\n'), data[len(data)-1], "line must be newline-terminated")
	require.JSONEq(t, `{"id":1,"method":"sendMessage","params":{"model":"opus"}}`, string(data))
}

func TestEncodeRequest_NilParamsOmitted(t *testing.T) {
	data, err := EncodeRequest(&Request{ID: 7, Method: "ping"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":7,"method":"ping"}`, string(data))
}

func TestEncodeRequest_UnserializableParams(t *testing.T) {
	data, err := EncodeRequest(&Request{
		ID:     3,
		Method: "sendMessage",
		Params: map[string]any{"bad": make(chan int)},
	})

	require.Error(t, err)
	require.Nil(t, data, "nothing may reach the wire on encode failure")
}

func TestRequestResponseRoundTrip(t *testing.T) {
	data, err := EncodeRequest(&Request{ID: 7, Method: "sendMessage"})
	require.NoError(t, err)

	var onWire struct {
		ID uint64 `json:"id"`
	}

	require.NoError(t, json.Unmarshal(data, &onWire))

	// The worker echoes the id back; classification recovers it intact.
	got := Classify([]byte(`{"id":7,"result":"ok"}`))

	require.Equal(t, KindResponse, got.Kind)
	require.NotNil(t, got.Response.ID)
	require.Equal(t, onWire.ID, *got.Response.ID)
	require.Equal(t, "ok", *got.Response.Result)
}

func TestResponseDecode_SuccessWithEmptyResult(t *testing.T) {
	var resp Response

	require.NoError(t, json.Unmarshal([]byte(`{"id":5}`), &resp))
	require.NotNil(t, resp.ID)
	require.EqualValues(t, 5, *resp.ID)
	require.Nil(t, resp.Result)
	require.Nil(t, resp.Error)
}

func TestEventDecode(t *testing.T) {
	evt := &Event{
		Tag: "agent_status",
		Fields: map[string]any{
			"event":      "agent_status",
			"state":      "thinking",
			"turnNumber": float64(3),
			"extra":      "ignored by the target struct",
		},
	}

	var payload struct {
		State string `json:"state"`
		Turn  int    `json:"turnNumber"`
	}

	require.NoError(t, evt.Decode(&payload))
	require.Equal(t, "thinking", payload.State)
	require.Equal(t, 3, payload.Turn)
}

func TestEventDecode_TypeMismatch(t *testing.T) {
	evt := &Event{
		Tag:    "agent_status",
		Fields: map[string]any{"event": "agent_status", "state": 42},
	}

	var payload struct {
		State string `json:"state"`
	}

	require.Error(t, evt.Decode(&payload))
}

func TestEventDecode_TypedPayloads(t *testing.T) {
	status := &Event{
		Tag:    TagAgentStatus,
		Fields: map[string]any{"event": TagAgentStatus, "state": "thinking"},
	}

	var st StatusEvent
	require.NoError(t, status.Decode(&st))
	require.Equal(t, "thinking", st.State)

	delta := &Event{
		Tag:    TagAssistantDelta,
		Fields: map[string]any{"event": TagAssistantDelta, "delta": "Hello, "},
	}

	var d DeltaEvent
	require.NoError(t, delta.Decode(&d))
	require.Equal(t, "Hello, ", d.Delta)
}
