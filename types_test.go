package sidecarrpc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSendMessageParams_Serialization tests the wire shape of sendMessage params.
func TestSendMessageParams_Serialization(t *testing.T) {
	params := SendMessageParams{
		APIKey: "sk-test",
		Model:  "claude-sonnet-4-5",
		Messages: []ChatMessage{
			{Role: "user", Content: "Hello"},
			{Role: "assistant", Content: "Hi! How can I help?"},
		},
		WorkspacePath: "/home/dev/project",
		TavilyAPIKey:  "tvly-test",
	}

	data, err := json.Marshal(params)
	require.NoError(t, err)
	require.JSONEq(t, `{
		"apiKey": "sk-test",
		"model": "claude-sonnet-4-5",
		"messages": [
			{"role": "user", "content": "Hello"},
			{"role": "assistant", "content": "Hi! How can I help?"}
		],
		"workspacePath": "/home/dev/project",
		"tavilyApiKey": "tvly-test"
	}`, string(data))
}

// TestSendMessageParams_OptionalFields tests that empty optionals are omitted.
func TestSendMessageParams_OptionalFields(t *testing.T) {
	params := SendMessageParams{
		APIKey:   "sk-test",
		Model:    "claude-sonnet-4-5",
		Messages: []ChatMessage{{Role: "user", Content: "Hello"}},
	}

	data, err := json.Marshal(params)
	require.NoError(t, err)

	require.NotContains(t, string(data), "workspacePath")
	require.NotContains(t, string(data), "tavilyApiKey")
}

// TestEventTags tests the exported tag constants.
func TestEventTags(t *testing.T) {
	require.Equal(t, "agent_status", EventAgentStatus)
	require.Equal(t, "assistant_delta", EventAssistantDelta)
	require.Equal(t, "*", AllTags)
}

// TestEvent_DecodeTypedPayloads tests typed decoding of the stock events.
func TestEvent_DecodeTypedPayloads(t *testing.T) {
	status := Event{
		Tag:    EventAgentStatus,
		Fields: map[string]any{"event": EventAgentStatus, "state": "running_tool"},
	}

	var st StatusEvent
	require.NoError(t, status.Decode(&st))
	require.Equal(t, "running_tool", st.State)

	delta := Event{
		Tag:    EventAssistantDelta,
		Fields: map[string]any{"event": EventAssistantDelta, "delta": "chunk"},
	}

	var d DeltaEvent
	require.NoError(t, delta.Decode(&d))
	require.Equal(t, "chunk", d.Delta)
}

// TestJournalConstants tests the traffic direction and kind labels.
func TestJournalConstants(t *testing.T) {
	require.Equal(t, "send", DirectionSend)
	require.Equal(t, "recv", DirectionRecv)
	require.Equal(t, "request", KindRequest)
	require.Equal(t, "response", KindResponse)
	require.Equal(t, "event", KindEvent)
}
