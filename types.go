package sidecarrpc

import (
	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/sidecar-rpc-go/internal/client"
	"github.com/wagiedev/sidecar-rpc-go/internal/config"
	"github.com/wagiedev/sidecar-rpc-go/internal/events"
	"github.com/wagiedev/sidecar-rpc-go/internal/journal"
	"github.com/wagiedev/sidecar-rpc-go/internal/wire"
)

// Re-export types from internal packages

// ===== Options and Configuration =====

// Options configures a client and its worker process.
// Usually built via functional options; see Option and the With* helpers.
type Options = config.Options

// DefaultWorkerCommand is the worker binary spawned when none is configured.
const DefaultWorkerCommand = config.DefaultWorkerCommand

// ===== Events =====

// Event is a tagged notification the worker pushes outside any call.
// Unknown tags flow through unchanged; use Decode to map the payload onto
// a typed struct.
type Event = wire.Event

// Subscription delivers events for one tag over a buffered channel.
type Subscription = events.Subscription

// AllTags subscribes to every event regardless of tag.
const AllTags = events.AllTags

// Tags emitted by the stock agent worker.
const (
	// EventAgentStatus carries the worker's processing state.
	EventAgentStatus = wire.TagAgentStatus
	// EventAssistantDelta carries one streamed chunk of assistant output.
	EventAssistantDelta = wire.TagAssistantDelta
)

// StatusEvent is the payload of an agent_status event.
type StatusEvent = wire.StatusEvent

// DeltaEvent is the payload of an assistant_delta event.
type DeltaEvent = wire.DeltaEvent

// ===== Methods =====

// MethodSpec describes a worker method and an optional params schema
// enforced before each call.
type MethodSpec = client.MethodSpec

// Schema is a JSON schema for method params.
type Schema = jsonschema.Schema

// MethodSendMessage is the worker method that runs one agent turn.
const MethodSendMessage = client.MethodSendMessage

// ChatMessage is one turn of conversation history.
type ChatMessage = client.ChatMessage

// SendMessageParams are the arguments of the sendMessage method.
type SendMessageParams = client.SendMessageParams

// ===== Journal =====

// Entry is one journaled wire document.
type Entry = journal.Entry

// Directions of journaled traffic.
const (
	// DirectionSend marks requests written to the worker.
	DirectionSend = journal.DirectionSend
	// DirectionRecv marks responses and events read from the worker.
	DirectionRecv = journal.DirectionRecv
)

// Kinds of journaled documents.
const (
	// KindRequest is a request sent to the worker.
	KindRequest = journal.KindRequest
	// KindResponse is a response read from the worker.
	KindResponse = journal.KindResponse
	// KindEvent is an event read from the worker.
	KindEvent = journal.KindEvent
)
