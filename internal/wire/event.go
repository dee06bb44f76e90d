package wire

import (
	"github.com/mitchellh/mapstructure"
)

// Tags the stock agent worker emits. Workers are free to emit any tag;
// these two are the ones with typed payloads in this package.
const (
	TagAgentStatus    = "agent_status"
	TagAssistantDelta = "assistant_delta"
)

// StatusEvent is the payload of an agent_status event.
type StatusEvent struct {
	State string `json:"state"`
}

// DeltaEvent is the payload of an assistant_delta event.
type DeltaEvent struct {
	Delta string `json:"delta"`
}

// Event is an unsolicited notification from the worker. The tag names the
// kind of event; the payload is kept opaque so unknown tags flow through
// the client unchanged.
type Event struct {
	// Tag is the value of the document's "event" field.
	Tag string

	// Fields is the complete document, tag included.
	Fields map[string]any
}

// Decode maps the event payload onto dst, matching keys against `json`
// struct tags. Extra payload fields are ignored so workers can add fields
// without breaking older clients.
func (e *Event) Decode(dst any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  dst,
	})
	if err != nil {
		return err
	}

	return dec.Decode(e.Fields)
}
