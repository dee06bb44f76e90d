package wire

import (
	"bytes"
	"encoding/json"
)

// Kind discriminates the three classes of inbound line.
type Kind int

const (
	// KindUnrecognized marks lines that decode as neither event nor
	// response: log noise, partial writes, non-JSON diagnostics. They are
	// skipped, never fatal.
	KindUnrecognized Kind = iota

	// KindEvent marks documents carrying a string "event" tag.
	KindEvent

	// KindResponse marks documents with the response shape.
	KindResponse
)

// Classified is the result of classifying one line.
type Classified struct {
	Kind     Kind
	Event    *Event
	Response *Response
}

// Classify decides what a complete line is.
//
// The event tag is checked first: any JSON object whose "event" field is a
// string is an event, regardless of what other fields it carries. Otherwise
// the line must decode into the Response shape. Everything else, including
// empty lines, is unrecognized.
func Classify(line []byte) Classified {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Classified{Kind: KindUnrecognized}
	}

	var fields map[string]any
	if err := json.Unmarshal(line, &fields); err != nil {
		return Classified{Kind: KindUnrecognized}
	}

	if tag, ok := fields["event"].(string); ok {
		return Classified{
			Kind:  KindEvent,
			Event: &Event{Tag: tag, Fields: fields},
		}
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		// A JSON object that does not fit the response shape, e.g. a
		// string id or a non-object error field.
		return Classified{Kind: KindUnrecognized}
	}

	return Classified{
		Kind:     KindResponse,
		Response: &resp,
	}
}
