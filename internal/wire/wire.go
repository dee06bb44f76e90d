// Package wire defines the newline-delimited JSON documents exchanged with
// a worker process and the classification of inbound lines.
package wire

import (
	"encoding/json"
)

// Request is an outbound call document. IDs are assigned by the correlator
// and are unique for the lifetime of the client process.
type Request struct {
	ID     uint64 `json:"id"`
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
}

// Response is an inbound answer document. All fields are optional on the
// wire: a response carrying neither result nor error is a success with an
// empty result, and a response without an id correlates to nothing.
type Response struct {
	ID     *uint64      `json:"id,omitempty"`
	Result *string      `json:"result,omitempty"`
	Error  *ErrorObject `json:"error,omitempty"`
}

// ErrorObject is the failure payload inside a Response.
type ErrorObject struct {
	Code    int32  `json:"code"`
	Message string `json:"message"`
}

// EncodeRequest serializes a request to a single wire line, including the
// trailing newline that frames it. Workers never see a partial document:
// either the whole line is produced here or an error is returned and
// nothing is written.
func EncodeRequest(req *Request) ([]byte, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	return append(data, '\n'), nil
}
