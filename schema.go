package sidecarrpc

import (
	internalclient "github.com/wagiedev/sidecar-rpc-go/internal/client"
)

// SimpleSchema creates a Schema from a simple type map.
//
// Input format: {"apiKey": "string", "messages": "[]object"}
// Every listed property is required. This is a convenience function for
// registering method schemas without the full jsonschema API:
//
//	err := client.RegisterMethod(sidecarrpc.MethodSpec{
//	    Name: "sendMessage",
//	    Params: sidecarrpc.SimpleSchema(map[string]string{
//	        "apiKey":   "string",
//	        "model":    "string",
//	        "messages": "[]object",
//	    }),
//	})
func SimpleSchema(props map[string]string) *Schema {
	return internalclient.SimpleSchema(props)
}
