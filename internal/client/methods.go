package client

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"github.com/wagiedev/sidecar-rpc-go/internal/errors"
)

// MethodSpec describes a worker method a caller intends to use. A
// registered schema is enforced before each call; methods without a
// registration (or with a nil schema) pass params through unchecked.
type MethodSpec struct {
	Name        string
	Description string
	Params      *jsonschema.Schema
}

type registeredMethod struct {
	spec     MethodSpec
	resolved *jsonschema.Resolved
}

// RegisterMethod adds a method to the catalog. Registering the same name
// again replaces the earlier entry. Registration is allowed before Start.
func (c *Client) RegisterMethod(spec MethodSpec) error {
	if spec.Name == "" {
		return fmt.Errorf("method name is required")
	}

	reg := &registeredMethod{spec: spec}

	if spec.Params != nil {
		resolved, err := spec.Params.Resolve(nil)
		if err != nil {
			return fmt.Errorf("resolve schema for %q: %w", spec.Name, err)
		}

		reg.resolved = resolved
	}

	c.methodsMu.Lock()
	c.methods[spec.Name] = reg
	c.methodsMu.Unlock()

	return nil
}

// Methods lists the registered method specs sorted by name.
func (c *Client) Methods() []MethodSpec {
	c.methodsMu.RLock()

	specs := make([]MethodSpec, 0, len(c.methods))
	for _, reg := range c.methods {
		specs = append(specs, reg.spec)
	}

	c.methodsMu.RUnlock()

	slices.SortFunc(specs, func(a, b MethodSpec) int {
		return strings.Compare(a.Name, b.Name)
	})

	return specs
}

// validateParams checks params against the method's registered schema, if
// one exists. Validation happens before the call is registered with the
// correlator, so a rejection leaves no trace.
func (c *Client) validateParams(method string, params any) error {
	c.methodsMu.RLock()
	reg := c.methods[method]
	c.methodsMu.RUnlock()

	if reg == nil || reg.resolved == nil {
		return nil
	}

	// Validate the JSON form of the params, the same shape the worker
	// will see.
	data, err := json.Marshal(params)
	if err != nil {
		return &errors.SerializationError{Method: method, Err: err}
	}

	var instance any
	if err := json.Unmarshal(data, &instance); err != nil {
		return &errors.SerializationError{Method: method, Err: err}
	}

	if err := reg.resolved.Validate(instance); err != nil {
		return &errors.InvalidParamsError{Method: method, Err: err}
	}

	return nil
}
