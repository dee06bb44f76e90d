package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWorkerNotFoundError(t *testing.T) {
	root := errors.New("executable file not found in $PATH")
	err := &WorkerNotFoundError{
		Command: "agent",
		Err:     root,
	}

	require.Equal(
		t,
		`worker command "agent" not found: executable file not found in $PATH`,
		err.Error(),
	)
	require.ErrorIs(t, err, root)
	require.True(t, err.IsSidecarError())
}

func TestWorkerError_MessageSurfacedVerbatim(t *testing.T) {
	err := &WorkerError{
		Code:    -32601,
		Message: "method not found: frobnicate",
	}

	require.Equal(t, "method not found: frobnicate", err.Error())
	require.EqualValues(t, -32601, err.Code)
	require.True(t, err.IsSidecarError())
}

func TestSerializationError(t *testing.T) {
	root := errors.New("json: unsupported type: chan int")
	err := &SerializationError{
		Method: "sendMessage",
		Err:    root,
	}

	require.Equal(
		t,
		`failed to encode request for "sendMessage": json: unsupported type: chan int`,
		err.Error(),
	)
	require.ErrorIs(t, err, root)
	require.True(t, err.IsSidecarError())
}

func TestProcessError_WithUnderlyingError(t *testing.T) {
	root := errors.New("signal: killed")
	err := &ProcessError{
		ExitCode: 9,
		Stderr:   "ignored when Err is set",
		Err:      root,
	}

	require.Equal(t, "worker process failed (exit 9): signal: killed", err.Error())
	require.ErrorIs(t, err, root)
	require.True(t, err.IsSidecarError())
}

func TestProcessError_WithStderrOnly(t *testing.T) {
	err := &ProcessError{
		ExitCode: 2,
		Stderr:   "permission denied",
	}

	require.Equal(t, "worker process failed (exit 2): permission denied", err.Error())
	require.NoError(t, err.Unwrap())
	require.True(t, err.IsSidecarError())
}

func TestInvalidParamsError(t *testing.T) {
	root := errors.New(`missing required property "model"`)
	err := &InvalidParamsError{
		Method: "sendMessage",
		Err:    root,
	}

	require.Equal(
		t,
		`invalid params for "sendMessage": missing required property "model"`,
		err.Error(),
	)
	require.ErrorIs(t, err, root)
	require.True(t, err.IsSidecarError())
}
