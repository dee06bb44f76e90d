package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/wagiedev/sidecar-rpc-go/internal/config"
	"github.com/wagiedev/sidecar-rpc-go/internal/errors"
	"github.com/wagiedev/sidecar-rpc-go/internal/stream"
)

const (
	// readChunkSize is the buffer size for each stdout/stderr read. Chunks
	// are fed into a line buffer, so a single document may span many reads
	// or share one read with its neighbors.
	readChunkSize = 32 * 1024

	// maxStderrBufferSize is the maximum size for the retained stderr buffer.
	// Stderr reading continues indefinitely (callback receives all lines),
	// but the buffer stops growing after this limit to prevent unbounded memory usage.
	maxStderrBufferSize = 10 * 1024 * 1024 // 10MB
)

// Worker implements Transport by spawning a worker subprocess.
//
// Stdout carries the protocol: one document per line, demultiplexed by a
// per-stream line buffer. Stderr is demultiplexed independently and never
// interpreted as protocol traffic; its lines go to the logger, the optional
// callback, and a capped buffer used for exit diagnostics.
type Worker struct {
	log            *slog.Logger
	options        *config.Options
	command        string
	args           []string
	env            []string
	cwd            string
	cmd            *exec.Cmd
	stdin          io.WriteCloser
	stdout         io.ReadCloser
	stderr         io.ReadCloser
	stderrCallback func(string) // Callback for streaming stderr output
	mu             sync.Mutex   // Protects stdin writes and lifecycle flags
	closing        bool         // Whether Close() has been called (intentional shutdown)
	stdinClosed    bool         // Whether stdin was closed (EndInput or context cancellation)
}

// Compile-time verification that Worker implements the Transport interface.
var _ config.Transport = (*Worker)(nil)

// New creates a worker transport from options.
//
// The logger receives debug, info, warn, and error messages during
// transport operations. Command resolution is deferred to Start().
func New(log *slog.Logger, options *config.Options) *Worker {
	return &Worker{
		log:            log.With("component", "worker"),
		options:        options,
		stderrCallback: options.Stderr,
	}
}

// Start spawns the worker subprocess.
//
// The configured command is resolved (via PATH for bare names), the
// process is started with the configured arguments, environment, and
// working directory, and stdin/stdout/stderr pipes are set up.
//
// The context bounds startup work only. The process itself outlives it:
// a worker runs until Close kills it or it exits on its own, even when
// the caller started it under a deadline.
//
// Returns WorkerNotFoundError if the binary cannot be located.
func (t *Worker) Start(ctx context.Context) error {
	command := t.options.Command
	if command == "" {
		command = config.DefaultWorkerCommand
	}

	t.log.Info("Starting worker subprocess", "command", command)

	path, err := resolveCommand(command)
	if err != nil {
		return &errors.WorkerNotFoundError{Command: command, Err: err}
	}

	t.command = path
	t.args = t.options.Args
	t.env = buildEnvironment(t.options.Env)

	t.cwd = t.options.Cwd
	if t.cwd == "" {
		t.cwd, err = os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	//nolint:gosec // G204: Subprocess launching with dynamic args is the point here
	cmd := exec.Command(t.command, t.args...)
	cmd.Dir = t.cwd
	cmd.Env = t.env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		t.log.Error("Failed to create stdin pipe", "error", err)

		return fmt.Errorf("stdin pipe: %w", err)
	}

	t.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		t.log.Error("Failed to create stdout pipe", "error", err)

		return fmt.Errorf("stdout pipe: %w", err)
	}

	t.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		t.log.Error("Failed to create stderr pipe", "error", err)

		return fmt.Errorf("stderr pipe: %w", err)
	}

	t.stderr = stderr

	if err := cmd.Start(); err != nil {
		t.log.Error("Failed to start worker process", "error", err)

		return fmt.Errorf("start process: %w", err)
	}

	t.cmd = cmd
	t.log.Info("Worker subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// Lines reads complete lines from the worker's stdout.
//
// This method starts a goroutine that reads stdout in chunks and feeds
// them through a line buffer, emitting each complete line on the returned
// channel. Lines are raw bytes: classification happens upstream.
//
// The goroutine exits when:
//   - The worker process terminates
//   - The context is cancelled
//   - An unrecoverable read error occurs
//
// When the process exits with a failure (and Close was not the cause), a
// ProcessError carrying the exit code and captured stderr is sent on the
// error channel. Both channels are closed when reading completes.
func (t *Worker) Lines(ctx context.Context) (<-chan []byte, <-chan error) {
	lines := make(chan []byte)
	errs := make(chan error, 2)

	// Stderr is demultiplexed on its own goroutine with its own buffer;
	// protocol and diagnostics never share a stream.
	var stderrWg sync.WaitGroup

	var stderrTail strings.Builder

	var stderrMu sync.Mutex

	// Always drain stderr for error reporting (must complete reads before Wait())
	// See: https://pkg.go.dev/os/exec#Cmd.StderrPipe

	stderrWg.Go(func() {
		// Relies on process kill to close the pipe and unblock Read.
		var buf stream.LineBuffer

		chunk := make([]byte, readChunkSize)

		record := func(s string) {
			stderrMu.Lock()

			if stderrTail.Len() < maxStderrBufferSize {
				if stderrTail.Len() > 0 {
					stderrTail.WriteString("\n")
				}

				stderrTail.WriteString(s)
			}

			stderrMu.Unlock()

			if t.stderrCallback != nil {
				t.stderrCallback(s)
			}
		}

		for {
			n, err := t.stderr.Read(chunk)
			if n > 0 {
				buf.Feed(chunk[:n])

				for line := range buf.Lines() {
					s := string(line)
					t.log.Debug("Worker stderr", "line", s)
					record(s)
				}
			}

			if err != nil {
				// A trailing fragment is still useful diagnostics, e.g. a
				// crash message without a final newline.
				if buf.Buffered() > 0 {
					if line, ok := flushResidual(&buf); ok {
						t.log.Debug("Worker stderr", "line", line)
						record(line)
					}
				}

				if err != io.EOF {
					t.log.Debug("Stderr read ended", "error", err)
				}

				return
			}

			select {
			case <-ctx.Done():
				return
			default:
			}
		}
	})

	go func() {
		defer close(lines)
		defer close(errs)
		defer t.log.Debug("Line reader stopped")

		var buf stream.LineBuffer

		chunk := make([]byte, readChunkSize)

		lineCount := 0

	read:
		for {
			n, err := t.stdout.Read(chunk)
			if n > 0 {
				buf.Feed(chunk[:n])

				for line := range buf.Lines() {
					select {
					case lines <- line:
						lineCount++

					case <-ctx.Done():
						t.log.Debug("Context cancelled during line send", "error", ctx.Err())

						errs <- ctx.Err()

						return
					}
				}
			}

			if err != nil {
				if err != io.EOF {
					t.log.Debug("Stdout read ended", "error", err)
				}

				break read
			}

			select {
			case <-ctx.Done():
				t.log.Debug("Context cancelled during read", "error", ctx.Err())

				errs <- ctx.Err()

				return
			default:
			}
		}

		// Protocol documents are newline-terminated; whatever is left did
		// not finish arriving and cannot be trusted.
		if buf.Buffered() > 0 {
			t.log.Debug("Discarding unterminated output", "bytes", buf.Buffered())
		}

		t.log.Debug("Stdout closed", "lines_read", lineCount)

		// Wait for stderr goroutine before process wait
		stderrWg.Wait()

		t.log.Debug("Waiting for worker process to exit")

		if err := t.cmd.Wait(); err != nil {
			// Check if this is an intentional shutdown
			t.mu.Lock()
			isClosing := t.closing
			t.mu.Unlock()

			if isClosing {
				t.log.Debug("Worker process terminated during shutdown")

				return
			}

			stderrMu.Lock()
			stderrOutput := stderrTail.String()
			stderrMu.Unlock()

			exitCode := 0

			if exitErr, ok := stderrors.AsType[*exec.ExitError](err); ok {
				exitCode = exitErr.ExitCode()
			}

			t.log.Error("Worker process exited with error", "exit_code", exitCode, "stderr", stderrOutput)

			errs <- &errors.ProcessError{
				ExitCode: exitCode,
				Stderr:   stderrOutput,
				Err:      err,
			}
		} else {
			t.log.Info("Worker process exited successfully")
		}
	}()

	return lines, errs
}

// flushResidual drains an unterminated trailing fragment from a line
// buffer by completing it, for diagnostic streams only.
func flushResidual(buf *stream.LineBuffer) (string, bool) {
	buf.Feed([]byte{'\n'})

	line, ok := buf.Next()
	if !ok || len(line) == 0 {
		return "", false
	}

	return string(line), true
}

// Send writes one request line to the worker's stdin.
//
// The data should be a complete document; a newline is appended if
// missing. This method is safe for concurrent use and respects context
// cancellation even during blocking writes.
//
// If context is cancelled during a blocked write, stdin is closed to unblock
// the goroutine (safe since Go 1.9+). Subsequent calls will return ErrStdinClosed.
func (t *Worker) Send(ctx context.Context, data []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin == nil {
		return errors.ErrTransportUnavailable
	}

	if t.stdinClosed {
		return errors.ErrStdinClosed
	}

	// Check context before starting
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.log.Debug("Sending request to worker", "data_len", len(data))

	// Ensure data ends with newline
	// Use explicit copy to avoid mutating caller's backing array if slice has spare capacity
	if len(data) == 0 || data[len(data)-1] != '\n' {
		newData := make([]byte, len(data)+1)
		copy(newData, data)
		newData[len(data)] = '\n'
		data = newData
	}

	// Write in goroutine to respect context cancellation
	done := make(chan error, 1)

	go func() {
		_, err := t.stdin.Write(data)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.log.Error("Failed to write request to worker", "error", err)

			return fmt.Errorf("write to stdin: %w", err)
		}

		return nil

	case <-ctx.Done():
		t.log.Debug("Context cancelled during write, closing stdin")
		// Close stdin to unblock the blocked Write (safe since Go 1.9+)
		if t.stdin != nil {
			_ = t.stdin.Close()
			t.stdinClosed = true
		}
		// Wait for goroutine to exit with timeout to prevent leak
		select {
		case <-done:
			// Write goroutine exited cleanly
		case <-time.After(1 * time.Second):
			t.log.Warn("Write goroutine did not exit after stdin close, potential leak")
		}

		return ctx.Err()
	}
}

// EndInput closes stdin to signal that no more requests will be sent.
//
// The worker will finish processing pending input and then exit normally.
// Safe to call multiple times.
func (t *Worker) EndInput() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stdin != nil && !t.stdinClosed {
		t.log.Debug("Closing stdin pipe")

		err := t.stdin.Close()
		t.stdinClosed = true
		t.stdin = nil

		return err
	}

	return nil
}

// Close terminates the worker process.
//
// This forcefully kills the process using SIGKILL. It's safe to call
// Close multiple times or on an already-terminated process.
func (t *Worker) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.closing = true
	t.stdinClosed = true

	if t.cmd != nil && t.cmd.Process != nil {
		t.log.Debug("Killing worker process", "pid", t.cmd.Process.Pid)

		err := t.cmd.Process.Kill()
		if err != nil && !stderrors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("kill worker process (pid %d): %w", t.cmd.Process.Pid, err)
		}
	}

	return nil
}

// resolveCommand turns a configured command into an executable path.
// Bare names go through PATH; anything with a path separator is used as
// given, after checking it exists.
func resolveCommand(command string) (string, error) {
	if strings.ContainsRune(command, os.PathSeparator) || strings.Contains(command, "/") {
		if _, err := os.Stat(command); err != nil {
			return "", err
		}

		return command, nil
	}

	return exec.LookPath(command)
}

// buildEnvironment merges extra variables over the current environment.
func buildEnvironment(extra map[string]string) []string {
	env := os.Environ()

	for key, value := range extra {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
