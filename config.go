package sidecarrpc

import (
	"log/slog"
	"os"

	"github.com/wagiedev/sidecar-rpc-go/internal/config"
)

// OptionsFromFile loads client options from a TOML configuration file.
//
// The file configures the worker command, its environment, the journal
// path, event buffering and a log level:
//
//	[worker]
//	command = "agent"
//	args = ["--mode", "chat"]
//	cwd = "/srv/agent"
//
//	[worker.env]
//	AGENT_HOME = "/srv/agent"
//
//	[journal]
//	path = "/var/lib/agent/traffic.db"
//
//	[logging]
//	level = "debug"
//
//	[events]
//	buffer = 64
//
// When a logging level is set, a text logger writing to stderr at that
// level is installed; append WithLogger after these options to override.
func OptionsFromFile(path string) ([]Option, error) {
	f, err := config.LoadFile(path)
	if err != nil {
		return nil, err
	}

	opts := []Option{
		func(o *Options) { f.Apply(o) },
	}

	if f.Logging.Level != "" {
		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: f.LogLevel()})
		opts = append(opts, WithLogger(slog.New(handler)))
	}

	return opts, nil
}
