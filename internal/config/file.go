package config

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// FileWorker defines how the worker process is spawned.
type FileWorker struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
	Cwd     string            `toml:"cwd"`
}

// FileJournal defines wire-traffic journal settings.
type FileJournal struct {
	Path string `toml:"path"`
}

// FileLogging defines basic logging knobs.
type FileLogging struct {
	Level string `toml:"level"`
}

// FileEvents defines event delivery settings.
type FileEvents struct {
	Buffer int `toml:"buffer"`
}

// File aggregates client configuration loaded from a TOML file.
type File struct {
	Worker  FileWorker  `toml:"worker"`
	Journal FileJournal `toml:"journal"`
	Logging FileLogging `toml:"logging"`
	Events  FileEvents  `toml:"events"`
}

// LoadFile reads client configuration from the TOML file at path.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := f.validate(); err != nil {
		return nil, fmt.Errorf("validate %s: %w", path, err)
	}

	return &f, nil
}

func (f *File) validate() error {
	if f.Worker.Command == "" {
		f.Worker.Command = DefaultWorkerCommand
	}

	if f.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must not be negative")
	}

	switch f.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", f.Logging.Level)
	}

	return nil
}

// LogLevel maps the configured level name onto a slog level. An empty
// level means info.
func (f *File) LogLevel() slog.Level {
	switch f.Logging.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Apply copies the file's settings onto opts. The logger is left alone:
// callers decide how to build one, typically from LogLevel.
func (f *File) Apply(opts *Options) {
	opts.Command = f.Worker.Command
	opts.Args = f.Worker.Args
	opts.Env = f.Worker.Env
	opts.Cwd = f.Worker.Cwd
	opts.JournalPath = f.Journal.Path
	opts.EventBuffer = f.Events.Buffer
}
