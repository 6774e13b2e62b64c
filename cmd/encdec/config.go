package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/oy3o/encdec"
)

// Config controls the encdec command.
type Config struct {
	// BufferSize is the bufio size used for frame streams.
	BufferSize int
	// MaxFrame bounds the body of a single frame read from a stream.
	MaxFrame int
	LogLevel slog.Level
	// LogFormat is "text" or "json".
	LogFormat string
	// Output is the form of the binary side: "hex" text or "raw" bytes.
	Output string
}

func DefaultConfig() Config {
	return Config{
		BufferSize: encdec.DEFAULT_BUFFER_SIZE,
		MaxFrame:   encdec.DEFAULT_MAX_FRAME,
		LogLevel:   slog.LevelWarn,
		LogFormat:  "text",
		Output:     "hex",
	}
}

type fileConfig struct {
	BufferSize int    `toml:"buffer_size"`
	MaxFrame   int    `toml:"max_frame"`
	LogLevel   string `toml:"log_level"`
	LogFormat  string `toml:"log_format"`
	Output     string `toml:"output"`
}

// loadConfig overlays the keys defined in the TOML file at path on cfg.
func loadConfig(path string, cfg Config) (Config, error) {
	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load encdec config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load encdec config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("buffer_size") {
		cfg.BufferSize = raw.BufferSize
	}
	if meta.IsDefined("max_frame") {
		cfg.MaxFrame = raw.MaxFrame
	}
	if meta.IsDefined("log_level") {
		level, err := parseLevel(raw.LogLevel)
		if err != nil {
			return Config{}, err
		}
		cfg.LogLevel = level
	}
	if meta.IsDefined("log_format") {
		cfg.LogFormat = strings.ToLower(strings.TrimSpace(raw.LogFormat))
	}
	if meta.IsDefined("output") {
		cfg.Output = strings.ToLower(strings.TrimSpace(raw.Output))
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	switch {
	case c.BufferSize < 16:
		return fmt.Errorf("buffer_size must be at least 16, got %d", c.BufferSize)
	case c.MaxFrame <= 0:
		return fmt.Errorf("max_frame must be positive, got %d", c.MaxFrame)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	case c.Output != "hex" && c.Output != "raw":
		return fmt.Errorf("output must be hex or raw, got %q", c.Output)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("parse log_level: %w", err)
	}
	return level, nil
}

func newLogger(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
