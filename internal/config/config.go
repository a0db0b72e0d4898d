package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the rtsched HTTP server.
type ServerConfig struct {
	Addr      string         `yaml:"addr"`       // Listen address (default ":8080")
	LogLevel  string         `yaml:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string         `yaml:"log_format"` // Log format: text, json
	DBPath    string         `yaml:"db_path"`    // SQLite database path (default ~/.rtsched/rtsched.db, ":memory:" for testing)
	Analysis  AnalysisConfig `yaml:"analysis"`
}

// AnalysisConfig tunes a cyclic-executive analysis run.
type AnalysisConfig struct {
	// Workers bounds how many frame sizes are packed concurrently.
	// 1 packs them one after another.
	Workers int `yaml:"workers"`

	// FrameSize restricts packing to a single candidate frame size.
	// 0 tries every candidate.
	FrameSize int64 `yaml:"frame_size"`

	// MaxFrames bounds the frames of all timetables built in one run.
	// Frame sizes whose timetables would not fit are skipped, smallest first.
	MaxFrames int64 `yaml:"max_frames"`

	// MaxJobs bounds the jobs placed across all timetables of one run.
	MaxJobs int64 `yaml:"max_jobs"`
}

const (
	DefaultMaxFrames int64 = 1 << 20
	DefaultMaxJobs   int64 = 1 << 21
)

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr:      ":8080",
		LogLevel:  "info",
		LogFormat: "text",
		Analysis:  DefaultAnalysisConfig(),
	}
}

// DefaultAnalysisConfig packs frame sizes in parallel, one per CPU.
func DefaultAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Workers:   runtime.NumCPU(),
		MaxFrames: DefaultMaxFrames,
		MaxJobs:   DefaultMaxJobs,
	}
}

// Limits returns MaxFrames and MaxJobs, with unset values replaced by the
// defaults.
func (c AnalysisConfig) Limits() (maxFrames, maxJobs int64) {
	maxFrames, maxJobs = c.MaxFrames, c.MaxJobs
	if maxFrames <= 0 {
		maxFrames = DefaultMaxFrames
	}
	if maxJobs <= 0 {
		maxJobs = DefaultMaxJobs
	}
	return maxFrames, maxJobs
}

// LoadServerConfig reads a YAML config file over the defaults. Fields absent
// from the file keep their default values. The RTSCHED_DB environment
// variable, when set, overrides db_path.
func LoadServerConfig(path string) (ServerConfig, error) {
	cfg := DefaultServerConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if db := os.Getenv("RTSCHED_DB"); db != "" {
		cfg.DBPath = db
	}
	if cfg.Analysis.Workers <= 0 {
		cfg.Analysis.Workers = 1
	}
	cfg.Analysis.MaxFrames, cfg.Analysis.MaxJobs = cfg.Analysis.Limits()
	return cfg, nil
}
