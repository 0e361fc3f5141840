// Package config loads and saves the curver configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/being-motion/spline"
)

// EnvPath names the environment variable that overrides the config file
// location.
const EnvPath = "CURVER_CONFIG"

// Content backends.
const (
	BackendFiles  = "files"
	BackendBadger = "badger"
)

type Config struct {
	Content ContentConfig `yaml:"content"`
	Server  ServerConfig  `yaml:"server"`
	Editor  EditorConfig  `yaml:"editor"`
	Log     LogConfig     `yaml:"log"`
	Fit     FitConfig     `yaml:"fit"`
}

type ContentConfig struct {
	// Dir is the directory of motion files. It is also watched for
	// external changes.
	Dir string `yaml:"dir"`
	// Backend is "files" or "badger".
	Backend    string `yaml:"backend"`
	BadgerPath string `yaml:"badger_path,omitempty"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type EditorConfig struct {
	HistorySize   int     `yaml:"history_size"`
	Epsilon       float64 `yaml:"epsilon"`
	SnapThreshold float64 `yaml:"snap_threshold"`
	C1            bool    `yaml:"c1"`
	Snapping      bool    `yaml:"snapping"`
}

type LogConfig struct {
	// Level is one of debug, info, warn and error.
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

type FitConfig struct {
	Tolerance float64 `yaml:"tolerance"`
	MaxKnots  int     `yaml:"max_knots"`
}

func DefaultConfig() Config {
	return Config{
		Content: ContentConfig{
			Dir:     filepath.Join(DataDir(), "content"),
			Backend: BackendFiles,
		},
		Server: ServerConfig{Addr: "localhost:8080"},
		Editor: EditorConfig{
			HistorySize:   spline.DefaultHistorySize,
			Epsilon:       spline.DefaultEpsilon,
			SnapThreshold: spline.DefaultSnapThreshold,
			C1:            true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
		Fit: FitConfig{Tolerance: 1e-2, MaxKnots: 64},
	}
}

// Dir returns the directory holding the config file.
func Dir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "curver")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "curver")
}

// DataDir returns the default directory for motion content.
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "curver")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "curver")
}

// Path returns the config file location, honouring CURVER_CONFIG.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Load reads the config file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate reports settings that cannot work.
func (cfg Config) Validate() error {
	switch cfg.Content.Backend {
	case BackendFiles:
	case BackendBadger:
		if cfg.Content.BadgerPath == "" {
			return errors.New("content.badger_path is required for the badger backend")
		}
	default:
		return fmt.Errorf("unknown content backend %q", cfg.Content.Backend)
	}
	if cfg.Editor.Epsilon < 0 || cfg.Editor.SnapThreshold < 0 {
		return errors.New("editor.epsilon and editor.snap_threshold must not be negative")
	}
	switch cfg.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	return nil
}

// Options returns the editor options for these settings.
func (e EditorConfig) Options() []spline.Option {
	return []spline.Option{
		spline.WithHistorySize(e.HistorySize),
		spline.WithEpsilon(e.Epsilon),
		spline.WithSnapThreshold(e.SnapThreshold),
		spline.WithC1(e.C1),
		spline.WithSnapping(e.Snapping),
	}
}

func (f FitConfig) Options() spline.FitOptions {
	return spline.FitOptions{Tolerance: f.Tolerance, MaxKnots: f.MaxKnots}
}
