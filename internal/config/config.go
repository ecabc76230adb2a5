// Package config resolves the client configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/notes/pkg/adapters/rest"
	"github.com/aretw0/notes/pkg/core"
)

const (
	// FileName is the project-local config file looked up from the working directory upwards.
	FileName = ".notes.yaml"

	EnvBaseURL = "NOTES_API_URL"
	EnvTimeout = "NOTES_TIMEOUT"
)

// Config is the on-disk configuration of the CLI.
type Config struct {
	BaseURL       string            `yaml:"base_url"`
	Timeout       time.Duration     `yaml:"timeout"`
	RefreshPolicy string            `yaml:"refresh_policy"`
	EventBuffer   int               `yaml:"event_buffer"`
	Headers       map[string]string `yaml:"headers"`
	Inbox         Inbox             `yaml:"inbox"`
}

// Inbox configures the directory watcher.
type Inbox struct {
	Pattern string `yaml:"pattern"`
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		BaseURL:       rest.DefaultBaseURL,
		Timeout:       rest.DefaultTimeout,
		RefreshPolicy: core.RefreshOnSuccess.String(),
		EventBuffer:   core.DefaultEventBuffer,
		Inbox:         Inbox{Pattern: "**/*.txt"},
	}
}

// Load reads the configuration.
// An explicit path must exist. Without one, the nearest FileName above startDir
// is used, then the user config dir; no file at all yields Default().
// Environment overrides are applied last. The returned path is the file that
// was read, empty if none.
func Load(path, startDir string) (Config, string, error) {
	cfg := Default()

	if path == "" {
		path = discover(startDir)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, "", fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, "", fmt.Errorf("invalid config %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return cfg, path, err
	}

	if _, err := core.ParseRefreshPolicy(cfg.RefreshPolicy); err != nil {
		return cfg, path, err
	}

	return cfg, path, nil
}

// Policy returns the parsed refresh policy. Load has already validated it.
func (c Config) Policy() core.RefreshPolicy {
	p, _ := core.ParseRefreshPolicy(c.RefreshPolicy)
	return p
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	return nil
}

func discover(startDir string) string {
	if startDir != "" {
		if p, err := FindFile(startDir, FileName); err == nil {
			return p
		}
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	p := filepath.Join(dir, "notes", "config.yaml")
	if hasFile(p) {
		return p
	}
	return ""
}

// ErrNotFound is returned by FindFile when no directory up to the filesystem
// root contains the file.
var ErrNotFound = errors.New("config file not found")

// FindFile looks upwards from startDir for name and returns its absolute path.
func FindFile(startDir, name string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	dir := abs
	for {
		if p := filepath.Join(dir, name); hasFile(p) {
			return p, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		dir = parent
	}

	return "", ErrNotFound
}

func hasFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
