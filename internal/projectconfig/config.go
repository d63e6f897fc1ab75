// Package projectconfig provides the ProjectConfig struct and loader for
// .ggassist.yaml project-level configuration files.
package projectconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default values for project configuration. These are the single source of
// truth. New() references them and no other code should duplicate them.
const (
	DefaultBackendURL     = "http://localhost:5000"
	DefaultBackendTimeout = 60

	DefaultServerPort = 3000

	DefaultCacheDir = ".ggassist-cache"

	DefaultSessionLogDir = ".ggassist-sessions"
)

// BackendConfig holds connection settings for the email-processing service.
type BackendConfig struct {
	URL     string `yaml:"url,omitempty"`
	Timeout int    `yaml:"timeout,omitempty"`
}

// ServerConfig holds settings for the local web UI server.
type ServerConfig struct {
	Port      int   `yaml:"port,omitempty"`
	NoBrowser *bool `yaml:"no_browser,omitempty"`
}

// ChatConfig holds defaults for the interactive chat command.
type ChatConfig struct {
	// FilterDate is the default email filter date (YYYY-MM-DD).
	// Empty means today.
	FilterDate string `yaml:"filter_date,omitempty"`
}

// CacheConfig holds result cache settings.
type CacheConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// SessionLogConfig holds NDJSON session log settings.
type SessionLogConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Dir     string `yaml:"dir,omitempty"`
}

// ProjectConfig is the top-level configuration loaded from .ggassist.yaml.
type ProjectConfig struct {
	Backend    BackendConfig    `yaml:"backend,omitempty"`
	Server     ServerConfig     `yaml:"server,omitempty"`
	Chat       ChatConfig       `yaml:"chat,omitempty"`
	Cache      CacheConfig      `yaml:"cache,omitempty"`
	SessionLog SessionLogConfig `yaml:"session_log,omitempty"`
}

// New returns a ProjectConfig with all hard-coded defaults populated.
func New() *ProjectConfig {
	return &ProjectConfig{
		Backend: BackendConfig{
			URL:     DefaultBackendURL,
			Timeout: DefaultBackendTimeout,
		},
		Server: ServerConfig{
			Port:      DefaultServerPort,
			NoBrowser: boolPtr(false),
		},
		Cache: CacheConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultCacheDir,
		},
		SessionLog: SessionLogConfig{
			Enabled: boolPtr(false),
			Dir:     DefaultSessionLogDir,
		},
	}
}

// Load finds .ggassist.yaml by walking up from startDir (max 10 levels),
// validates it against the embedded schema, unmarshals it, and fills in
// missing fields with defaults. If no config file is found, returns
// defaults with a nil error. Real I/O errors (e.g. permission denied) are
// returned to the caller.
func Load(startDir string) (*ProjectConfig, error) {
	cfg := New()

	data, err := findConfigFile(startDir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil // no file found, defaults apply
		}
		return nil, fmt.Errorf("loading .ggassist.yaml: %w", err)
	}

	if errs := ValidateBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid .ggassist.yaml:\n  %s", joinErrors(errs))
	}

	var fileCfg ProjectConfig
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, fmt.Errorf("parsing .ggassist.yaml: %w", err)
	}

	// Merge file values onto defaults.
	mergeConfig(cfg, &fileCfg)
	return cfg, nil
}

// findConfigFile walks up from dir looking for .ggassist.yaml (max 10
// levels). Returns os.ErrNotExist if no config file is found. Propagates
// real I/O errors instead of silently swallowing them.
func findConfigFile(dir string) ([]byte, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path %q: %w", dir, err)
	}
	dir = absDir

	for i := 0; i < 10; i++ {
		p := filepath.Join(dir, ".ggassist.yaml")
		data, err := os.ReadFile(p)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}
	return nil, os.ErrNotExist
}

// mergeConfig overlays non-zero values from src onto dst.
func mergeConfig(dst, src *ProjectConfig) {
	// Backend
	if src.Backend.URL != "" {
		dst.Backend.URL = src.Backend.URL
	}
	if src.Backend.Timeout != 0 {
		dst.Backend.Timeout = src.Backend.Timeout
	}

	// Server
	if src.Server.Port != 0 {
		dst.Server.Port = src.Server.Port
	}
	if src.Server.NoBrowser != nil {
		dst.Server.NoBrowser = src.Server.NoBrowser
	}

	// Chat
	if src.Chat.FilterDate != "" {
		dst.Chat.FilterDate = src.Chat.FilterDate
	}

	// Cache
	if src.Cache.Enabled != nil {
		dst.Cache.Enabled = src.Cache.Enabled
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}

	// Session log
	if src.SessionLog.Enabled != nil {
		dst.SessionLog.Enabled = src.SessionLog.Enabled
	}
	if src.SessionLog.Dir != "" {
		dst.SessionLog.Dir = src.SessionLog.Dir
	}
}

func joinErrors(errs []string) string {
	out := ""
	for i, e := range errs {
		if i > 0 {
			out += "\n  "
		}
		out += e
	}
	return out
}

func boolPtr(b bool) *bool {
	return &b
}
