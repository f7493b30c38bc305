package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is reported in the User-Agent header.
const Version = "1.2.0"

// ProjectURL identifies this client to the puzzle service.
const ProjectURL = "https://github.com/sseemayer/aoc"

// DefaultBaseURL is the puzzle service root.
const DefaultBaseURL = "https://adventofcode.com"

// Environment variables consulted by Load.
const (
	EnvConfig      = "AOC_CONFIG"
	EnvSession     = "AOC_SESSION"
	EnvSessionFile = "AOC_SESSION_FILE"
	EnvDataDir     = "AOC_DATA_DIR"
	EnvPolicy      = "AOC_THROTTLE_POLICY"
	EnvContact     = "AOC_CONTACT"
	EnvBaseURL     = "AOC_BASE_URL"
)

var (
	// ErrMissingCredential means no session token is configured.
	ErrMissingCredential = errors.New("missing session credential")

	// ErrUnreadableConfig means configuration exists but cannot be read or understood.
	ErrUnreadableConfig = errors.New("unreadable configuration")
)

// Config holds everything the input fetcher needs from the local machine.
type Config struct {
	// Puzzle service root, overridable for tests and mirrors.
	BaseURL string `yaml:"base_url"`

	// Root for the input cache, throttle state and request history.
	DataDir string `yaml:"data_dir"`

	// File holding the session token.
	SessionFile string `yaml:"session_file"`

	// Contact appended to the User-Agent (email or URL).
	Contact string `yaml:"contact"`

	// HTTP timeout for the single input request.
	Timeout string `yaml:"timeout"`

	// What a cache miss does while the throttle interval is still running.
	ThrottlePolicy ThrottlePolicy `yaml:"throttle_policy"`

	Logging LoggingConfig `yaml:"logging"`

	// Credential is resolved by LoadCredential, never serialized.
	Credential Credential `yaml:"-"`

	path string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		DataDir:        defaultDataDir(),
		SessionFile:    filepath.Join(defaultConfigDir(), "session"),
		Timeout:        "30s",
		ThrottlePolicy: PolicyBlock,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns $AOC_CONFIG or the per-user config file location.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	return filepath.Join(defaultConfigDir(), "config.yaml")
}

// Load reads the default config file and resolves the session credential.
func Load() (*Config, error) {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads configuration from path and resolves the session credential.
// A missing credential fails with ErrMissingCredential; nothing is retried.
func LoadFrom(path string) (*Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.LoadCredential(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Read loads configuration from path without requiring a credential.
// A missing file yields defaults.
func Read(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// defaults
	case err != nil:
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnreadableConfig, path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %v", ErrUnreadableConfig, path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Path returns the file this config was read from.
func (c *Config) Path() string {
	return c.path
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if p := os.Getenv(EnvSessionFile); p != "" {
		c.SessionFile = p
	}
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.DataDir = dir
	}
	if policy := os.Getenv(EnvPolicy); policy != "" {
		c.ThrottlePolicy = ThrottlePolicy(policy)
	}
	if contact := os.Getenv(EnvContact); contact != "" {
		c.Contact = contact
	}
	if url := os.Getenv(EnvBaseURL); url != "" {
		c.BaseURL = url
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: base_url must not be empty", ErrUnreadableConfig)
	}
	if c.DataDir == "" {
		return fmt.Errorf("%w: data_dir must not be empty", ErrUnreadableConfig)
	}
	if _, err := ParsePolicy(string(c.ThrottlePolicy)); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadableConfig, err)
	}
	return nil
}

// GetTimeout returns the HTTP timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// ThrottlePath is the file holding the last-request timestamp.
func (c *Config) ThrottlePath() string {
	return filepath.Join(c.DataDir, "throttle.state")
}

// HistoryPath is the sqlite ledger of issued requests.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.DataDir, "history.db")
}

// UserAgent identifies this client and how to reach its operator.
func (c *Config) UserAgent() string {
	if c.Contact == "" {
		return fmt.Sprintf("aoc/%s (+%s)", Version, ProjectURL)
	}
	return fmt.Sprintf("aoc/%s (+%s; %s)", Version, ProjectURL, c.Contact)
}

func defaultConfigDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".aoc"
	}
	return filepath.Join(dir, "aoc")
}

func defaultDataDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return filepath.Join(".aoc", "data")
	}
	return filepath.Join(dir, "aoc")
}
