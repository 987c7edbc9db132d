// Package config loads run configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fpang/daily-panda/internal/chat"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file looked up when none is given.
const DefaultPath = "daily-panda.yaml"

// Config holds all settings for one generation run.
type Config struct {
	// Root is the project directory holding images/, prompts/, events/ and
	// README.md when running against the local filesystem.
	Root string `yaml:"root"`

	// Timeout bounds the whole run.
	Timeout time.Duration `yaml:"timeout"`

	Text  TextConfig  `yaml:"text"`
	Image ImageConfig `yaml:"image"`
	S3    S3Config    `yaml:"s3"`
}

// TextConfig selects the prompt-writing model.
type TextConfig struct {
	Model string `yaml:"model"`
}

// ImageConfig selects the image backend and model. An empty Model means the
// backend's default.
type ImageConfig struct {
	Backend string `yaml:"backend"`
	Model   string `yaml:"model"`
}

// S3Config locates artifacts in S3. An empty Bucket means local storage.
type S3Config struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Root:    ".",
		Timeout: 3 * time.Minute,
		Text: TextConfig{
			Model: chat.DefaultTextModel,
		},
		Image: ImageConfig{
			Backend: chat.BackendGemini,
		},
	}
}

// Load reads path over the defaults and applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("PANDA_ROOT"); v != "" {
		c.Root = v
	}
	if v := os.Getenv("PANDA_TEXT_MODEL"); v != "" {
		c.Text.Model = v
	}
	if v := os.Getenv("PANDA_IMAGE_BACKEND"); v != "" {
		c.Image.Backend = strings.ToLower(v)
	}
	if v := os.Getenv("PANDA_IMAGE_MODEL"); v != "" {
		c.Image.Model = v
	}
	if v := os.Getenv("PANDA_S3_BUCKET"); v != "" {
		c.S3.Bucket = v
	}
	if v := os.Getenv("PANDA_S3_PREFIX"); v != "" {
		c.S3.Prefix = v
	}
	if v := os.Getenv("PANDA_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid PANDA_TIMEOUT %q: %w", v, err)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks settings that would otherwise fail mid-run.
func (c *Config) Validate() error {
	switch c.Image.Backend {
	case chat.BackendGemini, chat.BackendImagen:
	default:
		return fmt.Errorf("unknown image backend %q (want %s or %s)", c.Image.Backend, chat.BackendGemini, chat.BackendImagen)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Text.Model == "" {
		return fmt.Errorf("text model must not be empty")
	}
	return nil
}

// ImageModel returns the configured image model or the backend default.
func (c *Config) ImageModel() string {
	if c.Image.Model != "" {
		return c.Image.Model
	}
	return chat.DefaultImageModel(c.Image.Backend)
}
