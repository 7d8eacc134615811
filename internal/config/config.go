package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port   int    `yaml:"port"`
		APIKey string `yaml:"apiKey"`
	} `yaml:"server"`

	Capture struct {
		StreamURL string `yaml:"streamUrl"`
		TorchURL  string `yaml:"torchUrl"`
	} `yaml:"capture"`

	Decode struct {
		Engine          string   `yaml:"engine"`
		Args            []string `yaml:"args"`
		FrameIntervalMS int      `yaml:"frameIntervalMs"`
	} `yaml:"decode"`

	Scanner struct {
		Mode         string `yaml:"mode"`
		HistoryLimit int    `yaml:"historyLimit"`
		DebounceMS   int    `yaml:"debounceMs"`
	} `yaml:"scanner"`

	AI struct {
		APIKey string `yaml:"apiKey"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// Load reads the config file and applies environment fallbacks.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.AI.APIKey == "" {
		cfg.AI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Capture.StreamURL == "" {
		return nil, fmt.Errorf("capture.streamUrl is required")
	}
	if cfg.Decode.Engine == "" {
		return nil, fmt.Errorf("decode.engine is required")
	}
	return &cfg, nil
}

// FrameInterval converts the configured pacing into a duration.
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Decode.FrameIntervalMS) * time.Millisecond
}

// Debounce converts the configured handoff delay into a duration.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Scanner.DebounceMS) * time.Millisecond
}
