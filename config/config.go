// Package config loads the application configuration from an optional YAML
// file with environment overrides for secrets. A missing file yields the
// defaults, so the CLI runs with nothing but an API key in the environment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "90s" or "1h" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Provider configures the language and embedding endpoints.
type Provider struct {
	BaseURL        string `yaml:"base_url"`
	APIKey         string `yaml:"-"`
	ChatModel      string `yaml:"chat_model"`
	EmbeddingModel string `yaml:"embedding_model"`
}

// Speech configures the audio endpoints. Empty values fall back to the
// provider endpoint and key.
type Speech struct {
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"-"`
	TranscriptionModel string `yaml:"transcription_model"`
	SpeechModel        string `yaml:"speech_model"`
	OutputDir          string `yaml:"output_dir"`
}

// Cache configures the semantic answer cache.
type Cache struct {
	Threshold float64  `yaml:"threshold"`
	TTL       Duration `yaml:"ttl"`
}

// Courses configures course retrieval.
type Courses struct {
	// RecommenderURL is the remote recommender base URL. Empty disables the
	// remote path; every profile then falls back to the local catalog.
	RecommenderURL string `yaml:"recommender_url"`
	// CatalogPath is a JSON file of courses indexed into the local catalog
	// at startup.
	CatalogPath string `yaml:"catalog_path"`
}

// Flow configures the turn executor.
type Flow struct {
	NodeTimeout  Duration `yaml:"node_timeout"`
	TurnDeadline Duration `yaml:"turn_deadline"`
	FanoutWidth  int      `yaml:"fanout_width"`
}

// History configures the query history store.
type History struct {
	// DSN is the SQLite path; ":memory:" keeps history for the process
	// lifetime only.
	DSN string `yaml:"dsn"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Config is the root configuration.
type Config struct {
	Provider Provider `yaml:"provider"`
	Speech   Speech   `yaml:"speech"`
	Cache    Cache    `yaml:"cache"`
	Courses  Courses  `yaml:"courses"`
	Flow     Flow     `yaml:"flow"`
	History  History  `yaml:"history"`
	Server   Server   `yaml:"server"`
}

// Default returns the configuration used when no file overrides it.
func Default() *Config {
	return &Config{
		Cache: Cache{
			Threshold: 0.95,
			TTL:       Duration(time.Hour),
		},
		Flow: Flow{
			NodeTimeout:  Duration(60 * time.Second),
			TurnDeadline: Duration(5 * time.Minute),
			FanoutWidth:  5,
		},
		History: History{
			DSN: "recmooc.db",
		},
		Server: Server{
			Addr: ":8080",
		},
		Speech: Speech{
			OutputDir: ".",
		},
	}
}

// Load reads the configuration from path, merged over the defaults, then
// applies environment overrides. An empty path skips the file entirely.
// A .env file next to the working directory is honored when present.
func Load(path string) (*Config, error) {
	// Missing .env files are fine; explicit configuration wins anyway.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err = yaml.Unmarshal(raw, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if cfg.Provider.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is not set")
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("SPEECH_API_KEY"); v != "" {
		c.Speech.APIKey = v
	}
	if v := os.Getenv("SPEECH_BASE_URL"); v != "" {
		c.Speech.BaseURL = v
	}
	if v := os.Getenv("RECOMMENDER_URL"); v != "" {
		c.Courses.RecommenderURL = v
	}
	if v := os.Getenv("HISTORY_DSN"); v != "" {
		c.History.DSN = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.Server.Addr = v
	}
}
