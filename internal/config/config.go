package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load,
// e.g. PHOSIM_MODEL_EMBED_URL for model.embed_url.
const EnvPrefix = "PHOSIM"

const (
	ProviderAPI   = "api"
	ProviderLocal = "local"
)

const (
	DefaultModelID    = "vinai/phobert-base"
	DefaultProvider   = ProviderAPI
	DefaultEmbedURL   = "http://localhost:8080/embed_all"
	DefaultHiddenSize = 768
	// PhoBERT-base has 258 positions, two of which are reserved by the padding offset.
	DefaultMaxTokens = 256
	DefaultHTTPAddr  = ":8001"
	DefaultMCPAddr   = ":8081"
)

// Config holds the application configuration
type Config struct {
	HTTP    HTTPConfig    `mapstructure:"http"`
	Model   ModelConfig   `mapstructure:"model"`
	Log     LogConfig     `mapstructure:"log"`
	MCP     MCPConfig     `mapstructure:"mcp"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type HTTPConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ModelConfig identifies the pretrained model and how its token embeddings are obtained.
type ModelConfig struct {
	ID         string        `mapstructure:"id"`
	Provider   string        `mapstructure:"provider"` // "api" or "local"
	EmbedURL   string        `mapstructure:"embed_url"`
	HiddenSize int           `mapstructure:"hidden_size"`
	MaxTokens  int           `mapstructure:"max_tokens"` // enforced by the local provider only
	Timeout    time.Duration `mapstructure:"timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "json" or "console"
}

type MCPConfig struct {
	Transport string `mapstructure:"transport"`
	Addr      string `mapstructure:"addr"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SetDefaults registers every default value on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", DefaultHTTPAddr)
	v.SetDefault("http.read_timeout", 60*time.Second)
	v.SetDefault("http.write_timeout", 60*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.shutdown_timeout", 5*time.Second)

	v.SetDefault("model.id", DefaultModelID)
	v.SetDefault("model.provider", DefaultProvider)
	v.SetDefault("model.embed_url", DefaultEmbedURL)
	v.SetDefault("model.hidden_size", DefaultHiddenSize)
	v.SetDefault("model.max_tokens", DefaultMaxTokens)
	v.SetDefault("model.timeout", 30*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("mcp.transport", "stdio")
	v.SetDefault("mcp.addr", DefaultMCPAddr)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// NewViper returns a viper instance wired for PHOSIM_* environment variables
// with all defaults registered.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// LoadEnvFile loads a dotenv file into the process environment.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// ReadFile merges the YAML config file at path into v. An empty path searches
// ./phosim.yaml and $HOME/.phosim/config.yaml and ignores a missing file.
func ReadFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName("phosim")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(home + "/.phosim")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

// Load decodes v into a validated Config.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Model.Provider = strings.ToLower(strings.TrimSpace(cfg.Model.Provider))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderAPI:
		if c.Model.EmbedURL == "" {
			return fmt.Errorf("model.embed_url is required for the %q provider", ProviderAPI)
		}
	case ProviderLocal:
	default:
		return fmt.Errorf(
			"unsupported model.provider: %q (supported: %s, %s)",
			c.Model.Provider, ProviderAPI, ProviderLocal,
		)
	}
	if c.Model.ID == "" {
		return fmt.Errorf("model.id is required")
	}
	if c.Model.HiddenSize <= 0 {
		return fmt.Errorf("model.hidden_size must be positive, got %d", c.Model.HiddenSize)
	}
	if c.HTTP.Addr == "" {
		return fmt.Errorf("http.addr is required")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("unsupported log.format: %q (supported: json, console)", c.Log.Format)
	}
	return nil
}
