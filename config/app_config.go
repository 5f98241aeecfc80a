package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "HEYWRITE"

	DrafterBackend = "backend"
	DrafterDirect  = "direct"
)

type AppConfig struct {
	Backend      BackendConfig      `mapstructure:"backend"`
	Drafter      DrafterConfig      `mapstructure:"drafter"`
	Corpus       CorpusConfig       `mapstructure:"corpus"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Defaults     DefaultsConfig     `mapstructure:"defaults"`
	Log          LogConfig          `mapstructure:"log"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
}

// BackendConfig points at the drafting and ingestion service.
type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url" validate:"required,url"`
	Timeout time.Duration `mapstructure:"timeout" validate:"min=0"` // 0 waits indefinitely
}

// DrafterConfig selects where drafts come from. In direct mode the chat
// completions API is called instead of the backend; ingestion still goes to
// the backend.
type DrafterConfig struct {
	Mode        string  `mapstructure:"mode" validate:"oneof=backend direct"`
	BaseURL     string  `mapstructure:"base_url" validate:"omitempty,url"`
	APIKey      string  `mapstructure:"api_key" validate:"required_if=Mode direct"`
	Model       string  `mapstructure:"model"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
}

type CorpusConfig struct {
	MaxDocuments int    `mapstructure:"max_documents" validate:"min=1"`
	Overflow     string `mapstructure:"overflow" validate:"oneof=drop_newest replace"`
}

type ConversationConfig struct {
	MaxHistoryTurns int `mapstructure:"max_history_turns" validate:"min=0"`
}

type DefaultsConfig struct {
	Tone     string `mapstructure:"tone" validate:"required"`
	Language string `mapstructure:"language" validate:"required"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file"`
	JSON  bool   `mapstructure:"json"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr" validate:"omitempty,hostname_port"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.base_url", "http://localhost:8000")
	v.SetDefault("backend.timeout", time.Duration(0))
	v.SetDefault("drafter.mode", DrafterBackend)
	v.SetDefault("drafter.base_url", "")
	v.SetDefault("drafter.api_key", "")
	v.SetDefault("drafter.model", "deepseek-chat")
	v.SetDefault("drafter.temperature", 0.7)
	v.SetDefault("corpus.max_documents", 5)
	v.SetDefault("corpus.overflow", "drop_newest")
	v.SetDefault("conversation.max_history_turns", 0)
	v.SetDefault("defaults.tone", "Formal")
	v.SetDefault("defaults.language", "English")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("log.json", false)
	v.SetDefault("metrics.addr", "")
}

// LoadConfig reads path, or config.toml from the working directory when path
// is empty, applies HEYWRITE_ environment overrides and validates the result.
// Only an explicitly named file has to exist.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("drafter.api_key", EnvPrefix+"_DRAFTER_API_KEY", "DEEPSEEK_API_KEY"); err != nil {
		return nil, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config: %w", err)
			}
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	cfg.Drafter.Mode = strings.ToLower(strings.TrimSpace(cfg.Drafter.Mode))
	cfg.Corpus.Overflow = strings.ToLower(strings.TrimSpace(cfg.Corpus.Overflow))
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *AppConfig) Validate() error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, ", "))
}
