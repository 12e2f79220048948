package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
	Registry    RegistryConfig    `yaml:"registry" mapstructure:"registry"`
	EmailFinder EmailFinderConfig `yaml:"email_finder" mapstructure:"email_finder"`
	Notifier    NotifierConfig    `yaml:"notifier" mapstructure:"notifier"`
	Pipeline    PipelineConfig    `yaml:"pipeline" mapstructure:"pipeline"`
}

// ServerConfig configures the HTTP endpoint layer.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// RegistryConfig holds company-registry API settings.
type RegistryConfig struct {
	Key          string `yaml:"key" mapstructure:"key"`
	BaseURL      string `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PageSize     int    `yaml:"page_size" mapstructure:"page_size"`
	MaxResults   int    `yaml:"max_results" mapstructure:"max_results"`
	PageDelayMs  int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
	RetryDelayMs int    `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
}

// EmailFinderConfig holds email-lookup API settings.
//
// ValidStatuses is deliberately configurable: the provider's "likely valid"
// status token has shifted between API revisions, so deployments can override
// the accepted set without a rebuild.
type EmailFinderConfig struct {
	Key           string   `yaml:"key" mapstructure:"key"`
	BaseURL       string   `yaml:"base_url" mapstructure:"base_url"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	QueryDelayMs  int      `yaml:"query_delay_ms" mapstructure:"query_delay_ms"`
	RetryDelayMs  int      `yaml:"retry_delay_ms" mapstructure:"retry_delay_ms"`
	ValidStatuses []string `yaml:"valid_statuses" mapstructure:"valid_statuses"`
}

// NotifierConfig holds SMS provider credentials. When AccountSID or AuthToken
// is empty the notifier is left unwired and tasks record not_configured.
type NotifierConfig struct {
	AccountSID string `yaml:"account_sid" mapstructure:"account_sid"`
	AuthToken  string `yaml:"auth_token" mapstructure:"auth_token"`
	FromNumber string `yaml:"from_number" mapstructure:"from_number"`
	BaseURL    string `yaml:"base_url" mapstructure:"base_url"`
}

// PipelineConfig configures orchestration limits.
type PipelineConfig struct {
	MaxQualified int    `yaml:"max_qualified" mapstructure:"max_qualified"`
	LeadsBaseURL string `yaml:"leads_base_url" mapstructure:"leads_base_url"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Optional .env file, matching local-dev convention.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 5001)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("registry.base_url", "https://api.company-information.service.gov.uk")
	v.SetDefault("registry.timeout_secs", 10)
	v.SetDefault("registry.page_size", 100)
	v.SetDefault("registry.max_results", 500)
	v.SetDefault("registry.page_delay_ms", 500)
	v.SetDefault("registry.retry_delay_ms", 2000)
	v.SetDefault("email_finder.base_url", "https://api.anymailfinder.com/v5.0")
	v.SetDefault("email_finder.timeout_secs", 15)
	v.SetDefault("email_finder.query_delay_ms", 1000)
	v.SetDefault("email_finder.retry_delay_ms", 2000)
	v.SetDefault("email_finder.valid_statuses", []string{"verified", "likely_valid"})
	v.SetDefault("notifier.base_url", "https://api.twilio.com")
	v.SetDefault("pipeline.max_qualified", 10)
	v.SetDefault("pipeline.leads_base_url", "http://localhost:8000")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
