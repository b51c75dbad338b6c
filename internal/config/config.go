// Package config loads the application configuration from file and
// environment and initializes logging.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/carnance/leadsync/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig   `yaml:"store" mapstructure:"store"`
	Notion NotionConfig  `yaml:"notion" mapstructure:"notion"`
	CRM    CRMConfig     `yaml:"crm" mapstructure:"crm"`
	LLM    LLMConfig     `yaml:"llm" mapstructure:"llm"`
	Email  EmailConfig   `yaml:"email" mapstructure:"email"`
	Sync   SyncConfig    `yaml:"sync" mapstructure:"sync"`
	Agents []AgentConfig `yaml:"agents" mapstructure:"agents"`
	Server ServerConfig  `yaml:"server" mapstructure:"server"`
	Log    LogConfig     `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the lead backend. Driver is one of "postgres",
// "sqlite", or "notion".
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// NotionConfig holds Notion API credentials for the notion lead source.
type NotionConfig struct {
	Token  string `yaml:"token" mapstructure:"token"`
	LeadDB string `yaml:"lead_db" mapstructure:"lead_db"`
}

// CRMConfig holds Twenty CRM connection settings. Token is preferred;
// APIKey is a legacy alias kept for older deployments.
type CRMConfig struct {
	BaseURL     string  `yaml:"base_url" mapstructure:"base_url"`
	Token       string  `yaml:"token" mapstructure:"token"`
	APIKey      string  `yaml:"api_key" mapstructure:"api_key"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit   float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// BearerToken returns the credential used for CRM auth, preferring the
// token field over the legacy api_key.
func (c CRMConfig) BearerToken() string {
	if c.Token != "" {
		return c.Token
	}
	return c.APIKey
}

// LLMConfig configures the completion provider. Provider is "openai" or
// "anthropic".
type LLMConfig struct {
	Provider       string            `yaml:"provider" mapstructure:"provider"`
	Key            string            `yaml:"key" mapstructure:"key"`
	BaseURL        string            `yaml:"base_url" mapstructure:"base_url"`
	Model          string            `yaml:"model" mapstructure:"model"`
	Temperature    float64           `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens      int               `yaml:"max_tokens" mapstructure:"max_tokens"`
	TimeoutSecs    int               `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	PromptsFile    string            `yaml:"prompts_file" mapstructure:"prompts_file"`
	PromptVersions map[string]string `yaml:"prompt_versions" mapstructure:"prompt_versions"`
}

// EmailConfig holds Microsoft Graph mailbox settings for inbox sync.
type EmailConfig struct {
	TenantID      string `yaml:"tenant_id" mapstructure:"tenant_id"`
	ClientID      string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret  string `yaml:"client_secret" mapstructure:"client_secret"`
	Mailbox       string `yaml:"mailbox" mapstructure:"mailbox"`
	WindowMinutes int    `yaml:"window_minutes" mapstructure:"window_minutes"`
	MaxMessages   int    `yaml:"max_messages" mapstructure:"max_messages"`
}

// SyncConfig tunes the orchestrator's retry policy.
type SyncConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMS int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffSecs   int `yaml:"max_backoff_secs" mapstructure:"max_backoff_secs"`
}

// AgentConfig is one roster entry as written in configuration.
type AgentConfig struct {
	ID                 string   `yaml:"id" mapstructure:"id"`
	Name               string   `yaml:"name" mapstructure:"name"`
	Specialization     string   `yaml:"specialization" mapstructure:"specialization"`
	Expertise          string   `yaml:"expertise" mapstructure:"expertise"`
	ExperienceYears    int      `yaml:"experience_years" mapstructure:"experience_years"`
	Location           string   `yaml:"location" mapstructure:"location"`
	Territory          string   `yaml:"territory" mapstructure:"territory"`
	CurrentWorkload    int      `yaml:"current_workload" mapstructure:"current_workload"`
	SuccessRate        int      `yaml:"success_rate" mapstructure:"success_rate"`
	VehicleTypes       []string `yaml:"vehicle_types" mapstructure:"vehicle_types"`
	CommunicationStyle string   `yaml:"communication_style" mapstructure:"communication_style"`
	Language           string   `yaml:"language" mapstructure:"language"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Roster converts the configured agents into model entries. The roster is
// loaded once at startup and treated as immutable afterwards.
func (c *Config) Roster() []model.SalesAgent {
	agents := make([]model.SalesAgent, 0, len(c.Agents))
	for _, a := range c.Agents {
		agents = append(agents, model.SalesAgent{
			ID:                 a.ID,
			Name:               a.Name,
			Specialization:     a.Specialization,
			Expertise:          a.Expertise,
			ExperienceYears:    a.ExperienceYears,
			Location:           a.Location,
			Territory:          a.Territory,
			CurrentWorkload:    a.CurrentWorkload,
			SuccessRate:        a.SuccessRate,
			VehicleTypes:       a.VehicleTypes,
			CommunicationStyle: a.CommunicationStyle,
			Language:           a.Language,
		})
	}
	return agents
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "leadsync.db")
	v.SetDefault("crm.timeout_secs", 30)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.max_tokens", 2048)
	v.SetDefault("llm.timeout_secs", 60)
	v.SetDefault("llm.prompts_file", "prompts.yaml")
	v.SetDefault("email.window_minutes", 30)
	v.SetDefault("email.max_messages", 10)
	v.SetDefault("sync.max_attempts", 3)
	v.SetDefault("sync.initial_backoff_ms", 500)
	v.SetDefault("sync.max_backoff_secs", 30)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
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
