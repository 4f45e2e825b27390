package config

import (
	"fmt"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Groq     GroqConfig     `mapstructure:"groq"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Exports  ExportsConfig  `mapstructure:"exports"`
}

type ServerConfig struct {
	Port                 int        `mapstructure:"port" validate:"gt=0,lte=65535"`
	CORS                 CORSConfig `mapstructure:"cors"`
	StreamTimeoutSeconds int        `mapstructure:"stream_timeout_seconds" validate:"gt=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type GroqConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type AuthConfig struct {
	JWTSecret       string `mapstructure:"jwt_secret"`
	TokenTTLMinutes int    `mapstructure:"token_ttl_minutes" validate:"gt=0"`
}

type ExportsConfig struct {
	Directory string `mapstructure:"directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/eduflux")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	v.SetDefault("server.stream_timeout_seconds", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "eduflux")
	v.SetDefault("database.username", "eduflux")
	v.SetDefault("groq.model", "llama-3.3-70b-versatile")
	v.SetDefault("auth.token_ttl_minutes", 60)
	v.SetDefault("exports.directory", "exports")

	// Secrets are bound to environment variables only (not from config file)
	if err := v.BindEnv("groq.api_key", "GROQ_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind GROQ_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("groq.model", "GROQ_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind GROQ_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("auth.jwt_secret", "EDUFLUX_JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("failed to bind EDUFLUX_JWT_SECRET environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "EDUFLUX_DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind EDUFLUX_DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil, fmt.Errorf("failed to validate configuration: %w", err)
		}
		messages := make([]string, 0, len(validationErrors))
		for _, fieldError := range validationErrors {
			messages = append(messages, fieldError.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %v", messages)
	}

	return &cfg, nil
}
