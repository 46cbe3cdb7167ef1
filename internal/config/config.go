package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all configuration for the service. It is built once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Email    EmailConfig
	Auth     AuthConfig
	Cron     CronConfig
	Kafka    KafkaConfig
	Logging  LoggingConfig
}

// ServerConfig holds server specific configuration
type ServerConfig struct {
	Port         string
	BaseURL      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// DatabaseConfig holds Postgres specific configuration
type DatabaseConfig struct {
	URL             string `validate:"required,startswith=postgres"`
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig holds key-value store specific configuration
type RedisConfig struct {
	Addr     string `validate:"required"`
	Password string
	DB       int
}

// CacheConfig holds listing-cache policy
type CacheConfig struct {
	ArticlesTTL time.Duration `mapstructure:"articlesTTL" validate:"required"`
}

// EmailConfig holds email delivery configuration
type EmailConfig struct {
	APIKey string `mapstructure:"apiKey" validate:"required"`
	From   string `validate:"required"`
	To     string
}

// AuthConfig holds bearer-token validation configuration. Token issuance
// is handled by the external auth provider; only the signing secret is
// needed here.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwtSecret" validate:"required"`
}

// CronConfig holds the scheduled-endpoint secret
type CronConfig struct {
	Secret string `validate:"required,len=16"`
}

// KafkaConfig holds the optional milestone-event producer configuration
type KafkaConfig struct {
	Enabled bool
	Brokers string
	Topic   string
}

// LoggingConfig holds logging specific configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from an optional YAML file and the environment,
// then validates it eagerly. Missing or malformed required values are
// returned as one error per field so the caller can print them and exit.
func Load(path string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if errs := Validate(&cfg); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	return &cfg, nil
}

// FieldError describes a single invalid configuration value
type FieldError struct {
	Field   string
	Message string
}

// ValidationError aggregates all invalid configuration values
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	b.WriteString("invalid configuration:")
	for _, f := range e.Fields {
		b.WriteString("\n  ")
		b.WriteString(f.Field)
		b.WriteString(": ")
		b.WriteString(f.Message)
	}
	return b.String()
}

// Validate checks every required field and returns one entry per failure
func Validate(cfg *Config) []FieldError {
	validate := validator.New()

	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []FieldError{{Field: "config", Message: err.Error()}}
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		// Strip the leading "Config." from the namespace
		name := strings.TrimPrefix(fe.Namespace(), "Config.")
		fields = append(fields, FieldError{
			Field:   name,
			Message: messageFor(fe),
		})
	}

	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required value is missing"
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// bindEnvKeys binds the secret-bearing keys explicitly so they resolve
// from the environment even when absent from the config file.
func bindEnvKeys(v *viper.Viper) {
	v.BindEnv("database.url", "DATABASE_URL")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("email.apiKey", "RESEND_API_KEY")
	v.BindEnv("auth.jwtSecret", "AUTH_JWT_SECRET")
	v.BindEnv("cron.secret", "CRON_SECRET")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
}

// setDefaults sets default values for configuration
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.baseURL", "http://localhost:8080")
	v.SetDefault("server.readTimeout", "10s")
	v.SetDefault("server.writeTimeout", "10s")
	v.SetDefault("server.idleTimeout", "120s")

	// Database defaults
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", "30m")

	// Redis defaults
	v.SetDefault("redis.db", 0)

	// Cache defaults
	v.SetDefault("cache.articlesTTL", "60s")

	// Email defaults
	v.SetDefault("email.from", "Wikimasters <onboarding@resend.dev>")

	// Kafka defaults
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "pageview-milestones")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}
