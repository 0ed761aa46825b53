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

// Config holds all application configuration
type Config struct {
	ServerPort        string             `mapstructure:"SERVER_PORT"`
	GinMode           string             `mapstructure:"GIN_MODE"`
	LogMode           string             `mapstructure:"LOG_MODE"`
	DatabaseURL       string             `mapstructure:"DATABASE_URL"`
	Redis             RedisConfig        `mapstructure:"REDIS"`
	FIRM              FIRMConfig         `mapstructure:"FIRM"`
	QuestionBank      QuestionBankConfig `mapstructure:"QUESTION_BANK"`
	IngestionInterval time.Duration      `mapstructure:"INGESTION_INTERVAL"`
	Exam              ExamConfig         `mapstructure:"EXAM"`
	AccessCode        AccessCodeConfig   `mapstructure:"ACCESS_CODE"`
}

// RedisConfig holds the variant cache connection. An empty address disables the cache.
type RedisConfig struct {
	Addr     string        `mapstructure:"ADDR"`
	Password string        `mapstructure:"PASSWORD"`
	DB       int           `mapstructure:"DB"`
	TTL      time.Duration `mapstructure:"TTL"`
}

// FIRMConfig holds FIRM protocol-related configuration
type FIRMConfig struct {
	JWTSigningKey string `mapstructure:"JWT_SIGNING_KEY"`
	Issuer        string `mapstructure:"ISSUER"`
}

// QuestionBankConfig points at the question bank directory loaded at startup and on every
// ingestion tick. An empty path disables scheduled ingestion.
type QuestionBankConfig struct {
	Path string `mapstructure:"PATH"`
}

// ExamConfig holds assembly defaults
type ExamConfig struct {
	DefaultDistribution string  `mapstructure:"DEFAULT_DISTRIBUTION"`
	DefaultVariantCount int     `mapstructure:"DEFAULT_VARIANT_COUNT"`
	MaxVariantCount     int     `mapstructure:"MAX_VARIANT_COUNT"`
	ThinMarginRatio     float64 `mapstructure:"THIN_MARGIN_RATIO"`
}

// AccessCodeConfig holds access code settings
type AccessCodeConfig struct {
	Length int `mapstructure:"LENGTH"`
}

// LoadConfig loads configuration from .env, environment variables and config.yaml
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config") // config.yaml
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("fatal error config file: %w", err)
		}
	}

	// Override with environment variables (e.g., EXAMS_SERVER_PORT, EXAMS_REDIS_ADDR)
	v.SetEnvPrefix("EXAMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS.ADDR", "")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)
	v.SetDefault("REDIS.TTL", "24h")
	v.SetDefault("FIRM.JWT_SIGNING_KEY", "change-me-firm-jwt-key")
	v.SetDefault("FIRM.ISSUER", "firm.example.com")
	v.SetDefault("QUESTION_BANK.PATH", "")
	v.SetDefault("INGESTION_INTERVAL", "15m")
	v.SetDefault("EXAM.DEFAULT_DISTRIBUTION", "easy:4|medium:4|hard:2")
	v.SetDefault("EXAM.DEFAULT_VARIANT_COUNT", 2)
	v.SetDefault("EXAM.MAX_VARIANT_COUNT", 26)
	v.SetDefault("EXAM.THIN_MARGIN_RATIO", 1.5)
	v.SetDefault("ACCESS_CODE.LENGTH", 6)
}
