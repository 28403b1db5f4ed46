package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Port           string  `mapstructure:"PORT"`
	DatabaseDriver string  `mapstructure:"DATABASE_DRIVER"`
	DatabaseURL    string  `mapstructure:"DATABASE_URL"`
	JWTSecret      string  `mapstructure:"JWT_SECRET"`
	TokenTTLHours  int     `mapstructure:"TOKEN_TTL_HOURS"`
	UploadDir      string  `mapstructure:"UPLOAD_DIR"`
	RabbitMQURL    string  `mapstructure:"RABBITMQ_URL"`
	RabbitMQQueue  string  `mapstructure:"RABBITMQ_QUEUE"`
	AuthRateLimit  float64 `mapstructure:"AUTH_RATE_LIMIT"`
	AuthRateBurst  int     `mapstructure:"AUTH_RATE_BURST"`
}

var AppConfig *Config

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "host=localhost user=postgres password=postgres dbname=social port=5432 sslmode=disable")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("TOKEN_TTL_HOURS", 24*30)
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("RABBITMQ_QUEUE", "social_events")
	viper.SetDefault("AUTH_RATE_LIMIT", 5)
	viper.SetDefault("AUTH_RATE_BURST", 10)
}

// LoadConfig loads the configuration from a .env file and environment variables.
func LoadConfig() {
	viper.AddConfigPath(".")
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	setDefaults()
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("Warning: .env file not found, loading from environment variables")
	}

	err := viper.Unmarshal(&AppConfig)
	if err != nil {
		log.Fatalf("Unable to decode into struct, %v", err)
	}
}

// TokenTTL returns the lifetime of issued tokens.
func (c *Config) TokenTTL() time.Duration {
	if c.TokenTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TokenTTLHours) * time.Hour
}
