package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const minSigningKeyBytes = 32

type Config struct {
	AppEnv   string
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Cache    CacheConfig
	Auth     AuthConfig
	LogLevel string
}

type ServerConfig struct {
	Port    string
	Timeout time.Duration
}

type DatabaseConfig struct {
	Path string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	SecretKey string
	Issuer    string
	Audience  string
	TTL       time.Duration
}

type CacheConfig struct {
	TTL time.Duration
}

type AuthConfig struct {
	BcryptCost int
}

func Load() (*Config, error) {
	// .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	viper.AutomaticEnv()

	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_TIMEOUT", 30*time.Second)
	viper.SetDefault("DB_PATH", "data/uservault.db")
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("JWT_ISSUER", "uservault")
	viper.SetDefault("JWT_AUDIENCE", "uservault.users")
	viper.SetDefault("JWT_TTL", 24*time.Hour)
	viper.SetDefault("CACHE_TTL", 30*time.Minute)
	viper.SetDefault("BCRYPT_COST", 12)
	viper.SetDefault("LOG_LEVEL", "info")

	var cfg Config

	cfg.AppEnv = viper.GetString("APP_ENV")
	cfg.Server.Port = viper.GetString("SERVER_PORT")
	cfg.Server.Timeout = viper.GetDuration("SERVER_TIMEOUT")

	cfg.Database.Path = viper.GetString("DB_PATH")

	cfg.Redis.Host = viper.GetString("REDIS_HOST")
	cfg.Redis.Port = viper.GetString("REDIS_PORT")
	cfg.Redis.Password = viper.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = viper.GetInt("REDIS_DB")

	cfg.JWT.SecretKey = viper.GetString("JWT_SECRET_KEY")
	cfg.JWT.Issuer = viper.GetString("JWT_ISSUER")
	cfg.JWT.Audience = viper.GetString("JWT_AUDIENCE")
	cfg.JWT.TTL = viper.GetDuration("JWT_TTL")

	cfg.Cache.TTL = viper.GetDuration("CACHE_TTL")
	cfg.Auth.BcryptCost = viper.GetInt("BCRYPT_COST")

	cfg.LogLevel = viper.GetString("LOG_LEVEL")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces the startup invariants. A weak signing key is a
// configuration error, never something to limp along with.
func (c *Config) Validate() error {
	if len(c.JWT.SecretKey) < minSigningKeyBytes {
		return fmt.Errorf("JWT_SECRET_KEY must be at least %d bytes, got %d", minSigningKeyBytes, len(c.JWT.SecretKey))
	}
	if c.JWT.Issuer == "" || c.JWT.Audience == "" {
		return fmt.Errorf("JWT_ISSUER and JWT_AUDIENCE must be set")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWT.TTL)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	return nil
}
