package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config carries every runtime setting. Values come from the environment,
// with the configs/.env file loaded beforehand by the entrypoint.
type Config struct {
	Port string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AnalysisURL     string
	AnalysisAPIKey  string
	AnalysisTimeout time.Duration

	CacheTTL time.Duration

	CORSOrigins []string
}

// Load reads the environment through viper, applying development defaults
// for everything but secrets.
func Load() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("CODEX_API_URL", "")
	v.SetDefault("CODEX_API_KEY", "")
	v.SetDefault("CODEX_TIMEOUT", "12s")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("CORS_ORIGINS", []string{
		"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174",
	})

	return Config{
		Port:            v.GetString("PORT"),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		DBSSLMode:       v.GetString("DB_SSLMODE"),
		AnalysisURL:     v.GetString("CODEX_API_URL"),
		AnalysisAPIKey:  v.GetString("CODEX_API_KEY"),
		AnalysisTimeout: v.GetDuration("CODEX_TIMEOUT"),
		CacheTTL:        v.GetDuration("CACHE_TTL"),
		CORSOrigins:     v.GetStringSlice("CORS_ORIGINS"),
	}
}

// DSN assembles the postgres connection string.
func (c Config) DSN() string {
	return "postgres://" + c.DBUser + ":" + c.DBPassword + "@" + c.DBHost + ":" + c.DBPort +
		"/" + c.DBName + "?sslmode=" + c.DBSSLMode
}
