package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// server
	Port      string
	DBPath    string
	JWTSecret string
	Email     string
	Password  string

	// leadctl
	APIURL    string
	Account   string
	RateLimit float64
}

func Load() *Config {
	_ = godotenv.Load() // .env is optional

	return &Config{
		Port:      getEnv("PORT", "5001"),
		DBPath:    getEnv("DB_PATH", "./data/leads.db"),
		JWTSecret: getEnv("JWT_SECRET", "secret"),
		Email:     getEnv("LEADS_EMAIL", ""),
		Password:  getEnv("LEADS_PASSWORD", ""),
		APIURL:    getEnv("LEADS_API_URL", "http://127.0.0.1:5001"),
		Account:   getEnv("LEADS_ACCOUNT", "default"),
		RateLimit: getFloat("LEADS_RATE_LIMIT", 5),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}
