package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                string
	GoogleProjectID     string
	FirebaseCredentials string
	ChainEventsTopic    string
	ChainEventsSub      string
	SweepSchedule       string
}

func Load() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	return &Config{
		Port:                getEnv("PORT", "8080"),
		GoogleProjectID:     getEnv("GOOGLE_PROJECT_ID", ""),
		FirebaseCredentials: getEnv("FIREBASE_CREDENTIALS", ""),
		ChainEventsTopic:    getEnv("CHAIN_EVENTS_TOPIC", "chain-events"),
		ChainEventsSub:      getEnv("CHAIN_EVENTS_SUBSCRIPTION", ""),
		SweepSchedule:       getEnv("SWEEP_SCHEDULE", "0 */12 * * *"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
