package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv loads variables from a local .env file when present. Deployed
// environments inject real env vars, so a missing file is fine.
func LoadEnv() {
	_ = godotenv.Load()
}

// MustGet returns the value of a required environment variable.
func MustGet(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("MustGet: required environment variable %s is not set", key)
	}
	return value, nil
}
