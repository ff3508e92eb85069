package app

import (
	"log"
	"os"
	"sort"
	"strings"

	"github.com/laxmanfhaneendra/savebucks-sub002/config"
)

// ConfigDisplayer handles configuration and environment variable display
type ConfigDisplayer struct{}

// NewConfigDisplayer creates a new configuration displayer
func NewConfigDisplayer() *ConfigDisplayer {
	return &ConfigDisplayer{}
}

// PrintConfig prints all fields in the configuration
func (cd *ConfigDisplayer) PrintConfig(cfg *config.Config) {
	log.Println("==== APPLICATION CONFIGURATION ====")

	log.Printf("SERVER:\n")
	log.Printf("  Port: %d\n", cfg.Server.Port)

	log.Printf("\nDATABASE:\n")
	log.Printf("  Host: %s\n", cfg.Database.Host)
	log.Printf("  Port: %d\n", cfg.Database.Port)
	log.Printf("  User: %s\n", cfg.Database.User)
	log.Printf("  Password: %s\n", cd.maskString(cfg.Database.Password))
	log.Printf("  Name: %s\n", cfg.Database.Name)
	log.Printf("  SSLMode: %s\n", cfg.Database.SSLMode)

	log.Printf("\nREDIS:\n")
	log.Printf("  Enabled: %t\n", cfg.Redis.Enabled)
	log.Printf("  Addr: %s\n", cfg.Redis.Addr)
	log.Printf("  Password: %s\n", cd.maskString(cfg.Redis.Password))
	log.Printf("  Event Key: %s\n", cfg.Redis.EventKey)

	log.Printf("\nCACHE:\n")
	log.Printf("  Max Entries: %d\n", cfg.Cache.MaxEntries)
	log.Printf("  Default TTL: %d seconds\n", cfg.Cache.DefaultTTLSeconds)
	log.Printf("  Cleanup Interval: %d seconds\n", cfg.Cache.CleanupIntervalSecs)
	log.Printf("  Compression Threshold: %d bytes\n", cfg.Cache.CompressionThreshold)

	log.Printf("\nANALYTICS:\n")
	log.Printf("  Flush Interval: %d seconds\n", cfg.Analytics.FlushIntervalSecs)
	log.Printf("  Top Queries: %d\n", cfg.Analytics.TopQueries)

	log.Println("===================================")
}

// PrintAllEnvVars prints all environment variables available to the application
func (cd *ConfigDisplayer) PrintAllEnvVars() {
	log.Println("==== ENVIRONMENT VARIABLES ====")

	envVars := os.Environ()
	sort.Strings(envVars)

	for _, env := range envVars {
		pair := strings.SplitN(env, "=", 2)
		if len(pair) != 2 {
			continue
		}

		key := pair[0]
		value := pair[1]

		if cd.isSensitive(key) {
			value = cd.maskString(value)
		}

		log.Printf("%s=%s\n", key, value)
	}

	log.Println("===============================")
}

// maskString masks sensitive information like passwords and API keys
func (cd *ConfigDisplayer) maskString(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	visible := len(s) / 4
	return s[:visible] + strings.Repeat("*", len(s)-visible)
}

// isSensitive checks if an environment variable key is considered sensitive
func (cd *ConfigDisplayer) isSensitive(key string) bool {
	sensitiveKeys := []string{
		"API_KEY", "PASSWORD", "SECRET", "TOKEN", "PASS", "PWD",
	}

	key = strings.ToUpper(key)
	for _, sensitive := range sensitiveKeys {
		if strings.Contains(key, sensitive) {
			return true
		}
	}

	return false
}
