// Package config provides centralized default values for the telemetry
// engine. Every knob is an env var with a sensible default; a local
// .env file may override anything not already set in the environment.
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration

	// Telemetry Flags
	Environment       string
	TelemetryDisabled bool
	TelemetryDebug    bool

	// Vendor Sink Configuration
	MeasurementID     string
	ContainerID       string
	DataLayerEndpoint string
	SinkQueueSize     int
	SinkTimeout       time.Duration

	// Session and Identity
	SessionTTL        time.Duration
	JWTSecret         string
	DebugPasswordHash string

	// Memoized Cache
	DegradedCacheTTL time.Duration

	// Persistence
	SQLitePath     string
	TursoDatabase  string
	TursoAuthToken string

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// CORS
	AllowedOrigins []string
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)

	// Telemetry Flags
	Environment = getEnvString("ENVIRONMENT", "development")
	TelemetryDisabled = getEnvBool("TELEMETRY_DISABLED", false)
	TelemetryDebug = getEnvBool("TELEMETRY_DEBUG", false)

	// Vendor Sink Configuration
	MeasurementID = getEnvString("MEASUREMENT_ID", "")
	ContainerID = getEnvString("CONTAINER_ID", "")
	DataLayerEndpoint = getEnvString("DATALAYER_ENDPOINT", "")
	SinkQueueSize = getEnvInt("SINK_QUEUE_SIZE", 256)
	SinkTimeout = getEnvDuration("SINK_TIMEOUT", 5*time.Second)

	// Session and Identity
	SessionTTL = time.Duration(getEnvInt("SESSION_TTL_MINUTES", 30)) * time.Minute
	JWTSecret = getEnvString("JWT_SECRET", "")
	DebugPasswordHash = getEnvString("DEBUG_PASSWORD_HASH", "")

	// Memoized Cache
	DegradedCacheTTL = time.Duration(getEnvInt("DEGRADED_CACHE_TTL_SECONDS", 30)) * time.Second

	// Persistence
	SQLitePath = getEnvString("SQLITE_PATH", "data/telemetry.db")
	TursoDatabase = getEnvString("TURSO_DATABASE", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// CORS
	AllowedOrigins = strings.Split(getEnvString("ALLOWED_ORIGINS",
		"http://localhost:3000,http://localhost:4321,http://127.0.0.1:3000"), ",")
}
