package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the water treatment calculators service
type Config struct {
	Server    ServerConfig
	MQTT      MQTTConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	CORS      CORSConfig

	// File is the optional YAML overlay, watched for changes when set
	File string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// MQTTConfig holds the optional bench-rig broker configuration
type MQTTConfig struct {
	BrokerURL           string
	ClientID            string
	Username            string
	Password            string
	KeepAlive           time.Duration
	PingTimeout         time.Duration
	ConnectRetry        bool
	TopicRigCommand     string
	TopicSDIResults     string
	TopicScalingResults string
}

// Enabled reports whether a broker was configured
func (m MQTTConfig) Enabled() bool {
	return m.BrokerURL != ""
}

// RateLimitConfig holds the per-IP request limit
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// StoreConfig holds in-memory retention settings
type StoreConfig struct {
	MaxSDIReports int
}

// CORSConfig holds allowed browser origins
type CORSConfig struct {
	AllowedOrigins []string
}

// Load loads configuration from environment variables with defaults, then
// applies the YAML overlay named by CONFIG_FILE if present.
func Load() (*Config, error) {
	cfg := FromEnv()
	if cfg.File == "" {
		return cfg, nil
	}
	return ApplyFile(cfg, cfg.File)
}

// FromEnv builds the configuration from environment variables only
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            getEnv("HOST", "127.0.0.1"),
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerURL:           getMQTTBrokerURL(),
			ClientID:            getEnv("MQTT_CLIENT_ID", "aquasmart_calculators"),
			Username:            getEnv("MQTT_USERNAME", ""),
			Password:            getEnv("MQTT_PASSWORD", ""),
			KeepAlive:           getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:         getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetry:        getBoolEnv("MQTT_CONNECT_RETRY", true),
			TopicRigCommand:     getEnv("MQTT_TOPIC_RIG_COMMAND", "watercalc/sdi/rig/command"),
			TopicSDIResults:     getEnv("MQTT_TOPIC_SDI_RESULTS", "watercalc/sdi/results"),
			TopicScalingResults: getEnv("MQTT_TOPIC_SCALING_RESULTS", "watercalc/scaling/results"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getFloatEnv("RATE_LIMIT_RPS", 20),
			Burst:             getIntEnv("RATE_LIMIT_BURST", 40),
		},
		Store: StoreConfig{
			MaxSDIReports: getIntEnv("STORE_MAX_SDI_REPORTS", 50),
		},
		CORS: CORSConfig{
			AllowedOrigins: getListEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:*", "http://127.0.0.1:*"}),
		},
		File: getEnv("CONFIG_FILE", ""),
	}
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean environment variable value or default if not set
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated variable, dropping empty items
func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return defaultValue
	}
	return items
}

// getMQTTBrokerURL returns the broker URL with a tcp:// prefix if no scheme is given.
// An empty value leaves the bridge disabled.
func getMQTTBrokerURL() string {
	return normalizeBrokerURL(getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", "")))
}

func normalizeBrokerURL(broker string) string {
	if broker == "" || strings.Contains(broker, "://") {
		return broker
	}
	return "tcp://" + broker
}
