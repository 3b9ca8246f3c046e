package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the YAML overlay. Zero values leave the base setting untouched.
type FileConfig struct {
	Server struct {
		Host string `yaml:"host"`
		Port string `yaml:"port"`
	} `yaml:"server"`

	MQTT struct {
		Broker              string `yaml:"broker"`
		ClientID            string `yaml:"client_id"`
		TopicRigCommand     string `yaml:"topic_rig_command"`
		TopicSDIResults     string `yaml:"topic_sdi_results"`
		TopicScalingResults string `yaml:"topic_scaling_results"`
	} `yaml:"mqtt"`

	RateLimit struct {
		RequestsPerSecond float64 `yaml:"requests_per_second"`
		Burst             int     `yaml:"burst"`
	} `yaml:"rate_limit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"cors"`
}

// ReadFile parses the YAML overlay at path
func ReadFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if fc.RateLimit.RequestsPerSecond < 0 || fc.RateLimit.Burst < 0 {
		return nil, fmt.Errorf("config: %s: rate_limit values must not be negative", path)
	}
	return &fc, nil
}

// ApplyFile returns a copy of base with the overlay at path applied
func ApplyFile(base *Config, path string) (*Config, error) {
	fc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := *base
	cfg.CORS.AllowedOrigins = append([]string(nil), base.CORS.AllowedOrigins...)

	if fc.Server.Host != "" {
		cfg.Server.Host = fc.Server.Host
	}
	if fc.Server.Port != "" {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.MQTT.Broker != "" {
		cfg.MQTT.BrokerURL = normalizeBrokerURL(fc.MQTT.Broker)
	}
	if fc.MQTT.ClientID != "" {
		cfg.MQTT.ClientID = fc.MQTT.ClientID
	}
	if fc.MQTT.TopicRigCommand != "" {
		cfg.MQTT.TopicRigCommand = fc.MQTT.TopicRigCommand
	}
	if fc.MQTT.TopicSDIResults != "" {
		cfg.MQTT.TopicSDIResults = fc.MQTT.TopicSDIResults
	}
	if fc.MQTT.TopicScalingResults != "" {
		cfg.MQTT.TopicScalingResults = fc.MQTT.TopicScalingResults
	}
	if fc.RateLimit.RequestsPerSecond > 0 {
		cfg.RateLimit.RequestsPerSecond = fc.RateLimit.RequestsPerSecond
	}
	if fc.RateLimit.Burst > 0 {
		cfg.RateLimit.Burst = fc.RateLimit.Burst
	}
	if len(fc.CORS.AllowedOrigins) > 0 {
		cfg.CORS.AllowedOrigins = fc.CORS.AllowedOrigins
	}

	cfg.File = path
	return &cfg, nil
}
