package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk shape of the config file. JSON documents are
// valid YAML, so both formats are read by the same decoder. Absent keys leave
// the current value untouched.
type FileConfig struct {
	EndpointAddrHTTP        string    `yaml:"endpoint_addr_http"`
	DatabaseDriver          string    `yaml:"database_driver"`
	DatabaseDSN             string    `yaml:"database_dsn"`
	SecretKey               string    `yaml:"secret_key"`
	SessionValidityDuration *Duration `yaml:"session_validity_duration"`
	SecureCookie            *bool     `yaml:"secure_cookie"`
	LogLevel                string    `yaml:"log_level"`
	LogFormat               string    `yaml:"log_format"`
	ViewCacheSize           *int      `yaml:"view_cache_size"`
}

func parseFile(config *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	if c.SecureCookie != nil {
		config.SecureCookie = *c.SecureCookie
	}
	if c.ViewCacheSize != nil {
		config.ViewCacheSize = *c.ViewCacheSize
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
