/*
# Module: cmd/graphfs/config.go
Configuration handling for the graphfs CLI.

Manages loading of configuration from files and environment.

## Linked Modules
- [root](./root.go) - Root command

## Tags
cli, config, viper

## Exports
Config, initConfig, loadConfig, saveDefaultConfig

<!-- LinkedDoc RDF -->
@prefix code: <https://schema.codedoc.org/> .
@prefix rdf: <http://www.w3.org/1999/02/22-rdf-syntax-ns#> .

<#config.go> a code:Module ;
    code:name "cmd/graphfs/config.go" ;
    code:description "Configuration handling for the graphfs CLI" ;
    code:language "go" ;
    code:layer "cli" ;
    code:linksTo <./root.go> ;
    code:exports <#Config>, <#initConfig>, <#loadConfig>, <#saveDefaultConfig> ;
    code:tags "cli", "config", "viper" .
<!-- End LinkedDoc RDF -->
*/
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config represents graphfs CLI configuration.
type Config struct {
	Version int           `yaml:"version"`
	DB      DBConfig      `yaml:"db"`
	Query   QueryConfig   `yaml:"query"`
	Server  ServerConfig  `yaml:"server"`
}

// DBConfig configures the connection a bare command opens when no
// --db flag is given.
type DBConfig struct {
	URI            string        `yaml:"uri"`
	StorePath      string        `yaml:"store_path"`
	TxTimeout      time.Duration `yaml:"tx_timeout"`
	SnapshotEvery  int           `yaml:"snapshot_every"`
}

// QueryConfig configures query behavior.
type QueryConfig struct {
	DefaultLimit int           `yaml:"default_limit"`
	Timeout      time.Duration `yaml:"timeout"`
}

// ServerConfig configures the default HTTP server.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	CORS bool   `yaml:"cors"`
}

// DefaultConfig returns default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DB: DBConfig{
			URI:           "sys:durable://default",
			StorePath:     ".graphfs/store.db",
			TxTimeout:     5 * time.Second,
			SnapshotEvery: 50,
		},
		Query: QueryConfig{
			DefaultLimit: 100,
			Timeout:      30 * time.Second,
		},
		Server: ServerConfig{
			Host: "localhost",
			Port: 8080,
			CORS: true,
		},
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".graphfs")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("graphfs")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig loads configuration from file or returns default.
func loadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// saveDefaultConfig saves default configuration to file.
func saveDefaultConfig(configPath string) error {
	config := DefaultConfig()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
