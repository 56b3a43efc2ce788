package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON telemetry backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds SQLite telemetry backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// PostgresConfig holds Postgres telemetry backend settings
type PostgresConfig struct {
	DSN string `json:"dsn" mapstructure:"dsn"`
}

// StorageConfig selects and configures the telemetry backend
type StorageConfig struct {
	Type     string         `json:"type" mapstructure:"type"`
	Memory   MemoryConfig   `json:"memory" mapstructure:"memory"`
	SQLite   SQLiteConfig   `json:"sqlite" mapstructure:"sqlite"`
	Postgres PostgresConfig `json:"postgres" mapstructure:"postgres"`
}

// SimConfig holds the stepping-driver parameters
type SimConfig struct {
	Duration    float64 `json:"duration" mapstructure:"duration"`       // simulated seconds
	StepSize    float64 `json:"stepSize" mapstructure:"stepSize"`       // seconds per slice
	Seed        int64   `json:"seed" mapstructure:"seed"`               // consumption sampler seed
	SampleEvery float64 `json:"sampleEvery" mapstructure:"sampleEvery"` // telemetry sampling interval, simulated seconds
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./uavsimlogs")
	viper.SetDefault("scenarioName", "uavsim")

	viper.SetDefault("sim.duration", 3600.0)
	viper.SetDefault("sim.stepSize", 1.0)
	viper.SetDefault("sim.seed", 42)
	viper.SetDefault("sim.sampleEvery", 1.0)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./uavsim.db")
	viper.SetDefault("storage.postgres.dsn", "host=localhost port=5432 user=postgres password=postgres dbname=uavsim")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "uavsim-metrics")
	viper.SetDefault("influx.bucket", "flight_data")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetConfigName("uavsim.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			// run on defaults
			return nil
		}
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetSimConfig returns the stepping-driver settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		Duration:    viper.GetFloat64("sim.duration"),
		StepSize:    viper.GetFloat64("sim.stepSize"),
		Seed:        viper.GetInt64("sim.seed"),
		SampleEvery: viper.GetFloat64("sim.sampleEvery"),
	}
}

// GetStorageConfig returns the telemetry backend settings.
func GetStorageConfig() StorageConfig {
	var cfg StorageConfig
	cfg.Type = viper.GetString("storage.type")
	cfg.Memory.OutputDir = viper.GetString("storage.memory.outputDir")
	cfg.Memory.CompressOutput = viper.GetBool("storage.memory.compressOutput")
	cfg.SQLite.Path = viper.GetString("storage.sqlite.path")
	cfg.Postgres.DSN = viper.GetString("storage.postgres.dsn")
	return cfg
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float64 config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}
