package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Settings struct {
	Title         string
	ListenPort    int
	MetricsPort   int
	AssetsPath    string
	ReportsPath   string
	DataPath      string
	MirrorURL     string
	SyncTimeout   time.Duration
	WatchInterval time.Duration
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
}

type ConfigFile struct {
	Server struct {
		Title        string `yaml:"title"`
		ListenPort   int    `yaml:"listenPort"`
		MetricsPort  int    `yaml:"metricsPort"`
		ReadTimeout  string `yaml:"readTimeout"`
		WriteTimeout string `yaml:"writeTimeout"`
	} `yaml:"server"`

	Artifacts struct {
		AssetsPath    string `yaml:"assetsPath"`
		ReportsPath   string `yaml:"reportsPath"`
		MirrorURL     string `yaml:"mirrorURL"`
		SyncTimeout   string `yaml:"syncTimeout"`
		WatchInterval string `yaml:"watchInterval"`
	} `yaml:"artifacts"`

	System struct {
		DataPath string `yaml:"dataPath"`
	} `yaml:"system"`
}

const (
	defaultTitle       = "Crypto Trend Analysis — BTC-USD"
	defaultListenPort  = 8501
	defaultMetricsPort = 9090
	defaultAssetsPath  = "images"
	defaultReportsPath = "reports"
)

func Load() (Settings, error) {
	// Try to load from YAML file first
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}

	// Fallback to environment variables
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Parse durations
	syncTimeout, err := time.ParseDuration(config.Artifacts.SyncTimeout)
	if err != nil {
		syncTimeout = 10 * time.Second
	}

	watchInterval, err := time.ParseDuration(config.Artifacts.WatchInterval)
	if err != nil {
		watchInterval = 30 * time.Second
	}

	readTimeout, err := time.ParseDuration(config.Server.ReadTimeout)
	if err != nil {
		readTimeout = 10 * time.Second
	}

	writeTimeout, err := time.ParseDuration(config.Server.WriteTimeout)
	if err != nil {
		writeTimeout = 10 * time.Second
	}

	settings := Settings{
		Title:         getEnvOrDefault("DASHBOARD_TITLE", stringOrDefault(config.Server.Title, defaultTitle)),
		ListenPort:    getIntFromEnvOrConfig("LISTEN_PORT", config.Server.ListenPort, defaultListenPort),
		MetricsPort:   getIntFromEnvOrConfig("METRICS_PORT", config.Server.MetricsPort, defaultMetricsPort),
		AssetsPath:    getEnvOrDefault("ASSETS_PATH", stringOrDefault(config.Artifacts.AssetsPath, defaultAssetsPath)),
		ReportsPath:   getEnvOrDefault("REPORTS_PATH", stringOrDefault(config.Artifacts.ReportsPath, defaultReportsPath)),
		DataPath:      getEnvOrDefault("DATA_PATH", config.System.DataPath),
		MirrorURL:     getEnvOrDefault("MIRROR_URL", config.Artifacts.MirrorURL),
		SyncTimeout:   getDurationOrDefault("SYNC_TIMEOUT", syncTimeout),
		WatchInterval: getDurationOrDefault("WATCH_INTERVAL", watchInterval),
		ReadTimeout:   getDurationOrDefault("READ_TIMEOUT", readTimeout),
		WriteTimeout:  getDurationOrDefault("WRITE_TIMEOUT", writeTimeout),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Title:         getEnvOrDefault("DASHBOARD_TITLE", defaultTitle),
		ListenPort:    getIntOrDefault("LISTEN_PORT", defaultListenPort),
		MetricsPort:   getIntOrDefault("METRICS_PORT", defaultMetricsPort),
		AssetsPath:    getEnvOrDefault("ASSETS_PATH", defaultAssetsPath),
		ReportsPath:   getEnvOrDefault("REPORTS_PATH", defaultReportsPath),
		DataPath:      os.Getenv("DATA_PATH"),  // optional
		MirrorURL:     os.Getenv("MIRROR_URL"), // optional
		SyncTimeout:   getDurationOrDefault("SYNC_TIMEOUT", 10*time.Second),
		WatchInterval: getDurationOrDefault("WATCH_INTERVAL", 30*time.Second),
		ReadTimeout:   getDurationOrDefault("READ_TIMEOUT", 10*time.Second),
		WriteTimeout:  getDurationOrDefault("WRITE_TIMEOUT", 10*time.Second),
	}

	// Validate configuration
	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}

	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func stringOrDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

// validateSettings performs comprehensive validation of configuration values
func validateSettings(settings *Settings) error {
	// Validate ports
	if settings.ListenPort < 1024 || settings.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1024 and 65535, got %d", settings.ListenPort)
	}
	if settings.MetricsPort < 1024 || settings.MetricsPort > 65535 {
		return fmt.Errorf("metrics port must be between 1024 and 65535, got %d", settings.MetricsPort)
	}
	if settings.ListenPort == settings.MetricsPort {
		return fmt.Errorf("listen port and metrics port must differ, both are %d", settings.ListenPort)
	}

	// Validate paths
	if settings.AssetsPath == "" {
		return fmt.Errorf("assets path cannot be empty")
	}
	if settings.ReportsPath == "" {
		return fmt.Errorf("reports path cannot be empty")
	}

	// Validate time durations
	if settings.SyncTimeout < time.Second || settings.SyncTimeout > time.Minute {
		return fmt.Errorf("sync timeout must be between 1s and 1m, got %v", settings.SyncTimeout)
	}
	if settings.WatchInterval < time.Second || settings.WatchInterval > time.Hour {
		return fmt.Errorf("watch interval must be between 1s and 1h, got %v", settings.WatchInterval)
	}
	if settings.ReadTimeout < time.Second || settings.ReadTimeout > time.Minute {
		return fmt.Errorf("read timeout must be between 1s and 1m, got %v", settings.ReadTimeout)
	}
	if settings.WriteTimeout < time.Second || settings.WriteTimeout > time.Minute {
		return fmt.Errorf("write timeout must be between 1s and 1m, got %v", settings.WriteTimeout)
	}

	if settings.Title == "" {
		return fmt.Errorf("dashboard title cannot be empty")
	}

	return nil
}
