// Package config provides configuration management for folio using Viper,
// loading from .folio.yml, FOLIO_ environment variables, and command-line
// flags. It manages the preview server address, watch behavior, rasterization
// settings, font search paths, and logging options.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Watch   WatchConfig   `yaml:"watch"`
	Compile CompileConfig `yaml:"compile"`
	Fonts   FontsConfig   `yaml:"fonts"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	// Host is the listen address for viewer connections, host:port.
	Host string `yaml:"host"`
	// WriteTimeout bounds a single frame write to one viewer.
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type WatchConfig struct {
	// Root overrides the watched directory; defaults to the input's parent.
	Root string `yaml:"root"`
	// Debounce is the window used to coalesce filesystem event bursts.
	Debounce time.Duration `yaml:"debounce"`
}

type CompileConfig struct {
	// Scale is the rasterization pixel-per-point factor.
	Scale float64 `yaml:"scale"`
	// EvictionAge is the compiler memoization eviction threshold applied
	// after every cycle.
	EvictionAge int `yaml:"eviction_age"`
}

type FontsConfig struct {
	// Paths are extra font search directories, in addition to system dirs.
	Paths []string `yaml:"paths"`
	// System controls whether OS font directories are searched.
	System bool `yaml:"system"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

const (
	// DefaultHost is the loopback address viewers connect to.
	DefaultHost = "127.0.0.1:23625"

	// DefaultDebounce absorbs editor save sequences that emit several
	// events per save.
	DefaultDebounce = 100 * time.Millisecond

	// DefaultScale matches a crisp 2x preview rendering.
	DefaultScale = 2.0

	// DefaultEvictionAge bounds compiler memoization growth across a long
	// watch session.
	DefaultEvictionAge = 30
)

func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Server.Host == "" {
		config.Server.Host = viper.GetString("server.host")
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if config.Server.WriteTimeout == 0 {
		config.Server.WriteTimeout = 10 * time.Second
	}

	if viper.IsSet("watch.root") && config.Watch.Root == "" {
		config.Watch.Root = viper.GetString("watch.root")
	}
	if config.Watch.Debounce == 0 {
		if viper.IsSet("watch.debounce") {
			config.Watch.Debounce = viper.GetDuration("watch.debounce")
		}
		if config.Watch.Debounce == 0 {
			config.Watch.Debounce = DefaultDebounce
		}
	}

	if config.Compile.Scale == 0 {
		if viper.IsSet("compile.scale") {
			config.Compile.Scale = viper.GetFloat64("compile.scale")
		}
		if config.Compile.Scale == 0 {
			config.Compile.Scale = DefaultScale
		}
	}
	if config.Compile.EvictionAge == 0 {
		config.Compile.EvictionAge = DefaultEvictionAge
	}

	// Viper slice handling workaround: prefer explicit settings.
	if viper.IsSet("fonts.paths") && len(config.Fonts.Paths) == 0 {
		config.Fonts.Paths = viper.GetStringSlice("fonts.paths")
	}
	if !viper.IsSet("fonts.system") {
		config.Fonts.System = true
	} else {
		config.Fonts.System = viper.GetBool("fonts.system")
	}

	if config.Log.Level == "" {
		config.Log.Level = viper.GetString("log-level")
	}
	if config.Log.Level == "" {
		config.Log.Level = "info"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := validateWatchConfig(&config.Watch); err != nil {
		return fmt.Errorf("watch config: %w", err)
	}
	if err := validateCompileConfig(&config.Compile); err != nil {
		return fmt.Errorf("compile config: %w", err)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	host, port, err := net.SplitHostPort(config.Host)
	if err != nil {
		return fmt.Errorf("host %q is not a valid host:port address: %w", config.Host, err)
	}

	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 0 || portNum > 65535 {
		return fmt.Errorf("port %q is not in valid range 0-65535", port)
	}

	dangerousChars := []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\"", "'", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(host, char) {
			return fmt.Errorf("host contains dangerous character: %s", char)
		}
	}

	return nil
}

func validateWatchConfig(config *WatchConfig) error {
	if config.Debounce < 0 {
		return fmt.Errorf("debounce must not be negative: %s", config.Debounce)
	}
	if config.Debounce > 10*time.Second {
		return fmt.Errorf("debounce %s is too long to be useful", config.Debounce)
	}
	return nil
}

func validateCompileConfig(config *CompileConfig) error {
	if config.Scale <= 0 {
		return fmt.Errorf("scale must be positive, got %v", config.Scale)
	}
	if config.EvictionAge < 0 {
		return fmt.Errorf("eviction_age must not be negative, got %d", config.EvictionAge)
	}
	return nil
}
