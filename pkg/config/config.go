package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPort is the receiver port used when neither config nor environment set one.
const DefaultPort = 58502

// DefaultHost is the receiver host used when neither config nor environment set one.
const DefaultHost = "127.0.0.1"

// Providers lists the supported receiver transports.
var Providers = []string{"websocket", "tcp", "mock"}

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the application configuration.
type Config struct {
	Receiver ReceiverConfig `yaml:"receiver"`
	Walk     WalkConfig     `yaml:"walk"`
	Route    RouteConfig    `yaml:"route"`
	Log      LogConfig      `yaml:"log"`
	DB       DBConfig       `yaml:"db"`
	Server   ServerConfig   `yaml:"server"`
}

// ReceiverConfig describes where simulated positions are delivered.
type ReceiverConfig struct {
	Provider     string   `yaml:"provider"` // "websocket", "tcp", "mock"
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Path         string   `yaml:"path"`      // websocket request path
	DeviceID     string   `yaml:"device_id"` // tcp login id
	DialTimeout  Duration `yaml:"dial_timeout"`
	WriteTimeout Duration `yaml:"write_timeout"`
	ClearTimeout Duration `yaml:"clear_timeout"`
}

// WalkConfig holds the pace settings.
type WalkConfig struct {
	Speed      Speed `yaml:"speed"`
	StepsPerKm int   `yaml:"steps_per_km"`
}

// RouteConfig selects the route source. File wins over Waypoints, which win over From/To.
type RouteConfig struct {
	From      string   `yaml:"from"` // "lat,lon"
	To        string   `yaml:"to"`
	Waypoints []string `yaml:"waypoints"`
	File      string   `yaml:"file"` // .gpx, .geojson, .shp, .csv
}

// LogConfig holds logging settings.
type LogConfig struct {
	Server LogSettings `yaml:"server"`
	Events LogSettings `yaml:"events"`
	Trace  bool        `yaml:"trace"` // per-step debug lines
}

// LogSettings holds settings for a specific logger.
type LogSettings struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// DBConfig holds database settings. An empty path disables run history.
type DBConfig struct {
	Path      string   `yaml:"path"`
	Retention Duration `yaml:"retention"` // run history older than this is pruned at startup
}

// ServerConfig holds HTTP status server settings. An empty address disables it.
type ServerConfig struct {
	Address string `yaml:"address"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Receiver: ReceiverConfig{
			Provider:     "websocket",
			Path:         "/location",
			DeviceID:     "walksim-device",
			DialTimeout:  Duration(10 * time.Second),
			WriteTimeout: Duration(5 * time.Second),
			ClearTimeout: Duration(5 * time.Second),
		},
		Walk: WalkConfig{
			Speed:      Speed(4.0),
			StepsPerKm: 1333,
		},
		Route: RouteConfig{
			From: "37.555946,126.972317",
			To:   "37.559911,126.977103",
		},
		Log: LogConfig{
			Server: LogSettings{
				Path:  "./logs/walksim.log",
				Level: "INFO",
			},
			Events: LogSettings{
				Path:  "./logs/events.log",
				Level: "INFO",
			},
		},
		DB: DBConfig{
			Path:      "./data/walksim.db",
			Retention: Duration(90 * Day),
		},
		Server: ServerConfig{
			Address: "",
		},
	}
}

// Load loads the configuration from the given path.
// If the file does not exist, it creates it with default values.
// If the file exists, it merges defaults with existing values but does NOT save back to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if err := Save(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to save config file: %w", err)
	}

	// Env is a fallback only and never written back
	cfg.ApplyEnv()
	cfg.expandPaths()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv fills an empty receiver host and port from WALKSIM_HOST and
// WALKSIM_PORT, then from the built-in defaults.
func (c *Config) ApplyEnv() {
	if c.Receiver.Host == "" {
		c.Receiver.Host = os.Getenv("WALKSIM_HOST")
	}
	if c.Receiver.Port == 0 {
		if p, err := strconv.Atoi(os.Getenv("WALKSIM_PORT")); err == nil {
			c.Receiver.Port = p
		}
	}
	if c.Receiver.Host == "" {
		c.Receiver.Host = DefaultHost
	}
	if c.Receiver.Port == 0 {
		c.Receiver.Port = DefaultPort
	}
}

var winEnvRe = regexp.MustCompile(`%([A-Za-z_][A-Za-z0-9_]*)%`)

func expandPath(p string) string {
	p = winEnvRe.ReplaceAllString(p, "$${$1}")
	return os.ExpandEnv(p)
}

func (c *Config) expandPaths() {
	c.DB.Path = expandPath(c.DB.Path)
	c.Log.Server.Path = expandPath(c.Log.Server.Path)
	c.Log.Events.Path = expandPath(c.Log.Events.Path)
	c.Route.File = expandPath(c.Route.File)
}

// Validate checks values that would otherwise fail deep inside a run.
func (c *Config) Validate() error {
	var errs []error
	if c.Walk.Speed <= 0 {
		errs = append(errs, fmt.Errorf("walk.speed must be positive, got %v", float64(c.Walk.Speed)))
	}
	if c.Walk.StepsPerKm <= 0 {
		errs = append(errs, fmt.Errorf("walk.steps_per_km must be positive, got %d", c.Walk.StepsPerKm))
	}
	if !validProvider(c.Receiver.Provider) {
		errs = append(errs, fmt.Errorf("receiver.provider %q is not one of %v", c.Receiver.Provider, Providers))
	}
	if c.Receiver.Port < 0 || c.Receiver.Port > 65535 {
		errs = append(errs, fmt.Errorf("receiver.port %d out of range", c.Receiver.Port))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

func validProvider(p string) bool {
	for _, v := range Providers {
		if p == v {
			return true
		}
	}
	return false
}

// Save writes the configuration to the path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	header := []byte(`# walksim configuration
# ---------------------
# Supported Units:
#   Duration: ns, us (or µs), ms, s, m, h, d (day), w (week)
#   Speed: km/h (default), m/s, mph

`)
	data = append(header, data...)

	reProvider := regexp.MustCompile(`(?m)^(\s+)provider:`)
	data = reProvider.ReplaceAll(data, []byte("${1}# Options: websocket, tcp, mock\n${1}provider:"))

	reHost := regexp.MustCompile(`(?m)^(\s+)host:`)
	data = reHost.ReplaceAll(data, []byte("${1}# Empty host / port 0 fall back to WALKSIM_HOST / WALKSIM_PORT\n${1}host:"))

	reFile := regexp.MustCompile(`(?m)^(\s+)file:`)
	data = reFile.ReplaceAll(data, []byte("${1}# Route file wins over waypoints, waypoints win over from/to\n${1}file:"))

	reAddr := regexp.MustCompile(`(?m)^(\s+)address:`)
	data = reAddr.ReplaceAll(data, []byte("${1}# Status API listen address, e.g. localhost:8642 (empty = disabled)\n${1}address:"))

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GenerateDefault creates a default config file at the given path.
// Returns nil if the file already exists.
func GenerateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	return Save(path, DefaultConfig())
}
