// Package config loads sandbox settings from YAML and the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fyerfyer/gate-sandbox/pkg/circuit"
	"github.com/fyerfyer/gate-sandbox/pkg/hittest"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read by Load when no path is given and the file exists
const DefaultPath = "gatesim.yaml"

// Config contains all sandbox settings
type Config struct {
	Simulation SimulationConfig `yaml:"simulation"`
	Geometry   GeometryConfig   `yaml:"geometry"`
	Window     WindowConfig     `yaml:"window"`
	Logging    LoggingConfig    `yaml:"logging"`
	Metrics    MetricsConfig    `yaml:"metrics"`
}

// SimulationConfig controls the tick loop
type SimulationConfig struct {
	// EdgeDelay is the transmission window of every new edge
	EdgeDelay time.Duration `yaml:"edge_delay"`

	// TPS is the number of ticks per second
	TPS int `yaml:"tps"`
}

// GeometryConfig holds hit tolerances and sizes in world units
type GeometryConfig struct {
	NodeRadius float64 `yaml:"node_radius"`
	EdgeWidth  float64 `yaml:"edge_width"`
	GateWidth  float64 `yaml:"gate_width"`
	GateHeight float64 `yaml:"gate_height"`

	// Grid is the drag snap cell size; 0 disables snapping
	Grid float64 `yaml:"grid"`
}

// WindowConfig sizes the window of the run command
type WindowConfig struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Title  string `yaml:"title"`
}

// LoggingConfig configures the logger
type LoggingConfig struct {
	// Level is one of "error", "warning", "info", "debug" or "trace"
	Level string `yaml:"level"`

	// Format is "text" or "json"
	Format string `yaml:"format"`

	// File appends records to a file instead of stderr when set
	File string `yaml:"file,omitempty"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	// Addr is the listen address for /metrics; empty disables the endpoint
	Addr string `yaml:"addr"`
}

// Default returns a Config with the canvas defaults
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			EdgeDelay: circuit.DefaultEdgeDelay,
			TPS:       60,
		},
		Geometry: GeometryConfig{
			NodeRadius: hittest.DefaultNodeRadius,
			EdgeWidth:  hittest.DefaultEdgeWidth,
			GateWidth:  circuit.DefaultGateSize.X,
			GateHeight: circuit.DefaultGateSize.Y,
		},
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "gatesim",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration in the order defaults -> file -> environment.
// An empty path falls back to DefaultPath when that file exists.
func Load(path string) (*Config, error) {
	config := Default()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err == nil {
			path = DefaultPath
		}
	}
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadFromFile loads configuration from a YAML file. Missing keys keep
// their defaults.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return config, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	if c.Simulation.EdgeDelay <= 0 {
		return fmt.Errorf("edge_delay must be positive, got %v", c.Simulation.EdgeDelay)
	}
	if c.Simulation.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.Simulation.TPS)
	}
	if c.Geometry.NodeRadius <= 0 || c.Geometry.EdgeWidth <= 0 {
		return fmt.Errorf("node_radius and edge_width must be positive, got %v and %v",
			c.Geometry.NodeRadius, c.Geometry.EdgeWidth)
	}
	if c.Geometry.GateWidth <= 0 || c.Geometry.GateHeight <= 0 {
		return fmt.Errorf("gate size must be positive, got %vx%v", c.Geometry.GateWidth, c.Geometry.GateHeight)
	}
	if c.Geometry.Grid < 0 {
		return fmt.Errorf("grid must be non-negative, got %v", c.Geometry.Grid)
	}

	validLevels := map[string]bool{"error": true, "warn": true, "warning": true, "info": true, "debug": true, "trace": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: error, warning, info, debug, trace)", c.Logging.Level)
	}
	if c.Logging.Format != "text" && c.Logging.Format != "json" {
		return fmt.Errorf("invalid log format: %s (valid: text, json)", c.Logging.Format)
	}
	return nil
}

// TickDelta returns the simulated time of one tick
func (c *Config) TickDelta() time.Duration {
	return time.Second / time.Duration(c.Simulation.TPS)
}

// YAML renders the configuration as a YAML document
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

// applyEnvOverrides applies GATESIM_* environment variables to the config
func applyEnvOverrides(config *Config) error {
	if v := os.Getenv("GATESIM_EDGE_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("GATESIM_EDGE_DELAY: %w", err)
		}
		config.Simulation.EdgeDelay = d
	}

	if v := os.Getenv("GATESIM_TPS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GATESIM_TPS: %w", err)
		}
		config.Simulation.TPS = n
	}

	if v := os.Getenv("GATESIM_GRID"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("GATESIM_GRID: %w", err)
		}
		config.Geometry.Grid = f
	}

	if v := os.Getenv("GATESIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}
	if v := os.Getenv("GATESIM_LOG_FORMAT"); v != "" {
		config.Logging.Format = v
	}
	if v := os.Getenv("GATESIM_METRICS_ADDR"); v != "" {
		config.Metrics.Addr = v
	}
	return nil
}
