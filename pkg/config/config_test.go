package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gatesim.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault(t *testing.T) {
	config := Default()

	require.Equal(t, 100*time.Millisecond, config.Simulation.EdgeDelay)
	require.Equal(t, 60, config.Simulation.TPS)
	require.Equal(t, 15.0, config.Geometry.NodeRadius)
	require.Equal(t, 5.0, config.Geometry.EdgeWidth)
	require.Equal(t, 120.0, config.Geometry.GateWidth)
	require.Zero(t, config.Geometry.Grid)
	require.Empty(t, config.Metrics.Addr)
	require.NoError(t, config.Validate())
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
simulation:
  edge_delay: 250ms
  tps: 50
geometry:
  grid: 20
logging:
  level: debug
  format: json
`)

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	want := Default()
	want.Simulation.EdgeDelay = 250 * time.Millisecond
	want.Simulation.TPS = 50
	want.Geometry.Grid = 20
	want.Logging.Level = "debug"
	want.Logging.Format = "json"
	require.Empty(t, cmp.Diff(want, config))
	require.Equal(t, 20*time.Millisecond, config.TickDelta())
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFromFile(writeConfig(t, "simulation: [not, a, map]"))
	require.ErrorContains(t, err, "parsing config file")
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfig(t, "simulation:\n  edge_delay: 250ms\n")
	t.Setenv("GATESIM_EDGE_DELAY", "40ms")
	t.Setenv("GATESIM_TPS", "30")
	t.Setenv("GATESIM_GRID", "10")
	t.Setenv("GATESIM_LOG_LEVEL", "trace")
	t.Setenv("GATESIM_LOG_FORMAT", "json")
	t.Setenv("GATESIM_METRICS_ADDR", ":9100")

	config, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 40*time.Millisecond, config.Simulation.EdgeDelay)
	require.Equal(t, 30, config.Simulation.TPS)
	require.Equal(t, 10.0, config.Geometry.Grid)
	require.Equal(t, "trace", config.Logging.Level)
	require.Equal(t, "json", config.Logging.Format)
	require.Equal(t, ":9100", config.Metrics.Addr)
}

func TestEnvOverrideErrors(t *testing.T) {
	t.Setenv("GATESIM_EDGE_DELAY", "soon")
	_, err := Load(writeConfig(t, ""))
	require.ErrorContains(t, err, "GATESIM_EDGE_DELAY")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero delay", func(c *Config) { c.Simulation.EdgeDelay = 0 }},
		{"negative tps", func(c *Config) { c.Simulation.TPS = -1 }},
		{"zero radius", func(c *Config) { c.Geometry.NodeRadius = 0 }},
		{"flat gate", func(c *Config) { c.Geometry.GateHeight = 0 }},
		{"negative grid", func(c *Config) { c.Geometry.Grid = -5 }},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			require.Error(t, c.Validate())
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	config := Default()
	config.Simulation.EdgeDelay = 75 * time.Millisecond

	data, err := config.YAML()
	require.NoError(t, err)
	require.Contains(t, string(data), "edge_delay: 75ms")

	var back Config
	require.NoError(t, yaml.Unmarshal(data, &back))
	require.Empty(t, cmp.Diff(config, &back))
}
