// Package config loads ls-globe settings from struct defaults, an optional
// YAML file and LSGLOBE_* environment variables, in that order of priority.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/litescript/ls-globe/internal/engine"
	"github.com/litescript/ls-globe/internal/logging"
)

// EnvPrefix is the prefix for environment overrides. LSGLOBE_GLOBE_MIN_DISTANCE
// maps to globe.min_distance.
const EnvPrefix = "LSGLOBE_"

// ConfigPathEnvVar overrides the config file search.
const ConfigPathEnvVar = "LSGLOBE_CONFIG"

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"ls-globe.yaml",
	"ls-globe.yml",
}

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full application configuration.
type Config struct {
	Globe       GlobeConfig       `koanf:"globe"`
	Picking     PickingConfig     `koanf:"picking"`
	Interaction InteractionConfig `koanf:"interaction"`
	Cluster     ClusterConfig     `koanf:"cluster"`
	Render      RenderConfig      `koanf:"render"`
	Feed        FeedConfig        `koanf:"feed"`
	Logging     LoggingConfig     `koanf:"logging"`
	Metrics     MetricsConfig     `koanf:"metrics"`
}

// GlobeConfig controls the camera.
type GlobeConfig struct {
	AutoRotate      bool    `koanf:"auto_rotate"`
	AutoRotateSpeed float64 `koanf:"auto_rotate_speed" validate:"gte=0,lte=360"` // degrees per second
	MinDistance     float64 `koanf:"min_distance" validate:"gt=1"`
	MaxDistance     float64 `koanf:"max_distance" validate:"gt=1"`
	InitialDistance float64 `koanf:"initial_distance" validate:"gt=1"`
	InitialLat      float64 `koanf:"initial_lat" validate:"gte=-90,lte=90"`
	InitialLng      float64 `koanf:"initial_lng" validate:"gte=-180,lte=180"`
	Flat            bool    `koanf:"flat"`
}

// PickingConfig selects the hit-testing strategy.
type PickingConfig struct {
	ToleranceRadiusPx float64 `koanf:"tolerance_radius_px" validate:"gt=0"`
	Strategy          string  `koanf:"strategy" validate:"oneof=linear grid"`
	GridCellSize      float64 `koanf:"grid_cell_size" validate:"gt=0"`
}

// InteractionConfig holds gesture timings. Durations are in milliseconds
// to match the documented option names.
type InteractionConfig struct {
	FlyToDurationMs int     `koanf:"fly_to_duration_ms" validate:"gte=0,lte=60000"`
	IntroDurationMs int     `koanf:"intro_duration_ms" validate:"gte=0,lte=60000"`
	LongPressMs     int     `koanf:"long_press_ms" validate:"gt=0"`
	DragThreshold   float64 `koanf:"drag_threshold" validate:"gte=0"`
}

// ClusterConfig controls city aggregation. A zero threshold disables it.
type ClusterConfig struct {
	DistanceThreshold float64 `koanf:"distance_threshold" validate:"gte=0"`
}

// RenderConfig toggles terminal drawing layers.
type RenderConfig struct {
	Stars     bool `koanf:"stars"`
	Graticule bool `koanf:"graticule"`
	// Daylight dims the graticule on the night side of the terminator.
	Daylight bool `koanf:"daylight"`
	Counts   bool `koanf:"counts"`
	FPS      int  `koanf:"fps" validate:"gte=1,lte=60"`
}

// FeedConfig selects where academic snapshots come from.
type FeedConfig struct {
	Source  string        `koanf:"source"`
	Refresh time.Duration `koanf:"refresh" validate:"gte=0s"`
	Timeout time.Duration `koanf:"timeout" validate:"gt=0s"`
}

// LoggingConfig controls the logger.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=console json"`
	File   string `koanf:"file"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `koanf:"addr" validate:"omitempty,hostname_port"`
}

// Default returns the built-in configuration.
func Default() *Config {
	eng := engine.DefaultConfig()
	return &Config{
		Globe: GlobeConfig{
			AutoRotate:      eng.Camera.AutoRotate,
			AutoRotateSpeed: eng.Camera.AutoRotateSpeed,
			MinDistance:     eng.Camera.MinDistance,
			MaxDistance:     eng.Camera.MaxDistance,
			InitialDistance: eng.Camera.InitialDistance,
			InitialLat:      eng.Camera.InitialLat,
			InitialLng:      eng.Camera.InitialLng,
		},
		Picking: PickingConfig{
			ToleranceRadiusPx: eng.Interact.Tolerance,
			Strategy:          eng.Picker,
			GridCellSize:      eng.GridCellSize,
		},
		Interaction: InteractionConfig{
			FlyToDurationMs: int(eng.Interact.FlyToDuration / time.Millisecond),
			IntroDurationMs: int(eng.IntroDuration / time.Millisecond),
			LongPressMs:     int(eng.Interact.LongPress / time.Millisecond),
			DragThreshold:   eng.Interact.DragThreshold,
		},
		Cluster: ClusterConfig{
			DistanceThreshold: eng.ClusterThreshold,
		},
		Render: RenderConfig{
			Stars:     true,
			Graticule: true,
			Daylight:  true,
			Counts:    true,
			FPS:       30,
		},
		Feed: FeedConfig{
			Source:  "demo",
			Refresh: 5 * time.Minute,
			Timeout: 30 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load builds the configuration. An explicit path must exist; otherwise
// LSGLOBE_CONFIG and DefaultConfigPaths are tried and a missing file is
// not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransform maps LSGLOBE_GLOBE_AUTO_ROTATE_SPEED to
// globe.auto_rotate_speed. Section names never contain underscores, so the
// first one separates section from key.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return strings.Replace(key, "_", ".", 1)
}

// ToEngine converts the settings into an engine configuration.
func (c *Config) ToEngine() engine.Config {
	eng := engine.DefaultConfig()

	eng.Camera.AutoRotate = c.Globe.AutoRotate
	eng.Camera.AutoRotateSpeed = c.Globe.AutoRotateSpeed
	eng.Camera.MinDistance = c.Globe.MinDistance
	eng.Camera.MaxDistance = c.Globe.MaxDistance
	eng.Camera.InitialDistance = c.Globe.InitialDistance
	eng.Camera.InitialLat = c.Globe.InitialLat
	eng.Camera.InitialLng = c.Globe.InitialLng
	if eng.Camera.StartDistance > c.Globe.MaxDistance {
		eng.Camera.StartDistance = c.Globe.MaxDistance
	}

	eng.Interact.Tolerance = c.Picking.ToleranceRadiusPx
	eng.Picker = c.Picking.Strategy
	eng.GridCellSize = c.Picking.GridCellSize

	eng.Interact.FlyToDuration = time.Duration(c.Interaction.FlyToDurationMs) * time.Millisecond
	eng.Interact.LongPress = time.Duration(c.Interaction.LongPressMs) * time.Millisecond
	eng.Interact.DragThreshold = c.Interaction.DragThreshold
	eng.IntroDuration = time.Duration(c.Interaction.IntroDurationMs) * time.Millisecond

	eng.ClusterThreshold = c.Cluster.DistanceThreshold
	if t := c.Cluster.DistanceThreshold; t > 0 {
		// Land just inside the threshold so a cluster click reveals points.
		eng.Interact.ClusterZoomDistance = max(c.Globe.MinDistance, t*0.88)
	}

	eng.Flat = c.Globe.Flat
	return eng
}

// LogLevel returns the parsed logging level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Logging.Level)
}

// LogFormat returns the logger encoding.
func (c *Config) LogFormat() logging.Format {
	if c.Logging.Format == string(logging.FormatJSON) {
		return logging.FormatJSON
	}
	return logging.FormatConsole
}

// FrameInterval is the tick period for the configured frame rate.
func (c *Config) FrameInterval() time.Duration {
	if c.Render.FPS <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.Render.FPS)
}
