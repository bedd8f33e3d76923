// Package config loads stroke-tools settings from an optional YAML file and
// the environment.
//
// Precedence, lowest first: built-in defaults, the YAML file, environment
// variables. Command-line flags are applied by the caller on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"

	"github.com/ironsheep/stroke-tools-mcp/internal/imaging"
	"github.com/ironsheep/stroke-tools-mcp/internal/logging"
	"github.com/ironsheep/stroke-tools-mcp/internal/sensitivity"
)

// Environment variables read by ApplyEnv.
const (
	EnvLogLevel    = "STROKE_MCP_LOG_LEVEL"
	EnvSensitivity = "STROKE_MCP_SENSITIVITY"
	EnvSeed        = "STROKE_MCP_SEED"
)

// Config is the complete runtime configuration.
type Config struct {
	Recognition Recognition `yaml:"recognition"`
	Log         Log         `yaml:"log"`
	Preview     Preview     `yaml:"preview"`
}

// Recognition holds the defaults applied to strokes that do not carry their
// own settings.
type Recognition struct {
	// Sensitivity is 0 (strict) to 100 (loose).
	Sensitivity int `yaml:"sensitivity"`

	// StrokeWidth is the pen width in pixels.
	StrokeWidth float64 `yaml:"stroke_width"`

	// Seed pins the random stream of the recognizer. Zero means a fresh
	// stream per call.
	Seed uint64 `yaml:"seed"`
}

// Log selects the log level and output format.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Preview sets the size and colors of rendered previews.
type Preview struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Colors are hex strings such as "#ffffff".
	Background string `yaml:"background"`
	Stroke     string `yaml:"stroke"`
	Shape      string `yaml:"shape"`

	// Blur is the Gaussian radius applied to the freehand layer; 0 disables
	// it.
	Blur float64 `yaml:"blur"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Recognition: Recognition{
			Sensitivity: sensitivity.Default,
			StrokeWidth: 4,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Preview: Preview{
			Width:      512,
			Height:     512,
			Background: "#ffffff",
			Stroke:     "#9e9e9e",
			Shape:      "#d32f2f",
			Blur:       0.6,
		},
	}
}

// Load reads the YAML file at path over the defaults and then applies the
// environment. An empty path skips the file. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return cfg, fmt.Errorf("config file not found: %s", path)
			}
			return cfg, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables looked up with
// lookup, normally os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = strings.ToLower(strings.TrimSpace(v))
	}
	if v, ok := lookup(EnvSensitivity); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSensitivity, err)
		}
		c.Recognition.Sensitivity = n
	}
	if v, ok := lookup(EnvSeed); ok && v != "" {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSeed, err)
		}
		c.Recognition.Seed = n
	}
	return nil
}

// Validate checks every field and names the first offending key.
func (c Config) Validate() error {
	r := c.Recognition
	if r.Sensitivity < 0 || r.Sensitivity > 100 {
		return fmt.Errorf("recognition.sensitivity: %d out of range [0, 100]", r.Sensitivity)
	}
	if r.StrokeWidth <= 0 {
		return fmt.Errorf("recognition.stroke_width: must be positive, got %v", r.StrokeWidth)
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q", c.Log.Format)
	}

	p := c.Preview
	if err := imaging.CheckPreviewSize(p.Width, p.Height); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if p.Blur < 0 {
		return fmt.Errorf("preview.blur: must not be negative, got %v", p.Blur)
	}
	for _, c := range []struct{ key, hex string }{
		{"preview.background", p.Background},
		{"preview.stroke", p.Stroke},
		{"preview.shape", p.Shape},
	} {
		if _, err := colorful.Hex(c.hex); err != nil {
			return fmt.Errorf("%s: invalid color %q", c.key, c.hex)
		}
	}
	return nil
}
