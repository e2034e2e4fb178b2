// Package config loads run files.
//
// A run file is YAML:
//
//	expression: |
//	  f = x * y + tanh(x)
//	scalar: false
//	symbolic_only: false
//	inputs:
//	  x: [[1, 2], [3, 4]]
//	  y: [[0.5, 0], [0, 0.5]]
//	derivatives:
//	  f: [[1, 1], [1, 1]]
//	log:
//	  level: info
//	  format: text
package config

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/born-ml/gradgraph/internal/logging"
	"github.com/born-ml/gradgraph/internal/matrix"
)

// MaxDim bounds the rows and columns of every matrix in a run file.
const MaxDim = 4

// ErrInvalid is wrapped by every validation error.
var ErrInvalid = errors.New("config: invalid run file")

// Config is a parsed run file.
type Config struct {
	Expression   string                 `yaml:"expression"`
	Scalar       bool                   `yaml:"scalar"`
	SymbolicOnly bool                   `yaml:"symbolic_only"`
	Inputs       map[string][][]float64 `yaml:"inputs"`
	Derivatives  map[string][][]float64 `yaml:"derivatives"`
	Log          LogConfig              `yaml:"log"`
}

// LogConfig selects the logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads and validates the run file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a run file.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the expression, the matrices and the log settings.
func (c *Config) Validate() error {
	if c.Expression == "" {
		return fmt.Errorf("%w: expression is empty", ErrInvalid)
	}
	if err := validateMatrices("inputs", c.Inputs, c.Scalar); err != nil {
		return err
	}
	if err := validateMatrices("derivatives", c.Derivatives, c.Scalar); err != nil {
		return err
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch logging.Format(c.Log.Format) {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

func validateMatrices(section string, values map[string][][]float64, scalar bool) error {
	for _, name := range sortedKeys(values) {
		rows := values[name]
		m, err := matrix.New(rows)
		if err != nil {
			return fmt.Errorf("%w: %s.%s: %w", ErrInvalid, section, name, err)
		}
		shape := m.Shape()
		if shape.Rows > MaxDim || shape.Cols > MaxDim {
			return fmt.Errorf("%w: %s.%s: shape %s exceeds %dx%d", ErrInvalid, section, name, shape, MaxDim, MaxDim)
		}
		if scalar && !shape.IsScalar() {
			return fmt.Errorf("%w: %s.%s: scalar runs need 1x1 values, got %s", ErrInvalid, section, name, shape)
		}
	}
	return nil
}

// InputMatrices converts the inputs section.
func (c *Config) InputMatrices() (map[string]matrix.Matrix, error) {
	return toMatrices(c.Inputs)
}

// DerivativeMatrices converts the derivatives section.
func (c *Config) DerivativeMatrices() (map[string]matrix.Matrix, error) {
	return toMatrices(c.Derivatives)
}

// Logging returns the logger settings.
func (c *Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: logging.Format(c.Log.Format)}
}

// SameGraph reports whether c and other describe the same graph, so that
// only inputs and derivatives differ.
func (c *Config) SameGraph(other *Config) bool {
	return other != nil && c.Expression == other.Expression && c.Scalar == other.Scalar
}

func toMatrices(values map[string][][]float64) (map[string]matrix.Matrix, error) {
	out := make(map[string]matrix.Matrix, len(values))
	for name, rows := range values {
		m, err := matrix.New(rows)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", name, err)
		}
		out[name] = m
	}
	return out, nil
}

func sortedKeys(m map[string][][]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
