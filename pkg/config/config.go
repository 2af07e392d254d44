package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

var ErrInvalidConfig = errors.New("invalid config")

const defaultSeed uint64 = 777

// AdversaryConfig describes a linear adversary and how many rounds a caller
// wants from it.
type AdversaryConfig struct {
	Dim        int     `yaml:"dim"`
	LowerBound float64 `yaml:"lower_bound"`
	UpperBound float64 `yaml:"upper_bound"`
	Seed       uint64  `yaml:"seed"`
	Rounds     int     `yaml:"rounds"`
	History    int     `yaml:"history"`
}

// Environment variables read by ApplyEnv
const (
	EnvDim     = "OLEARN_DIM"
	EnvLower   = "OLEARN_LB"
	EnvUpper   = "OLEARN_UB"
	EnvSeed    = "OLEARN_SEED"
	EnvRounds  = "OLEARN_ROUNDS"
	EnvHistory = "OLEARN_HISTORY"
)

func Default() AdversaryConfig {
	return AdversaryConfig{
		Dim:        1,
		LowerBound: 0.0,
		UpperBound: 1.0,
		Seed:       defaultSeed,
		Rounds:     1,
	}
}

// LoadConfig reads a YAML file on top of Default. Unknown keys are rejected.
func LoadConfig(path string) (*AdversaryConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

// Decode parses YAML from r on top of Default.
func Decode(r io.Reader) (*AdversaryConfig, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides fields from environment variables found by lookup,
// typically os.LookupEnv.
func (c *AdversaryConfig) ApplyEnv(lookup func(string) (string, bool)) error {
	ints := []struct {
		key string
		dst *int
	}{
		{EnvDim, &c.Dim},
		{EnvRounds, &c.Rounds},
		{EnvHistory, &c.History},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, f.key, v, err)
		}
		*f.dst = n
	}

	floats := []struct {
		key string
		dst *float64
	}{
		{EnvLower, &c.LowerBound},
		{EnvUpper, &c.UpperBound},
	}
	for _, f := range floats {
		v, ok := lookup(f.key)
		if !ok || v == "" {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, f.key, v, err)
		}
		*f.dst = x
	}

	if v, ok := lookup(EnvSeed); ok && v != "" {
		s, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, EnvSeed, v, err)
		}
		c.Seed = s
	}
	return nil
}

func (c AdversaryConfig) Validate() error {
	if c.Dim < 0 {
		return fmt.Errorf("%w: dim must be non-negative, got %d", ErrInvalidConfig, c.Dim)
	}
	if math.IsNaN(c.LowerBound) || math.IsNaN(c.UpperBound) ||
		math.IsInf(c.LowerBound, 0) || math.IsInf(c.UpperBound, 0) {
		return fmt.Errorf("%w: range [%v, %v) must be finite", ErrInvalidConfig, c.LowerBound, c.UpperBound)
	}
	if c.LowerBound >= c.UpperBound {
		return fmt.Errorf("%w: lower_bound %v must be below upper_bound %v", ErrInvalidConfig, c.LowerBound, c.UpperBound)
	}
	if math.IsInf(c.UpperBound-c.LowerBound, 0) {
		return fmt.Errorf("%w: width of range [%v, %v) overflows", ErrInvalidConfig, c.LowerBound, c.UpperBound)
	}
	if c.Rounds < 0 {
		return fmt.Errorf("%w: rounds must be non-negative, got %d", ErrInvalidConfig, c.Rounds)
	}
	return nil
}
