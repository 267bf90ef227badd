// Package config loads named arithmetic context presets from YAML.
package config

import (
	"bytes"
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/govalues/radixmath"
	"gopkg.in/yaml.v3"
)

// Config holds the presets known to radixcalc.
type Config struct {
	// Default names the preset used when none is requested.
	Default string   `yaml:"default"`
	Presets []Preset `yaml:"presets"`
}

// Preset describes an arithmetic context and the radix it applies to.
type Preset struct {
	Name      string `yaml:"name"`
	Radix     int    `yaml:"radix"`           // 10 or 2
	Precision uint64 `yaml:"precision"`       // 0 is unbounded
	Rounding  string `yaml:"rounding"`        // HalfEven, Down, ...
	EMin      *int64 `yaml:"emin,omitempty"`  // nil is unbounded
	EMax      *int64 `yaml:"emax,omitempty"`  // nil is unbounded
	Traps     string `yaml:"traps,omitempty"` // Inexact|Overflow, ...
	Flags     *bool  `yaml:"flags,omitempty"` // record flags, true if nil
}

func exp(n int64) *int64 {
	return &n
}

// DefaultConfig returns the built-in presets.
func DefaultConfig() *Config {
	return &Config{
		Default: "decimal64",
		Presets: []Preset{
			{Name: "decimal32", Radix: 10, Precision: 7, Rounding: "HalfEven", EMin: exp(-95), EMax: exp(96)},
			{Name: "decimal64", Radix: 10, Precision: 16, Rounding: "HalfEven", EMin: exp(-383), EMax: exp(384)},
			{Name: "decimal128", Radix: 10, Precision: 34, Rounding: "HalfEven", EMin: exp(-6143), EMax: exp(6144)},
			{Name: "binary32", Radix: 2, Precision: 24, Rounding: "HalfEven", EMin: exp(-126), EMax: exp(127)},
			{Name: "binary64", Radix: 2, Precision: 53, Rounding: "HalfEven", EMin: exp(-1022), EMax: exp(1023)},
			{Name: "unlimited", Radix: 10, Rounding: "HalfEven"},
		},
	}
}

// Load reads presets from a YAML file and merges them over the built-in
// ones. A preset with the name of a built-in one replaces it.
// An empty path returns the built-in presets.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config")
	}

	var file Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to parse config")
	}

	if err := cfg.merge(&file); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

func (c *Config) merge(o *Config) error {
	if o.Default != "" {
		c.Default = o.Default
	}
	seen := make(map[string]bool, len(o.Presets))
	for _, p := range o.Presets {
		key := strings.ToLower(p.Name)
		if seen[key] {
			return errors.Newf("duplicate preset %q", p.Name)
		}
		seen[key] = true
		if i := c.index(p.Name); i >= 0 {
			c.Presets[i] = p
			continue
		}
		c.Presets = append(c.Presets, p)
	}
	return nil
}

func (c *Config) index(name string) int {
	for i, p := range c.Presets {
		if strings.EqualFold(p.Name, name) {
			return i
		}
	}
	return -1
}

// Validate checks every preset and the default name.
func (c *Config) Validate() error {
	seen := make(map[string]bool, len(c.Presets))
	for _, p := range c.Presets {
		key := strings.ToLower(p.Name)
		if seen[key] {
			return errors.Newf("duplicate preset %q", p.Name)
		}
		seen[key] = true
		if err := p.Validate(); err != nil {
			return err
		}
	}
	if c.index(c.Default) < 0 {
		return errors.Newf("default preset %q is not defined", c.Default)
	}
	return nil
}

// Preset returns the preset with the given name, or the default preset if
// name is empty. Names are case-insensitive.
func (c *Config) Preset(name string) (Preset, error) {
	if name == "" {
		name = c.Default
	}
	i := c.index(name)
	if i < 0 {
		return Preset{}, errors.Newf("unknown preset %q", name)
	}
	return c.Presets[i], nil
}

// Validate checks that the preset describes a usable context.
func (p Preset) Validate() error {
	if p.Name == "" {
		return errors.New("preset without a name")
	}
	if p.Radix != 10 && p.Radix != 2 {
		return errors.Newf("preset %q: radix %d is not 2 or 10", p.Name, p.Radix)
	}
	if p.EMin != nil && p.EMax != nil && *p.EMin > *p.EMax {
		return errors.Newf("preset %q: emin %d is greater than emax %d", p.Name, *p.EMin, *p.EMax)
	}
	if _, err := p.Context(); err != nil {
		return err
	}
	return nil
}

// Context returns a new context with the settings of the preset.
func (p Preset) Context() (*radixmath.Context, error) {
	rounding := radixmath.HalfEven
	if p.Rounding != "" {
		r, err := radixmath.ParseRounding(p.Rounding)
		if err != nil {
			return nil, errors.Wrapf(err, "preset %q", p.Name)
		}
		rounding = r
	}
	traps, err := radixmath.ParseFlags(p.Traps)
	if err != nil {
		return nil, errors.Wrapf(err, "preset %q", p.Name)
	}
	ctx := radixmath.NewContext(p.Precision, rounding).WithTraps(traps)
	if p.EMin != nil {
		ctx.EMin = big.NewInt(*p.EMin)
	}
	if p.EMax != nil {
		ctx.EMax = big.NewInt(*p.EMax)
	}
	if p.Flags != nil {
		ctx.HasFlags = *p.Flags
	}
	return ctx, nil
}

// Engine returns the engine for the radix of the preset.
func (p Preset) Engine() *radixmath.Engine[radixmath.Value] {
	if p.Radix == 2 {
		return radixmath.Binary
	}
	return radixmath.Decimal
}
