/*
Package tables holds the static reference data behind the fee engine.

PURPOSE:
  The methodology leans on several published lookup tables: the adequacy
  multiplier per project typology, the suggested payment-schedule presets,
  the ten complexity indicators and the region list for identification.
  These are reference data, not state: they are embedded in the binary,
  parsed once on first use and read-only for the process lifetime.

FORMAT:
  tables.yaml, embedded via go:embed and decoded with gopkg.in/yaml.v3.
  Percentages and multipliers are decoded as floats and converted to
  decimal at load time so the engine never touches binary floats.

USAGE:
  cat := tables.Load()
  m, ok := cat.Multiplier("multifamily-residential")
  preset, ok := cat.Preset("standard")

  // Catalog satisfies fee.TypologyLookup:
  engine := &fee.Engine{Typologies: tables.Load()}

SEE ALSO:
  - fee/factors.go: TypologyLookup consumer
  - fee/schedule.go: StageShare consumed by presets
*/
package tables

import (
	_ "embed"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/atelier/fee-engine/fee"
)

//go:embed tables.yaml
var rawTables []byte

// =============================================================================
// PUBLIC TYPES
// =============================================================================

// Typology is one (category, adequacy multiplier) pair.
type Typology struct {
	Name       string
	Multiplier decimal.Decimal
}

// Preset is a named payment-schedule template with ordered stages.
type Preset struct {
	Name   string
	Stages []fee.StageShare
}

// Catalog is the loaded, read-only reference data set.
type Catalog struct {
	typologies  []Typology
	multipliers map[string]decimal.Decimal
	presets     []Preset
	indicators  []string
	regions     []string
	calibration fee.CalibrationPair
}

// =============================================================================
// LOADING
// =============================================================================

type rawCatalog struct {
	Typologies []struct {
		Name       string  `yaml:"name"`
		Multiplier float64 `yaml:"multiplier"`
	} `yaml:"typologies"`
	Presets []struct {
		Name   string `yaml:"name"`
		Stages []struct {
			Stage      string  `yaml:"stage"`
			Percentage float64 `yaml:"percentage"`
		} `yaml:"stages"`
	} `yaml:"presets"`
	ComplexityIndicators []string `yaml:"complexity_indicators"`
	Regions              []string `yaml:"regions"`
	DefaultCalibration   struct {
		Area1   float64 `yaml:"area1"`
		Factor1 float64 `yaml:"factor1"`
		Area2   float64 `yaml:"area2"`
		Factor2 float64 `yaml:"factor2"`
	} `yaml:"default_calibration"`
}

var (
	loadOnce sync.Once
	catalog  *Catalog
)

// Load returns the embedded catalog. The embedded data is part of the build,
// so a decode failure is a programming error and panics at first use.
func Load() *Catalog {
	loadOnce.Do(func() {
		c, err := parse(rawTables)
		if err != nil {
			panic(fmt.Sprintf("tables: embedded data invalid: %v", err))
		}
		catalog = c
	})
	return catalog
}

func parse(data []byte) (*Catalog, error) {
	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(raw.Typologies) == 0 {
		return nil, fmt.Errorf("no typologies defined")
	}
	if len(raw.Presets) == 0 {
		return nil, fmt.Errorf("no schedule presets defined")
	}

	c := &Catalog{
		multipliers: make(map[string]decimal.Decimal, len(raw.Typologies)),
		indicators:  raw.ComplexityIndicators,
		regions:     raw.Regions,
		calibration: fee.CalibrationPair{
			Area1:   fee.D(raw.DefaultCalibration.Area1),
			Factor1: fee.D(raw.DefaultCalibration.Factor1),
			Area2:   fee.D(raw.DefaultCalibration.Area2),
			Factor2: fee.D(raw.DefaultCalibration.Factor2),
		},
	}

	for _, t := range raw.Typologies {
		m := fee.D(t.Multiplier)
		if !m.IsPositive() {
			return nil, fmt.Errorf("typology %q: multiplier must be positive", t.Name)
		}
		c.typologies = append(c.typologies, Typology{Name: t.Name, Multiplier: m})
		c.multipliers[t.Name] = m
	}

	for _, p := range raw.Presets {
		preset := Preset{Name: p.Name}
		for _, s := range p.Stages {
			preset.Stages = append(preset.Stages, fee.StageShare{
				Stage:      s.Stage,
				Percentage: fee.D(s.Percentage),
			})
		}
		c.presets = append(c.presets, preset)
	}
	return c, nil
}

// =============================================================================
// ACCESSORS - All read-only
// =============================================================================

// Multiplier resolves a typology's adequacy multiplier by name.
// Implements fee.TypologyLookup.
func (c *Catalog) Multiplier(typology string) (decimal.Decimal, bool) {
	m, ok := c.multipliers[typology]
	return m, ok
}

// Typologies returns the ordered typology table.
func (c *Catalog) Typologies() []Typology {
	out := make([]Typology, len(c.typologies))
	copy(out, c.typologies)
	return out
}

// Presets returns the ordered schedule presets.
func (c *Catalog) Presets() []Preset {
	out := make([]Preset, len(c.presets))
	for i, p := range c.presets {
		out[i] = Preset{Name: p.Name, Stages: append([]fee.StageShare(nil), p.Stages...)}
	}
	return out
}

// Preset resolves one schedule preset by name.
func (c *Catalog) Preset(name string) (Preset, bool) {
	for _, p := range c.presets {
		if p.Name == name {
			return Preset{Name: p.Name, Stages: append([]fee.StageShare(nil), p.Stages...)}, true
		}
	}
	return Preset{}, false
}

// Indicators returns the ten complexity indicator names.
func (c *Catalog) Indicators() []string {
	return append([]string(nil), c.indicators...)
}

// Regions returns the region codes for the identification form.
func (c *Catalog) Regions() []string {
	return append([]string(nil), c.regions...)
}

// DefaultCalibration returns the default fp interpolation bracket.
func (c *Catalog) DefaultCalibration() fee.CalibrationPair {
	return c.calibration
}
