// Package catalog holds the engineering reference data used by the hard
// engineering checks: ampacity tables per profile, cable correction factors,
// adiabatic k constants, breaker margins and the protection curve constants.
//
// The data is versioned configuration, never inlined constants. The embedded
// catalog.yaml is the default; a replacement file with the same schema can be
// loaded with Load. A *Catalog is read-only after construction and safe for
// concurrent use.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"
)

// Profile names every catalog must provide.
const (
	ProfileKESCDefault     = "KESC_DEFAULT"
	ProfileIECConservative = "IEC_CONSERVATIVE"
	ProfileIECRealistic1C  = "IEC_REALISTIC_1C"
	// ProfileCustom tags a caller-supplied table; it is never stored in a catalog.
	ProfileCustom = "CUSTOM"
)

// requiredProfiles must be present in every catalog.
var requiredProfiles = []string{ProfileKESCDefault, ProfileIECConservative, ProfileIECRealistic1C}

// ErrMissingEntry is returned when a lookup key has no catalog entry.
var ErrMissingEntry = errors.New("catalog: missing entry")

//go:embed catalog.yaml
var embeddedCatalog []byte

// Entry is one row of an ampacity table.
type Entry struct {
	SectionMM2    float64 `yaml:"section_mm2" json:"section_mm2"`
	BaseAmpacityA float64 `yaml:"ampacity_a" json:"ampacity_a"`
}

// Provider supplies ampacity tables by profile name.
type Provider interface {
	// Table returns the profile's entries sorted ascending by cross-section.
	// The returned slice is a copy and may be modified by the caller.
	Table(profile string) ([]Entry, error)
}

// TemperatureFactor parameterizes the ambient correction
// k = 1 for ambient <= ReferenceC, else max(Floor, 1 - SlopePerC*(ambient-ReferenceC)).
type TemperatureFactor struct {
	ReferenceC float64 `yaml:"reference_c" json:"reference_c"`
	SlopePerC  float64 `yaml:"slope_per_c" json:"slope_per_c"`
	Floor      float64 `yaml:"floor" json:"floor"`
}

// Factors are the multiplicative cable correction factors.
type Factors struct {
	Material    map[string]float64 `yaml:"material" json:"material"`
	Insulation  map[string]float64 `yaml:"insulation" json:"insulation"`
	Install     map[string]float64 `yaml:"install" json:"install"`
	Temperature TemperatureFactor  `yaml:"temperature" json:"temperature"`
	Group       []float64          `yaml:"group" json:"group"`
}

// ThermalK is the adiabatic constant for one conductor/insulation pair.
type ThermalK struct {
	Material   string  `yaml:"material" json:"material"`
	Insulation string  `yaml:"insulation" json:"insulation"`
	K          float64 `yaml:"k" json:"k"`
}

// BreakerMargins maps a standard tag to the breaking-capacity safety margin.
type BreakerMargins struct {
	Default   float64            `yaml:"default" json:"default"`
	Standards map[string]float64 `yaml:"standards" json:"standards"`
}

// Curve holds the inverse-time constants t = TMS*K / ((I/Ip)^Alpha - 1).
type Curve struct {
	Name  string  `yaml:"name" json:"name"`
	K     float64 `yaml:"k" json:"k"`
	Alpha float64 `yaml:"alpha" json:"alpha"`
}

// Catalog represents the full catalog.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Catalog struct {
	Version        string             `yaml:"version" json:"version"`
	Profiles       map[string][]Entry `yaml:"profiles" json:"profiles"`
	Factors        Factors            `yaml:"factors" json:"factors"`
	ThermalK       []ThermalK         `yaml:"thermal_k" json:"thermal_k"`
	BreakerMargins BreakerMargins     `yaml:"breaker_margins" json:"breaker_margins"`
	Curve          Curve              `yaml:"curve" json:"curve"`
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return Parse(bytes.NewReader(embeddedCatalog))
})

// Default returns the embedded catalog. It panics if the embedded data is
// invalid, which can only happen through a bad edit of catalog.yaml.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(fmt.Sprintf("embedded catalog is invalid: %v", err))
	}
	return c
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog %q: %w", path, err)
	}
	defer f.Close()
	c, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("load catalog %q: %w", path, err)
	}
	return c, nil
}

// Parse decodes a catalog with strict field checking and validates it.
func Parse(r io.Reader) (*Catalog, error) {
	var c Catalog
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&c); err != nil {
		return nil, fmt.Errorf("parse catalog YAML: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	for name, entries := range c.Profiles {
		c.Profiles[name] = SortEntries(entries)
	}
	return &c, nil
}

// Validate checks structural and range constraints of the catalog.
func (c *Catalog) Validate() error {
	if c.Version == "" {
		return errors.New("catalog: version is required")
	}
	for _, name := range requiredProfiles {
		if _, ok := c.Profiles[name]; !ok {
			return fmt.Errorf("catalog: required profile %q is missing", name)
		}
	}
	for name, entries := range c.Profiles {
		if name == ProfileCustom {
			return fmt.Errorf("catalog: profile name %q is reserved", ProfileCustom)
		}
		if err := ValidateEntries(entries); err != nil {
			return fmt.Errorf("catalog: profile %q: %w", name, err)
		}
	}
	for _, m := range []map[string]float64{c.Factors.Material, c.Factors.Insulation, c.Factors.Install} {
		for key, k := range m {
			if !(k > 0) || math.IsInf(k, 0) {
				return fmt.Errorf("catalog: factor %q must be positive, got %v", key, k)
			}
		}
	}
	t := c.Factors.Temperature
	if !(t.Floor > 0 && t.Floor <= 1) || t.SlopePerC < 0 {
		return fmt.Errorf("catalog: invalid temperature factor %+v", t)
	}
	if len(c.Factors.Group) == 0 {
		return errors.New("catalog: group factors are required")
	}
	for i, g := range c.Factors.Group {
		if !(g > 0 && g <= 1) {
			return fmt.Errorf("catalog: group factor %d must be in (0, 1], got %v", i+1, g)
		}
	}
	for _, row := range c.ThermalK {
		if !(row.K > 0) {
			return fmt.Errorf("catalog: thermal k for %s/%s must be positive", row.Material, row.Insulation)
		}
	}
	if !(c.BreakerMargins.Default > 0) {
		return errors.New("catalog: default breaker margin must be positive")
	}
	for std, m := range c.BreakerMargins.Standards {
		if !(m > 0) {
			return fmt.Errorf("catalog: breaker margin for %q must be positive", std)
		}
	}
	if !(c.Curve.K > 0) || !(c.Curve.Alpha > 0) {
		return fmt.Errorf("catalog: invalid curve constants %+v", c.Curve)
	}
	return nil
}

// ValidateEntries rejects empty tables, non-positive values and duplicate sections.
func ValidateEntries(entries []Entry) error {
	if len(entries) == 0 {
		return errors.New("table is empty")
	}
	seen := make(map[float64]bool, len(entries))
	for _, e := range entries {
		if !(e.SectionMM2 > 0) || !(e.BaseAmpacityA > 0) || math.IsInf(e.SectionMM2, 0) || math.IsInf(e.BaseAmpacityA, 0) {
			return fmt.Errorf("invalid entry %+v", e)
		}
		if seen[e.SectionMM2] {
			return fmt.Errorf("duplicate section %v mm2", e.SectionMM2)
		}
		seen[e.SectionMM2] = true
	}
	return nil
}

// SortEntries returns a copy of entries sorted ascending by cross-section.
func SortEntries(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SectionMM2 < out[j].SectionMM2 })
	return out
}

// Table implements Provider.
func (c *Catalog) Table(profile string) ([]Entry, error) {
	entries, ok := c.Profiles[profile]
	if !ok {
		return nil, fmt.Errorf("%w: ampacity profile %q (available: %v)", ErrMissingEntry, profile, c.ProfileNames())
	}
	return SortEntries(entries), nil
}

// HasProfile reports whether the catalog defines the named profile.
func (c *Catalog) HasProfile(profile string) bool {
	_, ok := c.Profiles[profile]
	return ok
}

// ProfileNames returns the sorted profile names.
func (c *Catalog) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThermalConstant returns the adiabatic k for a material/insulation pair.
func (c *Catalog) ThermalConstant(material, insulation string) (float64, error) {
	for _, row := range c.ThermalK {
		if row.Material == material && row.Insulation == insulation {
			return row.K, nil
		}
	}
	return 0, fmt.Errorf("%w: thermal k for %s/%s", ErrMissingEntry, material, insulation)
}

// For returns the margin for a standard tag, falling back to Default.
func (b BreakerMargins) For(standard string) float64 {
	if m, ok := b.Standards[standard]; ok {
		return m
	}
	return b.Default
}

// KMaterial returns the conductor material factor.
func (f Factors) KMaterial(material string) (float64, error) {
	return lookupFactor(f.Material, "material", material)
}

// KInsulation returns the insulation factor.
func (f Factors) KInsulation(insulation string) (float64, error) {
	return lookupFactor(f.Insulation, "insulation", insulation)
}

// KInstall returns the installation method factor.
func (f Factors) KInstall(install string) (float64, error) {
	return lookupFactor(f.Install, "install", install)
}

// KTemp returns the ambient temperature factor. Non-increasing in ambient and
// floored at Temperature.Floor.
func (f Factors) KTemp(ambientC float64) float64 {
	t := f.Temperature
	if ambientC <= t.ReferenceC {
		return 1.0
	}
	return math.Max(t.Floor, 1.0-t.SlopePerC*(ambientC-t.ReferenceC))
}

// KGroup returns the grouping factor for the number of parallel circuits.
// Counts below 1 are treated as 1; counts past the table use the last value.
func (f Factors) KGroup(parallel int) float64 {
	if parallel < 1 {
		parallel = 1
	}
	if parallel > len(f.Group) {
		return f.Group[len(f.Group)-1]
	}
	return f.Group[parallel-1]
}

func lookupFactor(m map[string]float64, kind, key string) (float64, error) {
	k, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("%w: %s factor for %q", ErrMissingEntry, kind, key)
	}
	return k, nil
}
