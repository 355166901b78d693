package risk

import (
	"fmt"
	"hash/fnv"
	"math/rand"
)

// SeedKey identifies a reproducible risk estimation. Two estimations with the
// same SeedKey and identical input MUST produce identical results, regardless
// of bootstrap worker count.
type SeedKey int64

// DefaultSeed is the seed used when none is configured.
const DefaultSeed SeedKey = 2025

const (
	// SubsystemDemo is the RNG subsystem for demo series generation.
	// Uses the master seed directly so a seed maps to one demo series.
	SubsystemDemo = "demo"

	// SubsystemBootstrap prefixes the per-draw bootstrap subsystems.
	SubsystemBootstrap = "bootstrap"
)

// SubsystemDraw returns the subsystem name for bootstrap draw i.
func SubsystemDraw(i int) string {
	return fmt.Sprintf("%s_%d", SubsystemBootstrap, i)
}

// PartitionedRNG hands out one independent stream per named subsystem.
// The demo stream is seeded with the key itself; every other stream with
// key XOR fnv1a64(name).
//
// Not safe for concurrent use. Bootstrap workers receive a SeedFor value
// and build their own source.
type PartitionedRNG struct {
	key        SeedKey
	subsystems map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SeedKey.
func NewPartitionedRNG(key SeedKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:        key,
		subsystems: make(map[string]*rand.Rand),
	}
}

// SeedFor returns the derived seed of a subsystem.
func (p *PartitionedRNG) SeedFor(name string) int64 {
	if name == SubsystemDemo {
		return int64(p.key)
	}
	return int64(p.key) ^ fnv1a64(name)
}

// ForSubsystem returns the stream for name, creating it on first use.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if rng, ok := p.subsystems[name]; ok {
		return rng
	}
	rng := rand.New(rand.NewSource(p.SeedFor(name)))
	p.subsystems[name] = rng
	return rng
}

// Key returns the SeedKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SeedKey {
	return p.key
}

func fnv1a64(s string) int64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return int64(h.Sum64())
}
