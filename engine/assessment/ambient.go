package assessment

import (
	"context"
	"fmt"
)

// DefaultAmbientWindow is the number of weather snapshots averaged.
const DefaultAmbientWindow = 24

// AmbientSource supplies a recent average ambient temperature for a site.
// A nil value with a nil error means no data.
type AmbientSource interface {
	RecentAverageTemp(ctx context.Context, site string, limit int) (*float64, error)
}

// AmbientOrigin records where the operational ambient came from.
type AmbientOrigin string

const (
	AmbientOverride AmbientOrigin = "OVERRIDE"
	AmbientHistory  AmbientOrigin = "HISTORY"
	AmbientNone     AmbientOrigin = "NONE"
)

// Ambient is a resolved operational ambient. ValueC is nil for AmbientNone.
type Ambient struct {
	ValueC *float64      `json:"value_c,omitempty" yaml:"value_c,omitempty"`
	Origin AmbientOrigin `json:"origin" yaml:"origin"`
}

// ResolveAmbient picks the manual override, else the source's recent average.
// It runs before Assess so the core never blocks on I/O. A source error is
// returned together with an AmbientNone result.
func ResolveAmbient(ctx context.Context, override *float64, source AmbientSource, site string) (Ambient, error) {
	if override != nil {
		v := *override
		return Ambient{ValueC: &v, Origin: AmbientOverride}, nil
	}
	if source == nil || site == "" {
		return Ambient{Origin: AmbientNone}, nil
	}
	v, err := source.RecentAverageTemp(ctx, site, DefaultAmbientWindow)
	if err != nil {
		return Ambient{Origin: AmbientNone}, fmt.Errorf("recent ambient for site %q: %w", site, err)
	}
	if v == nil {
		return Ambient{Origin: AmbientNone}, nil
	}
	return Ambient{ValueC: v, Origin: AmbientHistory}, nil
}
