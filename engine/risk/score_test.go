package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercalc/powercalc/engine"
)

func ptr(v float64) *float64 { return &v }

func TestScore_ExampleScenario(t *testing.T) {
	// GIVEN p=0.02, 3 s peak vs 5 s limit, margin 0.8, breaker ok, PASS
	s := NewScorer(nil).Score(ScoreInput{
		ExceedProb:       0.02,
		MaxDurationS:     3,
		DurationLimitS:   5,
		ProtectionMargin: ptr(0.8),
		BreakerAdequate:  true,
		HardStatus:       engine.VerdictPass,
	})

	// THEN 0.8 + 24 + 4 = 28.8
	assert.InDelta(t, 0.8, s.EVT, 1e-12)
	assert.InDelta(t, 24.0, s.Time, 1e-12)
	require.NotNil(t, s.Protection)
	assert.InDelta(t, 4.0, *s.Protection, 1e-12)
	require.NotNil(t, s.Total)
	assert.InDelta(t, 28.8, *s.Total, 1e-12)
	assert.Equal(t, LevelLow, s.Level)
}

func TestScore_AdvisoryForcesNATotal(t *testing.T) {
	for _, hard := range []engine.VerdictStatus{engine.VerdictPass, engine.VerdictFail, engine.VerdictNeedMore} {
		s := NewScorer(nil).Score(ScoreInput{
			ExceedProb:       1,
			MaxDurationS:     100,
			ProtectionMargin: ptr(0),
			BreakerAdequate:  true,
			HardStatus:       hard,
			Advisory:         true,
		})
		assert.Nil(t, s.Total, "hard=%s", hard)
		assert.Equal(t, LevelAdvisory, s.Level)
		assert.Equal(t, 40.0, s.EVT, "terms are still reported")
	}
}

func TestScore_NonPassForcesNAProtection(t *testing.T) {
	for _, hard := range []engine.VerdictStatus{engine.VerdictFail, engine.VerdictNeedMore, ""} {
		for _, breakerOK := range []bool{true, false} {
			s := NewScorer(nil).Score(ScoreInput{
				ExceedProb:       0.5,
				ProtectionMargin: ptr(0.1),
				BreakerAdequate:  breakerOK,
				HardStatus:       hard,
			})
			assert.Nil(t, s.Protection)
			assert.Equal(t, NoteHardNotPass, s.ProtectionNote)
			require.NotNil(t, s.Total)
			assert.InDelta(t, 20.0, *s.Total, 1e-12)
		}
	}
}

func TestScore_PassWithInadequateBreaker_NAProtection(t *testing.T) {
	s := NewScorer(nil).Score(ScoreInput{
		ProtectionMargin: ptr(0),
		BreakerAdequate:  false,
		HardStatus:       engine.VerdictPass,
	})
	assert.Nil(t, s.Protection)
	assert.Equal(t, NoteBreakerInadequate, s.ProtectionNote)
}

func TestScore_MissingMargin_NAProtection(t *testing.T) {
	s := NewScorer(nil).Score(ScoreInput{BreakerAdequate: true, HardStatus: engine.VerdictPass})
	assert.Nil(t, s.Protection)
	assert.Equal(t, NoteMarginUnavailable, s.ProtectionNote)
	require.NotNil(t, s.Total)
	assert.Equal(t, 0.0, *s.Total)
	assert.Equal(t, LevelVeryLow, s.Level)
}

func TestScore_ClampsAndDefaultLimit(t *testing.T) {
	s := NewScorer(nil).Score(ScoreInput{
		ExceedProb:       3,
		MaxDurationS:     2.5,
		DurationLimitS:   0,
		ProtectionMargin: ptr(-1),
		BreakerAdequate:  true,
		HardStatus:       engine.VerdictPass,
	})
	assert.Equal(t, 40.0, s.EVT)
	assert.InDelta(t, 20.0, s.Time, 1e-12, "limit <= 0 uses 5 s")
	assert.Equal(t, 20.0, *s.Protection)
	assert.Equal(t, 80.0, *s.Total)
	assert.Equal(t, LevelVeryHigh, s.Level)
}
