package assessment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/powercalc/powercalc/engine"
	"github.com/powercalc/powercalc/engine/internal/testutil"
)

// memoryHistory is an in-memory AssetRegistry and HistoryStore.
type memoryHistory struct {
	sites   []string
	records []HistoryRecord
}

func (m *memoryHistory) EnsureAsset(_ context.Context, site string, _ engine.AssetSpec) (int64, error) {
	for i, s := range m.sites {
		if s == site {
			return int64(i + 1), nil
		}
	}
	m.sites = append(m.sites, site)
	return int64(len(m.sites)), nil
}

func (m *memoryHistory) Append(_ context.Context, rec HistoryRecord) (int64, error) {
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, rec)
	return rec.ID, nil
}

func (m *memoryHistory) LastTwo(_ context.Context, assetID int64) ([]HistoryRecord, error) {
	var out []HistoryRecord
	for i := len(m.records) - 1; i >= 0 && len(out) < 2; i-- {
		if m.records[i].AssetID == assetID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func TestService_Run_RecordsAndCompares(t *testing.T) {
	a, _ := newTestAssessor(t)
	mem := &memoryHistory{}
	svc := &Service{
		Assessor: a,
		Ambient:  &fakeAmbient{value: testutil.Float64Ptr(36)},
		Assets:   mem,
		History:  mem,
	}
	ctx := context.Background()

	// GIVEN a first run with a measured series
	req := baseRequest()
	req.Series = measuredSeries()
	first, err := svc.Run(ctx, req)
	require.NoError(t, err)

	// THEN the ambient came from history and no comparison is possible yet
	assert.Equal(t, AmbientHistory, first.Ambient.Origin)
	require.NotNil(t, first.Report.Cable.Operational)
	assert.Equal(t, 36.0, *first.Report.Cable.Operational.AmbientC)
	require.NotNil(t, first.Comparison)
	assert.False(t, first.Comparison.Available)

	// WHEN the same asset is assessed again with an undersized breaker
	req.Breaker.IcuKA = testutil.Float64Ptr(25)
	second, err := svc.Run(ctx, req)
	require.NoError(t, err)

	// THEN both land on one asset and the hard change is reported
	assert.Equal(t, first.AssetID, second.AssetID)
	assert.Len(t, mem.records, 2)
	require.NotNil(t, second.Comparison)
	assert.True(t, second.Comparison.Available)
	assert.True(t, second.Comparison.HardChanged)
	assert.Equal(t, engine.VerdictFail, second.Comparison.CurrentHard)
	assert.Equal(t, engine.VerdictPass, second.Comparison.PreviousHard)
}

func TestService_Run_WithoutStores(t *testing.T) {
	a, _ := newTestAssessor(t)
	svc := &Service{Assessor: a}

	out, err := svc.Run(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.Zero(t, out.AssetID)
	assert.Nil(t, out.Comparison)
	assert.Equal(t, AmbientNone, out.Ambient.Origin)
}

func TestService_Run_DefaultSite(t *testing.T) {
	a, _ := newTestAssessor(t)
	mem := &memoryHistory{}
	svc := &Service{Assessor: a, Assets: mem, History: mem}

	req := baseRequest()
	req.Site = ""
	out, err := svc.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, DefaultSite, out.Report.Site)
	assert.Equal(t, []string{DefaultSite}, mem.sites)
}
