package yield

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

func boolp(b bool) *bool { return &b }

func TestResolveDefaultBaseline(t *testing.T) {
	s := Resolve(context.Background(), types.Assumptions{}, nil, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceDefault, s.Source)
	assert.InDelta(t, types.BaselineYieldKWHPerKWP, s.EffectiveYieldKWHPerKWP, 1e-9)
	assert.False(t, s.SkipTemperatureCorrection)
	assert.InDelta(t, 1.0, s.YieldFactor, 1e-9)
}

func TestResolveManualOverrideWinsOverRemote(t *testing.T) {
	a := types.Assumptions{
		UseManualYield:       true,
		StoredYieldKWHPerKWP: 980,
	}
	remote := &types.RemoteSensingData{YearlyEnergyKWH: 130000, SystemSizeKW: 100}
	s := Resolve(context.Background(), a, remote, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceManual, s.Source)
	assert.InDelta(t, 980, s.EffectiveYieldKWHPerKWP, 1e-9)
	assert.True(t, s.SkipTemperatureCorrection)
}

func TestResolveFreshRemoteEstimate(t *testing.T) {
	remote := &types.RemoteSensingData{YearlyEnergyKWH: 130550, SystemSizeKW: 100}
	s := Resolve(context.Background(), types.Assumptions{}, remote, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceRemote, s.Source)
	// Rounded to a whole kWh/kWp.
	assert.InDelta(t, 1306, s.BaseYieldKWHPerKWP, 1e-9)
	assert.True(t, s.SkipTemperatureCorrection)
	// Remote yields never get the orientation derate.
	assert.InDelta(t, 1.0, s.OrientationFactor, 1e-9)
}

func TestResolveSunshineProxy(t *testing.T) {
	remote := &types.RemoteSensingData{MaxSunshineHoursPerYear: 2000}
	s := Resolve(context.Background(), types.Assumptions{}, remote, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceRemote, s.Source)
	assert.InDelta(t, 1240, s.BaseYieldKWHPerKWP, 1e-9)
}

func TestResolveStoredRemotePreferredOverFresh(t *testing.T) {
	a := types.Assumptions{
		StoredYieldSource:    types.YieldSourceRemote,
		StoredYieldKWHPerKWP: 1200,
	}
	remote := &types.RemoteSensingData{YearlyEnergyKWH: 90000, SystemSizeKW: 100}
	s := Resolve(context.Background(), a, remote, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceRemote, s.Source)
	assert.InDelta(t, 1200, s.BaseYieldKWHPerKWP, 1e-9)
}

func TestResolveInferredManualFromStoredYield(t *testing.T) {
	a := types.Assumptions{StoredYieldKWHPerKWP: 1000}
	s := Resolve(context.Background(), a, nil, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceManual, s.Source)
	assert.InDelta(t, 1000, s.BaseYieldKWHPerKWP, 1e-9)
}

func TestResolveStoredBaselineStaysDefault(t *testing.T) {
	// Storing exactly the baseline is not evidence of a manual entry.
	a := types.Assumptions{StoredYieldKWHPerKWP: types.BaselineYieldKWHPerKWP}
	s := Resolve(context.Background(), a, nil, types.RoofColorUnknown)
	assert.Equal(t, types.YieldSourceDefault, s.Source)
}

func TestResolveBifacialBoost(t *testing.T) {
	for _, tc := range []struct {
		roof  types.RoofColor
		boost float64
	}{
		{types.RoofColorWhite, 1.10},
		{types.RoofColorLight, 1.07},
		{types.RoofColorGray, 1.04},
		{types.RoofColorDark, 1.0},
		{types.RoofColorUnknown, 1.0},
	} {
		s := Resolve(context.Background(), types.Assumptions{}, nil, tc.roof)
		assert.InDelta(t, tc.boost, s.BifacialBoostFactor, 1e-9, "roof %q", tc.roof)
	}
}

func TestResolveBifacialFlagOverridesRoof(t *testing.T) {
	// An explicit bifacial=true forces the full white-roof boost even on a
	// dark roof; explicit false disables it entirely.
	a := types.Assumptions{Bifacial: boolp(true)}
	s := Resolve(context.Background(), a, nil, types.RoofColorDark)
	assert.InDelta(t, 1.10, s.BifacialBoostFactor, 1e-9)

	a.Bifacial = boolp(false)
	s = Resolve(context.Background(), a, nil, types.RoofColorWhite)
	assert.InDelta(t, 1.0, s.BifacialBoostFactor, 1e-9)
}

func TestResolveOrientationClamp(t *testing.T) {
	a := types.Assumptions{OrientationFactor: 0.3}
	s := Resolve(context.Background(), a, nil, types.RoofColorUnknown)
	assert.InDelta(t, 0.6, s.OrientationFactor, 1e-9)

	a.OrientationFactor = 1.4
	s = Resolve(context.Background(), a, nil, types.RoofColorUnknown)
	assert.InDelta(t, 1.0, s.OrientationFactor, 1e-9)

	a.OrientationFactor = 0.85
	s = Resolve(context.Background(), a, nil, types.RoofColorUnknown)
	assert.InDelta(t, 0.85, s.OrientationFactor, 1e-9)
	assert.InDelta(t, types.BaselineYieldKWHPerKWP*0.85, s.EffectiveYieldKWHPerKWP, 1e-6)
}
