package sensitivity

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

func sweepYield() types.YieldStrategy {
	return types.YieldStrategy{
		EffectiveYieldKWHPerKWP: types.BaselineYieldKWHPerKWP,
		Source:                  types.YieldSourceDefault,
		BifacialBoostFactor:     1.0,
		OrientationFactor:       1.0,
		YieldFactor:             1.0,
	}
}

// weekOfLoad keeps sweep tests fast: seven days of steady demand is enough
// for the scenarios to diverge.
func weekOfLoad(consumptionKWH, peakKW float64) []types.HourlyBucket {
	out := make([]types.HourlyBucket, 0, 7*24)
	for d := 0; d < 7; d++ {
		for h := 0; h < 24; h++ {
			out = append(out, types.HourlyBucket{
				Hour: h, Month: 6,
				ConsumptionKWH: consumptionKWH,
				PeakKW:         peakKW,
			})
		}
	}
	return out
}

func TestBuildCandidates(t *testing.T) {
	in := Inputs{
		Configured: types.SystemSizing{
			SolarKW:        100,
			BatteryKWH:     200,
			BatteryKW:      100,
			RoofCapacityKW: 120,
		},
		PeakKW: 100,
	}
	cands := buildCandidates(in)

	var pv, batt, hybrid int
	for _, c := range cands {
		switch {
		case strings.HasPrefix(c.label, "pv-only"):
			pv++
			assert.Zero(t, c.sizing.BatteryKWH)
			assert.LessOrEqual(t, c.sizing.SolarKW, 120.0, "roof clamp")
		case strings.HasPrefix(c.label, "batt-only"):
			batt++
			assert.Zero(t, c.sizing.SolarKW)
			assert.LessOrEqual(t, c.sizing.BatteryKWH, 400.0, "4x peak cap")
			// Configured 100 kW / 200 kWh ratio carries into every size.
			assert.InDelta(t, c.sizing.BatteryKWH/2, c.sizing.BatteryKW, 1e-9)
		case strings.HasPrefix(c.label, "hybrid"):
			hybrid++
			assert.Greater(t, c.sizing.SolarKW, 0.0)
			assert.Greater(t, c.sizing.BatteryKWH, 0.0)
		default:
			t.Fatalf("unexpected label %q", c.label)
		}
	}
	// 1.25x and 1.5x solar both clamp to the 120 kW roof and dedupe.
	assert.Equal(t, 4, pv)
	assert.Equal(t, 4, batt)
	assert.Equal(t, 9, hybrid)
}

func TestBuildCandidatesDefaultsFromPeak(t *testing.T) {
	// No configured sizes: the sweep anchors on peak demand.
	cands := buildCandidates(Inputs{PeakKW: 80})
	require.NotEmpty(t, cands)
	for _, c := range cands {
		if strings.HasPrefix(c.label, "pv-only") {
			assert.LessOrEqual(t, c.sizing.SolarKW, 80*1.5)
			assert.GreaterOrEqual(t, c.sizing.SolarKW, 80*0.5)
		}
	}
}

func TestRunFrontier(t *testing.T) {
	res, err := Run(context.Background(), Inputs{
		Hours: weekOfLoad(50, 80),
		Configured: types.SystemSizing{
			SolarKW:     100,
			BatteryKWH:  100,
			BatteryKW:   50,
			ThresholdKW: 50,
		},
		PeakKW:               80,
		AnnualConsumptionKWH: 50 * 7 * 24,
		Assumptions: types.Assumptions{
			EnergyRatePerKWH:     0.0567,
			DemandRatePerKWMonth: 16.139,
			DiscountRate:         0.06,
			BatteryCostPerKWH:    350,
			BatteryCostPerKW:     150,
			OMCostPerKWYear:      15,
		},
		Yield: sweepYield(),
	})
	require.NoError(t, err)

	assert.Len(t, res.SolarSweep, len(res.Frontier)-len(res.BatterySweep)-countHybrid(res.Frontier))
	require.NotEmpty(t, res.Frontier)

	// Type tags must agree with the sizes.
	for _, p := range res.Frontier {
		assert.Equal(t, types.DeriveFrontierType(p.SolarKW, p.BatteryKWH), p.Type, p.Label)
	}

	// The optimal pick is the NPV25 maximum and carries the marker inside
	// the frontier slice too.
	require.NotNil(t, res.Optimal.BestNPV)
	var optimals int
	for _, p := range res.Frontier {
		assert.LessOrEqual(t, p.Financials.NPV25, res.Optimal.BestNPV.Financials.NPV25)
		if p.IsOptimal {
			optimals++
			assert.Equal(t, res.Optimal.BestNPV.Label, p.Label)
		}
	}
	assert.Equal(t, 1, optimals)

	require.NotNil(t, res.Optimal.MaxSelfSufficiency)
	if res.Optimal.BestIRR != nil {
		assert.Greater(t, res.Optimal.BestIRR.Financials.NPV25, 0.0)
	}
}

func countHybrid(points []types.FrontierPoint) int {
	n := 0
	for _, p := range points {
		if p.Type == types.FrontierPointHybrid {
			n++
		}
	}
	return n
}
