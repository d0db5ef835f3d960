package simulation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// flatYear builds an expanded calendar with the same consumption and demand
// every hour.
func flatYear(consumptionKWH, peakKW float64) []types.HourlyBucket {
	out := make([]types.HourlyBucket, 0, types.HoursPerYear)
	for m := 0; m < 12; m++ {
		for d := 0; d < types.MonthDays[m]; d++ {
			for h := 0; h < 24; h++ {
				out = append(out, types.HourlyBucket{
					Hour:           h,
					Month:          m + 1,
					ConsumptionKWH: consumptionKWH,
					PeakKW:         peakKW,
				})
			}
		}
	}
	return out
}

func defaultYield() types.YieldStrategy {
	return types.YieldStrategy{
		EffectiveYieldKWHPerKWP: types.BaselineYieldKWHPerKWP,
		Source:                  types.YieldSourceDefault,
		BifacialBoostFactor:     1.0,
		OrientationFactor:       1.0,
		YieldFactor:             1.0,
	}
}

func TestRunEmptyInput(t *testing.T) {
	res := Run(context.Background(), Inputs{
		PVSizeKW:   100,
		BatteryKWH: 50,
		Yield:      defaultYield(),
	})
	assert.Zero(t, res.ProductionKWH)
	assert.Zero(t, res.SelfConsumptionKWH)
	assert.Zero(t, res.ExportedKWH)
	assert.Empty(t, res.Hourly)
}

func TestRunAllZeroConsumption(t *testing.T) {
	res := Run(context.Background(), Inputs{
		Hours: flatYear(0, 0),
		Yield: defaultYield(),
	})
	assert.Zero(t, res.ProductionKWH)
	assert.Zero(t, res.SelfConsumptionKWH)
	for m := 0; m < 12; m++ {
		assert.Zero(t, res.MonthlyPeakBeforeKW[m])
	}
}

func TestProductionCalibration(t *testing.T) {
	// With the temperature correction skipped and no losses, a 1 kW system
	// should produce close to the 1,150 kWh/kWp baseline.
	ys := defaultYield()
	ys.SkipTemperatureCorrection = true
	res := Run(context.Background(), Inputs{
		Hours:    flatYear(100, 100),
		PVSizeKW: 1,
		Yield:    ys,
		Params: types.SystemModelingParams{
			InverterLoadRatio: 1.2,
		},
		SkipTrace: true,
	})
	assert.InDelta(t, types.BaselineYieldKWHPerKWP, res.ProductionKWH, 60)
}

func TestSelfConsumptionNeverExceedsProduction(t *testing.T) {
	res := Run(context.Background(), Inputs{
		Hours:       flatYear(10, 40),
		PVSizeKW:    50,
		BatteryKWH:  100,
		BatteryKW:   50,
		ThresholdKW: 20,
		Yield:       defaultYield(),
		SkipTrace:   true,
	})
	assert.LessOrEqual(t, res.SelfConsumptionKWH, res.ProductionKWH+1e-9)
	assert.GreaterOrEqual(t, res.GridChargedKWH, 0.0)
}

func TestClippingLoss(t *testing.T) {
	base := Inputs{
		Hours:     flatYear(50, 50),
		PVSizeKW:  100,
		Yield:     defaultYield(),
		SkipTrace: true,
	}

	// Baseline yield never pushes DC above pvSize/inverterLoadRatio.
	res := Run(context.Background(), base)
	assert.Zero(t, res.ClippingLossKWH)

	// Doubling the yield factor pushes midday DC above the AC capacity.
	boosted := base
	ys := defaultYield()
	ys.YieldFactor = 2.0
	ys.SkipTemperatureCorrection = true
	boosted.Yield = ys
	res = Run(context.Background(), boosted)
	assert.Greater(t, res.ClippingLossKWH, 0.0)
}

func TestBatterySOCStaysWithinBounds(t *testing.T) {
	res := Run(context.Background(), Inputs{
		Hours:       flatYear(30, 60),
		PVSizeKW:    80,
		BatteryKWH:  120,
		BatteryKW:   60,
		ThresholdKW: 40,
		Yield:       defaultYield(),
	})
	require.Len(t, res.Hourly, types.HoursPerYear)
	for _, h := range res.Hourly {
		assert.GreaterOrEqual(t, h.BatterySOCKWH, 0.0)
		assert.LessOrEqual(t, h.BatterySOCKWH, 120.0+1e-9)
	}
}

// spikeYear builds a calendar with a single daily demand spike at 17:00.
func spikeYear(baseKW, spikeKW float64) []types.HourlyBucket {
	out := flatYear(baseKW/2, baseKW)
	for i := range out {
		if out[i].Hour == 17 {
			out[i].PeakKW = spikeKW
			out[i].ConsumptionKWH = spikeKW / 2
		}
	}
	return out
}

func TestDemandShavingReducesPeaks(t *testing.T) {
	// Battery-only system against a daily 17:00 spike: the battery
	// grid-charges overnight and should shave the spike in most months (the
	// very first day starts empty, so January's monthly max may survive).
	res := Run(context.Background(), Inputs{
		Hours:       spikeYear(40, 100),
		BatteryKWH:  200,
		BatteryKW:   100,
		ThresholdKW: 60,
		Yield:       defaultYield(),
		SkipTrace:   true,
	})
	var shaved int
	for m := 0; m < 12; m++ {
		assert.InDelta(t, 100, res.MonthlyPeakBeforeKW[m], 1e-9)
		if res.MonthlyPeakAfterKW[m] < res.MonthlyPeakBeforeKW[m] {
			shaved++
		}
	}
	assert.GreaterOrEqual(t, shaved, 11, "expected nearly every month shaved")
}

func TestGridChargeTrackedSeparately(t *testing.T) {
	// No solar at all: any battery charge must be grid charge and the
	// capped self-consumption must stay at zero.
	res := Run(context.Background(), Inputs{
		Hours:       spikeYear(40, 100),
		BatteryKWH:  100,
		BatteryKW:   50,
		ThresholdKW: 60,
		Yield:       defaultYield(),
		SkipTrace:   true,
	})
	assert.Zero(t, res.ProductionKWH)
	assert.Zero(t, res.SelfConsumptionKWH)
	assert.Greater(t, res.GridChargedKWH, 0.0)
}

func TestSnowProfileReducesWinterProduction(t *testing.T) {
	base := Inputs{
		Hours:     flatYear(100, 100),
		PVSizeKW:  100,
		Yield:     defaultYield(),
		SkipTrace: true,
	}
	noSnow := Run(context.Background(), base)

	withSnow := base
	withSnow.SnowProfile = "flat"
	snowy := Run(context.Background(), withSnow)

	assert.Less(t, snowy.ProductionKWH, noSnow.ProductionKWH)
}

func TestPeakWeekLength(t *testing.T) {
	res := Run(context.Background(), Inputs{
		Hours:    flatYear(20, 40),
		PVSizeKW: 30,
		Yield:    defaultYield(),
	})
	assert.Len(t, res.PeakWeek, peakWeekHours)
}

func TestSeasonalFactorPeaksMidYear(t *testing.T) {
	assert.Greater(t, seasonalFactor(6), seasonalFactor(12))
	assert.Greater(t, seasonalFactor(7), seasonalFactor(1))
}

func TestGreedyShavingDecisions(t *testing.T) {
	strat := GreedyShaving{}

	// Priority peak discharges fully up to the power rating.
	a := strat.Decide(HourState{
		Hour: 17, NetPeakKW: 120, ThresholdKW: 80,
		SOCKWH: 100, CapacityKWH: 100, PowerKW: 50,
		IsPriorityPeak: true,
	})
	assert.InDelta(t, 40, a.DischargeKWH, 1e-9)

	// Not the priority peak with a higher peak coming: hold half back.
	a = strat.Decide(HourState{
		Hour: 15, NetPeakKW: 120, ThresholdKW: 80,
		SOCKWH: 60, CapacityKWH: 100, PowerKW: 50,
		HigherPeakAhead: true,
	})
	assert.InDelta(t, 30, a.DischargeKWH, 1e-9)

	// Solar surplus charges the battery.
	a = strat.Decide(HourState{
		Hour: 12, NetPeakKW: -20, SurplusKWH: 20,
		SOCKWH: 10, CapacityKWH: 100, PowerKW: 50,
	})
	assert.InDelta(t, 20, a.SolarChargeKWH, 1e-9)

	// Late evening with headroom grid-charges.
	a = strat.Decide(HourState{
		Hour: 23, NetPeakKW: 30, ThresholdKW: 80,
		SOCKWH: 40, CapacityKWH: 100, PowerKW: 50,
	})
	assert.InDelta(t, 50, a.GridChargeKWH, 1e-9)

	// No battery configured: no action ever.
	a = strat.Decide(HourState{Hour: 23, NetPeakKW: 200, ThresholdKW: 10})
	assert.Equal(t, Action{}, a)
}
