// Package simulation runs the hour-by-hour dispatch of solar production,
// self-consumption, export and battery charge/discharge against a
// demand-shaving threshold.
package simulation

import (
	"context"
	"log/slog"
	"math"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// lookaheadHours is how far forward the dispatch loop scans for a higher
// net peak before committing a partial discharge.
const lookaheadHours = 6

// peakWeekHours is the length of the contiguous excerpt kept for charting.
const peakWeekHours = 168

// Inputs bundles one dispatch simulation run. Hours must be the expanded
// calendar sequence (see readings.ExpandCalendar); an empty slice yields an
// all-zero result.
type Inputs struct {
	Hours []types.HourlyBucket

	PVSizeKW    float64
	BatteryKWH  float64
	BatteryKW   float64
	ThresholdKW float64

	Yield  types.YieldStrategy
	Params types.SystemModelingParams

	// SnowProfile optionally names one of SnowProfiles ("flat", "tilted",
	// "ballasted"). Empty means no snow losses.
	SnowProfile string

	// Strategy defaults to GreedyShaving.
	Strategy Strategy

	// SkipTrace drops the hour-level trace and peak week to keep sweep and
	// Monte Carlo runs cheap.
	SkipTrace bool
}

// Run executes the simulation. Hours are processed strictly sequentially:
// battery state of charge and the forward lookahead create a temporal
// dependency, but independent runs are safe to execute in parallel.
func Run(ctx context.Context, in Inputs) types.SimulationResult {
	var res types.SimulationResult
	n := len(in.Hours)
	if n == 0 {
		return res
	}

	if in.Params.InverterLoadRatio == 0 {
		in.Params = types.DefaultModelingParams()
	}
	strat := in.Strategy
	if strat == nil {
		strat = GreedyShaving{}
	}

	var snow [12]float64
	if in.SnowProfile != "" {
		if p, ok := SnowProfiles[in.SnowProfile]; ok {
			snow = p
		} else {
			log.Ctx(ctx).WarnContext(ctx, "unknown snow profile, ignoring", slog.String("profile", in.SnowProfile))
		}
	}

	fixedLossMult := (1 - in.Params.WiringLoss) *
		(1 - in.Params.LIDLoss) *
		(1 - in.Params.MismatchLoss) *
		(1 - in.Params.StringMismatchLoss) *
		(1 + in.Params.ModuleQualityGain)
	acCapacityKW := in.PVSizeKW / in.Params.InverterLoadRatio

	// Precompute production, demand and net peak so the daily priority peak
	// and the lookahead can be derived before walking the battery state.
	production := make([]float64, n)
	demand := make([]float64, n)
	netPeak := make([]float64, n)
	for i, b := range in.Hours {
		dc := in.PVSizeKW * dayShape(b.Hour) * seasonalFactor(b.Month) * baseCapacityFactor * in.Yield.YieldFactor
		if dc > 0 {
			if !in.Yield.SkipTemperatureCorrection {
				dc *= cellTempDerate(b.Month, b.Hour, in.Params.TemperatureCoeffPerC)
			}
			dc *= fixedLossMult
			dc *= 1 - snow[b.Month-1]
			if dc > acCapacityKW {
				res.ClippingLossKWH += dc - acCapacityKW
				dc = acCapacityKW
			}
		}
		production[i] = math.Max(0, dc)
		d := b.PeakKW
		if d == 0 {
			d = b.ConsumptionKWH
		}
		demand[i] = d
		netPeak[i] = d - production[i]
	}

	priority := priorityPeaks(netPeak)

	if !in.SkipTrace {
		res.Hourly = make([]types.SimHour, 0, n)
	}

	soc := 0.0
	for i, b := range in.Hours {
		higherAhead := false
		for j := i + 1; j <= i+lookaheadHours && j < n; j++ {
			if netPeak[j] > netPeak[i] {
				higherAhead = true
				break
			}
		}

		action := strat.Decide(HourState{
			Index:           i,
			Hour:            b.Hour,
			NetPeakKW:       netPeak[i],
			SurplusKWH:      math.Max(0, production[i]-b.ConsumptionKWH),
			ThresholdKW:     in.ThresholdKW,
			SOCKWH:          soc,
			CapacityKWH:     in.BatteryKWH,
			PowerKW:         in.BatteryKW,
			IsPriorityPeak:  priority[i],
			HigherPeakAhead: higherAhead,
		})

		discharge := math.Min(action.DischargeKWH, soc)
		soc -= discharge
		charge := math.Min(action.SolarChargeKWH+action.GridChargeKWH, in.BatteryKWH-soc)
		soc += charge
		gridCharge := math.Min(action.GridChargeKWH, charge)
		solarCharge := charge - gridCharge
		res.GridChargedKWH += gridCharge

		selfCons := math.Min(b.ConsumptionKWH, production[i]+discharge)
		export := math.Max(0, production[i]-selfCons-solarCharge)

		res.SelfConsumptionKWH += selfCons
		res.ProductionKWH += production[i]
		res.ExportedKWH += export

		peakAfter := math.Max(0, netPeak[i]-discharge+gridCharge)
		m := b.Month - 1
		if demand[i] > res.MonthlyPeakBeforeKW[m] {
			res.MonthlyPeakBeforeKW[m] = demand[i]
		}
		if peakAfter > res.MonthlyPeakAfterKW[m] {
			res.MonthlyPeakAfterKW[m] = peakAfter
		}

		if !in.SkipTrace {
			res.Hourly = append(res.Hourly, types.SimHour{
				Hour:           b.Hour,
				Month:          b.Month,
				Day:            i / 24,
				ConsumptionKWH: b.ConsumptionKWH,
				ProductionKWH:  production[i],
				BatterySOCKWH:  soc,
				PeakBeforeKW:   demand[i],
				PeakAfterKW:    peakAfter,
			})
		}
	}

	// Grid-charged-and-later-discharged energy must not inflate solar credit.
	if res.SelfConsumptionKWH > res.ProductionKWH {
		res.SelfConsumptionKWH = res.ProductionKWH
	}

	if !in.SkipTrace {
		res.PeakWeek = peakWeek(res.Hourly, demand)
	}
	return res
}

// priorityPeaks flags, per calendar day, the single hour with the highest
// net peak.
func priorityPeaks(netPeak []float64) []bool {
	out := make([]bool, len(netPeak))
	for start := 0; start < len(netPeak); start += 24 {
		end := start + 24
		if end > len(netPeak) {
			end = len(netPeak)
		}
		best := start
		for i := start + 1; i < end; i++ {
			if netPeak[i] > netPeak[best] {
				best = i
			}
		}
		out[best] = true
	}
	return out
}

// peakWeek extracts the contiguous week around the year's highest demand
// hour for charting.
func peakWeek(trace []types.SimHour, demand []float64) []types.SimHour {
	if len(trace) == 0 {
		return nil
	}
	peakIdx := 0
	for i, d := range demand {
		if d > demand[peakIdx] {
			peakIdx = i
		}
	}
	start := peakIdx - peakWeekHours/2
	if start < 0 {
		start = 0
	}
	end := start + peakWeekHours
	if end > len(trace) {
		end = len(trace)
		start = end - peakWeekHours
		if start < 0 {
			start = 0
		}
	}
	week := make([]types.SimHour, end-start)
	copy(week, trace[start:end])
	return week
}
