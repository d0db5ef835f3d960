// Package sensitivity sweeps system-size combinations to build a
// cost/benefit frontier and pick size-optimal scenarios.
package sensitivity

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/financial"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// Size multipliers applied to the configured point for the 1-D sweeps and
// the hybrid grid.
var (
	solarSteps   = []float64{0.5, 0.75, 1.0, 1.25, 1.5}
	batterySteps = []float64{0.5, 1.0, 1.5, 2.0}
	hybridSolar  = []float64{0.75, 1.0, 1.25}
	hybridBatt   = []float64{0.5, 1.0, 1.5}
)

// batteryEnergyCapPeakMultiple bounds swept battery energy at this multiple
// of the site's peak demand.
const batteryEnergyCapPeakMultiple = 4.0

// OptimalScenarios are the three named picks off the frontier.
type OptimalScenarios struct {
	// BestNPV is the global NPV maximum, ties broken by first occurrence.
	BestNPV *types.FrontierPoint `json:"bestNPV"`
	// BestIRR is the IRR maximum among NPV-positive points only.
	BestIRR *types.FrontierPoint `json:"bestIRR"`
	// MaxSelfSufficiency is the self-sufficiency maximum regardless of
	// profitability.
	MaxSelfSufficiency *types.FrontierPoint `json:"maxSelfSufficiency"`
}

// Result is the full sweep outcome.
type Result struct {
	Frontier     []types.FrontierPoint `json:"frontier"`
	SolarSweep   []types.FrontierPoint `json:"solarSweep"`
	BatterySweep []types.FrontierPoint `json:"batterySweep"`
	Optimal      OptimalScenarios      `json:"optimalScenarios"`
}

// Inputs configures one sweep around a configured sizing point.
type Inputs struct {
	Hours                []types.HourlyBucket
	Configured           types.SystemSizing
	PeakKW               float64
	AnnualConsumptionKWH float64
	Assumptions          types.Assumptions
	Yield                types.YieldStrategy
}

// Run evaluates the scenario grid. Individual evaluations are independent,
// so they execute on a bounded worker pool; results land at fixed indexes to
// keep the output deterministic.
func Run(ctx context.Context, in Inputs) (Result, error) {
	candidates := buildCandidates(in)
	points := make([]types.FrontierPoint, len(candidates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, c := range candidates {
		g.Go(func() error {
			fin := financial.RunScenario(gctx, financial.ScenarioInputs{
				Hours:                in.Hours,
				Sizing:               c.sizing,
				PeakKW:               in.PeakKW,
				AnnualConsumptionKWH: in.AnnualConsumptionKWH,
				Assumptions:          in.Assumptions,
				Yield:                in.Yield,
				SkipTrace:            true,
			})
			points[i] = types.NewFrontierPoint(c.label, c.sizing.SolarKW, c.sizing.BatteryKWH, c.sizing.BatteryKW, fin)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, fmt.Errorf("sweep evaluation: %w", err)
	}

	var res Result
	for _, p := range points {
		switch {
		case strings.HasPrefix(p.Label, "pv-only"):
			res.SolarSweep = append(res.SolarSweep, p)
		case strings.HasPrefix(p.Label, "batt-only"):
			res.BatterySweep = append(res.BatterySweep, p)
		}
		res.Frontier = append(res.Frontier, p)
	}

	res.Optimal = pickOptimal(res.Frontier)
	if res.Optimal.BestNPV != nil {
		res.Optimal.BestNPV.IsOptimal = true
	}

	log.Ctx(ctx).DebugContext(ctx, "sensitivity sweep complete",
		slog.Int("points", len(res.Frontier)),
	)
	return res, nil
}

type candidate struct {
	label  string
	sizing types.SystemSizing
}

func buildCandidates(in Inputs) []candidate {
	baseSolar := in.Configured.SolarKW
	if baseSolar == 0 {
		baseSolar = in.PeakKW
	}
	baseBattKWH := in.Configured.BatteryKWH
	if baseBattKWH == 0 {
		baseBattKWH = in.PeakKW * 2
	}
	// Preserve the configured energy/power ratio when scaling battery sizes.
	powerRatio := 0.5
	if in.Configured.BatteryKWH > 0 && in.Configured.BatteryKW > 0 {
		powerRatio = in.Configured.BatteryKW / in.Configured.BatteryKWH
	}
	battCapKWH := in.PeakKW * batteryEnergyCapPeakMultiple

	clampSolar := func(kw float64) float64 {
		if in.Configured.RoofCapacityKW > 0 && kw > in.Configured.RoofCapacityKW {
			return in.Configured.RoofCapacityKW
		}
		return kw
	}
	clampBatt := func(kwh float64) float64 {
		if battCapKWH > 0 && kwh > battCapKWH {
			return battCapKWH
		}
		return kwh
	}

	var out []candidate
	seen := map[string]bool{}
	add := func(label string, solarKW, battKWH float64) {
		s := in.Configured
		s.SolarKW = solarKW
		s.BatteryKWH = battKWH
		s.BatteryKW = battKWH * powerRatio
		key := fmt.Sprintf("%.1f|%.1f", solarKW, battKWH)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, candidate{label: label, sizing: s})
	}

	for _, m := range solarSteps {
		kw := clampSolar(baseSolar * m)
		add(fmt.Sprintf("pv-only-%.0fkW", kw), kw, 0)
	}
	for _, m := range batterySteps {
		kwh := clampBatt(baseBattKWH * m)
		add(fmt.Sprintf("batt-only-%.0fkWh", kwh), 0, kwh)
	}
	for _, sm := range hybridSolar {
		for _, bm := range hybridBatt {
			kw := clampSolar(baseSolar * sm)
			kwh := clampBatt(baseBattKWH * bm)
			add(fmt.Sprintf("hybrid-%.0fkW-%.0fkWh", kw, kwh), kw, kwh)
		}
	}
	return out
}

func pickOptimal(frontier []types.FrontierPoint) OptimalScenarios {
	var opt OptimalScenarios
	for i := range frontier {
		p := &frontier[i]
		if opt.BestNPV == nil || p.Financials.NPV25 > opt.BestNPV.Financials.NPV25 {
			opt.BestNPV = p
		}
		if p.Financials.NPV25 > 0 &&
			(opt.BestIRR == nil || p.Financials.IRR25 > opt.BestIRR.Financials.IRR25) {
			opt.BestIRR = p
		}
		if opt.MaxSelfSufficiency == nil ||
			p.Financials.SelfSufficiency > opt.MaxSelfSufficiency.Financials.SelfSufficiency {
			opt.MaxSelfSufficiency = p
		}
	}
	return opt
}
