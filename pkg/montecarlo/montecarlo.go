// Package montecarlo quantifies outcome uncertainty by resampling
// escalation and production assumptions around a base scenario.
package montecarlo

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// Sampling ranges, all independent uniforms.
const (
	tariffEscalationMin = 0.02
	tariffEscalationMax = 0.07
	omEscalationMin     = 0.03
	omEscalationMax     = 0.06
	productionVarMin    = -0.10
	productionVarMax    = 0.10

	defaultIterations = 1000
)

// Config controls a Monte Carlo run.
type Config struct {
	// Iterations defaults to 1,000 when zero.
	Iterations int `json:"iterations"`
	// Seed makes the run deterministic when nonzero.
	Seed int64 `json:"seed"`
}

// ScenarioFunc evaluates one scenario under perturbed assumptions. The
// perturbed yield strategy is passed explicitly alongside the assumptions.
type ScenarioFunc func(ctx context.Context, a types.Assumptions, ys types.YieldStrategy) (types.ScenarioFinancials, error)

// Run draws Config.Iterations independent samples of tariff escalation, O&M
// escalation and production variance, evaluates the scenario under each, and
// aggregates the outcome distributions. A failing iteration is logged and
// skipped; Run errors only when every iteration fails.
func Run(ctx context.Context, base types.Assumptions, ys types.YieldStrategy, fn ScenarioFunc, cfg Config) (types.MonteCarloResult, error) {
	iterations := cfg.Iterations
	if iterations <= 0 {
		iterations = defaultIterations
	}
	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(rand.Int63()))
	}

	var npv10, npv20, npv25, irr, payback, netCapex, savings []float64
	for i := 0; i < iterations; i++ {
		a := base
		a.TariffEscalation = uniform(rng, tariffEscalationMin, tariffEscalationMax)
		a.OMEscalation = uniform(rng, omEscalationMin, omEscalationMax)
		variance := uniform(rng, productionVarMin, productionVarMax)

		perturbed := ys
		perturbed.EffectiveYieldKWHPerKWP *= 1 + variance
		perturbed.YieldFactor *= 1 + variance

		fin, err := fn(ctx, a, perturbed)
		if err != nil {
			log.Ctx(ctx).WarnContext(ctx, "monte carlo iteration failed",
				slog.Int("iteration", i), slog.Any("error", err))
			continue
		}

		npv10 = append(npv10, fin.NPV10)
		npv20 = append(npv20, fin.NPV20)
		npv25 = append(npv25, fin.NPV25)
		irr = append(irr, fin.IRR25)
		payback = append(payback, float64(paybackFromCashflow(fin.Cashflow)))
		netCapex = append(netCapex, fin.NetCapex)
		savings = append(savings, cashflowSum(fin.Cashflow, 25))
	}

	if len(npv25) == 0 {
		return types.MonteCarloResult{}, errors.New("all monte carlo iterations failed")
	}

	res := types.MonteCarloResult{
		Iterations:     len(npv25),
		NPV10:          summarize(npv10),
		NPV20:          summarize(npv20),
		NPV25:          summarize(npv25),
		IRR:            summarize(irr),
		Payback:        summarize(payback),
		NetCapex:       summarize(netCapex),
		TotalSavings25: summarize(savings),
	}
	res.NPVSamples = sorted(npv25)
	res.IRRSamples = sorted(irr)
	res.PaybackSamples = sorted(payback)
	return res, nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// paybackFromCashflow re-derives the payback year from the raw series so the
// wrapper does not depend on how the scenario function filled its summary
// fields.
func paybackFromCashflow(cashflow []float64) int {
	cum := 0.0
	for y, cf := range cashflow {
		cum += cf
		if cum >= 0 {
			return y
		}
	}
	if len(cashflow) == 0 {
		return 0
	}
	return len(cashflow) - 1
}

// cashflowSum sums years 1..horizon of the series.
func cashflowSum(cashflow []float64, horizon int) float64 {
	var total float64
	for y := 1; y < len(cashflow) && y <= horizon; y++ {
		total += cashflow[y]
	}
	return total
}

func sorted(vals []float64) []float64 {
	out := make([]float64, len(vals))
	copy(out, vals)
	sort.Float64s(out)
	return out
}

// summarize computes nearest-rank percentiles and the mean.
func summarize(vals []float64) types.Distribution {
	if len(vals) == 0 {
		return types.Distribution{}
	}
	s := sorted(vals)
	var sum float64
	for _, v := range s {
		sum += v
	}
	return types.Distribution{
		P10:  nearestRank(s, 0.10),
		P50:  nearestRank(s, 0.50),
		P90:  nearestRank(s, 0.90),
		Mean: sum / float64(len(s)),
	}
}

func nearestRank(sorted []float64, q float64) float64 {
	idx := int(math.Ceil(q*float64(len(sorted)))) - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
