package montecarlo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// linearScenario is a cheap stand-in: NPV scales with the perturbed yield
// and tariff escalation so draws actually spread the distribution.
func linearScenario(_ context.Context, a types.Assumptions, ys types.YieldStrategy) (types.ScenarioFinancials, error) {
	npv := 100000*ys.YieldFactor + 1e6*a.TariffEscalation
	return types.ScenarioFinancials{
		NPV10:    npv * 0.5,
		NPV20:    npv * 0.9,
		NPV25:    npv,
		IRR25:    0.08 * ys.YieldFactor,
		NetCapex: 250000,
		Cashflow: []float64{-250000, 100000, 100000, 100000},
	}, nil
}

func baseYield() types.YieldStrategy {
	return types.YieldStrategy{
		EffectiveYieldKWHPerKWP: types.BaselineYieldKWHPerKWP,
		YieldFactor:             1.0,
	}
}

func TestRunDistributionOrdering(t *testing.T) {
	res, err := Run(context.Background(), types.Assumptions{}, baseYield(), linearScenario, Config{Iterations: 200, Seed: 42})
	require.NoError(t, err)
	assert.Equal(t, 200, res.Iterations)

	for name, d := range map[string]types.Distribution{
		"npv25":    res.NPV25,
		"npv20":    res.NPV20,
		"npv10":    res.NPV10,
		"irr":      res.IRR,
		"netCapex": res.NetCapex,
	} {
		assert.LessOrEqual(t, d.P10, d.P50, name)
		assert.LessOrEqual(t, d.P50, d.P90, name)
	}

	// Draws stay inside the sampling ranges: yield factor within +-10% and
	// tariff escalation within [2%, 7%].
	assert.GreaterOrEqual(t, res.NPV25.P10, 100000*0.9+1e6*0.02)
	assert.LessOrEqual(t, res.NPV25.P90, 100000*1.1+1e6*0.07)

	assert.InDelta(t, 250000, res.NetCapex.P50, 1e-9)
	require.Len(t, res.NPVSamples, 200)
	assert.True(t, sortedAscending(res.NPVSamples))
}

func TestRunSeededDeterminism(t *testing.T) {
	cfg := Config{Iterations: 50, Seed: 7}
	a, b := types.Assumptions{}, types.Assumptions{}
	r1, err := Run(context.Background(), a, baseYield(), linearScenario, cfg)
	require.NoError(t, err)
	r2, err := Run(context.Background(), b, baseYield(), linearScenario, cfg)
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}

func TestRunSkipsFailedIterations(t *testing.T) {
	calls := 0
	flaky := func(ctx context.Context, a types.Assumptions, ys types.YieldStrategy) (types.ScenarioFinancials, error) {
		calls++
		if calls%2 == 0 {
			return types.ScenarioFinancials{}, errors.New("boom")
		}
		return linearScenario(ctx, a, ys)
	}
	res, err := Run(context.Background(), types.Assumptions{}, baseYield(), flaky, Config{Iterations: 10, Seed: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, res.Iterations)
}

func TestRunAllIterationsFail(t *testing.T) {
	fail := func(context.Context, types.Assumptions, types.YieldStrategy) (types.ScenarioFinancials, error) {
		return types.ScenarioFinancials{}, errors.New("boom")
	}
	_, err := Run(context.Background(), types.Assumptions{}, baseYield(), fail, Config{Iterations: 5, Seed: 1})
	assert.EqualError(t, err, "all monte carlo iterations failed")
}

func TestRunDefaultIterations(t *testing.T) {
	res, err := Run(context.Background(), types.Assumptions{}, baseYield(), linearScenario, Config{Seed: 3})
	require.NoError(t, err)
	assert.Equal(t, 1000, res.Iterations)
}

func TestPaybackFromCashflow(t *testing.T) {
	assert.Equal(t, 3, paybackFromCashflow([]float64{-250000, 100000, 100000, 100000}))
	assert.Equal(t, 0, paybackFromCashflow(nil))
	assert.Equal(t, 2, paybackFromCashflow([]float64{-10, 1, 1}))
}

func TestNearestRankPercentiles(t *testing.T) {
	s := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	assert.InDelta(t, 1, nearestRank(s, 0.10), 1e-9)
	assert.InDelta(t, 5, nearestRank(s, 0.50), 1e-9)
	assert.InDelta(t, 9, nearestRank(s, 0.90), 1e-9)
}

func sortedAscending(vals []float64) bool {
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1] {
			return false
		}
	}
	return true
}
