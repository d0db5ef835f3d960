// Package financial turns one dispatch simulation into a 30-year cashflow
// with incentive stacking, NPV/IRR/LCOE and payback.
package financial

import (
	"context"
	"math"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/simulation"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

const (
	horizonYears = 30

	// Utility incentives (solar rebate then battery rebate) are jointly
	// capped at this share of gross capex.
	utilityIncentiveCap = 0.40

	// Share of the depreciable basis recoverable through the tax shield.
	depreciableBasisShare = 0.90

	// Export revenue starts in this cashflow year (surplus-program
	// measurement period covers the first two).
	exportStartYear = 3

	// Battery replacements recur at the configured year plus these two.
	secondReplacementYear = 20
	thirdReplacementYear  = 30
)

// solarCostTiers is the tiered $/W install cost by system size. Larger
// systems are cheaper per watt.
var solarCostTiers = []struct {
	minKW   float64
	perWatt float64
}{
	{3000, 1.45},
	{1000, 1.65},
	{500, 1.85},
	{100, 2.10},
	{0, 2.50},
}

// SolarCostPerWatt returns the install cost tier for a system size. Zero or
// negative sizes price at the highest tier.
func SolarCostPerWatt(sizeKW float64) float64 {
	for _, t := range solarCostTiers {
		if sizeKW >= t.minKW && sizeKW > 0 {
			return t.perWatt
		}
	}
	return solarCostTiers[len(solarCostTiers)-1].perWatt
}

// ScenarioInputs bundles one financial scenario evaluation.
type ScenarioInputs struct {
	Hours                []types.HourlyBucket
	Sizing               types.SystemSizing
	PeakKW               float64
	AnnualConsumptionKWH float64
	Assumptions          types.Assumptions
	Yield                types.YieldStrategy

	// SkipTrace is forwarded to the simulation. Sweeps and Monte Carlo set
	// it to avoid carrying 8,760-entry traces per point.
	SkipTrace bool
}

// RunScenario simulates the sized system and prices the outcome. A zero-size
// system returns a well-defined all-zero result.
func RunScenario(ctx context.Context, in ScenarioInputs) types.ScenarioFinancials {
	sim := simulation.Run(ctx, simulation.Inputs{
		Hours:       in.Hours,
		PVSizeKW:    in.Sizing.SolarKW,
		BatteryKWH:  in.Sizing.BatteryKWH,
		BatteryKW:   in.Sizing.BatteryKW,
		ThresholdKW: in.Sizing.ThresholdKW,
		Yield:       in.Yield,
		Params:      in.Assumptions.Modeling,
		SnowProfile: in.Assumptions.SnowProfile,
		SkipTrace:   in.SkipTrace,
	})

	a := in.Assumptions
	fin := types.ScenarioFinancials{
		Sizing:     in.Sizing,
		Simulation: sim,
		Cashflow:   make([]float64, horizonYears+1),
	}

	// Capex.
	fin.SolarCapex = in.Sizing.SolarKW * 1000 * SolarCostPerWatt(in.Sizing.SolarKW)
	if bifacialEnabled(a, in.Yield) {
		fin.SolarCapex += in.Sizing.SolarKW * 1000 * a.BifacialPremiumPerW
	}
	fin.BatteryCapex = in.Sizing.BatteryKWH*a.BatteryCostPerKWH + in.Sizing.BatteryKW*a.BatteryCostPerKW
	fin.GrossCapex = fin.SolarCapex + fin.BatteryCapex

	// Incentive stack, in fixed order: utility solar rebate, utility battery
	// rebate filling the remaining headroom under the 40% cap, federal credit
	// on the post-rebate basis, then the depreciation tax shield.
	eligibleKW := in.Sizing.SolarKW
	if a.RebateEligibleCapKW > 0 && eligibleKW > a.RebateEligibleCapKW {
		eligibleKW = a.RebateEligibleCapKW
	}
	capDollars := utilityIncentiveCap * fin.GrossCapex
	fin.Incentives.UtilitySolarRebate = math.Min(eligibleKW*a.SolarRebatePerKW, capDollars)
	fin.Incentives.UtilityBatteryRebate = math.Min(fin.BatteryCapex, math.Max(0, capDollars-fin.Incentives.UtilitySolarRebate))
	utilityTotal := fin.Incentives.UtilitySolarRebate + fin.Incentives.UtilityBatteryRebate
	fin.Incentives.FederalCredit = a.FederalCreditRate * (fin.GrossCapex - utilityTotal)
	fin.Incentives.TaxShield = a.TaxRate * depreciableBasisShare *
		math.Max(0, fin.GrossCapex-utilityTotal-fin.Incentives.FederalCredit)
	fin.NetCapex = fin.GrossCapex - fin.Incentives.Total()

	// Year-1 value of the simulated outcome.
	energySavings := sim.SelfConsumptionKWH * a.EnergyRatePerKWH
	var demandSavings float64
	for m := 0; m < 12; m++ {
		if d := sim.MonthlyPeakBeforeKW[m] - sim.MonthlyPeakAfterKW[m]; d > 0 {
			demandSavings += d * a.DemandRatePerKWMonth
		}
	}
	fin.Year1SavingsDollars = energySavings + demandSavings

	// Cashflow. Year 0 carries the solar rebate and half the battery rebate
	// (the second half pays out after commissioning, in year 1).
	fin.Cashflow[0] = -(fin.GrossCapex - fin.Incentives.UtilitySolarRebate - fin.Incentives.UtilityBatteryRebate/2)

	opexBase := a.OMCostPerKWYear * in.Sizing.SolarKW
	var cumOpex, cumProduction float64
	var cumOpex25, cumProduction25 float64
	for y := 1; y <= horizonYears; y++ {
		deg := math.Pow(1-a.PanelDegradation, float64(y-1))
		esc := math.Pow(1+a.TariffEscalation, float64(y-1))

		revenue := (energySavings + demandSavings) * deg * esc
		if y >= exportStartYear {
			revenue += sim.ExportedKWH * deg * a.SurplusRatePerKWH * esc
		}

		opex := opexBase * math.Pow(1+a.OMEscalation, float64(y-1))
		cf := revenue - opex

		if y == 1 {
			cf += fin.Incentives.TaxShield + fin.Incentives.UtilityBatteryRebate/2
		}
		if y == 2 {
			cf += fin.Incentives.FederalCredit
		}
		if isReplacementYear(y, a.BatteryReplacementYear) && fin.BatteryCapex > 0 {
			cf -= replacementCost(fin.BatteryCapex, y, a)
		}
		fin.Cashflow[y] = cf

		cumOpex += opex
		cumProduction += sim.ProductionKWH * deg
		if y <= 25 {
			cumOpex25, cumProduction25 = cumOpex, cumProduction
		}
	}

	fin.NPV10 = NPV(fin.Cashflow[:11], a.DiscountRate)
	fin.NPV20 = NPV(fin.Cashflow[:21], a.DiscountRate)
	fin.NPV25 = NPV(fin.Cashflow[:26], a.DiscountRate)
	fin.NPV30 = NPV(fin.Cashflow, a.DiscountRate)

	fin.IRR10 = IRR(fin.Cashflow[:11])
	fin.IRR20 = IRR(fin.Cashflow[:21])
	fin.IRR25 = IRR(fin.Cashflow[:26])
	fin.IRR30 = IRR(fin.Cashflow)

	if cumProduction25 > 0 {
		fin.LCOE25 = (fin.NetCapex + cumOpex25) / cumProduction25
	}
	if cumProduction > 0 {
		fin.LCOE30 = (fin.NetCapex + cumOpex) / cumProduction
	}

	fin.PaybackYear = paybackYear(fin.Cashflow)
	fin.CO2AvoidedTonnes = cumProduction * a.CO2FactorKgPerKWH / 1000
	if in.AnnualConsumptionKWH > 0 {
		fin.SelfSufficiency = sim.SelfConsumptionKWH / in.AnnualConsumptionKWH
	}
	return fin
}

func bifacialEnabled(a types.Assumptions, ys types.YieldStrategy) bool {
	if a.Bifacial != nil {
		return *a.Bifacial
	}
	return ys.BifacialBoostFactor > 1
}

func isReplacementYear(y, configured int) bool {
	first := configured
	if first <= 0 {
		first = 10
	}
	return y == first || y == secondReplacementYear || y == thirdReplacementYear
}

// replacementCost scales today's battery capex by the blend of the expected
// price decline and general inflation out to the replacement year.
func replacementCost(batteryCapex float64, year int, a types.Assumptions) float64 {
	return batteryCapex *
		math.Pow(1-a.BatteryPriceDecline, float64(year)) *
		math.Pow(1+a.BatteryInflation, float64(year))
}

// paybackYear returns the first year the cumulative cashflow turns
// non-negative, capped at the horizon.
func paybackYear(cashflow []float64) int {
	cum := 0.0
	for y, cf := range cashflow {
		cum += cf
		if cum >= 0 {
			return y
		}
	}
	return len(cashflow) - 1
}
