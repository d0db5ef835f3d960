package types

// Assumptions is the full set of billing, cost and escalation inputs for one
// analysis. Callers usually start from config.DefaultAssumptions and override
// the fields they know.
type Assumptions struct {
	// Billing rates used to value the simulation outcome.
	EnergyRatePerKWH     float64 `json:"energyRatePerKWH" yaml:"energy_rate_per_kwh"`
	DemandRatePerKWMonth float64 `json:"demandRatePerKWMonth" yaml:"demand_rate_per_kw_month"`
	// SurplusRatePerKWH is the compensation rate for exported energy. Export
	// revenue only starts in year 3 (first two years go to the measurement
	// period required by the surplus program).
	SurplusRatePerKWH float64 `json:"surplusRatePerKWH" yaml:"surplus_rate_per_kwh"`

	// Escalation and discounting.
	TariffEscalation float64 `json:"tariffEscalation" yaml:"tariff_escalation"`
	OMEscalation     float64 `json:"omEscalation" yaml:"om_escalation"`
	DiscountRate     float64 `json:"discountRate" yaml:"discount_rate"`
	TaxRate          float64 `json:"taxRate" yaml:"tax_rate"`
	PanelDegradation float64 `json:"panelDegradation" yaml:"panel_degradation"`

	// Costs.
	BatteryCostPerKWH   float64 `json:"batteryCostPerKWH" yaml:"battery_cost_per_kwh"`
	BatteryCostPerKW    float64 `json:"batteryCostPerKW" yaml:"battery_cost_per_kw"`
	BifacialPremiumPerW float64 `json:"bifacialPremiumPerW" yaml:"bifacial_premium_per_w"`
	OMCostPerKWYear     float64 `json:"omCostPerKWYear" yaml:"om_cost_per_kw_year"`

	// Incentives.
	SolarRebatePerKW    float64 `json:"solarRebatePerKW" yaml:"solar_rebate_per_kw"`
	RebateEligibleCapKW float64 `json:"rebateEligibleCapKW" yaml:"rebate_eligible_cap_kw"`
	FederalCreditRate   float64 `json:"federalCreditRate" yaml:"federal_credit_rate"`

	// Battery replacement schedule. The first replacement lands at
	// BatteryReplacementYear (default 10), then fixed years 20 and 30, each
	// scaled by a price-decline/inflation blend.
	BatteryReplacementYear int     `json:"batteryReplacementYear" yaml:"battery_replacement_year"`
	BatteryPriceDecline    float64 `json:"batteryPriceDecline" yaml:"battery_price_decline"`
	BatteryInflation       float64 `json:"batteryInflation" yaml:"battery_inflation"`

	CO2FactorKgPerKWH float64 `json:"co2FactorKgPerKWH" yaml:"co2_factor_kg_per_kwh"`

	// Yield resolution inputs.
	StoredYieldSource    YieldSource `json:"storedYieldSource" yaml:"stored_yield_source"`
	StoredYieldKWHPerKWP float64     `json:"storedYieldKWHPerKWP" yaml:"stored_yield_kwh_per_kwp"`
	UseManualYield       bool        `json:"useManualYield" yaml:"use_manual_yield"`
	// Bifacial is tri-state: nil means no explicit choice and the roof-color
	// recommendation applies.
	Bifacial          *bool   `json:"bifacial" yaml:"bifacial"`
	OrientationFactor float64 `json:"orientationFactor" yaml:"orientation_factor"`

	Modeling SystemModelingParams `json:"modeling" yaml:"modeling"`

	// SnowProfile selects one of the calibrated monthly snow-loss curves:
	// "", "flat", "tilted" or "ballasted".
	SnowProfile string `json:"snowProfile" yaml:"snow_profile"`
}

// IncentiveBreakdown details the incentive stack applied to gross capex, in
// the order it is computed.
type IncentiveBreakdown struct {
	UtilitySolarRebate   float64 `json:"utilitySolarRebate"`
	UtilityBatteryRebate float64 `json:"utilityBatteryRebate"`
	FederalCredit        float64 `json:"federalCredit"`
	TaxShield            float64 `json:"taxShield"`
}

// Total returns the sum of all incentives.
func (i IncentiveBreakdown) Total() float64 {
	return i.UtilitySolarRebate + i.UtilityBatteryRebate + i.FederalCredit + i.TaxShield
}

// ScenarioFinancials is the complete financial outcome of one sized scenario.
type ScenarioFinancials struct {
	Sizing SystemSizing `json:"sizing"`

	SolarCapex   float64            `json:"solarCapex"`
	BatteryCapex float64            `json:"batteryCapex"`
	GrossCapex   float64            `json:"grossCapex"`
	NetCapex     float64            `json:"netCapex"`
	Incentives   IncentiveBreakdown `json:"incentives"`

	// Cashflow has 31 entries: year 0 (investment) through year 30.
	Cashflow []float64 `json:"cashflow"`

	NPV10 float64 `json:"npv10"`
	NPV20 float64 `json:"npv20"`
	NPV25 float64 `json:"npv25"`
	NPV30 float64 `json:"npv30"`

	IRR10 float64 `json:"irr10"`
	IRR20 float64 `json:"irr20"`
	IRR25 float64 `json:"irr25"`
	IRR30 float64 `json:"irr30"`

	LCOE25 float64 `json:"lcoe25"`
	LCOE30 float64 `json:"lcoe30"`

	// PaybackYear is the first year the cumulative cashflow turns
	// non-negative, capped at the horizon length.
	PaybackYear int `json:"paybackYear"`

	CO2AvoidedTonnes    float64 `json:"co2AvoidedTonnes"`
	SelfSufficiency     float64 `json:"selfSufficiency"` // self-consumption / annual consumption
	Year1SavingsDollars float64 `json:"year1SavingsDollars"`

	Simulation SimulationResult `json:"simulation"`
}

// FrontierPointType tags a frontier point by which sizes are nonzero.
type FrontierPointType string

const (
	FrontierPointSolar   FrontierPointType = "solar"
	FrontierPointBattery FrontierPointType = "battery"
	FrontierPointHybrid  FrontierPointType = "hybrid"
)

// FrontierPoint is one evaluated sizing configuration on the cost/benefit
// frontier. Use NewFrontierPoint so Type can never drift from the sizes.
type FrontierPoint struct {
	Label      string             `json:"label"`
	SolarKW    float64            `json:"solarKW"`
	BatteryKWH float64            `json:"batteryKWH"`
	BatteryKW  float64            `json:"batteryKW"`
	Type       FrontierPointType  `json:"type"`
	IsOptimal  bool               `json:"isOptimal"`
	Financials ScenarioFinancials `json:"financials"`
}

// NewFrontierPoint builds a frontier point with its Type derived strictly
// from the nonzero sizes.
func NewFrontierPoint(label string, solarKW, batteryKWH, batteryKW float64, fin ScenarioFinancials) FrontierPoint {
	return FrontierPoint{
		Label:      label,
		SolarKW:    solarKW,
		BatteryKWH: batteryKWH,
		BatteryKW:  batteryKW,
		Type:       DeriveFrontierType(solarKW, batteryKWH),
		Financials: fin,
	}
}

// DeriveFrontierType maps nonzero sizes to the point type tag.
func DeriveFrontierType(solarKW, batteryKWH float64) FrontierPointType {
	switch {
	case solarKW > 0 && batteryKWH > 0:
		return FrontierPointHybrid
	case batteryKWH > 0:
		return FrontierPointBattery
	default:
		return FrontierPointSolar
	}
}

// Distribution summarizes one Monte Carlo output metric. Percentiles use the
// nearest-rank method over the sorted sample.
type Distribution struct {
	P10  float64 `json:"p10"`
	P50  float64 `json:"p50"`
	P90  float64 `json:"p90"`
	Mean float64 `json:"mean"`
}

// MonteCarloResult aggregates the outcome distributions of the resampled
// scenario evaluations. Iterations is the number of draws that completed.
type MonteCarloResult struct {
	Iterations int `json:"iterations"`

	NPV10          Distribution `json:"npv10"`
	NPV20          Distribution `json:"npv20"`
	NPV25          Distribution `json:"npv25"`
	IRR            Distribution `json:"irr"`
	Payback        Distribution `json:"payback"`
	NetCapex       Distribution `json:"netCapex"`
	TotalSavings25 Distribution `json:"totalSavings25"`

	NPVSamples     []float64 `json:"npvSamples"`
	IRRSamples     []float64 `json:"irrSamples"`
	PaybackSamples []float64 `json:"paybackSamples"`
}
