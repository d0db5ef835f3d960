// Package config loads analysis assumptions from YAML files and supplies
// the default assumption set.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// DefaultAssumptions returns the baseline assumption set for a Québec
// commercial site. Callers override the fields they know.
func DefaultAssumptions() types.Assumptions {
	return types.Assumptions{
		EnergyRatePerKWH:     0.0567,
		DemandRatePerKWMonth: 16.139,
		SurplusRatePerKWH:    0.0482,

		TariffEscalation: 0.03,
		OMEscalation:     0.04,
		DiscountRate:     0.06,
		TaxRate:          0.265,
		PanelDegradation: 0.005,

		BatteryCostPerKWH:   350,
		BatteryCostPerKW:    150,
		BifacialPremiumPerW: 0.10,
		OMCostPerKWYear:     15,

		SolarRebatePerKW:    250,
		RebateEligibleCapKW: 1000,
		FederalCreditRate:   0.30,

		BatteryReplacementYear: 10,
		BatteryPriceDecline:    0.04,
		BatteryInflation:       0.02,

		CO2FactorKgPerKWH: 0.034,

		Modeling: types.DefaultModelingParams(),
	}
}

// Load reads a YAML assumptions file and merges it over the defaults: any
// field left at its zero value in the file keeps the default.
func Load(path string) (types.Assumptions, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return types.Assumptions{}, fmt.Errorf("read assumptions file: %w", err)
	}
	var a types.Assumptions
	if err := yaml.Unmarshal(raw, &a); err != nil {
		return types.Assumptions{}, fmt.Errorf("parse assumptions file %s: %w", path, err)
	}
	merged := Merge(DefaultAssumptions(), a)
	if err := Validate(merged); err != nil {
		return types.Assumptions{}, fmt.Errorf("assumptions file %s: %w", path, err)
	}
	return merged, nil
}

// Merge overlays non-zero fields from override onto base. Bifacial keeps its
// tri-state: nil in the override leaves the base choice.
func Merge(base, override types.Assumptions) types.Assumptions {
	out := base
	overlay := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	overlay(&out.EnergyRatePerKWH, override.EnergyRatePerKWH)
	overlay(&out.DemandRatePerKWMonth, override.DemandRatePerKWMonth)
	overlay(&out.SurplusRatePerKWH, override.SurplusRatePerKWH)
	overlay(&out.TariffEscalation, override.TariffEscalation)
	overlay(&out.OMEscalation, override.OMEscalation)
	overlay(&out.DiscountRate, override.DiscountRate)
	overlay(&out.TaxRate, override.TaxRate)
	overlay(&out.PanelDegradation, override.PanelDegradation)
	overlay(&out.BatteryCostPerKWH, override.BatteryCostPerKWH)
	overlay(&out.BatteryCostPerKW, override.BatteryCostPerKW)
	overlay(&out.BifacialPremiumPerW, override.BifacialPremiumPerW)
	overlay(&out.OMCostPerKWYear, override.OMCostPerKWYear)
	overlay(&out.SolarRebatePerKW, override.SolarRebatePerKW)
	overlay(&out.RebateEligibleCapKW, override.RebateEligibleCapKW)
	overlay(&out.FederalCreditRate, override.FederalCreditRate)
	overlay(&out.BatteryPriceDecline, override.BatteryPriceDecline)
	overlay(&out.BatteryInflation, override.BatteryInflation)
	overlay(&out.CO2FactorKgPerKWH, override.CO2FactorKgPerKWH)
	overlay(&out.StoredYieldKWHPerKWP, override.StoredYieldKWHPerKWP)
	overlay(&out.OrientationFactor, override.OrientationFactor)

	if override.BatteryReplacementYear != 0 {
		out.BatteryReplacementYear = override.BatteryReplacementYear
	}
	if override.StoredYieldSource != "" {
		out.StoredYieldSource = override.StoredYieldSource
	}
	if override.UseManualYield {
		out.UseManualYield = true
	}
	if override.Bifacial != nil {
		out.Bifacial = override.Bifacial
	}
	if override.SnowProfile != "" {
		out.SnowProfile = override.SnowProfile
	}

	m := &out.Modeling
	om := override.Modeling
	overlay(&m.InverterLoadRatio, om.InverterLoadRatio)
	overlay(&m.TemperatureCoeffPerC, om.TemperatureCoeffPerC)
	overlay(&m.WiringLoss, om.WiringLoss)
	overlay(&m.LIDLoss, om.LIDLoss)
	overlay(&m.MismatchLoss, om.MismatchLoss)
	overlay(&m.StringMismatchLoss, om.StringMismatchLoss)
	overlay(&m.ModuleQualityGain, om.ModuleQualityGain)

	return out
}

// Validate rejects assumption sets that would make the cashflow meaningless.
func Validate(a types.Assumptions) error {
	if a.DiscountRate < 0 || a.DiscountRate >= 1 {
		return fmt.Errorf("discount rate %v out of range [0, 1)", a.DiscountRate)
	}
	if a.TaxRate < 0 || a.TaxRate >= 1 {
		return fmt.Errorf("tax rate %v out of range [0, 1)", a.TaxRate)
	}
	if a.PanelDegradation < 0 || a.PanelDegradation >= 0.1 {
		return fmt.Errorf("panel degradation %v out of range [0, 0.1)", a.PanelDegradation)
	}
	if a.Modeling.InverterLoadRatio <= 0 {
		return fmt.Errorf("inverter load ratio must be positive, got %v", a.Modeling.InverterLoadRatio)
	}
	return nil
}
