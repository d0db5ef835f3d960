// Package tariff encodes utility rate schedules and computes billing cost
// from consumption and peak demand.
package tariff

import (
	"fmt"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// schedules holds the supported rate schedules, keyed by code. Rates follow
// the Hydro-Québec business rate structure: daily access fees on the small
// rates, demand billing from 50 kW, tiered energy, and "flex" variants that
// trade a lower base rate for expensive winter peak events.
var schedules = map[string]types.TariffSchedule{
	"G": {
		Code:              "G",
		Name:              "Petite puissance",
		AccessFeePerDay:   0.4064,
		DemandRatePerKW:   17.573,
		DemandThresholdKW: 50,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 15090, RatePerKWH: 0.1124},
			{UpToKWH: 0, RatePerKWH: 0.0825},
		},
		MinMonthlyBill: 12.41,
	},
	"G9": {
		Code:            "G9",
		Name:            "Petite puissance, usage intermittent",
		AccessFeePerDay: 0.4064,
		DemandRatePerKW: 5.094,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 0, RatePerKWH: 0.1354},
		},
		MinMonthlyBill: 12.41,
	},
	"M": {
		Code:              "M",
		Name:              "Moyenne puissance",
		AccessFeePerMonth: 0,
		DemandRatePerKW:   16.139,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 210000, RatePerKWH: 0.0567},
			{UpToKWH: 0, RatePerKWH: 0.0421},
		},
		MinMonthlyBill: 0,
	},
	"L": {
		Code:            "L",
		Name:            "Grande puissance",
		DemandRatePerKW: 13.243,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 0, RatePerKWH: 0.0368},
		},
	},
	"FlexG": {
		Code:              "FlexG",
		Name:              "Petite puissance, tarification flexible",
		AccessFeePerDay:   0.4064,
		DemandRatePerKW:   17.573,
		DemandThresholdKW: 50,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 15090, RatePerKWH: 0.0950},
			{UpToKWH: 0, RatePerKWH: 0.0700},
		},
		MinMonthlyBill:        12.41,
		PeakEventRatePerKWH:   0.5537,
		PeakEventHoursPerYear: 100,
	},
	"FlexM": {
		Code:            "FlexM",
		Name:            "Moyenne puissance, tarification flexible",
		DemandRatePerKW: 16.139,
		EnergyTiers: []types.EnergyTier{
			{UpToKWH: 210000, RatePerKWH: 0.0450},
			{UpToKWH: 0, RatePerKWH: 0.0390},
		},
		PeakEventRatePerKWH:   0.5071,
		PeakEventHoursPerYear: 100,
	},
}

// Get returns a schedule by code. Unknown codes are caller bugs.
func Get(code string) (types.TariffSchedule, error) {
	s, ok := schedules[code]
	if !ok {
		return types.TariffSchedule{}, fmt.Errorf("unknown tariff code %q", code)
	}
	return s, nil
}

// List returns all known schedules.
func List() []types.TariffSchedule {
	out := make([]types.TariffSchedule, 0, len(schedules))
	for _, code := range []string{"G", "G9", "M", "L", "FlexG", "FlexM"} {
		out = append(out, schedules[code])
	}
	return out
}

// CalculateMonthlyCost bills one month under a schedule: access fee
// (daily-prorated or flat monthly), demand premium above the free threshold,
// tiered energy consumed lowest-tier-first, then the monthly minimum floor.
// The result is non-decreasing in both consumption and peak demand.
func CalculateMonthlyCost(s types.TariffSchedule, month int, consumptionKWH, peakKW float64) types.MonthlyCost {
	c := types.MonthlyCost{Month: month}

	days := 30
	if month >= 1 && month <= 12 {
		days = types.MonthDays[month-1]
	}
	c.AccessFee = s.AccessFeePerMonth + s.AccessFeePerDay*float64(days)

	if billable := peakKW - s.DemandThresholdKW; billable > 0 {
		c.DemandCharge = billable * s.DemandRatePerKW
	}

	remaining := consumptionKWH
	for _, tier := range s.EnergyTiers {
		if remaining <= 0 {
			break
		}
		vol := remaining
		if tier.UpToKWH > 0 && vol > tier.UpToKWH {
			vol = tier.UpToKWH
		}
		c.EnergyCharge += vol * tier.RatePerKWH
		remaining -= vol
	}

	c.Total = c.AccessFee + c.DemandCharge + c.EnergyCharge
	if c.Total < s.MinMonthlyBill {
		c.Total = s.MinMonthlyBill
	}
	return c
}

// CalculateAnnualCost bills a full year under the named schedule, spreading
// annual consumption over the months proportionally to their day counts.
func CalculateAnnualCost(code string, annualConsumptionKWH, peakDemandKW float64) (types.AnnualCost, error) {
	s, err := Get(code)
	if err != nil {
		return types.AnnualCost{}, err
	}

	var out types.AnnualCost
	out.MonthlyBreakdown = make([]types.MonthlyCost, 0, 12)
	for m := 1; m <= 12; m++ {
		monthKWH := annualConsumptionKWH * float64(types.MonthDays[m-1]) / 365.0
		mc := CalculateMonthlyCost(s, m, monthKWH, peakDemandKW)
		out.MonthlyBreakdown = append(out.MonthlyBreakdown, mc)
		out.AnnualTotal += mc.Total
	}
	if annualConsumptionKWH > 0 {
		out.AverageRate = out.AnnualTotal / annualConsumptionKWH
	}
	return out, nil
}
