package types

// EnergyTier is one tiered energy-rate band. Tiers are consumed
// lowest-tier-first; UpToKWH is the monthly volume of the band, 0 meaning
// unlimited (the last band).
type EnergyTier struct {
	UpToKWH    float64 `json:"upToKWH"`
	RatePerKWH float64 `json:"ratePerKWH"`
}

// TariffSchedule encodes one named utility rate schedule.
type TariffSchedule struct {
	Code string `json:"code"`
	Name string `json:"name"`

	// Access fee: exactly one of the two is nonzero.
	AccessFeePerDay   float64 `json:"accessFeePerDay"`
	AccessFeePerMonth float64 `json:"accessFeePerMonth"`

	// Demand premium, optionally only above a free threshold.
	DemandRatePerKW   float64 `json:"demandRatePerKW"`
	DemandThresholdKW float64 `json:"demandThresholdKW"`

	EnergyTiers []EnergyTier `json:"energyTiers"`

	MinMonthlyBill float64 `json:"minMonthlyBill"`

	// Flex (time-of-use) variants bill peak events at a much higher rate in
	// exchange for a lower base energy rate.
	PeakEventRatePerKWH   float64 `json:"peakEventRatePerKWH"`
	PeakEventHoursPerYear float64 `json:"peakEventHoursPerYear"`
}

// TariffDetectionConfidence grades how sure the detector is.
type TariffDetectionConfidence string

const (
	TariffConfidenceHigh   TariffDetectionConfidence = "high"
	TariffConfidenceMedium TariffDetectionConfidence = "medium"
	TariffConfidenceLow    TariffDetectionConfidence = "low"
)

// TariffDetectionResult is the detector's best guess at the applicable rate.
type TariffDetectionResult struct {
	Code       string                    `json:"code"`
	Confidence TariffDetectionConfidence `json:"confidence"`
	// Rationale is a localized (French) explanation shown to the advisor.
	Rationale string `json:"rationale"`
}

// MonthlyCost is the billed cost of one month under a schedule.
type MonthlyCost struct {
	Month        int     `json:"month"`
	AccessFee    float64 `json:"accessFee"`
	DemandCharge float64 `json:"demandCharge"`
	EnergyCharge float64 `json:"energyCharge"`
	Total        float64 `json:"total"`
}

// AnnualCost is a full year billed under a schedule.
type AnnualCost struct {
	MonthlyBreakdown []MonthlyCost `json:"monthlyBreakdown"`
	AnnualTotal      float64       `json:"annualTotal"`
	AverageRate      float64       `json:"averageRate"` // $/kWh blended
}
