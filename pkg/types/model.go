package types

import "time"

const (
	// HoursPerYear is the number of hours in the reference non-leap year used
	// by the simulation calendar.
	HoursPerYear = 8760

	// BaselineYieldKWHPerKWP is the reference specific yield the rest of the
	// engine is calibrated against. YieldFactor is expressed relative to it.
	BaselineYieldKWHPerKWP = 1150.0
)

// MonthDays holds the day count of each month in the reference non-leap year.
var MonthDays = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// RawReading is one metered data point as delivered by an upstream ingestion
// collaborator. Granularity is irregular (15-minute, hourly or monthly) and
// either field may be missing.
type RawReading struct {
	Timestamp time.Time `json:"timestamp"`
	EnergyKWH *float64  `json:"energyKWH"`
	DemandKW  *float64  `json:"demandKW"`
}

// HourlyBucket is one averaged (hour-of-day, month) consumption cell. The 288
// canonical buckets are expanded to an 8,760-hour calendar sequence before
// simulation.
type HourlyBucket struct {
	Hour           int     `json:"hour"`  // 0-23
	Month          int     `json:"month"` // 1-12
	ConsumptionKWH float64 `json:"consumptionKWH"`
	PeakKW         float64 `json:"peakKW"`
}

// SystemSizing describes one candidate solar + storage configuration.
type SystemSizing struct {
	SolarKW        float64 `json:"solarKW"`
	BatteryKWH     float64 `json:"batteryKWH"`
	BatteryKW      float64 `json:"batteryKW"`
	ThresholdKW    float64 `json:"thresholdKW"`    // demand-shaving target
	RoofCapacityKW float64 `json:"roofCapacityKW"` // upper bound for solar sweeps, 0 = unknown
}

// SystemModelingParams holds the derate and gain coefficients applied to DC
// production. All loss/gain fields are fractions (0.02 = 2%).
type SystemModelingParams struct {
	InverterLoadRatio    float64 `json:"inverterLoadRatio"`
	TemperatureCoeffPerC float64 `json:"temperatureCoeffPerC"` // negative, per degree C above 25C cell temp
	WiringLoss           float64 `json:"wiringLoss"`
	LIDLoss              float64 `json:"lidLoss"`
	MismatchLoss         float64 `json:"mismatchLoss"`
	StringMismatchLoss   float64 `json:"stringMismatchLoss"`
	ModuleQualityGain    float64 `json:"moduleQualityGain"`
}

// DefaultModelingParams returns the coefficients used when the caller's
// assumptions don't specify any.
func DefaultModelingParams() SystemModelingParams {
	return SystemModelingParams{
		InverterLoadRatio:    1.2,
		TemperatureCoeffPerC: -0.0035,
		WiringLoss:           0.02,
		LIDLoss:              0.015,
		MismatchLoss:         0.01,
		StringMismatchLoss:   0.005,
		ModuleQualityGain:    0.01,
	}
}

// SimHour is one hour of the dispatch simulation trace.
type SimHour struct {
	Hour           int     `json:"hour"`
	Month          int     `json:"month"`
	Day            int     `json:"day"` // day of year, 0-based
	ConsumptionKWH float64 `json:"consumptionKWH"`
	ProductionKWH  float64 `json:"productionKWH"`
	BatterySOCKWH  float64 `json:"batterySOCKWH"`
	PeakBeforeKW   float64 `json:"peakBeforeKW"`
	PeakAfterKW    float64 `json:"peakAfterKW"`
}

// SimulationResult is the aggregate outcome of one hourly dispatch run.
type SimulationResult struct {
	SelfConsumptionKWH float64 `json:"selfConsumptionKWH"`
	ProductionKWH      float64 `json:"productionKWH"`
	ExportedKWH        float64 `json:"exportedKWH"`
	ClippingLossKWH    float64 `json:"clippingLossKWH"`

	// GridChargedKWH is energy pulled from the grid to charge the battery.
	// It must never be credited as self-consumption or savings.
	GridChargedKWH float64 `json:"gridChargedKWH"`

	MonthlyPeakBeforeKW [12]float64 `json:"monthlyPeakBeforeKW"`
	MonthlyPeakAfterKW  [12]float64 `json:"monthlyPeakAfterKW"`

	Hourly   []SimHour `json:"hourly,omitempty"`
	PeakWeek []SimHour `json:"peakWeek,omitempty"`
}
