package types

// YieldSource identifies where the specific-yield figure came from.
type YieldSource string

const (
	YieldSourceRemote  YieldSource = "remote-sensed"
	YieldSourceManual  YieldSource = "manual"
	YieldSourceDefault YieldSource = "default"
)

// RoofColor classifies the roof surface for the bifacial boost recommendation.
type RoofColor string

const (
	RoofColorWhite   RoofColor = "white"
	RoofColorLight   RoofColor = "light"
	RoofColorGray    RoofColor = "gray"
	RoofColorDark    RoofColor = "dark"
	RoofColorUnknown RoofColor = ""
)

// RemoteSensingData is the optional production estimate returned by a
// remote-sensing provider for the site's roof.
type RemoteSensingData struct {
	YearlyEnergyKWH         float64 `json:"yearlyEnergyKWH"`
	SystemSizeKW            float64 `json:"systemSizeKW"`
	MaxSunshineHoursPerYear float64 `json:"maxSunshineHoursPerYear"`
}

// YieldStrategy is the single resolved yield decision for an analysis. It is
// computed once and passed explicitly into every downstream simulation call so
// two code paths can never recompute yield differently.
type YieldStrategy struct {
	EffectiveYieldKWHPerKWP float64     `json:"effectiveYieldKWHPerKWP"`
	Source                  YieldSource `json:"source"`

	// SkipTemperatureCorrection is true iff Source is not the default
	// baseline: remote-sensed and manual yields already encode site losses.
	SkipTemperatureCorrection bool `json:"skipTemperatureCorrection"`

	BaseYieldKWHPerKWP  float64 `json:"baseYieldKWHPerKWP"`
	BifacialBoostFactor float64 `json:"bifacialBoostFactor"`
	OrientationFactor   float64 `json:"orientationFactor"`

	// YieldFactor is EffectiveYieldKWHPerKWP relative to the 1,150 kWh/kWp
	// baseline the hourly production shape is calibrated against.
	YieldFactor float64 `json:"yieldFactor"`
}
