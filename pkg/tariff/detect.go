package tariff

import (
	"fmt"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// Demand thresholds separating the small/medium/large rate classes (kW).
const (
	mediumPowerThresholdKW = 65.0
	largePowerThresholdKW  = 5000.0

	// Below this load factor an intermittent-use schedule usually beats the
	// standard small-power rate.
	intermittentLoadFactor = 0.15
)

// Detect classifies the likely applicable schedule from the consumption and
// demand shape. Rationale strings are in French, matching the market the
// schedules model.
func Detect(peakDemandKW, annualConsumptionKWH float64, hasDemandMeter bool) types.TariffDetectionResult {
	if peakDemandKW <= 0 {
		return types.TariffDetectionResult{
			Code:       "G",
			Confidence: types.TariffConfidenceLow,
			Rationale:  "Aucune donnée de puissance disponible; tarif petite puissance présumé.",
		}
	}

	loadFactor := 0.0
	if annualConsumptionKWH > 0 {
		loadFactor = annualConsumptionKWH / (peakDemandKW * types.HoursPerYear)
	}

	confidence := types.TariffConfidenceMedium
	if hasDemandMeter {
		confidence = types.TariffConfidenceHigh
	}

	switch {
	case peakDemandKW >= largePowerThresholdKW:
		return types.TariffDetectionResult{
			Code:       "L",
			Confidence: confidence,
			Rationale: fmt.Sprintf(
				"Puissance maximale de %.0f kW, au-dessus du seuil de %.0f kW du tarif grande puissance.",
				peakDemandKW, largePowerThresholdKW),
		}
	case peakDemandKW >= mediumPowerThresholdKW:
		return types.TariffDetectionResult{
			Code:       "M",
			Confidence: confidence,
			Rationale: fmt.Sprintf(
				"Puissance maximale de %.0f kW, entre %.0f et %.0f kW: tarif moyenne puissance.",
				peakDemandKW, mediumPowerThresholdKW, largePowerThresholdKW),
		}
	case loadFactor > 0 && loadFactor < intermittentLoadFactor:
		return types.TariffDetectionResult{
			Code:       "G9",
			Confidence: types.TariffConfidenceMedium,
			Rationale: fmt.Sprintf(
				"Facteur d'utilisation très faible (%.0f%%): usage intermittent probable.",
				loadFactor*100),
		}
	default:
		return types.TariffDetectionResult{
			Code:       "G",
			Confidence: confidence,
			Rationale: fmt.Sprintf(
				"Puissance maximale de %.0f kW, sous le seuil de %.0f kW: tarif petite puissance.",
				peakDemandKW, mediumPowerThresholdKW),
		}
	}
}
