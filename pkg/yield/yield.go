// Package yield decides, once per analysis, which solar specific-yield figure
// to trust. The resolved strategy is passed explicitly into every downstream
// simulation call.
package yield

import (
	"context"
	"log/slog"
	"math"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
)

// sunshineEfficiencyFactor converts a remote max-sunshine-hours figure into an
// annual specific yield proxy (kWh/kWp per sunshine hour). Calibrated against
// sites where both the sunshine figure and a metered yield were available.
const sunshineEfficiencyFactor = 0.62

// Bifacial boost recommendations by roof classification. Higher-albedo
// (whiter) surfaces reflect more light onto the rear face.
var roofBoost = map[types.RoofColor]float64{
	types.RoofColorWhite: 1.10,
	types.RoofColorLight: 1.07,
	types.RoofColorGray:  1.04,
	types.RoofColorDark:  1.0,
}

// Resolve picks the specific-yield figure and correction flags for an
// analysis. Precedence, first match wins:
//
//  1. explicit manual override flag
//  2. stored remote-sensed source (baseline stands in if no stored value)
//  3. fresh remote production estimate (energy / size)
//  4. remote sunshine-hours proxy
//  5. stored manual source
//  6. stored yield differing from the baseline, inferred manual
//  7. the 1,150 kWh/kWp baseline
func Resolve(ctx context.Context, a types.Assumptions, remote *types.RemoteSensingData, roof types.RoofColor) types.YieldStrategy {
	base, source := resolveBase(a, remote)

	boost := 1.0
	if a.Bifacial != nil {
		if *a.Bifacial {
			boost = roofBoost[types.RoofColorWhite]
		}
	} else if b, ok := roofBoost[roof]; ok {
		boost = b
	}

	// Remote and manual yields already encode orientation and shading; only
	// the default baseline gets the orientation derate.
	orientation := 1.0
	if source == types.YieldSourceDefault {
		orientation = clampOrientation(a.OrientationFactor)
	}

	effective := base * boost * orientation
	s := types.YieldStrategy{
		EffectiveYieldKWHPerKWP:   effective,
		Source:                    source,
		SkipTemperatureCorrection: source != types.YieldSourceDefault,
		BaseYieldKWHPerKWP:        base,
		BifacialBoostFactor:       boost,
		OrientationFactor:         orientation,
		YieldFactor:               effective / types.BaselineYieldKWHPerKWP,
	}
	log.Ctx(ctx).DebugContext(ctx, "yield strategy resolved",
		slog.String("source", string(source)),
		slog.Float64("baseYield", base),
		slog.Float64("effectiveYield", effective),
	)
	return s
}

func resolveBase(a types.Assumptions, remote *types.RemoteSensingData) (float64, types.YieldSource) {
	if a.UseManualYield {
		return storedOrBaseline(a), types.YieldSourceManual
	}
	if a.StoredYieldSource == types.YieldSourceRemote {
		return storedOrBaseline(a), types.YieldSourceRemote
	}
	if remote != nil && remote.YearlyEnergyKWH > 0 && remote.SystemSizeKW > 0 {
		return math.Round(remote.YearlyEnergyKWH / remote.SystemSizeKW), types.YieldSourceRemote
	}
	if remote != nil && remote.MaxSunshineHoursPerYear > 0 {
		return math.Round(remote.MaxSunshineHoursPerYear * sunshineEfficiencyFactor), types.YieldSourceRemote
	}
	if a.StoredYieldSource == types.YieldSourceManual {
		return storedOrBaseline(a), types.YieldSourceManual
	}
	if a.StoredYieldKWHPerKWP > 0 && a.StoredYieldKWHPerKWP != types.BaselineYieldKWHPerKWP {
		// A stored yield that differs from the baseline was necessarily typed
		// in by someone.
		return a.StoredYieldKWHPerKWP, types.YieldSourceManual
	}
	return types.BaselineYieldKWHPerKWP, types.YieldSourceDefault
}

func storedOrBaseline(a types.Assumptions) float64 {
	if a.StoredYieldKWHPerKWP > 0 {
		return a.StoredYieldKWHPerKWP
	}
	return types.BaselineYieldKWHPerKWP
}

func clampOrientation(f float64) float64 {
	if f == 0 {
		return 1.0
	}
	if f < 0.6 {
		return 0.6
	}
	if f > 1.0 {
		return 1.0
	}
	return f
}
