package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/config"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/financial"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/log"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/montecarlo"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/profile"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/readings"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/sensitivity"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/tariff"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/types"
	"github.com/kWhQuebec/kwh-optimizer2000-sub005/pkg/yield"
)

// analysisRequest is the shared request body of the analyze, sensitivity and
// montecarlo endpoints. Either raw readings or a synthetic profile request
// must be provided.
type analysisRequest struct {
	Readings []types.RawReading `json:"readings"`
	Profile  *profile.Request   `json:"profile"`

	Sizing types.SystemSizing `json:"sizing"`

	// Assumptions are merged over the defaults: zero fields keep defaults.
	Assumptions *types.Assumptions `json:"assumptions"`

	RemoteSensing *types.RemoteSensingData `json:"remoteSensing"`
	RoofColor     types.RoofColor          `json:"roofColor"`

	MonteCarlo *montecarlo.Config `json:"monteCarlo"`
}

// analysisContext is the resolved, simulation-ready form of a request.
type analysisContext struct {
	hours       []types.HourlyBucket
	peakKW      float64
	annualKWH   float64
	assumptions types.Assumptions
	yield       types.YieldStrategy
}

func (s *Server) prepare(ctx context.Context, req analysisRequest) (analysisContext, error) {
	raw := req.Readings
	if len(raw) == 0 {
		if req.Profile == nil {
			return analysisContext{}, fmt.Errorf("either readings or a profile request is required")
		}
		generated, meta, err := profile.Generate(*req.Profile)
		if err != nil {
			return analysisContext{}, fmt.Errorf("generate profile: %w", err)
		}
		log.Ctx(ctx).DebugContext(ctx, "using synthetic profile",
			slog.String("archetype", meta.Archetype),
			slog.Float64("peakKW", meta.PeakDemandKW),
		)
		raw = generated
	}

	buckets := readings.Aggregate(ctx, raw)
	hours := readings.ExpandCalendar(buckets)

	a := config.DefaultAssumptions()
	if req.Assumptions != nil {
		a = config.Merge(a, *req.Assumptions)
	}
	if err := config.Validate(a); err != nil {
		return analysisContext{}, err
	}

	return analysisContext{
		hours:       hours,
		peakKW:      readings.PeakDemandKW(hours),
		annualKWH:   readings.AnnualConsumptionKWH(hours),
		assumptions: a,
		yield:       yield.Resolve(ctx, a, req.RemoteSensing, req.RoofColor),
	}, nil
}

func decodeAnalysisRequest(w http.ResponseWriter, r *http.Request) (analysisRequest, bool) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return analysisRequest{}, false
	}
	return req, true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	ac, err := s.prepare(ctx, req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	fin := financial.RunScenario(ctx, financial.ScenarioInputs{
		Hours:                ac.hours,
		Sizing:               req.Sizing,
		PeakKW:               ac.peakKW,
		AnnualConsumptionKWH: ac.annualKWH,
		Assumptions:          ac.assumptions,
		Yield:                ac.yield,
	})
	writeJSON(w, fin)
}

func (s *Server) handleSensitivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	ac, err := s.prepare(ctx, req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	res, err := sensitivity.Run(ctx, sensitivity.Inputs{
		Hours:                ac.hours,
		Configured:           req.Sizing,
		PeakKW:               ac.peakKW,
		AnnualConsumptionKWH: ac.annualKWH,
		Assumptions:          ac.assumptions,
		Yield:                ac.yield,
	})
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "sensitivity sweep failed", slog.Any("error", err))
		writeJSONError(w, "sensitivity sweep failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleMonteCarlo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, ok := decodeAnalysisRequest(w, r)
	if !ok {
		return
	}
	ac, err := s.prepare(ctx, req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	var cfg montecarlo.Config
	if req.MonteCarlo != nil {
		cfg = *req.MonteCarlo
	}
	scenarioFn := func(ctx context.Context, a types.Assumptions, ys types.YieldStrategy) (types.ScenarioFinancials, error) {
		return financial.RunScenario(ctx, financial.ScenarioInputs{
			Hours:                ac.hours,
			Sizing:               req.Sizing,
			PeakKW:               ac.peakKW,
			AnnualConsumptionKWH: ac.annualKWH,
			Assumptions:          a,
			Yield:                ys,
			SkipTrace:            true,
		}), nil
	}

	res, err := montecarlo.Run(ctx, ac.assumptions, ac.yield, scenarioFn, cfg)
	if err != nil {
		log.Ctx(ctx).ErrorContext(ctx, "monte carlo run failed", slog.Any("error", err))
		writeJSONError(w, "monte carlo run failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, res)
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req profile.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}
	rds, meta, err := profile.Generate(req)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, struct {
		Readings []types.RawReading `json:"readings"`
		Metadata profile.Metadata   `json:"metadata"`
	}{Readings: rds, Metadata: meta})
}

func (s *Server) handleListTariffs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, tariff.List())
}

func (s *Server) handleDetectTariff(w http.ResponseWriter, r *http.Request) {
	peakKW, err := queryFloat(r, "peakKW")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	annualKWH, err := queryFloat(r, "annualKWH")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	hasDemandMeter := r.URL.Query().Get("demandMeter") == "true"
	writeJSON(w, tariff.Detect(peakKW, annualKWH, hasDemandMeter))
}

func (s *Server) handleTariffCost(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	annualKWH, err := queryFloat(r, "annualKWH")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	peakKW, err := queryFloat(r, "peakKW")
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	cost, err := tariff.CalculateAnnualCost(code, annualKWH, peakKW)
	if err != nil {
		writeJSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, cost)
}

func queryFloat(r *http.Request, name string) (float64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return v, nil
}
