package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iwvelando/loan-analyzer/internal/cache"
	"github.com/iwvelando/loan-analyzer/internal/config"
	"github.com/iwvelando/loan-analyzer/internal/optimizer"
	"github.com/iwvelando/loan-analyzer/internal/scenario"
	"github.com/iwvelando/loan-analyzer/internal/store"
	"github.com/iwvelando/loan-analyzer/pkg/constants"
	"github.com/iwvelando/loan-analyzer/pkg/loans"
	"github.com/iwvelando/loan-analyzer/pkg/output"
	"github.com/iwvelando/loan-analyzer/pkg/validation"
	"go.uber.org/zap"
)

// errBadRequest marks request bodies that could not be decoded.
var errBadRequest = errors.New("bad request")

// Dependencies are the optional collaborators of the handler. A nil Cache
// falls back to an in-memory cache; a nil Store disables the store endpoints.
type Dependencies struct {
	Cache cache.Cache
	Store *store.Store
}

type handler struct {
	logger    *zap.Logger
	version   string
	schedules *cache.ScheduleCache
	evaluator *scenario.Evaluator
	store     *store.Store
}

// NewHandler constructs the HTTP handler that serves the schedule API.
func NewHandler(logger *zap.Logger, cfg *Config, deps Dependencies, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	backend := deps.Cache
	if backend == nil {
		backend = cache.NewMemoryCache(constants.DefaultCacheEntries, cfg.Cache.TTL())
	}
	schedules := cache.NewScheduleCache(backend, logger)

	h := &handler{
		logger:    logger,
		version:   trimmedVersion,
		schedules: schedules,
		evaluator: scenario.NewEvaluator(logger, cfg.Evaluation.Workers).WithScheduleFunc(schedules.Compute),
		store:     deps.Store,
	}

	mux := http.NewServeMux()

	// Single-loan schedule and its CSV export
	mux.HandleFunc("POST /api/schedule", h.handleSchedule)
	mux.HandleFunc("POST /api/export/csv", h.handleScheduleCSV)

	// Multi-scenario comparison
	mux.HandleFunc("POST /api/scenarios/evaluate", h.handleEvaluate)
	mux.HandleFunc("POST /api/series", h.handleSeries)

	// Scenario documents
	mux.HandleFunc("POST /api/export/scenarios", h.handleExportScenarios)
	mux.HandleFunc("POST /api/import/scenarios", h.handleImportScenarios)

	mux.HandleFunc("POST /api/optimize", h.handleOptimize)

	// Persisted scenarios
	mux.HandleFunc("GET /api/store/scenarios", h.handleStoreList)
	mux.HandleFunc("POST /api/store/scenarios", h.handleStoreSave)
	mux.HandleFunc("GET /api/store/scenarios/{id}", h.handleStoreGet)
	mux.HandleFunc("DELETE /api/store/scenarios/{id}", h.handleStoreDelete)

	mux.HandleFunc("GET /api/version", h.handleVersion)

	var next http.Handler = bodyLimit(cfg.UploadSizeBytes(), mux)
	if cfg.RateLimit.RequestsPerMinute > 0 {
		next = newRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.BurstSize).middleware(logger, next)
	}
	return requestLogger(logger, next)
}

type scheduleRequest struct {
	Name      string               `json:"name,omitempty"`
	StartDate string               `json:"startDate,omitempty"`
	Loan      loans.LoanParameters `json:"loan"`
}

func (req scheduleRequest) scenario() scenario.Scenario {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Loan 1"
	}
	return scenario.Scenario{Name: name, StartDate: req.StartDate, Loan: req.Loan}
}

type scheduleResponse struct {
	Name     string                `json:"name"`
	Summary  scenario.Summary      `json:"summary"`
	Periods  []loans.PaymentPeriod `json:"periods"`
	Dates    []string              `json:"dates,omitempty"`
	Cached   bool                  `json:"cached"`
	Warnings []string              `json:"warnings,omitempty"`
	Duration string                `json:"duration"`
}

type scenarioResult struct {
	Scenario scenario.Scenario `json:"scenario"`
	Summary  scenario.Summary  `json:"summary"`
}

type evaluateResponse struct {
	Scenarios []scenarioResult `json:"scenarios"`
	Warnings  []string         `json:"warnings,omitempty"`
	Duration  string           `json:"duration"`
}

type seriesLine struct {
	Name   string        `json:"name"`
	Label  string        `json:"label"`
	Points []loans.Point `json:"points"`
}

type scenarioSeries struct {
	Scenario string       `json:"scenario"`
	Dates    []string     `json:"dates,omitempty"`
	Lines    []seriesLine `json:"lines"`
}

type seriesResponse struct {
	Series []scenarioSeries `json:"series"`
}

type importResponse struct {
	Scenarios []scenario.Scenario `json:"scenarios"`
	Warnings  []string            `json:"warnings,omitempty"`
}

type optimizeRequest struct {
	Scenario     scenario.Scenario `json:"scenario"`
	TargetMonths int               `json:"targetMonths"`
	Max          float64           `json:"max,omitempty"`
}

type storeListResponse struct {
	Scenarios []store.Record `json:"scenarios"`
}

func (h *handler) handleSchedule(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSchedule"
	start := time.Now()

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, err, op)
		return
	}

	s := req.scenario()
	if err := s.Validate(); err != nil {
		h.respondErr(w, err, op)
		return
	}

	result, cached, err := h.schedules.Schedule(r.Context(), s.Loan)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	evaluation, err := h.evaluator.EvaluateResult(r.Context(), s, result)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, scheduleResponse{
		Name:     s.Name,
		Summary:  evaluation.Summary,
		Periods:  evaluation.Result.Periods,
		Dates:    evaluation.Dates,
		Cached:   cached,
		Warnings: warningsFor([]scenario.Scenario{s}),
		Duration: time.Since(start).String(),
	})
}

func (h *handler) handleScheduleCSV(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleScheduleCSV"

	var req scheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, err, op)
		return
	}

	evaluation, err := h.evaluator.EvaluateOne(r.Context(), req.scenario())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	body, err := output.CsvString(evaluation)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="amortization_schedule.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, body); err != nil {
		h.logger.Error("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleEvaluate"
	start := time.Now()

	scenarios, err := decodeScenarios(r.Body, constants.DocumentFormatJSON)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	evaluations, err := h.evaluator.Evaluate(r.Context(), scenarios)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	results := make([]scenarioResult, len(evaluations))
	for i, e := range evaluations {
		results[i] = scenarioResult{Scenario: e.Scenario, Summary: e.Summary}
	}
	h.writeJSON(w, http.StatusOK, evaluateResponse{
		Scenarios: results,
		Warnings:  warningsFor(scenarios),
		Duration:  time.Since(start).String(),
	})
}

func (h *handler) handleSeries(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSeries"

	scenarios, err := decodeScenarios(r.Body, constants.DocumentFormatJSON)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	evaluations, err := h.evaluator.Evaluate(r.Context(), scenario.Included(scenarios))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	resp := seriesResponse{Series: make([]scenarioSeries, 0, len(evaluations))}
	for _, e := range evaluations {
		entry := scenarioSeries{Scenario: e.Scenario.Name, Dates: e.Dates}
		for _, s := range []loans.Series{e.Result.CumulativePrincipalSeries(), e.Result.CumulativeInterestSeries(), e.Result.BalanceSeries()} {
			entry.Lines = append(entry.Lines, seriesLine{Name: s.Name(), Label: s.Label(), Points: s.Points()})
		}
		resp.Series = append(resp.Series, entry)
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handleExportScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExportScenarios"

	format, contentType, err := documentFormat(r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	scenarios, err := decodeScenarios(r.Body, constants.DocumentFormatJSON)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	var buf bytes.Buffer
	if err := scenario.Encode(&buf, format, scenarios); err != nil {
		h.respondErr(w, err, op)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="scenarios.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Error("failed to write scenario document", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleImportScenarios(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImportScenarios"

	format, _, err := documentFormat(r)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	scenarios, err := decodeScenarios(r.Body, format)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	h.writeJSON(w, http.StatusOK, importResponse{
		Scenarios: scenarios,
		Warnings:  warningsFor(scenarios),
	})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"

	var req optimizeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondErr(w, err, op)
		return
	}
	if strings.TrimSpace(req.Scenario.Name) == "" {
		req.Scenario.Name = "Loan 1"
	}

	runner, err := optimizer.NewRunner(h.logger, config.OptimizerConfig{
		TargetMonths: req.TargetMonths,
		Max:          req.Max,
	})
	if err != nil {
		h.respondErr(w, err, op)
		return
	}

	summary, err := runner.Optimize(req.Scenario)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *handler) handleStoreList(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStoreList"
	if !h.requireStore(w, op) {
		return
	}

	records, err := h.store.List(r.Context())
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, storeListResponse{Scenarios: records})
}

func (h *handler) handleStoreSave(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStoreSave"
	if !h.requireStore(w, op) {
		return
	}

	var sc scenario.Scenario
	if err := decodeJSON(r, &sc); err != nil {
		h.respondErr(w, err, op)
		return
	}

	record, err := h.store.Save(r.Context(), sc)
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusCreated, record)
}

func (h *handler) handleStoreGet(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStoreGet"
	if !h.requireStore(w, op) {
		return
	}

	record, err := h.store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondErr(w, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *handler) handleStoreDelete(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleStoreDelete"
	if !h.requireStore(w, op) {
		return
	}

	if err := h.store.Delete(r.Context(), r.PathValue("id")); err != nil {
		h.respondErr(w, err, op)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) requireStore(w http.ResponseWriter, op string) bool {
	if h.store == nil {
		h.respondErrorWithOp(w, http.StatusNotFound, "scenario storage is not configured", op)
		return false
	}
	return true
}

// documentFormat reads the ?format= query parameter (json when absent).
func documentFormat(r *http.Request) (string, string, error) {
	switch strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format"))) {
	case "", constants.DocumentFormatJSON:
		return constants.DocumentFormatJSON, "application/json", nil
	case constants.DocumentFormatYAML, "yml":
		return constants.DocumentFormatYAML, "application/yaml", nil
	default:
		return "", "", fmt.Errorf("%w: unsupported document format %q", errBadRequest, r.URL.Query().Get("format"))
	}
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return asBadRequest(fmt.Errorf("malformed request body: %w", err))
	}
	return nil
}

func decodeScenarios(body io.Reader, format string) ([]scenario.Scenario, error) {
	scenarios, err := scenario.Decode(body, format)
	if err != nil {
		return nil, asBadRequest(err)
	}
	return scenarios, nil
}

// asBadRequest tags err as a client error unless it already carries a more
// specific classification.
func asBadRequest(err error) error {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) ||
		errors.Is(err, loans.ErrInvalidParameter) ||
		errors.Is(err, loans.ErrNumericOverflow) ||
		errors.Is(err, scenario.ErrDuplicateName) {
		return err
	}
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func warningsFor(scenarios []scenario.Scenario) []string {
	validator := validation.ConfigValidator{}
	for _, s := range scenarios {
		validator.Scenarios = append(validator.Scenarios, validation.ScenarioConfig{
			Name:      s.Name,
			StartDate: s.StartDate,
			Loan:      s.Loan,
		})
	}
	return validator.ValidateAll()
}

// statusFor maps engine and storage errors onto HTTP status codes.
func statusFor(err error) int {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, loans.ErrNumericOverflow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, loans.ErrInvalidParameter),
		errors.Is(err, scenario.ErrDuplicateName),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) respondErr(w http.ResponseWriter, err error, op string) {
	h.respondErrorWithOp(w, statusFor(err), err.Error(), op)
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	log := h.logger.Warn
	if status >= http.StatusInternalServerError {
		log = h.logger.Error
	}
	log("request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	writeJSON(h.logger, w, status, payload)
}

func writeJSON(logger *zap.Logger, w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Error("failed to write JSON response", zap.Error(err))
	}
}
