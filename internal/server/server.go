// Package server exposes the optimizer over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/iwvelando/budget-optimizer/internal/cache"
	"github.com/iwvelando/budget-optimizer/internal/catalog"
	"github.com/iwvelando/budget-optimizer/internal/config"
	"github.com/iwvelando/budget-optimizer/internal/metrics"
	"github.com/iwvelando/budget-optimizer/internal/optimizer"
	"github.com/iwvelando/budget-optimizer/pkg/constants"
	"github.com/iwvelando/budget-optimizer/pkg/optimization"
	"github.com/iwvelando/budget-optimizer/pkg/output"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         cache.Repository
	ids           *catalog.IDGenerator
}

// NewHandler constructs the HTTP handler that serves the optimizer API. A nil
// repository disables result caching.
func NewHandler(logger *zap.Logger, cfg *Config, repo cache.Repository) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = DefaultConfig()
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: cfg.UploadSizeBytes(),
		version:       cfg.Version,
		cache:         repo,
		ids:           catalog.NewIDGenerator(),
	}
	if h.maxUploadSize <= 0 {
		h.maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	r := chi.NewRouter()
	r.Use(h.requestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.RequestsPerMinute > 0 {
			r.Use(httprate.LimitByIP(cfg.RateLimit.RequestsPerMinute, time.Minute))
		}

		r.Post("/optimize", h.handleOptimize)
		r.Post("/upload", h.handleUpload)
		r.Post("/export", h.handleExport)
		r.Post("/import", h.handleImport)
		r.Get("/channels/defaults", h.handleDefaultChannels)
		r.Post("/channels", h.handleAddChannel)
		r.Patch("/channels/{id}", h.handleUpdateChannel)
		r.Delete("/channels/{id}", h.handleRemoveChannel)
		r.Get("/version", h.handleVersion)
	})

	return r
}

type optimizeResponse struct {
	Rows        []optimization.Row       `json:"rows"`
	Totals      optimization.Totals      `json:"totals"`
	BlendedROAS float64                  `json:"blendedRoas"`
	Iterations  int                      `json:"iterations"`
	Termination optimization.Termination `json:"termination"`
	ContentLift float64                  `json:"contentLift"`
	Seasonality float64                  `json:"seasonality"`
	CSV         string                   `json:"csv"`
	Summary     string                   `json:"summary"`
	Warnings    []string                 `json:"warnings,omitempty"`
	Cached      bool                     `json:"cached"`
	Duration    string                   `json:"duration"`
}

type addChannelRequest struct {
	Name     string           `json:"name"`
	Channels []config.Channel `json:"channels"`
}

type addChannelResponse struct {
	Channel  config.Channel   `json:"channel"`
	Channels []config.Channel `json:"channels"`
}

// updateChannelRequest replaces the channel calibration, flips its enabled
// flag, or both.
type updateChannelRequest struct {
	Channels []config.Channel `json:"channels"`
	Channel  *config.Channel  `json:"channel,omitempty"`
	Enabled  *bool            `json:"enabled,omitempty"`
}

type channelListRequest struct {
	Channels []config.Channel `json:"channels"`
}

// requestID tags each request with an X-Request-ID, generating one when the
// client did not send it.
func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(chimiddleware.RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(chimiddleware.RequestIDHeader, id)
		ctx := context.WithValue(r.Context(), chimiddleware.RequestIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleOptimize"
	start := time.Now()

	conf, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	h.optimize(w, r, conf, start, op)
}

func (h *handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpload"
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), op)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, "missing plan file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	conf, err := config.LoadConfigurationFromReader(file)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.optimize(w, r, conf, start, op)
}

func (h *handler) handleExport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleExport"

	conf, ok := h.decodePlan(w, r, op)
	if !ok {
		return
	}
	runner, err := optimizer.NewRunner(h.logger, conf)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	result, _ := h.run(r.Context(), runner, op)

	var buf bytes.Buffer
	if err := output.WriteCSV(&buf, result); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode CSV: %v", err), op)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", constants.ExportFileName))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Warn("failed to write CSV response", zap.String("op", op), zap.Error(err))
	}
}

func (h *handler) handleImport(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleImport"

	body := http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	alloc, err := output.ParseCSV(body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, alloc)
}

func (h *handler) handleDefaultChannels(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string][]config.Channel{
		"channels": catalog.Defaults(),
	})
}

func (h *handler) handleAddChannel(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleAddChannel"

	var req addChannelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	updated, ch, err := catalog.New(req.Channels, h.ids).Add(req.Name)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}
	h.writeJSON(w, http.StatusOK, addChannelResponse{Channel: ch, Channels: updated.Channels()})
}

func (h *handler) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleUpdateChannel"
	id := chi.URLParam(r, "id")

	var req updateChannelRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}
	if req.Channel == nil && req.Enabled == nil {
		h.respondError(w, r, http.StatusBadRequest, "request must set channel or enabled", op)
		return
	}

	updated := catalog.New(req.Channels, h.ids)
	var err error
	if req.Channel != nil {
		replacement := *req.Channel
		updated, err = updated.Update(id, func(ch *config.Channel) {
			*ch = replacement
		})
	}
	if err == nil && req.Enabled != nil {
		updated, err = updated.SetEnabled(id, *req.Enabled)
	}
	if err != nil {
		h.respondCatalogError(w, r, err, op)
		return
	}

	ch, _ := updated.Get(id)
	h.writeJSON(w, http.StatusOK, addChannelResponse{Channel: ch, Channels: updated.Channels()})
}

func (h *handler) handleRemoveChannel(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleRemoveChannel"
	id := chi.URLParam(r, "id")

	var req channelListRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize)).Decode(&req); err != nil {
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode request: %v", err), op)
		return
	}

	updated, err := catalog.New(req.Channels, h.ids).Remove(id)
	if err != nil {
		h.respondCatalogError(w, r, err, op)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string][]config.Channel{"channels": updated.Channels()})
}

func (h *handler) respondCatalogError(w http.ResponseWriter, r *http.Request, err error, op string) {
	status := http.StatusBadRequest
	if errors.Is(err, catalog.ErrNotFound) {
		status = http.StatusNotFound
	}
	h.respondError(w, r, status, err.Error(), op)
}

func (h *handler) decodePlan(w http.ResponseWriter, r *http.Request, op string) (*config.Configuration, bool) {
	var conf config.Configuration
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUploadSize))
	if err := decoder.Decode(&conf); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return nil, false
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode plan: %v", err), op)
		return nil, false
	}
	return &conf, true
}

func (h *handler) optimize(w http.ResponseWriter, r *http.Request, conf *config.Configuration, start time.Time, op string) {
	runner, err := optimizer.NewRunner(h.logger, conf)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	result, cached := h.run(r.Context(), runner, op)

	csv, err := output.CSVString(result)
	if err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to encode CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)
	response := optimizeResponse{
		Rows:        result.Rows,
		Totals:      result.Totals,
		BlendedROAS: result.Totals.BlendedROAS(),
		Iterations:  result.Iterations,
		Termination: result.Termination,
		ContentLift: result.ContentLift,
		Seasonality: result.Seasonality,
		CSV:         csv,
		Summary:     runner.Summary(result),
		Warnings:    runner.Warnings(),
		Cached:      cached,
		Duration:    elapsed.String(),
	}

	h.logger.Info("allocation computed",
		zap.String("op", op),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		zap.Int("channels", len(response.Rows)),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

// run serves the result from cache when possible and stores fresh results.
// Cache failures are logged and never fail the request.
func (h *handler) run(ctx context.Context, runner *optimizer.Runner, op string) (*optimization.Result, bool) {
	if h.cache == nil {
		return runner.Run(), false
	}

	key, err := cache.Key(runner.Request())
	if err != nil {
		h.logger.Warn("failed to fingerprint request", zap.String("op", op), zap.Error(err))
		return runner.Run(), false
	}

	result, ok, err := cache.GetResult(ctx, h.cache, key)
	switch {
	case err != nil:
		metrics.ObserveCacheError()
		h.logger.Warn("result cache lookup failed", zap.String("op", op), zap.Error(err))
	case ok:
		metrics.ObserveCacheHit()
		return result, true
	default:
		metrics.ObserveCacheMiss()
	}

	result = runner.Run()
	if err := cache.PutResult(ctx, h.cache, key, result); err != nil {
		metrics.ObserveCacheError()
		h.logger.Warn("failed to store result", zap.String("op", op), zap.Error(err))
	}
	return result, false
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.logger.Error("request failed",
		zap.String("op", op),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}
