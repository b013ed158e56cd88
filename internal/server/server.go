package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sq3/hausfinanzierungs-dashboard/internal/cache"
	"github.com/sq3/hausfinanzierungs-dashboard/internal/config"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/constants"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/financing"
	"github.com/sq3/hausfinanzierungs-dashboard/pkg/output"
	"go.uber.org/zap"
)

// Options configures the HTTP handler.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Cache is optional; without one every request is computed.
	Cache    cache.Cache
	CacheTTL time.Duration
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	cache         cache.Cache
	cacheTTL      time.Duration
	combiner      *financing.Combiner
}

// NewHandler constructs the HTTP handler that serves the financing API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		cache:         opts.Cache,
		cacheTTL:      opts.CacheTTL,
		combiner:      financing.NewCombiner(logger),
	}

	mux := http.NewServeMux()

	// Financing from a JSON document
	mux.HandleFunc("/api/financing", h.handleFinancing)

	// Financing from an uploaded scenario file
	mux.HandleFunc("/api/financing/yaml", h.handleFinancingUpload)

	mux.HandleFunc("/api/version", h.handleVersion)

	return h.withRequestID(mux)
}

type financingResponse struct {
	financing.Combined
	Request  financing.Request     `json:"request"`
	Yearly   []financing.YearEntry `json:"yearlySummary"`
	CSV      string                `json:"csv"`
	Warnings []string              `json:"warnings,omitempty"`
	Cached   bool                  `json:"cached"`
	Duration string                `json:"duration"`
}

func (h *handler) handleFinancing(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFinancing"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)

	// Fields missing from the document keep their defaults.
	cfg := &config.Configuration{Financing: config.DefaultFinancing()}
	if err := json.NewDecoder(r.Body).Decode(&cfg.Financing); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, r, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("request exceeds limit of %d bytes", h.maxUploadSize), op)
			return
		}
		h.respondError(w, r, http.StatusBadRequest, fmt.Sprintf("failed to decode financing: %v", err), op)
		return
	}

	h.runFinancing(w, r, cfg, start, op)
}

func (h *handler) handleFinancingUpload(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleFinancingUpload"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

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
		h.respondError(w, r, http.StatusBadRequest, "missing scenario file", op)
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.requestLogger(r).Warn("failed to close uploaded file",
				zap.String("op", op),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, r, http.StatusInternalServerError, fmt.Sprintf("failed to read scenario: %v", err), op)
		return
	}

	cfg, err := config.LoadConfigurationFromReader(&buf)
	if err != nil {
		h.respondError(w, r, http.StatusBadRequest, err.Error(), op)
		return
	}

	h.runFinancing(w, r, cfg, start, op)
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, r, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) runFinancing(w http.ResponseWriter, r *http.Request, cfg *config.Configuration, start time.Time, op string) {
	req := cfg.Financing.Request()
	result, cached := h.compute(r.Context(), req, op)

	var csv bytes.Buffer
	output.WriteCsv(&csv, result)

	elapsed := time.Since(start)
	response := financingResponse{
		Combined: result,
		Request:  req,
		Yearly:   financing.YearlySummary(result.Schedule),
		CSV:      csv.String(),
		Warnings: cfg.ValidateConfiguration(),
		Cached:   cached,
		Duration: elapsed.String(),
	}

	body, err := json.Marshal(response)
	if err != nil {
		h.respondError(w, r, http.StatusUnprocessableEntity,
			fmt.Sprintf("financing result is not representable, reduce principal or rates: %v", err), op)
		return
	}

	h.requestLogger(r).Info("financing computed",
		zap.String("op", op),
		zap.Int("months", response.Totals.TotalMonths),
		zap.Bool("cached", cached),
		zap.Duration("duration", elapsed),
	)

	h.writeBody(w, http.StatusOK, body)
}

// compute returns the cached result for req when there is one.
func (h *handler) compute(ctx context.Context, req financing.Request, op string) (financing.Combined, bool) {
	if h.cache == nil {
		return h.combiner.Compute(req), false
	}

	logger := h.logger.With(zap.String("op", op), zap.String("requestId", RequestIDFromContext(ctx)))
	key, err := cache.Key(req)
	if err != nil {
		logger.Warn("failed to derive cache key", zap.Error(err))
		return h.combiner.Compute(req), false
	}

	if data, ok := h.cache.Get(ctx, key); ok {
		var result financing.Combined
		if err := json.Unmarshal(data, &result); err == nil {
			return result, true
		}
		logger.Warn("discarding unreadable cache entry", zap.String("key", key))
	}

	result := h.combiner.Compute(req)
	data, err := json.Marshal(result)
	if err != nil {
		logger.Warn("failed to encode result for cache", zap.Error(err))
		return result, false
	}
	if err := h.cache.Set(ctx, key, data, h.cacheTTL); err != nil {
		logger.Warn("failed to cache result", zap.String("key", key), zap.Error(err))
	}
	return result, false
}

func (h *handler) respondError(w http.ResponseWriter, r *http.Request, status int, msg string, op string) {
	h.requestLogger(r).Error("financing request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeJSON encodes payload before writing the header; a payload that does
// not encode is answered with 500.
func (h *handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		h.requestLogger(r).Error("failed to encode JSON response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"failed to encode response"}`)
	}
	h.writeBody(w, status, body)
}

func (h *handler) writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
