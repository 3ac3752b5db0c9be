// Package http exposes the operator API: health probes, the three roster
// views, and token-gated sync triggers.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	nethttp "net/http"
	"os"
	"strconv"
	"strings"

	"dupr-sync-service/internal/domain"
	"dupr-sync-service/internal/logging"
	"dupr-sync-service/internal/providers"
	"dupr-sync-service/internal/scheduler"
	"dupr-sync-service/internal/storage"
)

// SyncRunner triggers synchronization runs.
type SyncRunner interface {
	RunBatch(ctx context.Context) (domain.Report, error)
	RunRow(ctx context.Context, num int) (domain.Report, error)
	RunFirst(ctx context.Context) (domain.Report, error)
	RunLast(ctx context.Context) (domain.Report, error)
}

// ReportSource loads the most recent run report.
type ReportSource interface {
	Latest() (domain.Report, error)
}

// Handler wires HTTP routes to the synchronizer and the stores.
type Handler struct {
	runner     SyncRunner
	stores     storage.Stores
	reports    ReportSource
	statusFn   func() scheduler.Status
	adminToken string
	logger     *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler(runner SyncRunner, stores storage.Stores, reports ReportSource, statusFn func() scheduler.Status, adminToken string, logger *slog.Logger) *Handler {
	return &Handler{
		runner:     runner,
		stores:     stores,
		reports:    reports,
		statusFn:   statusFn,
		adminToken: adminToken,
		logger:     logger,
	}
}

// Health reports the service health.
func (h *Handler) Health(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports scheduler health; without a scheduler the service is always
// ready once it is serving.
func (h *Handler) Ready(w nethttp.ResponseWriter, r *nethttp.Request) {
	if h.statusFn == nil {
		h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"})
		return
	}
	status := h.statusFn()
	if !status.IsReady() {
		h.writeJSON(w, nethttp.StatusServiceUnavailable, map[string]any{
			"status":              "not ready",
			"consecutiveFailures": status.ConsecutiveFailures,
			"lastError":           status.LastError,
		})
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]string{"status": "ready"})
}

// Roster returns every roster row with its current status and notes.
func (h *Handler) Roster(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.requireMethod(w, r, nethttp.MethodGet) {
		return
	}
	rows, err := h.stores.Roster.ListRows(r.Context())
	if err != nil {
		h.logError(r, "listing roster failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "failed to load roster")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]any{"rows": rows})
}

// ImportRoster replaces the roster from a CSV body.
func (h *Handler) ImportRoster(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.requireMethod(w, r, nethttp.MethodPost) {
		return
	}
	if !h.authorize(w, r) {
		return
	}

	rows, err := storage.ParseRosterCSV(r.Body)
	if err != nil {
		h.writeError(w, r, nethttp.StatusBadRequest, err.Error())
		return
	}
	if err := h.stores.Roster.ReplaceAll(r.Context(), rows); err != nil {
		h.logError(r, "roster import failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "failed to store roster")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]any{"imported": len(rows)})
}

// CurrentRatings returns the current-state view.
func (h *Handler) CurrentRatings(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.requireMethod(w, r, nethttp.MethodGet) {
		return
	}
	records, err := h.stores.CurrentState.List(r.Context())
	if err != nil {
		h.logError(r, "listing current ratings failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "failed to load ratings")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]any{"ratings": records})
}

// RatingHistory returns the append-only history view.
func (h *Handler) RatingHistory(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.requireMethod(w, r, nethttp.MethodGet) {
		return
	}
	records, err := h.stores.History.List(r.Context())
	if err != nil {
		h.logError(r, "listing rating history failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "failed to load history")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, map[string]any{"history": records})
}

// LatestReport returns the most recent run report.
func (h *Handler) LatestReport(w nethttp.ResponseWriter, r *nethttp.Request) {
	if !h.requireMethod(w, r, nethttp.MethodGet) {
		return
	}
	if h.reports == nil {
		h.writeError(w, r, nethttp.StatusNotFound, "run reports not configured")
		return
	}
	latest, err := h.reports.Latest()
	if errors.Is(err, os.ErrNotExist) {
		h.writeError(w, r, nethttp.StatusNotFound, "no runs recorded yet")
		return
	}
	if err != nil {
		h.logError(r, "loading latest report failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "failed to load report")
		return
	}
	h.writeJSON(w, nethttp.StatusOK, latest)
}

// RunBatch triggers a full roster run and returns the report.
func (h *Handler) RunBatch(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.runSync(w, r, func(ctx context.Context) (domain.Report, error) {
		return h.runner.RunBatch(ctx)
	})
}

// RunFirst processes only the first roster row.
func (h *Handler) RunFirst(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.runSync(w, r, func(ctx context.Context) (domain.Report, error) {
		return h.runner.RunFirst(ctx)
	})
}

// RunLast processes only the last roster row.
func (h *Handler) RunLast(w nethttp.ResponseWriter, r *nethttp.Request) {
	h.runSync(w, r, func(ctx context.Context) (domain.Report, error) {
		return h.runner.RunLast(ctx)
	})
}

// RunRow processes one roster row. Expects path: /sync/rows/{num}
func (h *Handler) RunRow(w nethttp.ResponseWriter, r *nethttp.Request) {
	raw := strings.TrimPrefix(r.URL.Path, "/sync/rows/")
	num, err := strconv.Atoi(raw)
	if err != nil || num <= 0 {
		h.writeError(w, r, nethttp.StatusBadRequest, "invalid row number")
		return
	}
	h.runSync(w, r, func(ctx context.Context) (domain.Report, error) {
		return h.runner.RunRow(ctx, num)
	})
}

func (h *Handler) runSync(w nethttp.ResponseWriter, r *nethttp.Request, run func(ctx context.Context) (domain.Report, error)) {
	if !h.requireMethod(w, r, nethttp.MethodPost) {
		return
	}
	if !h.authorize(w, r) {
		return
	}
	if h.runner == nil {
		h.writeError(w, r, nethttp.StatusServiceUnavailable, "synchronizer not configured")
		return
	}

	report, err := run(r.Context())
	switch {
	case errors.Is(err, providers.ErrConfiguration):
		h.logError(r, "sync run aborted on configuration", err)
		h.writeError(w, r, nethttp.StatusServiceUnavailable, "rating service credentials missing or rejected")
	case errors.Is(err, storage.ErrRowNotFound):
		h.writeError(w, r, nethttp.StatusNotFound, "row not found")
	case err != nil:
		h.logError(r, "sync run failed", err)
		h.writeError(w, r, nethttp.StatusInternalServerError, "sync run failed")
	default:
		h.writeJSON(w, nethttp.StatusOK, report)
	}
}

// authorize checks the bearer token. An unset token disables the gated
// endpoints entirely.
func (h *Handler) authorize(w nethttp.ResponseWriter, r *nethttp.Request) bool {
	if h.adminToken == "" || r.Header.Get("Authorization") != "Bearer "+h.adminToken {
		logging.Warn(loggerFromRequest(r, h.logger), "unauthorized request",
			logging.FieldPath, r.URL.Path,
		)
		h.writeError(w, r, nethttp.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func (h *Handler) requireMethod(w nethttp.ResponseWriter, r *nethttp.Request, method string) bool {
	if r.Method != method {
		h.writeError(w, r, nethttp.StatusMethodNotAllowed, "method not allowed")
		return false
	}
	return true
}

func (h *Handler) writeJSON(w nethttp.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil && h.logger != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(w nethttp.ResponseWriter, r *nethttp.Request, status int, message string) {
	reqID := requestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get("X-Request-ID")
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	h.writeJSON(w, status, body)
}

func (h *Handler) logError(r *nethttp.Request, msg string, err error) {
	logging.Error(loggerFromRequest(r, h.logger), msg, err, logging.FieldPath, r.URL.Path)
}

func loggerFromRequest(r *nethttp.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
