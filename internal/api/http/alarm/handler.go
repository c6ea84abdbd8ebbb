package alarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/logger"
	"github.com/oshokin/alarm-clock/internal/service/clock"
	"github.com/oshokin/alarm-clock/internal/version"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// Service abstracts the alarm store operations the HTTP API depends on.
type Service interface {
	Alarms() []*domain.Alarm
	CurrentAlert() *domain.Alert
	Now() time.Time
	AddAlarm(ctx context.Context, a *domain.Alarm) error
	ToggleAlarm(ctx context.Context, id string, enabled bool) error
	DeleteAlarm(ctx context.Context, id string) error
	SnoozeAlarm(ctx context.Context) (*domain.Alarm, error)
	DismissAlarm(ctx context.Context) error
}

// handler serves the JSON API.
type handler struct {
	// service provides the alarm store operations.
	service Service
}

// NewHandler builds the HTTP API. Cross-origin requests are accepted from
// allowedOrigins only; an empty list rejects every cross-origin request.
func NewHandler(service Service, allowedOrigins []string) http.Handler {
	h := &handler{service: service}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)

	r.Get("/healthz", h.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Get("/alarms", h.listAlarms)
		r.Post("/alarms", h.addAlarm)
		r.Patch("/alarms/{id}", h.toggleAlarm)
		r.Delete("/alarms/{id}", h.deleteAlarm)

		r.Get("/alert", h.getAlert)
		r.Post("/alert/snooze", h.snoozeAlarm)
		r.Post("/alert/dismiss", h.dismissAlarm)
	})

	//nolint:exhaustruct // Remaining options keep their defaults.
	options := cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
	}

	// An empty list would otherwise allow every origin.
	if len(allowedOrigins) == 0 {
		options.AllowOriginFunc = func(string) bool { return false }
	}

	return cors.New(options).Handler(r)
}

func (h *handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Short(),
	})
}

func (h *handler) listAlarms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newAlarmViews(h.service.Alarms(), h.service.Now()))
}

func (h *handler) addAlarm(w http.ResponseWriter, r *http.Request) {
	var req addAlarmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	a, err := domain.FromInput(req.Time, req.Label, req.HasDuration, req.DurationMinutes)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	if err := h.service.AddAlarm(r.Context(), a); err != nil {
		writeStoreError(w, err)

		return
	}

	writeJSON(w, http.StatusCreated, newAlarmView(a, h.service.Now()))
}

func (h *handler) toggleAlarm(w http.ResponseWriter, r *http.Request) {
	var req toggleAlarmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	if req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errEnabledRequired)

		return
	}

	if err := h.service.ToggleAlarm(r.Context(), chi.URLParam(r, "id"), *req.Enabled); err != nil {
		writeStoreError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) deleteAlarm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteAlarm(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) getAlert(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newAlertView(h.service.CurrentAlert(), h.service.Now()))
}

func (h *handler) snoozeAlarm(w http.ResponseWriter, r *http.Request) {
	snoozed, err := h.service.SnoozeAlarm(r.Context())
	if err != nil {
		writeStoreError(w, err)

		return
	}

	view := snoozeView{}
	if snoozed != nil {
		view.Alarm = newAlarmView(snoozed, h.service.Now())
	}

	writeJSON(w, http.StatusOK, view)
}

func (h *handler) dismissAlarm(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DismissAlarm(r.Context()); err != nil {
		writeStoreError(w, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

var errEnabledRequired = errors.New("enabled is required")

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorView{Error: err.Error()})
}

// writeStoreError maps store errors to HTTP status codes.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, clock.ErrDuplicateID):
		writeError(w, http.StatusConflict, err)
	case errors.Is(err, clock.ErrNilAlarm):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeJSON(w, http.StatusInternalServerError, errorView{Error: "unable to persist alarms"})
	}
}

// requestLogger logs every request with its id, status, size and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithKV(logger.WithName(r.Context(), "http"), "request_id", middleware.GetReqID(r.Context()))
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		started := time.Now()

		defer func() {
			logger.InfoKV(ctx, r.Method+" "+r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(started).String(),
			)
		}()

		next.ServeHTTP(ww, r.WithContext(ctx))
	})
}
