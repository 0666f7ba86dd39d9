package admin

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/example/booking-notifier/internal/common"
	"github.com/example/booking-notifier/internal/directory"
	"github.com/example/booking-notifier/internal/event"
	"github.com/example/booking-notifier/internal/template"
)

var adminRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "admin_requests_total",
	Help: "Admin API requests, by route and status",
}, []string{"route", "status"})

// Server is the administrative surface: template CRUD plus the
// per-user preference pass-through. It owns no state of its own.
type Server struct {
	registry *template.Registry
	store    template.Store
	users    directory.UserDirectory
	prefs    directory.PreferenceWriter
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// NewServer wires the admin handlers. store may be nil when the
// registry is memory-only; prefs may be nil to disable updates.
func NewServer(registry *template.Registry, store template.Store, users directory.UserDirectory, prefs directory.PreferenceWriter, logger zerolog.Logger) *Server {
	return &Server{
		registry: registry,
		store:    store,
		users:    users,
		prefs:    prefs,
		logger:   logger,
		tracer:   otel.Tracer("admin"),
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/templates", s.listTemplates)
	r.Put("/v1/templates", s.putTemplate)
	r.Delete("/v1/templates/{id}", s.deleteTemplate)
	r.Get("/v1/users/{id}/preferences", s.getPreferences)
	r.Put("/v1/users/{id}/preferences", s.putPreferences)
	return r
}

func (s *Server) putTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "admin.put_template")
	defer span.End()

	var tpl template.Template
	if err := json.NewDecoder(r.Body).Decode(&tpl); err != nil {
		s.respondErr(ctx, w, "put_template", http.StatusBadRequest, err)
		return
	}

	if err := s.registry.Put(&tpl); err != nil {
		var verr *template.ValidationError
		if errors.As(err, &verr) {
			adminRequests.WithLabelValues("put_template", "invalid").Inc()
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnprocessableEntity)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error":   verr.Reason,
				"missing": verr.Missing,
			})
			return
		}
		s.respondErr(ctx, w, "put_template", http.StatusInternalServerError, err)
		return
	}

	if s.store != nil {
		if err := s.store.Save(ctx, &tpl); err != nil {
			// The registry already accepted the write; surface the
			// persistence failure so the operator retries.
			s.respondErr(ctx, w, "put_template", http.StatusInternalServerError, err)
			return
		}
	}

	adminRequests.WithLabelValues("put_template", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) deleteTemplate(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "admin.delete_template")
	defer span.End()

	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondErr(ctx, w, "delete_template", http.StatusBadRequest, errors.New("id path param required"))
		return
	}
	s.registry.Delete(id)
	if s.store != nil {
		if err := s.store.Delete(ctx, id); err != nil {
			s.respondErr(ctx, w, "delete_template", http.StatusInternalServerError, err)
			return
		}
	}
	adminRequests.WithLabelValues("delete_template", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

// listTemplates returns everything, or resolves a single template when
// the scope query parameters are present.
func (s *Server) listTemplates(w http.ResponseWriter, r *http.Request) {
	_, span := s.tracer.Start(r.Context(), "admin.list_templates")
	defer span.End()

	q := r.URL.Query()
	eventType := q.Get("event_type")
	if eventType != "" {
		tpl := s.registry.Get(eventType, event.Channel(q.Get("channel")), q.Get("language"), q.Get("program_id"))
		if tpl == nil {
			adminRequests.WithLabelValues("list_templates", "miss").Inc()
			http.Error(w, "no matching template", http.StatusNotFound)
			return
		}
		adminRequests.WithLabelValues("list_templates", "ok").Inc()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(tpl)
		return
	}

	adminRequests.WithLabelValues("list_templates", "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(s.registry.All())
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "admin.get_preferences")
	defer span.End()

	id := chi.URLParam(r, "id")
	rcpt, err := s.users.GetUser(ctx, id)
	if err != nil {
		s.respondErr(ctx, w, "get_preferences", http.StatusBadGateway, err)
		return
	}
	if rcpt == nil {
		adminRequests.WithLabelValues("get_preferences", "miss").Inc()
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	adminRequests.WithLabelValues("get_preferences", "ok").Inc()
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(rcpt.Preferences)
}

func (s *Server) putPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.tracer.Start(r.Context(), "admin.put_preferences")
	defer span.End()

	if s.prefs == nil {
		s.respondErr(ctx, w, "put_preferences", http.StatusNotImplemented, errors.New("preference updates not configured"))
		return
	}
	id := chi.URLParam(r, "id")
	var prefs directory.Preferences
	if err := json.NewDecoder(r.Body).Decode(&prefs); err != nil {
		s.respondErr(ctx, w, "put_preferences", http.StatusBadRequest, err)
		return
	}
	if err := s.prefs.UpdatePreferences(ctx, id, prefs); err != nil {
		s.respondErr(ctx, w, "put_preferences", http.StatusBadGateway, err)
		return
	}
	adminRequests.WithLabelValues("put_preferences", "ok").Inc()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondErr(ctx context.Context, w http.ResponseWriter, route string, status int, err error) {
	logger := common.WithContext(ctx, s.logger)
	logger.Error().Err(err).Str("route", route).Int("status", status).Msg("admin handler failed")
	adminRequests.WithLabelValues(route, "error").Inc()
	http.Error(w, err.Error(), status)
}
