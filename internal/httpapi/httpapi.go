package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/packtrack/packtrack/internal/application/service"
	"github.com/packtrack/packtrack/internal/cache"
	"github.com/packtrack/packtrack/internal/domain"
	"github.com/packtrack/packtrack/internal/integrations/ups"
	"github.com/packtrack/packtrack/internal/observability"
)

//go:generate mockgen -source internal/httpapi/httpapi.go -destination=internal/httpapi/httpapi_mock_test.go -package=httpapi

const (
	defaultPage  = 1
	defaultLimit = 25
	maxLimit     = 100
)

type Service interface {
	Orders(ctx context.Context, page, limit int) (cache.PageResult, service.ListStats, error)
	Trackable(ctx context.Context, page, limit int) (cache.PageResult, service.ListStats, error)
	SyncOrders(ctx context.Context) (int, error)
	RefreshOne(ctx context.Context, trackingNumber string) (domain.TrackingRecord, error)
	TrackingURL(trackingNumber string) string
	Health() service.HealthInfo
}

type Server struct {
	service Service
	router  chi.Router
	logger  *zap.Logger
	metrics observability.Metrics
}

func New(svc Service, logger *zap.Logger, metrics observability.Metrics) *Server {
	s := &Server{
		service: svc,
		logger:  logger,
		metrics: metrics,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		ServerTimingApp(s.metrics),
	)

	r.Get("/", s.health)
	r.Get("/orders", s.listOrders)
	r.Get("/tracking", s.listTracking)
	r.Post("/sync/orders", s.syncOrders)
	r.Post("/tracking/single", s.refreshSingle)
	r.Get("/{trackingID}", s.lookupTracking)

	s.router = r
}

type listResponse struct {
	Data       []domain.MergedRecord `json:"data"`
	Total      int                   `json:"total"`
	Page       int                   `json:"page"`
	TotalPages int                   `json:"totalPages"`
	LastSync   *time.Time            `json:"lastSync,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.Health())
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	res, st, err := s.service.Orders(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("orders listing failed", zap.Error(err))
		http.Error(w, "service error", http.StatusInternalServerError)
		return
	}
	s.setListHeaders(w, st)
	writeJSON(w, listResponse{
		Data:       res.Data,
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
		LastSync:   nullableTime(st.LastSync),
	})
}

func (s *Server) listTracking(w http.ResponseWriter, r *http.Request) {
	page, limit := pagination(r)

	res, st, err := s.service.Trackable(r.Context(), page, limit)
	if err != nil {
		s.logger.Error("tracking listing failed", zap.Error(err))
		http.Error(w, "service error", http.StatusInternalServerError)
		return
	}
	s.setListHeaders(w, st)
	writeJSON(w, listResponse{
		Data:       res.Data,
		Total:      res.Total,
		Page:       res.Page,
		TotalPages: res.TotalPages,
	})
}

func (s *Server) syncOrders(w http.ResponseWriter, r *http.Request) {
	count, err := s.service.SyncOrders(r.Context())
	if err != nil {
		s.logger.Error("forced sync failed", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		writeJSON(w, map[string]any{"success": false})
		return
	}
	writeJSON(w, map[string]any{"success": true, "count": count})
}

type refreshRequest struct {
	TrackingNumber string `json:"trackingNumber"`
}

func (s *Server) refreshSingle(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(strings.ToLower(ct), "application/json") {
		http.Error(w, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
		return
	}

	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.TrackingNumber) == "" {
		http.Error(w, "trackingNumber is required", http.StatusBadRequest)
		return
	}

	rec, err := s.service.RefreshOne(r.Context(), strings.TrimSpace(req.TrackingNumber))
	if err != nil {
		http.Error(w, "service error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, rec)
}

// lookupTracking redirects carrier-format ids to the carrier's public
// tracking page; anything else gets a placeholder payload.
func (s *Server) lookupTracking(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "trackingID")
	if ups.IsTrackingNumber(id) {
		http.Redirect(w, r, s.service.TrackingURL(id), http.StatusFound)
		return
	}
	writeJSON(w, map[string]any{
		"trackingNumber": id,
		"message":        "not a recognized tracking number",
	})
}

func (s *Server) setListHeaders(w http.ResponseWriter, st service.ListStats) {
	observability.AppendServerTiming(w, "sync", st.SyncMs, "")
	observability.AppendServerTiming(w, "source", 0, string(st.Source))
	w.Header().Set("X-Source", string(st.Source))
	observability.SetIfPos(w, "X-Sync-Time", st.SyncMs)
}

func pagination(r *http.Request) (page, limit int) {
	page = intQuery(r, "page", defaultPage)
	if page < 1 {
		page = defaultPage
	}
	limit = intQuery(r, "limit", 0)
	if limit == 0 {
		limit = intQuery(r, "pageSize", defaultLimit)
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

func intQuery(r *http.Request, key string, def int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

func (s *Server) Handler() http.Handler { return s.router }
