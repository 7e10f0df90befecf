package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/portwatch/internal/extension"
	apimw "github.com/hamed0406/portwatch/internal/httpapi/middleware"
)

type Server struct {
	Logger    *zap.Logger
	Ext       *extension.Extension
	AdminKeys []string
}

func NewServer(l *zap.Logger, ext *extension.Extension, adminKeys []string) *Server {
	return &Server{Logger: l, Ext: ext, AdminKeys: adminKeys}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
		AllowedHeaders: []string{"Authorization", "X-API-Key", "Content-Type"},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/checkers", s.handleListCheckers)
	r.With(apimw.RequireKey(s.AdminKeys)).Post("/api/reconcile", s.handleReconcile)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.Ext.FastCheck()
	code := http.StatusOK
	if st != extension.StatusOK {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, map[string]any{"status": st})
}

func (s *Server) handleListCheckers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Ext.Registry.Snapshot())
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	started, err := s.Ext.Query(r.Context())
	body := map[string]any{
		"started": started,
		"live":    s.Ext.Registry.Live(),
	}
	if err != nil {
		s.Logger.Warn("manual_reconcile_error", zap.Error(err))
		body["error"] = err.Error()
	}
	s.Logger.Info("manual_reconcile", zap.Int("started", started))
	writeJSON(w, http.StatusOK, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
