package server

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/raysh454/ethicheck/internal/assessor"
	"github.com/raysh454/ethicheck/internal/banner"
	"github.com/raysh454/ethicheck/internal/benchmark"
	"github.com/raysh454/ethicheck/internal/classifier"
	"github.com/raysh454/ethicheck/internal/logging"
	"github.com/raysh454/ethicheck/internal/monitor"
)

// Pipeline is what the API needs from app.Pipeline.
type Pipeline interface {
	monitor.Pipeline
	Classify(rawURL string) classifier.Classification
}

// Assessor answers remote risk queries. *benchmark.Service implements it.
type Assessor interface {
	Assess(ctx context.Context, q assessor.Query) (assessor.RiskAssessment, error)
}

// Server is the HTTP + WebSocket API surface.
type Server struct {
	cfg      Config
	pipeline Pipeline
	assessor Assessor
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires the routes. assessor may be nil, in which case
// /api/v1/assess answers 404 for every brand.
func NewServer(cfg Config, pipeline Pipeline, a Assessor) (*Server, error) {
	if pipeline == nil {
		return nil, errors.New("server: nil pipeline")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("server")
	}

	r := chi.NewRouter()
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		assessor: a,
		router:   r,
		logger:   logger.With(logging.Component("server")),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.originAllowed}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/v1/assess", s.optionsHandler("POST"))
	r.Options("/api/v1/scan", s.optionsHandler("POST"))
	r.Options("/api/v1/classify", s.optionsHandler("GET"))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/api/v1/assess", s.handleAssess)
	r.Post("/api/v1/scan", s.handleScan)
	r.Get("/api/v1/classify", s.handleClassify)

	r.Get("/ws/navigate", s.handleNavigateWS)
}

func (s *Server) originAllowed(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	return origin == "" || slices.Contains(s.cfg.AllowedOrigins, origin)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.cfg.AllowedOrigins) == 0 {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		} else if origin := r.Header.Get("Origin"); s.originAllowed(r) && origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

func (s *Server) optionsHandler(methods string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Methods", methods)
		w.WriteHeader(http.StatusNoContent)
	}
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fields := []logging.Field{
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}

	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}

	if r.Body != nil && r.Method == http.MethodPost {
		if bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes)); err == nil {
			fields = append(fields, logging.Field{Key: "body", Value: string(bodyBytes)})
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		}
	}

	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

const maxBodyBytes = 1 << 20

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      0, // websocket
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

func (s *Server) authorized(r *http.Request) bool {
	if s.cfg.Token == "" {
		return true
	}
	got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) == 1
}

func (s *Server) handleAssess(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var q assessor.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	q.Brand = strings.TrimSpace(q.Brand)
	if q.Brand == "" {
		writeError(w, http.StatusBadRequest, "missing brand")
		return
	}
	if s.assessor == nil {
		writeError(w, http.StatusNotFound, benchmark.ErrNoVerdict.Error())
		return
	}

	a, err := s.assessor.Assess(r.Context(), q)
	switch {
	case errors.Is(err, benchmark.ErrNoVerdict):
		s.logger.Info("no verdict", logging.Field{Key: "brand", Value: q.Brand})
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Warn("assessing brand", logging.Field{Key: "brand", Value: q.Brand}, logging.Err(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	s.logger.Info("assessed brand",
		logging.Field{Key: "brand", Value: q.Brand},
		logging.Field{Key: "source", Value: string(a.Source)},
		logging.Field{Key: "risk_level", Value: string(a.RiskLevel)})
	writeJSON(w, http.StatusOK, assessor.VerdictFrom(a))
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var body ScanRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if strings.TrimSpace(body.URL) == "" {
		writeError(w, http.StatusBadRequest, "missing url")
		return
	}

	out, err := s.pipeline.Assess(r.Context(), body.URL)
	if err != nil {
		s.logger.Warn("scanning url", logging.Field{Key: "url", Value: body.URL}, logging.Err(err))
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClassify(w http.ResponseWriter, r *http.Request) {
	u := r.URL.Query().Get("url")
	if u == "" {
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}
	writeJSON(w, http.StatusOK, s.pipeline.Classify(u))
}

// WebSockets

func (s *Server) handleNavigateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	surface := &wsSurface{conn: conn}
	presenter := banner.NewPresenter(surface, s.logger)
	mon := monitor.New(s.pipeline, presenter, monitor.Config{}, s.logger)
	s.logger.Info("navigation session opened", logging.Field{Key: "session", Value: mon.Session().ID})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	urls := make(chan string)
	done := make(chan error, 1)
	go func() { done <- mon.Events(ctx, urls) }()

	for {
		var msg NavigateMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "", MessageNavigate:
		case MessageDismiss:
			if err := presenter.Dismiss(msg.ID); err != nil {
				s.logger.Debug("dismiss ignored", logging.Field{Key: "id", Value: msg.ID}, logging.Err(err))
				_ = surface.send(BannerEvent{Type: EventError, ID: msg.ID, Error: "banner not shown"})
			}
			continue
		default:
			_ = surface.send(BannerEvent{Type: EventError, Error: "unknown message type " + msg.Type})
			continue
		}
		if strings.TrimSpace(msg.URL) == "" {
			_ = surface.send(BannerEvent{Type: EventError, Error: "missing url"})
			continue
		}
		select {
		case urls <- msg.URL:
		case <-ctx.Done():
		}
	}
	close(urls)
	<-done
	s.logger.Info("navigation session closed", logging.Field{Key: "session", Value: mon.Session().ID})
}

// wsSurface mounts banners by pushing events to a websocket client.
type wsSurface struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *wsSurface) Mount(b banner.Banner) error {
	return s.send(BannerEvent{Type: EventShow, ID: b.ID, Banner: &b})
}

func (s *wsSurface) Unmount(id string) error {
	return s.send(BannerEvent{Type: EventClear, ID: id})
}

func (s *wsSurface) send(ev BannerEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(ev)
}
