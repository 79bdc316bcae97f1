package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/safeecho/docs/swagger" // registers the OpenAPI doc
	"github.com/raysh454/safeecho/internal/alerts"
	"github.com/raysh454/safeecho/internal/detector"
	"github.com/raysh454/safeecho/internal/extract"
	"github.com/raysh454/safeecho/internal/logging"
)

// Detector is the scoring surface the API exposes. *detector.Engine
// satisfies it.
type Detector interface {
	ClassifyText(ctx context.Context, text string) (*detector.TextResult, error)
	ClassifyAudio(ctx context.Context, transcript string, features map[string]any) (*detector.AudioResult, error)
	Ready() bool
}

// AlertFeed is the read side of the alert store. *alerts.Store satisfies it.
type AlertFeed interface {
	List() []alerts.Alert
	Clear()
	Subscribe(buffer int) (<-chan alerts.Alert, func())
}

// Server is the HTTP + WebSocket API surface for SafeEcho.
type Server struct {
	cfg      Config
	detector Detector
	alerts   AlertFeed
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// NewServer wires the routes over an existing detector and alert feed.
func NewServer(cfg Config, det Detector, feed AlertFeed, logger logging.Logger) (*Server, error) {
	if det == nil {
		return nil, errors.New("server: nil detector")
	}
	if feed == nil {
		return nil, errors.New("server: nil alert feed")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultConfig().MaxBodyBytes
	}

	s := &Server{
		cfg:      cfg,
		detector: det,
		alerts:   feed,
		router:   chi.NewRouter(),
		logger:   logger.With(logging.Component("server")),
		upgrader: websocket.Upgrader{
			// The dashboard is served from arbitrary origins during development.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.corsMiddleware)

	// CORS preflight
	r.Options("/api/analyze/text", s.optionsHandler("POST"))
	r.Options("/api/analyze/audio", s.optionsHandler("POST"))
	r.Options("/api/alerts", s.optionsHandler("GET"))
	r.Options("/api/alerts/clear", s.optionsHandler("POST"))

	r.Get("/api/status", s.handleStatus)

	// Analysis
	r.Post("/api/analyze/text", s.handleAnalyzeText)
	r.Post("/api/analyze/audio", s.handleAnalyzeAudio)

	// Alerts
	r.Get("/api/alerts", s.handleListAlerts)
	r.Post("/api/alerts/clear", s.handleClearAlerts)
	r.Get("/ws/alerts", s.handleAlertsWS)

	// API docs
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	if s.cfg.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.cfg.StaticDir)))
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
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

	s.logger.Info("http_request", fields...)

	if r.Body != nil && r.Method == http.MethodPost {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
		if bodyBytes, err := io.ReadAll(r.Body); err == nil {
			s.logger.Debug("http_request_body", logging.F("path", r.URL.Path), logging.F("body", string(bodyBytes)))
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))
		} else {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
	}

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      0, // the alert feed is a long-lived websocket
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

// writeDetectorError maps engine failures onto HTTP status codes.
func (s *Server) writeDetectorError(w http.ResponseWriter, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, detector.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
		s.logger.Warn(op+": model unavailable")
	case errors.Is(err, detector.ErrInvalidLabelSet):
		s.logger.Error(op+": invalid classifier label set", logging.Err(err))
	case errors.Is(err, context.Canceled):
		s.logger.Info(op+": request canceled")
	default:
		s.logger.Error(op, logging.Err(err))
	}
	writeError(w, status, err.Error())
}

// --- HTTP handlers ---

// handleStatus godoc
// @Summary Service status
// @Tags status
// @Produce json
// @Success 200 {object} StatusResponse
// @Router /api/status [get]
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, StatusResponse{
		Status:      "active",
		Guardian:    "monitoring",
		ModelLoaded: s.detector.Ready(),
	})
}

// handleAnalyzeText godoc
// @Summary Classify a text message
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeTextRequest true "Message to classify"
// @Success 200 {object} detector.TextResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/analyze/text [post]
func (s *Server) handleAnalyzeText(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeTextRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding analyze text body", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Text == "" {
		writeError(w, http.StatusBadRequest, "No text provided")
		return
	}

	text := body.Text
	switch body.Source {
	case "email", "html":
		plain, err := extract.PlainText(body.Text)
		if err != nil {
			s.logger.Warn("extracting text from markup", logging.Err(err), logging.F("source", body.Source))
			writeError(w, http.StatusBadRequest, "could not parse markup")
			return
		}
		if plain == "" {
			writeError(w, http.StatusBadRequest, "No text provided")
			return
		}
		text = plain
	}

	res, err := s.detector.ClassifyText(r.Context(), text)
	if err != nil {
		s.writeDetectorError(w, "analyzing text", err)
		return
	}
	s.logger.Info("analyzed text",
		logging.F("source", body.Source),
		logging.F("is_spam", res.IsSpam),
		logging.F("score", res.Score),
	)
	writeJSON(w, http.StatusOK, res)
}

// handleAnalyzeAudio godoc
// @Summary Classify a call transcript and voice
// @Tags analyze
// @Accept json
// @Produce json
// @Param request body AnalyzeAudioRequest true "Call to classify"
// @Success 200 {object} detector.AudioResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Router /api/analyze/audio [post]
func (s *Server) handleAnalyzeAudio(w http.ResponseWriter, r *http.Request) {
	var body AnalyzeAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.logger.Warn("decoding analyze audio body", logging.Err(err))
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if body.Transcript == "" {
		writeError(w, http.StatusBadRequest, "No transcript provided")
		return
	}

	res, err := s.detector.ClassifyAudio(r.Context(), body.Transcript, body.AudioFeatures)
	if err != nil {
		s.writeDetectorError(w, "analyzing audio", err)
		return
	}
	s.logger.Info("analyzed audio",
		logging.F("is_scam", res.IsScam),
		logging.F("is_deepfake", res.IsDeepfake),
	)
	writeJSON(w, http.StatusOK, res)
}

// handleListAlerts godoc
// @Summary List alerts, most recent first
// @Tags alerts
// @Produce json
// @Success 200 {array} alerts.Alert
// @Router /api/alerts [get]
func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	list := s.alerts.List()
	if list == nil {
		list = []alerts.Alert{}
	}
	writeJSON(w, http.StatusOK, list)
}

// handleClearAlerts godoc
// @Summary Remove all alerts
// @Tags alerts
// @Produce json
// @Success 200 {object} ClearedResponse
// @Router /api/alerts/clear [post]
func (s *Server) handleClearAlerts(w http.ResponseWriter, r *http.Request) {
	s.alerts.Clear()
	s.logger.Info("cleared alerts")
	writeJSON(w, http.StatusOK, ClearedResponse{Status: "cleared"})
}

// WebSockets

const (
	alertFeedBuffer = 32
	wsWriteWait     = 10 * time.Second
	wsPingPeriod    = 30 * time.Second
)

// handleAlertsWS streams every alert recorded after the connection opens.
func (s *Server) handleAlertsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Err(err))
		return
	}
	defer conn.Close()

	feed, cancel := s.alerts.Subscribe(alertFeedBuffer)
	defer cancel()

	s.logger.Info("alert feed subscriber connected", logging.F("remote", r.RemoteAddr))
	defer s.logger.Info("alert feed subscriber disconnected", logging.F("remote", r.RemoteAddr))

	// Drain client frames so close and pong control messages are processed.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingPeriod)
	defer ping.Stop()

	for {
		select {
		case <-closed:
			return
		case <-r.Context().Done():
			return
		case a, ok := <-feed:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(a); err != nil {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return
			}
		}
	}
}
