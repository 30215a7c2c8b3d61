// Package httpapi exposes prediction and training over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/loan-predictor/internal/core"
	"github.com/mikey/loan-predictor/internal/utils"
	"github.com/mikey/loan-predictor/internal/whitelist"
)

const (
	maxBodyBytes  = 1 << 20
	maxFieldBytes = 256
)

// Predictor produces a decision for one record
type Predictor interface {
	Predict(ctx context.Context, record core.Record) (*core.Prediction, error)
}

// Trainer runs the training pipeline
type Trainer interface {
	Run(ctx context.Context) (*core.TrainingResult, error)
}

// Server is the HTTP serving layer
type Server struct {
	listenAddr    string
	readTimeout   time.Duration
	writeTimeout  time.Duration
	predictor     Predictor
	trainer       Trainer
	origins       *whitelist.Checker
	textProcessor *utils.TextProcessor
	logger        *zap.Logger

	server *http.Server
}

// NewServer creates a new HTTP server
func NewServer(
	listenAddr string,
	readTimeout time.Duration,
	writeTimeout time.Duration,
	predictor Predictor,
	trainer Trainer,
	origins *whitelist.Checker,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *Server {
	return &Server{
		listenAddr:    listenAddr,
		readTimeout:   readTimeout,
		writeTimeout:  writeTimeout,
		predictor:     predictor,
		trainer:       trainer,
		origins:       origins,
		textProcessor: textProcessor,
		logger:        logger,
	}
}

// Handler returns the routed handler with CORS and access logging applied
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("POST /{$}", s.handlePredict)
	mux.HandleFunc("GET /train", s.handleTrain)
	mux.HandleFunc("POST /train", s.handleTrain)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s.accessLog(s.cors(mux))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.listenAddr, err)
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	s.logger.Info("HTTP server starting", zap.String("address", ln.Addr().String()))

	// Start the server in a goroutine
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	s.logger.Info("HTTP server stopping")
	return s.server.Shutdown(ctx)
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		allowed := origin != "" && s.origins.IsWhitelisted(origin)

		if allowed {
			h := w.Header()
			if s.origins.AllowAll() {
				h.Set("Access-Control-Allow-Origin", "*")
			} else {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
		}

		if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
			if !allowed {
				w.WriteHeader(http.StatusForbidden)
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
