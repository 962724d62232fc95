package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"sysmon-mqtt/internal/config"
	"sysmon-mqtt/internal/events"
	"sysmon-mqtt/internal/registry"
)

type Server struct {
	http  *http.Server
	cfg   config.WebConfig
	reg   *registry.Store
	evbuf events.Buffer
	log   *zap.Logger
	start time.Time
}

func New(cfg config.WebConfig, reg *registry.Store, evbuf events.Buffer, logger *zap.Logger) *Server {
	s := &Server{
		cfg:   cfg,
		reg:   reg,
		evbuf: evbuf,
		log:   logger,
		start: time.Now(),
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler returns the routed API with CORS and access logging.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/sensors", s.handleSensors).Methods(http.MethodGet)
	api.HandleFunc("/sensors/{name:.+}", s.handleSensor).Methods(http.MethodGet)
	api.HandleFunc("/events", s.handleEvents).Methods(http.MethodGet)

	access := zap.NewStdLog(s.log.Named("http")).Writer()
	return handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
		handlers.MaxAge(600),
	)(handlers.CombinedLoggingHandler(access, r))
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("status api listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shCtx); err != nil {
			s.log.Error("status api shutdown error", zap.Error(err))
		} else {
			s.log.Info("status api stopped")
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
