package serve

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/healthsignals/mindgauge/config"
	"github.com/healthsignals/mindgauge/pkg/errors"
	"github.com/healthsignals/mindgauge/pkg/log"
	"github.com/healthsignals/mindgauge/store"
)

// serverErrorMessage is the only detail a 500 response carries; internal
// failure specifics stay in the logs.
const serverErrorMessage = "Server error occurred"

// Server is the inference HTTP server.
type Server struct {
	cfg      *config.Serve
	accessor *store.Accessor
	logger   *slog.Logger
}

// NewServer builds a server over the given accessor. The model is not loaded
// here; the first predict request triggers the load.
func NewServer(cfg *config.Serve, accessor *store.Accessor) *Server {
	return &Server{
		cfg:      cfg,
		accessor: accessor,
		logger:   log.GetLoggerWithName("serve"),
	}
}

// Router wires the routes and middleware.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc(s.cfg.HealthRoute, s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc(s.cfg.PredictRoute, s.handlePredict).Methods(http.MethodPost)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{s.logger}),
	)(handlers.CombinedLoggingHandler(accessLogWriter{s.logger}, r))
}

// ListenAndServe blocks serving requests until the listener fails.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("inference server listening",
		"addr", addr,
		"predict_route", s.cfg.PredictRoute,
		"health_route", s.cfg.HealthRoute)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r.Header.Get("Content-Type")) {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{
			"error": "Content-Type must be application/json",
		})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	rows, err := parseInstances(body)
	if err != nil {
		s.writeRequestError(w, err)
		return
	}

	model, err := s.accessor.Model()
	if err != nil {
		s.writeServerError(w, err)
		return
	}

	prediction, err := predict(model, rows)
	if err != nil {
		// A row that passed parsing but fails canonicalization is still
		// the client's input.
		var clientErr *errors.ClientInputError
		if errors.As(err, &clientErr) {
			s.writeRequestError(w, err)
			return
		}
		s.writeServerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"prediction": prediction,
	})
}

// writeRequestError maps client input violations to a 400 with the concrete
// reason, so callers can fix their payload.
func (s *Server) writeRequestError(w http.ResponseWriter, err error) {
	s.logger.Warn("request rejected", log.ErrAttr(err))
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// writeServerError maps everything else to a 500 with a fixed message.
func (s *Server) writeServerError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", log.ErrAttr(err))
	writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"error":   serverErrorMessage,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func isJSONContentType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json"
}

// recoveryLogger adapts the slog logger to gorilla's recovery middleware.
type recoveryLogger struct {
	logger *slog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error("handler panicked", "panic", fmt.Sprint(v...))
}

// accessLogWriter feeds gorilla's Apache-format access lines through the
// JSON logger, keeping stdout a single ingestable stream.
type accessLogWriter struct {
	logger *slog.Logger
}

func (w accessLogWriter) Write(p []byte) (int, error) {
	w.logger.Info("request handled", "http_access", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
