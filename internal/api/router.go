package api

import (
	"context"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"aerogate/internal/access"
	"aerogate/internal/models"
	"aerogate/internal/registry"
)

// DefaultMaxUpload caps capture uploads when Deps.MaxUploadBytes is unset.
const DefaultMaxUpload = 10 << 20

// Registrar enrolls members.
type Registrar interface {
	Register(ctx context.Context, req access.RegisterRequest) (access.RegisterResult, error)
}

// AccessLog lists access records.
type AccessLog interface {
	Access(ctx context.Context, q registry.AccessQuery) ([]models.AccessRecord, error)
}

// Deps is everything the router serves from.
type Deps struct {
	Registrar      Registrar
	Verifier       access.Verifier
	Log            AccessLog
	Logger         *zap.Logger
	AllowedOrigins []string
	MaxUploadBytes int64
}

type server struct {
	registrar Registrar
	verifier  access.Verifier
	accessLog AccessLog
	log       *zap.Logger
	maxUpload int64
}

// NewRouter builds the HTTP handler for the lounge API.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &server{
		registrar: d.Registrar,
		verifier:  d.Verifier,
		accessLog: d.Log,
		log:       logger.Named("api"),
		maxUpload: d.MaxUploadBytes,
	}
	if s.maxUpload <= 0 {
		s.maxUpload = DefaultMaxUpload
	}

	r := mux.NewRouter()
	r.Use(requestLogger(s.log))

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.Write([]byte("OK")) }).Methods(http.MethodGet)
	r.HandleFunc("/time", GetTimeHandler).Methods(http.MethodGet)

	a := r.PathPrefix("/api").Subrouter()
	a.HandleFunc("/register", s.RegisterHandler).Methods(http.MethodPost)
	a.HandleFunc("/verify", s.VerifyHandler).Methods(http.MethodPost)
	a.HandleFunc("/logs", s.LogsHandler).Methods(http.MethodGet)
	a.HandleFunc("/logs/summary", s.SummaryHandler).Methods(http.MethodGet)
	a.HandleFunc("/scan/states", ScanStatesHandler).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(d.AllowedOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", requestIDHeader}),
		handlers.ExposedHeaders([]string{requestIDHeader}),
		handlers.AllowCredentials(),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(s.log)),
		handlers.PrintRecoveryStack(true),
	)
	return recovery(cors(r))
}
