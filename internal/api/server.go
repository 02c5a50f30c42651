package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/utakatalp/league-predictor/internal/league"
	"github.com/utakatalp/league-predictor/internal/predictor"
	"github.com/utakatalp/league-predictor/internal/telemetry"
)

// Repository is the write side of the results store used by the edit endpoints.
type Repository interface {
	Matches(ctx context.Context) ([]league.MatchRecord, error)
	InsertMatch(ctx context.Context, m *league.MatchRecord) error
	UpdateMatch(ctx context.Context, m league.MatchRecord) error
	DeleteMatch(ctx context.Context, id int64) error
	ClearMatches(ctx context.Context) error

	Fixtures(ctx context.Context) ([]league.FixtureRecord, error)
	InsertFixture(ctx context.Context, f *league.FixtureRecord) error
	UpdateFixture(ctx context.Context, f league.FixtureRecord) error
	DeleteFixture(ctx context.Context, id int64) error
	ClearFixtures(ctx context.Context) error

	SaveStoredStats(ctx context.Context, t league.TeamStats) error
	DeleteStoredStats(ctx context.Context, team string) error
}

type Server struct {
	addr       string
	service    *predictor.Service
	repo       Repository
	httpServer *http.Server
}

func NewServer(addr string, service *predictor.Service, repo Repository) *Server {
	s := &Server{addr: addr, service: service, repo: repo}
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// statistics and predictions
	api.HandleFunc("/stats", s.handleGetStats).Methods("GET")
	api.HandleFunc("/stats/{team}", s.handleGetTeamStats).Methods("GET")
	api.HandleFunc("/predict", s.handlePredict).Methods("GET")
	api.HandleFunc("/predictions", s.handlePredictions).Methods("GET")
	api.HandleFunc("/predictions/top", s.handleTop).Methods("GET")

	// results
	api.HandleFunc("/matches", s.handleListMatches).Methods("GET")
	api.HandleFunc("/matches", s.handleCreateMatch).Methods("POST")
	api.HandleFunc("/matches", s.handleClearMatches).Methods("DELETE")
	api.HandleFunc("/matches/{id:[0-9]+}", s.handleUpdateMatch).Methods("PUT")
	api.HandleFunc("/matches/{id:[0-9]+}", s.handleDeleteMatch).Methods("DELETE")

	// fixtures
	api.HandleFunc("/fixtures", s.handleListFixtures).Methods("GET")
	api.HandleFunc("/fixtures", s.handleCreateFixture).Methods("POST")
	api.HandleFunc("/fixtures", s.handleClearFixtures).Methods("DELETE")
	api.HandleFunc("/fixtures/{id:[0-9]+}", s.handleUpdateFixture).Methods("PUT")
	api.HandleFunc("/fixtures/{id:[0-9]+}", s.handleDeleteFixture).Methods("DELETE")

	// stored team stats override
	api.HandleFunc("/team-stats/{team}", s.handleSaveStoredStats).Methods("PUT")
	api.HandleFunc("/team-stats/{team}", s.handleDeleteStoredStats).Methods("DELETE")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})
	return c.Handler(router)
}

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	telemetry.Infof("[api] listening on %s", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
