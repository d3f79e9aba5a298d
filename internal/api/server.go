// Package api exposes the graph build/analyze/query/simulate operations
// over HTTP via a gorilla/mux router, with Prometheus metrics and optional
// bearer auth layered on top.
package api

import (
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/cache"
	"github.com/alevsk/iamgraph/internal/config"
	"github.com/alevsk/iamgraph/internal/graph"
	"github.com/alevsk/iamgraph/internal/loader"
	"github.com/alevsk/iamgraph/internal/logger"
	"github.com/alevsk/iamgraph/internal/query"
	"github.com/alevsk/iamgraph/internal/store"
)

// Server serves the graph pipeline over HTTP. The current graph is held in
// memory behind mu; a build request replaces it atomically, every other
// request reads the snapshot under a read lock.
type Server struct {
	router *mux.Router
	cfg    *config.Config

	builderOpts *builder.Options
	analyzerCfg analyzer.Config
	loader      *loader.Loader
	store       *store.Store
	cache       *cache.Cache
	metrics     *metrics

	mu        sync.RWMutex
	graph     *graph.Graph
	buildMeta *builder.Metadata
	engine    *query.Engine
}

// NewServer wires a Server from cfg plus the optional persistence and
// caching backends st/ch (either may be nil, per their own Open semantics).
func NewServer(cfg *config.Config, st *store.Store, ch *cache.Cache) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		cfg:         cfg,
		builderOpts: builder.DefaultOptions(),
		analyzerCfg: analyzer.DefaultConfig(),
		loader:      newLoaderFromConfig(cfg),
		store:       st,
		cache:       ch,
		metrics:     newMetrics(),
	}
	if len(cfg.Analysis.TrustedDomains) > 0 {
		s.builderOpts.TrustedDomains = cfg.Analysis.TrustedDomains
	}
	if cfg.Analysis.MaxPathLength > 0 {
		s.analyzerCfg.MaxPathLength = cfg.Analysis.MaxPathLength
	}
	if cfg.Analysis.MaxPathsPerPair > 0 {
		s.analyzerCfg.MaxPathsPerPair = cfg.Analysis.MaxPathsPerPair
	}
	s.routes()
	return s
}

// routes registers every handler, wrapping the graph-dependent ones with
// requireGraph and the whole router with auth and metrics middleware.
func (s *Server) routes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	api.HandleFunc("/graph/build", s.buildGraph).Methods(http.MethodPost)
	api.HandleFunc("/graph", s.requireGraph(s.exportGraph)).Methods(http.MethodGet)
	api.HandleFunc("/analyze", s.requireGraph(s.analyze)).Methods(http.MethodPost)
	api.HandleFunc("/query/shortest-path", s.requireGraph(s.shortestPath)).Methods(http.MethodGet)
	api.HandleFunc("/query/all-paths", s.requireGraph(s.allPaths)).Methods(http.MethodGet)
	api.HandleFunc("/query/permissions", s.requireGraph(s.permissions)).Methods(http.MethodGet)
	api.HandleFunc("/query/can-access", s.requireGraph(s.canAccess)).Methods(http.MethodGet)
	api.HandleFunc("/simulate/add-binding", s.requireGraph(s.simulateAdd)).Methods(http.MethodPost)
	api.HandleFunc("/simulate/remove-binding", s.requireGraph(s.simulateRemove)).Methods(http.MethodPost)
	api.HandleFunc("/simulate/role-change", s.requireGraph(s.simulateRoleChange)).Methods(http.MethodPost)
	api.HandleFunc("/runs/{runID}", s.requireGraph(s.getRun)).Methods(http.MethodGet)

	s.router.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	s.router.Use(s.metrics.middleware)
	s.router.Use(s.authMiddleware)
}

// Start runs the HTTP server on addr, blocking until it exits or errors.
func (s *Server) Start(addr string) error {
	logger.Info().Str("addr", addr).Msg("api: starting server")
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) snapshot() (*graph.Graph, *query.Engine, *builder.Metadata) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph, s.engine, s.buildMeta
}

func (s *Server) setGraph(g *graph.Graph, meta *builder.Metadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	s.buildMeta = meta
	s.engine = query.New(g, s.analyzerCfg)
}

// requireGraph rejects handlers that need a built graph with 409 Conflict
// until the first /graph/build call succeeds.
func (s *Server) requireGraph(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g, _, _ := s.snapshot(); g == nil {
			writeError(w, http.StatusConflict, "api: no graph built yet, POST /api/v1/graph/build first")
			return
		}
		next(w, r)
	}
}

// newLoaderFromConfig substitutes loader.DefaultOptions for any field the
// config left at its zero value.
func newLoaderFromConfig(cfg *config.Config) *loader.Loader {
	opts := loader.DefaultOptions()
	if cfg.Loader.MaxConcurrency > 0 {
		opts.MaxConcurrency = cfg.Loader.MaxConcurrency
	}
	if cfg.Loader.HTTPTimeout > 0 {
		opts.HTTPTimeout = cfg.Loader.HTTPTimeout
	}
	return loader.New(opts)
}
