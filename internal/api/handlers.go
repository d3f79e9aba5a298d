package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/alevsk/iamgraph/internal/analyzer"
	"github.com/alevsk/iamgraph/internal/builder"
	"github.com/alevsk/iamgraph/internal/export"
	"github.com/alevsk/iamgraph/internal/logger"
)

// validate enforces the "required" tags on decoded request bodies below.
// A single instance is reused across requests per the library's own
// recommendation that Validate caches struct reflection data internally.
var validate = validator.New()

// healthCheck reports liveness; it never depends on a graph being built.
func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// buildGraphRequest names a collected-data source the way the loader
// resolves it: a local path, a URL, or a directory of fragments.
type buildGraphRequest struct {
	Source string `json:"source" validate:"required"`
}

// buildGraph loads the collected-data document named in the request body
// and replaces the server's in-memory graph with the result.
func (s *Server) buildGraph(w http.ResponseWriter, r *http.Request) {
	var req buildGraphRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	doc, err := s.loader.Load(r.Context(), req.Source)
	if err != nil {
		logger.Error().Err(err).Str("source", req.Source).Msg("api: failed to load collected-data document")
		writeError(w, http.StatusBadGateway, "api: "+err.Error())
		return
	}

	g, meta := builder.Build(doc, s.builderOpts)
	s.setGraph(g, meta)

	writeJSON(w, http.StatusOK, meta)
}

// exportGraph renders the current graph as JSON, YAML or a table depending
// on the ?format= query parameter (json by default).
func (s *Server) exportGraph(w http.ResponseWriter, r *http.Request) {
	g, _, _ := s.snapshot()
	s.renderExport(w, r, export.FromGraph(g))
}

// analyze runs the Analyzer over the current graph, optionally persisting
// the run via the configured store, and renders the AnalysisResult.
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	g, _, _ := s.snapshot()
	result := analyzer.New(s.analyzerCfg).Run(g)

	if err := s.store.SaveRun(r.Context(), result); err != nil {
		logger.Warn().Err(err).Str("run_id", result.RunID).Msg("api: failed to persist analysis run")
	}

	s.renderExport(w, r, export.FromAnalysis(result))
}

// getRun retrieves a previously persisted AnalysisResult by run ID.
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID := mux.Vars(r)["runID"]
	result, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "api: "+err.Error())
		return
	}
	if result == nil {
		writeError(w, http.StatusNotFound, "api: no run "+runID)
		return
	}
	s.renderExport(w, r, export.FromAnalysis(result))
}

// shortestPath answers GET /query/shortest-path?source=&target=
func (s *Server) shortestPath(w http.ResponseWriter, r *http.Request) {
	source, target, ok := s.sourceTarget(w, r)
	if !ok {
		return
	}
	_, engine, _ := s.snapshot()
	path := engine.FindShortestPath(source, target)
	if path == nil {
		writeError(w, http.StatusNotFound, "api: no path from "+source+" to "+target)
		return
	}
	writeJSON(w, http.StatusOK, path)
}

// allPaths answers GET /query/all-paths?source=&target=&max_length=
func (s *Server) allPaths(w http.ResponseWriter, r *http.Request) {
	source, target, ok := s.sourceTarget(w, r)
	if !ok {
		return
	}
	maxLength := 0
	if v := r.URL.Query().Get("max_length"); v != "" {
		maxLength, _ = strconv.Atoi(v)
	}
	_, engine, _ := s.snapshot()
	writeJSON(w, http.StatusOK, engine.FindAllPaths(source, target, maxLength))
}

// permissions answers GET /query/permissions?node=
func (s *Server) permissions(w http.ResponseWriter, r *http.Request) {
	node := r.URL.Query().Get("node")
	if node == "" {
		writeError(w, http.StatusBadRequest, "api: node is required")
		return
	}
	_, engine, _ := s.snapshot()

	g, _, _ := s.snapshot()
	if s.cache != nil {
		if cached, ok := s.cache.GetPermissions(r.Context(), graphVersion(g), node); ok {
			writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	perms := engine.GetNodePermissions(node)
	s.cache.SetPermissions(r.Context(), graphVersion(g), node, perms)
	writeJSON(w, http.StatusOK, perms)
}

// canAccess answers GET /query/can-access?principal=&resource=
func (s *Server) canAccess(w http.ResponseWriter, r *http.Request) {
	principal := r.URL.Query().Get("principal")
	resource := r.URL.Query().Get("resource")
	if principal == "" || resource == "" {
		writeError(w, http.StatusBadRequest, "api: principal and resource are required")
		return
	}

	g, engine, _ := s.snapshot()
	version := graphVersion(g)
	if s.cache != nil {
		if reachable, ok := s.cache.GetAccess(r.Context(), version, principal, resource); ok {
			writeJSON(w, http.StatusOK, map[string]bool{"reachable": reachable})
			return
		}
	}

	reachable := engine.CanAccessResource(principal, resource)
	s.cache.SetAccess(r.Context(), version, principal, resource, reachable)
	writeJSON(w, http.StatusOK, map[string]bool{"reachable": reachable})
}

type simulateBindingRequest struct {
	Member   string `json:"member" validate:"required"`
	Role     string `json:"role" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}

// simulateAdd answers POST /simulate/add-binding
func (s *Server) simulateAdd(w http.ResponseWriter, r *http.Request) {
	var req simulateBindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, engine, _ := s.snapshot()
	writeJSON(w, http.StatusOK, engine.SimulateBindingAddition(req.Member, req.Role, req.Resource, s.builderOpts))
}

// simulateRemove answers POST /simulate/remove-binding
func (s *Server) simulateRemove(w http.ResponseWriter, r *http.Request) {
	var req simulateBindingRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, engine, _ := s.snapshot()
	writeJSON(w, http.StatusOK, engine.SimulateBindingRemoval(req.Member, req.Role, req.Resource, s.builderOpts))
}

type simulateRoleChangeRequest struct {
	Member   string `json:"member" validate:"required"`
	OldRole  string `json:"old_role" validate:"required"`
	NewRole  string `json:"new_role" validate:"required"`
	Resource string `json:"resource" validate:"required"`
}

// simulateRoleChange answers POST /simulate/role-change
func (s *Server) simulateRoleChange(w http.ResponseWriter, r *http.Request) {
	var req simulateRoleChangeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	_, engine, _ := s.snapshot()
	writeJSON(w, http.StatusOK, engine.SimulateRoleChange(req.Member, req.OldRole, req.NewRole, req.Resource, s.builderOpts))
}

func (s *Server) sourceTarget(w http.ResponseWriter, r *http.Request) (source, target string, ok bool) {
	source = r.URL.Query().Get("source")
	target = r.URL.Query().Get("target")
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, "api: source and target are required")
		return "", "", false
	}
	return source, target, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "api: invalid request body: "+err.Error())
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "api: "+err.Error())
		return false
	}
	return true
}

// renderExport writes v through the export.Formatter named by ?format=,
// defaulting to JSON.
func (s *Server) renderExport(w http.ResponseWriter, r *http.Request, v interface{}) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}
	typ, err := export.ParseType(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "api: "+err.Error())
		return
	}
	formatter, err := export.NewFormatter(typ)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "api: "+err.Error())
		return
	}
	body, err := formatter.Format(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "api: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(typ))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(body))
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error().Err(err).Msg("api: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// graphVersion keys cache entries to the graph they were computed against,
// invalidating stale cache hits across a /graph/build without the cache
// needing any explicit flush.
func graphVersion(g interface{ NodeCount() int }) string {
	if g == nil {
		return "none"
	}
	return strconv.Itoa(g.NodeCount())
}

func contentTypeFor(t export.Type) string {
	switch t {
	case export.TypeYAML:
		return "application/yaml"
	case export.TypeTable:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}
