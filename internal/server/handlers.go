package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ziadkadry99/cortex/internal/diagrams"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/store"
)

func (s *Server) registerAPI(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/facts", s.handleFacts)
		r.Get("/search", s.handleSearch)
		r.Get("/lookup", s.handleLookup)
		r.Get("/repos", s.handleRepos)
		r.Get("/repos/{id}", s.handleRepo)
		r.Get("/contracts", s.handleContracts)
		r.Get("/dependencies", s.handleDependencies)
		r.Get("/mappings", s.handleMappings)
		r.Get("/callers", s.handleCallers)
		r.Get("/services/{id}/callers", s.handleServiceCallers)
		r.Get("/decisions", s.handleDecisions)
		r.Get("/glossary", s.handleGlossary)
		r.Get("/tables", s.handleTables)
		r.Get("/changelog", s.handleChangelog)
		r.Get("/graph", s.handleGraph)
		r.Post("/refresh", s.handleRefresh)
	})
}

// entryView is a fact as served over the API, without its embedding.
type entryView struct {
	facts.Entry
	Embedding []float32 `json:"embedding,omitempty"`
}

func views(entries []facts.Entry) []entryView {
	out := make([]entryView, len(entries))
	for i, e := range entries {
		out[i] = entryView{Entry: e}
	}
	return out
}

type hitView struct {
	Score float64   `json:"score"`
	Entry entryView `json:"entry"`
}

func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind, source := facts.Kind(q.Get("kind")), q.Get("source")
	var out []facts.Entry
	for _, e := range s.refresher.Store().Entries() {
		if (kind == "" || e.Kind == kind) && (source == "" || e.Source == source) {
			out = append(out, e)
		}
	}
	writeJSON(w, http.StatusOK, views(out))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := q.Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "q is required")
		return
	}
	limit := s.limit(q.Get("limit"))
	st := s.refresher.Store()

	var hits []store.Hit
	if q.Get("semantic") == "true" {
		if s.semantic == nil {
			writeError(w, http.StatusBadRequest, "semantic search is not enabled")
			return
		}
		results, err := s.semantic.Search(r.Context(), query, limit, nil)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		for _, res := range results {
			if e, ok := st.At(res.Position(), res.Document.Metadata.FactID); ok {
				hits = append(hits, store.Hit{Entry: e, Score: float64(res.Similarity)})
			}
		}
	} else {
		hits = st.Search(query, limit)
	}

	out := make([]hitView, len(hits))
	for i, h := range hits {
		out[i] = hitView{Score: h.Score, Entry: entryView{Entry: h.Entry}}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindByIdentifier(id)))
}

func (s *Server) handleRepos(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(s.refresher.Store().ByKind(facts.KindRepoSummary)))
}

type repoView struct {
	Summary      entryView   `json:"summary"`
	Env          *entryView  `json:"env,omitempty"`
	Contracts    []entryView `json:"contracts"`
	Dependencies []entryView `json:"dependencies"`
	Mappings     []entryView `json:"mappings"`
	Callers      int         `json:"callers"`
	Changelog    []entryView `json:"changelog"`
}

func (s *Server) handleRepo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st := s.refresher.Store()
	summary, ok := st.FindRepoSummary(id)
	if !ok {
		writeError(w, http.StatusNotFound, "repo not found")
		return
	}
	v := repoView{
		Summary:      entryView{Entry: summary},
		Contracts:    views(st.FindContracts(id, "")),
		Dependencies: views(st.FindDependencies(id, "")),
		Mappings:     views(st.FindEndpointMappings(id, "")),
		Callers:      st.CountCallersOfService(id),
		Changelog:    views(st.FindChangelog(id)),
	}
	if env, ok := st.FindEnvConfig(id); ok {
		v.Env = &entryView{Entry: env}
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleContracts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindContracts(q.Get("service"), q.Get("path"))))
}

func (s *Server) handleDependencies(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindDependencies(q.Get("from"), q.Get("to"))))
}

func (s *Server) handleMappings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindEndpointMappings(q.Get("from"), q.Get("to"))))
}

func (s *Server) handleCallers(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	callers := s.refresher.Store().CallersOfPath(path)
	if callers == nil {
		callers = []store.Caller{}
	}
	writeJSON(w, http.StatusOK, callers)
}

func (s *Server) handleServiceCallers(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st := s.refresher.Store()
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  id,
		"count":    st.CountCallersOfService(id),
		"mappings": views(st.FindEndpointMappings("", id)),
	})
}

func (s *Server) handleDecisions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindDecisions(r.URL.Query().Get("topic"))))
}

func (s *Server) handleGlossary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindGlossary(q.Get("term"), q.Get("repo"))))
}

func (s *Server) handleTables(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindDBTables(q.Get("repo"), q.Get("table"))))
}

func (s *Server) handleChangelog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, views(s.refresher.Store().FindChangelog(r.URL.Query().Get("repo"))))
}

// handleGraph serves the service call graph as JSON, or as Mermaid text
// with format=mermaid.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g := diagrams.BuildGraph(s.refresher.Store().Entries())
	if r.URL.Query().Get("format") == "mermaid" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(g.Mermaid()))
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	res, err := s.refresher.Refresh(r.Context(), force)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, res.Summary())
}

func (s *Server) limit(v string) int {
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return n
	}
	return s.cfg.SearchLimit
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
