package store

import (
	"strings"

	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/outbound"
)

// FindByIdentifier returns facts whose source path, source repo, title or a
// reference contains identifier (case-insensitive, either slash style).
func (s *Store) FindByIdentifier(identifier string) []facts.Entry {
	id := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(identifier), `\`, "/"))
	if id == "" {
		return nil
	}
	return s.filter(func(e facts.Entry) bool {
		if containsFold(e.SourcePath, id) || containsFold(e.Source, id) || containsFold(e.Title, id) {
			return true
		}
		for _, r := range e.References {
			if containsFold(r, id) {
				return true
			}
		}
		return false
	})
}

// FindDecisions returns ADRs and post-mortems, optionally narrowed to a
// topic found in the title, content or a tag.
func (s *Store) FindDecisions(topic string) []facts.Entry {
	t := strings.ToLower(topic)
	return s.filter(func(e facts.Entry) bool {
		if e.Kind != facts.KindADR && e.Kind != facts.KindPostMortem {
			return false
		}
		if t == "" || containsFold(e.Title, t) || containsFold(e.Content, t) {
			return true
		}
		for _, tag := range e.Tags {
			if containsFold(tag, t) {
				return true
			}
		}
		return false
	})
}

// FindRepoSummary returns the summary fact of a repo.
func (s *Store) FindRepoSummary(repoID string) (facts.Entry, bool) {
	return s.first(func(e facts.Entry) bool { return e.Kind == facts.KindRepoSummary && e.Source == repoID })
}

// FindContracts returns contracts, optionally of one service (case-insensitive)
// and whose path or title contains pathFragment.
func (s *Store) FindContracts(serviceID, pathFragment string) []facts.Entry {
	frag := strings.ToLower(pathFragment)
	return s.filter(func(e facts.Entry) bool {
		if e.Kind != facts.KindContract {
			return false
		}
		if serviceID != "" && !strings.EqualFold(e.Source, serviceID) {
			return false
		}
		return frag == "" || containsFold(e.MetaString("fullPath"), frag) || containsFold(e.Title, frag)
	})
}

// FindDependencies returns dependency facts filtered by caller and callee.
func (s *Store) FindDependencies(fromRepo, toService string) []facts.Entry {
	return s.filter(func(e facts.Entry) bool {
		return e.Kind == facts.KindDependency &&
			(fromRepo == "" || e.Source == fromRepo) &&
			(toService == "" || e.MetaString("toService") == toService)
	})
}

// FindEnvConfig returns the env_config fact of a repo.
func (s *Store) FindEnvConfig(repoID string) (facts.Entry, bool) {
	return s.first(func(e facts.Entry) bool { return e.Kind == facts.KindEnvConfig && e.Source == repoID })
}

// FindChangelog returns changelog blocks, optionally of one repo.
func (s *Store) FindChangelog(repoID string) []facts.Entry {
	return s.filter(func(e facts.Entry) bool {
		return e.Kind == facts.KindChangelog && (repoID == "" || e.Source == repoID)
	})
}

// FindGlossary returns glossary terms whose title or content contains term.
func (s *Store) FindGlossary(term, repoID string) []facts.Entry {
	t := strings.ToLower(term)
	return s.filter(func(e facts.Entry) bool {
		return e.Kind == facts.KindGlossary &&
			(t == "" || containsFold(e.Title, t) || containsFold(e.Content, t)) &&
			(repoID == "" || e.Source == repoID)
	})
}

// FindDBTables returns db_table facts. tableName matches a title substring
// or the exact table name.
func (s *Store) FindDBTables(repoID, tableName string) []facts.Entry {
	t := strings.ToLower(tableName)
	return s.filter(func(e facts.Entry) bool {
		return e.Kind == facts.KindDBTable &&
			(repoID == "" || e.Source == repoID) &&
			(t == "" || containsFold(e.Title, t) || strings.EqualFold(e.MetaString("tableName"), t))
	})
}

// FindEndpointMappings returns endpoint_mapping facts filtered by caller and
// callee (callee is case-insensitive).
func (s *Store) FindEndpointMappings(fromRepo, toService string) []facts.Entry {
	return s.filter(func(e facts.Entry) bool {
		return e.Kind == facts.KindEndpointMapping &&
			(fromRepo == "" || e.Source == fromRepo || e.MetaString("fromRepo") == fromRepo) &&
			(toService == "" || strings.EqualFold(e.MetaString("toService"), toService))
	})
}

// Caller is one recorded call to a path.
type Caller struct {
	FromRepo  string   `json:"fromRepo"`
	ToService string   `json:"toService"`
	Method    string   `json:"method"`
	Path      string   `json:"path"`
	FilePaths []string `json:"filePaths"`
}

// CallersOfPath returns every mapped call whose display path or path key
// contains fragment.
func (s *Store) CallersOfPath(fragment string) []Caller {
	frag := strings.ToLower(strings.TrimSpace(fragment))
	if frag == "" {
		return nil
	}
	var out []Caller
	for _, e := range s.ByKind(facts.KindEndpointMapping) {
		from := e.MetaString("fromRepo")
		if from == "" {
			from = e.Source
		}
		var files []string
		if err := e.DecodeMeta("filePaths", &files); err != nil || len(files) == 0 {
			files = []string{e.SourcePath}
		}
		var calls []outbound.Call
		if err := e.DecodeMeta("calls", &calls); err != nil {
			continue
		}
		for _, c := range calls {
			display := c.Path.String()
			if containsFold(display, frag) || (c.Path.IsKey() && containsFold(c.Path.PathKey, frag)) {
				out = append(out, Caller{FromRepo: from, ToService: e.MetaString("toService"), Method: c.Method, Path: display, FilePaths: files})
			}
		}
	}
	return out
}

// CountCallersOfService returns how many distinct repos call toService.
func (s *Store) CountCallersOfService(toService string) int {
	seen := map[string]bool{}
	for _, e := range s.FindEndpointMappings("", toService) {
		from := e.MetaString("fromRepo")
		if from == "" {
			from = e.Source
		}
		seen[from] = true
	}
	return len(seen)
}

// containsFold expects sub already lowercased.
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), sub)
}
