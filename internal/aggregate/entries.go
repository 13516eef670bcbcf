package aggregate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/front"
	"github.com/ziadkadry99/cortex/internal/outbound"
	"github.com/ziadkadry99/cortex/internal/walker"
)

const (
	maxMappingCallsInContent = 80
	maxMappingCallsInMeta    = 100
	maxSummaryRoutes         = 5
	maxSummaryEnvVars        = 10
)

// manifestFiles are tried in order for a repo summary's source path.
var manifestFiles = []string{"package.json", "go.mod", "build.gradle.kts", "build.gradle", "pom.xml", "README.md"}

func mappingEntry(repo discovery.Repo, e Edge) facts.Entry {
	shown := e.Calls
	if len(shown) > maxMappingCallsInContent {
		shown = shown[:maxMappingCallsInContent]
	}
	display := make([]string, len(shown))
	for i, c := range shown {
		display[i] = c.String()
	}
	more := ""
	if len(e.Calls) > maxMappingCallsInContent {
		more = "…"
	}
	content := fmt.Sprintf("%s calls %s (env: %s). Endpoints: %s%s.", e.FromRepo, e.ToService, e.EnvVar, strings.Join(display, ", "), more)

	metaCalls := e.Calls
	if len(metaCalls) > maxMappingCallsInMeta {
		metaCalls = metaCalls[:maxMappingCallsInMeta]
	}
	return facts.New(facts.KindEndpointMapping, repo.ID, e.FilePaths[0], e.FromRepo+" → "+e.ToService, content,
		[]string{e.ToService, "endpoint-mapping", "http"},
		facts.Meta{
			"fromRepo":  e.FromRepo,
			"toService": e.ToService,
			"envVar":    e.EnvVar,
			"filePaths": e.FilePaths,
			"calls":     metaCalls,
		}, 0)
}

type summary struct {
	routes      []discovery.RouteInfo
	frontRoutes []front.Route
	toServices  []string
	envVars     []string
	tables      int
}

func summaryEntry(repo discovery.Repo, root string, s summary) facts.Entry {
	var parts []string
	if repo.Description != "" {
		parts = append(parts, repo.Description)
	} else {
		parts = append(parts, fmt.Sprintf("%s (%s)", repo.Name, repo.Variant))
	}
	if n := len(s.routes); n > 0 {
		var shown []string
		for i, r := range s.routes {
			if i == maxSummaryRoutes {
				break
			}
			shown = append(shown, r.Method+" "+r.FullPath)
		}
		parts = append(parts, fmt.Sprintf("Exposes %d route(s): %s%s.", n, strings.Join(shown, ", "), ellipsis(n > maxSummaryRoutes)))
	}
	if n := len(s.frontRoutes); n > 0 {
		var shown []string
		for i, r := range s.frontRoutes {
			if i == maxSummaryRoutes {
				break
			}
			shown = append(shown, r.Path)
		}
		parts = append(parts, fmt.Sprintf("Serves %d page route(s): %s%s.", n, strings.Join(shown, ", "), ellipsis(n > maxSummaryRoutes)))
	}
	if s.tables > 0 {
		parts = append(parts, fmt.Sprintf("Declares %d table change(s).", s.tables))
	}
	if len(s.toServices) > 0 {
		parts = append(parts, "Uses: "+strings.Join(s.toServices, ", ")+".")
	}
	if n := len(s.envVars); n > 0 {
		shown := s.envVars
		if n > maxSummaryEnvVars {
			shown = shown[:maxSummaryEnvVars]
		}
		parts = append(parts, "Env: "+strings.Join(shown, ", ")+ellipsis(n > maxSummaryEnvVars)+".")
	}

	toServices := nonNil(s.toServices)
	envVars := nonNil(s.envVars)
	tags := append([]string{string(repo.Variant)}, toServices...)
	return facts.New(facts.KindRepoSummary, repo.ID, manifestPath(repo, root), repo.Name, strings.Join(parts, " "), tags,
		facts.Meta{
			"variant":    string(repo.Variant),
			"routeCount": len(s.routes) + len(s.frontRoutes),
			"envVars":    envVars,
			"toServices": toServices,
		}, 0)
}

func manifestPath(repo discovery.Repo, root string) string {
	for _, name := range manifestFiles {
		p := filepath.Join(repo.Path, name)
		if walker.Exists(p) {
			return relPath(root, p)
		}
	}
	return relPath(root, repo.Path)
}

func contractEntry(repo discovery.Repo, r discovery.RouteInfo) facts.Entry {
	parts := []string{fmt.Sprintf("%s exposes %s %s", repo.ID, r.Method, r.FullPath)}
	if r.RequestType != "" {
		parts = append(parts, "Body: "+r.RequestType)
	}
	if r.ResponseType != "" {
		parts = append(parts, "Response: "+r.ResponseType)
	}
	tags := []string{strings.ToLower(r.Method)}
	for _, seg := range strings.Split(r.FullPath, "/") {
		if seg != "" {
			tags = append(tags, seg)
		}
	}
	meta := facts.Meta{"method": r.Method, "fullPath": r.FullPath}
	setIf(meta, "requestBodyType", r.RequestType)
	setIf(meta, "responseType", r.ResponseType)
	setIf(meta, "handlerName", r.HandlerName)

	e := facts.New(facts.KindContract, repo.ID, r.FilePath, r.Method+" "+r.FullPath, strings.Join(parts, ". "), tags, meta, r.Line)
	e.ID = facts.Slug(repo.ID, "contract:"+r.Method+":"+r.FullPath)
	return e
}

func dependencyEntry(repo discovery.Repo, c outbound.ServiceCall) facts.Entry {
	content := fmt.Sprintf("%s calls %s (env: %s).", repo.ID, c.ToService, c.EnvVar)
	if c.Method != "" {
		content += " " + strings.TrimSpace(c.Method+" "+c.PathFragment)
	}
	meta := facts.Meta{"fromRepo": repo.ID, "toService": c.ToService, "envVar": c.EnvVar}
	setIf(meta, "method", c.Method)
	setIf(meta, "pathFragment", c.PathFragment)
	return facts.New(facts.KindDependency, repo.ID, c.FilePath, repo.ID+" → "+c.ToService, content,
		[]string{c.ToService, "http-client"}, meta, 0)
}

func envEntry(repo discovery.Repo, vars []string) facts.Entry {
	return facts.New(facts.KindEnvConfig, repo.ID, ".env.example", "Environment variables of "+repo.ID,
		"This service reads: "+strings.Join(vars, ", ")+".",
		[]string{"config", "env"}, facts.Meta{"vars": vars}, 0)
}

func glossaryEntry(repo discovery.Repo, t Term) facts.Entry {
	return facts.New(facts.KindGlossary, repo.ID, t.SourcePath, t.Term,
		fmt.Sprintf("Domain term %q (%s) in %s.", t.Term, t.Kind, repo.ID),
		[]string{t.Kind, t.Term}, facts.Meta{"kind": t.Kind}, t.Line)
}

func conventionEntry(repo discovery.Repo, c Convention) facts.Entry {
	return facts.New(facts.KindConvention, repo.ID, c.SourcePath, c.Name,
		fmt.Sprintf("%s Found in %d file(s).", c.Description, c.Count),
		[]string{"convention", c.Name}, facts.Meta{"count": c.Count}, c.Line)
}

func tableEntry(repo discovery.Repo, t Table) facts.Entry {
	meta := facts.Meta{"tableName": t.Name, "operation": t.Operation}
	setIf(meta, "schema", t.Schema)
	return facts.New(facts.KindDBTable, repo.ID, t.FilePath, t.QualifiedName(),
		fmt.Sprintf("Table %s (%s) in %s. Repo: %s.", t.Name, t.Operation, t.FilePath, repo.ID),
		[]string{strings.ToLower(t.Operation), "sql", repo.ID}, meta, t.Line)
}

func changelogEntries(repo discovery.Repo, root string, opts Options) []facts.Entry {
	var out []facts.Entry
	for _, b := range ExtractChangelog(repo.Path, opts.MaxFileSize) {
		title := b.Version
		if title == "" {
			title = "Changelog"
		}
		tags := []string{"changelog"}
		if b.Breaking {
			tags = append(tags, "breaking")
		}
		meta := facts.Meta{"isBreaking": b.Breaking}
		setIf(meta, "version", b.Version)
		if len(b.Conventional) > 0 {
			meta["conventional"] = b.Conventional
		}
		out = append(out, facts.New(facts.KindChangelog, repo.ID, relPath(root, filepath.Join(repo.Path, changelogFile)), title, b.Content, tags, meta, 0))
	}
	return out
}

func setIf(m facts.Meta, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

func ellipsis(more bool) string {
	if more {
		return "…"
	}
	return ""
}
