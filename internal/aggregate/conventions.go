package aggregate

import (
	"path/filepath"
	"regexp"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// Convention is a coding convention observed across a repo's sources.
type Convention struct {
	Name        string
	Description string
	SourcePath  string // first file it was seen in
	Line        int
	Count       int // files
}

type conventionMarker struct {
	name        string
	description string
	re          *regexp.Regexp
}

var conventionMarkers = []conventionMarker{
	{"idempotency-key", "Requests carry an Idempotency-Key header for idempotent operations.", regexp.MustCompile(`(?i)(?:x[-_]?)?idempotency[-_]?key`)},
	{"use-guards", "Controllers are protected with @UseGuards.", regexp.MustCompile(`@UseGuards\b`)},
	{"roles", "Endpoints declare required roles with @Roles.", regexp.MustCompile(`@Roles\b`)},
	{"pre-authorize", "Endpoints are secured with @PreAuthorize or @Secured.", regexp.MustCompile(`@(?:PreAuthorize|Secured)\b`)},
}

// ExtractConventions reports each marker found in the repo's sources, in
// marker order, with the first file and line it appears at.
func ExtractConventions(repo discovery.Repo, workspaceRoot string, opts Options) []Convention {
	var dir string
	var langs []string
	switch repo.Variant {
	case discovery.VariantNest, discovery.VariantExpress:
		dir, langs = filepath.Join(repo.Path, "src"), []string{walker.LangTypeScript, walker.LangJavaScript}
	case discovery.VariantSpring:
		dir, langs = filepath.Join(repo.Path, "src", "main"), []string{walker.LangKotlin, walker.LangJava}
	case discovery.VariantGo:
		dir, langs = repo.Path, []string{walker.LangGo}
	default:
		return nil
	}

	found := make([]Convention, len(conventionMarkers))
	for _, f := range readSources(opts, dir, langs, nil) {
		for i, mk := range conventionMarkers {
			loc := mk.re.FindStringIndex(f.content)
			if loc == nil {
				continue
			}
			if found[i].Count == 0 {
				found[i].SourcePath = relPath(workspaceRoot, f.abs)
				found[i].Line = textscan.LineAt(f.content, loc[0])
			}
			found[i].Count++
		}
	}

	var out []Convention
	for i, mk := range conventionMarkers {
		if found[i].Count == 0 {
			continue
		}
		c := found[i]
		c.Name, c.Description = mk.name, mk.description
		out = append(out, c)
	}
	return out
}
