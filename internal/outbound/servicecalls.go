package outbound

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/walker"
)

var (
	tsEnvRef = regexp.MustCompile(configGet + `|process\.env\.([A-Za-z_]\w*)`)
	goEnvRef = regexp.MustCompile(`os\.(?:Getenv|LookupEnv)\(\s*"([A-Za-z_]\w*)"\s*\)`)

	tsFirstCall = regexp.MustCompile(`\.\s*(get|post|put|patch|delete)\s*(?:<[^>()]*>)?\s*\(\s*['"` + "`" + `](/[^'"` + "`" + `\s)]*)`)
	goFirstCall = regexp.MustCompile(`http\.(?:NewRequest(?:WithContext)?\(\s*(?:ctx\s*,\s*)?(?:http\.Method(\w+)|"(\w+)")\s*,\s*[\w.]*\s*\+?\s*"(/[^"]*)"|(Get|Post)\(\s*[\w.]*\s*\+\s*"(/[^"]*)")`)
)

// ServiceCalls lists the configuration reads in a repo's sources whose key
// names another repo. TypeScript and JavaScript repos are read under src,
// Go repos from the root. Each call carries the first HTTP call in its file
// when one is recognisable. Repeated reads of a key in one file count once.
func ServiceCalls(repo discovery.Repo, workspaceRoot string, repoIDs []string, opts Options) []ServiceCall {
	var (
		dir   string
		langs []string
		envRe *regexp.Regexp
	)
	switch repo.Variant {
	case discovery.VariantNest, discovery.VariantExpress:
		dir, langs, envRe = filepath.Join(repo.Path, "src"), []string{walker.LangTypeScript, walker.LangJavaScript}, tsEnvRef
	case discovery.VariantGo:
		dir, langs, envRe = repo.Path, []string{walker.LangGo}, goEnvRef
	default:
		return nil
	}

	var calls []ServiceCall
	for _, f := range readSources(opts, workspaceRoot, dir, langs) {
		seen := map[string]bool{}
		start := len(calls)
		for _, m := range envRe.FindAllStringSubmatch(f.content, -1) {
			key := firstNonEmpty(m[1:])
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			to := opts.resolve(key, repoIDs)
			if to == "" || to == repo.ID {
				continue
			}
			calls = append(calls, ServiceCall{FromRepo: repo.ID, ToService: to, EnvVar: key, FilePath: f.rel})
		}
		if len(calls) == start {
			continue
		}
		if method, frag := firstHTTPCall(repo.Variant, f.content); method != "" {
			calls[start].Method = method
			calls[start].PathFragment = frag
		}
	}
	return calls
}

func firstHTTPCall(v discovery.Variant, content string) (string, string) {
	if v == discovery.VariantGo {
		m := goFirstCall.FindStringSubmatch(content)
		if m == nil {
			return "", ""
		}
		if m[4] != "" {
			return strings.ToUpper(m[4]), m[5]
		}
		return strings.ToUpper(firstNonEmpty(m[1:3])), m[3]
	}
	m := tsFirstCall.FindStringSubmatch(content)
	if m == nil {
		return "", ""
	}
	return strings.ToUpper(m[1]), m[2]
}

func firstNonEmpty(ss []string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
