package outbound

import (
	"bufio"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

var (
	// @Value("${app.widgets.url}") and the Kotlin-escaped "\${...}", with an
	// optional ":default".
	springValue = regexp.MustCompile(`@Value\s*\(\s*"\\?\$\{([A-Za-z_][\w.\-]*)(?::[^}]*)?\}"\s*\)`)

	springRest = regexp.MustCompile(`\.\s*(getForObject|getForEntity|postForObject|postForEntity|patchForObject|put|delete)\s*\(\s*(?:[\w.]+\s*\+\s*)?"([^"\n]+)"`)
	// getForObject(baseUrl, "/path") as some clients spell it.
	springRestSecondArg = regexp.MustCompile(`\.\s*(getForObject|getForEntity|postForObject|postForEntity)\s*\(\s*[\w.]+\s*,\s*"([^"\n]+)"`)
	springExchange      = regexp.MustCompile(`\.\s*exchange\s*\(\s*(?:[\w.]+\s*\+\s*)?"([^"\n]+)"\s*,\s*HttpMethod\s*\.\s*(\w+)`)
	springWebClient     = regexp.MustCompile(`\.\s*(get|post|put|patch|delete)\s*\(\s*\)\s*\.\s*uri\s*\(\s*"([^"\n]+)"`)

	springEnvRef = regexp.MustCompile(`\$\{([A-Za-z_]\w*)(?::[^}]*)?\}`)
)

var springRestMethods = map[string]string{
	"getForObject":   "GET",
	"getForEntity":   "GET",
	"postForObject":  "POST",
	"postForEntity":  "POST",
	"patchForObject": "PATCH",
	"put":            "PUT",
	"delete":         "DELETE",
}

// springConfigFiles are read, in order, to resolve @Value keys to the
// environment variables they interpolate.
var springConfigFiles = []string{
	"src/main/resources/application.yml",
	"src/main/resources/application.yaml",
	"src/main/resources/application.properties",
}

// SpringResolver reads RestTemplate and WebClient calls in Kotlin and Java
// sources. The base URL comes from an @Value key naming a url, host or base.
type SpringResolver struct {
	opts Options
}

func (s *SpringResolver) Resolve(repo discovery.Repo, workspaceRoot string, repoIDs []string) []Mapping {
	props := loadSpringProperties(repo.Path)
	var mappings []Mapping
	for _, sub := range []string{"src/main/kotlin", "src/main/java"} {
		dir := filepath.Join(repo.Path, filepath.FromSlash(sub))
		for _, f := range readSources(s.opts, workspaceRoot, dir, []string{walker.LangKotlin, walker.LangJava}) {
			if !strings.Contains(f.content, "RestTemplate") && !strings.Contains(f.content, "WebClient") {
				continue
			}
			key, target := s.baseURL(f.content, props, repoIDs)
			if target == "" || target == repo.ID {
				continue
			}
			calls := springCalls(f.content, strings.HasSuffix(f.rel, ".kt"))
			if len(calls) == 0 {
				continue
			}
			mappings = append(mappings, Mapping{
				FromRepo:  repo.ID,
				ToService: target,
				EnvVar:    key,
				FilePath:  f.rel,
				Calls:     calls,
			})
		}
	}
	return mappings
}

// baseURL returns the first @Value key that resolves to a repo.
func (s *SpringResolver) baseURL(content string, props map[string]string, repoIDs []string) (string, string) {
	for _, m := range springValue.FindAllStringSubmatch(content, -1) {
		key := m[1]
		lower := strings.ToLower(key)
		if !strings.Contains(lower, "url") && !strings.Contains(lower, "host") && !strings.Contains(lower, "base") {
			continue
		}
		for _, hint := range springKeyHints(key, props) {
			if id := s.opts.resolve(hint, repoIDs); id != "" {
				return key, id
			}
		}
	}
	return "", ""
}

// springKeyHints lists the environment-style names to try for a property
// key: the key itself, any ${ENV} its configured value interpolates, then
// its last segment.
func springKeyHints(key string, props map[string]string) []string {
	hints := []string{ConfigKeyToEnvHint(key)}
	if v, ok := props[key]; ok {
		for _, m := range springEnvRef.FindAllStringSubmatch(v, -1) {
			hints = append(hints, m[1])
		}
	}
	if i := strings.LastIndex(key, "."); i >= 0 && i < len(key)-1 {
		hints = append(hints, ConfigKeyToEnvHint(key[i+1:]))
	}
	return hints
}

// ConfigKeyToEnvHint turns a property key such as svc-a.url into SVC_A_URL.
func ConfigKeyToEnvHint(key string) string {
	h := strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
	if strings.HasSuffix(h, "_URL") || strings.HasSuffix(h, "_HOST") {
		return h
	}
	return h + "_URL"
}

type springHit struct {
	pos    int
	method string
	path   string
}

func springCalls(content string, kotlin bool) []Call {
	var hits []springHit
	for _, m := range springRest.FindAllStringSubmatchIndex(content, -1) {
		hits = append(hits, springHit{m[0], springRestMethods[group(content, m, 1)], group(content, m, 2)})
	}
	for _, m := range springRestSecondArg.FindAllStringSubmatchIndex(content, -1) {
		hits = append(hits, springHit{m[0], springRestMethods[group(content, m, 1)], group(content, m, 2)})
	}
	for _, m := range springExchange.FindAllStringSubmatchIndex(content, -1) {
		hits = append(hits, springHit{m[0], strings.ToUpper(group(content, m, 2)), group(content, m, 1)})
	}
	for _, m := range springWebClient.FindAllStringSubmatchIndex(content, -1) {
		hits = append(hits, springHit{m[0], strings.ToUpper(group(content, m, 1)), group(content, m, 2)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	var set callSet
	for _, h := range hits {
		p := textscan.StripInterpolations(h.path, kotlin)
		// put("key", v) on a map is not a call.
		if !strings.Contains(p, "/") {
			continue
		}
		set.add(h.method, Literal(p))
	}
	return set.calls
}

// loadSpringProperties flattens the first application config file found
// into dotted keys.
func loadSpringProperties(repoPath string) map[string]string {
	props := map[string]string{}
	for _, rel := range springConfigFiles {
		path := filepath.Join(repoPath, filepath.FromSlash(rel))
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if strings.HasSuffix(rel, ".properties") {
			parseProperties(string(data), props)
		} else {
			var doc map[string]any
			if yaml.Unmarshal(data, &doc) == nil {
				flattenYAML("", doc, props)
			}
		}
		break
	}
	return props
}

func flattenYAML(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		for k, child := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flattenYAML(key, child, out)
		}
	case nil:
	default:
		if prefix != "" {
			out[prefix] = strings.TrimSpace(stringify(t))
		}
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := yaml.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func parseProperties(text string, out map[string]string) {
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		i := strings.IndexAny(line, "=:")
		if i <= 0 {
			continue
		}
		out[strings.TrimSpace(line[:i])] = strings.TrimSpace(line[i+1:])
	}
}
