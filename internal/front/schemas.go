package front

import (
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

// schemaDirs are scanned for declared types; src is used when none exist.
var schemaDirs = []string{"src/services", "src/types", "src/api", "src/models"}

var (
	exportedInterface = regexp.MustCompile(`export\s+interface\s+([A-Za-z_$][\w$]*)(?:\s*<[^>{]*>)?(?:\s+extends\s+[^{]+)?\s*\{`)
	exportedTypeObj   = regexp.MustCompile(`export\s+type\s+([A-Za-z_$][\w$]*)(?:\s*<[^>=]*>)?\s*=\s*\{`)
	propertyLine      = regexp.MustCompile(`^(?:readonly\s+)?([A-Za-z_$][\w$]*)\s*\??\s*:\s*(.+)$`)
	spaces            = regexp.MustCompile(`\s+`)
)

func extractSchemas(l layout, opts Options) []Schema {
	var dirs []string
	for _, d := range schemaDirs {
		if walker.IsDir(l.abs(d)) {
			dirs = append(dirs, d)
		}
	}
	if len(dirs) == 0 {
		dirs = []string{"src"}
	}
	isTS := func(rel string) bool { return strings.HasSuffix(rel, ".ts") || strings.HasSuffix(rel, ".tsx") }

	var out []Schema
	for _, d := range dirs {
		for _, f := range l.sources(opts, d, isTS) {
			out = append(out, declaredTypes(f.content, l.workspaceRel(f.repoRel))...)
		}
	}
	return out
}

// declaredTypes returns interfaces first, then object type aliases, each
// in source order.
func declaredTypes(content, sourcePath string) []Schema {
	var out []Schema
	for _, re := range []*regexp.Regexp{exportedInterface, exportedTypeObj} {
		for _, m := range re.FindAllStringSubmatchIndex(content, -1) {
			open := m[1] - 1
			end := textscan.FindMatchingDelimiter(content, open)
			if end < 0 {
				continue
			}
			out = append(out, Schema{
				TypeName:   content[m[2]:m[3]],
				Properties: firstLevelProperties(content[open+1 : end]),
				SourcePath: sourcePath,
				Line:       textscan.LineAt(content, m[0]),
			})
		}
	}
	return out
}

// firstLevelProperties reads "name: type" members at nesting depth zero.
// Inline object types collapse to "object" and array suffixes are dropped.
func firstLevelProperties(block string) []Property {
	props := []Property{}
	depth := 0
	lines := strings.FieldsFunc(block, func(r rune) bool { return r == '\n' || r == ';' })
	for _, line := range lines {
		if depth == 0 {
			trimmed := strings.TrimSpace(line)
			if trimmed != "" && !strings.HasPrefix(trimmed, "//") && !strings.HasPrefix(trimmed, "*") && !strings.HasPrefix(trimmed, "/*") {
				if m := propertyLine.FindStringSubmatch(trimmed); m != nil {
					props = append(props, Property{Name: m[1], Type: propertyType(m[2])})
				}
			}
		}
		depth += strings.Count(line, "{") - strings.Count(line, "}")
	}
	return props
}

func propertyType(t string) string {
	t = strings.TrimSpace(t)
	t = strings.TrimSpace(strings.TrimRight(t, ";,"))
	switch {
	case strings.HasPrefix(t, "{"):
		t = "object"
	case strings.Contains(t, "{"):
		t = strings.TrimSpace(t[:strings.IndexByte(t, '{')])
		if t == "" {
			t = "object"
		}
	}
	t = strings.TrimSuffix(t, "[]")
	return spaces.ReplaceAllString(t, " ")
}
