package aggregate

import (
	"regexp"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

var (
	createTable = regexp.MustCompile(`(?i)CREATE\s+TABLE\s+(?:IF\s+NOT\s+EXISTS\s+)?(?:["'` + "`" + `]?(\w+)["'` + "`" + `]?\.)?["'` + "`" + `]?(\w+)["'` + "`" + `]?`)
	alterTable  = regexp.MustCompile(`(?i)ALTER\s+TABLE\s+(?:IF\s+EXISTS\s+)?(?:ONLY\s+)?(?:["'` + "`" + `]?(\w+)["'` + "`" + `]?\.)?["'` + "`" + `]?(\w+)["'` + "`" + `]?`)
)

// Table is one DDL statement target.
type Table struct {
	Name      string
	Schema    string
	FilePath  string
	Operation string // CREATE or ALTER
	Line      int
}

// QualifiedName returns schema.name, or name when there is no schema.
func (t Table) QualifiedName() string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// ExtractTables reads every .sql file in the repo. Each table yields at
// most one CREATE and one ALTER record, the first seen in walk order.
func ExtractTables(repo discovery.Repo, workspaceRoot string, opts Options) []Table {
	seen := map[string]bool{}
	var out []Table
	for _, f := range readSources(opts, repo.Path, []string{walker.LangSQL}, nil) {
		path := relPath(workspaceRoot, f.abs)
		for _, op := range []struct {
			name string
			re   *regexp.Regexp
		}{{"CREATE", createTable}, {"ALTER", alterTable}} {
			for _, m := range op.re.FindAllStringSubmatchIndex(f.content, -1) {
				t := Table{
					Schema:    submatch(f.content, m, 1),
					Name:      submatch(f.content, m, 2),
					FilePath:  path,
					Operation: op.name,
					Line:      textscan.LineAt(f.content, m[0]),
				}
				schema := t.Schema
				if schema == "" {
					schema = "public"
				}
				key := op.name + ":" + schema + "." + t.Name
				if seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, t)
			}
		}
	}
	return out
}

func submatch(s string, m []int, g int) string {
	if 2*g+1 >= len(m) || m[2*g] < 0 {
		return ""
	}
	return s[m[2*g]:m[2*g+1]]
}
