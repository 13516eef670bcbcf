package aggregate

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/ziadkadry99/cortex/internal/discovery"
	"github.com/ziadkadry99/cortex/internal/facts"
	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

const (
	maxDocEntriesPerRepo = 100
	maxDocContentRunes   = 8000
	maxFullContentBytes  = 15000
)

var (
	docTagLine   = regexp.MustCompile(`(?im)^tags?:\s*(.+)$`)
	docADRHeader = regexp.MustCompile(`(?im)^#\s*ADR[- ]?(\d+)`)
	docADRRef    = regexp.MustCompile(`(?i)ADR[- ]?\d+`)
	docTicketRef = regexp.MustCompile(`#\d+`)
	docADRName   = regexp.MustCompile(`(?i)adr|decision|post[- ]?mortem`)
	adrFileName  = regexp.MustCompile(`(?i)^ADR`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

var markdown = goldmark.New()

// IndexDocs builds readme, doc and adr entries for a repo: README.md,
// docs/*.md, ADR*.md at the root and docs/adr/*.md, at most a hundred.
func IndexDocs(repo discovery.Repo, workspaceRoot string, opts Options) []facts.Entry {
	var out []facts.Entry
	add := func(path string, kind facts.Kind, id string) {
		if len(out) >= maxDocEntriesPerRepo {
			return
		}
		content, err := walker.ReadFile(path, opts.MaxFileSize)
		if err != nil {
			return
		}
		rel := relPath(workspaceRoot, path)
		title := MarkdownTitle(content)
		if title == "" {
			if kind == facts.KindReadme {
				title = repo.ID + " README"
			} else {
				title = strings.TrimSuffix(filepath.Base(path), ".md")
			}
		}
		if id == "" {
			id = facts.Slug(repo.ID, rel)
		}
		e := facts.Entry{
			ID:         id,
			Kind:       kind,
			Source:     repo.ID,
			SourcePath: rel,
			Title:      title,
			Content:    textscan.Truncate(content, maxDocContentRunes),
			Tags:       docTags(content),
			References: docReferences(content),
		}
		if len(content) < maxFullContentBytes {
			e.FullContent = content
		}
		out = append(out, e)
	}

	add(filepath.Join(repo.Path, "README.md"), facts.KindReadme, facts.Slug(repo.ID, "README.md"))

	for _, name := range markdownFiles(filepath.Join(repo.Path, "docs")) {
		kind := facts.KindDoc
		if docADRName.MatchString(name) {
			kind = facts.KindADR
		}
		add(filepath.Join(repo.Path, "docs", name), kind, "")
	}
	for _, name := range markdownFiles(repo.Path) {
		if adrFileName.MatchString(name) {
			add(filepath.Join(repo.Path, name), facts.KindADR, "")
		}
	}
	for _, name := range markdownFiles(filepath.Join(repo.Path, "docs", "adr")) {
		add(filepath.Join(repo.Path, "docs", "adr", name), facts.KindADR, "")
	}
	return out
}

// MarkdownTitle returns the text of the first level-one heading, or "".
func MarkdownTitle(content string) string {
	src := []byte(content)
	doc := markdown.Parser().Parse(text.NewReader(src))
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		title = strings.TrimSpace(spaceRun.ReplaceAllString(inlineText(h, src), " "))
		return ast.WalkStop, nil
	})
	return title
}

func inlineText(n ast.Node, src []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Value(src))
			if t.SoftLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

func docTags(content string) []string {
	tags := []string{}
	if m := docTagLine.FindStringSubmatch(content); m != nil {
		for _, t := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ' ' || r == '\t' }) {
			if t = strings.TrimPrefix(strings.TrimSpace(t), "#"); t != "" {
				tags = append(tags, t)
			}
		}
	}
	if m := docADRHeader.FindStringSubmatch(content); m != nil {
		tags = append(tags, "ADR-"+m[1])
	}
	return tags
}

func docReferences(content string) []string {
	refs := []string{}
	seen := map[string]bool{}
	for _, r := range docADRRef.FindAllString(content, -1) {
		r = strings.ToUpper(strings.ReplaceAll(r, " ", "-"))
		if !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
	}
	for _, r := range docTicketRef.FindAllString(content, -1) {
		if !seen[r] {
			seen[r] = true
			refs = append(refs, r)
		}
	}
	return refs
}

// markdownFiles lists the .md files directly inside dir, sorted by name.
func markdownFiles(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			out = append(out, e.Name())
		}
	}
	return out
}
