package aggregate

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ziadkadry99/cortex/internal/textscan"
	"github.com/ziadkadry99/cortex/internal/walker"
)

const (
	changelogFile      = "CHANGELOG.md"
	maxChangelogBlocks = 20
	maxChangelogRunes  = 1500
)

var (
	changelogHeading = regexp.MustCompile(`(?m)^(?:##\s+|#\s+\d+\.\d+\.\d+)`)
	changelogVersion = regexp.MustCompile(`(?m)^##\s+\[?([^\]\n]+)|^#\s+(\d+\.\d+\.\d+)`)
	breakingChange   = regexp.MustCompile(`(?i)breaking change:`)
	conventionalLine = regexp.MustCompile(`(?m)^\s*(?:[-*]\s+)?((?:feat|fix|chore|docs|style|refactor|perf|test)(?:\([^)]+\))?!?:\s*.+)$`)
)

// ChangelogBlock is one release section of a CHANGELOG.md.
type ChangelogBlock struct {
	Version      string
	Content      string
	Breaking     bool
	Conventional []string
}

// ExtractChangelog splits the repo's CHANGELOG.md at each release heading.
// At most twenty blocks are returned, each capped in length.
func ExtractChangelog(repoPath string, maxFileSize int64) []ChangelogBlock {
	content, err := walker.ReadFile(filepath.Join(repoPath, changelogFile), maxFileSize)
	if err != nil {
		return nil
	}
	var out []ChangelogBlock
	for _, block := range splitChangelog(content) {
		if len(out) == maxChangelogBlocks {
			break
		}
		b := ChangelogBlock{
			Content:  textscan.Truncate(block, maxChangelogRunes),
			Breaking: breakingChange.MatchString(block),
		}
		if m := changelogVersion.FindStringSubmatch(block); m != nil {
			b.Version = strings.TrimSpace(m[1] + m[2])
		}
		for _, m := range conventionalLine.FindAllStringSubmatch(block, -1) {
			b.Conventional = append(b.Conventional, strings.TrimSpace(m[1]))
		}
		out = append(out, b)
	}
	return out
}

func splitChangelog(content string) []string {
	starts := []int{0}
	for _, loc := range changelogHeading.FindAllStringIndex(content, -1) {
		if loc[0] != 0 {
			starts = append(starts, loc[0])
		}
	}
	var blocks []string
	for i, s := range starts {
		end := len(content)
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		if b := content[s:end]; strings.TrimSpace(b) != "" {
			blocks = append(blocks, b)
		}
	}
	return blocks
}
