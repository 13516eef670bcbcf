// Package facts defines the uniform record every extractor emits.
package facts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ziadkadry99/cortex/internal/textscan"
)

// Kind classifies a fact entry.
type Kind string

const (
	KindADR                Kind = "adr"
	KindReadme             Kind = "readme"
	KindDoc                Kind = "doc"
	KindPostMortem         Kind = "post_mortem"
	KindRepoSummary        Kind = "repo_summary"
	KindContract           Kind = "contract"
	KindDependency         Kind = "dependency"
	KindGlossary           Kind = "glossary"
	KindConvention         Kind = "convention"
	KindEnvConfig          Kind = "env_config"
	KindDBTable            Kind = "db_table"
	KindChangelog          Kind = "changelog"
	KindEndpointMapping    Kind = "endpoint_mapping"
	KindFrontRoute         Kind = "front_route"
	KindFrontEndpointUsage Kind = "front_endpoint_usage"
	KindServiceEndpoint    Kind = "service_endpoint"
	KindRouteEndpoints     Kind = "route_endpoints"
	KindResponseSchema     Kind = "response_schema"
)

// MaxIDLength bounds the slug identity of an entry.
const MaxIDLength = 150

// Meta is the kind-specific structured metadata bag.
type Meta map[string]any

// Entry is one fact about a repo.
type Entry struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Source      string    `json:"source"`
	SourcePath  string    `json:"sourcePath"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	FullContent string    `json:"fullContent,omitempty"`
	Tags        []string  `json:"tags"`
	References  []string  `json:"references"`
	Line        int       `json:"line,omitempty"`
	Meta        Meta      `json:"meta,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
}

// Slug derives a stable identity from a repo and a suffix. It is not
// globally unique.
func Slug(repo, suffix string) string {
	s := strings.ReplaceAll(repo+":"+suffix, "/", ":")
	return textscan.Truncate(s, MaxIDLength)
}

// New builds an entry whose id is derived from source, title and path.
func New(kind Kind, source, sourcePath, title, content string, tags []string, meta Meta, line int) Entry {
	if tags == nil {
		tags = []string{}
	}
	return Entry{
		ID:         Slug(source, title+":"+sourcePath),
		Kind:       kind,
		Source:     source,
		SourcePath: sourcePath,
		Title:      title,
		Content:    content,
		Tags:       tags,
		References: []string{},
		Line:       line,
		Meta:       meta,
	}
}

// DecodeMeta decodes the metadata bag (or one key of it when key is not
// empty) into v.
func (e Entry) DecodeMeta(key string, v any) error {
	var src any = e.Meta
	if key != "" {
		val, ok := e.Meta[key]
		if !ok {
			return fmt.Errorf("facts: meta key %q not set on %s", key, e.ID)
		}
		src = val
	}
	data, err := json.Marshal(src)
	if err != nil {
		return fmt.Errorf("facts: encoding meta: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("facts: decoding meta: %w", err)
	}
	return nil
}

// MetaString returns a string metadata value, or "".
func (e Entry) MetaString(key string) string {
	s, _ := e.Meta[key].(string)
	return s
}

// HasTag reports whether the entry carries tag (case-insensitive).
func (e Entry) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// Canonical returns entries as they read back from their JSON encoding,
// so freshly built and cache-loaded collections compare equal.
func Canonical(entries []Entry) ([]Entry, error) {
	if len(entries) == 0 {
		return []Entry{}, nil
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return nil, fmt.Errorf("facts: encoding entries: %w", err)
	}
	out := []Entry{}
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("facts: decoding entries: %w", err)
	}
	return out, nil
}
