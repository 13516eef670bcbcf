package store

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ziadkadry99/cortex/internal/facts"
)

// DefaultSearchLimit applies when a caller passes a non-positive limit.
const DefaultSearchLimit = 20

// Substring bonuses for the whole query, and per-token overlap weights.
const (
	titleBonus   = 10
	contentBonus = 5
	sourceBonus  = 3
	tagsBonus    = 4
	refsBonus    = 2

	titleToken   = 3
	tagsToken    = 2
	contentToken = 1

	minTokenLen = 3
)

// Hit is a search result.
type Hit struct {
	Entry facts.Entry
	Score float64
}

// Search ranks every fact against query and returns at most limit hits
// with a positive score, best first. Ties keep insertion order. An empty
// query matches nothing.
func (s *Store) Search(query string, limit int) []Hit {
	q := strings.TrimSpace(fold(query))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	qTokens := tokenSet(q)

	var hits []Hit
	for _, e := range s.entries {
		if score := scoreEntry(e, q, qTokens); score > 0 {
			hits = append(hits, Hit{Entry: e, Score: float64(score)})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// scoreEntry expects q already folded.
func scoreEntry(e facts.Entry, q string, qTokens map[string]bool) int {
	title := fold(e.Title)
	content := fold(e.Content)
	tags := fold(strings.Join(e.Tags, " "))
	refs := fold(strings.Join(e.References, " "))

	score := 0
	if strings.Contains(title, q) {
		score += titleBonus
	}
	if strings.Contains(content, q) {
		score += contentBonus
	}
	if strings.Contains(fold(e.Source), q) {
		score += sourceBonus
	}
	if strings.Contains(tags, q) {
		score += tagsBonus
	}
	if strings.Contains(refs, q) {
		score += refsBonus
	}

	if len(qTokens) == 0 {
		return score
	}
	titleSet, tagSet, contentSet := tokenSet(title), tokenSet(tags), tokenSet(content)
	for t := range qTokens {
		if titleSet[t] {
			score += titleToken
		}
		if tagSet[t] {
			score += tagsToken
		}
		if contentSet[t] {
			score += contentToken
		}
	}
	return score
}

var accents = runes.Remove(runes.In(unicode.Mn))

// fold lowercases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, accents, norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokenSet(folded string) map[string]bool {
	set := map[string]bool{}
	for _, w := range strings.FieldsFunc(folded, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) }) {
		if len([]rune(w)) < minTokenLen {
			continue
		}
		set[stem(w)] = true
	}
	return set
}

// stem strips common English and Spanish inflections so that singular and
// plural forms compare equal: policies/policy, aplicaciones/aplicacion,
// errores/error, widgets/widget, services/service.
func stem(w string) string {
	n := len(w)
	switch {
	case n > 4 && strings.HasSuffix(w, "ies"):
		return w[:n-3] + "y"
	case n > 6 && strings.HasSuffix(w, "iones"):
		return w[:n-2]
	case n > 5 && strings.HasSuffix(w, "ing"):
		w = w[:n-3]
	case n > 4 && strings.HasSuffix(w, "ed"):
		w = w[:n-2]
	case n > 4 && strings.HasSuffix(w, "es") && strings.IndexByte("dlnrz", w[n-3]) >= 0:
		w = w[:n-2]
	case n > 3 && strings.HasSuffix(w, "s") && !strings.HasSuffix(w, "ss"):
		w = w[:n-1]
	}
	if len(w) > 3 && strings.HasSuffix(w, "e") {
		w = w[:len(w)-1]
	}
	return w
}

// SemanticSearch ranks facts that carry an embedding by cosine similarity
// to query. Facts without an embedding, or of a different dimension, are
// never returned.
func (s *Store) SemanticSearch(query []float32, limit int) []Hit {
	if len(query) == 0 {
		return nil
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	var hits []Hit
	for _, e := range s.entries {
		if len(e.Embedding) != len(query) {
			continue
		}
		if sim := cosine(query, e.Embedding); sim > 0 {
			hits = append(hits, Hit{Entry: e, Score: sim})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
