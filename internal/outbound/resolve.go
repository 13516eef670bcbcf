// Package outbound finds the HTTP calls a repo makes to its siblings and
// resolves which repo each call targets.
package outbound

import "strings"

// envSuffixes mark configuration keys that name a service. They are
// trimmed in this order, each at most once.
var envSuffixes = []string{"_HOST", "_URL", "_SERVICE_HOST"}

// MatchPolicy picks one repo id among the candidates whose normalized id
// contains, or is contained in, the normalized hint. Candidates are in
// discovery order and never empty.
type MatchPolicy func(hint string, candidates []string) string

// FirstInDiscoveryOrder returns the first candidate.
func FirstInDiscoveryOrder(_ string, candidates []string) string {
	return candidates[0]
}

// ExactThenFirst prefers a candidate equal to the hint, else the first.
func ExactThenFirst(hint string, candidates []string) string {
	for _, c := range candidates {
		if normalizeID(c) == hint {
			return c
		}
	}
	return candidates[0]
}

// EnvToServiceID maps a configuration key such as SVC_A_URL to a repo id
// using FirstInDiscoveryOrder. It returns "" when the key has no recognised
// suffix or nothing matches.
func EnvToServiceID(key string, repoIDs []string) string {
	return ResolveServiceID(key, repoIDs, FirstInDiscoveryOrder)
}

// ResolveServiceID is EnvToServiceID with an explicit tie-break policy.
func ResolveServiceID(key string, repoIDs []string, policy MatchPolicy) string {
	hint := ServiceHint(key)
	if hint == "" {
		return ""
	}
	norm := normalizeID(hint)
	var candidates []string
	for _, id := range repoIDs {
		idNorm := normalizeID(id)
		if idNorm == "" {
			continue
		}
		if strings.Contains(idNorm, norm) || strings.Contains(norm, idNorm) {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	if policy == nil {
		policy = FirstInDiscoveryOrder
	}
	return policy(norm, candidates)
}

// ServiceHint turns APPLICATION_SERVICE_HOST into "application-service":
// the key is uppercased, the known suffixes are trimmed in order and the
// rest is hyphenated and lowercased. Keys without a known suffix, or whose hint is shorter than
// two characters, yield "".
func ServiceHint(key string) string {
	upper := strings.ToUpper(strings.TrimSpace(key))
	known := false
	for _, s := range envSuffixes {
		known = known || strings.HasSuffix(upper, s)
	}
	if !known {
		return ""
	}
	base := upper
	for _, s := range envSuffixes {
		base = strings.TrimSuffix(base, s)
	}
	base = strings.ToLower(strings.ReplaceAll(base, "_", "-"))
	if len(base) < 2 {
		return ""
	}
	return base
}

func normalizeID(id string) string {
	return strings.ReplaceAll(strings.ToLower(id), "-", "")
}
