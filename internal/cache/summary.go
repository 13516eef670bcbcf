package cache

// Summary is the JSON-friendly view of a refresh result.
type Summary struct {
	RunID      string   `json:"runId"`
	Repos      int      `json:"repos"`
	Entries    int      `json:"entries"`
	CacheHit   bool     `json:"cacheHit"`
	Forced     bool     `json:"forced"`
	Embedded   int      `json:"embedded,omitempty"`
	DurationMS int64    `json:"durationMs"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Summary returns the result without its entries.
func (r *Result) Summary() Summary {
	s := Summary{
		RunID:      r.RunID,
		Repos:      r.Repos,
		Entries:    len(r.Entries),
		CacheHit:   r.CacheHit,
		Forced:     r.Forced,
		Embedded:   r.Embedded,
		DurationMS: r.Duration.Milliseconds(),
	}
	if r.Warnings != nil {
		for _, err := range r.Warnings.Errors {
			s.Warnings = append(s.Warnings, err.Error())
		}
	}
	return s
}
