package discovery

// Variant is the detected technology classification of a repo.
type Variant string

const (
	VariantSQL     Variant = "sql"
	VariantNest    Variant = "nest"
	VariantExpress Variant = "express"
	VariantSpring  Variant = "spring"
	VariantGo      Variant = "go"
	VariantFront   Variant = "front"
)

// Variants lists every variant in detection order.
var Variants = []Variant{VariantSQL, VariantNest, VariantExpress, VariantSpring, VariantGo, VariantFront}

// IsService reports whether the variant is an HTTP service with routes.
func (v Variant) IsService() bool {
	switch v {
	case VariantNest, VariantExpress, VariantSpring, VariantGo:
		return true
	}
	return false
}

// RouteInfo is one extracted HTTP endpoint declaration.
type RouteInfo struct {
	Method       string `json:"method"`
	Path         string `json:"path"`
	FullPath     string `json:"fullPath"`
	FilePath     string `json:"filePath"`
	Line         int    `json:"line,omitempty"`
	RequestType  string `json:"requestType,omitempty"`
	ResponseType string `json:"responseType,omitempty"`
	HandlerName  string `json:"handlerName,omitempty"`
}

// RouteExtractor extracts the routes a repo exposes. Implementations never
// fail: unreadable or unrecognised files contribute nothing.
type RouteExtractor interface {
	ExtractRoutes(repo Repo, workspaceRoot string) []RouteInfo
}

// Extractors maps each service variant to its route extractor.
type Extractors map[Variant]RouteExtractor

// Repo is one discovered repository. It is immutable for a refresh cycle.
type Repo struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Variant        Variant `json:"type"`
	Path           string  `json:"absolutePath"`
	ControllerPath string  `json:"controllersPath,omitempty"`
	Description    string  `json:"description,omitempty"`

	routes RouteExtractor
}

// ExtractRoutes runs the extractor selected for the repo at discovery time.
// Repos without one (sql, front) have no routes.
func (r Repo) ExtractRoutes(workspaceRoot string) []RouteInfo {
	if r.routes == nil {
		return nil
	}
	return r.routes.ExtractRoutes(r, workspaceRoot)
}

// WithExtractor returns a copy of r that dispatches ExtractRoutes to e.
func (r Repo) WithExtractor(e RouteExtractor) Repo {
	r.routes = e
	return r
}

// IDs returns the repo identifiers in discovery order.
func IDs(repos []Repo) []string {
	ids := make([]string, len(repos))
	for i, r := range repos {
		ids[i] = r.ID
	}
	return ids
}
