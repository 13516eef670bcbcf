package outbound

// PathSpec is either a literal path or a symbolic path key, used when a
// call site passes a variable rather than a string.
type PathSpec struct {
	Literal string `json:"literal,omitempty"`
	PathKey string `json:"pathKey,omitempty"`
}

// Literal returns a PathSpec for a literal path.
func Literal(p string) PathSpec { return PathSpec{Literal: p} }

// Key returns a PathSpec for a symbolic path key.
func Key(k string) PathSpec { return PathSpec{PathKey: k} }

// IsKey reports whether the spec is symbolic.
func (p PathSpec) IsKey() bool { return p.Literal == "" && p.PathKey != "" }

// Raw returns the literal or the key, without decoration.
func (p PathSpec) Raw() string {
	if p.IsKey() {
		return p.PathKey
	}
	return p.Literal
}

// String returns the display form: the literal itself, or "[key]".
// The zero value displays as "/".
func (p PathSpec) String() string {
	switch {
	case p.Literal != "":
		return p.Literal
	case p.PathKey != "":
		return "[" + p.PathKey + "]"
	default:
		return "/"
	}
}

// Call is one outbound HTTP call site.
type Call struct {
	Method string   `json:"method"`
	Path   PathSpec `json:"path"`
}

// DedupeKey identifies a call within a mapping.
func (c Call) DedupeKey() string {
	return c.Method + ":" + c.Path.Raw()
}

// String renders "GET /v1/widgets" or "GET [pathWidgets]".
func (c Call) String() string {
	return c.Method + " " + c.Path.String()
}

// Mapping is the set of calls one file of FromRepo makes to ToService.
type Mapping struct {
	FromRepo  string `json:"fromRepo"`
	ToService string `json:"toService"`
	EnvVar    string `json:"envVar"`
	FilePath  string `json:"filePath"`
	Calls     []Call `json:"calls"`
}

// ServiceCall is a configuration read that names another repo.
type ServiceCall struct {
	FromRepo     string `json:"fromRepo"`
	ToService    string `json:"toService"`
	EnvVar       string `json:"envVar"`
	FilePath     string `json:"filePath"`
	Method       string `json:"method,omitempty"`
	PathFragment string `json:"pathFragment,omitempty"`
}

// callSet accumulates calls, dropping repeats of the same method and path.
type callSet struct {
	seen  map[string]bool
	calls []Call
}

func (s *callSet) add(method string, p PathSpec) {
	raw := p.Raw()
	if len(raw) == 0 || len(raw) >= maxPathLen {
		return
	}
	c := Call{Method: method, Path: p}
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[c.DedupeKey()] {
		return
	}
	s.seen[c.DedupeKey()] = true
	s.calls = append(s.calls, c)
}

const maxPathLen = 300
