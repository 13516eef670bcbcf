package facts

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		repo, suffix, want string
	}{
		{"svc-a", "contract:GET:/v1/widgets/:id", "svc-a:contract:GET::v1:widgets::id"},
		{"moor-sql", "accounts.ledger:migrations/001.sql", "moor-sql:accounts.ledger:migrations:001.sql"},
	}
	for _, tt := range tests {
		if got := Slug(tt.repo, tt.suffix); got != tt.want {
			t.Errorf("Slug(%q, %q) = %q, want %q", tt.repo, tt.suffix, got, tt.want)
		}
	}

	long := Slug("svc", strings.Repeat("→", 300))
	if n := len([]rune(long)); n != MaxIDLength {
		t.Errorf("long slug has %d runes, want %d", n, MaxIDLength)
	}
}

func TestNewIsStable(t *testing.T) {
	a := New(KindGlossary, "svc-a", "src/x.ts", "widget", "c", nil, nil, 3)
	b := New(KindGlossary, "svc-a", "src/x.ts", "widget", "other content", []string{"x"}, nil, 9)
	if a.ID != b.ID {
		t.Errorf("ids differ for identical (source, title, path): %q vs %q", a.ID, b.ID)
	}
	if a.Tags == nil || a.References == nil {
		t.Error("tags and references must be non-nil")
	}
}

func TestDecodeMeta(t *testing.T) {
	type call struct {
		Method string `json:"method"`
	}
	e := New(KindEndpointMapping, "svc-b", "src/a.ts", "t", "c", nil, Meta{
		"toService": "svc-a",
		"calls":     []call{{Method: "GET"}},
	}, 0)

	var calls []call
	if err := e.DecodeMeta("calls", &calls); err != nil {
		t.Fatalf("DecodeMeta: %v", err)
	}
	if len(calls) != 1 || calls[0].Method != "GET" {
		t.Errorf("calls = %+v", calls)
	}
	if err := e.DecodeMeta("missing", &calls); err == nil {
		t.Error("expected error for missing key")
	}
	if got := e.MetaString("toService"); got != "svc-a" {
		t.Errorf("MetaString = %q", got)
	}
}

func TestCanonicalMatchesDecodedForm(t *testing.T) {
	type call struct {
		Path   string `json:"path"`
		Method string `json:"method"`
	}
	fresh := []Entry{New(KindEndpointMapping, "svc-b", "src/a.ts", "t", "c", []string{"http"}, Meta{
		"calls": []call{{Path: "/x", Method: "GET"}},
	}, 0)}

	canon, err := Canonical(fresh)
	if err != nil {
		t.Fatal(err)
	}
	data, _ := json.Marshal(canon)

	var loaded []Entry
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatal(err)
	}
	again, _ := json.Marshal(loaded)
	if string(data) != string(again) {
		t.Errorf("canonical form is not a fixed point:\n%s\n%s", data, again)
	}
}

func TestCanonicalEmpty(t *testing.T) {
	out, err := Canonical(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out == nil || len(out) != 0 {
		t.Errorf("Canonical(nil) = %#v, want empty non-nil slice", out)
	}
}
