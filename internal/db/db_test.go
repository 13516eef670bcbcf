package db

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ziadkadry99/cortex/internal/facts"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	d, err := OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func TestOpenMemory(t *testing.T) {
	d := openMemory(t)
	for _, table := range []string{"facts", "refresh_runs"} {
		var count int
		if err := d.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}

func TestMigrateIdempotent(t *testing.T) {
	d := openMemory(t)
	if err := d.migrate(); err != nil {
		t.Fatalf("second migrate() error: %v", err)
	}
}

func sampleEntries() []facts.Entry {
	contract := facts.New(facts.KindContract, "svc-a", "svc-a/src/a.controller.ts", "GET /v1/widgets/:id", "svc-a exposes GET /v1/widgets/:id",
		[]string{"get", "v1", "widgets", ":id"}, facts.Meta{"method": "GET", "fullPath": "/v1/widgets/:id"}, 7)
	readme := facts.New(facts.KindReadme, "svc-a", "svc-a/README.md", "Widgets", "# Widgets", nil, nil, 0)
	readme.FullContent = "# Widgets"
	readme.References = []string{"ADR-1"}
	readme.Embedding = []float32{0.1, 0.2}
	return []facts.Entry{contract, readme}
}

func TestReplaceFactsRoundTrip(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)

	entries := sampleEntries()
	if err := d.ReplaceFacts(ctx, entries); err != nil {
		t.Fatal(err)
	}
	// A second snapshot replaces the first.
	if err := d.ReplaceFacts(ctx, entries); err != nil {
		t.Fatal(err)
	}

	got, err := d.Facts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	want, err := facts.Canonical(entries)
	if err != nil {
		t.Fatal(err)
	}
	for i := range want {
		want[i].Embedding = nil
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Facts() =\n%+v\nwant\n%+v", got, want)
	}

	counts, err := d.CountByKind(ctx)
	if err != nil {
		t.Fatal(err)
	}
	wantCounts := []KindCount{{facts.KindContract, 1}, {facts.KindReadme, 1}}
	if !reflect.DeepEqual(counts, wantCounts) {
		t.Errorf("CountByKind() = %+v", counts)
	}
}

func TestReplaceFactsEmpty(t *testing.T) {
	ctx := context.Background()
	d := openMemory(t)
	if err := d.ReplaceFacts(ctx, sampleEntries()); err != nil {
		t.Fatal(err)
	}
	if err := d.ReplaceFacts(ctx, nil); err != nil {
		t.Fatal(err)
	}
	got, err := d.Facts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %d facts after an empty snapshot", len(got))
	}
}

func TestRuns(t *testing.T) {
	ctx := context.Background()
	d, err := Open(filepath.Join(t.TempDir(), "cortex.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runs := []Run{
		{ID: "r1", StartedAt: start, FinishedAt: start.Add(time.Second), Forced: true, Repos: 2, Entries: 10},
		{ID: "r2", StartedAt: start.Add(time.Minute), FinishedAt: start.Add(time.Minute), CacheHit: true, Repos: 2, Entries: 10},
	}
	for _, r := range runs {
		if err := d.RecordRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}
	got, err := d.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "r2" || !got[0].CacheHit || got[1].ID != "r1" || !got[1].Forced {
		t.Errorf("RecentRuns() = %+v", got)
	}
	if !got[1].StartedAt.Equal(start) {
		t.Errorf("started_at = %v, want %v", got[1].StartedAt, start)
	}
}
