package schema_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/juniorISO69960/schema.autobot.tf/internal/schema"
	"github.com/juniorISO69960/schema.autobot.tf/internal/schema/schematest"
)

func TestDocumentCacheEmpty(t *testing.T) {
	cache, err := schema.OpenDocumentCache(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	if _, _, _, err := cache.LoadLatest(); !errors.Is(err, schema.ErrNoCachedDocument) {
		t.Errorf("err = %v, want ErrNoCachedDocument", err)
	}
}

func TestDocumentCacheRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	snap := schematest.Snapshot(t)

	cache, err := schema.OpenDocumentCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := cache.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	cache.Close()

	// Reopen to verify persistence across processes.
	cache, err = schema.OpenDocumentCache(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	data, source, ts, err := cache.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest: %v", err)
	}
	if string(data) != string(snap.Document()) {
		t.Error("cached document differs from snapshot document")
	}
	if source != "test" {
		t.Errorf("source = %q, want test", source)
	}
	if !ts.Equal(snap.FetchedAt) {
		t.Errorf("fetched_at = %v, want %v", ts, snap.FetchedAt)
	}

	warm, err := schema.Parse(data, source, ts, schematest.Logger())
	if err != nil {
		t.Fatalf("parse cached document: %v", err)
	}
	if warm.Version != snap.Version {
		t.Errorf("version = %q, want %q", warm.Version, snap.Version)
	}
}

func TestDocumentCacheOverwrite(t *testing.T) {
	cache, err := schema.OpenDocumentCache(filepath.Join(t.TempDir(), "db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cache.Close()

	t1 := time.Unix(1700000000, 0)
	t2 := t1.Add(time.Hour)
	if err := cache.Save([]byte(`{"a":1}`), "one", t1); err != nil {
		t.Fatal(err)
	}
	if err := cache.Save([]byte(`{"a":2}`), "two", t2); err != nil {
		t.Fatal(err)
	}

	data, source, ts, err := cache.LoadLatest()
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"a":2}` || source != "two" || !ts.Equal(t2) {
		t.Errorf("got %s %q %v", data, source, ts)
	}
}
