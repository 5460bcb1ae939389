package index

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/assesskit/assessrec/internal/catalog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "index.db"))
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreSearchOrdersByDistance(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	items := []struct {
		id  string
		vec []float32
	}{
		{"a", []float32{1, 0, 0}},
		{"b", []float32{0.5, 0.5, 0}},
		{"c", []float32{0, 1, 0}},
	}
	for _, it := range items {
		a := catalog.Assessment{Name: it.id, URL: "https://example.com/" + it.id, TestTypes: []string{"K"}}
		if err := store.Upsert(ctx, it.id, a, it.vec); err != nil {
			t.Fatalf("upsert %s: %v", it.id, err)
		}
	}

	results, err := store.Search(ctx, []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}

	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Assessment.Name != "a" || results[1].Assessment.Name != "b" {
		t.Fatalf("unexpected order: %s, %s", results[0].Assessment.Name, results[1].Assessment.Name)
	}
	if results[0].Distance > 1e-6 {
		t.Fatalf("expected near-zero distance for exact match, got %f", results[0].Distance)
	}
	if results[0].Distance >= results[1].Distance {
		t.Fatalf("expected ascending distances: %f, %f", results[0].Distance, results[1].Distance)
	}
}

func TestStoreSearchEmptyIndex(t *testing.T) {
	store := openTestStore(t)

	results, err := store.Search(context.Background(), []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "index.db")
	ctx := context.Background()

	store, err := Open(path)
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	a := catalog.Assessment{
		Name:      "Java Test",
		URL:       "https://example.com/java",
		TestTypes: []string{"K", "S"},
		Duration:  "40",
	}
	if err := store.Upsert(ctx, "java", a, []float32{0.2, 0.8}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	store.Close()

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer reopened.Close()

	if reopened.Count() != 1 {
		t.Fatalf("expected 1 entry after reopen, got %d", reopened.Count())
	}

	results, err := reopened.Search(ctx, []float32{0.2, 0.8}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	got := results[0].Assessment
	if got.Name != "Java Test" || len(got.TestTypes) != 2 || got.TestTypes[1] != "S" {
		t.Fatalf("metadata did not survive reopen: %#v", got)
	}
}

func TestStoreUpsertReplacesEntry(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	a := catalog.Assessment{Name: "v1", URL: "https://example.com/a"}
	if err := store.Upsert(ctx, "a", a, []float32{1, 0}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	a.Name = "v2"
	if err := store.Upsert(ctx, "a", a, []float32{0, 1}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("expected single entry, got %d", store.Count())
	}

	results, err := store.Search(ctx, []float32{0, 1}, 1)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if results[0].Assessment.Name != "v2" {
		t.Fatalf("expected updated entry, got %q", results[0].Assessment.Name)
	}
}

func TestNormalizeMakesUnitVectors(t *testing.T) {
	vec := normalize([]float32{3, 4})

	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	if math.Abs(sum-1) > 1e-6 {
		t.Fatalf("expected unit norm, got %f", sum)
	}
}
