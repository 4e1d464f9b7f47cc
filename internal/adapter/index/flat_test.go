package index

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/Aryan4717/media-mind-ai/internal/domain"
	"github.com/Aryan4717/media-mind-ai/internal/port"
)

func randomItems(r *rand.Rand, n, dim int) []port.IndexItem {
	items := make([]port.IndexItem, n)
	for i := range items {
		v := make([]float32, dim)
		for j := range v {
			v[j] = r.Float32()*2 - 1
		}
		items[i] = port.IndexItem{ChunkID: fmt.Sprintf("chunk-%d", i), Vector: v}
	}
	return items
}

func TestSearchMatchesBruteForce(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	items := randomItems(r, 50, 8)

	x := NewFlatIndex(t.TempDir())
	if err := x.Rebuild(items); err != nil {
		t.Fatal(err)
	}

	query := make([]float32, 8)
	for j := range query {
		query[j] = r.Float32()*2 - 1
	}

	matches, err := x.Search(query, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 10 {
		t.Fatalf("expected 10 matches, got %d", len(matches))
	}

	// Rank directly against the raw set and compare.
	type pair struct {
		id   string
		dist float64
	}
	expected := make([]pair, len(items))
	for i, item := range items {
		expected[i] = pair{item.ChunkID, squaredL2(query, item.Vector)}
	}
	sort.SliceStable(expected, func(i, j int) bool { return expected[i].dist < expected[j].dist })

	for i, m := range matches {
		if m.ChunkID != expected[i].id {
			t.Errorf("rank %d: got %s (d=%f), want %s (d=%f)",
				i, m.ChunkID, m.Distance, expected[i].id, expected[i].dist)
		}
		if i > 0 && matches[i].Distance < matches[i-1].Distance {
			t.Errorf("distances not ascending at rank %d", i)
		}
	}
}

func TestSearchReturnsAtMostIndexSize(t *testing.T) {
	x := NewFlatIndex(t.TempDir())
	if err := x.Rebuild(randomItems(rand.New(rand.NewSource(1)), 3, 4)); err != nil {
		t.Fatal(err)
	}
	matches, err := x.Search([]float32{0, 0, 0, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 3 {
		t.Errorf("expected min(top_k, size)=3 matches, got %d", len(matches))
	}
}

func TestEmptyIndexSearch(t *testing.T) {
	x := NewFlatIndex(t.TempDir())
	matches, err := x.Search([]float32{1, 2}, 5)
	if err != nil {
		t.Fatalf("empty index search must not fail: %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("expected no matches, got %d", len(matches))
	}
}

func TestRebuildEmptySetYieldsEmptyIndex(t *testing.T) {
	x := NewFlatIndex(t.TempDir())
	if err := x.Rebuild(randomItems(rand.New(rand.NewSource(2)), 5, 4)); err != nil {
		t.Fatal(err)
	}
	if err := x.Rebuild(nil); err != nil {
		t.Fatalf("rebuild on empty set is success, got %v", err)
	}
	if x.Size() != 0 {
		t.Errorf("expected empty index, size %d", x.Size())
	}
}

func TestAddEstablishesAndEnforcesDimension(t *testing.T) {
	x := NewFlatIndex(t.TempDir())

	if err := x.Add("a", []float32{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	err := x.Add("b", []float32{1, 2})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
	if x.Size() != 1 {
		t.Errorf("failed add must not mutate index size, got %d", x.Size())
	}

	if err := x.Add("c", []float32{4, 5, 6}); err != nil {
		t.Fatal(err)
	}
	if x.Size() != 2 {
		t.Errorf("expected size 2, got %d", x.Size())
	}
}

func TestScore(t *testing.T) {
	if got := Score(0); got != 1.0 {
		t.Errorf("Score(0) = %f, want 1.0", got)
	}
	if Score(1) >= Score(0.5) {
		t.Error("score must decrease with distance")
	}
	if s := Score(1e12); s <= 0 || s > 1 {
		t.Errorf("score out of (0,1]: %f", s)
	}
}

func TestPersistLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	items := randomItems(rand.New(rand.NewSource(7)), 20, 6)

	x := NewFlatIndex(dir)
	if err := x.Rebuild(items); err != nil {
		t.Fatal(err)
	}
	if err := x.Persist(); err != nil {
		t.Fatal(err)
	}

	restored := NewFlatIndex(dir)
	ok, err := restored.Load()
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected snapshot to load")
	}
	if restored.Size() != 20 {
		t.Fatalf("expected 20 vectors after load, got %d", restored.Size())
	}

	query := items[3].Vector
	a, err := x.Search(query, 5)
	if err != nil {
		t.Fatal(err)
	}
	b, err := restored.Search(query, 5)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].ChunkID != b[i].ChunkID {
			t.Errorf("rank %d differs after reload: %s vs %s", i, a[i].ChunkID, b[i].ChunkID)
		}
	}
	if b[0].ChunkID != "chunk-3" || b[0].Distance != 0 {
		t.Errorf("self-query should rank itself first at distance 0, got %s d=%f", b[0].ChunkID, b[0].Distance)
	}
}

func TestLoadMissingSnapshotYieldsEmptyIndex(t *testing.T) {
	x := NewFlatIndex(t.TempDir())
	ok, err := x.Load()
	if err != nil {
		t.Fatalf("missing snapshot is not an error: %v", err)
	}
	if ok || x.Size() != 0 {
		t.Errorf("expected empty index, ok=%v size=%d", ok, x.Size())
	}
}

func TestLoadPartialSnapshotYieldsEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	x := NewFlatIndex(dir)
	if err := x.Rebuild(randomItems(rand.New(rand.NewSource(3)), 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := x.Persist(); err != nil {
		t.Fatal(err)
	}

	// A mapping without its matrix (or vice versa) is "no index".
	if err := os.Remove(filepath.Join(dir, "mapping.json")); err != nil {
		t.Fatal(err)
	}
	ok, err := x.Load()
	if err != nil {
		t.Fatalf("partial snapshot is not an error: %v", err)
	}
	if ok || x.Size() != 0 {
		t.Errorf("expected empty index after partial snapshot, ok=%v size=%d", ok, x.Size())
	}
}

func TestLoadCorruptSnapshotYieldsEmptyIndex(t *testing.T) {
	dir := t.TempDir()
	x := NewFlatIndex(dir)
	if err := x.Rebuild(randomItems(rand.New(rand.NewSource(5)), 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := x.Persist(); err != nil {
		t.Fatal(err)
	}

	// Truncated matrix beside a valid mapping must be treated the same
	// as a missing snapshot, so the caller falls back to a rebuild.
	if err := os.WriteFile(filepath.Join(dir, "vectors.bin"), []byte("mmv1garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	ok, err := x.Load()
	if err != nil {
		t.Fatalf("corrupt snapshot is not an error: %v", err)
	}
	if ok || x.Size() != 0 {
		t.Errorf("expected empty index after corrupt snapshot, ok=%v size=%d", ok, x.Size())
	}

	// Same for a mapping that is not valid JSON.
	if err := x.Rebuild(randomItems(rand.New(rand.NewSource(5)), 4, 4)); err != nil {
		t.Fatal(err)
	}
	if err := x.Persist(); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "mapping.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	ok, err = x.Load()
	if err != nil {
		t.Fatalf("corrupt mapping is not an error: %v", err)
	}
	if ok || x.Size() != 0 {
		t.Errorf("expected empty index after corrupt mapping, ok=%v size=%d", ok, x.Size())
	}
}
