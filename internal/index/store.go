package index

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/assesskit/assessrec/internal/catalog"
)

// Store persists assessment embeddings in SQLite and serves exact
// brute-force cosine search from memory. At catalog scale (a few hundred
// entries) this is sub-millisecond and exact, so no ANN index is needed.
// Vectors are normalized on upsert, making distance 1 minus the dot product.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	entries []storeEntry
}

type storeEntry struct {
	id   string
	item catalog.Assessment
	vec  []float32
}

// Result is a single search hit. Distance is cosine distance, ascending
// means more similar.
type Result struct {
	Assessment catalog.Assessment
	Distance   float64
}

// Open opens (or creates) the store at the given SQLite path and loads all
// vectors into memory.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open index database: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate index database: %w", err)
	}
	if err := s.loadAll(); err != nil {
		db.Close()
		return nil, fmt.Errorf("load index database: %w", err)
	}

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS assessments (
			id               TEXT PRIMARY KEY,
			name             TEXT NOT NULL,
			url              TEXT NOT NULL,
			test_types       TEXT NOT NULL DEFAULT '',
			duration         TEXT NOT NULL DEFAULT '',
			remote_support   TEXT NOT NULL DEFAULT '',
			adaptive_support TEXT NOT NULL DEFAULT '',
			description      TEXT NOT NULL DEFAULT '',
			embedding        BLOB NOT NULL,
			dimensions       INTEGER NOT NULL
		)
	`)
	return err
}

func (s *Store) loadAll() error {
	rows, err := s.db.Query(`
		SELECT id, name, url, test_types, duration, remote_support,
		       adaptive_support, description, embedding, dimensions
		FROM assessments
	`)
	if err != nil {
		return err
	}
	defer rows.Close()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	for rows.Next() {
		var (
			entry storeEntry
			types string
			blob  []byte
			dims  int
		)
		if err := rows.Scan(&entry.id, &entry.item.Name, &entry.item.URL, &types,
			&entry.item.Duration, &entry.item.RemoteSupport,
			&entry.item.AdaptiveSupport, &entry.item.Description, &blob, &dims); err != nil {
			return err
		}
		entry.item.TestTypes = splitTypes(types)
		entry.vec = blobToFloat32(blob, dims)
		s.entries = append(s.entries, entry)
	}
	return rows.Err()
}

// Upsert stores an assessment with its embedding. The vector is normalized
// before storage.
func (s *Store) Upsert(ctx context.Context, id string, item catalog.Assessment, vector []float32) error {
	normalized := normalize(vector)
	blob := float32ToBlob(normalized)

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (id, name, url, test_types, duration,
			remote_support, adaptive_support, description, embedding, dimensions)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, url=excluded.url, test_types=excluded.test_types,
			duration=excluded.duration, remote_support=excluded.remote_support,
			adaptive_support=excluded.adaptive_support, description=excluded.description,
			embedding=excluded.embedding, dimensions=excluded.dimensions
	`, id, item.Name, item.URL, strings.Join(item.TestTypes, ","), item.Duration,
		item.RemoteSupport, item.AdaptiveSupport, item.Description, blob, len(normalized))
	if err != nil {
		return err
	}

	for i := range s.entries {
		if s.entries[i].id == id {
			s.entries[i] = storeEntry{id: id, item: item, vec: normalized}
			return nil
		}
	}
	s.entries = append(s.entries, storeEntry{id: id, item: item, vec: normalized})
	return nil
}

// Search returns the topK closest assessments by cosine distance, ascending.
func (s *Store) Search(ctx context.Context, queryVec []float32, topK int) ([]Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		return nil, nil
	}

	query := normalize(queryVec)

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]Result, 0, len(s.entries))
	for _, entry := range s.entries {
		results = append(results, Result{
			Assessment: entry.item,
			Distance:   1 - dot(query, entry.vec),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Count reports the number of indexed assessments.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Reset drops all indexed assessments.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM assessments"); err != nil {
		return err
	}
	s.entries = nil
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func splitTypes(types string) []string {
	out := []string{}
	for _, t := range strings.Split(types, ",") {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	out := make([]float32, len(vec))
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func float32ToBlob(vec []float32) []byte {
	blob := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(blob[i*4:], math.Float32bits(v))
	}
	return blob
}

func blobToFloat32(blob []byte, dims int) []float32 {
	if dims*4 > len(blob) {
		dims = len(blob) / 4
	}
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vec
}
