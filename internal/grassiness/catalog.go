package grassiness

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// Evidence maps an artist id (or "tag:<name>") to a recording count.
type Evidence map[string]int

// Catalog maps normalised titles to their evidence. It is built offline and
// read-only to the scorer.
type Catalog map[string]Evidence

// Add records count recordings of title by artistName. Artist names are
// folded onto the artist table's ids.
func (c Catalog) Add(title, artistName string, count int) {
	if count <= 0 {
		return
	}
	key := NormalizeTitle(title)
	if key == "" {
		return
	}
	id, _ := ArtistID(artistName)
	if c[key] == nil {
		c[key] = Evidence{}
	}
	c[key][id] += count
}

// AddTag records count community tag votes for title.
func (c Catalog) AddTag(title, tag string, count int) {
	tag = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(tag)), TagPrefix)
	if tag == "" {
		return
	}
	c.Add(title, TagPrefix+tag, count)
}

// Titles lists the catalog keys in order.
func (c Catalog) Titles() []string {
	return sortedKeys(c)
}

// CatalogStore reads and writes a catalog JSON file.
type CatalogStore struct {
	path string
}

func NewCatalogStore(path string) (*CatalogStore, error) {
	if strings.TrimSpace(path) == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "songbook", "grassiness.json")
	}
	return &CatalogStore{path: path}, nil
}

func (s *CatalogStore) Path() string { return s.path }

// Load reads the catalog. Keys are renormalised and colliding evidence is
// summed. A missing file is an empty catalog.
func (s *CatalogStore) Load() (Catalog, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Catalog{}, nil
		}
		return nil, err
	}
	var raw map[string]map[string]int
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("parse grassiness catalog: %w", err)
	}
	cat := Catalog{}
	for title, ev := range raw {
		for who, n := range ev {
			if strings.HasPrefix(who, TagPrefix) {
				cat.AddTag(title, who, n)
				continue
			}
			cat.Add(title, who, n)
		}
	}
	return cat, nil
}

// Save writes the catalog atomically.
func (s *CatalogStore) Save(cat Catalog) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cat, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func sortedKeys[K constraints.Ordered, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func minInt[T constraints.Integer](a, b T) T {
	if a < b {
		return a
	}
	return b
}
