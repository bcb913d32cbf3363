package similarity

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Dim is the width of the word vectors the semantic oracle expects.
const Dim = 50

// Embeddings maps a word to its vector; ok is false for out-of-vocabulary words.
type Embeddings interface {
	Vector(word string) ([]float32, bool)
}

// MapEmbeddings is an in-memory table.
type MapEmbeddings map[string][]float32

func (m MapEmbeddings) Vector(word string) ([]float32, bool) {
	v, ok := m[word]
	return v, ok
}

// ReadGloVe reads the GloVe text format: one word per line followed by Dim
// space-separated floats.
func ReadGloVe(r io.Reader) (MapEmbeddings, error) {
	out := MapEmbeddings{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != Dim+1 {
			return nil, fmt.Errorf("line %d: want %d values, got %d", lineNo, Dim, len(fields)-1)
		}
		vec := make([]float32, Dim)
		for i, f := range fields[1:] {
			v, err := strconv.ParseFloat(f, 32)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			vec[i] = float32(v)
		}
		out[strings.ToLower(fields[0])] = vec
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.New("no vectors")
	}
	return out, nil
}

// LoadGloVe reads a GloVe file from disk.
func LoadGloVe(path string) (MapEmbeddings, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	m, err := ReadGloVe(f)
	if err != nil {
		return nil, fmt.Errorf("read embeddings %s: %w", path, err)
	}
	return m, nil
}

// Lazy loads a GloVe file on first use and then serves it read-only.
type Lazy struct {
	path string
	once sync.Once
	emb  MapEmbeddings
	err  error
}

// Load reads the file once; later calls return the same table or error.
func (l *Lazy) Load() (Embeddings, error) {
	l.once.Do(func() {
		l.emb, l.err = LoadGloVe(l.path)
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.emb, nil
}

// Vector loads on first call. A failed load makes every word OOV; callers
// that care call Load first.
func (l *Lazy) Vector(word string) ([]float32, bool) {
	emb, err := l.Load()
	if err != nil {
		return nil, false
	}
	return emb.Vector(word)
}

var (
	sharedMu sync.Mutex
	shared   = map[string]*Lazy{}
)

// Shared returns the process-wide lazy table for path.
func Shared(path string) *Lazy {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	if l, ok := shared[path]; ok {
		return l
	}
	l := &Lazy{path: path}
	shared[path] = l
	return l
}
