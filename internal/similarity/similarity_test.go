package similarity

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalOrdersPairs(t *testing.T) {
	assert := assert.New(t)
	var lex Lexical
	near := lex.Score("the quick brown fox", "the fast tan dog")
	far := lex.Score("hello world", "goodbye universe")
	assert.Greater(near, far)
	assert.InDelta(1.0, lex.Score("I walked down", "i WALKED down!"), 1e-9)
	assert.Zero(lex.Score("", "anything"))
	assert.GreaterOrEqual(lex.Score("I walked down the street", "I walked down the road"), 0.6)
}

func TestLexicalIsSymmetric(t *testing.T) {
	var lex Lexical
	pairs := [][2]string{
		{"the quick brown fox", "the fast tan dog"},
		{"I am a man of constant sorrow", "a man of sorrow am I"},
		{"rocky top", "top rocky tennessee"},
	}
	for _, p := range pairs {
		if lex.Score(p[0], p[1]) != lex.Score(p[1], p[0]) {
			t.Fatalf("asymmetric for %q", p)
		}
	}
}

func testEmbeddings() MapEmbeddings {
	vec := func(vals ...float32) []float32 {
		v := make([]float32, Dim)
		copy(v, vals)
		return v
	}
	return MapEmbeddings{
		"road":   vec(1, 0.9, 0),
		"street": vec(0.9, 1, 0),
		"walked": vec(0, 0, 1),
		"i":      vec(0.1, 0, 0.1),
		"sorrow": vec(-1, 0, 0),
	}
}

func TestSemanticScores(t *testing.T) {
	assert := assert.New(t)
	sem := NewSemantic(testEmbeddings())
	near := sem.Score("I walked the road", "I walked the street")
	far := sem.Score("road", "sorrow")
	assert.Greater(near, 0.9)
	assert.Less(far, near)
	assert.Zero(far, "negative cosine clamps to zero")
	assert.Zero(sem.Score("unknown words", "road"), "no vocabulary on one side")
	assert.Equal(sem.Score("road i", "street walked"), sem.Score("street walked", "road i"))
	assert.Equal(ModeSemantic, sem.Mode())
}

func TestReadGloVe(t *testing.T) {
	vals := make([]string, Dim)
	for i := range vals {
		vals[i] = fmt.Sprintf("%.2f", float64(i)/10)
	}
	data := "Road " + strings.Join(vals, " ") + "\n\nstreet " + strings.Join(vals, " ") + "\n"
	m, err := ReadGloVe(strings.NewReader(data))
	require.NoError(t, err)
	v, ok := m.Vector("road")
	require.True(t, ok)
	assert.InDelta(t, 0.1, v[1], 1e-6)

	_, err = ReadGloVe(strings.NewReader("road 1 2 3\n"))
	assert.Error(t, err)
}

func TestLazyLoadsOnce(t *testing.T) {
	vals := strings.TrimSpace(strings.Repeat("0.5 ", Dim))
	path := filepath.Join(t.TempDir(), "glove.txt")
	require.NoError(t, os.WriteFile(path, []byte("road "+vals+"\n"), 0o644))

	lazy := Shared(path)
	assert.Same(t, lazy, Shared(path))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := lazy.Vector("road")
			assert.True(t, ok)
		}()
	}
	wg.Wait()

	require.NoError(t, os.Remove(path))
	_, err := lazy.Load()
	assert.NoError(t, err, "table stays cached after the file is gone")
}

func TestLazyReportsMissingFile(t *testing.T) {
	lazy := &Lazy{path: filepath.Join(t.TempDir(), "missing.txt")}
	_, err := lazy.Load()
	assert.Error(t, err)
	_, ok := lazy.Vector("road")
	assert.False(t, ok)
}
