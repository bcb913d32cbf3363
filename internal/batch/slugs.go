package batch

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	HTMLExt   = ".html"
	RefExt    = ".json"
	SourceExt = ".txt"
	URLExt    = ".url"
)

// ListSlugs returns the slugs of files in dir ending in ext, sorted. When
// only is set the result is that slug alone, which must exist. Names that
// are not valid slugs are kept so that Run reports them.
func ListSlugs(dir, ext, only string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ext) {
			continue
		}
		slug := strings.TrimSuffix(name, ext)
		if only != "" && slug != only {
			continue
		}
		out = append(out, slug)
	}
	if only != "" && len(out) == 0 {
		return nil, fmt.Errorf("no %s%s in %s", only, ext, dir)
	}
	sort.Strings(out)
	return out, nil
}
