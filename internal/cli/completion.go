package cli

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"songbook/internal/batch"
	"songbook/internal/storage"
)

const slugCompletionCacheTTL = 30 * time.Second

type slugCompletionCacheFile struct {
	UpdatedAt time.Time `json:"updatedAt"`
	Dir       string    `json:"dir"`
	Ext       string    `json:"ext"`
	Slugs     []string  `json:"slugs"`
}

func readSlugCompletionCacheFile() (slugCompletionCacheFile, bool) {
	path, err := slugCompletionCachePath()
	if err != nil {
		return slugCompletionCacheFile{}, false
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return slugCompletionCacheFile{}, false
	}
	if len(raw) > 1<<20 {
		return slugCompletionCacheFile{}, false
	}

	var cache slugCompletionCacheFile
	if err := json.Unmarshal(raw, &cache); err != nil {
		return slugCompletionCacheFile{}, false
	}
	if cache.UpdatedAt.IsZero() || len(cache.Slugs) == 0 {
		return slugCompletionCacheFile{}, false
	}
	return cache, true
}

func cachedSlugCompletions(now time.Time, dir, ext string) ([]string, bool) {
	cache, ok := readSlugCompletionCacheFile()
	if !ok || cache.Dir != dir || cache.Ext != ext {
		return nil, false
	}
	if now.Sub(cache.UpdatedAt) > slugCompletionCacheTTL {
		return nil, false
	}
	return cache.Slugs, true
}

func storeSlugCompletions(now time.Time, dir, ext string, slugs []string) error {
	if len(slugs) == 0 {
		return errors.New("no slugs")
	}
	path, err := slugCompletionCachePath()
	if err != nil {
		return err
	}

	cacheDir := filepath.Dir(path)
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		return err
	}

	raw, err := json.Marshal(slugCompletionCacheFile{
		UpdatedAt: now,
		Dir:       dir,
		Ext:       ext,
		Slugs:     slugs,
	})
	if err != nil {
		return err
	}

	f, err := os.CreateTemp(cacheDir, "slug-completions-*.json")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()

	if _, err := f.Write(raw); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func slugCompletionCachePath() (string, error) {
	if override := os.Getenv("SONGBOOK_COMPLETION_CACHE_DIR"); override != "" {
		return filepath.Join(override, "songbook", "slug-completions.json"), nil
	}
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "songbook", "slug-completions.json"), nil
}

// slugCompletions lists the slugs in *dir ending in ext, using the cache
// while it is fresh. dir is read at completion time, after flags parse.
func slugCompletions(dir *string, ext string) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		now := time.Now()
		if slugs, ok := cachedSlugCompletions(now, *dir, ext); ok {
			return slugs, cobra.ShellCompDirectiveNoFileComp
		}
		slugs, err := batch.ListSlugs(*dir, ext, "")
		if err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
		valid := slugs[:0]
		for _, s := range slugs {
			if storage.CheckSlug(s) == nil {
				valid = append(valid, s)
			}
		}
		_ = storeSlugCompletions(now, *dir, ext, valid)
		return valid, cobra.ShellCompDirectiveNoFileComp
	}
}
