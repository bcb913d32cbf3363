package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"songbook/internal/batch"
	"songbook/internal/grassiness"
)

const sorrowPage = `<html><head><title>Man of Constant Sorrow | Stanley Brothers</title></head><body><pre>
G             G7          C
I am the ma-n of constant sorrow
</pre></body></html>`

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SONGBOOK_CONFIG", filepath.Join(dir, "missing.json"))
	t.Setenv("SONGBOOK_OUT_DIR", filepath.Join(dir, "out"))
	t.Setenv("SONGBOOK_CACHE_DIR", "")
	t.Setenv("SONGBOOK_DB", "off")
	t.Setenv("SONGBOOK_CATALOG", filepath.Join(dir, "catalog.json"))
	t.Setenv("SONGBOOK_EMBEDDINGS", "")
	t.Setenv("SONGBOOK_COMPLETION_CACHE_DIR", filepath.Join(dir, "completion"))
	return dir
}

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := ExecuteWith(context.Background(), append([]string{"--no-color"}, args...), Streams{
		Stdin:  strings.NewReader(stdin),
		Stdout: &stdout,
		Stderr: &stderr,
	})
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestParseCommandWritesOutputsAndIndex(t *testing.T) {
	dir := isolate(t)
	in := filepath.Join(dir, "pages")
	if err := os.MkdirAll(in, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(in, "sorrow.html"), sorrowPage)
	out := filepath.Join(dir, "parsed")
	db := filepath.Join(dir, "index.db")

	stdout, _, err := run(t, "", "--json", "--db", db, "parse", "--input", in, "--out", out)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var sum batch.Summary
	if err := json.Unmarshal([]byte(stdout), &sum); err != nil {
		t.Fatalf("summary json: %v\n%s", err, stdout)
	}
	if sum.Mode != "parse" || sum.Counts[batch.OutcomeOK] != 1 || sum.RunID == "" {
		t.Fatalf("summary=%+v", sum)
	}
	pro, err := os.ReadFile(filepath.Join(out, "sorrow.pro"))
	if err != nil {
		t.Fatalf("chordpro: %v", err)
	}
	if !strings.Contains(string(pro), "{title: Man of Constant Sorrow}") {
		t.Fatalf("chordpro=%s", pro)
	}
	if _, err := os.Stat(filepath.Join(out, "cache", "sorrow.html")); err != nil {
		t.Fatalf("raw page not cached: %v", err)
	}
	if _, err := os.Stat(db); err != nil {
		t.Fatalf("index not created: %v", err)
	}
}

func TestParseSingleFileTable(t *testing.T) {
	dir := isolate(t)
	page := filepath.Join(dir, "sorrow.html")
	writeFile(t, page, sorrowPage)

	stdout, _, err := run(t, "", "--plain", "parse", "--input", page, "--dry-run")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for _, want := range []string{"SLUG", "sorrow", "artist,title,chords,lines", "ok 1", "[dry run]"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("missing %q in\n%s", want, stdout)
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "out")); !os.IsNotExist(err) {
		t.Fatalf("dry run wrote outputs: %v", err)
	}
}

func TestMergeSingleFromStdin(t *testing.T) {
	dir := isolate(t)
	ref := filepath.Join(dir, "walk.json")
	writeFile(t, ref, `{"title":"Walk","artist":"Someone","lines":["I walked down the road","And I saw her there"]}`)

	stdout, _, err := run(t, "C      G\nI walked down the street\n", "merge", "--ref", ref, "--source", "-")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.HasPrefix(stdout, "{title: Walk}\n") || !strings.Contains(stdout, "[C]I [G]walked down the road\n") {
		t.Fatalf("stdout=%s", stdout)
	}

	stdout, _, err = run(t, "C      G\nI walked down the street\n", "--json", "merge", "--ref", ref)
	if err != nil {
		t.Fatalf("merge json: %v", err)
	}
	var got struct {
		Record struct {
			Slug    string `json:"bl_slug"`
			Metrics struct {
				Coverage float64 `json:"coverage"`
			} `json:"metrics"`
		} `json:"record"`
		Mode string `json:"mode"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if got.Record.Slug != "walk" || got.Record.Metrics.Coverage != 0.5 || got.Mode != "lexical" {
		t.Fatalf("got=%+v", got)
	}
}

func TestMergeZeroThresholdIsHonored(t *testing.T) {
	dir := isolate(t)
	ref := filepath.Join(dir, "walk.json")
	writeFile(t, ref, `{"lines":["I walked down the road"]}`)

	stdout, _, err := run(t, "C      G\nnothing alike at all here\n", "--json", "merge", "--ref", ref, "--lexical-threshold", "0")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var got struct {
		Record struct {
			Metrics struct {
				Coverage float64 `json:"coverage"`
			} `json:"metrics"`
		} `json:"record"`
	}
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if got.Record.Metrics.Coverage != 1 {
		t.Fatalf("coverage=%v, want 1 at threshold 0", got.Record.Metrics.Coverage)
	}
}

func TestMergeBatch(t *testing.T) {
	dir := isolate(t)
	refs := filepath.Join(dir, "refs")
	sources := filepath.Join(dir, "sources")
	for _, d := range []string{refs, sources} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}
	writeFile(t, filepath.Join(refs, "walk.json"), `{"lines":["I walked down the road"]}`)
	writeFile(t, filepath.Join(sources, "walk.txt"), "C      G\nI walked down the road\n")
	out := filepath.Join(dir, "merged")

	stdout, _, err := run(t, "", "--plain", "merge", "--refs", refs, "--sources", sources, "--out", out, "--song", "walk")
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.Contains(stdout, "eligible 1") || !strings.Contains(stdout, "100%") {
		t.Fatalf("stdout=%s", stdout)
	}
	if _, err := os.Stat(filepath.Join(out, "walk.merge.json")); err != nil {
		t.Fatalf("record not written: %v", err)
	}
}

func TestUsageErrors(t *testing.T) {
	dir := isolate(t)
	cases := [][]string{
		{"merge"},
		{"merge", "--refs", dir, "--sources", dir, "--lexical-threshold", "1.5"},
		{"merge", "--ref", "x.json", "--embeddings"},
		{"parse", "--bogus"},
		{"parse", "--input", filepath.Join(dir, "nope")},
		{"parse", "extra"},
		{"grassiness"},
		{"grassiness", "add", "--title", "Rocky Top"},
		{"nonsense"},
	}
	for _, args := range cases {
		_, _, err := run(t, "", args...)
		if !IsUsage(err) {
			t.Fatalf("%v: err=%v, want usage error", args, err)
		}
	}
}

func TestGrassinessAddThenScore(t *testing.T) {
	dir := isolate(t)
	catalog := filepath.Join(dir, "catalog.json")

	if _, _, err := run(t, "", "grassiness", "add", "--catalog", catalog, "--title", "Rocky Top", "--artist", "The Osborne Brothers", "-n", "2"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, _, err := run(t, "", "grassiness", "add", "--catalog", catalog, "--title", "Rocky Top", "--tag", "bluegrass"); err != nil {
		t.Fatalf("add tag: %v", err)
	}

	stdout, _, err := run(t, "", "--json", "grassiness", "--catalog", catalog, "rocky top!")
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	var recs []grassiness.Record
	if err := json.Unmarshal([]byte(stdout), &recs); err != nil {
		t.Fatalf("json: %v\n%s", err, stdout)
	}
	if len(recs) != 1 || recs[0].NormalizedTitle != "rocky top" || recs[0].Score != 5 || recs[0].Tier != grassiness.TierLikely {
		t.Fatalf("recs=%+v", recs)
	}

	stdout, _, err = run(t, "", "--plain", "grassiness", "--catalog", catalog, "--all")
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if !strings.Contains(stdout, "rocky top") || !strings.Contains(stdout, "osborne-brothers×2=4") {
		t.Fatalf("stdout=%s", stdout)
	}
}

func TestSlugCompletionCache(t *testing.T) {
	isolate(t)
	now := time.Now()
	if err := storeSlugCompletions(now, "/pages", ".html", []string{"a", "b"}); err != nil {
		t.Fatal(err)
	}
	got, ok := cachedSlugCompletions(now.Add(time.Second), "/pages", ".html")
	if !ok || len(got) != 2 {
		t.Fatalf("got=%v ok=%v", got, ok)
	}
	if _, ok := cachedSlugCompletions(now.Add(time.Second), "/other", ".html"); ok {
		t.Fatalf("cache should be keyed by directory")
	}
	if _, ok := cachedSlugCompletions(now.Add(time.Minute), "/pages", ".html"); ok {
		t.Fatalf("cache should expire")
	}
}
