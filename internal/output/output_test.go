package output

import (
	"bytes"
	"strings"
	"testing"
)

func newBuffered(opts Options) (*Output, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	opts.NoColor = true
	opts.Stdout, opts.Stderr = &stdout, &stderr
	return New(opts), &stdout, &stderr
}

func TestQuietAndJSONSuppressInfo(t *testing.T) {
	for _, opts := range []Options{{Quiet: true}, {JSON: true}} {
		o, stdout, stderr := newBuffered(opts)
		o.Info("hello")
		o.Success("done")
		o.Table([][]string{{"a"}, {"b"}})
		o.Error("boom")
		if stdout.Len() != 0 {
			t.Fatalf("%+v: stdout=%q", opts, stdout.String())
		}
		if stderr.String() != "boom\n" {
			t.Fatalf("%+v: stderr=%q", opts, stderr.String())
		}
	}
}

func TestDebugNeedsVerbose(t *testing.T) {
	o, _, stderr := newBuffered(Options{})
	o.Debug("hidden")
	if stderr.Len() != 0 {
		t.Fatalf("stderr=%q", stderr.String())
	}
	o, _, stderr = newBuffered(Options{Verbose: true})
	o.Debug("shown")
	if stderr.String() != "shown\n" {
		t.Fatalf("stderr=%q", stderr.String())
	}
}

func TestTableAligns(t *testing.T) {
	o, stdout, _ := newBuffered(Options{Plain: true})
	o.Table([][]string{{"SLUG", "OUTCOME"}, {"rocky-top", "ok"}})
	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("lines=%q", lines)
	}
	if strings.Index(lines[0], "OUTCOME") != strings.Index(lines[1], "ok") {
		t.Fatalf("columns not aligned:\n%s", stdout.String())
	}
}

func TestEmitJSONAndRawIgnoreQuiet(t *testing.T) {
	o, stdout, _ := newBuffered(Options{Quiet: true})
	o.Raw("{title: x}\n")
	if err := o.EmitJSON(map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}
	if stdout.String() != "{title: x}\n{\n  \"n\": 1\n}\n" {
		t.Fatalf("stdout=%q", stdout.String())
	}
}
