package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
)

type Options struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool
	NoColor bool

	// Stdout and Stderr default to the process streams.
	Stdout io.Writer
	Stderr io.Writer
}

type Output struct {
	JSON    bool
	Plain   bool
	Quiet   bool
	Verbose bool

	stdout io.Writer
	stderr io.Writer

	green  *color.Color
	yellow *color.Color
	red    *color.Color
	gray   *color.Color
	bold   *color.Color
}

func New(opts Options) *Output {
	if opts.NoColor || opts.Plain {
		color.NoColor = true
	}
	o := &Output{
		JSON:    opts.JSON,
		Plain:   opts.Plain,
		Quiet:   opts.Quiet,
		Verbose: opts.Verbose,
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow),
		red:     color.New(color.FgRed),
		gray:    color.New(color.FgHiBlack),
		bold:    color.New(color.Bold),
	}
	if o.stdout == nil {
		o.stdout = os.Stdout
	}
	if o.stderr == nil {
		o.stderr = os.Stderr
	}
	return o
}

func (o *Output) Green(s string) string {
	return o.green.Sprint(s)
}

func (o *Output) Yellow(s string) string {
	return o.yellow.Sprint(s)
}

func (o *Output) Red(s string) string {
	return o.red.Sprint(s)
}

func (o *Output) Gray(s string) string {
	return o.gray.Sprint(s)
}

func (o *Output) Bold(s string) string {
	return o.bold.Sprint(s)
}

// Status colours an outcome label: failures red, partial results yellow,
// everything else green.
func (o *Output) Status(label string, failed, partial bool) string {
	switch {
	case failed:
		return o.Red(label)
	case partial:
		return o.Yellow(label)
	}
	return o.Green(label)
}

func (o *Output) Info(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Success(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, o.Green(msg))
}

func (o *Output) Warn(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, o.Yellow(msg))
}

func (o *Output) Debug(msg string) {
	if o.JSON || !o.Verbose {
		return
	}
	fmt.Fprintln(o.stderr, o.Gray(msg))
}

func (o *Output) Error(msg string) {
	fmt.Fprintln(o.stderr, o.Red(msg))
}

func (o *Output) Print(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprintln(o.stdout, msg)
}

func (o *Output) Write(msg string) {
	if o.JSON || o.Quiet {
		return
	}
	fmt.Fprint(o.stdout, msg)
}

// Table prints tab-aligned rows. The first row is the header and is bold
// unless output is plain.
func (o *Output) Table(rows [][]string) {
	if o.JSON || o.Quiet || len(rows) == 0 {
		return
	}
	tw := tabwriter.NewWriter(o.stdout, 0, 0, 2, ' ', 0)
	for i, r := range rows {
		cells := r
		if i == 0 && !o.Plain {
			cells = make([]string, len(r))
			for j, c := range r {
				cells[j] = o.Bold(c)
			}
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	_ = tw.Flush()
}

// Raw writes s to stdout regardless of quiet mode. It is for command
// results such as rendered ChordPro.
func (o *Output) Raw(s string) {
	fmt.Fprint(o.stdout, s)
}

func (o *Output) EmitJSON(v any) error {
	enc := json.NewEncoder(o.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
