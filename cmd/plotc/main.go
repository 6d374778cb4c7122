// Package main implements the plotkit command line driver.
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/alecthomas/repr"

	"github.com/you-not-fish/plotkit/internal/eval"
	"github.com/you-not-fish/plotkit/internal/plot"
	"github.com/you-not-fish/plotkit/internal/scene"
	"github.com/you-not-fish/plotkit/internal/syntax"
	"github.com/you-not-fish/plotkit/internal/view"
	"github.com/you-not-fish/plotkit/internal/workpool"
)

// Driver flags
var (
	emitTokens = flag.Bool("emit-tokens", false, "Output token stream")
	emitAST    = flag.Bool("emit-ast", false, "Output AST")
	astFormat  = flag.String("ast-format", "text", "AST output format (text, json or repr)")
	evalEnv    = flag.String("eval", "", "Evaluate with bindings, e.g. \"x=2,t=1\"")
	doSample   = flag.Bool("sample", false, "Sample the function and print polylines as CSV")
	stats      = flag.Bool("stats", false, "Print sampling statistics to stderr")
	repl       = flag.Bool("repl", false, "Start an interactive session")
	version    = flag.Bool("version", false, "Print version")
	verbose    = flag.Bool("v", false, "Verbose logging")

	workers     = flag.Int("workers", 0, "Sampling workers (0 = one per CPU minus one)")
	coarseSteps = flag.Int("coarse-steps", 0, "Coarse grid steps per visible extent")
	maxDepth    = flag.Int("max-depth", -1, "Bisection depth limit")
	intervals   = flag.Int("intervals", 0, "Grid ranges per sampling pass")
	cutoff      = flag.Float64("cutoff", 0, "Pole magnitude cutoff")

	params = flag.String("params", "", "Parameter values, e.g. \"a=2,b=-1\"")
	now    = flag.Float64("time", 0, "Animation time")
	center = flag.String("center", "0,0", "World point at the view center")
	zoom   = flag.Float64("zoom", 1, "View scale")
	anchor = flag.Float64("anchor", 0, "Waveform anchor as a fraction of the half-width")
	color  = flag.String("color", "green", "Polyline color")
)

// Version information
const Version = "0.1.0-dev"

// options collects the flags that shape a sampling pass.
type options struct {
	plot    plot.Config
	workers int
	params  string
	time    float64
	center  plot.Vec2
	zoom    float64
	anchor  float64
	color   plot.Color
	stats   bool
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "plotkit %s\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: plotc [options] <expression>\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if *version {
		fmt.Printf("plotc version %s\n", Version)
		fmt.Printf("go version %s\n", runtime.Version())
		os.Exit(0)
	}

	opts, err := optionsFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *repl {
		os.Exit(runREPL(opts))
	}

	expr := strings.Join(flag.Args(), " ")
	if strings.TrimSpace(expr) == "" {
		fmt.Fprintln(os.Stderr, "error: no expression")
		fmt.Fprintln(os.Stderr, "usage: plotc [options] <expression>")
		os.Exit(1)
	}

	switch {
	case *emitTokens:
		os.Exit(runEmitTokens(expr))
	case *emitAST:
		os.Exit(runEmitAST(expr, *astFormat))
	case *evalEnv != "":
		os.Exit(runEval(expr, *evalEnv))
	case *doSample:
		os.Exit(runSample(expr, opts))
	}

	// default: check the expression and print its canonical form
	n, err := syntax.ParseString(expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(syntax.String(n))
}

func optionsFromFlags() (options, error) {
	cfg := plot.DefaultConfig()
	if *coarseSteps > 0 {
		cfg.CoarseSteps = *coarseSteps
	}
	if *maxDepth >= 0 {
		cfg.MaxDepth = *maxDepth
	}
	if *intervals > 0 {
		cfg.Intervals = *intervals
	}
	if *cutoff > 0 {
		cfg.Cutoff = *cutoff
	}
	if err := cfg.Validate(); err != nil {
		return options{}, err
	}

	c, err := parseVec2(*center)
	if err != nil {
		return options{}, fmt.Errorf("-center: %w", err)
	}
	col, err := plot.ParseColor(*color)
	if err != nil {
		return options{}, fmt.Errorf("-color: %w", err)
	}
	return options{
		plot:    cfg,
		workers: *workers,
		params:  *params,
		time:    *now,
		center:  c,
		zoom:    *zoom,
		anchor:  *anchor,
		color:   col,
		stats:   *stats,
	}, nil
}

func defaultOptions() options {
	return options{plot: plot.DefaultConfig(), zoom: 1, color: plot.Green}
}

// parseVec2 parses "x,y".
func parseVec2(s string) (plot.Vec2, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return plot.Vec2{}, fmt.Errorf("want x,y, got %q", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return plot.Vec2{}, err
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return plot.Vec2{}, err
	}
	return plot.Vec2{X: x, Y: y}, nil
}

// runEmitTokens prints the token stream of expr.
func runEmitTokens(expr string) int {
	fmt.Printf("%-10s %-22s %s\n", "POSITION", "TOKEN", "LITERAL")
	fmt.Printf("%-10s %-22s %s\n", strings.Repeat("-", 10), strings.Repeat("-", 22), strings.Repeat("-", 8))
	for _, tok := range syntax.Tokenize(expr) {
		fmt.Printf("%-10s %-22s %q\n", tok.Pos, tok.Kind, tok.Text)
	}
	return 0
}

// runEmitAST parses expr and outputs the AST in the given format.
func runEmitAST(expr, format string) int {
	n, err := syntax.ParseString(expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	switch format {
	case "json":
		if err := syntax.FprintJSON(os.Stdout, n); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return 1
		}
	case "repr":
		fmt.Println(repr.String(n, repr.Indent("  ")))
	case "text":
		syntax.Fprint(os.Stdout, n)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown AST format %q\n", format)
		return 1
	}
	return 0
}

// runEval evaluates expr under the bindings in assignments.
func runEval(expr, assignments string) int {
	env, err := eval.ParseEnv(assignments)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: -eval: %v\n", err)
		return 1
	}
	n, err := syntax.ParseString(expr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	v, err := eval.Eval(n, env)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(strconv.FormatFloat(v, 'g', -1, 64))
	return 0
}

// newScene wires a pool, sampler, view and scene from o. The returned
// function releases the pool.
func newScene(o options) (*scene.Scene, *view.View, func(), error) {
	pool := workpool.New(o.workers)
	sampler, err := plot.New(o.plot, pool)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	v, err := view.New(view.DefaultConfig())
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}
	v.SetTranslation(o.center)
	v.SetScale(plot.Vec2{X: o.zoom, Y: o.zoom})

	sopts := scene.DefaultOptions()
	sopts.WaveformAnchor = o.anchor
	sc := scene.New(sampler, v, sopts)
	v.OnChange(sc.MarkDirty)
	sc.SetTime(o.time)
	return sc, v, pool.Close, nil
}

// runSample samples expr once and writes its polylines as CSV.
func runSample(expr string, o options) int {
	sc, v, done, err := newScene(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer done()

	f, err := sc.Add("f", expr, o.color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if o.params != "" {
		env, err := eval.ParseEnv(o.params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: -params: %v\n", err)
			return 1
		}
		for _, name := range env.Names() {
			if _, err := sc.SetParameter(f.Name, name, env[name]); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				return 1
			}
		}
	}

	if _, err := sc.Update(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	res := f.Result()
	if err := writeCSV(os.Stdout, res, v); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if o.stats {
		printStats(os.Stderr, f, res)
	}
	if len(res.Failed) > 0 {
		return 1
	}
	return 0
}

// writeCSV writes one row per vertex with both screen and world
// coordinates.
func writeCSV(w io.Writer, res *plot.Result, vp plot.Viewport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"line", "vertex", "screen_x", "screen_y", "world_x", "world_y"}); err != nil {
		return err
	}
	ff := func(v float64) string { return strconv.FormatFloat(v, 'g', 10, 64) }
	for i, line := range res.Polylines {
		for j, vert := range line {
			world := vp.ScreenToWorld(vert.Pos)
			row := []string{strconv.Itoa(i), strconv.Itoa(j), ff(vert.Pos.X), ff(vert.Pos.Y), ff(world.X), ff(world.Y)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func printStats(w io.Writer, f *scene.Function, res *plot.Result) {
	fmt.Fprintf(w, "function:  %s\n", syntax.String(f.Header))
	fmt.Fprintf(w, "flags:     %s\n", f.Flags())
	fmt.Fprintf(w, "polylines: %d\n", len(res.Polylines))
	fmt.Fprintf(w, "vertices:  %d\n", res.NumVertices())
	fmt.Fprintf(w, "evals:     %d\n", res.Evals)
	if len(res.Failed) > 0 {
		fmt.Fprintf(w, "failed:    %v\n", res.Failed)
	}
}
