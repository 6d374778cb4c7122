package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/peterh/liner"
	"github.com/samber/lo"

	"github.com/you-not-fish/plotkit/internal/eval"
	"github.com/you-not-fish/plotkit/internal/plot"
	"github.com/you-not-fish/plotkit/internal/scene"
	"github.com/you-not-fish/plotkit/internal/syntax"
	"github.com/you-not-fish/plotkit/internal/view"
)

const (
	historyFile = ".plotc_history"
	prompt      = "plot> "
)

var palette = []plot.Color{plot.Green, plot.Red, plot.Blue, plot.Yellow, plot.Cyan, plot.Magenta}

var commands = []string{
	":help", ":quit", ":ls", ":rm", ":set", ":let", ":time", ":play",
	":pan", ":zoom", ":update", ":tokens", ":ast",
}

const helpText = `Enter a definition such as f(x, a) = a*sin(x) to plot it, or a bare
expression to evaluate it with the :let bindings.

  :ls                    list functions
  :rm NAME               remove a function
  :set FUNC PARAM VALUE  set a parameter (clamped to [-10, 10])
  :let NAME VALUE        bind a variable for bare expressions
  :time T                set the animation time
  :play                  pause or resume the clock
  :pan DX DY             move the view in world units
  :zoom STEPS            zoom around the view center
  :update                re-sample stale functions
  :tokens EXPR           show tokens
  :ast EXPR              show the syntax tree
  :quit                  leave
`

// session is the state of one interactive run.
type session struct {
	sc     *scene.Scene
	view   *view.View
	env    eval.Env
	out    io.Writer
	colors int
}

func newSession(sc *scene.Scene, v *view.View, out io.Writer) *session {
	return &session{sc: sc, view: v, env: eval.NewEnv(), out: out}
}

// runREPL reads lines until EOF or :quit.
func runREPL(o options) int {
	sc, v, done, err := newScene(o)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer done()
	s := newSession(sc, v, os.Stdout)

	fmt.Printf("plotkit %s, :help for commands\n", Version)

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(s.complete)

	home, _ := os.UserHomeDir()
	histPath := filepath.Join(home, historyFile)
	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	for {
		line, err := ln.Prompt(prompt)
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, liner.ErrPromptAborted) {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			fmt.Println()
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		ln.AppendHistory(line)
		if s.handle(line) {
			break
		}
	}

	if f, err := os.Create(histPath); err == nil {
		_, _ = ln.WriteHistory(f)
		_ = f.Close()
	}
	return 0
}

// handle runs one input line and reports whether the session should
// end.
func (s *session) handle(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if strings.HasPrefix(line, ":") {
		return s.command(line)
	}
	if strings.Contains(line, "=") {
		s.define(line)
		return false
	}
	s.evaluate(line)
	return false
}

func (s *session) printf(format string, args ...interface{}) {
	fmt.Fprintf(s.out, format, args...)
}

func (s *session) define(expr string) {
	c := palette[s.colors%len(palette)]
	f, err := s.sc.Add("", expr, c)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	s.colors++
	s.update()
	s.describe(f)
}

func (s *session) evaluate(expr string) {
	n, err := syntax.ParseString(expr)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	env := s.env.Clone()
	if _, ok := env.Lookup(syntax.VarT); !ok {
		env.Set(syntax.VarT, s.sc.Time())
	}
	v, err := eval.Eval(n, env)
	if err != nil {
		s.printf("%v\n", err)
		return
	}
	s.printf("%s\n", strconv.FormatFloat(v, 'g', -1, 64))
}

func (s *session) update() {
	if _, err := s.sc.Update(); err != nil {
		s.printf("%v\n", err)
	}
}

func (s *session) describe(f *scene.Function) {
	s.printf("%s: %s [%s]", f.Name, syntax.String(f.Header), f.Flags())
	if ps := f.Parameters(); len(ps) > 0 {
		s.printf(" %s", strings.Join(lo.Map(ps, func(p scene.Parameter, _ int) string {
			return fmt.Sprintf("%s=%g", p.Name, p.Value)
		}), " "))
	}
	if res := f.Result(); res != nil {
		s.printf(" %d polylines, %d vertices", len(res.Polylines), res.NumVertices())
	}
	if f.Dirty() {
		s.printf(" (stale)")
	}
	s.printf("\n")
}

func (s *session) command(line string) (quit bool) {
	fields := strings.Fields(line)
	cmd, args := fields[0], fields[1:]
	rest := strings.TrimSpace(strings.TrimPrefix(line, cmd))

	switch cmd {
	case ":q", ":quit":
		return true

	case ":help":
		s.printf("%s", helpText)

	case ":ls":
		for _, f := range s.sc.Functions() {
			s.describe(f)
		}

	case ":rm":
		if len(args) != 1 {
			s.printf("usage: :rm NAME\n")
			break
		}
		if _, err := s.sc.Function(args[0]); err != nil {
			s.printf("%v\n", err)
			break
		}
		s.sc.Remove(args[0])

	case ":set":
		if len(args) != 3 {
			s.printf("usage: :set FUNC PARAM VALUE\n")
			break
		}
		v, ok := s.number(args[2])
		if !ok {
			break
		}
		got, err := s.sc.SetParameter(args[0], args[1], v)
		if err != nil {
			s.printf("%v\n", err)
			break
		}
		s.update()
		s.printf("%s.%s = %g\n", args[0], args[1], got)

	case ":let":
		if len(args) != 2 {
			s.printf("usage: :let NAME VALUE\n")
			break
		}
		if v, ok := s.number(args[1]); ok {
			s.env.Set(args[0], v)
		}

	case ":time":
		if len(args) != 1 {
			s.printf("time = %g\n", s.sc.Time())
			break
		}
		if v, ok := s.number(args[0]); ok {
			s.sc.SetTime(v)
			s.update()
		}

	case ":play":
		if s.sc.TogglePlay() {
			s.printf("playing\n")
		} else {
			s.printf("paused\n")
		}

	case ":pan":
		if len(args) != 2 {
			s.printf("usage: :pan DX DY\n")
			break
		}
		dx, ok1 := s.number(args[0])
		dy, ok2 := s.number(args[1])
		if ok1 && ok2 {
			s.view.Translate(plot.Vec2{X: dx, Y: dy})
			s.update()
		}

	case ":zoom":
		if len(args) != 1 {
			s.printf("usage: :zoom STEPS\n")
			break
		}
		steps, ok := s.number(args[0])
		if !ok {
			break
		}
		c := s.view.WorldToScreen(s.view.Translation())
		if err := s.view.Zoom(steps, c); err != nil {
			s.printf("%v\n", err)
			break
		}
		s.update()

	case ":update":
		s.update()

	case ":tokens":
		for _, tok := range syntax.Tokenize(rest) {
			s.printf("%s\n", tok)
		}

	case ":ast":
		n, err := syntax.ParseString(rest)
		if err != nil {
			s.printf("%v\n", err)
			break
		}
		syntax.Fprint(s.out, n)

	default:
		s.printf("unknown command %s", cmd)
		if m := closest(cmd, commands); m != "" {
			s.printf(" (did you mean %s?)", m)
		}
		s.printf("\n")
	}
	return false
}

func (s *session) number(arg string) (float64, bool) {
	v, err := strconv.ParseFloat(arg, 64)
	if err != nil {
		s.printf("invalid number %q\n", arg)
		return 0, false
	}
	return v, true
}

// complete offers commands, builtin names and constants for the word
// under the cursor. Function names are only offered as the first
// argument of :rm and :set, since expressions cannot call them.
func (s *session) complete(line string) []string {
	if strings.HasPrefix(line, ":") {
		return s.completeCommand(line)
	}
	i := strings.LastIndexAny(line, " (+-*/^,=") + 1
	head, word := line[:i], line[i:]
	if word == "" {
		return nil
	}
	candidates := syntax.Functions()
	for _, c := range syntax.Constants() {
		candidates = append(candidates, c.Name)
	}
	return withPrefix(head, word, candidates)
}

func (s *session) completeCommand(line string) []string {
	i := strings.LastIndex(line, " ") + 1
	head, word := line[:i], line[i:]
	fields := strings.Fields(head)
	switch {
	case len(fields) == 0:
		return withPrefix("", word, commands)
	case len(fields) == 1 && (fields[0] == ":rm" || fields[0] == ":set"):
		return withPrefix(head, word, s.sc.Names())
	}
	return nil
}

// withPrefix returns head+c for every candidate c that starts with word.
func withPrefix(head, word string, candidates []string) []string {
	matches := lo.Filter(candidates, func(c string, _ int) bool { return strings.HasPrefix(c, word) })
	return lo.Map(matches, func(c string, _ int) string { return head + c })
}

// closest returns the best fuzzy match for name, or "".
func closest(name string, candidates []string) string {
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		return ""
	}
	sort.Sort(ranks)
	return ranks[0].Target
}
