// Package chart implements bottom-up PMCFG chart parsing over a decoded
// grammar. A parse call builds its own chart and discards it on return, so
// any number of parses may run concurrently against one grammar.
package chart

import (
	"fmt"
	"strings"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
	"github.com/FocuswithJustin/Lingonberry/core/expr"
	"github.com/FocuswithJustin/Lingonberry/core/pgf"
)

// Tokenizer splits a sentence into tokens. The default splits on
// whitespace; callers may supply more sophisticated segmentation.
type Tokenizer func(sentence string) []string

// Whitespace is the default tokenizer.
func Whitespace(sentence string) []string {
	return strings.Fields(sentence)
}

// span is a half-open token range [start, end).
type span struct {
	start, end int
}

// derivation is one established analysis: a category realized over one
// span per linearization field, with the tree that produced it and the
// parameter value its rule exposes.
type derivation struct {
	cat    string
	fields []span
	tree   *expr.Tree
	param  int
	// path holds every category on the chain of non-consuming
	// applications that produced this derivation, including its own.
	// It is nil after any application that matched a literal token.
	path map[string]bool
}

// key names a derivation's hash bucket by (category, span-set, tree hash).
// add confirms structural equality within a bucket before rejecting.
func (d *derivation) key() string {
	var b strings.Builder
	b.WriteString(d.cat)
	for _, f := range d.fields {
		fmt.Fprintf(&b, "|%d-%d", f.start, f.end)
	}
	fmt.Fprintf(&b, "#%x", d.tree.Hash())
	return b.String()
}

// chart holds the derivations established so far, grouped by category.
type chart struct {
	byCat map[string][]*derivation
	seen  map[string][]*expr.Tree
}

func newChart() *chart {
	return &chart{byCat: make(map[string][]*derivation), seen: make(map[string][]*expr.Tree)}
}

// add admits d unless an equal derivation is already present. Buckets that
// collide on the tree hash are disambiguated with a structural comparison,
// so a colliding pair of distinct trees is kept, not dropped.
func (ch *chart) add(d *derivation) bool {
	k := d.key()
	for _, t := range ch.seen[k] {
		if t.Equal(d.tree) {
			return false
		}
	}
	ch.seen[k] = append(ch.seen[k], d.tree)
	ch.byCat[d.cat] = append(ch.byCat[d.cat], d)
	return true
}

// Parse finds every abstract syntax tree of startCat that the grammar
// licenses for the token sequence in the given language. An empty result is
// a valid outcome, not an error; errors are reserved for an unknown
// language or category. An empty startCat defaults to the grammar's
// declared start category.
func Parse(g *pgf.Grammar, lang, startCat string, tokens []string) ([]*expr.Tree, error) {
	cnc, err := g.Concrete(lang)
	if err != nil {
		return nil, err
	}
	if startCat == "" {
		startCat = g.Start
	}
	if !g.HasCategory(startCat) {
		return nil, errors.NewUnknownCategory(startCat)
	}

	ch := build(cnc, tokens)

	// Only single-field derivations spanning the whole input qualify.
	var trees []*expr.Tree
	seen := make(map[uint64][]*expr.Tree)
	for _, d := range ch.byCat[startCat] {
		if len(d.fields) != 1 || d.fields[0].start != 0 || d.fields[0].end != len(tokens) {
			continue
		}
		h := d.tree.Hash()
		dup := false
		for _, t := range seen[h] {
			if t.Equal(d.tree) {
				dup = true
				break
			}
		}
		if dup {
			continue
		}
		seen[h] = append(seen[h], d.tree)
		trees = append(trees, d.tree)
	}
	return trees, nil
}

// ParseSentence tokenizes sentence with tok (Whitespace when nil) and
// parses the result.
func ParseSentence(g *pgf.Grammar, lang, startCat, sentence string, tok Tokenizer) ([]*expr.Tree, error) {
	if tok == nil {
		tok = Whitespace
	}
	return Parse(g, lang, startCat, tok(sentence))
}

// production pairs a rule with the category it produces.
type production struct {
	cat  string
	rule *pgf.Rule
}

// build runs the bottom-up agenda loop. Zero-argument rules seed the
// chart; each admitted derivation is then processed exactly once,
// triggering only the rules that take its category as an argument, with
// the remaining argument positions drawn from derivations already in the
// chart. Spans are bounded by the input and a non-consuming application
// must introduce a category absent from its children's non-consuming
// history, so the derivation space is finite and the agenda drains.
func build(cnc *pgf.Concrete, tokens []string) *chart {
	ch := newChart()

	var axioms []production
	consumers := make(map[string][]production)
	cnc.Productions.ForEach(func(cat string, rules []*pgf.Rule) {
		for _, rule := range rules {
			if len(rule.Args) == 0 {
				axioms = append(axioms, production{cat, rule})
				continue
			}
			argCats := make(map[string]bool, len(rule.Args))
			for _, a := range rule.Args {
				if !argCats[a] {
					argCats[a] = true
					consumers[a] = append(consumers[a], production{cat, rule})
				}
			}
		}
	})

	var agenda []*derivation
	admit := func(d *derivation) {
		if ch.add(d) {
			agenda = append(agenda, d)
		}
	}

	for _, p := range axioms {
		place(cnc, p.cat, p.rule, tokens, nil, admit)
	}
	for len(agenda) > 0 {
		d := agenda[len(agenda)-1]
		agenda = agenda[:len(agenda)-1]
		for _, p := range consumers[d.cat] {
			combine(cnc, ch, p.cat, p.rule, tokens, d, admit)
		}
	}
	return ch
}

// combine tries every argument assignment of rule that uses pivot in at
// least one position, filling the other positions from the chart.
func combine(cnc *pgf.Concrete, ch *chart, cat string, rule *pgf.Rule, tokens []string, pivot *derivation, admit func(*derivation)) {
	args := make([]*derivation, len(rule.Args))
	for j, a := range rule.Args {
		if a != pivot.cat {
			continue
		}
		var fill func(i int)
		fill = func(i int) {
			if i == len(args) {
				place(cnc, cat, rule, tokens, args, admit)
				return
			}
			if i == j {
				args[i] = pivot
				fill(i + 1)
				return
			}
			// Iterate over a snapshot: placements admitted inside this
			// loop extend byCat and get their own turn off the agenda.
			cands := ch.byCat[rule.Args[i]]
			for _, d := range cands[:len(cands):len(cands)] {
				args[i] = d
				fill(i + 1)
			}
		}
		fill(0)
	}
}

// place matches each field's sequence at every start position, then admits
// every non-overlapping assignment of spans to fields.
func place(cnc *pgf.Concrete, cat string, rule *pgf.Rule, tokens []string, args []*derivation, admit func(*derivation)) {
	options := make([][]span, len(rule.Fields))
	for fi, seqIdx := range rule.Fields {
		seq := cnc.Sequences[seqIdx]
		for start := 0; start <= len(tokens); start++ {
			if end, ok := matchSeq(cnc, seq, start, tokens, args); ok {
				options[fi] = append(options[fi], span{start, end})
			}
		}
		if len(options[fi]) == 0 {
			return
		}
	}

	fields := make([]span, len(rule.Fields))
	var assign func(fi int)
	assign = func(fi int) {
		if fi == len(options) {
			path, ok := applicationPath(cat, fields, args)
			if !ok {
				return
			}
			admit(&derivation{
				cat:    cat,
				fields: append([]span(nil), fields...),
				tree:   buildTree(rule, args),
				param:  rule.Param,
				path:   path,
			})
			return
		}
		for _, sp := range options[fi] {
			if overlaps(sp, fields[:fi]) {
				continue
			}
			fields[fi] = sp
			assign(fi + 1)
		}
	}
	assign(0)
}

// coverage counts the token slots the fields cover.
func coverage(fields []span) int {
	n := 0
	for _, f := range fields {
		n += f.end - f.start
	}
	return n
}

// applicationPath computes the non-consuming history of a placement.
// Every argument field is spliced into the output exactly once, so a
// placement that matched at least one literal covers more slots than its
// children combined and resets the path. A placement that only rearranged
// its children's spans unions their histories and is refused when the
// result category already occurs there: re-deriving a category over the
// same span-set without consuming anything is a vacuous cycle that would
// otherwise mint ever-larger trees.
func applicationPath(cat string, fields []span, args []*derivation) (map[string]bool, bool) {
	consumed := coverage(fields)
	for _, a := range args {
		consumed -= coverage(a.fields)
	}
	if consumed != 0 {
		return nil, true
	}
	path := make(map[string]bool, len(args)+1)
	for _, a := range args {
		path[a.cat] = true
		for c := range a.path {
			path[c] = true
		}
	}
	if path[cat] {
		return nil, false
	}
	path[cat] = true
	return path, true
}

// overlaps reports whether sp shares any token slot with the placed spans.
// Empty spans never overlap anything.
func overlaps(sp span, placed []span) bool {
	for _, p := range placed {
		if sp.start < p.end && p.start < sp.end {
			return true
		}
	}
	return false
}

// matchSeq unifies one sequence against tokens starting at pos: literal
// tokens must match exactly, argument projections must line up with the
// argument derivation's field span, and parameter choices expand to the
// case selected by the argument's parameter value.
func matchSeq(cnc *pgf.Concrete, seq []pgf.Symbol, pos int, tokens []string, args []*derivation) (int, bool) {
	for _, sym := range seq {
		switch sym.Kind {
		case pgf.SymLit:
			if pos >= len(tokens) || tokens[pos] != cnc.Literals[sym.Lit] {
				return 0, false
			}
			pos++
		case pgf.SymArg:
			sp := args[sym.Arg].fields[sym.Field]
			if sp.start != pos {
				return 0, false
			}
			pos = sp.end
		case pgf.SymParam:
			cs := sym.Cases[args[sym.Arg].param%len(sym.Cases)]
			end, ok := matchSeq(cnc, cnc.Sequences[cs], pos, tokens, args)
			if !ok {
				return 0, false
			}
			pos = end
		}
	}
	return pos, true
}

// buildTree constructs the abstract tree for a rule application.
func buildTree(rule *pgf.Rule, args []*derivation) *expr.Tree {
	t := &expr.Tree{Fun: rule.Fun}
	for _, a := range args {
		t.Children = append(t.Children, a.tree)
	}
	return t
}
