// Package linearize turns abstract syntax trees back into surface text for
// a target language, including discontinuous constituents and
// parameter-driven word choice.
package linearize

import (
	"strings"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
	"github.com/FocuswithJustin/Lingonberry/core/expr"
	"github.com/FocuswithJustin/Lingonberry/core/pgf"
)

// Linearize renders the tree in the given language. The tree's function
// (and every function below it) must have a rule in that language's
// concrete syntax; otherwise the call fails with a MissingLinearization
// error. Fields of the root are joined in order with single spaces.
func Linearize(g *pgf.Grammar, lang string, t *expr.Tree) (string, error) {
	cnc, err := g.Concrete(lang)
	if err != nil {
		return "", err
	}

	rules := ruleIndex(cnc)
	fields, _, err := lin(cnc, rules, lang, t)
	if err != nil {
		return "", err
	}

	var tokens []string
	for _, f := range fields {
		tokens = append(tokens, f...)
	}
	return strings.Join(tokens, " "), nil
}

// ruleIndex maps each function to its rule. Functions carry one rule per
// concrete syntax; the production table is grouped by category, so the
// index flattens it once per call.
func ruleIndex(cnc *pgf.Concrete) map[string]*pgf.Rule {
	idx := make(map[string]*pgf.Rule)
	cnc.Productions.ForEach(func(_ string, rules []*pgf.Rule) {
		for _, r := range rules {
			if _, ok := idx[r.Fun]; !ok {
				idx[r.Fun] = r
			}
		}
	})
	return idx
}

// lin evaluates one node: children first, then the node's sequences with
// child fields substituted at projection positions. It returns the token
// lists per field and the rule's parameter value, which a parent's
// parameter-choice symbols select on.
func lin(cnc *pgf.Concrete, rules map[string]*pgf.Rule, lang string, t *expr.Tree) ([][]string, int, error) {
	rule, ok := rules[t.Fun]
	if !ok {
		return nil, 0, errors.NewMissingLinearization(t.Fun, lang)
	}
	if len(t.Children) != len(rule.Args) {
		return nil, 0, errors.Wrapf(errors.ErrTypeMismatch,
			"%s applied to %d arguments, rule takes %d", t.Fun, len(t.Children), len(rule.Args))
	}

	childFields := make([][][]string, len(t.Children))
	childParams := make([]int, len(t.Children))
	for i, c := range t.Children {
		f, p, err := lin(cnc, rules, lang, c)
		if err != nil {
			return nil, 0, err
		}
		childFields[i] = f
		childParams[i] = p
	}

	fields := make([][]string, len(rule.Fields))
	for fi, seqIdx := range rule.Fields {
		toks, err := evalSeq(cnc, cnc.Sequences[seqIdx], childFields, childParams)
		if err != nil {
			return nil, 0, errors.Wrapf(err, "%s", t.Fun)
		}
		fields[fi] = toks
	}
	return fields, rule.Param, nil
}

// evalSeq concatenates a sequence's yield: literal tokens verbatim,
// argument projections spliced from the child's fields, parameter choices
// resolved through the child's parameter value. A projection past the
// child's field count means the tree put a function of the wrong category
// in that position; sequence indices were bounds-checked at decode time,
// field counts depend on the tree and are checked here.
func evalSeq(cnc *pgf.Concrete, seq []pgf.Symbol, childFields [][][]string, childParams []int) ([]string, error) {
	var out []string
	for _, sym := range seq {
		switch sym.Kind {
		case pgf.SymLit:
			out = append(out, cnc.Literals[sym.Lit])
		case pgf.SymArg:
			fields := childFields[sym.Arg]
			if sym.Field >= len(fields) {
				return nil, errors.Wrapf(errors.ErrTypeMismatch,
					"argument %d carries %d fields, projection wants field %d",
					sym.Arg, len(fields), sym.Field)
			}
			out = append(out, fields[sym.Field]...)
		case pgf.SymParam:
			toks, err := evalSeq(cnc, cnc.Sequences[sym.Cases[childParams[sym.Arg]%len(sym.Cases)]], childFields, childParams)
			if err != nil {
				return nil, err
			}
			out = append(out, toks...)
		}
	}
	return out, nil
}
