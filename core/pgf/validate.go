package pgf

import (
	"fmt"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
)

// validateConcrete checks every cross-reference inside a decoded block
// against the abstract syntax and the block's own tables. All bounds are
// established here, once; parse and linearize never re-check them.
func validateConcrete(c *Concrete, g *Grammar) error {
	var err error
	c.Productions.ForEach(func(cat string, rules []*Rule) {
		if err != nil {
			return
		}
		err = validateCategory(c, g, cat, rules)
	})
	return err
}

func validateCategory(c *Concrete, g *Grammar, cat string, rules []*Rule) error {
	if !g.HasCategory(cat) {
		return fmt.Errorf("production category %q not declared: %w", cat, errors.ErrMalformedConcrete)
	}
	fields := -1
	for _, rule := range rules {
		if fields == -1 {
			fields = len(rule.Fields)
		} else if len(rule.Fields) != fields {
			return fmt.Errorf("category %s: rule %s has %d fields, earlier rules have %d: %w",
				cat, rule.Fun, len(rule.Fields), fields, errors.ErrMalformedConcrete)
		}
		if err := validateRule(c, g, cat, rule); err != nil {
			return err
		}
	}
	return nil
}

func validateRule(c *Concrete, g *Grammar, cat string, rule *Rule) error {
	fun, ok := g.Functions.Get(rule.Fun)
	if !ok {
		return fmt.Errorf("rule for %s: function %q not declared: %w", cat, rule.Fun, errors.ErrMalformedConcrete)
	}
	if fun.Result != cat {
		return fmt.Errorf("rule %s: function result is %s, production category is %s: %w",
			rule.Fun, fun.Result, cat, errors.ErrMalformedConcrete)
	}
	if len(rule.Args) != fun.Arity() {
		return fmt.Errorf("rule %s: %d arguments, function declares %d: %w",
			rule.Fun, len(rule.Args), fun.Arity(), errors.ErrMalformedConcrete)
	}
	for i, a := range rule.Args {
		if a != fun.Args[i] {
			return fmt.Errorf("rule %s: argument %d is %s, function declares %s: %w",
				rule.Fun, i, a, fun.Args[i], errors.ErrMalformedConcrete)
		}
	}

	// projected[a][f] counts SymArg references to field f of argument a.
	projected := make([][]int, len(rule.Args))
	for i, a := range rule.Args {
		if fc := c.FieldCount(a); fc > 0 {
			projected[i] = make([]int, fc)
		}
	}

	for _, seq := range rule.Fields {
		if seq < 0 || seq >= len(c.Sequences) {
			return fmt.Errorf("rule %s: sequence index %d out of range (table has %d): %w",
				rule.Fun, seq, len(c.Sequences), errors.ErrMalformedConcrete)
		}
		if err := validateSequence(c, rule, c.Sequences[seq], projected); err != nil {
			return errors.Wrapf(err, "rule %s", rule.Fun)
		}
	}

	// Every field of every argument must be spliced in exactly once; the
	// parser relies on this when it places field spans.
	for i, counts := range projected {
		for f, n := range counts {
			if n != 1 {
				return fmt.Errorf("rule %s: field %d of argument %d projected %d times: %w",
					rule.Fun, f, i, n, errors.ErrMalformedConcrete)
			}
		}
	}
	return nil
}

func validateSequence(c *Concrete, rule *Rule, seq []Symbol, projected [][]int) error {
	for _, sym := range seq {
		switch sym.Kind {
		case SymLit:
			if sym.Lit < 0 || sym.Lit >= len(c.Literals) {
				return fmt.Errorf("literal index %d out of range (table has %d): %w",
					sym.Lit, len(c.Literals), errors.ErrMalformedConcrete)
			}
		case SymArg:
			if sym.Arg < 0 || sym.Arg >= len(rule.Args) {
				return fmt.Errorf("argument index %d out of range (rule has %d): %w",
					sym.Arg, len(rule.Args), errors.ErrMalformedConcrete)
			}
			if counts := projected[sym.Arg]; counts != nil {
				if sym.Field < 0 || sym.Field >= len(counts) {
					return fmt.Errorf("field %d of argument %d out of range (%s has %d fields): %w",
						sym.Field, sym.Arg, rule.Args[sym.Arg], len(counts), errors.ErrMalformedConcrete)
				}
				counts[sym.Field]++
			} else if sym.Field < 0 {
				return fmt.Errorf("negative field index %d: %w", sym.Field, errors.ErrMalformedConcrete)
			}
		case SymParam:
			if sym.Arg < 0 || sym.Arg >= len(rule.Args) {
				return fmt.Errorf("parameter argument index %d out of range (rule has %d): %w",
					sym.Arg, len(rule.Args), errors.ErrMalformedConcrete)
			}
			if len(sym.Cases) == 0 {
				return fmt.Errorf("parameter choice with no cases: %w", errors.ErrMalformedConcrete)
			}
			for _, cs := range sym.Cases {
				if cs < 0 || cs >= len(c.Sequences) {
					return fmt.Errorf("parameter case sequence %d out of range (table has %d): %w",
						cs, len(c.Sequences), errors.ErrMalformedConcrete)
				}
				// Case sequences hold word-form alternatives; only
				// literal tokens are allowed inside them, which keeps
				// argument field coverage independent of the case taken.
				for _, s := range c.Sequences[cs] {
					if s.Kind != SymLit {
						return fmt.Errorf("parameter case sequence %d contains a non-literal symbol: %w",
							cs, errors.ErrMalformedConcrete)
					}
					if s.Lit < 0 || s.Lit >= len(c.Literals) {
						return fmt.Errorf("literal index %d out of range (table has %d): %w",
							s.Lit, len(c.Literals), errors.ErrMalformedConcrete)
					}
				}
			}
		default:
			return fmt.Errorf("unknown symbol kind %d: %w", sym.Kind, errors.ErrMalformedConcrete)
		}
	}
	return nil
}
