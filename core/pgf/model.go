package pgf

import (
	"encoding/hex"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
)

// LiteralKind tags the variant held by a Literal.
type LiteralKind uint8

// Literal kinds.
const (
	LiteralStr LiteralKind = iota
	LiteralInt
	LiteralFlt
)

// Literal is a tagged flag value: a string, an integer, or a float.
type Literal struct {
	Kind LiteralKind
	Str  string
	Int  int32
	Flt  float64
}

// Function is one entry of the abstract function table: an ordered argument
// category list and a result category.
type Function struct {
	Name   string
	Args   []string
	Result string
}

// Arity returns the number of arguments the function takes.
func (f Function) Arity() int {
	return len(f.Args)
}

// SymbolKind tags the variant held by a Symbol.
type SymbolKind uint8

// Symbol kinds.
const (
	// SymLit is a literal token, an index into the concrete syntax's
	// literal-string table.
	SymLit SymbolKind = iota
	// SymArg projects one field of one argument into the output.
	SymArg
	// SymParam selects one of several case sequences based on the
	// parameter value carried by an argument's rule.
	SymParam
)

// Symbol is one element of a linearization sequence.
type Symbol struct {
	Kind  SymbolKind
	Lit   int   // literal table index (SymLit)
	Arg   int   // argument position (SymArg, SymParam)
	Field int   // field index within the argument (SymArg)
	Cases []int // sequence indices, one per parameter value (SymParam)
}

// Rule is one PMCFG production: a function applied to arguments, realized
// by one sequence per linearization field. A rule with several fields
// linearizes a discontinuous constituent.
type Rule struct {
	Fun    string
	Args   []string // argument categories; equals the function's declared list
	Param  int      // discrete parameter value exposed to SymParam call sites
	Fields []int    // sequence table index per field
}

// Concrete is one language's realization of the abstract syntax.
type Concrete struct {
	Name        string
	Flags       *Table[Literal]
	PrintNames  *Table[string]
	Literals    []string
	Sequences   [][]Symbol
	Productions *Table[[]*Rule] // category -> rules, declaration order
}

// FieldCount returns the number of linearization fields of cat, or 0 if the
// concrete syntax has no productions for it. Rule field counts within one
// category are validated to agree at decode time.
func (c *Concrete) FieldCount(cat string) int {
	rules, ok := c.Productions.Get(cat)
	if !ok || len(rules) == 0 {
		return 0
	}
	return len(rules[0].Fields)
}

// LanguageCode returns the BCP-47-style code from the concrete syntax's
// "language" flag, with underscores mapped to hyphens. The second result is
// false if the flag is absent or not a string.
func (c *Concrete) LanguageCode() (string, bool) {
	lit, ok := c.Flags.Get("language")
	if !ok || lit.Kind != LiteralStr {
		return "", false
	}
	code := make([]byte, len(lit.Str))
	for i := 0; i < len(lit.Str); i++ {
		if lit.Str[i] == '_' {
			code[i] = '-'
		} else {
			code[i] = lit.Str[i]
		}
	}
	return string(code), true
}

// Grammar is the decoded model: one abstract syntax plus every concrete
// syntax that survived decoding. Built once, read-only afterward, safe for
// unlimited concurrent parse and linearize calls.
type Grammar struct {
	Name       string
	Start      string
	Flags      *Table[Literal]
	Categories []string
	Functions  *Table[Function]
	Concretes  *Table[*Concrete]
	Profile    FormatProfile

	sum [32]byte // blake3 of the decoded buffer
}

// Languages returns the language names in declaration order.
func (g *Grammar) Languages() []string {
	return g.Concretes.Keys()
}

// Concrete returns the concrete syntax for lang.
func (g *Grammar) Concrete(lang string) (*Concrete, error) {
	c, ok := g.Concretes.Get(lang)
	if !ok {
		return nil, errors.NewUnknownLanguage(lang)
	}
	return c, nil
}

// HasCategory reports whether cat is declared in the abstract syntax.
func (g *Grammar) HasCategory(cat string) bool {
	for _, c := range g.Categories {
		if c == cat {
			return true
		}
	}
	return false
}

// FunctionType returns the signature of fun.
func (g *Grammar) FunctionType(fun string) (Function, error) {
	f, ok := g.Functions.Get(fun)
	if !ok {
		return Function{}, errors.NewUnknownFunction(fun)
	}
	return f, nil
}

// FunctionsByCategory returns the names of every function whose result
// category is cat, in declaration order.
func (g *Grammar) FunctionsByCategory(cat string) []string {
	var out []string
	g.Functions.ForEach(func(name string, f Function) {
		if f.Result == cat {
			out = append(out, name)
		}
	})
	return out
}

// Fingerprint returns the hex blake3 hash of the buffer the grammar was
// decoded from, or the empty string for grammars built in memory.
func (g *Grammar) Fingerprint() string {
	var zero [32]byte
	if g.sum == zero {
		return ""
	}
	return hex.EncodeToString(g.sum[:])
}
