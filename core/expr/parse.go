package expr

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// treeNode is either a bare function name or a parenthesized application.
type treeNode struct {
	Name string       `  @Ident`
	App  *treeAppNode `| @@`
}

// treeAppNode is a parenthesized application: (Fun arg...).
type treeAppNode struct {
	Fun  string      `"(" @Ident`
	Args []*treeNode `@@* ")"`
}

// treeLexer tokenizes tree expressions. Function names follow grammar
// identifier syntax, including the prime forms GF allows (e.g. mkN').
var treeLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_']*`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

// treeParser is the Participle parser for tree expressions.
var treeParser = participle.MustBuild[treeNode](
	participle.Lexer(treeLexer),
	participle.Elide("Whitespace"),
)

// Parse reads a tree from its parenthesized form, the same form String
// renders: "Pizza", "(Pred (This Pizza) Delicious)".
func Parse(input string) (*Tree, error) {
	node, err := treeParser.ParseString("", input)
	if err != nil {
		return nil, err
	}
	return node.tree(), nil
}

func (n *treeNode) tree() *Tree {
	if n.App != nil {
		t := &Tree{Fun: n.App.Fun}
		for _, a := range n.App.Args {
			t.Children = append(t.Children, a.tree())
		}
		return t
	}
	return &Tree{Fun: n.Name}
}
