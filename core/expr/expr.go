// Package expr provides abstract syntax trees: the language-independent
// output of parsing and input of linearization.
package expr

import (
	"hash/fnv"
	"strings"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
	"github.com/FocuswithJustin/Lingonberry/core/pgf"
)

// Tree is an abstract syntax tree: a function applied to child trees.
// A tree is exclusively owned by its parent; sharing or cycles are not
// permitted. Equality and hashing are structural.
type Tree struct {
	Fun      string
	Children []*Tree
}

// Fun creates a leaf tree for a zero-argument function.
func Fun(name string) *Tree {
	return &Tree{Fun: name}
}

// App creates a tree applying fun to the given children.
func App(fun string, children ...*Tree) *Tree {
	return &Tree{Fun: fun, Children: children}
}

// String renders the tree in parenthesized form: a leaf as its function
// name, an application as "(f x (g y))". Parse reads this form back.
func (t *Tree) String() string {
	var b strings.Builder
	t.write(&b)
	return b.String()
}

func (t *Tree) write(b *strings.Builder) {
	if len(t.Children) == 0 {
		b.WriteString(t.Fun)
		return
	}
	b.WriteByte('(')
	b.WriteString(t.Fun)
	for _, c := range t.Children {
		b.WriteByte(' ')
		c.write(b)
	}
	b.WriteByte(')')
}

// Equal reports structural identity.
func (t *Tree) Equal(o *Tree) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Fun != o.Fun || len(t.Children) != len(o.Children) {
		return false
	}
	for i, c := range t.Children {
		if !c.Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Hash returns a structural hash consistent with Equal.
func (t *Tree) Hash() uint64 {
	h := fnv.New64a()
	t.feed(h)
	return h.Sum64()
}

func (t *Tree) feed(h interface{ Write([]byte) (int, error) }) {
	h.Write([]byte(t.Fun))
	h.Write([]byte{'('})
	for _, c := range t.Children {
		c.feed(h)
		h.Write([]byte{','})
	}
	h.Write([]byte{')'})
}

// TypeCheck verifies the tree against the grammar's function table: every
// function must be declared, applied to its declared arity, and each child
// must produce the declared argument category. When cat is non-empty the
// root's result category must equal it.
func TypeCheck(g *pgf.Grammar, t *Tree, cat string) error {
	fun, err := g.FunctionType(t.Fun)
	if err != nil {
		return err
	}
	if cat != "" && fun.Result != cat {
		return errors.Wrapf(errors.ErrTypeMismatch, "%s produces %s, expected %s", t.Fun, fun.Result, cat)
	}
	if len(t.Children) != fun.Arity() {
		return errors.Wrapf(errors.ErrTypeMismatch, "%s applied to %d arguments, declares %d",
			t.Fun, len(t.Children), fun.Arity())
	}
	for i, c := range t.Children {
		if err := TypeCheck(g, c, fun.Args[i]); err != nil {
			return err
		}
	}
	return nil
}
