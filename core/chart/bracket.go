package chart

import (
	"strings"

	"github.com/FocuswithJustin/Lingonberry/core/expr"
)

// Bracketed is a bracketed-string view of a parse result: a leaf for a
// bare function, a branch labeling a group of children.
type Bracketed struct {
	Label    string
	Children []*Bracketed
}

// BracketTrees groups the trees of a parse result under the start category
// label. An empty result yields an empty leaf, mirroring a failed parse.
func BracketTrees(startCat string, trees []*expr.Tree) *Bracketed {
	if len(trees) == 0 {
		return &Bracketed{}
	}
	b := &Bracketed{Label: startCat}
	for _, t := range trees {
		b.Children = append(b.Children, bracketTree(t))
	}
	return b
}

func bracketTree(t *expr.Tree) *Bracketed {
	b := &Bracketed{Label: t.Fun}
	for _, c := range t.Children {
		b.Children = append(b.Children, bracketTree(c))
	}
	return b
}

// String renders the bracketed form: a leaf as its label, a branch as
// "(Label child...)".
func (b *Bracketed) String() string {
	if len(b.Children) == 0 {
		return b.Label
	}
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(b.Label)
	for _, c := range b.Children {
		sb.WriteByte(' ')
		sb.WriteString(c.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
