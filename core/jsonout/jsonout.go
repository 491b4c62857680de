// Package jsonout projects a decoded grammar to a JSON document.
//
// Object keys are emitted in the grammar's declaration order, never
// lexicographic order, so two implementations decoding the same file
// produce byte-identical output. That rules out marshaling Go maps, which
// sort their keys; objects are written key by key instead.
package jsonout

import (
	"bytes"
	"encoding/json"

	"github.com/FocuswithJustin/Lingonberry/core/pgf"
)

// Project renders the grammar as a JSON document with "abstract" and
// "concretes" top-level objects.
func Project(g *pgf.Grammar) ([]byte, error) {
	w := newObject()
	w.field("abstract", projectAbstract(g))
	w.field("concretes", projectConcretes(g))
	return w.bytes()
}

// object accumulates a JSON object with explicit key order.
type object struct {
	buf bytes.Buffer
	n   int
	err error
}

func newObject() *object {
	o := &object{}
	o.buf.WriteByte('{')
	return o
}

// field appends a key/value pair. Values are either *object or any value
// encoding/json can marshal.
func (o *object) field(key string, val any) {
	if o.err != nil {
		return
	}
	if o.n > 0 {
		o.buf.WriteByte(',')
	}
	o.n++
	k, err := json.Marshal(key)
	if err != nil {
		o.err = err
		return
	}
	o.buf.Write(k)
	o.buf.WriteByte(':')
	switch v := val.(type) {
	case *object:
		b, err := v.bytes()
		if err != nil {
			o.err = err
			return
		}
		o.buf.Write(b)
	case json.RawMessage:
		o.buf.Write(v)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			o.err = err
			return
		}
		o.buf.Write(b)
	}
}

func (o *object) bytes() ([]byte, error) {
	if o.err != nil {
		return nil, o.err
	}
	return append(append([]byte(nil), o.buf.Bytes()...), '}'), nil
}

func projectAbstract(g *pgf.Grammar) *object {
	w := newObject()
	w.field("name", g.Name)
	w.field("startcat", g.Start)
	w.field("flags", projectFlags(g.Flags))
	w.field("cats", g.Categories)

	funs := newObject()
	g.Functions.ForEach(func(name string, f pgf.Function) {
		fw := newObject()
		fw.field("args", argsOrEmpty(f.Args))
		fw.field("cat", f.Result)
		funs.field(name, fw)
	})
	w.field("funs", funs)
	return w
}

// argsOrEmpty keeps zero-argument functions rendering as [] rather than null.
func argsOrEmpty(args []string) []string {
	if args == nil {
		return []string{}
	}
	return args
}

func projectConcretes(g *pgf.Grammar) *object {
	w := newObject()
	g.Concretes.ForEach(func(lang string, c *pgf.Concrete) {
		w.field(lang, projectConcrete(c))
	})
	return w
}

func projectConcrete(c *pgf.Concrete) *object {
	w := newObject()
	w.field("flags", projectFlags(c.Flags))

	names := newObject()
	c.PrintNames.ForEach(func(fun, name string) {
		names.field(fun, name)
	})
	w.field("printnames", names)

	w.field("literals", c.Literals)

	seqs := make([][]any, len(c.Sequences))
	for i, seq := range c.Sequences {
		seqs[i] = make([]any, len(seq))
		for j, sym := range seq {
			seqs[i][j] = projectSymbol(sym)
		}
	}
	w.field("sequences", seqs)

	prods := newObject()
	c.Productions.ForEach(func(cat string, rules []*pgf.Rule) {
		out := make([]any, len(rules))
		for i, r := range rules {
			rw := newObject()
			rw.field("fun", r.Fun)
			rw.field("args", argsOrEmpty(r.Args))
			rw.field("param", r.Param)
			rw.field("fields", r.Fields)
			b, err := rw.bytes()
			if err != nil {
				prods.err = err
				return
			}
			out[i] = json.RawMessage(b)
		}
		prods.field(cat, out)
	})
	w.field("productions", prods)
	return w
}

func projectFlags(flags *pgf.Table[pgf.Literal]) *object {
	w := newObject()
	if flags == nil {
		return w
	}
	flags.ForEach(func(name string, lit pgf.Literal) {
		switch lit.Kind {
		case pgf.LiteralStr:
			w.field(name, lit.Str)
		case pgf.LiteralInt:
			w.field(name, lit.Int)
		case pgf.LiteralFlt:
			w.field(name, lit.Flt)
		}
	})
	return w
}

func projectSymbol(sym pgf.Symbol) any {
	w := newObject()
	switch sym.Kind {
	case pgf.SymLit:
		w.field("type", "lit")
		w.field("lit", sym.Lit)
	case pgf.SymArg:
		w.field("type", "arg")
		w.field("arg", sym.Arg)
		w.field("field", sym.Field)
	case pgf.SymParam:
		w.field("type", "param")
		w.field("arg", sym.Arg)
		w.field("cases", sym.Cases)
	}
	b, err := w.bytes()
	if err != nil {
		return nil
	}
	return json.RawMessage(b)
}
