package pgf

import (
	"bytes"
	"fmt"

	"github.com/zeebo/blake3"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
	"github.com/FocuswithJustin/Lingonberry/internal/fileutil"
)

// magic identifies a PGF binary.
var magic = []byte{'P', 'G', 'F', 0}

// maxDeclaredItems caps any single declared count. Counts are additionally
// bounded by the remaining buffer size in readList; this ceiling guards the
// few places that read a count without an element loop behind it.
const maxDeclaredItems = 1 << 24

// Diagnostic records one concrete-syntax block that was discarded during
// decoding. The rest of the file is unaffected.
type Diagnostic struct {
	Block    int    // zero-based index among the declared blocks; -1 when the section's block count could not be read
	Language string // language name, if it was read before the failure
	Offset   int    // byte offset where the failure was detected
	Err      error  // cause
}

// String renders the diagnostic for logs and CLI output.
func (d Diagnostic) String() string {
	if d.Block < 0 {
		return fmt.Sprintf("concrete section discarded at offset %d: %v", d.Offset, d.Err)
	}
	lang := d.Language
	if lang == "" {
		lang = "?"
	}
	return fmt.Sprintf("concrete block %d (%s) discarded at offset %d: %v", d.Block, lang, d.Offset, d.Err)
}

// Decode decodes a PGF binary buffer into a Grammar.
//
// Header or abstract-syntax corruption is fatal and returns a single error
// identifying the cause and byte offset. A failure inside one concrete
// block discards only that block: decoding resumes at the next block
// boundary taken from the section's declared directory, and the discarded
// block is reported as a Diagnostic. The returned grammar may therefore
// carry fewer languages than the file declares.
func Decode(data []byte) (*Grammar, []Diagnostic, error) {
	r := &reader{buf: data}

	if len(data) < len(magic) || !bytes.Equal(data[:len(magic)], magic) {
		return nil, nil, errors.NewDecode("header", 0, fmt.Errorf("bad magic: %w", errors.ErrUnsupportedVersion))
	}
	r.pos = len(magic)

	major, err := r.readU16()
	if err != nil {
		return nil, nil, errors.NewDecode("header", r.pos, err)
	}
	minor, err := r.readU16()
	if err != nil {
		return nil, nil, errors.NewDecode("header", r.pos, err)
	}
	profile := FormatProfile{Major: major, Minor: minor}
	if !profile.Supported() {
		return nil, nil, errors.NewDecode("header", r.pos,
			fmt.Errorf("version %s: %w", profile, errors.ErrUnsupportedVersion))
	}
	r.profile = profile

	g := &Grammar{
		Profile: profile,
		sum:     blake3.Sum256(data),
	}

	if g.Name, err = r.readString(); err != nil {
		return nil, nil, errors.NewDecode("header", r.pos, err)
	}
	if g.Start, err = r.readString(); err != nil {
		return nil, nil, errors.NewDecode("header", r.pos, err)
	}
	if g.Flags, err = readFlags(r); err != nil {
		return nil, nil, errors.NewDecode("flags", r.pos, err)
	}
	// A startcat flag overrides the declared start category.
	if lit, ok := g.Flags.Get("startcat"); ok && lit.Kind == LiteralStr {
		g.Start = lit.Str
	}

	if err := decodeAbstract(r, g); err != nil {
		return nil, nil, errors.NewDecode("abstract", r.pos, err)
	}

	diags := decodeConcretes(r, g)
	return g, diags, nil
}

// DecodeFile reads and decodes a grammar file. xz-compressed files are
// decompressed transparently.
func DecodeFile(path string) (*Grammar, []Diagnostic, error) {
	data, err := fileutil.ReadGrammarFile(path)
	if err != nil {
		return nil, nil, err
	}
	return Decode(data)
}

// readFlags reads a name -> literal table.
func readFlags(r *reader) (*Table[Literal], error) {
	n, err := r.readLength()
	if err != nil {
		return nil, err
	}
	if n > r.remaining() {
		return nil, errors.ErrImplausibleLength
	}
	flags := NewTable[Literal]()
	for i := 0; i < n; i++ {
		name, err := r.readString()
		if err != nil {
			return nil, err
		}
		lit, err := readLiteral(r)
		if err != nil {
			return nil, err
		}
		flags.Set(name, lit)
	}
	return flags, nil
}

// readLiteral reads a tagged literal: 0 string, 1 i32, 2 f64.
func readLiteral(r *reader) (Literal, error) {
	tag, err := r.readU8()
	if err != nil {
		return Literal{}, err
	}
	switch tag {
	case 0:
		s, err := r.readString()
		return Literal{Kind: LiteralStr, Str: s}, err
	case 1:
		n, err := r.readI32()
		return Literal{Kind: LiteralInt, Int: n}, err
	case 2:
		f, err := r.readF64()
		return Literal{Kind: LiteralFlt, Flt: f}, err
	default:
		return Literal{}, fmt.Errorf("unknown literal tag %d", tag)
	}
}

// decodeAbstract reads the category set and function table. Any failure
// here is fatal: no viable grammar exists without the abstract syntax.
func decodeAbstract(r *reader, g *Grammar) error {
	cats, err := readList(r, (*reader).readString)
	if err != nil {
		return errors.Wrap(err, "categories")
	}
	g.Categories = cats

	if !g.HasCategory(g.Start) {
		return fmt.Errorf("start category %q not declared: %w", g.Start, errors.ErrMalformedAbstract)
	}

	n, err := r.readLength()
	if err != nil {
		return errors.Wrap(err, "function count")
	}
	if n > r.remaining() {
		return errors.ErrImplausibleLength
	}
	g.Functions = NewTable[Function]()
	for i := 0; i < n; i++ {
		name, err := r.readString()
		if err != nil {
			return errors.Wrapf(err, "function %d", i)
		}
		arity, err := r.readU8()
		if err != nil {
			return errors.Wrapf(err, "function %s arity", name)
		}
		args, err := readList(r, (*reader).readString)
		if err != nil {
			return errors.Wrapf(err, "function %s arguments", name)
		}
		if int(arity) != len(args) {
			return fmt.Errorf("function %s: recorded arity %d, read %d arguments: %w",
				name, arity, len(args), errors.ErrMalformedAbstract)
		}
		result, err := r.readString()
		if err != nil {
			return errors.Wrapf(err, "function %s result", name)
		}
		for _, a := range args {
			if !g.HasCategory(a) {
				return fmt.Errorf("function %s: argument category %q not declared: %w",
					name, a, errors.ErrMalformedAbstract)
			}
		}
		if !g.HasCategory(result) {
			return fmt.Errorf("function %s: result category %q not declared: %w",
				name, result, errors.ErrMalformedAbstract)
		}
		g.Functions.Set(name, Function{Name: name, Args: args, Result: result})
	}
	return nil
}

// decodeConcretes reads the concrete section: a declared block count, a
// directory of block byte lengths, then the block bodies. The directory is
// read before any body, so recovery after a corrupt block resumes at the
// next declared boundary instead of trusting a cursor position computed
// from failed input.
func decodeConcretes(r *reader, g *Grammar) []Diagnostic {
	g.Concretes = NewTable[*Concrete]()
	var diags []Diagnostic

	count, err := r.readLength()
	if err != nil || count > maxDeclaredItems {
		if err == nil {
			err = errors.ErrImplausibleLength
		}
		// Block -1: the count itself failed, so no block index applies.
		diags = append(diags, Diagnostic{Block: -1, Offset: r.pos, Err: errors.Wrap(err, "block count")})
		return diags
	}

	lengths := make([]int, 0, count)
	for i := 0; i < count; i++ {
		n, err := r.readLength()
		if err != nil {
			diags = append(diags, Diagnostic{Block: i, Offset: r.pos, Err: errors.Wrap(err, "block directory")})
			return diags
		}
		lengths = append(lengths, n)
	}

	start := r.pos
	for i, n := range lengths {
		if n < 0 || start+n > len(r.buf) {
			// The directory entry itself is implausible; every later
			// offset would be derived from it, so the section ends here.
			diags = append(diags, Diagnostic{Block: i, Offset: start,
				Err: errors.Wrapf(errors.ErrImplausibleLength, "block length %d", n)})
			return diags
		}
		br := &reader{buf: r.buf[:start+n], pos: start, profile: r.profile}
		cnc, err := decodeConcrete(br, g)
		switch {
		case err != nil:
			diags = append(diags, Diagnostic{Block: i, Language: blockLanguage(cnc), Offset: br.pos, Err: err})
		case g.Concretes.Has(cnc.Name):
			diags = append(diags, Diagnostic{Block: i, Language: cnc.Name, Offset: start,
				Err: fmt.Errorf("duplicate language %q: %w", cnc.Name, errors.ErrMalformedConcrete)})
		default:
			g.Concretes.Set(cnc.Name, cnc)
		}
		start += n
	}
	return diags
}

// blockLanguage names a partially decoded block if its identifier was read.
func blockLanguage(c *Concrete) string {
	if c == nil {
		return ""
	}
	return c.Name
}

// decodeConcrete reads one language block. The returned Concrete is partial
// when err is non-nil; only its Name is meaningful then.
func decodeConcrete(r *reader, g *Grammar) (*Concrete, error) {
	c := &Concrete{}
	var err error

	if c.Name, err = r.readString(); err != nil {
		return c, errors.Wrap(err, "language name")
	}
	if c.Name == "" {
		return c, fmt.Errorf("empty language name: %w", errors.ErrMalformedConcrete)
	}
	if c.Flags, err = readFlags(r); err != nil {
		return c, errors.Wrap(err, "flags")
	}

	n, err := r.readLength()
	if err != nil {
		return c, errors.Wrap(err, "print-name count")
	}
	if n > r.remaining() {
		return c, errors.Wrap(errors.ErrImplausibleLength, "print-name count")
	}
	c.PrintNames = NewTable[string]()
	for i := 0; i < n; i++ {
		fun, err := r.readString()
		if err != nil {
			return c, errors.Wrapf(err, "print-name %d", i)
		}
		name, err := r.readString()
		if err != nil {
			return c, errors.Wrapf(err, "print-name %s", fun)
		}
		c.PrintNames.Set(fun, name)
	}

	if c.Literals, err = readList(r, (*reader).readString); err != nil {
		return c, errors.Wrap(err, "literal table")
	}
	if c.Sequences, err = readList(r, readSequence); err != nil {
		return c, errors.Wrap(err, "sequence table")
	}

	n, err = r.readLength()
	if err != nil {
		return c, errors.Wrap(err, "production count")
	}
	if n > r.remaining() {
		return c, errors.Wrap(errors.ErrImplausibleLength, "production count")
	}
	c.Productions = NewTable[[]*Rule]()
	for i := 0; i < n; i++ {
		cat, err := r.readString()
		if err != nil {
			return c, errors.Wrapf(err, "production %d category", i)
		}
		rules, err := readList(r, readRule)
		if err != nil {
			return c, errors.Wrapf(err, "productions for %s", cat)
		}
		c.Productions.Set(cat, rules)
	}

	if r.remaining() != 0 {
		return c, fmt.Errorf("%d trailing bytes in block: %w", r.remaining(), errors.ErrMalformedConcrete)
	}
	if err := validateConcrete(c, g); err != nil {
		return c, err
	}
	return c, nil
}

// readSequence reads one symbol sequence.
func readSequence(r *reader) ([]Symbol, error) {
	return readList(r, readSymbol)
}

// readSymbol reads one tagged symbol: 0 literal, 1 arg projection, 2
// parameter choice.
func readSymbol(r *reader) (Symbol, error) {
	tag, err := r.readU8()
	if err != nil {
		return Symbol{}, err
	}
	switch tag {
	case 0:
		lit, err := r.readLength()
		return Symbol{Kind: SymLit, Lit: lit}, err
	case 1:
		arg, err := r.readLength()
		if err != nil {
			return Symbol{}, err
		}
		field, err := r.readLength()
		return Symbol{Kind: SymArg, Arg: arg, Field: field}, err
	case 2:
		arg, err := r.readLength()
		if err != nil {
			return Symbol{}, err
		}
		cases, err := readList(r, (*reader).readLength)
		return Symbol{Kind: SymParam, Arg: arg, Cases: cases}, err
	default:
		return Symbol{}, fmt.Errorf("unknown symbol tag %d", tag)
	}
}

// readRule reads one PMCFG rule.
func readRule(r *reader) (*Rule, error) {
	fun, err := r.readString()
	if err != nil {
		return nil, err
	}
	args, err := readList(r, (*reader).readString)
	if err != nil {
		return nil, errors.Wrapf(err, "rule %s arguments", fun)
	}
	param, err := r.readLength()
	if err != nil {
		return nil, errors.Wrapf(err, "rule %s parameter", fun)
	}
	fields, err := readList(r, (*reader).readLength)
	if err != nil {
		return nil, errors.Wrapf(err, "rule %s fields", fun)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("rule %s has no fields: %w", fun, errors.ErrMalformedConcrete)
	}
	return &Rule{Fun: fun, Args: args, Param: param, Fields: fields}, nil
}
