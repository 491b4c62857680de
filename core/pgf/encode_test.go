package pgf

// Test-only binary builder. Tests construct grammar images in both format
// profiles and feed them to Decode; the production code has no encoder.

import (
	"bytes"
	"encoding/binary"
	"math"
)

type enc struct {
	buf     bytes.Buffer
	profile FormatProfile
}

func newEnc(profile FormatProfile) *enc {
	return &enc{profile: profile}
}

func (e *enc) bytes() []byte {
	return e.buf.Bytes()
}

func (e *enc) u8(v byte) *enc {
	e.buf.WriteByte(v)
	return e
}

func (e *enc) u16(v uint16) *enc {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *enc) u32(v uint32) *enc {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	e.buf.Write(b[:])
	return e
}

func (e *enc) f64(v float64) *enc {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], math.Float64bits(v))
	e.buf.Write(b[:])
	return e
}

// length writes n in the profile's encoding: varint for 1.0, u32 for 2.1.
func (e *enc) length(n int) *enc {
	if !e.profile.variableLengths() {
		return e.u32(uint32(n))
	}
	v := uint64(n)
	var tmp [maxVarintBytes]byte
	i := len(tmp)
	i--
	tmp[i] = byte(v & 0x7f)
	v >>= 7
	for v > 0 {
		i--
		tmp[i] = byte(v&0x7f) | 0x80
		v >>= 7
	}
	e.buf.Write(tmp[i:])
	return e
}

func (e *enc) str(s string) *enc {
	e.length(len(s))
	e.buf.WriteString(s)
	return e
}

func (e *enc) strs(list ...string) *enc {
	e.length(len(list))
	for _, s := range list {
		e.str(s)
	}
	return e
}

func (e *enc) raw(b []byte) *enc {
	e.buf.Write(b)
	return e
}

// header writes magic plus the profile's version.
func (e *enc) header() *enc {
	e.raw(magic)
	e.u16(e.profile.Major)
	e.u16(e.profile.Minor)
	return e
}

// strFlag writes a one-entry flag table preamble value.
func (e *enc) strFlag(name, value string) *enc {
	e.str(name)
	e.u8(0)
	e.str(value)
	return e
}

// noFlags writes an empty flag table.
func (e *enc) noFlags() *enc {
	return e.length(0)
}

// fun writes one abstract function entry with a correct recorded arity.
func (e *enc) fun(name string, args []string, result string) *enc {
	e.str(name)
	e.u8(byte(len(args)))
	e.strs(args...)
	e.str(result)
	return e
}

// Symbol encoding helpers.

func (e *enc) symLit(lit int) *enc {
	e.u8(0)
	e.length(lit)
	return e
}

func (e *enc) symArg(arg, field int) *enc {
	e.u8(1)
	e.length(arg)
	e.length(field)
	return e
}

func (e *enc) symParam(arg int, cases ...int) *enc {
	e.u8(2)
	e.length(arg)
	e.length(len(cases))
	for _, c := range cases {
		e.length(c)
	}
	return e
}

// rule writes one production rule.
func (e *enc) rule(fun string, args []string, param int, fields ...int) *enc {
	e.str(fun)
	e.strs(args...)
	e.length(param)
	e.length(len(fields))
	for _, f := range fields {
		e.length(f)
	}
	return e
}

// concreteSection writes the block count, the directory, and the bodies.
func concreteSection(profile FormatProfile, blocks ...[]byte) []byte {
	e := newEnc(profile)
	e.length(len(blocks))
	for _, b := range blocks {
		e.length(len(b))
	}
	for _, b := range blocks {
		e.raw(b)
	}
	return e.bytes()
}

// foodAbstract writes the shared Food abstract syntax:
// Comment, Item, Kind, Quality with the usual seven functions.
func foodAbstract(e *enc) {
	e.strs("Comment", "Item", "Kind", "Quality")
	e.length(8)
	e.fun("Pred", []string{"Item", "Quality"}, "Comment")
	e.fun("This", []string{"Kind"}, "Item")
	e.fun("That", []string{"Kind"}, "Item")
	e.fun("Mod", []string{"Quality", "Kind"}, "Kind")
	e.fun("Pizza", nil, "Kind")
	e.fun("Fish", nil, "Kind")
	e.fun("Delicious", nil, "Quality")
	e.fun("Fresh", nil, "Quality")
}

// foodEngBlock encodes the English concrete syntax.
//
// Literal table: 0 this, 1 that, 2 is, 3 delicious, 4 fresh, 5 pizza, 6 fish
// Sequences: 0 [pizza] 1 [fish] 2 [delicious] 3 [fresh]
//            4 [this arg0.0] 5 [that arg0.0] 6 [arg0.0 arg1.0]
//            7 [arg0.0 is arg1.0]
func foodEngBlock(profile FormatProfile) []byte {
	e := newEnc(profile)
	e.str("FoodEng")
	e.length(1)
	e.strFlag("language", "en_US")
	e.length(1) // print-names
	e.str("Pizza")
	e.str("pizza (the dish)")
	e.strs("this", "that", "is", "delicious", "fresh", "pizza", "fish")
	e.length(8) // sequences
	e.length(1)
	e.symLit(5)
	e.length(1)
	e.symLit(6)
	e.length(1)
	e.symLit(3)
	e.length(1)
	e.symLit(4)
	e.length(2)
	e.symLit(0)
	e.symArg(0, 0)
	e.length(2)
	e.symLit(1)
	e.symArg(0, 0)
	e.length(2)
	e.symArg(0, 0)
	e.symArg(1, 0)
	e.length(3)
	e.symArg(0, 0)
	e.symLit(2)
	e.symArg(1, 0)
	e.length(4) // productions
	e.str("Kind")
	e.length(3)
	e.rule("Pizza", nil, 0, 0)
	e.rule("Fish", nil, 0, 1)
	e.rule("Mod", []string{"Quality", "Kind"}, 0, 6)
	e.str("Quality")
	e.length(2)
	e.rule("Delicious", nil, 0, 2)
	e.rule("Fresh", nil, 0, 3)
	e.str("Item")
	e.length(2)
	e.rule("This", []string{"Kind"}, 0, 4)
	e.rule("That", []string{"Kind"}, 0, 5)
	e.str("Comment")
	e.length(1)
	e.rule("Pred", []string{"Item", "Quality"}, 0, 7)
	return e.bytes()
}

// foodItaBlock encodes a minimal Italian concrete syntax.
//
// Literal table: 0 questa 1 è 2 deliziosa 3 pizza
// Sequences: 0 [pizza] 1 [deliziosa] 2 [questa arg0.0] 3 [arg0.0 è arg1.0]
func foodItaBlock(profile FormatProfile) []byte {
	e := newEnc(profile)
	e.str("FoodIta")
	e.length(1)
	e.strFlag("language", "it_IT")
	e.length(0) // print-names
	e.strs("questa", "è", "deliziosa", "pizza")
	e.length(4) // sequences
	e.length(1)
	e.symLit(3)
	e.length(1)
	e.symLit(2)
	e.length(2)
	e.symLit(0)
	e.symArg(0, 0)
	e.length(3)
	e.symArg(0, 0)
	e.symLit(1)
	e.symArg(1, 0)
	e.length(4) // productions
	e.str("Kind")
	e.length(1)
	e.rule("Pizza", nil, 0, 0)
	e.str("Quality")
	e.length(1)
	e.rule("Delicious", nil, 0, 1)
	e.str("Item")
	e.length(1)
	e.rule("This", []string{"Kind"}, 0, 2)
	e.str("Comment")
	e.length(1)
	e.rule("Pred", []string{"Item", "Quality"}, 0, 3)
	return e.bytes()
}

// foodFileWith encodes the Food header and abstract syntax followed by the
// given concrete blocks.
func foodFileWith(profile FormatProfile, blocks ...[]byte) []byte {
	e := newEnc(profile)
	e.header()
	e.str("Food")
	e.str("Comment")
	e.noFlags()
	foodAbstract(e)
	e.raw(concreteSection(profile, blocks...))
	return e.bytes()
}

// foodFile encodes a complete two-language Food grammar.
func foodFile(profile FormatProfile) []byte {
	return foodFileWith(profile, foodEngBlock(profile), foodItaBlock(profile))
}
