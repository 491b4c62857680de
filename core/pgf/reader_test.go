package pgf

import (
	"testing"

	"github.com/FocuswithJustin/Lingonberry/core/errors"
)

func TestReadLengthRoundTrip(t *testing.T) {
	values := []int{0, 1, 127, 128, 255, 16384, 1 << 20, 0x7fffffff}
	for _, profile := range []FormatProfile{FormatV1, FormatV2} {
		for _, want := range values {
			e := newEnc(profile)
			e.length(want)
			r := &reader{buf: e.bytes(), profile: profile}
			got, err := r.readLength()
			if err != nil {
				t.Fatalf("profile %s value %d: %v", profile, want, err)
			}
			if got != want {
				t.Errorf("profile %s: got %d, want %d", profile, got, want)
			}
			if r.remaining() != 0 {
				t.Errorf("profile %s value %d: %d bytes unread", profile, want, r.remaining())
			}
		}
	}
}

func TestReadLengthVarintEncoding(t *testing.T) {
	// 300 = 0b10 0101100 -> 0x82 0x2c
	r := &reader{buf: []byte{0x82, 0x2c}, profile: FormatV1}
	got, err := r.readLength()
	if err != nil {
		t.Fatalf("readLength: %v", err)
	}
	if got != 300 {
		t.Errorf("got %d, want 300", got)
	}
}

func TestReadLengthVarintTooLong(t *testing.T) {
	// Six continuation bytes exceed the five-byte bound.
	r := &reader{buf: []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x7f}, profile: FormatV1}
	_, err := r.readLength()
	if !errors.Is(err, errors.ErrImplausibleLength) {
		t.Errorf("got %v, want ErrImplausibleLength", err)
	}
}

func TestReadLengthTruncatedVarint(t *testing.T) {
	r := &reader{buf: []byte{0x82}, profile: FormatV1}
	_, err := r.readLength()
	if !errors.Is(err, errors.ErrUnexpectedEOF) {
		t.Errorf("got %v, want ErrUnexpectedEOF", err)
	}
}

func TestReadStringUTF8(t *testing.T) {
	for _, profile := range []FormatProfile{FormatV1, FormatV2} {
		e := newEnc(profile)
		e.str("pizza è buona")
		r := &reader{buf: e.bytes(), profile: profile}
		got, err := r.readString()
		if err != nil {
			t.Fatalf("profile %s: %v", profile, err)
		}
		if got != "pizza è buona" {
			t.Errorf("profile %s: got %q", profile, got)
		}
	}
}

func TestReadStringLatin1Fallback(t *testing.T) {
	// 0xe9 is not valid UTF-8 on its own; the byte maps to U+00E9.
	e := newEnc(FormatV1)
	e.length(4)
	e.raw([]byte{'c', 'a', 'f', 0xe9})
	r := &reader{buf: e.bytes(), profile: FormatV1}
	got, err := r.readString()
	if err != nil {
		t.Fatalf("readString: %v", err)
	}
	if got != "café" {
		t.Errorf("got %q, want %q", got, "café")
	}
}

func TestReadStringImplausibleLength(t *testing.T) {
	e := newEnc(FormatV1)
	e.length(1000)
	e.raw([]byte("abc"))
	r := &reader{buf: e.bytes(), profile: FormatV1}
	_, err := r.readString()
	if !errors.Is(err, errors.ErrImplausibleLength) {
		t.Errorf("got %v, want ErrImplausibleLength", err)
	}
}

func TestReadListImplausibleCount(t *testing.T) {
	e := newEnc(FormatV2)
	e.u32(0xffffff)
	r := &reader{buf: e.bytes(), profile: FormatV2}
	_, err := readList(r, (*reader).readU8)
	if !errors.Is(err, errors.ErrImplausibleLength) {
		t.Errorf("got %v, want ErrImplausibleLength", err)
	}
}

func TestReadListElements(t *testing.T) {
	e := newEnc(FormatV1)
	e.strs("a", "bb", "ccc")
	r := &reader{buf: e.bytes(), profile: FormatV1}
	got, err := readList(r, (*reader).readString)
	if err != nil {
		t.Fatalf("readList: %v", err)
	}
	if len(got) != 3 || got[0] != "a" || got[1] != "bb" || got[2] != "ccc" {
		t.Errorf("got %v", got)
	}
}

func TestReadScalars(t *testing.T) {
	e := newEnc(FormatV1)
	e.u8(7).u16(0x0102).u32(0x01020304).f64(2.5)
	r := &reader{buf: e.bytes(), profile: FormatV1}
	if v, err := r.readU8(); err != nil || v != 7 {
		t.Errorf("readU8: %d, %v", v, err)
	}
	if v, err := r.readU16(); err != nil || v != 0x0102 {
		t.Errorf("readU16: %d, %v", v, err)
	}
	if v, err := r.readU32(); err != nil || v != 0x01020304 {
		t.Errorf("readU32: %d, %v", v, err)
	}
	if v, err := r.readF64(); err != nil || v != 2.5 {
		t.Errorf("readF64: %g, %v", v, err)
	}
	if _, err := r.readU8(); !errors.Is(err, errors.ErrUnexpectedEOF) {
		t.Errorf("read past end: %v, want ErrUnexpectedEOF", err)
	}
}

func TestFormatProfileString(t *testing.T) {
	if got := FormatV1.String(); got != "1.0" {
		t.Errorf("got %q", got)
	}
	if got := FormatV2.String(); got != "2.1" {
		t.Errorf("got %q", got)
	}
	if (FormatProfile{Major: 3, Minor: 0}).Supported() {
		t.Error("3.0 reported as supported")
	}
}
