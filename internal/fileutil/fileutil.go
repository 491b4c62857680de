// Package fileutil provides grammar file loading helpers.
package fileutil

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ulikunitz/xz"
)

// xzMagic is the xz container signature.
var xzMagic = []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}

// ReadGrammarFile reads a PGF file from disk, transparently decompressing
// xz containers. Compression is detected from the file signature, not the
// extension.
func ReadGrammarFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if !bytes.HasPrefix(data, xzMagic) {
		return data, nil
	}
	r, err := xz.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xz stream %s: %w", path, err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", path, err)
	}
	return out, nil
}
