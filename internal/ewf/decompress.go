package ewf

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Decompressor inflates a compressed section payload. Implementations must
// leave the input untouched and return the inflated bytes.
type Decompressor func([]byte) ([]byte, error)

// DecompressZlib inflates a zlib stream.
func DecompressZlib(val []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(val))
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	return io.ReadAll(zr)
}

// SkipDecompress treats the payload as already uncompressed.
func SkipDecompress(val []byte) ([]byte, error) {
	return val, nil
}
