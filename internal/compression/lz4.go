package compression

import (
	"bytes"
	"io"

	"github.com/pierrec/lz4/v4"

	"github.com/shodhmemory/engine/internal/model"
)

// DefaultMaxDecompressedBytes bounds how much a single block may
// expand to on decompression, guarding against decompression bombs.
const DefaultMaxDecompressedBytes = 10 * 1024 * 1024

// CompressLZ4 lossless-compresses data with lz4 block framing.
func CompressLZ4(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, model.NewError(model.KindInvalidInput, "lz4 compress", err)
	}
	if err := w.Close(); err != nil {
		return nil, model.NewError(model.KindInvalidInput, "lz4 compress", err)
	}
	return buf.Bytes(), nil
}

// DecompressLZ4 reverses CompressLZ4, refusing to produce more than
// maxBytes of output (maxBytes <= 0 uses DefaultMaxDecompressedBytes).
func DecompressLZ4(data []byte, maxBytes int) ([]byte, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxDecompressedBytes
	}
	r := lz4.NewReader(bytes.NewReader(data))
	limited := io.LimitReader(r, int64(maxBytes)+1)
	out, err := io.ReadAll(limited)
	if err != nil {
		return nil, model.NewError(model.KindInvalidInput, "lz4 decompress", err)
	}
	if len(out) > maxBytes {
		return nil, model.NewError(model.KindCapacity, "decompressed size exceeds cap", nil)
	}
	return out, nil
}
