package region

import (
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	lz4 "github.com/pierrec/lz4/v4"
)

// CompressionID identifies the byte-compatible compression scheme used for
// one chunk's payload within a region file.
type CompressionID uint8

const (
	CompressionGZip   CompressionID = 1
	CompressionZlib   CompressionID = 2
	CompressionNone   CompressionID = 3
	CompressionLZ4    CompressionID = 4
	CompressionCustom CompressionID = 127
)

// ErrUnsupportedCompression is returned when a chunk uses the custom (127)
// compression scheme, which this implementation does not interpret.
var ErrUnsupportedCompression = errors.New("region: unsupported compression scheme")

// Compress encodes data using the scheme named by id.
func Compress(id CompressionID, level int, data []byte) ([]byte, error) {
	switch id {
	case CompressionGZip:
		var buf bytes.Buffer
		gw, err := gzip.NewWriterLevel(&buf, normalizeLevel(level, gzip.DefaultCompression))
		if err != nil {
			return nil, err
		}
		if _, err := gw.Write(data); err != nil {
			return nil, err
		}
		if err := gw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, normalizeLevel(level, zlib.DefaultCompression))
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case CompressionLZ4:
		var buf bytes.Buffer
		zw := lz4.NewWriter(&buf)
		if _, err := zw.Write(data); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionCustom:
		return nil, ErrUnsupportedCompression
	default:
		return nil, fmt.Errorf("region: unknown compression id %d", id)
	}
}

// Decompress decodes data using the scheme named by id.
func Decompress(id CompressionID, data []byte) ([]byte, error) {
	switch id {
	case CompressionGZip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer gr.Close()
		return io.ReadAll(gr)
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		return io.ReadAll(zr)
	case CompressionNone:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case CompressionLZ4:
		zr := lz4.NewReader(bytes.NewReader(data))
		return io.ReadAll(zr)
	case CompressionCustom:
		return nil, ErrUnsupportedCompression
	default:
		return nil, fmt.Errorf("region: unknown compression id %d", id)
	}
}

func normalizeLevel(level, fallback int) int {
	if level < -2 || level > 9 {
		return fallback
	}
	return level
}
