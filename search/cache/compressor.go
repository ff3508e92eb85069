package cache

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compressor encodes cache payloads above the configured size threshold.
// Implementations must be safe for concurrent use.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// NoopCompressor passes payloads through unchanged
type NoopCompressor struct{}

func (NoopCompressor) Compress(data []byte) ([]byte, error) { return data, nil }

func (NoopCompressor) Decompress(data []byte) ([]byte, error) { return data, nil }

// GzipCompressor compresses payloads with gzip
type GzipCompressor struct{}

func (GzipCompressor) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (GzipCompressor) Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() { _ = r.Close() }()
	return io.ReadAll(r)
}
