package assets

import (
	"fmt"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/crc64nvme"
	"github.com/mr-tron/base58"
)

type contentStats struct {
	size     int64
	gzipSize int64
	hash     string
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}

// statContents measures an emitted file the way it will be served: raw and
// gzip compressed. The hash is a base58 CRC-64/NVME of the raw bytes.
func statContents(contents []byte) (contentStats, error) {
	counter := &countingWriter{}

	zw, err := gzip.NewWriterLevel(counter, gzip.BestCompression)
	if err != nil {
		return contentStats{}, fmt.Errorf("failed to create gzip writer: %w", err)
	}

	if _, err := zw.Write(contents); err != nil {
		return contentStats{}, fmt.Errorf("failed to compress: %w", err)
	}

	if err := zw.Close(); err != nil {
		return contentStats{}, fmt.Errorf("failed to flush gzip writer: %w", err)
	}

	h := crc64nvme.New()
	_, _ = h.Write(contents)

	return contentStats{
		size:     int64(len(contents)),
		gzipSize: counter.n,
		hash:     base58.Encode(h.Sum(nil)),
	}, nil
}
