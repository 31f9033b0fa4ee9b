// Package tracefile creates and opens clustering trace files. Files whose
// name ends in ".zst" are transparently zstd-compressed.
package tracefile

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Extension is the suffix of an uncompressed trace file.
const Extension = ".tsv"

// CompressedSuffix marks a zstd-compressed trace file.
const CompressedSuffix = ".zst"

// nameLayout matches the agglomerative trace header timestamp, without
// separators that are awkward in file names.
const nameLayout = "02-01-2006_150405"

// Name returns the file name for a trace of algorithm written at t,
// e.g. "K-Means Clustering-17-10-2026_143005.tsv".
func Name(algorithm string, t time.Time, compress bool) string {
	name := algorithm + "-" + t.Format(nameLayout) + Extension
	if compress {
		name += CompressedSuffix
	}
	return name
}

// Compressed reports whether path names a compressed trace.
func Compressed(path string) bool {
	return strings.HasSuffix(path, CompressedSuffix)
}

// Create creates the trace file at path, creating parent directories as
// needed. It fails if the file already exists.
func Create(path string) (io.WriteCloser, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("tracefile: creating output directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return nil, fmt.Errorf("tracefile: %w", err)
	}
	if !Compressed(path) {
		return f, nil
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("tracefile: creating zstd writer: %w", err)
	}
	return &compressedWriter{enc: enc, f: f}, nil
}

// Open opens the trace file at path for reading.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tracefile: %w", err)
	}
	if !Compressed(path) {
		return f, nil
	}

	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("tracefile: creating zstd reader: %w", err)
	}
	return &compressedReader{dec: dec, f: f}, nil
}

type compressedWriter struct {
	enc *zstd.Encoder
	f   *os.File
}

func (w *compressedWriter) Write(p []byte) (int, error) { return w.enc.Write(p) }

// Close flushes the zstd frame and closes the file.
func (w *compressedWriter) Close() error {
	encErr := w.enc.Close()
	fileErr := w.f.Close()
	if encErr != nil {
		return fmt.Errorf("tracefile: finishing zstd frame: %w", encErr)
	}
	return fileErr
}

type compressedReader struct {
	dec *zstd.Decoder
	f   *os.File
}

func (r *compressedReader) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *compressedReader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
