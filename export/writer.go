// Package export writes RIPS services and electronic-invoice lines to
// Parquet for analytical queries.
package export

import (
	"fmt"
	"os"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

// Writer streams rows of type T into one zstd-compressed Parquet file.
// A service file holds one row per RIPS service line, so even a year of
// consolidated invoices stays within a handful of row groups; statistics
// are kept per page so readers can prune on num_factura.
type Writer[T any] struct {
	file   *os.File
	writer *parquet.GenericWriter[T]
	count  int
}

// NewWriter creates filename and returns a writer for it.
func NewWriter[T any](filename string) (*Writer[T], error) {
	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("create parquet file: %w", err)
	}

	writer := parquet.NewGenericWriter[T](file,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedDefault}),
		parquet.PageBufferSize(8*1024),
		parquet.WriteBufferSize(64*1024*1024),
		parquet.DataPageStatistics(true),
		parquet.CreatedBy("ripstool", "1.0", ""),
	)

	return &Writer[T]{
		file:   file,
		writer: writer,
	}, nil
}

// Write writes a batch of rows.
func (w *Writer[T]) Write(rows []T) (int, error) {
	n, err := w.writer.Write(rows)
	w.count += n
	if err != nil {
		return n, fmt.Errorf("write parquet rows: %w", err)
	}
	return n, nil
}

// Close flushes the final row group and closes the file.
func (w *Writer[T]) Close() error {
	if err := w.writer.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return w.file.Close()
}

// Count returns the total number of rows written.
func (w *Writer[T]) Count() int {
	return w.count
}

// WriteFile writes all rows to filename in batches of batchSize.
func WriteFile[T any](filename string, rows []T, batchSize int) (int, error) {
	w, err := NewWriter[T](filename)
	if err != nil {
		return 0, err
	}
	if batchSize <= 0 {
		batchSize = 10000
	}
	for start := 0; start < len(rows); start += batchSize {
		end := min(start+batchSize, len(rows))
		if _, err := w.Write(rows[start:end]); err != nil {
			w.Close()
			return w.Count(), err
		}
	}
	if err := w.Close(); err != nil {
		return w.Count(), err
	}
	return w.Count(), nil
}
