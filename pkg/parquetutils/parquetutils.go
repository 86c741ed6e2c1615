package parquetutils

import (
	"github.com/cockroachdb/errors"
	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"
)

var (
	// ReaderConcurrency parallel number of file readers.
	ReaderConcurrency int64 = 8

	// WriterConcurrency parallel number of row group marshalers.
	WriterConcurrency int64 = 4
)

// WriteAll encodes records into an in-memory snappy compressed parquet file.
// T must be a struct annotated with parquet tags.
func WriteAll[T any](records []T) ([]byte, error) {
	file := parquetbuffer.NewBufferFile()
	w, err := writer.NewParquetWriter(file, new(T), WriterConcurrency)
	if err != nil {
		return nil, errors.Wrap(err, "can't create parquet writer")
	}
	w.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range records {
		if err := w.Write(records[i]); err != nil {
			return nil, errors.Wrapf(err, "failed to write parquet record %d", i)
		}
	}
	if err := w.WriteStop(); err != nil {
		return nil, errors.Wrap(err, "failed to flush parquet writer")
	}
	return file.Bytes(), nil
}

// ReadAll reads all records from an in-memory parquet file.
func ReadAll[T any](data []byte) ([]T, error) {
	file := parquetbuffer.NewBufferFileFromBytesNoAlloc(data)
	r, err := reader.NewParquetReader(file, new(T), ReaderConcurrency)
	if err != nil {
		return nil, errors.Wrap(err, "can't create parquet reader")
	}
	defer r.ReadStop()

	result := make([]T, r.GetNumRows())
	if err = r.Read(&result); err != nil {
		return nil, errors.Wrap(err, "failed to read parquet data")
	}

	return result, nil
}
