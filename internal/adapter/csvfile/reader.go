package csvfile

import (
	"bufio"
	"compress/bzip2"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/storm-impact-report/internal/domain"
)

// Reader streams storm event rows from a local CSV file.
// Files ending in ".bz2" are decompressed on the fly.
// It implements pipeline.RecordSource.
type Reader struct {
	file   *os.File
	csv    *csv.Reader
	colIdx map[string]int
	line   int
}

// Open opens path, reads the header and checks that every required column is present.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}

	var src io.Reader = bufio.NewReaderSize(f, 1<<20)
	if strings.HasSuffix(strings.ToLower(path), ".bz2") {
		src = bzip2.NewReader(src)
	}

	r, err := newReader(src)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.file = f
	return r, nil
}

// NewReader wraps an already-open CSV stream. Close is a no-op for readers
// created this way.
func NewReader(src io.Reader) (*Reader, error) {
	return newReader(src)
}

func newReader(src io.Reader) (*Reader, error) {
	cr := csv.NewReader(src)
	cr.FieldsPerRecord = -1 // short rows are reported as malformed records, not fatal
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("dataset is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		colIdx[strings.ToUpper(h)] = i
	}

	var missing []string
	for _, col := range domain.RequiredColumns {
		if _, ok := colIdx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return &Reader{csv: cr, colIdx: colIdx, line: 1}, nil
}

// Next returns the next row, or io.EOF when the file is exhausted.
func (r *Reader) Next(ctx context.Context) (domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.RawRecord{}, err
	}

	row, err := r.csv.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return domain.RawRecord{}, io.EOF
		}
		return domain.RawRecord{}, fmt.Errorf("read row after line %d: %w", r.line, err)
	}
	line, _ := r.csv.FieldPos(0)
	r.line = line

	return domain.RawRecord{
		EventType:  r.get(row, domain.ColEventType),
		Fatalities: r.get(row, domain.ColFatalities),
		Injuries:   r.get(row, domain.ColInjuries),
		PropDmg:    r.get(row, domain.ColPropDmg),
		PropDmgExp: r.get(row, domain.ColPropDmgExp),
		CropDmg:    r.get(row, domain.ColCropDmg),
		CropDmgExp: r.get(row, domain.ColCropDmgExp),
		Line:       line,
	}, nil
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	return r.file.Close()
}

// get copies the column value out of the reused row slice.
func (r *Reader) get(row []string, col string) string {
	i, ok := r.colIdx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.Clone(row[i])
}
