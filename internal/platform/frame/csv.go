package frame

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/valyala/bytebufferpool"
)

// ReadCSV parses a header-first CSV document. Empty fields become null and
// every other field is kept as text; coercion happens where a column is used.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read csv header: empty document")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	out, err := New(header...)
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) > len(header) {
			return nil, fmt.Errorf("read csv line %d: %d fields, header has %d", line, len(record), len(header))
		}

		row := make([]any, len(header))
		for i, field := range record {
			if field == "" {
				continue
			}
			row[i] = field
		}
		out.rows = append(out.rows, row)
	}

	return out, nil
}

// WriteCSV renders the frame with a header row. Nulls are written as empty
// fields.
func WriteCSV(w io.Writer, f *Frame) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := renderCSV(buf, f); err != nil {
		return err
	}
	if _, err := w.Write(buf.B); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// EncodeCSV renders the frame into a fresh byte slice.
func EncodeCSV(f *Frame) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := renderCSV(buf, f); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func renderCSV(w io.Writer, f *Frame) error {
	if f == nil {
		return fmt.Errorf("render csv: nil frame")
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(f.columns); err != nil {
		return fmt.Errorf("render csv header: %w", err)
	}

	record := make([]string, len(f.columns))
	for i, row := range f.rows {
		for j, cell := range row {
			record[j] = formatCell(cell)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("render csv row %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
