// SPDX-License-Identifier: MIT

package board

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
)

// ParseCSV reads a square puzzle from CSV. The board size is inferred from
// the number of rows; subunits are square (size must be a perfect square).
// On disk, 0 denotes an empty field.
func ParseCSV(r io.Reader) (*Board, error) {
	reader := csv.NewReader(r)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("board: read csv: %w", err)
	}
	size := len(records)
	if size == 0 {
		return nil, fmt.Errorf("board: empty csv")
	}
	unit := int(math.Sqrt(float64(size)))
	if unit*unit != size {
		return nil, fmt.Errorf("board: size %d is not a perfect square", size)
	}

	b, err := New(unit, unit, unit, unit)
	if err != nil {
		return nil, err
	}
	for r, record := range records {
		if len(record) != size {
			return nil, fmt.Errorf("board: row %d has %d columns, want %d", r, len(record), size)
		}
		for c, raw := range record {
			v, err := strconv.Atoi(raw)
			if err != nil {
				return nil, fmt.Errorf("board: cell (%d,%d): %w", r, c, err)
			}
			if v == 0 {
				continue
			}
			if err := b.Set(r, c, v); err != nil {
				return nil, err
			}
		}
	}
	return b, nil
}

// LoadFile reads a puzzle from a CSV file on disk.
func LoadFile(path string) (*Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("board: open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck // read-only
	b, err := ParseCSV(f)
	if err != nil {
		return nil, fmt.Errorf("board: %s: %w", path, err)
	}
	return b, nil
}

// WriteCSV emits the board in the on-disk CSV format, empty fields as 0.
func (b *Board) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	record := make([]string, b.cols)
	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			v := b.fields[b.Index(r, c)]
			if v == Empty {
				v = 0
			}
			record[c] = strconv.Itoa(v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("board: write csv: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
