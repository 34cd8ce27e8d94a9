package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// readSeries parses one point per line, either "value" or "label,value".
// Blank lines and lines starting with # are skipped, and a first row whose
// value does not parse is taken as a header. Labels are returned only when
// every row carried one.
func readSeries(r io.Reader) ([]float64, []string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	var (
		values  []float64
		labels  []string
		labeled = true
		row     int
	)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read input: %w", err)
		}
		row++

		var label, raw string
		switch len(rec) {
		case 1:
			raw = rec[0]
		case 2:
			label, raw = strings.TrimSpace(rec[0]), rec[1]
		default:
			return nil, nil, fmt.Errorf("line %d: want 1 or 2 fields, got %d", row, len(rec))
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			if row == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("line %d: %w", row, err)
		}
		if len(rec) == 1 {
			labeled = false
		}
		values = append(values, v)
		labels = append(labels, label)
	}

	if !labeled || len(values) == 0 {
		labels = nil
	}
	return values, labels, nil
}
