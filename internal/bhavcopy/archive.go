package bhavcopy

import (
	"archive/zip"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrExtraction is returned when an archive holds no readable CSV table
	ErrExtraction = errors.New("bhavcopy extraction failed")
	// ErrValidation is returned when a table lacks a required column
	ErrValidation = errors.New("bhavcopy validation failed")
	// ErrNotFound is returned when no date in the look-back window has data
	ErrNotFound = errors.New("no bhavcopy data in look-back window")
)

// Extract opens a zip archive held in memory and parses the first .csv entry
func Extract(raw []byte) (*Table, error) {
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			entry = f
			break
		}
	}
	if entry == nil {
		return nil, fmt.Errorf("%w: no csv entry in archive", ErrExtraction)
	}

	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
	}
	defer rc.Close()

	return ParseCSV(rc)
}

// ParseCSV reads a CSV stream with a header row, inferring column kinds:
// a column whose non-empty cells all parse as numbers becomes numeric.
func ParseCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrExtraction, err)
	}
	columns := make([]string, len(header))
	for i, h := range header {
		columns[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	var raw [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExtraction, err)
		}
		raw = append(raw, rec)
	}

	numeric := make([]bool, len(columns))
	for c := range columns {
		numeric[c] = true
		for _, rec := range raw {
			if c >= len(rec) || strings.TrimSpace(rec[c]) == "" {
				continue
			}
			if _, ok := parseNumber(rec[c]); !ok {
				numeric[c] = false
				break
			}
		}
	}

	rows := make([][]Value, 0, len(raw))
	for _, rec := range raw {
		row := make([]Value, len(columns))
		for c := range columns {
			if c >= len(rec) {
				continue
			}
			if numeric[c] {
				if f, ok := parseNumber(rec[c]); ok {
					row[c] = numberValue(f)
				}
				continue
			}
			row[c] = textValue(rec[c])
		}
		rows = append(rows, row)
	}

	return NewTable(columns, rows), nil
}
