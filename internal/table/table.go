// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package table reads the accession list and persists the annotation table.
//
// The output table is a CSV file whose header is types.Columns. It holds at
// most one row per accession and is written one row at a time, so a batch
// interrupted at any point leaves a valid table that a rerun resumes from.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/pdiddy/protein-annotator/pkg/types"
)

var (
	// ErrMissingColumn is returned when the input table has no uniprot_ac column.
	ErrMissingColumn = errors.New("input table has no " + types.ColUniProtAC + " column")

	// ErrHeaderMismatch is returned when an existing output table was not
	// written with the annotation columns.
	ErrHeaderMismatch = errors.New("output table header does not match the annotation columns")
)

// ReadIdentifiers returns the uniprot_ac column of the CSV at path in file
// order. Blank cells are skipped; other columns are ignored.
func ReadIdentifiers(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening input table: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("reading input header: %w", err)
	}
	col := slices.Index(trimAll(header), types.ColUniProtAC)
	if col < 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingColumn)
	}

	var ids []string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading input table: %w", err)
		}
		if col >= len(rec) {
			continue
		}
		if id := strings.TrimSpace(rec[col]); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Table is an output table on disk plus the set of accessions it holds.
// It is safe for concurrent use.
type Table struct {
	mu         sync.Mutex
	path       string
	appendOnly bool
	index      map[string]struct{}
}

// Open opens the output table at path, creating it with the header row when
// it does not exist or is empty. With appendOnly, Append adds one line to
// the file instead of rewriting it.
func Open(path string, appendOnly bool) (*Table, error) {
	t := &Table{
		path:       path,
		appendOnly: appendOnly,
		index:      make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading output table: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		if dir := filepath.Dir(path); dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("creating directory %s: %w", dir, err)
			}
		}
		if err := writeRecords(path, [][]string{types.Columns}); err != nil {
			return nil, err
		}
		return t, nil
	}

	records, err := parse(data)
	if err != nil {
		return nil, err
	}
	for _, rec := range records[1:] {
		t.index[rec[0]] = struct{}{}
	}

	if appendOnly && data[len(data)-1] != '\n' {
		if err := appendBytes(path, []byte("\n")); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Path returns the file the table persists to.
func (t *Table) Path() string {
	return t.path
}

// Contains reports whether a row for accession is already recorded.
func (t *Table) Contains(accession string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.index[accession]
	return ok
}

// Len returns the number of recorded rows.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.index)
}

// Append persists row unless its accession is already recorded, in which
// case it returns false and leaves the file untouched.
//
// By default the whole table is read back, extended and rewritten through a
// temporary file, so the file on disk is the only source of truth. In
// append-only mode the row is appended to the file and the in-memory index
// is trusted.
func (t *Table) Append(row types.Annotation) (bool, error) {
	if row.UniProtAC == "" {
		return false, fmt.Errorf("appending row: empty %s", types.ColUniProtAC)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.appendOnly {
		if _, ok := t.index[row.UniProtAC]; ok {
			return false, nil
		}
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		if err := w.Write(row.Record()); err != nil {
			return false, fmt.Errorf("encoding row: %w", err)
		}
		w.Flush()
		if err := appendBytes(t.path, buf.Bytes()); err != nil {
			return false, err
		}
		t.index[row.UniProtAC] = struct{}{}
		return true, nil
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		return false, fmt.Errorf("reading output table: %w", err)
	}
	records, err := parse(data)
	if err != nil {
		return false, err
	}
	for _, rec := range records[1:] {
		t.index[rec[0]] = struct{}{}
	}
	if _, ok := t.index[row.UniProtAC]; ok {
		return false, nil
	}

	records = append(records, row.Record())
	if err := writeRecords(t.path, records); err != nil {
		return false, err
	}
	t.index[row.UniProtAC] = struct{}{}
	return true, nil
}

// ReadAll returns every row of the output table at path.
func ReadAll(path string) ([]types.Annotation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading output table: %w", err)
	}
	records, err := parse(data)
	if err != nil {
		return nil, err
	}

	rows := make([]types.Annotation, 0, len(records)-1)
	for i, rec := range records[1:] {
		a, err := types.ParseRecord(types.Columns, rec)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", path, i+2, err)
		}
		rows = append(rows, a)
	}
	return rows, nil
}

// parse decodes an output table and checks its header.
func parse(data []byte) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(types.Columns)

	records, err := r.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) && pe.Err == csv.ErrFieldCount && pe.Line == 1 {
			return nil, ErrHeaderMismatch
		}
		return nil, fmt.Errorf("parsing output table: %w", err)
	}
	if len(records) == 0 || !slices.Equal(trimAll(records[0]), types.Columns) {
		return nil, ErrHeaderMismatch
	}
	return records, nil
}

// writeRecords writes records to a temporary file next to path and renames
// it into place.
func writeRecords(path string, records [][]string) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(path), ".annotations-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("setting table permissions: %w", err)
	}

	w := csv.NewWriter(tmpFile)
	writeErr := w.WriteAll(records)
	closeErr := tmpFile.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing output table: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func appendBytes(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening output table: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("appending to output table: %w", err)
	}
	return f.Close()
}

func trimAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	}
	return out
}
