// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package table

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/protein-annotator/pkg/types"
)

// xlsxSheet is the worksheet the XLSX export writes.
const xlsxSheet = "Annotations"

// Export reads the output table at src and writes it to dest in format.
func Export(src, dest string, format types.ExportFormat) (int, error) {
	rows, err := ReadAll(src)
	if err != nil {
		return 0, err
	}
	switch format {
	case types.ExportYAML:
		err = WriteYAML(dest, rows)
	case types.ExportJSON:
		err = WriteJSON(dest, rows)
	case types.ExportXLSX:
		err = WriteXLSX(dest, rows)
	default:
		return 0, fmt.Errorf("unsupported export format %q (want yaml, json or xlsx)", format)
	}
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// WriteYAML writes rows as a YAML sequence; nulls are kept as null.
func WriteYAML(path string, rows []types.Annotation) error {
	data, err := yaml.Marshal(rows)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteJSON writes rows as an indented JSON array.
func WriteJSON(path string, rows []types.Annotation) error {
	if rows == nil {
		rows = []types.Annotation{}
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// WriteXLSX writes rows to a workbook with one sheet: the column header on
// row 1 and one typed row per annotation. Null cells stay empty.
func WriteXLSX(path string, rows []types.Annotation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", xlsxSheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	for i, h := range types.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(xlsxSheet, cell, h); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for r, row := range rows {
		for c, v := range cellValues(row) {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(xlsxSheet, cell, v); err != nil {
				return fmt.Errorf("writing row %s: %w", row.UniProtAC, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

// cellValues returns the typed cells of a row in column order, nil for null.
func cellValues(a types.Annotation) []any {
	return []any{
		a.UniProtAC,
		deref(a.GeneName),
		deref(a.FullName),
		deref(a.Organism),
		deref(a.ProteinLength),
		deref(a.UniProtReviewed),
		deref(a.ProteinEvidence),
		deref(a.PDBCount),
		deref(a.AlphaFoldConf),
		deref(a.ChEMBLCount),
		deref(a.PantherFamilyName),
		deref(a.PantherSFName),
		deref(a.PantherAnnotation),
	}
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
