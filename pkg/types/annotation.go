// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the protein-annotator pipeline:
// the annotation row written to the output table, its fixed column schema, and the
// configuration structs used by the sources and the batch driver.
package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Column names of the output table, in persisted order.
const (
	ColUniProtAC         = "uniprot_ac"
	ColGeneName          = "gene_name"
	ColFullName          = "full_name"
	ColOrganism          = "organism"
	ColProteinLength     = "protein_length"
	ColUniProtReviewed   = "uniprot_reviewed"
	ColProteinEvidence   = "protein_evidence"
	ColPDBCount          = "pdb_count"
	ColAlphaFoldConf     = "alphafold_conf"
	ColChEMBLCount       = "chembl_count"
	ColPantherFamilyName = "panther_family_name"
	ColPantherSFName     = "panther_sf_name"
	ColPantherAnnotation = "panther_annotation"
)

// Columns is the fixed header of the output table.
var Columns = []string{
	ColUniProtAC,
	ColGeneName,
	ColFullName,
	ColOrganism,
	ColProteinLength,
	ColUniProtReviewed,
	ColProteinEvidence,
	ColPDBCount,
	ColAlphaFoldConf,
	ColChEMBLCount,
	ColPantherFamilyName,
	ColPantherSFName,
	ColPantherAnnotation,
}

// Annotation is one row of the output table. Sources return partial
// annotations where only their own fields are set; a nil pointer is a null.
type Annotation struct {
	// UniProtAC is the accession and the dedup key of the output table.
	UniProtAC string `json:"uniprot_ac" yaml:"uniprot_ac"`

	GeneName        *string `json:"gene_name" yaml:"gene_name"`
	FullName        *string `json:"full_name" yaml:"full_name"`
	Organism        *string `json:"organism" yaml:"organism"`
	ProteinLength   *int    `json:"protein_length" yaml:"protein_length"`
	UniProtReviewed *bool   `json:"uniprot_reviewed" yaml:"uniprot_reviewed"`
	ProteinEvidence *bool   `json:"protein_evidence" yaml:"protein_evidence"`

	// PDBCount is the number of PDB structures cross-referenced to the accession.
	PDBCount *int `json:"pdb_count" yaml:"pdb_count"`

	// AlphaFoldConf is the highest average pLDDT across AlphaFold models.
	AlphaFoldConf *float64 `json:"alphafold_conf" yaml:"alphafold_conf"`

	// ChEMBLCount is the number of distinct molecules with recorded bioactivity
	// against any ChEMBL target containing the protein.
	ChEMBLCount *int `json:"chembl_count" yaml:"chembl_count"`

	PantherFamilyName *string `json:"panther_family_name" yaml:"panther_family_name"`
	PantherSFName     *string `json:"panther_sf_name" yaml:"panther_sf_name"`

	// PantherAnnotation joins the PANTHER protein class names with "; ".
	PantherAnnotation *string `json:"panther_annotation" yaml:"panther_annotation"`
}

// Merge fills dst from the non-null fields of src. Fields that src leaves
// null keep their dst value.
func Merge(dst *Annotation, src Annotation) {
	if src.UniProtAC != "" {
		dst.UniProtAC = src.UniProtAC
	}
	mergeField(&dst.GeneName, src.GeneName)
	mergeField(&dst.FullName, src.FullName)
	mergeField(&dst.Organism, src.Organism)
	mergeField(&dst.ProteinLength, src.ProteinLength)
	mergeField(&dst.UniProtReviewed, src.UniProtReviewed)
	mergeField(&dst.ProteinEvidence, src.ProteinEvidence)
	mergeField(&dst.PDBCount, src.PDBCount)
	mergeField(&dst.AlphaFoldConf, src.AlphaFoldConf)
	mergeField(&dst.ChEMBLCount, src.ChEMBLCount)
	mergeField(&dst.PantherFamilyName, src.PantherFamilyName)
	mergeField(&dst.PantherSFName, src.PantherSFName)
	mergeField(&dst.PantherAnnotation, src.PantherAnnotation)
}

func mergeField[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// Record renders the annotation as the 13 cells of an output table row.
// Nulls are empty cells.
func (a Annotation) Record() []string {
	return []string{
		a.UniProtAC,
		formatString(a.GeneName),
		formatString(a.FullName),
		formatString(a.Organism),
		formatInt(a.ProteinLength),
		formatBool(a.UniProtReviewed),
		formatBool(a.ProteinEvidence),
		formatInt(a.PDBCount),
		formatFloat(a.AlphaFoldConf),
		formatInt(a.ChEMBLCount),
		formatString(a.PantherFamilyName),
		formatString(a.PantherSFName),
		formatString(a.PantherAnnotation),
	}
}

// ParseRecord builds an Annotation from a row read back from the output
// table. header gives the column of each cell. Cells that do not parse as
// the column's type are treated as null.
func ParseRecord(header, cells []string) (Annotation, error) {
	if len(cells) != len(header) {
		return Annotation{}, fmt.Errorf("row has %d fields, header has %d", len(cells), len(header))
	}
	var a Annotation
	for i, col := range header {
		v := cells[i]
		switch col {
		case ColUniProtAC:
			a.UniProtAC = v
		case ColGeneName:
			a.GeneName = parseString(v)
		case ColFullName:
			a.FullName = parseString(v)
		case ColOrganism:
			a.Organism = parseString(v)
		case ColProteinLength:
			a.ProteinLength = parseInt(v)
		case ColUniProtReviewed:
			a.UniProtReviewed = parseBool(v)
		case ColProteinEvidence:
			a.ProteinEvidence = parseBool(v)
		case ColPDBCount:
			a.PDBCount = parseInt(v)
		case ColAlphaFoldConf:
			a.AlphaFoldConf = parseFloat(v)
		case ColChEMBLCount:
			a.ChEMBLCount = parseInt(v)
		case ColPantherFamilyName:
			a.PantherFamilyName = parseString(v)
		case ColPantherSFName:
			a.PantherSFName = parseString(v)
		case ColPantherAnnotation:
			a.PantherAnnotation = parseString(v)
		}
	}
	if a.UniProtAC == "" {
		return Annotation{}, fmt.Errorf("row has an empty %s", ColUniProtAC)
	}
	return a, nil
}

func formatString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func formatInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatBool(v *bool) string {
	if v == nil {
		return ""
	}
	return strconv.FormatBool(*v)
}

func formatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func parseString(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

// parseInt also accepts "12.0", which tables written by pandas contain for
// integer columns holding nulls.
func parseInt(v string) *int {
	if v == "" {
		return nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return &n
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		n := int(f)
		return &n
	}
	return nil
}

func parseFloat(v string) *float64 {
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseBool(v string) *bool {
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return nil
	}
	return &b
}
