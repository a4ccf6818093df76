// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pdiddy/protein-annotator/internal/httputil"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

const (
	reviewedEntryPrefix  = "UniProtKB reviewed"
	proteinLevelEvidence = "1:"
)

// UniProt reads the UniProtKB entry of an accession.
type UniProt struct {
	Client *httputil.Client
	Base   string
}

// Name returns the source identifier.
func (s *UniProt) Name() string { return "uniprot" }

// Fetch returns accession, gene name, full name, organism, length, the
// reviewed flag and the protein-level evidence flag. On any failure the
// accession is preserved and every other field is null.
func (s *UniProt) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	a := types.Annotation{UniProtAC: accession}

	reqURL := strings.TrimRight(s.Base, "/") + "/uniprotkb/" + url.PathEscape(accession)

	var entry uniProtEntry
	if err := s.Client.GetJSON(ctx, reqURL, &entry); err != nil {
		if httputil.IsStatus(err) {
			return a, nil
		}
		return a, fmt.Errorf("UniProt entry %s: %w", accession, err)
	}

	if entry.PrimaryAccession != "" {
		a.UniProtAC = entry.PrimaryAccession
	}
	a.GeneName = geneSymbol(entry.Genes)
	if rn := entry.ProteinDescription.RecommendedName; rn != nil && rn.FullName != nil {
		a.FullName = nonEmpty(rn.FullName.Value)
	}
	a.Organism = nonEmpty(entry.Organism.ScientificName)
	a.ProteinLength = entry.Sequence.Length
	a.UniProtReviewed = types.Ptr(strings.HasPrefix(entry.EntryType, reviewedEntryPrefix))
	a.ProteinEvidence = types.Ptr(strings.HasPrefix(entry.ProteinExistence, proteinLevelEvidence))
	return a, nil
}

// geneSymbol picks the first gene's name, falling back to its ordered
// locus name and then its ORF name.
func geneSymbol(genes []uniProtGene) *string {
	if len(genes) == 0 {
		return nil
	}
	g := genes[0]
	switch {
	case g.GeneName != nil:
		return nonEmpty(g.GeneName.Value)
	case len(g.OrderedLocusNames) > 0:
		return nonEmpty(g.OrderedLocusNames[0].Value)
	case len(g.ORFNames) > 0:
		return nonEmpty(g.ORFNames[0].Value)
	}
	return nil
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// UniProt REST JSON structures.
type uniProtEntry struct {
	PrimaryAccession   string                    `json:"primaryAccession"`
	EntryType          string                    `json:"entryType"`
	ProteinExistence   string                    `json:"proteinExistence"`
	Genes              []uniProtGene             `json:"genes"`
	ProteinDescription uniProtProteinDescription `json:"proteinDescription"`
	Organism           uniProtOrganism           `json:"organism"`
	Sequence           uniProtSequence           `json:"sequence"`
}

type uniProtValue struct {
	Value string `json:"value"`
}

type uniProtGene struct {
	GeneName          *uniProtValue  `json:"geneName"`
	OrderedLocusNames []uniProtValue `json:"orderedLocusNames"`
	ORFNames          []uniProtValue `json:"orfNames"`
}

type uniProtProteinDescription struct {
	RecommendedName *uniProtName `json:"recommendedName"`
}

type uniProtName struct {
	FullName *uniProtValue `json:"fullName"`
}

type uniProtOrganism struct {
	ScientificName string `json:"scientificName"`
	TaxonID        int    `json:"taxonId"`
}

type uniProtSequence struct {
	Length *int `json:"length"`
}
