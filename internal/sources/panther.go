// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/protein-annotator/internal/httputil"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// pantherProteinClass is the content tag of PANTHER protein class annotations.
const pantherProteinClass = "ANNOT_TYPE_ID_PANTHER_PC"

// Panther reads the PANTHER family classification of an accession.
type Panther struct {
	Client *httputil.Client
	Base   string
	// TaxonID scopes the gene lookup to one organism.
	TaxonID int
}

// Name returns the source identifier.
func (s *Panther) Name() string { return "panther" }

// Fetch returns the family name, subfamily name and the "; "-joined
// protein class annotations. Family and subfamily are read independently
// of the annotation list, so a gene without annotations still reports them.
func (s *Panther) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	taxon := s.TaxonID
	if taxon == 0 {
		taxon = types.DefaultTaxonID
	}
	params := url.Values{
		"geneInputList": {accession},
		"organism":      {strconv.Itoa(taxon)},
	}
	reqURL := strings.TrimRight(s.Base, "/") + "/services/oai/pantherdb/geneinfo?" + params.Encode()

	var resp pantherResponse
	if err := s.Client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httputil.IsStatus(err) {
			return types.Annotation{}, nil
		}
		return types.Annotation{}, fmt.Errorf("PANTHER geneinfo %s: %w", accession, err)
	}

	if resp.Search.MappedGenes == nil {
		return types.Annotation{}, nil
	}
	genes := objects[pantherGene](resp.Search.MappedGenes.Gene)
	if len(genes) == 0 {
		return types.Annotation{}, nil
	}
	gene := genes[0]

	a := types.Annotation{
		PantherFamilyName: nonEmpty(gene.FamilyName),
		PantherSFName:     nonEmpty(gene.SFName),
	}
	if gene.AnnotationTypeList == nil {
		return a, nil
	}

	var names []string
	for _, entry := range objects[pantherAnnotationType](gene.AnnotationTypeList.AnnotationDataType) {
		if entry.Content != pantherProteinClass || entry.AnnotationList == nil {
			continue
		}
		for _, ann := range objects[pantherAnnotation](entry.AnnotationList.Annotation) {
			if ann.Name != "" {
				names = append(names, ann.Name)
			}
		}
	}
	if len(names) > 0 {
		a.PantherAnnotation = types.Ptr(strings.Join(names, "; "))
	}
	return a, nil
}

// objects decodes a PANTHER value that holds either one object or a list of
// them. List elements that are not objects are skipped.
func objects[T any](raw json.RawMessage) []T {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	switch raw[0] {
	case '{':
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil
		}
		return []T{v}
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return nil
		}
		var out []T
		for _, e := range elems {
			e = bytes.TrimSpace(e)
			if len(e) == 0 || e[0] != '{' {
				continue
			}
			var v T
			if err := json.Unmarshal(e, &v); err != nil {
				continue
			}
			out = append(out, v)
		}
		return out
	}
	return nil
}

// PANTHER geneinfo JSON structures. Several levels are an object when
// there is one element and a list otherwise, so they stay raw.
type pantherResponse struct {
	Search pantherSearch `json:"search"`
}

type pantherSearch struct {
	MappedGenes *pantherMappedGenes `json:"mapped_genes"`
}

type pantherMappedGenes struct {
	Gene json.RawMessage `json:"gene"`
}

type pantherGene struct {
	Accession          string                  `json:"accession"`
	FamilyName         string                  `json:"family_name"`
	FamilyID           string                  `json:"family_id"`
	SFName             string                  `json:"sf_name"`
	SFID               string                  `json:"sf_id"`
	AnnotationTypeList *pantherAnnotationTypes `json:"annotation_type_list"`
}

type pantherAnnotationTypes struct {
	AnnotationDataType json.RawMessage `json:"annotation_data_type"`
}

type pantherAnnotationType struct {
	Content        string                  `json:"content"`
	AnnotationList *pantherAnnotationList `json:"annotation_list"`
}

type pantherAnnotationList struct {
	Annotation json.RawMessage `json:"annotation"`
}

type pantherAnnotation struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
