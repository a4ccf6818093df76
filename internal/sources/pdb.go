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

// PDB counts the PDB structures PDBe maps to an accession.
type PDB struct {
	Client *httputil.Client
	Base   string
}

// Name returns the source identifier.
func (s *PDB) Name() string { return "pdb" }

// Fetch returns the number of cross-referenced structures. PDBe answers
// unknown accessions with 404 and an empty object; both count as zero, as
// does a body that is not JSON. Only transport failures return an error.
func (s *PDB) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	reqURL := strings.TrimRight(s.Base, "/") + "/pdbe/graph-api/uniprot/unipdb/" + url.PathEscape(accession)

	var resp map[string]pdbeAccession
	if err := s.Client.GetJSON(ctx, reqURL, &resp); err != nil {
		if httputil.IsStatus(err) || httputil.IsDecode(err) {
			return types.Annotation{PDBCount: types.Ptr(0)}, nil
		}
		return types.Annotation{}, fmt.Errorf("PDBe structures %s: %w", accession, err)
	}

	entry, ok := resp[accession]
	if !ok {
		return types.Annotation{PDBCount: types.Ptr(0)}, nil
	}
	return types.Annotation{PDBCount: types.Ptr(len(entry.Data))}, nil
}

// PDBe graph-api unipdb JSON structures.
type pdbeAccession struct {
	Data []pdbeStructure `json:"data"`
}

type pdbeStructure struct {
	Accession string `json:"accession"`
	Name      string `json:"name"`
	DataType  string `json:"dataType"`
}
