// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sources queries the public protein databases and turns each
// response into a partial annotation row.
//
// Every Source degrades rather than fails: an accession the upstream does
// not know, a non-success status, or a missing JSON level yields null
// fields. A returned error is informational; the partial annotation
// returned alongside it is still valid and carries whatever could be
// computed.
package sources

import (
	"context"
	"net/http"

	"github.com/pdiddy/protein-annotator/internal/httputil"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// Source fetches the fields one upstream database contributes to an
// annotation row.
type Source interface {
	Name() string
	Fetch(ctx context.Context, accession string) (types.Annotation, error)
}

// New returns the five sources in the order their columns appear in the
// output table: UniProt, PDB, AlphaFold, ChEMBL, PANTHER.
func New(cfg types.SourcesConfig, client *http.Client) []Source {
	cfg = cfg.WithDefaults()
	hc := &httputil.Client{
		HTTP:       client,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
	return []Source{
		&UniProt{Client: hc, Base: cfg.UniProtBase},
		&PDB{Client: hc, Base: cfg.PDBeBase},
		&AlphaFold{Client: hc, Base: cfg.AlphaFoldBase},
		&ChEMBL{Client: hc, Base: cfg.ChEMBLBase, PageSize: cfg.ChEMBLPageSize},
		&Panther{Client: hc, Base: cfg.PantherBase, TaxonID: cfg.TaxonID},
	}
}
