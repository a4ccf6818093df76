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

// AlphaFold reads the AlphaFold DB prediction summary of an accession.
type AlphaFold struct {
	Client *httputil.Client
	Base   string
}

// Name returns the source identifier.
func (s *AlphaFold) Name() string { return "alphafold" }

// Fetch returns the highest average local confidence (pLDDT) across the
// predicted structures. Scores that are not JSON numbers are ignored; the
// result is null when no numeric score exists.
func (s *AlphaFold) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	reqURL := strings.TrimRight(s.Base, "/") + "/api/uniprot/summary/" + url.PathEscape(accession) + ".json"

	var summary alphaFoldSummary
	if err := s.Client.GetJSON(ctx, reqURL, &summary); err != nil {
		if httputil.IsStatus(err) {
			return types.Annotation{}, nil
		}
		return types.Annotation{}, fmt.Errorf("AlphaFold summary %s: %w", accession, err)
	}

	var best *float64
	for _, st := range summary.Structures {
		score, ok := st.Summary.ConfidenceAvgLocalScore.(float64)
		if !ok {
			continue
		}
		if best == nil || score > *best {
			best = types.Ptr(score)
		}
	}
	return types.Annotation{AlphaFoldConf: best}, nil
}

// AlphaFold DB summary JSON structures.
type alphaFoldSummary struct {
	Structures []alphaFoldStructure `json:"structures"`
}

type alphaFoldStructure struct {
	Summary alphaFoldModel `json:"summary"`
}

type alphaFoldModel struct {
	ModelIdentifier string `json:"model_identifier"`
	// ConfidenceAvgLocalScore is decoded loosely: only float64 counts.
	ConfidenceAvgLocalScore any `json:"confidence_avg_local_score"`
}
