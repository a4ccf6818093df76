// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/protein-annotator/internal/httputil"
	"github.com/pdiddy/protein-annotator/internal/sources/sourcestest"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// fetchAll runs every source for accession and merges the results.
func fetchAll(t *testing.T, srcs []Source, accession string) types.Annotation {
	t.Helper()
	row := types.Annotation{UniProtAC: accession}
	for _, src := range srcs {
		part, err := src.Fetch(context.Background(), accession)
		require.NoError(t, err, src.Name())
		types.Merge(&row, part)
	}
	return row
}

// newJSONServer serves body for every request with the given status.
func newJSONServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testClient(ts *httptest.Server) *httputil.Client {
	return &httputil.Client{HTTP: ts.Client(), UserAgent: "protein-annotator/test"}
}

func TestNewOrder(t *testing.T) {
	srcs := New(types.SourcesConfig{}, http.DefaultClient)

	var names []string
	for _, s := range srcs {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"uniprot", "pdb", "alphafold", "chembl", "panther"}, names)
}

func TestAllSourcesKnownAccession(t *testing.T) {
	srv := sourcestest.NewServer(t)
	srcs := New(srv.Config(), srv.Client())

	got := fetchAll(t, srcs, sourcestest.Accession)
	if diff := cmp.Diff(sourcestest.Expected(), got); diff != "" {
		t.Errorf("annotation mismatch (-want +got):\n%s", diff)
	}
}

func TestAllSourcesUnknownAccession(t *testing.T) {
	srv := sourcestest.NewServer(t)
	srcs := New(srv.Config(), srv.Client())

	got := fetchAll(t, srcs, "Q00000")
	want := types.Annotation{
		UniProtAC:   "Q00000",
		PDBCount:    types.Ptr(0),
		ChEMBLCount: types.Ptr(0),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("annotation mismatch (-want +got):\n%s", diff)
	}
}

func TestSourcesTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	base := ts.URL
	client := ts.Client()
	ts.Close()

	cfg := types.SourcesConfig{
		UniProtBase:   base,
		PDBeBase:      base,
		AlphaFoldBase: base,
		ChEMBLBase:    base,
		PantherBase:   base,
	}
	for _, src := range New(cfg, client) {
		t.Run(src.Name(), func(t *testing.T) {
			part, err := src.Fetch(context.Background(), "P96262")
			assert.Error(t, err)

			want := types.Annotation{}
			if src.Name() == "uniprot" {
				want.UniProtAC = "P96262"
			}
			assert.Equal(t, want, part)
		})
	}
}
