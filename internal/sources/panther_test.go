// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sources

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/protein-annotator/pkg/types"
)

func TestPanther(t *testing.T) {
	tests := []struct {
		name string
		body string
		want types.Annotation
	}{
		{
			name: "two protein class entries joined",
			body: `{"search": {"mapped_genes": {"gene": {
				"family_name": "FAM", "sf_name": "SF",
				"annotation_type_list": {"annotation_data_type": [
					{"content": "ANNOT_TYPE_ID_PANTHER_PC", "annotation_list": {"annotation": {"name": "X"}}},
					{"content": "ANNOT_TYPE_ID_PANTHER_GO_SLIM_BP", "annotation_list": {"annotation": {"name": "ignored"}}},
					{"content": "ANNOT_TYPE_ID_PANTHER_PC", "annotation_list": {"annotation": {"name": "Y"}}}
				]}
			}}}}`,
			want: types.Annotation{
				PantherFamilyName: types.Ptr("FAM"),
				PantherSFName:     types.Ptr("SF"),
				PantherAnnotation: types.Ptr("X; Y"),
			},
		},
		{
			name: "annotation list within one entry",
			body: `{"search": {"mapped_genes": {"gene": {
				"family_name": "FAM",
				"annotation_type_list": {"annotation_data_type":
					{"content": "ANNOT_TYPE_ID_PANTHER_PC", "annotation_list": {"annotation": [{"name": "X"}, {"name": "Y"}]}}
				}
			}}}}`,
			want: types.Annotation{
				PantherFamilyName: types.Ptr("FAM"),
				PantherAnnotation: types.Ptr("X; Y"),
			},
		},
		{
			name: "non-object entries skipped",
			body: `{"search": {"mapped_genes": {"gene": {
				"family_name": "FAM", "sf_name": "SF",
				"annotation_type_list": {"annotation_data_type": [
					"stray", 7,
					{"content": "ANNOT_TYPE_ID_PANTHER_PC", "annotation_list": {"annotation": {"name": "X"}}}
				]}
			}}}}`,
			want: types.Annotation{
				PantherFamilyName: types.Ptr("FAM"),
				PantherSFName:     types.Ptr("SF"),
				PantherAnnotation: types.Ptr("X"),
			},
		},
		{
			name: "no annotation list keeps family names",
			body: `{"search": {"mapped_genes": {"gene": {"family_name": "FAM", "sf_name": "SF"}}}}`,
			want: types.Annotation{
				PantherFamilyName: types.Ptr("FAM"),
				PantherSFName:     types.Ptr("SF"),
			},
		},
		{
			name: "no protein class entry",
			body: `{"search": {"mapped_genes": {"gene": {
				"family_name": "FAM",
				"annotation_type_list": {"annotation_data_type": [
					{"content": "ANNOT_TYPE_ID_PANTHER_GO_SLIM_MF", "annotation_list": {"annotation": {"name": "binding"}}}
				]}
			}}}}`,
			want: types.Annotation{PantherFamilyName: types.Ptr("FAM")},
		},
		{
			name: "gene list uses first gene",
			body: `{"search": {"mapped_genes": {"gene": [
				{"family_name": "FIRST"},
				{"family_name": "SECOND"}
			]}}}`,
			want: types.Annotation{PantherFamilyName: types.Ptr("FIRST")},
		},
		{
			name: "unmapped",
			body: `{"search": {"unmapped_list": {"unmapped": "Q00000"}}}`,
			want: types.Annotation{},
		},
		{
			name: "no search object",
			body: `{}`,
			want: types.Annotation{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newJSONServer(t, http.StatusOK, tt.body)
			src := &Panther{Client: testClient(ts), Base: ts.URL, TaxonID: 83332}

			got, err := src.Fetch(context.Background(), "P96262")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPantherSendsTaxon(t *testing.T) {
	var gotQuery string
	ts := newRecordingServer(t, &gotQuery, `{"search": {}}`)
	src := &Panther{Client: testClient(ts), Base: ts.URL, TaxonID: 1773}

	_, err := src.Fetch(context.Background(), "P9WFB9")
	require.NoError(t, err)
	assert.Equal(t, "geneInputList=P9WFB9&organism=1773", gotQuery)
}

func TestPantherServerError(t *testing.T) {
	ts := newJSONServer(t, http.StatusInternalServerError, `{}`)
	src := &Panther{Client: testClient(ts), Base: ts.URL}

	got, err := src.Fetch(context.Background(), "P96262")
	require.NoError(t, err)
	assert.Equal(t, types.Annotation{}, got)
}
