// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sourcestest serves canned UniProt, PDBe, AlphaFold, ChEMBL and
// PANTHER responses for tests. Only the accession P96262 is known; every
// other accession gets the response each upstream gives for an unknown one.
package sourcestest

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/pdiddy/protein-annotator/pkg/types"
)

// Accession is the one accession the fake upstreams know.
const Accession = "P96262"

// Server is a fake for all five upstream APIs behind one base URL.
type Server struct {
	*httptest.Server
	requests atomic.Int64
}

// NewServer starts a fake upstream server closed at test cleanup.
func NewServer(t testing.TB) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)
	return s
}

// Requests returns the number of requests served so far.
func (s *Server) Requests() int64 {
	return s.requests.Load()
}

// Config points every source at the fake server.
func (s *Server) Config() types.SourcesConfig {
	return types.SourcesConfig{
		HTTPConfig:    types.HTTPConfig{UserAgent: "protein-annotator/test"},
		UniProtBase:   s.URL,
		PDBeBase:      s.URL,
		AlphaFoldBase: s.URL,
		ChEMBLBase:    s.URL,
		PantherBase:   s.URL,
		TaxonID:       types.DefaultTaxonID,
	}
}

// Expected is the annotation row the fixtures produce for Accession.
func Expected() types.Annotation {
	return types.Annotation{
		UniProtAC:         Accession,
		GeneName:          types.Ptr("ctaE"),
		FullName:          types.Ptr("Probable cytochrome c oxidase polypeptide III"),
		Organism:          types.Ptr("Mycobacterium tuberculosis (strain ATCC 25618 / H37Rv)"),
		ProteinLength:     types.Ptr(202),
		UniProtReviewed:   types.Ptr(true),
		ProteinEvidence:   types.Ptr(false),
		PDBCount:          types.Ptr(2),
		AlphaFoldConf:     types.Ptr(88.56),
		ChEMBLCount:       types.Ptr(4),
		PantherFamilyName: types.Ptr("CYTOCHROME C OXIDASE SUBUNIT 3"),
		PantherSFName:     types.Ptr("CYTOCHROME C OXIDASE SUBUNIT 3 FAMILY MEMBER"),
		PantherAnnotation: types.Ptr("oxidoreductase; transporter"),
	}
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	s.requests.Add(1)
	w.Header().Set("Content-Type", "application/json")
	q := r.URL.Query()

	switch r.URL.Path {
	case "/uniprotkb/" + Accession:
		fmt.Fprint(w, UniProtJSON)
	case "/pdbe/graph-api/uniprot/unipdb/" + Accession:
		fmt.Fprint(w, PDBeJSON)
	case "/api/uniprot/summary/" + Accession + ".json":
		fmt.Fprint(w, AlphaFoldJSON)
	case "/chembl/api/data/target.json":
		if q.Get("target_components__accession") == Accession {
			fmt.Fprint(w, ChEMBLTargetJSON)
			return
		}
		fmt.Fprint(w, ChEMBLNoTargetJSON)
	case "/chembl/api/data/activity.json":
		if q.Get("target_chembl_id") != "CHEMBL2363065" {
			fmt.Fprint(w, `{"activities": [], "page_meta": {"next": null, "total_count": 0}}`)
			return
		}
		switch q.Get("offset") {
		case "":
			fmt.Fprint(w, ChEMBLActivityPage1JSON)
		case "1000":
			fmt.Fprintf(w, ChEMBLActivityPage2JSON, s.URL)
		case "2000":
			fmt.Fprint(w, ChEMBLActivityPage3JSON)
		default:
			http.NotFound(w, r)
		}
	case "/services/oai/pantherdb/geneinfo":
		if q.Get("geneInputList") == Accession {
			fmt.Fprint(w, PantherJSON)
			return
		}
		fmt.Fprint(w, PantherUnmappedJSON)
	default:
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{}`)
	}
}

// UniProtJSON is a trimmed UniProtKB entry.
const UniProtJSON = `{
  "entryType": "UniProtKB reviewed (Swiss-Prot)",
  "primaryAccession": "P96262",
  "proteinExistence": "3: Inferred from homology",
  "proteinDescription": {
    "recommendedName": {
      "fullName": {"value": "Probable cytochrome c oxidase polypeptide III"}
    }
  },
  "genes": [
    {
      "geneName": {"value": "ctaE"},
      "orderedLocusNames": [{"value": "Rv2193"}]
    }
  ],
  "organism": {
    "scientificName": "Mycobacterium tuberculosis (strain ATCC 25618 / H37Rv)",
    "taxonId": 83332
  },
  "sequence": {"length": 202, "molWeight": 22330}
}`

// PDBeJSON lists two structures for the accession.
const PDBeJSON = `{
  "P96262": {
    "data": [
      {"accession": "7E1V", "name": "CYTOCHROME C OXIDASE", "dataType": "PDB"},
      {"accession": "7E1W", "name": "CYTOCHROME C OXIDASE", "dataType": "PDB"}
    ]
  }
}`

// AlphaFoldJSON holds two numeric scores and one that is not a number.
const AlphaFoldJSON = `{
  "uniprot_entry": {"ac": "P96262"},
  "structures": [
    {"summary": {"model_identifier": "AF-P96262-F1", "confidence_avg_local_score": 71.2}},
    {"summary": {"model_identifier": "AF-P96262-F2", "confidence_avg_local_score": "n/a"}},
    {"summary": {"model_identifier": "AF-P96262-F3", "confidence_avg_local_score": 88.56}}
  ]
}`

// ChEMBLTargetJSON maps the accession to one target.
const ChEMBLTargetJSON = `{
  "page_meta": {"limit": 20, "next": null, "offset": 0, "total_count": 1},
  "targets": [{"target_chembl_id": "CHEMBL2363065", "pref_name": "Cytochrome c oxidase"}]
}`

// ChEMBLNoTargetJSON is the target search result for unknown accessions.
const ChEMBLNoTargetJSON = `{
  "page_meta": {"limit": 20, "next": null, "offset": 0, "total_count": 0},
  "targets": []
}`

// ChEMBLActivityPage1JSON links to page 2 with a relative URL.
const ChEMBLActivityPage1JSON = `{
  "activities": [
    {"activity_id": 1, "molecule_chembl_id": "CHEMBL1"},
    {"activity_id": 2, "molecule_chembl_id": "CHEMBL2"},
    {"activity_id": 3, "molecule_chembl_id": "CHEMBL2"}
  ],
  "page_meta": {
    "limit": 1000, "offset": 0, "total_count": 7,
    "next": "/chembl/api/data/activity.json?limit=1000&offset=1000&target_chembl_id=CHEMBL2363065"
  }
}`

// ChEMBLActivityPage2JSON links to page 3 with an absolute URL; the %s is
// the server base.
const ChEMBLActivityPage2JSON = `{
  "activities": [
    {"activity_id": 4, "molecule_chembl_id": "CHEMBL2"},
    {"activity_id": 5, "molecule_chembl_id": "CHEMBL3"},
    {"activity_id": 6, "molecule_chembl_id": null}
  ],
  "page_meta": {
    "limit": 1000, "offset": 1000, "total_count": 7,
    "next": "%s/chembl/api/data/activity.json?limit=1000&offset=2000&target_chembl_id=CHEMBL2363065"
  }
}`

// ChEMBLActivityPage3JSON is the last page.
const ChEMBLActivityPage3JSON = `{
  "activities": [
    {"activity_id": 7, "molecule_chembl_id": "CHEMBL1"},
    {"activity_id": 8, "molecule_chembl_id": "CHEMBL4"}
  ],
  "page_meta": {"limit": 1000, "offset": 2000, "total_count": 7, "next": null}
}`

// PantherJSON maps the accession to one gene with two protein class
// annotations and one GO slim annotation.
const PantherJSON = `{
  "search": {
    "search_type": "gene info",
    "mapped_genes": {
      "gene": {
        "accession": "MYCTU|Gene=ctaE|UniProtKB=P96262",
        "family_name": "CYTOCHROME C OXIDASE SUBUNIT 3",
        "family_id": "PTHR11403",
        "sf_name": "CYTOCHROME C OXIDASE SUBUNIT 3 FAMILY MEMBER",
        "sf_id": "PTHR11403:SF7",
        "annotation_type_list": {
          "annotation_data_type": [
            {
              "content": "ANNOT_TYPE_ID_PANTHER_GO_SLIM_MF",
              "annotation_list": {"annotation": {"id": "GO:0004129", "name": "cytochrome-c oxidase activity"}}
            },
            {
              "content": "ANNOT_TYPE_ID_PANTHER_PC",
              "annotation_list": {"annotation": {"id": "PC00176", "name": "oxidoreductase"}}
            },
            {
              "content": "ANNOT_TYPE_ID_PANTHER_PC",
              "annotation_list": {"annotation": {"id": "PC00227", "name": "transporter"}}
            }
          ]
        }
      }
    },
    "parameters": {"organism": "83332"}
  }
}`

// PantherUnmappedJSON is the geneinfo result for unknown accessions.
const PantherUnmappedJSON = `{
  "search": {
    "search_type": "gene info",
    "unmapped_list": {"unmapped": "Q00000"},
    "parameters": {"organism": "83332"}
  }
}`
