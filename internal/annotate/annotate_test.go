// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/protein-annotator/internal/sources"
	"github.com/pdiddy/protein-annotator/internal/sources/sourcestest"
	"github.com/pdiddy/protein-annotator/internal/table"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// fakeSource records the accessions it is asked for and delegates to fn.
type fakeSource struct {
	name string
	fn   func(ctx context.Context, accession string) (types.Annotation, error)

	mu    sync.Mutex
	calls []string
}

func (s *fakeSource) Name() string { return s.name }

func (s *fakeSource) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	s.mu.Lock()
	s.calls = append(s.calls, accession)
	s.mu.Unlock()
	if s.fn == nil {
		return types.Annotation{GeneName: types.Ptr("g-" + accession)}, nil
	}
	return s.fn(ctx, accession)
}

func (s *fakeSource) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func openTable(t *testing.T, path string) *table.Table {
	t.Helper()
	tbl, err := table.Open(path, false)
	require.NoError(t, err)
	return tbl
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestAnnotateEndToEnd(t *testing.T) {
	srv := sourcestest.NewServer(t)
	path := filepath.Join(t.TempDir(), "out.csv")

	an := New(sources.New(srv.Config(), srv.Client()), openTable(t, path), nil)
	b := &Batch{Annotator: an}

	result, err := b.Run(context.Background(), []string{sourcestest.Accession})
	require.NoError(t, err)
	assert.Equal(t, BatchResult{Annotated: 1}, result)

	rows, err := table.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	if diff := cmp.Diff(sourcestest.Expected(), rows[0]); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}

	lines := strings.Split(strings.TrimSpace(readFile(t, path)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, strings.Join(types.Columns, ","), lines[0])
	assert.Equal(t,
		`P96262,ctaE,Probable cytochrome c oxidase polypeptide III,Mycobacterium tuberculosis (strain ATCC 25618 / H37Rv),202,true,false,2,88.56,4,CYTOCHROME C OXIDASE SUBUNIT 3,CYTOCHROME C OXIDASE SUBUNIT 3 FAMILY MEMBER,oxidoreductase; transporter`,
		lines[1])
}

func TestAnnotateIdempotent(t *testing.T) {
	srv := sourcestest.NewServer(t)
	path := filepath.Join(t.TempDir(), "out.csv")
	ids := []string{sourcestest.Accession, "Q00000", sourcestest.Accession}

	run := func() BatchResult {
		an := New(sources.New(srv.Config(), srv.Client()), openTable(t, path), nil)
		result, err := (&Batch{Annotator: an}).Run(context.Background(), ids)
		require.NoError(t, err)
		return result
	}

	first := run()
	assert.Equal(t, BatchResult{Annotated: 2, Skipped: 1}, first)
	once := readFile(t, path)
	requests := srv.Requests()

	second := run()
	assert.Equal(t, BatchResult{Skipped: 3}, second)
	assert.Equal(t, once, readFile(t, path))
	assert.Equal(t, requests, srv.Requests(), "second run must not query any source")
}

func TestAnnotateResumesAfterInterruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	ids := []string{"A1", "B2", "C3", "D4"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	interrupting := &fakeSource{name: "fake", fn: func(ctx context.Context, accession string) (types.Annotation, error) {
		if accession == "C3" {
			cancel()
			return types.Annotation{}, ctx.Err()
		}
		return types.Annotation{GeneName: types.Ptr("g-" + accession)}, nil
	}}

	an := New([]sources.Source{interrupting}, openTable(t, path), nil)
	result, err := (&Batch{Annotator: an}).Run(ctx, ids)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, result.Annotated)
	partial := readFile(t, path)

	resumed := &fakeSource{name: "fake"}
	an = New([]sources.Source{resumed}, openTable(t, path), nil)
	result, err = (&Batch{Annotator: an}).Run(context.Background(), ids)
	require.NoError(t, err)

	assert.Equal(t, []string{"C3", "D4"}, resumed.Calls())
	assert.Equal(t, BatchResult{Annotated: 2, Skipped: 2}, result)
	full := readFile(t, path)
	assert.True(t, strings.HasPrefix(full, partial), "existing rows must be untouched")

	rows, err := table.ReadAll(path)
	require.NoError(t, err)
	var got []string
	for _, r := range rows {
		got = append(got, r.UniProtAC)
	}
	assert.Equal(t, ids, got)
}

func TestAnnotateSourceErrorsBecomeWarnings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	failing := &fakeSource{name: "broken", fn: func(context.Context, string) (types.Annotation, error) {
		return types.Annotation{}, errors.New("connection reset")
	}}
	working := &fakeSource{name: "counts", fn: func(context.Context, string) (types.Annotation, error) {
		return types.Annotation{PDBCount: types.Ptr(3)}, nil
	}}

	var log bytes.Buffer
	an := New([]sources.Source{failing, working}, openTable(t, path), &log)
	var out bytes.Buffer
	result, err := (&Batch{Annotator: an, Out: &out}).Run(context.Background(), []string{"P96262"})
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Annotated: 1, Warnings: 1}, result)
	assert.Contains(t, log.String(), "warning: broken: connection reset")
	assert.Contains(t, out.String(), "Batch summary: 1 annotated, 0 skipped, 1 warnings (total: 1)")

	rows, err := table.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, types.Annotation{UniProtAC: "P96262", PDBCount: types.Ptr(3)}, rows[0])
}

func TestAnnotateSecondaryAccession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	resolver := &fakeSource{name: "uniprot", fn: func(_ context.Context, accession string) (types.Annotation, error) {
		// O53611 is a secondary accession of P9WFB9.
		if accession == "O53611" {
			return types.Annotation{UniProtAC: "P9WFB9"}, nil
		}
		return types.Annotation{UniProtAC: accession}, nil
	}}

	var log bytes.Buffer
	an := New([]sources.Source{resolver}, openTable(t, path), &log)
	result, err := (&Batch{Annotator: an}).Run(context.Background(), []string{"P9WFB9", "O53611"})
	require.NoError(t, err)

	assert.Equal(t, BatchResult{Annotated: 1, Skipped: 1}, result)
	assert.Contains(t, log.String(), "O53611 is recorded as P9WFB9")

	rows, err := table.ReadAll(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "P9WFB9", rows[0].UniProtAC)
}

func TestBatchLineProgress(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	an := New([]sources.Source{&fakeSource{name: "fake"}}, openTable(t, path), nil)

	var out bytes.Buffer
	b := &Batch{Annotator: an, Progress: NewLineProgress(&out), Out: &out}
	_, err := b.Run(context.Background(), []string{"A1", "B2", "A1"})
	require.NoError(t, err)

	assert.Equal(t,
		"[1/3] annotated: A1\n"+
			"[2/3] annotated: B2\n"+
			"[3/3] skipped:   A1\n"+
			"\nBatch summary: 2 annotated, 1 skipped, 0 warnings (total: 3)\n",
		out.String())
}

func TestBatchWorkerPool(t *testing.T) {
	srv := sourcestest.NewServer(t)
	dir := t.TempDir()
	ids := []string{sourcestest.Accession, "Q00001", "Q00002", sourcestest.Accession, "Q00003", "Q00004"}

	run := func(path string, workers int) BatchResult {
		an := New(sources.New(srv.Config(), srv.Client()), openTable(t, path), nil)
		result, err := (&Batch{Annotator: an, Workers: workers}).Run(context.Background(), ids)
		require.NoError(t, err)
		return result
	}

	seqPath := filepath.Join(dir, "seq.csv")
	poolPath := filepath.Join(dir, "pool.csv")
	assert.Equal(t, BatchResult{Annotated: 5, Skipped: 1}, run(seqPath, 1))
	assert.Equal(t, BatchResult{Annotated: 5, Skipped: 1}, run(poolPath, 3))

	seqRows, err := table.ReadAll(seqPath)
	require.NoError(t, err)
	poolRows, err := table.ReadAll(poolPath)
	require.NoError(t, err)

	byAccession := func(rows []types.Annotation) map[string]types.Annotation {
		m := make(map[string]types.Annotation)
		for _, r := range rows {
			m[r.UniProtAC] = r
		}
		return m
	}
	require.Len(t, poolRows, 5)
	if diff := cmp.Diff(byAccession(seqRows), byAccession(poolRows)); diff != "" {
		t.Errorf("pool rows differ from sequential rows (-seq +pool):\n%s", diff)
	}

	// A pooled rerun is a no-op.
	before := readFile(t, poolPath)
	assert.Equal(t, BatchResult{Skipped: 6}, run(poolPath, 3))
	assert.Equal(t, before, readFile(t, poolPath))
}

func TestBatchWorkerPoolCancelled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocking := &fakeSource{name: "fake", fn: func(ctx context.Context, accession string) (types.Annotation, error) {
		cancel()
		<-ctx.Done()
		return types.Annotation{}, ctx.Err()
	}}
	an := New([]sources.Source{blocking}, openTable(t, path), nil)
	_, err := (&Batch{Annotator: an, Workers: 2}).Run(ctx, []string{"A1", "B2", "C3"})
	require.ErrorIs(t, err, context.Canceled)

	rows, err := table.ReadAll(path)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestAppendOnlyMatchesRewrite(t *testing.T) {
	srv := sourcestest.NewServer(t)
	dir := t.TempDir()
	ids := []string{sourcestest.Accession, "Q00001"}

	for _, appendOnly := range []bool{false, true} {
		path := filepath.Join(dir, "rewrite.csv")
		if appendOnly {
			path = filepath.Join(dir, "append.csv")
		}
		tbl, err := table.Open(path, appendOnly)
		require.NoError(t, err)
		an := New(sources.New(srv.Config(), srv.Client()), tbl, nil)
		_, err = (&Batch{Annotator: an}).Run(context.Background(), ids)
		require.NoError(t, err)
	}

	assert.Equal(t, readFile(t, filepath.Join(dir, "rewrite.csv")), readFile(t, filepath.Join(dir, "append.csv")))
}
