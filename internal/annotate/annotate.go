// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package annotate builds one annotation row per accession from every
// source and persists it to the output table, one accession at a time.
package annotate

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/pdiddy/protein-annotator/internal/sources"
	"github.com/pdiddy/protein-annotator/internal/table"
	"github.com/pdiddy/protein-annotator/pkg/types"
)

// Outcome is what happened to one accession.
type Outcome int

const (
	// Annotated means a new row was written.
	Annotated Outcome = iota
	// Skipped means the table already held a row for the accession.
	Skipped
)

func (o Outcome) String() string {
	switch o {
	case Annotated:
		return "annotated"
	case Skipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// Annotator merges the partial rows of its sources and appends the result
// to its table.
type Annotator struct {
	sources []sources.Source
	table   *table.Table

	logMu    sync.Mutex
	log      io.Writer
	warnings atomic.Int64
}

// New returns an Annotator that queries srcs in order and writes to tbl.
// Source warnings are written to log.
func New(srcs []sources.Source, tbl *table.Table, log io.Writer) *Annotator {
	if log == nil {
		log = io.Discard
	}
	return &Annotator{sources: srcs, table: tbl, log: log}
}

// Warnings returns the number of source failures downgraded to nulls so far.
func (an *Annotator) Warnings() int {
	return int(an.warnings.Load())
}

// Annotate records accession unless the table already holds it. The row is
// persisted before Annotate returns, so an interruption afterwards never
// loses it; an error before that point leaves the table unchanged.
func (an *Annotator) Annotate(ctx context.Context, accession string) (Outcome, error) {
	if an.table.Contains(accession) {
		return Skipped, nil
	}
	row, err := an.Fetch(ctx, accession)
	if err != nil {
		return 0, err
	}
	return an.Record(accession, row)
}

// Fetch queries every source for accession and merges their partial rows.
// Source errors become null fields and a warning line; only cancellation
// of ctx is returned.
func (an *Annotator) Fetch(ctx context.Context, accession string) (types.Annotation, error) {
	row := types.Annotation{UniProtAC: accession}
	for _, src := range an.sources {
		part, err := src.Fetch(ctx, accession)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return types.Annotation{}, ctxErr
		}
		if err != nil {
			an.warnings.Add(1)
			an.logf("  warning: %s: %v\n", src.Name(), err)
		}
		types.Merge(&row, part)
	}
	return row, nil
}

// Record appends row to the table. requested is the accession the row was
// fetched for; when UniProt resolved it to a primary accession the table
// already holds, the row is dropped and Skipped returned.
func (an *Annotator) Record(requested string, row types.Annotation) (Outcome, error) {
	added, err := an.table.Append(row)
	if err != nil {
		return 0, fmt.Errorf("recording %s: %w", requested, err)
	}
	if !added {
		if row.UniProtAC != requested {
			an.logf("  %s is recorded as %s\n", requested, row.UniProtAC)
		}
		return Skipped, nil
	}
	return Annotated, nil
}

func (an *Annotator) logf(format string, args ...any) {
	an.logMu.Lock()
	defer an.logMu.Unlock()
	fmt.Fprintf(an.log, format, args...)
}
