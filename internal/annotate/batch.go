// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"context"
	"fmt"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/protein-annotator/pkg/types"
)

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Annotated int
	Skipped   int
	// Warnings counts source failures that left fields null.
	Warnings int
}

// Total returns the total number of accessions processed.
func (r BatchResult) Total() int {
	return r.Annotated + r.Skipped
}

// Progress receives one Step per input accession, in processing order.
type Progress interface {
	Start(total int)
	Step(accession string, outcome Outcome)
	Done()
}

// Batch drives an Annotator over a list of accessions.
type Batch struct {
	Annotator *Annotator

	// Workers is the number of accessions fetched concurrently. With one
	// worker (the default) accessions are processed strictly in input
	// order; with more, rows are written in completion order by a single
	// writer.
	Workers int

	// Progress reports per-accession progress. Nil reports nothing.
	Progress Progress

	// Out receives the summary line.
	Out io.Writer
}

// Run annotates every accession in ids. It stops at the first error (a
// cancelled context or a failed write); every row written before that
// stays in the table, so running again resumes from there.
func (b *Batch) Run(ctx context.Context, ids []string) (BatchResult, error) {
	progress := b.Progress
	if progress == nil {
		progress = nopProgress{}
	}
	out := b.Out
	if out == nil {
		out = io.Discard
	}

	progress.Start(len(ids))

	var result BatchResult
	var err error
	if b.Workers <= 1 {
		err = b.runSequential(ctx, ids, progress, &result)
	} else {
		err = b.runPool(ctx, ids, progress, &result)
	}
	result.Warnings = b.Annotator.Warnings()
	if err != nil {
		return result, err
	}

	progress.Done()
	fmt.Fprintf(out, "\nBatch summary: %d annotated, %d skipped, %d warnings (total: %d)\n",
		result.Annotated, result.Skipped, result.Warnings, result.Total())
	return result, nil
}

func (b *Batch) runSequential(ctx context.Context, ids []string, progress Progress, result *BatchResult) error {
	for _, id := range ids {
		outcome, err := b.Annotator.Annotate(ctx, id)
		if err != nil {
			return fmt.Errorf("annotating %s: %w", id, err)
		}
		result.add(outcome)
		progress.Step(id, outcome)
	}
	return nil
}

// fetched is an accession ready for the writer: either a fetched row or a
// skip decided before fetching.
type fetched struct {
	accession string
	row       types.Annotation
	skip      bool
}

// runPool fetches with b.Workers goroutines. The calling goroutine is the
// only writer, which keeps the one-row-per-accession invariant without
// locking around the fetches.
func (b *Batch) runPool(ctx context.Context, ids []string, progress Progress, result *BatchResult) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan string)
	results := make(chan fetched)

	send := func(f fetched) error {
		select {
		case results <- f:
			return nil
		case <-gctx.Done():
			return gctx.Err()
		}
	}

	var senders sync.WaitGroup
	senders.Add(1 + b.Workers)

	g.Go(func() error {
		defer senders.Done()
		defer close(jobs)
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			if seen[id] || b.Annotator.table.Contains(id) {
				if err := send(fetched{accession: id, skip: true}); err != nil {
					return err
				}
				continue
			}
			seen[id] = true
			select {
			case jobs <- id:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < b.Workers; i++ {
		g.Go(func() error {
			defer senders.Done()
			for id := range jobs {
				row, err := b.Annotator.Fetch(gctx, id)
				if err != nil {
					return fmt.Errorf("annotating %s: %w", id, err)
				}
				if err := send(fetched{accession: id, row: row}); err != nil {
					return err
				}
			}
			return nil
		})
	}

	go func() {
		senders.Wait()
		close(results)
	}()

	var writeErr error
	for f := range results {
		if writeErr != nil {
			continue
		}
		outcome := Skipped
		if !f.skip {
			var err error
			outcome, err = b.Annotator.Record(f.accession, f.row)
			if err != nil {
				writeErr = err
				cancel()
				continue
			}
		}
		result.add(outcome)
		progress.Step(f.accession, outcome)
	}

	if err := g.Wait(); err != nil && writeErr == nil {
		return err
	}
	return writeErr
}

func (r *BatchResult) add(o Outcome) {
	switch o {
	case Annotated:
		r.Annotated++
	case Skipped:
		r.Skipped++
	}
}

type nopProgress struct{}

func (nopProgress) Start(int)            {}
func (nopProgress) Step(string, Outcome) {}
func (nopProgress) Done()                {}
