// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package annotate

import (
	"fmt"
	"io"
	"strconv"
)

// LineProgress writes one "[i/total] outcome: accession" line per step.
type LineProgress struct {
	w     io.Writer
	total int
	done  int
	width int
}

// NewLineProgress returns a Progress that writes status lines to w.
func NewLineProgress(w io.Writer) *LineProgress {
	return &LineProgress{w: w}
}

// Start records the number of accessions in the batch.
func (p *LineProgress) Start(total int) {
	p.total = total
	p.done = 0
	p.width = len(strconv.Itoa(total))
}

// Step writes the status line of one accession.
func (p *LineProgress) Step(accession string, outcome Outcome) {
	p.done++
	fmt.Fprintf(p.w, "[%*d/%d] %-10s %s\n", p.width, p.done, p.total, outcome.String()+":", accession)
}

// Done is a no-op; the batch summary follows the last line.
func (p *LineProgress) Done() {}
