package main

import (
	"io"
	"time"

	"github.com/vbauerster/mpb"
	"github.com/vbauerster/mpb/decor"

	"github.com/pdiddy/protein-annotator/internal/annotate"
)

// barProgress renders batch progress as a terminal progress bar.
type barProgress struct {
	out   io.Writer
	p     *mpb.Progress
	bar   *mpb.Bar
	start time.Time
}

func newBarProgress(out io.Writer) *barProgress {
	return &barProgress{out: out}
}

func (b *barProgress) Start(total int) {
	if total == 0 {
		return
	}
	b.p = mpb.New(mpb.WithOutput(b.out))
	b.bar = b.p.AddBar(int64(total),
		mpb.PrependDecorators(decor.Name("annotating"), decor.CountersNoUnit("%3d/%3d", decor.WCSyncSpace)),
		mpb.AppendDecorators(decor.AverageETA(decor.ET_STYLE_HHMMSS)),
		mpb.BarRemoveOnComplete())
	b.start = time.Now()
}

func (b *barProgress) Step(string, annotate.Outcome) {
	if b.bar == nil {
		return
	}
	b.bar.IncrBy(1, time.Since(b.start))
}

// Done waits for the bar to finish rendering. Only called once every step
// has been reported, otherwise it would block.
func (b *barProgress) Done() {
	if b.p == nil {
		return
	}
	b.p.Wait()
}
