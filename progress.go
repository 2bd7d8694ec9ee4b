package main

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// progress draws one bar per chapter while its chunks are voiced.
type progress struct {
	out     io.Writer
	chapter string
	bar     *progressbar.ProgressBar
}

func newProgress(out io.Writer) *progress {
	return &progress{out: out}
}

func (p *progress) update(chapter string, done, total int) {
	if chapter != p.chapter || p.bar == nil {
		p.finish()
		p.chapter = chapter
		p.bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription(chapter),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(30),
			progressbar.OptionOnCompletion(func() { _, _ = io.WriteString(p.out, "\n") }),
		)
	}
	_ = p.bar.Set(done)
}

func (p *progress) finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
	p.bar = nil
	p.chapter = ""
}
