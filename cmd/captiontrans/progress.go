package main

import (
	"io"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"

	"captiontrans/internal/pipeline"
)

// transferProgress renders an upload bar followed by a spinner while the
// backend works. A nil *transferProgress is a no-op.
type transferProgress struct {
	out io.Writer

	mu      sync.Mutex
	bar     *progressbar.ProgressBar
	spinner *progressbar.ProgressBar
	stop    chan struct{}
	done    chan struct{}
}

func newTransferProgress(out io.Writer, size int64, label string) *transferProgress {
	bar := progressbar.NewOptions64(size,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetDescription("storing "+label),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
	return &transferProgress{out: out, bar: bar}
}

// Reader wraps src so bytes read advance the bar.
func (p *transferProgress) Reader(src io.Reader) io.Reader {
	if p == nil {
		return src
	}
	return io.TeeReader(src, p.bar)
}

// OnStage is passed to pipeline.Input.
func (p *transferProgress) OnStage(stage pipeline.Stage) {
	if p == nil {
		return
	}
	switch stage {
	case pipeline.StageStored:
		_ = p.bar.Finish()
		p.startSpinner()
	case pipeline.StageTranscribed:
		p.Close()
	}
}

func (p *transferProgress) startSpinner() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner != nil {
		return
	}
	p.spinner = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("transcribing"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go func(spinner *progressbar.ProgressBar, stop, done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = spinner.Add(1)
			}
		}
	}(p.spinner, p.stop, p.done)
}

// Close stops any running spinner and clears the line.
func (p *transferProgress) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.spinner == nil {
		return
	}
	close(p.stop)
	<-p.done
	_ = p.spinner.Finish()
	p.spinner = nil
}
