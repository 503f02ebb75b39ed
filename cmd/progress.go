package cmd

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/khanhnv2901/seca-scan/internal/checker"
)

// progressPrinter redraws a single status line while checks complete.
type progressPrinter struct {
	out      io.Writer
	total    int
	name     string
	mu       sync.Mutex
	pass     int
	fail     int
	errs     int
	last     checker.CheckName
	duration time.Duration
	updates  chan struct{}
	done     chan struct{}
	stopped  chan struct{}
	started  atomic.Bool
	stopOnce sync.Once
}

func newProgressPrinter(out io.Writer, total int, name string) *progressPrinter {
	if total <= 0 {
		total = 1
	}
	return &progressPrinter{
		out:     out,
		total:   total,
		name:    name,
		updates: make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

func (p *progressPrinter) Start() {
	if p.started.CompareAndSwap(false, true) {
		go p.loop()
	}
}

// Observe records one finding. It is safe to call from the scanner's goroutines.
func (p *progressPrinter) Observe(f checker.Finding) {
	p.mu.Lock()
	switch f.Status {
	case checker.StatusPass:
		p.pass++
	case checker.StatusFail:
		p.fail++
	default:
		p.errs++
	}
	p.last = f.Name
	p.duration += f.Duration
	p.mu.Unlock()

	select {
	case p.updates <- struct{}{}:
	default:
	}
}

func (p *progressPrinter) Stop() {
	p.stopOnce.Do(func() {
		close(p.done)
		if p.started.Load() {
			<-p.stopped
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", 80))
		p.printLocked()
		fmt.Fprintln(p.out)
	})
}

func (p *progressPrinter) loop() {
	defer close(p.stopped)
	ticker := time.NewTicker(300 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-p.updates:
			p.print()
		case <-ticker.C:
			p.print()
		case <-p.done:
			return
		}
	}
}

func (p *progressPrinter) print() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.printLocked()
}

func (p *progressPrinter) printLocked() {
	completed := p.pass + p.fail + p.errs
	if completed > p.total {
		p.total = completed
	}

	percent := (float64(completed) / float64(p.total)) * 100
	avg := 0.0
	if completed > 0 {
		avg = p.duration.Seconds() / float64(completed)
	}

	line := fmt.Sprintf("\r[%s] Progress: %d/%d (%.1f%%) Pass:%d Fail:%d Error:%d Avg:%.2fs",
		p.name, completed, p.total, percent, p.pass, p.fail, p.errs, avg)
	if p.last != "" {
		line += " Last:" + string(p.last)
	}
	fmt.Fprint(p.out, line)
}
