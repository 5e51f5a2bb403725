package profiler

import (
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-scene/engine/renderer"
)

// Report is the aggregate of one logging interval.
type Report struct {
	Elapsed time.Duration
	Frames  int
	FPS     float64

	// Totals summed over the interval's frames.
	Draws        int
	SkippedDraws int
	Uploads      int
	Destroys     int
	Errors       int

	HeapMB      float64
	AllocRateMB float64
	GCCount     uint32
}

func (r Report) String() string {
	return fmt.Sprintf("FPS: %.2f | Draws: %d (skipped %d) | Uploads: %d | Destroys: %d | Errors: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d",
		r.FPS, r.Draws, r.SkippedDraws, r.Uploads, r.Destroys, r.Errors, r.HeapMB, r.AllocRateMB, r.GCCount)
}

// Profiler tracks frame rate, renderer frame statistics and memory for performance monitoring.
// Outputs a Report to the log at a configurable interval.
type Profiler struct {
	updateInterval time.Duration
	now            func() time.Time
	logf           func(format string, args ...any)

	lastTime       time.Time
	current        Report
	memStats       runtime.MemStats
	lastTotalAlloc uint64
	last           Report
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often a report is logged. Defaults to 1 second.
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.updateInterval = d
		}
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithLogf replaces the log sink. Defaults to log.Printf.
func WithLogf(logf func(format string, args ...any)) ProfilerOption {
	return func(p *Profiler) {
		p.logf = logf
	}
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
		logf:           log.Printf,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick should be called once per rendered frame with that frame's statistics.
// Logs a report when the update interval has elapsed.
//
// Parameters:
//   - stats: the statistics of the frame just rendered
//
// Returns:
//   - bool: true if a report was logged this tick, false otherwise
func (p *Profiler) Tick(stats renderer.FrameStats) bool {
	p.current.Frames++
	p.current.Draws += stats.Draws
	p.current.SkippedDraws += stats.SkippedDraws
	p.current.Uploads += stats.Creates + stats.Updates
	p.current.Destroys += stats.Destroys
	p.current.Errors += stats.Errors

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	r := p.current
	r.Elapsed = elapsed
	r.FPS = float64(r.Frames) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()
	r.GCCount = p.memStats.NumGC

	p.logf("[Profiler] %s", r)

	p.last = r
	p.current = Report{}
	p.lastTime = currentTime
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently logged report.
func (p *Profiler) Last() Report {
	return p.last
}
