package profiler

import (
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// Sample is one profiler report.
type Sample struct {
	FPS          int
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
	SinceLastRep time.Duration
}

// Profiler reports memory statistics alongside each published frame rate.
// The frame clock owns the FPS value; the profiler only adds heap and GC numbers to it.
type Profiler struct {
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	now            func() time.Time
}

// NewProfiler creates a new Profiler.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime: time.Now(),
		memStats: runtime.MemStats{},
		now:      time.Now,
	}
}

// Report samples memory statistics and logs them with fps at debug level.
// Call it each time the frame clock publishes.
//
// Parameters:
//   - fps: the frames per second just published
//
// Returns:
//   - Sample: the logged values
func (p *Profiler) Report(fps int) Sample {
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed <= 0 {
		elapsed = time.Second
	}

	runtime.ReadMemStats(&p.memStats)
	// Alloc: live heap. TotalAlloc: cumulative, tracks churn. Sys: process footprint.
	s := Sample{
		FPS:          fps,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:        float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      p.memStats.NumGC,
		SinceLastRep: elapsed,
	}

	if s.GCCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses
		s.LastPauseUs = p.memStats.PauseNs[(s.GCCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if s.GCCount-startIdx > 256 {
			startIdx = s.GCCount - 256
		}
		for i := startIdx; i < s.GCCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > s.MaxPauseUs {
				s.MaxPauseUs = pause
			}
		}
	}

	log.Debug("profiler",
		"fps", s.FPS,
		"heap_mb", s.HeapMB,
		"alloc_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", s.SysMB,
	)

	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return s
}
