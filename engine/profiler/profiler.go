package profiler

import (
	"log/slog"
	"runtime"
	"time"
)

// Stats summarizes the frames seen during one reporting interval.
type Stats struct {
	// FPS is the number of loop frames per second.
	FPS float64
	// Draws is how many of those frames invoked the renderer.
	Draws int
	// AvgStep and MaxStep measure the time spent inside a frame callback.
	AvgStep time.Duration
	MaxStep time.Duration
	// HeapMB is the live heap in megabytes.
	HeapMB float64
	// AllocRateMB is the allocation churn in megabytes per second.
	AllocRateMB float64
	// GCCount is the total number of completed GC cycles.
	GCCount uint32
	// MaxPauseUs is the longest GC pause of the interval in microseconds.
	MaxPauseUs uint64
}

// Profiler tracks frame rate, draw count, frame step time and memory statistics.
// Outputs stats to a structured logger at a configurable interval.
type Profiler struct {
	logger         *slog.Logger
	now            func() time.Time
	updateInterval time.Duration

	frameCount int
	drawCount  int
	stepTotal  time.Duration
	stepMax    time.Duration

	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	last Stats
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - logger: destination for the periodic report (nil uses slog.Default)
//   - interval: time between reports (values <= 0 default to 1 second)
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(logger *slog.Logger, interval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Profiler{
		logger:         logger,
		now:            time.Now,
		updateInterval: interval,
		lastTime:       time.Now(),
	}
}

// Tick should be called once per loop frame.
// Logs performance statistics when the update interval has elapsed.
//
// Parameters:
//   - drew: whether the frame invoked the renderer
//   - step: the time spent in the frame callback
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick(drew bool, step time.Duration) bool {
	p.frameCount++
	if drew {
		p.drawCount++
	}
	p.stepTotal += step
	p.stepMax = max(p.stepMax, step)

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)

	stats := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		Draws:       p.drawCount,
		AvgStep:     p.stepTotal / time.Duration(p.frameCount),
		MaxStep:     p.stepMax,
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	// PauseNs is a circular buffer of the last 256 GC pauses
	if gcCount := p.memStats.NumGC; gcCount > 0 {
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			stats.MaxPauseUs = max(stats.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("frame stats",
		"fps", stats.FPS,
		"draws", stats.Draws,
		"avgStep", stats.AvgStep,
		"maxStep", stats.MaxStep,
		"heapMB", stats.HeapMB,
		"allocRateMB", stats.AllocRateMB,
		"gc", stats.GCCount,
		"maxPauseUs", stats.MaxPauseUs,
	)

	p.last = stats
	p.frameCount = 0
	p.drawCount = 0
	p.stepTotal = 0
	p.stepMax = 0
	p.lastTime = currentTime
	p.lastGCCount = stats.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the statistics of the most recent report.
func (p *Profiler) Last() Stats {
	return p.last
}
