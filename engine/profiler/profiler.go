package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/Carmen-Shannon/oxy-fog/engine/logging"
	"github.com/charmbracelet/log"
)

// Report is one interval's worth of frame and memory statistics.
type Report struct {
	FPS float64

	// Fog volume counters averaged per frame over the interval.
	Collected float64
	Drawn     float64
	Culled    float64
	Deferred  float64

	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64
}

// Profiler tracks frame rate, fog volume throughput and memory statistics.
// Outputs a report to the log at a configurable interval.
type Profiler interface {
	// Tick should be called once per frame with the compositor's stats for that frame.
	//
	// Parameters:
	//   - stats: the fog frame stats of the frame that just finished
	//
	// Returns:
	//   - bool: true if a report was produced this tick, false otherwise
	Tick(stats fog.FrameStats) bool

	// LastReport returns the most recent report and whether one has been produced yet.
	LastReport() (Report, bool)
}

type profiler struct {
	logger *log.Logger
	now    func() time.Time

	frameCount     int
	collected      int
	drawn          int
	culled         int
	deferred       int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	last     Report
	reported bool
}

var _ Profiler = &profiler{}

// NewProfiler creates a new Profiler. The update interval defaults to 1 second.
//
// Parameters:
//   - opts: functional options
//
// Returns:
//   - Profiler: the newly created profiler instance
func NewProfiler(opts ...ProfilerBuilderOption) Profiler {
	p := &profiler{
		logger:         logging.Named("profiler"),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

func (p *profiler) Tick(stats fog.FrameStats) bool {
	p.frameCount++
	p.collected += stats.Collected
	p.drawn += stats.Drawn
	p.culled += stats.Culled
	p.deferred += stats.Deferred

	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	frames := float64(p.frameCount)
	r := Report{
		FPS:       frames / elapsed.Seconds(),
		Collected: float64(p.collected) / frames,
		Drawn:     float64(p.drawn) / frames,
		Culled:    float64(p.culled) / frames,
		Deferred:  float64(p.deferred) / frames,
	}
	p.readMemory(&r, elapsed)

	p.logger.Info("frame stats",
		"fps", r.FPS,
		"collected", r.Collected,
		"drawn", r.Drawn,
		"culled", r.Culled,
		"deferred", r.Deferred,
		"heapMB", r.HeapMB,
		"allocRateMB", r.AllocRateMB,
		"gc", r.GCCount,
		"lastPauseUs", r.LastPauseUs,
		"maxPauseUs", r.MaxPauseUs,
		"sysMB", r.SysMB,
	)

	p.frameCount = 0
	p.collected, p.drawn, p.culled, p.deferred = 0, 0, 0, 0
	p.lastTime = currentTime
	p.last = r
	p.reported = true
	return true
}

// readMemory fills the memory fields of r from the runtime and advances the GC and allocation baselines.
func (p *profiler) readMemory(r *Report, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	// Alloc is live heap, TotalAlloc only grows and tracks churn, Sys is the process footprint.
	r.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	r.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	r.AllocRateMB = float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	r.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 GC pauses.
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000

		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			if pause := p.memStats.PauseNs[i%256] / 1000; pause > r.MaxPauseUs {
				r.MaxPauseUs = pause
			}
		}
	}

	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

func (p *profiler) LastReport() (Report, bool) {
	return p.last, p.reported
}
