package profiler

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fog/engine/fog"
	"github.com/charmbracelet/log"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfiler_ReportsAveragesAtInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(clock.now),
		WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})),
	)

	if _, ok := p.LastReport(); ok {
		t.Fatal("expected no report before the first interval")
	}

	frames := []fog.FrameStats{
		{Collected: 4, Drawn: 2, Culled: 2},
		{Collected: 4, Drawn: 3, Culled: 1},
		{Collected: 4, Drawn: 1, Culled: 2, Deferred: 1},
	}
	for i, stats := range frames {
		clock.advance(250 * time.Millisecond)
		if p.Tick(stats) {
			t.Fatalf("frame %d reported before the interval elapsed", i)
		}
	}

	clock.advance(250 * time.Millisecond)
	if !p.Tick(fog.FrameStats{Collected: 4, Drawn: 2, Culled: 1, Deferred: 1}) {
		t.Fatal("expected a report once the interval elapsed")
	}

	r, ok := p.LastReport()
	if !ok {
		t.Fatal("expected LastReport to be set")
	}
	cases := []struct {
		name      string
		got, want float64
	}{
		{"fps", r.FPS, 4},
		{"collected", r.Collected, 4},
		{"drawn", r.Drawn, 2},
		{"culled", r.Culled, 1.5},
		{"deferred", r.Deferred, 0.5},
	}
	for _, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
	if !strings.Contains(buf.String(), "frame stats") {
		t.Errorf("expected report in log output, got %q", buf.String())
	}
}

func TestProfiler_ResetsAfterReport(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	var buf bytes.Buffer
	p := NewProfiler(
		WithInterval(time.Second),
		WithClock(clock.now),
		WithLogger(log.NewWithOptions(&buf, log.Options{})),
	)

	clock.advance(time.Second)
	p.Tick(fog.FrameStats{Drawn: 8})

	clock.advance(500 * time.Millisecond)
	if p.Tick(fog.FrameStats{Drawn: 2}) {
		t.Fatal("interval should restart after a report")
	}
	clock.advance(500 * time.Millisecond)
	if !p.Tick(fog.FrameStats{Drawn: 4}) {
		t.Fatal("expected second report")
	}
	r, _ := p.LastReport()
	if r.Drawn != 3 {
		t.Errorf("Drawn = %v, want 3", r.Drawn)
	}
	if r.FPS != 2 {
		t.Errorf("FPS = %v, want 2", r.FPS)
	}
}

func TestWithInterval_IgnoresNonPositive(t *testing.T) {
	p := NewProfiler(WithInterval(0), WithInterval(-time.Second)).(*profiler)
	if p.updateInterval != time.Second {
		t.Errorf("updateInterval = %v, want default 1s", p.updateInterval)
	}
}
