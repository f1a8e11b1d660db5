package main

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"sitephoto/internal/logging"
)

type phase struct {
	name     string
	duration time.Duration
}

// phaseTimer records the time spent between marks.
type phaseTimer struct {
	enabled bool
	last    time.Time
	start   time.Time
	phases  []phase
}

func newPhaseTimer(enabled bool) *phaseTimer {
	now := time.Now()
	return &phaseTimer{enabled: enabled, last: now, start: now}
}

func (t *phaseTimer) mark(name string) {
	if t == nil || !t.enabled {
		return
	}
	now := time.Now()
	t.phases = append(t.phases, phase{name: name, duration: now.Sub(t.last)})
	t.last = now
}

func (t *phaseTimer) render(w io.Writer) {
	if t == nil || !t.enabled || len(t.phases) == 0 {
		return
	}
	rows := make([][]string, 0, len(t.phases)+1)
	for _, p := range t.phases {
		rows = append(rows, []string{p.name, formatDuration(p.duration)})
	}
	rows = append(rows, []string{"total", formatDuration(time.Since(t.start))})
	fmt.Fprintln(w, renderTable(w, []string{"Phase", "Duration"}, rows, []columnAlignment{alignLeft, alignRight}))
}

// log writes one debug line per phase.
func (t *phaseTimer) log(logger *slog.Logger) {
	if t == nil || !t.enabled || logger == nil {
		return
	}
	for _, p := range t.phases {
		logger.Debug("phase timing", logging.String("phase", p.name), logging.Duration("duration", p.duration))
	}
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000)
	default:
		return d.Round(time.Millisecond).String()
	}
}
