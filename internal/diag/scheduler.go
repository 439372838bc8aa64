// internal/diag/scheduler.go - periodic re-run trigger
package diag

import (
    "context"
    "fmt"
    "sync"
    "time"

    "github.com/sirupsen/logrus"
)

// RefreshIntervals is the fixed set of allowed auto-refresh intervals.
// A zero interval disables auto-refresh.
var RefreshIntervals = []time.Duration{
    30 * time.Second,
    time.Minute,
    2 * time.Minute,
    5 * time.Minute,
}

// ValidInterval reports whether d is zero (disabled) or one of the presets.
func ValidInterval(d time.Duration) bool {
    if d == 0 {
        return true
    }
    for _, preset := range RefreshIntervals {
        if d == preset {
            return true
        }
    }
    return false
}

// Scheduler fires the trigger whenever the configured interval has elapsed
// since the last completed run. It polls on a coarse one-second tick, so an
// interval change takes effect on the next tick without restarting
// anything. Run-exclusivity is the orchestrator's job; the scheduler only
// decides when to ask.
type Scheduler struct {
    trigger func()

    mu       sync.Mutex
    interval time.Duration
    lastRun  time.Time
    running  bool
}

func NewScheduler(interval time.Duration, trigger func()) *Scheduler {
    return &Scheduler{
        trigger:  trigger,
        interval: interval,
    }
}

// Start begins the timer loop. It returns immediately; the loop exits when
// ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
    s.mu.Lock()
    if s.running {
        s.mu.Unlock()
        return
    }
    s.running = true
    s.mu.Unlock()

    logrus.WithField("interval", s.Interval()).Info("Starting scheduler")

    go func() {
        ticker := time.NewTicker(time.Second)
        defer ticker.Stop()

        for {
            select {
            case <-ctx.Done():
                logrus.Debug("Scheduler stopped")
                return
            case <-ticker.C:
                s.tick()
            }
        }
    }()
}

func (s *Scheduler) tick() {
    s.mu.Lock()
    interval := s.interval
    due := interval > 0 && time.Since(s.lastRun) >= interval
    if due {
        s.lastRun = time.Now()
    }
    s.mu.Unlock()

    if due {
        logrus.Debug("Scheduler firing periodic run")
        s.trigger()
    }
}

// MarkRun resets the countdown, so a manual run postpones the next periodic
// one instead of stacking on top of it.
func (s *Scheduler) MarkRun() {
    s.mu.Lock()
    s.lastRun = time.Now()
    s.mu.Unlock()
}

// Interval returns the current auto-refresh interval (0 = disabled).
func (s *Scheduler) Interval() time.Duration {
    s.mu.Lock()
    defer s.mu.Unlock()
    return s.interval
}

// SetInterval changes the interval, rejecting values outside the preset
// set. Takes effect on the next tick.
func (s *Scheduler) SetInterval(d time.Duration) error {
    if !ValidInterval(d) {
        return fmt.Errorf("invalid refresh interval %s", d)
    }

    s.mu.Lock()
    changed := s.interval != d
    s.interval = d
    s.mu.Unlock()

    if changed {
        logrus.WithField("interval", d).Info("Refresh interval changed")
    }
    return nil
}
