package game

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// Task is a handle to a repeating job.
type Task interface {
	// Stop cancels the job. It never blocks and may be called repeatedly.
	Stop()
	Active() bool
}

// Scheduler runs fn every interval until fn returns false or the task is
// stopped.
type Scheduler interface {
	Every(interval time.Duration, fn func() bool) Task
}

// TickerScheduler runs each task on its own goroutine driven by a time.Ticker.
type TickerScheduler struct{}

func (TickerScheduler) Every(interval time.Duration, fn func() bool) Task {
	t := &tickerTask{done: make(chan struct{})}
	t.active.Store(true)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// Stop may race with a tick that already fired.
				if !t.Active() {
					return
				}
				if !fn() {
					t.Stop()
					return
				}
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type tickerTask struct {
	once   sync.Once
	done   chan struct{}
	active atomic.Bool
}

func (t *tickerTask) Stop() {
	t.once.Do(func() {
		t.active.Store(false)
		close(t.done)
	})
}

func (t *tickerTask) Active() bool {
	return t.active.Load()
}

// countdown tracks one day timer. A new day gets a new countdown, so a tick
// from a stopped timer can never touch the current one.
type countdown struct {
	total     int
	remaining atomic.Int64
	task      Task
}

func newCountdown(total int) *countdown {
	c := &countdown{total: total}
	c.remaining.Store(int64(total))
	return c
}

// tick counts down one unit and reports whether time is up.
func (c *countdown) tick() bool {
	return c.remaining.Add(-1) <= 0
}

func (c *countdown) stop() {
	if c.task != nil {
		c.task.Stop()
	}
}

// FormatRemaining renders seconds as MM:SS.
func FormatRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// RemainingPercent returns remaining as a share of total, clamped to 0-100.
func RemainingPercent(remaining, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(remaining) / float64(total) * 100
	return min(100, max(0, p))
}
