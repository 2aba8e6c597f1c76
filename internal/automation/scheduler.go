package automation

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/abhishekbhowal06/email-automation/internal/activity"
	"github.com/abhishekbhowal06/email-automation/internal/metrics"
)

// QueueProcessor runs one tick of campaign processing
type QueueProcessor interface {
	ProcessQueue(ctx context.Context) error
}

// Status is a snapshot of the scheduler's runtime state
type Status struct {
	Running   bool   `json:"running"`
	Paused    bool   `json:"paused"`
	SentToday int    `json:"sent_today"`
	State     string `json:"state"` // stopped, running, paused
}

// Scheduler owns the automation lifecycle: Stopped -> Running -> Paused ->
// Running -> Stopped. Ticks run on a single goroutine, so a tick that
// outlives its period never overlaps the next (time.Ticker drops missed
// ticks). The tick period is read from settings once at start; a mid-run
// settings change takes effect on the next start.
type Scheduler struct {
	processor QueueProcessor
	settings  SettingsSource
	activity  *activity.Logger
	metrics   *metrics.Metrics
	logger    *slog.Logger

	now func() time.Time

	mu        sync.Mutex
	running   bool
	paused    bool
	sentToday int
	quotaDay  int // year*1000 + day-of-year of the current quota window
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewScheduler(processor QueueProcessor, settings SettingsSource, act *activity.Logger, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		processor: processor,
		settings:  settings,
		activity:  act,
		metrics:   m,
		logger:    logger.With("component", "scheduler"),
		now:       time.Now,
	}
}

// SetProcessor attaches the queue processor after construction. The
// scheduler doubles as the dispatcher's quota counter, so the two
// reference each other and one side has to be wired in late.
func (s *Scheduler) SetProcessor(p QueueProcessor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.processor = p
}

// Start begins periodic queue processing. It is a no-op when already
// running; when paused it resumes without retiming the ticker.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		if !s.paused {
			s.mu.Unlock()
			return nil
		}
		s.paused = false
		s.mu.Unlock()
		s.logger.Info("scheduler resumed")
		s.activity.Success("Email automation resumed")
		return nil
	}
	s.mu.Unlock()

	settings, err := s.settings.Get()
	if err != nil {
		return err
	}
	interval := time.Duration(settings.SendIntervalSeconds) * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	s.mu.Lock()
	if s.running {
		// lost a race with another Start while settings were loading
		s.mu.Unlock()
		cancel()
		return nil
	}
	s.running = true
	s.paused = false
	s.cancel = cancel
	s.done = done
	s.mu.Unlock()

	go s.run(ctx, interval, done)

	s.metrics.AutomationRunning.Set(1)
	s.logger.Info("scheduler started", "interval", interval)
	s.activity.Success("Email automation started")
	return nil
}

// Pause suspends queue processing without stopping the ticker; ticks keep
// firing and are discarded. No-op unless running.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if !s.running || s.paused {
		s.mu.Unlock()
		return
	}
	s.paused = true
	s.mu.Unlock()

	s.logger.Info("scheduler paused")
	s.activity.Warning("Email automation paused")
}

// Stop cancels the ticker and waits for the run loop to exit, so no
// further ticks fire after it returns. In-flight delivery callbacks
// already scheduled may still land afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.paused = false
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	cancel()
	<-done

	s.metrics.AutomationRunning.Set(0)
	s.logger.Info("scheduler stopped")
	s.activity.Info("Email automation stopped")
}

// Status returns a snapshot of the runtime state
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetQuotaLocked()

	st := Status{Running: s.running, Paused: s.paused, SentToday: s.sentToday, State: "stopped"}
	if s.running {
		st.State = "running"
		if s.paused {
			st.State = "paused"
		}
	}
	return st
}

// SentToday returns the count against today's quota
func (s *Scheduler) SentToday() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetQuotaLocked()
	return s.sentToday
}

// AddSent counts n sends against today's quota
func (s *Scheduler) AddSent(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetQuotaLocked()
	s.sentToday += n
	s.metrics.SentToday.Set(float64(s.sentToday))
}

// resetQuotaLocked zeroes the counter when the local day has rolled over
func (s *Scheduler) resetQuotaLocked() {
	now := s.now()
	day := now.Year()*1000 + now.YearDay()
	if day != s.quotaDay {
		s.quotaDay = day
		if s.sentToday != 0 {
			s.sentToday = 0
			s.metrics.SentToday.Set(0)
			s.logger.Info("daily send counter reset")
		}
	}
}

func (s *Scheduler) run(ctx context.Context, interval time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	s.resetQuotaLocked()
	paused := s.paused
	s.mu.Unlock()

	if paused {
		s.metrics.TicksSkippedTotal.WithLabelValues("paused").Inc()
		return
	}

	s.metrics.TicksTotal.Inc()
	start := time.Now()

	if err := s.processor.ProcessQueue(ctx); err != nil && ctx.Err() == nil {
		s.logger.Error("queue processing failed", "error", err)
		s.activity.Error("Error processing email queue")
	}

	s.metrics.TickDurationSeconds.Observe(time.Since(start).Seconds())
}
