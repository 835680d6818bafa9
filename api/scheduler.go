/*
scheduler.go - Daily penalty batch scheduler

PURPOSE:
  Runs the strike evaluation and penalty batch pass once a day, after
  the previous day's attendance has settled. Manual runs through the
  admin endpoint use the same orchestrator and are safe to combine with
  scheduled runs because the pass is idempotent.

DESIGN:
  - Background goroutine with a short ticker that fires the pass when
    the local clock crosses the configured hour
  - At most one pass per calendar day (tracked by last run date)
  - Records every pass in the batch_runs audit table when a recorder
    is attached

CONFIGURATION:
  - RunAtHour: Local hour to run at (default: 2, i.e. 02:00)
  - Enabled:   Whether the scheduler is active (default: true)

USAGE:
  scheduler := NewDailyScheduler(orch)
  scheduler.Runs = store
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: RunNow endpoint (manual pass)
  - engine/orchestrator.go: The batch pass itself
*/
package api

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store/sqlite"
)

// RunRecorder persists batch run audit rows.
type RunRecorder interface {
	SaveBatchRun(ctx context.Context, run sqlite.BatchRun) error
}

// DailyScheduler fires the penalty batch pass once a day.
type DailyScheduler struct {
	Orchestrator *engine.Orchestrator
	Runs         RunRecorder
	RunAtHour    int
	Enabled      bool

	// Now is the clock, injected in tests.
	Now func() time.Time

	ticker  *time.Ticker
	stop    chan bool
	wg      sync.WaitGroup
	mu      sync.Mutex
	lastRun string
}

// NewDailyScheduler creates a scheduler that runs at 02:00 local time.
func NewDailyScheduler(orch *engine.Orchestrator) *DailyScheduler {
	return &DailyScheduler{
		Orchestrator: orch,
		RunAtHour:    2,
		Enabled:      true,
		Now:          time.Now,
		stop:         make(chan bool),
	}
}

// Start begins the scheduler.
func (ds *DailyScheduler) Start() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if !ds.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ds.ticker = time.NewTicker(time.Minute)
	ds.wg.Add(1)

	go ds.run()

	log.Printf("[Scheduler] Started, daily run at %02d:00", ds.RunAtHour)
}

// Stop stops the scheduler.
func (ds *DailyScheduler) Stop() {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.ticker != nil {
		ds.ticker.Stop()
		close(ds.stop)
		ds.wg.Wait()
		log.Println("[Scheduler] Stopped")
	}
}

func (ds *DailyScheduler) run() {
	defer ds.wg.Done()

	for {
		select {
		case <-ds.ticker.C:
			ds.checkAndRun()
		case <-ds.stop:
			return
		}
	}
}

// checkAndRun fires the pass once the clock is at or past the run hour,
// at most once per day.
func (ds *DailyScheduler) checkAndRun() {
	now := ds.Now()
	if now.Hour() < ds.RunAtHour {
		return
	}

	today := now.Format("2006-01-02")
	ds.mu.Lock()
	done := ds.lastRun == today
	if !done {
		ds.lastRun = today
	}
	ds.mu.Unlock()
	if done {
		return
	}

	ds.execute("scheduled")
}

// RunNow triggers an immediate pass (for testing/admin). Does not
// consume the day's scheduled slot.
func (ds *DailyScheduler) RunNow() {
	ds.execute("manual")
}

// NextRunTime returns when the next scheduled pass will occur.
func (ds *DailyScheduler) NextRunTime() time.Time {
	now := ds.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), ds.RunAtHour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (ds *DailyScheduler) execute(kind string) {
	ctx := context.Background()
	started := time.Now()
	runID := fmt.Sprintf("run-%d", started.UnixNano())

	log.Printf("[Scheduler] Starting %s batch pass", kind)

	summary, err := ds.Orchestrator.Run(ctx)

	if ds.Runs != nil {
		completed := time.Now()
		run := sqlite.BatchRun{
			ID:                 runID,
			Kind:               kind,
			EmployeesProcessed: summary.EmployeesProcessed,
			EmployeesFailed:    summary.EmployeesFailed,
			StrikesAnnotated:   summary.StrikesAnnotated,
			PenaltiesApplied:   summary.PenaltiesApplied,
			PenaltiesSkipped:   summary.PenaltiesSkipped,
			StartedAt:          started,
			CompletedAt:        &completed,
		}
		if summary.Window.IsValid() {
			run.WindowStart = summary.Window.Start.String()
			run.WindowEnd = summary.Window.End.String()
		}
		if err != nil {
			run.Error = err.Error()
		}
		if saveErr := ds.Runs.SaveBatchRun(ctx, run); saveErr != nil {
			log.Printf("[Scheduler] Error saving run record: %v", saveErr)
		}
	}

	if err != nil {
		log.Printf("[Scheduler] Batch pass failed: %v", err)
		return
	}
	log.Printf("[Scheduler] Completed: %s", summary)
}
