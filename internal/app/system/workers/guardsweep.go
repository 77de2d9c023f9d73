// internal/app/system/workers/guardsweep.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper drops idle entries. *guard.Registry satisfies it.
type Sweeper interface {
	Sweep() int
}

// GuardSweep is a background worker that drops session guards that have
// not been used for a while, so abandoned browser sessions do not pin their
// snapshots in memory.
type GuardSweep struct {
	target   Sweeper
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewGuardSweep creates a sweeper that runs every interval.
func NewGuardSweep(target Sweeper, logger *zap.Logger, interval time.Duration) *GuardSweep {
	return &GuardSweep{
		target:   target,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *GuardSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("guard sweep worker started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish. It is safe to
// call more than once.
func (w *GuardSweep) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("guard sweep worker stopped")
	})
}

func (w *GuardSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *GuardSweep) sweep() {
	if n := w.target.Sweep(); n > 0 {
		w.log.Info("dropped idle session guards", zap.Int("count", n))
	}
}
