package workflow

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often the reconciler runs when no interval is set.
const DefaultInterval = 24 * time.Hour

// Reconciler runs expiry reconciliation on a fixed schedule. It is owned by
// the process composition root: Start once at startup, Stop on shutdown.
// Failed passes are logged and retried on the next tick, never fatal.
type Reconciler struct {
	Service  *Service
	Interval time.Duration

	stop chan struct{}
	done chan struct{}
}

// Start launches the background loop. Calling Start on a running reconciler
// is a no-op.
func (r *Reconciler) Start() {
	if r.stop != nil {
		return
	}

	interval := r.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}

	r.stop = make(chan struct{})
	r.done = make(chan struct{})
	go r.run(interval)

	slog.Info("expiry reconciler started", "interval", interval, "retention", r.Service.retention())
}

// Stop terminates the background loop and waits for it to exit. A pass in
// flight is not interrupted mid-step; both reconciliation steps are
// idempotent, so stopping between them is safe regardless.
func (r *Reconciler) Stop() {
	if r.stop == nil {
		return
	}
	close(r.stop)
	<-r.done
	r.stop = nil
	slog.Info("expiry reconciler stopped")
}

func (r *Reconciler) run(interval time.Duration) {
	defer close(r.done)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			res, err := r.Service.Reconcile(context.Background())
			if err != nil {
				slog.Error("expiry reconciliation failed", "error", err)
				continue
			}
			slog.Info("expiry reconciliation finished",
				"claims_deleted", res.ClaimsDeleted, "items_updated", res.ItemsUpdated)
		case <-r.stop:
			return
		}
	}
}
