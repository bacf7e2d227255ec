// Package reconcile runs the scheduled counter repair job. It recomputes
// reply counts and poll vote totals from the stored data and rewrites the
// files only when drift is found.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/adhocore/gronx"

	"anonymchat/pkg/config"
	"anonymchat/pkg/logger"
	"anonymchat/pkg/store"
)

// defaultCron maps an empty expression to a nightly run at 03:00.
const defaultCron = "0 3 * * *"

// RunOnce performs a single reconciliation pass over messages and polls.
func RunOnce() error {
	repaired, orphans, err := store.ReconcileMessages()
	if err != nil {
		return fmt.Errorf("reconcile messages: %w", err)
	}
	pollsRepaired, err := store.ReconcilePolls()
	if err != nil {
		return fmt.Errorf("reconcile polls: %w", err)
	}
	if repaired > 0 || orphans > 0 || pollsRepaired > 0 {
		logger.AuditEvent("reconcile_drift_repaired",
			"messages_repaired", repaired,
			"orphans_dropped", orphans,
			"polls_repaired", pollsRepaired)
	} else {
		logger.Debug("reconcile_clean")
	}
	return nil
}

// Start launches the scheduler when enabled in config. It returns a cancel
// func; when disabled the cancel is a no-op.
func Start(ctx context.Context, cfg *config.Config) (context.CancelFunc, error) {
	if !cfg.Reconcile.Enabled {
		logger.Info("reconcile_disabled")
		return func() {}, nil
	}

	cronExpr := cfg.Reconcile.Cron
	if cronExpr == "" {
		cronExpr = defaultCron
	}
	if !gronx.IsValid(cronExpr) {
		logger.Error("reconcile_invalid_cron", "cron", cronExpr)
		return nil, fmt.Errorf("invalid reconcile cron expression: %s", cronExpr)
	}

	ctx2, cancel := context.WithCancel(ctx)
	go runScheduler(ctx2, cronExpr)
	logger.Info("reconcile_scheduler_started", "cron", cronExpr)
	return cancel, nil
}

// runScheduler sleeps until the next cron tick and runs a pass. gronx gives
// the next future tick, so full cron syntax works.
func runScheduler(ctx context.Context, cronExpr string) {
	for {
		select {
		case <-ctx.Done():
			logger.Info("reconcile_scheduler_stopping")
			return
		default:
		}

		now := time.Now().UTC()
		next, err := gronx.NextTickAfter(cronExpr, now, false)
		if err != nil {
			logger.Error("reconcile_nexttick_failed", "cron", cronExpr, "error", err.Error())
			select {
			case <-time.After(30 * time.Second):
			case <-ctx.Done():
				return
			}
			continue
		}

		select {
		case <-time.After(time.Until(next)):
		case <-ctx.Done():
			logger.Info("reconcile_scheduler_stopping")
			return
		}

		if err := RunOnce(); err != nil {
			logger.Error("reconcile_run_error", "error", err.Error())
		}
	}
}
