package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/doorman-bot/doorman/screener/gateway"
	"github.com/doorman-bot/doorman/screener/registry"
)

// RemovalEvent is a push notification that a subject left or was removed.
type RemovalEvent struct {
	SubjectID string `json:"subject_id"`
}

// ProcessRemovalEvent is the push-driven removal trigger: when a subject
// under an open warning disappears, attribute the disappearance via the
// moderation history log and close the record on behalf of the absent
// decision-maker.
func (eng *Engine) ProcessRemovalEvent(ctx context.Context, evt RemovalEvent) error {
	// similar to an HTTP server, we want to recover any panics from handler execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("removal event execution exception", "err", r, "subject", evt.SubjectID)
		}
	}()

	if _, open := eng.Registry.Get(ctx, evt.SubjectID); !open {
		return nil
	}

	actor, err := eng.findRecentBan(ctx, evt.SubjectID)
	if err != nil {
		return fmt.Errorf("inspecting history log: %w", err)
	}
	eng.closeExternally(ctx, evt.SubjectID, actor)
	return nil
}

// SweepPendingWarnings is the poll-driven removal trigger. It runs over
// all open records: entries older than the reconciliation window are
// evicted as expired (no edit, no ban action); for the rest the subject's
// membership is re-fetched, and subjects that are gone get the same
// history-log attribution as the push trigger.
//
// A failure on one subject never blocks the rest of the sweep.
func (eng *Engine) SweepPendingWarnings(ctx context.Context) {
	for _, rec := range eng.Registry.List(ctx) {
		logger := eng.Logger.With("subject", rec.SubjectID)

		if time.Since(rec.OpenedAt) > eng.reconcileWindow() {
			if closed, won := eng.Registry.Close(ctx, rec.SubjectID, registry.ReasonExpired); won {
				logger.Info("warning record expired", "notice", closed.NoticeRef, "openedAt", closed.OpenedAt)
				reconcileCount.WithLabelValues("expired").Inc()
			}
			continue
		}

		_, err := eng.Gateway.FetchMember(ctx, rec.SubjectID)
		if err == nil {
			// subject still present, nothing to reconcile
			continue
		}
		if !errors.Is(err, gateway.ErrNotFound) {
			logger.Warn("re-fetching member during sweep", "err", err)
			continue
		}

		actor, err := eng.findRecentBan(ctx, rec.SubjectID)
		if err != nil {
			logger.Warn("inspecting history log during sweep", "err", err)
			continue
		}
		eng.closeExternally(ctx, rec.SubjectID, actor)
	}
}

// RunSweeper drives SweepPendingWarnings on a fixed interval until the
// context is cancelled.
func (eng *Engine) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			eng.SweepPendingWarnings(ctx)
		}
	}
}

// findRecentBan scans the most recent page of the moderation history log
// for a ban of the subject and returns the acting moderator's name, or ""
// if no matching entry is present (the subject left on their own, or the
// ban is not visible yet).
func (eng *Engine) findRecentBan(ctx context.Context, subjectID string) (string, error) {
	actions, err := eng.Gateway.RecentBanActions(ctx, HistoryPageSize)
	if err != nil {
		return "", err
	}
	for _, a := range actions {
		if a.TargetID == subjectID {
			return a.ActorName, nil
		}
	}
	return "", nil
}

// closeExternally is the reconciler: the single mutation point both
// removal triggers (and, by racing on the same registry transition, the
// decision handler) funnel through. The registry's compare-and-swap is
// re-checked here as the last step before commit, not merely at entry,
// because each trigger suspends on I/O between observing the record open
// and attempting to close it. Whoever wins the Open->Closed transition
// performs the single notice edit; every other caller is a silent no-op.
func (eng *Engine) closeExternally(ctx context.Context, subjectID, actorName string) {
	rec, open := eng.Registry.Get(ctx, subjectID)
	if !open {
		return
	}
	if time.Since(rec.OpenedAt) > eng.reconcileWindow() {
		// stale record: evict without editing the notice
		if _, won := eng.Registry.Close(ctx, subjectID, registry.ReasonExpired); won {
			reconcileCount.WithLabelValues("expired").Inc()
		}
		return
	}

	closed, won := eng.Registry.Close(ctx, subjectID, registry.ReasonExternalRemoval)
	if !won {
		// the decision handler (or the other trigger) got there first
		reconcileCount.WithLabelValues("lost-race").Inc()
		return
	}

	resolution := "Left or was removed before a decision."
	if actorName != "" {
		resolution = fmt.Sprintf("Removed by %s.", actorName)
	}
	eng.finishNotice(ctx, closed, resolution, "")
	eng.Logger.Info("warning closed externally",
		"subject", subjectID, "actor", actorName, "notice", closed.NoticeRef)
	reconcileCount.WithLabelValues("external").Inc()
}
