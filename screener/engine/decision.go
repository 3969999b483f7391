package engine

import (
	"context"
	"fmt"

	"github.com/doorman-bot/doorman/screener/auditlog"
	"github.com/doorman-bot/doorman/screener/registry"
)

// DecisionEvent is a moderator activating one of the notice controls.
type DecisionEvent struct {
	ControlID     string `json:"control_id"`
	SubjectID     string `json:"subject_id"`
	ActorID       string `json:"actor_id"`
	ActorName     string `json:"actor_name"`
	InteractionID string `json:"interaction_id"`
}

type decisionFunc func(eng *Engine, ctx context.Context, evt DecisionEvent, rec *registry.WarningRecord) error

// explicit handler table keyed by control identity
var decisionHandlers = map[string]decisionFunc{
	ControlAffirm:  (*Engine).handleAffirm,
	ControlDismiss: (*Engine).handleDismiss,
}

// ProcessDecisionEvent handles an affirm/dismiss control activation. The
// interaction is acknowledged before any mutation work so the platform
// does not expire it; a repeat activation after the record has closed is
// a no-op that reports "already handled".
func (eng *Engine) ProcessDecisionEvent(ctx context.Context, evt DecisionEvent) error {
	// similar to an HTTP server, we want to recover any panics from handler execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("decision event execution exception", "err", r, "subject", evt.SubjectID, "control", evt.ControlID)
		}
	}()

	handler, ok := decisionHandlers[evt.ControlID]
	if !ok {
		return fmt.Errorf("unknown decision control: %s", evt.ControlID)
	}

	if err := eng.Gateway.AckInteraction(ctx, evt.InteractionID); err != nil {
		eng.Logger.Error("acknowledging interaction", "err", err, "subject", evt.SubjectID)
	}

	rec, open := eng.Registry.Get(ctx, evt.SubjectID)
	if !open {
		decisionCount.WithLabelValues(evt.ControlID, "already-handled").Inc()
		return eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Already handled.")
	}

	return handler(eng, ctx, evt, rec)
}

func (eng *Engine) handleAffirm(ctx context.Context, evt DecisionEvent, rec *registry.WarningRecord) error {
	logger := eng.Logger.With("subject", evt.SubjectID, "actor", evt.ActorID)

	// the ban and the log entry must land before the record closes; if
	// either fails the record stays open for a retry
	if err := eng.Gateway.ApplyBan(ctx, evt.SubjectID, "denylisted profile image"); err != nil {
		decisionCount.WithLabelValues(ControlAffirm, "error").Inc()
		if rerr := eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Ban failed: "+err.Error()); rerr != nil {
			logger.Error("responding to interaction", "err", rerr)
		}
		return fmt.Errorf("applying ban: %w", err)
	}
	if err := eng.Audit.Append(ctx, auditlog.Entry{
		SubjectID:   evt.SubjectID,
		SubjectName: rec.SubjectName,
		Action:      auditlog.ActionBanned,
		ActorID:     evt.ActorID,
		ActorName:   evt.ActorName,
	}); err != nil {
		decisionCount.WithLabelValues(ControlAffirm, "error").Inc()
		if rerr := eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Ban applied but logging failed: "+err.Error()); rerr != nil {
			logger.Error("responding to interaction", "err", rerr)
		}
		return fmt.Errorf("appending ban log: %w", err)
	}

	closed, won := eng.Registry.Close(ctx, evt.SubjectID, registry.ReasonAffirmed)
	if !won {
		// another mutator closed the record while the ban was in flight;
		// same real-world outcome, so discard silently
		decisionCount.WithLabelValues(ControlAffirm, "lost-race").Inc()
		return eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Already handled.")
	}

	eng.finishNotice(ctx, closed, fmt.Sprintf("Banned by %s.", evt.ActorName), "🔨")
	logger.Info("warning affirmed", "notice", closed.NoticeRef)
	decisionCount.WithLabelValues(ControlAffirm, "ok").Inc()
	return eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Banned.")
}

func (eng *Engine) handleDismiss(ctx context.Context, evt DecisionEvent, rec *registry.WarningRecord) error {
	logger := eng.Logger.With("subject", evt.SubjectID, "actor", evt.ActorID)

	if err := eng.Audit.Append(ctx, auditlog.Entry{
		SubjectID:   evt.SubjectID,
		SubjectName: rec.SubjectName,
		Action:      auditlog.ActionFlaggedNegative,
		ActorID:     evt.ActorID,
		ActorName:   evt.ActorName,
	}); err != nil {
		decisionCount.WithLabelValues(ControlDismiss, "error").Inc()
		if rerr := eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Logging failed: "+err.Error()); rerr != nil {
			logger.Error("responding to interaction", "err", rerr)
		}
		return fmt.Errorf("appending ban log: %w", err)
	}

	closed, won := eng.Registry.Close(ctx, evt.SubjectID, registry.ReasonDismissed)
	if !won {
		decisionCount.WithLabelValues(ControlDismiss, "lost-race").Inc()
		return eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Already handled.")
	}

	eng.finishNotice(ctx, closed, fmt.Sprintf("Dismissed by %s.", evt.ActorName), "✅")
	logger.Info("warning dismissed", "notice", closed.NoticeRef)
	decisionCount.WithLabelValues(ControlDismiss, "ok").Inc()
	return eng.Gateway.RespondInteraction(ctx, evt.InteractionID, "Dismissed.")
}

// finishNotice edits the closed record's notice (controls removed,
// resolution appended) and attaches the terminal marker. The notice is a
// best-effort visual artifact: the authoritative outcome already
// happened, so edit failures are logged and never reopen the record.
func (eng *Engine) finishNotice(ctx context.Context, rec *registry.WarningRecord, resolution, marker string) {
	text := fmt.Sprintf("**%s** (`%s`): %s", rec.SubjectName, rec.SubjectID, resolution)
	if err := eng.Gateway.EditNotice(ctx, rec.NoticeRef, text, true); err != nil {
		eng.Logger.Error("editing warning notice", "err", err, "notice", rec.NoticeRef, "subject", rec.SubjectID)
		return
	}
	if marker != "" {
		if err := eng.Gateway.AddMarker(ctx, rec.NoticeRef, marker); err != nil {
			eng.Logger.Error("adding notice marker", "err", err, "notice", rec.NoticeRef)
		}
	}
	noticeEditCount.Inc()
}
