package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/doorman-bot/doorman/screener/gateway"
	"github.com/doorman-bot/doorman/screener/registry"
)

// Control IDs for the interactive notice buttons. The decision handler
// dispatches on these.
const (
	ControlAffirm  = "doorman:affirm"
	ControlDismiss = "doorman:dismiss"
)

// JoinEvent is a new member joining the guild.
type JoinEvent struct {
	SubjectID        string    `json:"subject_id"`
	SubjectName      string    `json:"subject_name"`
	AccountCreatedAt time.Time `json:"account_created_at"`
	AvatarURL        string    `json:"avatar_url"`
}

// ProcessJoinEvent screens a newly-joined member against the denylist and,
// on a match, opens a warning record and publishes an interactive notice.
func (eng *Engine) ProcessJoinEvent(ctx context.Context, evt JoinEvent) error {
	// similar to an HTTP server, we want to recover any panics from handler execution
	defer func() {
		if r := recover(); r != nil {
			eng.Logger.Error("screening event execution exception", "err", r, "subject", evt.SubjectID)
		}
	}()

	if !eng.ScreeningEnabled() {
		return nil
	}

	fp := eng.Fingerprints.Fetch(ctx, evt.AvatarURL)
	if fp == "" {
		// cannot determine the fingerprint; skip rather than alarm
		return nil
	}

	hit, err := eng.Denylist.Contains(ctx, fp)
	if err != nil {
		return fmt.Errorf("denylist lookup: %w", err)
	}
	if !hit {
		return nil
	}

	age := accountAgeDays(evt.AccountCreatedAt)
	if age >= eng.AgeThresholdDays() {
		eng.Logger.Info("denylist match suppressed by account age",
			"subject", evt.SubjectID, "ageDays", age, "fingerprint", fp)
		joinScreenCount.WithLabelValues("suppressed").Inc()
		return nil
	}

	text := fmt.Sprintf("⚠️ **%s** (`%s`) joined with a denylisted profile image.\nAccount age: %s.",
		evt.SubjectName, evt.SubjectID, humanizeAge(age))
	controls := []gateway.Control{
		{ID: ControlAffirm, Label: "Ban"},
		{ID: ControlDismiss, Label: "Dismiss"},
	}
	ref, err := eng.Gateway.PublishNotice(ctx, eng.WarnChannelID, text, controls)
	if err != nil {
		joinScreenCount.WithLabelValues("error").Inc()
		return fmt.Errorf("publishing warning notice: %w", err)
	}

	created, err := eng.Registry.Open(ctx, registry.WarningRecord{
		SubjectID:   evt.SubjectID,
		SubjectName: evt.SubjectName,
		NoticeRef:   ref,
		OpenedAt:    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("opening warning record: %w", err)
	}
	if !created {
		// a second join while a warning is already open; the platform
		// should not deliver this, but don't double-track if it does
		eng.Logger.Warn("warning record already open for subject", "subject", evt.SubjectID)
		return nil
	}

	eng.Logger.Info("opened warning record",
		"subject", evt.SubjectID, "fingerprint", fp, "ageDays", age, "notice", ref)
	joinScreenCount.WithLabelValues("warned").Inc()
	return nil
}
