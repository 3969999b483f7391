package gateway

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound indicates the requested member (or notice) does not exist on
// the platform. Callers in the removal detector treat this as normal
// control flow, not a failure.
var ErrNotFound = errors.New("gateway: not found")

// NoticeRef is an opaque handle to a published interactive notice, used to
// edit the notice later. The concrete format is transport-specific
// (eg, "channelID/messageID" for Discord-style gateways).
type NoticeRef string

// Control is an interactive button attached to a notice.
type Control struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Member is the subset of platform member state the screener needs.
type Member struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	AvatarURL string    `json:"avatar_url"`
}

// BanAction is one entry from the platform's moderation history log,
// returned in reverse-chronological order.
type BanAction struct {
	TargetID  string    `json:"target_id"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// Gateway is the messaging/transport collaborator. Implementations wrap a
// concrete chat platform client; the screening core only ever talks to
// this interface.
type Gateway interface {
	// PublishNotice posts an interactive notice and returns a reference
	// for later edits.
	PublishNotice(ctx context.Context, channelID, text string, controls []Control) (NoticeRef, error)

	// EditNotice replaces the notice text and, when removeControls is
	// set, strips the interactive controls.
	EditNotice(ctx context.Context, ref NoticeRef, text string, removeControls bool) error

	// AddMarker attaches a terminal visual marker (reaction) to a notice.
	AddMarker(ctx context.Context, ref NoticeRef, marker string) error

	// AckInteraction acknowledges a control activation immediately, so
	// the platform does not expire the interaction while slower mutation
	// work runs.
	AckInteraction(ctx context.Context, interactionID string) error

	// RespondInteraction delivers a followup response to the actor who
	// activated a control.
	RespondInteraction(ctx context.Context, interactionID, text string) error

	// ApplyBan bans the subject from the guild.
	ApplyBan(ctx context.Context, subjectID, reason string) error

	// FetchMember returns current membership state for the subject, or
	// ErrNotFound if the subject is no longer a member.
	FetchMember(ctx context.Context, subjectID string) (*Member, error)

	// RecentBanActions returns up to limit entries from the moderation
	// history log, most recent first.
	RecentBanActions(ctx context.Context, limit int) ([]BanAction, error)

	// SendMessage posts a plain message to a channel.
	SendMessage(ctx context.Context, channelID, text string) error
}
