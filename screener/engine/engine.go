package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/doorman-bot/doorman/screener/auditlog"
	"github.com/doorman-bot/doorman/screener/countstore"
	"github.com/doorman-bot/doorman/screener/denylist"
	"github.com/doorman-bot/doorman/screener/gateway"
	"github.com/doorman-bot/doorman/screener/registry"
)

var (
	// DefaultAgeThresholdDays suppresses screening of accounts at least
	// this old; a denylisted fingerprint on a long-lived account is more
	// likely coincidence than a fresh throwaway.
	DefaultAgeThresholdDays int64 = 30
	// DefaultReconcileWindow bounds how long the poll trigger keeps
	// trying to attribute a disappearance before evicting the record.
	DefaultReconcileWindow = 10 * time.Minute
	// HistoryPageSize is how many recent moderation-log entries each
	// removal-detector lookup inspects.
	HistoryPageSize = 10
)

// Fetcher resolves an avatar URL to a fingerprint, or "" when the
// resource cannot be fetched.
type Fetcher interface {
	Fetch(ctx context.Context, url string) string
}

// runtime for screening joins against the denylist, coordinating
// moderator decisions, and reconciling external removals.
//
// TODO: careful when initializing: several fields should not be null or
// zero, even though they are pointer type.
type Engine struct {
	Logger       *slog.Logger
	Gateway      gateway.Gateway
	Denylist     denylist.Store
	Registry     registry.Registry
	Counters     countstore.CountStore
	Audit        auditlog.Logger
	Fingerprints Fetcher

	// channel the interactive warning notices are published to
	WarnChannelID string
	// channel ping threshold congratulations and periodic reports go to
	PingChannelID string
	// channels whose messages count toward ping totals
	PingChannels map[string]bool
	// per-category counts at which a congratulation is published
	PingThresholds map[string]int

	// maximum age of an open warning before the poll trigger evicts it
	ReconcileWindow time.Duration

	screeningOff atomic.Bool
	ageThreshold atomic.Int64

	authorsMu sync.Mutex
	authors   map[string]string
}

// ScreeningEnabled reports whether join screening is active. Screening is
// enabled by default.
func (eng *Engine) ScreeningEnabled() bool {
	return !eng.screeningOff.Load()
}

func (eng *Engine) SetScreeningEnabled(on bool) {
	eng.screeningOff.Store(!on)
	eng.Logger.Info("screening toggled", "enabled", on)
}

// AgeThresholdDays returns the account-age suppression threshold.
func (eng *Engine) AgeThresholdDays() int64 {
	if v := eng.ageThreshold.Load(); v > 0 {
		return v
	}
	return DefaultAgeThresholdDays
}

func (eng *Engine) SetAgeThresholdDays(days int64) {
	eng.ageThreshold.Store(days)
	eng.Logger.Info("age suppression threshold updated", "days", days)
}

func (eng *Engine) reconcileWindow() time.Duration {
	if eng.ReconcileWindow > 0 {
		return eng.ReconcileWindow
	}
	return DefaultReconcileWindow
}

// accountAgeDays returns the whole number of days between the account
// creation time and now, in UTC.
func accountAgeDays(createdAt time.Time) int64 {
	return int64(time.Now().UTC().Sub(createdAt.UTC()).Hours() / 24)
}

func humanizeAge(days int64) string {
	switch {
	case days <= 0:
		return "less than a day"
	case days == 1:
		return "1 day"
	default:
		return fmt.Sprintf("%d days", days)
	}
}
