// Join-screening engine for denylisted profile images.
//
// This package (`github.com/doorman-bot/doorman/screener`) contains the screening and reconciliation core: new members are fingerprinted against a denylist of known-bad profile images, a matched join opens a pending warning with an interactive notice, and a moderator decision races two redundant external-removal detectors (an event push and a periodic poll) to close the warning exactly once. Supporting stores track the denylist, the open warnings, and per-author ping counters.
//
// See `cmd/doorman` for a daemon built on this package.
package screener
