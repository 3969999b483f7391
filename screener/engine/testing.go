package engine

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/doorman-bot/doorman/screener/auditlog"
	"github.com/doorman-bot/doorman/screener/countstore"
	"github.com/doorman-bot/doorman/screener/denylist"
	"github.com/doorman-bot/doorman/screener/gateway"
	"github.com/doorman-bot/doorman/screener/registry"
)

// StubFetcher maps avatar URLs directly to fingerprints, skipping HTTP.
// Unknown URLs return "", matching the soft-fail policy of the real
// fetcher.
type StubFetcher struct {
	Fingerprints map[string]string
}

func (f *StubFetcher) Fetch(ctx context.Context, url string) string {
	return f.Fingerprints[url]
}

// MemAuditLogger collects entries in memory, for tests.
type MemAuditLogger struct {
	mu      sync.Mutex
	Entries []auditlog.Entry
}

func (l *MemAuditLogger) Append(ctx context.Context, e auditlog.Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Entries = append(l.Entries, e)
	return nil
}

// Lines returns the rendered log lines appended so far.
func (l *MemAuditLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.Entries))
	for _, e := range l.Entries {
		out = append(out, e.Line())
	}
	return out
}

// EngineTestFixture returns an engine wired to in-memory stores and a
// mock gateway, with one denylisted fingerprint registered under
// "https://cdn.example.com/bad.png". Intentionally exported, for use in
// other packages.
func EngineTestFixture() (*Engine, *gateway.MockGateway) {
	dl := denylist.NewMemStore()
	if _, err := dl.Add(context.Background(), "d41d8cd98f00b204e9800998ecf8427e"); err != nil {
		panic(err)
	}
	gw := gateway.NewMockGateway()
	eng := &Engine{
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		Gateway:  gw,
		Denylist: dl,
		Registry: registry.NewMemRegistry(),
		Counters: countstore.NewMemCountStore(),
		Audit:    &MemAuditLogger{},
		Fingerprints: &StubFetcher{
			Fingerprints: map[string]string{
				"https://cdn.example.com/bad.png":   "d41d8cd98f00b204e9800998ecf8427e",
				"https://cdn.example.com/clean.png": "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
			},
		},
		WarnChannelID:   "warn-chan",
		PingChannelID:   "ping-chan",
		PingChannels:    map[string]bool{"lfg-chan": true},
		PingThresholds:  map[string]int{"soundless": 2},
		ReconcileWindow: DefaultReconcileWindow,
	}
	return eng, gw
}
