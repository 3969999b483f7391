package fingerprint

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/go-retryablehttp"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Fetcher downloads an image resource and computes its fingerprint.
//
// Failure policy is deliberately soft: an absent URL, a network failure,
// or a non-success response all yield an empty fingerprint, never an
// error. A transient fetch problem must never block membership or raise a
// false moderation alarm; callers treat "" as "cannot determine, skip
// screening for this subject".
type Fetcher struct {
	Client *http.Client
	Logger *slog.Logger

	cache *lru.Cache[string, string]
}

type leveledSlog struct {
	inner *slog.Logger
}

// re-writes HTTP client ERROR to WARN level (because of retries)
func (l leveledSlog) Error(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Warn(msg string, keysAndValues ...interface{}) {
	l.inner.Warn(msg, keysAndValues...)
}

func (l leveledSlog) Info(msg string, keysAndValues ...interface{}) {
	l.inner.Info(msg, keysAndValues...)
}

func (l leveledSlog) Debug(msg string, keysAndValues ...interface{}) {
	l.inner.Debug(msg, keysAndValues...)
}

// NewFetcher returns a Fetcher with retrying HTTP client defaults: retry
// on connection errors and 5xx, short backoff, overall request timeout.
// Fetched fingerprints are cached by URL so a re-screen of the same avatar
// does not refetch the bytes.
func NewFetcher(logger *slog.Logger, cacheSize int) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = 3
	retryClient.RetryWaitMin = 1 * time.Second
	retryClient.RetryWaitMax = 10 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledSlog{logger})
	client := retryClient.StandardClient()
	client.Timeout = 20 * time.Second

	cache, _ := lru.New[string, string](cacheSize)
	return &Fetcher{
		Client: client,
		Logger: logger,
		cache:  cache,
	}
}

// Fetch downloads the resource at url and returns its fingerprint, or ""
// if the resource could not be fetched.
func (f *Fetcher) Fetch(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}
	if fp, ok := f.cache.Get(url); ok {
		return fp
	}

	start := time.Now()
	defer func() {
		fetchDuration.Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.Logger.Warn("building avatar fetch request", "err", err, "url", url)
		return ""
	}
	req.Header.Set("User-Agent", "doorman/"+versioninfo.Short())

	resp, err := f.Client.Do(req)
	if err != nil {
		fetchCount.WithLabelValues("error").Inc()
		f.Logger.Warn("avatar fetch failed", "err", err, "url", url)
		return ""
	}
	defer resp.Body.Close()

	fetchCount.WithLabelValues(fmt.Sprint(resp.StatusCode)).Inc()
	if resp.StatusCode != 200 {
		f.Logger.Warn("avatar fetch non-success", "status", resp.StatusCode, "url", url)
		return ""
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		f.Logger.Warn("reading avatar bytes", "err", err, "url", url)
		return ""
	}

	fp := Compute(b)
	f.cache.Add(url, fp)
	return fp
}
