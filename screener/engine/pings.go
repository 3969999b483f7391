package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/doorman-bot/doorman/screener/countstore"
)

// MessageEvent is a message posted in a guild channel.
type MessageEvent struct {
	AuthorID   string `json:"author_id"`
	AuthorName string `json:"author_name"`
	ChannelID  string `json:"channel_id"`
	Content    string `json:"content"`
}

// PingCategories maps each tracked category to the content keywords that
// count toward it.
var PingCategories = map[string][]string{
	"soundless":   {"soundless"},
	"rare_spawns": {"rare", "spawn", "world boss"},
	"raids":       {"raid"},
	"dungeons":    {"dungeon"},
}

const pingCounterName = "pings"

// ProcessMessageEvent counts LFG-channel messages into per-author ping
// counters and publishes a congratulation when a category counter lands
// exactly on its configured threshold.
func (eng *Engine) ProcessMessageEvent(ctx context.Context, evt MessageEvent) error {
	if !eng.PingChannels[evt.ChannelID] {
		return nil
	}

	eng.rememberAuthor(evt.AuthorID, evt.AuthorName)

	content := strings.ToLower(evt.Content)
	if err := eng.Counters.Increment(ctx, pingCounterName, evt.AuthorID); err != nil {
		return fmt.Errorf("incrementing ping total: %w", err)
	}
	pingMessageCount.WithLabelValues("total").Inc()

	for category, keywords := range PingCategories {
		matched := false
		for _, kw := range keywords {
			if strings.Contains(content, kw) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		key := evt.AuthorID + "/" + category
		if err := eng.Counters.Increment(ctx, pingCounterName, key); err != nil {
			return fmt.Errorf("incrementing ping category %s: %w", category, err)
		}
		pingMessageCount.WithLabelValues(category).Inc()

		threshold, ok := eng.PingThresholds[category]
		if !ok {
			continue
		}
		count, err := eng.Counters.GetCount(ctx, pingCounterName, key, countstore.PeriodTotal)
		if err != nil {
			return fmt.Errorf("reading ping category %s: %w", category, err)
		}
		if count == threshold {
			msg := fmt.Sprintf("🎉 %s has reached %d %s shares!", evt.AuthorName, threshold, category)
			if err := eng.Gateway.SendMessage(ctx, eng.PingChannelID, msg); err != nil {
				eng.Logger.Error("publishing threshold congratulation", "err", err, "author", evt.AuthorID)
			}
		}
	}
	return nil
}

// AuthorStats is the total plus per-category ping counts for one author.
type AuthorStats struct {
	AuthorID   string         `json:"author_id"`
	AuthorName string         `json:"author_name"`
	Total      int            `json:"total"`
	Categories map[string]int `json:"categories"`
}

// GetAuthorStats reads the author's all-time ping counts.
func (eng *Engine) GetAuthorStats(ctx context.Context, authorID string) (*AuthorStats, error) {
	total, err := eng.Counters.GetCount(ctx, pingCounterName, authorID, countstore.PeriodTotal)
	if err != nil {
		return nil, err
	}
	stats := &AuthorStats{
		AuthorID:   authorID,
		AuthorName: eng.authorName(authorID),
		Total:      total,
		Categories: make(map[string]int, len(PingCategories)),
	}
	for category := range PingCategories {
		c, err := eng.Counters.GetCount(ctx, pingCounterName, authorID+"/"+category, countstore.PeriodTotal)
		if err != nil {
			return nil, err
		}
		stats.Categories[category] = c
	}
	return stats, nil
}

// PublishPingReport posts the per-author ping totals for the current
// month to the ping-log channel.
func (eng *Engine) PublishPingReport(ctx context.Context) error {
	authors := eng.knownAuthors()
	if len(authors) == 0 {
		return nil
	}

	report := "📊 Monthly Ping Report 📊\n\n"
	for _, authorID := range authors {
		total, err := eng.Counters.GetCount(ctx, pingCounterName, authorID, countstore.PeriodMonth)
		if err != nil {
			return fmt.Errorf("reading monthly total for %s: %w", authorID, err)
		}
		if total == 0 {
			continue
		}
		report += fmt.Sprintf("%s:\nTotal pings: %d\n", eng.authorName(authorID), total)
		categories := make([]string, 0, len(PingCategories))
		for category := range PingCategories {
			categories = append(categories, category)
		}
		sort.Strings(categories)
		for _, category := range categories {
			c, err := eng.Counters.GetCount(ctx, pingCounterName, authorID+"/"+category, countstore.PeriodMonth)
			if err != nil {
				return fmt.Errorf("reading monthly %s for %s: %w", category, authorID, err)
			}
			report += fmt.Sprintf("%s: %d\n", category, c)
		}
		report += "\n"
	}
	return eng.Gateway.SendMessage(ctx, eng.PingChannelID, report)
}

// RunPingReporter publishes the ping report on a fixed interval until the
// context is cancelled.
func (eng *Engine) RunPingReporter(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := eng.PublishPingReport(ctx); err != nil {
				eng.Logger.Error("publishing ping report", "err", err)
			}
		}
	}
}

func (eng *Engine) rememberAuthor(id, name string) {
	eng.authorsMu.Lock()
	defer eng.authorsMu.Unlock()
	if eng.authors == nil {
		eng.authors = make(map[string]string)
	}
	eng.authors[id] = name
}

func (eng *Engine) authorName(id string) string {
	eng.authorsMu.Lock()
	defer eng.authorsMu.Unlock()
	if name, ok := eng.authors[id]; ok {
		return name
	}
	return id
}

func (eng *Engine) knownAuthors() []string {
	eng.authorsMu.Lock()
	defer eng.authorsMu.Unlock()
	out := make([]string, 0, len(eng.authors))
	for id := range eng.authors {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
