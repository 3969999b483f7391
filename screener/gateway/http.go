package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/carlmjohnson/versioninfo"
	"github.com/hashicorp/go-retryablehttp"
)

// HTTPGateway talks to a platform bridge over JSON HTTP. The bridge is
// the process that actually speaks the chat platform's protocol; doorman
// only needs this narrow surface of it.
type HTTPGateway struct {
	Client *http.Client
	Host   string
	Token  string
	Logger *slog.Logger
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

func NewHTTPGateway(host, token string, logger *slog.Logger) *HTTPGateway {
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
	return &HTTPGateway{
		Client: client,
		Host:   host,
		Token:  token,
		Logger: logger,
	}
}

func (g *HTTPGateway) do(ctx context.Context, method, path string, body, out any) error {
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.Host+path, buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "doorman/"+versioninfo.Short())
	if g.Token != "" {
		req.Header.Set("Authorization", "Bearer "+g.Token)
	}

	resp, err := g.Client.Do(req)
	if err != nil {
		return fmt.Errorf("bridge request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge request failed statusCode=%d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading bridge response: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parsing bridge response: %w", err)
	}
	return nil
}

type publishNoticeRequest struct {
	ChannelID string    `json:"channel_id"`
	Text      string    `json:"text"`
	Controls  []Control `json:"controls,omitempty"`
}

type publishNoticeResponse struct {
	Ref NoticeRef `json:"ref"`
}

func (g *HTTPGateway) PublishNotice(ctx context.Context, channelID, text string, controls []Control) (NoticeRef, error) {
	var resp publishNoticeResponse
	err := g.do(ctx, http.MethodPost, "/notices", publishNoticeRequest{
		ChannelID: channelID,
		Text:      text,
		Controls:  controls,
	}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Ref, nil
}

type editNoticeRequest struct {
	Ref            NoticeRef `json:"ref"`
	Text           string    `json:"text"`
	RemoveControls bool      `json:"remove_controls"`
}

func (g *HTTPGateway) EditNotice(ctx context.Context, ref NoticeRef, text string, removeControls bool) error {
	return g.do(ctx, http.MethodPost, "/notices/edit", editNoticeRequest{
		Ref:            ref,
		Text:           text,
		RemoveControls: removeControls,
	}, nil)
}

type addMarkerRequest struct {
	Ref    NoticeRef `json:"ref"`
	Marker string    `json:"marker"`
}

func (g *HTTPGateway) AddMarker(ctx context.Context, ref NoticeRef, marker string) error {
	return g.do(ctx, http.MethodPost, "/notices/marker", addMarkerRequest{Ref: ref, Marker: marker}, nil)
}

type interactionRequest struct {
	InteractionID string `json:"interaction_id"`
	Text          string `json:"text,omitempty"`
}

func (g *HTTPGateway) AckInteraction(ctx context.Context, interactionID string) error {
	return g.do(ctx, http.MethodPost, "/interactions/ack", interactionRequest{InteractionID: interactionID}, nil)
}

func (g *HTTPGateway) RespondInteraction(ctx context.Context, interactionID, text string) error {
	return g.do(ctx, http.MethodPost, "/interactions/respond", interactionRequest{
		InteractionID: interactionID,
		Text:          text,
	}, nil)
}

type applyBanRequest struct {
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
}

func (g *HTTPGateway) ApplyBan(ctx context.Context, subjectID, reason string) error {
	return g.do(ctx, http.MethodPost, "/bans", applyBanRequest{SubjectID: subjectID, Reason: reason}, nil)
}

func (g *HTTPGateway) FetchMember(ctx context.Context, subjectID string) (*Member, error) {
	var m Member
	if err := g.do(ctx, http.MethodGet, "/members/"+subjectID, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (g *HTTPGateway) RecentBanActions(ctx context.Context, limit int) ([]BanAction, error) {
	var out []BanAction
	path := fmt.Sprintf("/bans/recent?limit=%d", limit)
	if err := g.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type sendMessageRequest struct {
	ChannelID string `json:"channel_id"`
	Text      string `json:"text"`
}

func (g *HTTPGateway) SendMessage(ctx context.Context, channelID, text string) error {
	return g.do(ctx, http.MethodPost, "/messages", sendMessageRequest{ChannelID: channelID, Text: text}, nil)
}

var _ Gateway = (*HTTPGateway)(nil)
