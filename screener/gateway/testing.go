package gateway

import (
	"context"
	"fmt"
	"sync"
)

// MockGateway is an in-memory Gateway that records every call. Intentionally
// exported, for use in tests in other packages.
//
// Failure injection: set one of the Fail* fields to force the corresponding
// method to return an error.
type MockGateway struct {
	mu sync.Mutex

	Members map[string]*Member
	History []BanAction

	Notices       map[NoticeRef]MockNotice
	Bans          []string
	Acks          []string
	Responses     map[string][]string
	Messages      map[string][]string
	EditCount     map[NoticeRef]int
	MarkerCount   map[NoticeRef][]string
	noticeCounter int

	FailPublish bool
	FailBan     bool
	FailEdit    bool
}

type MockNotice struct {
	ChannelID   string
	Text        string
	Controls    []Control
	HasControls bool
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Members:     make(map[string]*Member),
		Notices:     make(map[NoticeRef]MockNotice),
		Responses:   make(map[string][]string),
		Messages:    make(map[string][]string),
		EditCount:   make(map[NoticeRef]int),
		MarkerCount: make(map[NoticeRef][]string),
	}
}

func (g *MockGateway) PublishNotice(ctx context.Context, channelID, text string, controls []Control) (NoticeRef, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailPublish {
		return "", fmt.Errorf("mock gateway: publish failed")
	}
	g.noticeCounter++
	ref := NoticeRef(fmt.Sprintf("%s/%d", channelID, g.noticeCounter))
	g.Notices[ref] = MockNotice{
		ChannelID:   channelID,
		Text:        text,
		Controls:    controls,
		HasControls: len(controls) > 0,
	}
	return ref, nil
}

func (g *MockGateway) EditNotice(ctx context.Context, ref NoticeRef, text string, removeControls bool) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailEdit {
		return fmt.Errorf("mock gateway: edit failed")
	}
	n, ok := g.Notices[ref]
	if !ok {
		return ErrNotFound
	}
	n.Text = text
	if removeControls {
		n.Controls = nil
		n.HasControls = false
	}
	g.Notices[ref] = n
	g.EditCount[ref]++
	return nil
}

func (g *MockGateway) AddMarker(ctx context.Context, ref NoticeRef, marker string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.Notices[ref]; !ok {
		return ErrNotFound
	}
	g.MarkerCount[ref] = append(g.MarkerCount[ref], marker)
	return nil
}

func (g *MockGateway) AckInteraction(ctx context.Context, interactionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Acks = append(g.Acks, interactionID)
	return nil
}

func (g *MockGateway) RespondInteraction(ctx context.Context, interactionID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Responses[interactionID] = append(g.Responses[interactionID], text)
	return nil
}

func (g *MockGateway) ApplyBan(ctx context.Context, subjectID, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.FailBan {
		return fmt.Errorf("mock gateway: ban failed")
	}
	g.Bans = append(g.Bans, subjectID)
	delete(g.Members, subjectID)
	return nil
}

func (g *MockGateway) FetchMember(ctx context.Context, subjectID string) (*Member, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	m, ok := g.Members[subjectID]
	if !ok {
		return nil, ErrNotFound
	}
	out := *m
	return &out, nil
}

func (g *MockGateway) RecentBanActions(ctx context.Context, limit int) ([]BanAction, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit > len(g.History) {
		limit = len(g.History)
	}
	out := make([]BanAction, limit)
	copy(out, g.History[:limit])
	return out, nil
}

func (g *MockGateway) SendMessage(ctx context.Context, channelID, text string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Messages[channelID] = append(g.Messages[channelID], text)
	return nil
}

// NoticeEdits returns how many times a notice has been edited.
func (g *MockGateway) NoticeEdits(ref NoticeRef) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.EditCount[ref]
}

var _ Gateway = (*MockGateway)(nil)
