package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessMessageEventCounts(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()

	// outside a tracked channel: ignored
	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "general", Content: "soundless up",
	}))
	stats, err := eng.GetAuthorStats(ctx, "42")
	require.NoError(t, err)
	assert.Equal(0, stats.Total)

	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "lfg-chan", Content: "Soundless spotted!",
	}))
	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "lfg-chan", Content: "world boss in 5",
	}))

	stats, err = eng.GetAuthorStats(ctx, "42")
	require.NoError(t, err)
	assert.Equal(2, stats.Total)
	assert.Equal(1, stats.Categories["soundless"])
	assert.Equal(1, stats.Categories["rare_spawns"])
	assert.Equal(0, stats.Categories["raids"])
	assert.Equal("pinger", stats.AuthorName)

	// threshold for soundless is 2 in the fixture; second soundless ping
	// lands exactly on it
	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "lfg-chan", Content: "soundless again",
	}))
	msgs := gw.Messages[eng.PingChannelID]
	require.Len(t, msgs, 1)
	assert.Contains(msgs[0], "pinger")
	assert.Contains(msgs[0], "soundless")

	// crossing past the threshold does not repeat the congratulation
	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "lfg-chan", Content: "soundless once more",
	}))
	assert.Len(gw.Messages[eng.PingChannelID], 1)
}

func TestPublishPingReport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()

	// nothing tracked yet: no report published
	require.NoError(t, eng.PublishPingReport(ctx))
	assert.Len(gw.Messages[eng.PingChannelID], 0)

	require.NoError(t, eng.ProcessMessageEvent(ctx, MessageEvent{
		AuthorID: "42", AuthorName: "pinger", ChannelID: "lfg-chan", Content: "raid forming",
	}))
	require.NoError(t, eng.PublishPingReport(ctx))

	msgs := gw.Messages[eng.PingChannelID]
	require.Len(t, msgs, 1)
	assert.Contains(msgs[0], "Monthly Ping Report")
	assert.Contains(msgs[0], "pinger")
	assert.Contains(msgs[0], "raids: 1")
}
