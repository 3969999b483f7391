package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freshAccount(daysOld int64) time.Time {
	return time.Now().UTC().Add(-time.Duration(daysOld) * 24 * time.Hour)
}

func TestProcessJoinEventMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()

	err := eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "1001",
		SubjectName:      "throwaway",
		AccountCreatedAt: freshAccount(2),
		AvatarURL:        "https://cdn.example.com/bad.png",
	})
	require.NoError(t, err)

	rec, open := eng.Registry.Get(ctx, "1001")
	require.True(t, open)
	assert.Equal("throwaway", rec.SubjectName)
	assert.NotEmpty(rec.NoticeRef)

	notice := gw.Notices[rec.NoticeRef]
	assert.Contains(notice.Text, "throwaway")
	assert.Contains(notice.Text, "2 days")
	assert.True(notice.HasControls)
	assert.Len(notice.Controls, 2)
}

func TestProcessJoinEventNoMatch(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()

	// clean fingerprint
	err := eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "1002",
		AccountCreatedAt: freshAccount(2),
		AvatarURL:        "https://cdn.example.com/clean.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 0)

	// fetch failure yields empty fingerprint: skip, never alarm
	err = eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "1003",
		AccountCreatedAt: freshAccount(2),
		AvatarURL:        "https://cdn.example.com/unreachable.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 0)
	assert.Len(eng.Registry.List(ctx), 0)
}

func TestProcessJoinEventAgeSuppression(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()
	eng.SetAgeThresholdDays(30)

	// exactly at the threshold: suppressed (boundary inclusive)
	err := eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "2001",
		AccountCreatedAt: freshAccount(30),
		AvatarURL:        "https://cdn.example.com/bad.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 0)

	// one day below the threshold: screened
	err = eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "2002",
		SubjectName:      "newer",
		AccountCreatedAt: freshAccount(29),
		AvatarURL:        "https://cdn.example.com/bad.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 1)
	_, open := eng.Registry.Get(ctx, "2002")
	assert.True(open)
}

func TestProcessJoinEventDisabled(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	eng, gw := EngineTestFixture()
	eng.SetScreeningEnabled(false)

	err := eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "3001",
		AccountCreatedAt: freshAccount(2),
		AvatarURL:        "https://cdn.example.com/bad.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 0)

	eng.SetScreeningEnabled(true)
	err = eng.ProcessJoinEvent(ctx, JoinEvent{
		SubjectID:        "3001",
		AccountCreatedAt: freshAccount(2),
		AvatarURL:        "https://cdn.example.com/bad.png",
	})
	require.NoError(t, err)
	assert.Len(gw.Notices, 1)
}
