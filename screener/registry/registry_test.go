package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMemRegistryBasics(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	reg := NewMemRegistry()

	_, ok := reg.Get(ctx, "subj1")
	assert.False(ok)

	created, err := reg.Open(ctx, WarningRecord{
		SubjectID:   "subj1",
		SubjectName: "alice",
		NoticeRef:   "chan/1",
		OpenedAt:    time.Now(),
	})
	assert.NoError(err)
	assert.True(created)

	// one open record per subject
	created, err = reg.Open(ctx, WarningRecord{SubjectID: "subj1"})
	assert.NoError(err)
	assert.False(created)

	rec, ok := reg.Get(ctx, "subj1")
	assert.True(ok)
	assert.Equal(StatusOpen, rec.Status)
	assert.Equal("alice", rec.SubjectName)
	assert.Len(reg.List(ctx), 1)

	closed, won := reg.Close(ctx, "subj1", ReasonAffirmed)
	assert.True(won)
	assert.Equal(StatusClosed, closed.Status)
	assert.Equal(ReasonAffirmed, closed.CloseReason)

	// registry only holds open records
	_, ok = reg.Get(ctx, "subj1")
	assert.False(ok)
	assert.Len(reg.List(ctx), 0)

	// second close loses
	_, won = reg.Close(ctx, "subj1", ReasonExternalRemoval)
	assert.False(won)
}

func TestMemRegistryCloseRace(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	reg := NewMemRegistry()
	created, err := reg.Open(ctx, WarningRecord{SubjectID: "subj1", OpenedAt: time.Now()})
	assert.NoError(err)
	assert.True(created)

	// Many goroutines race the same Open->Closed transition; exactly one
	// must win. Run with -race.
	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	reasons := []CloseReason{ReasonAffirmed, ReasonDismissed, ReasonExternalRemoval, ReasonExpired}
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(reason CloseReason) {
			defer wg.Done()
			if _, won := reg.Close(ctx, "subj1", reason); won {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(reasons[i%len(reasons)])
	}
	wg.Wait()

	assert.Equal(1, wins)
	_, ok := reg.Get(ctx, "subj1")
	assert.False(ok)
}
