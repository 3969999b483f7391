package auditlog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryLine(t *testing.T) {
	assert := assert.New(t)

	e := Entry{
		Time:        time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC),
		SubjectID:   "1001",
		SubjectName: "throwaway",
		Action:      ActionBanned,
		ActorID:     "2002",
		ActorName:   "modbob",
	}
	assert.Equal("[2024-03-01T12:30:00Z] subject=1001 (throwaway) action=Banned actor=2002 (modbob)\n", e.Line())
}

func TestFileLoggerAppends(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "banlog.txt")
	l := NewFileLogger(path)

	require.NoError(t, l.Append(ctx, Entry{SubjectID: "1", SubjectName: "a", Action: ActionBanned, ActorID: "9", ActorName: "mod"}))
	require.NoError(t, l.Append(ctx, Entry{SubjectID: "2", SubjectName: "b", Action: ActionFlaggedNegative, ActorID: "9", ActorName: "mod"}))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	assert.Len(lines, 2)
	assert.Contains(lines[0], "action=Banned")
	assert.Contains(lines[1], "action=FlaggedNegative")
}
