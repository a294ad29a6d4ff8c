package model

import (
	"encoding/json"
	"testing"
	"time"

	"homeschool_lms_backend/internal/catalog"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProgressState(t *testing.T) {
	cat := catalog.Default()
	state := DefaultProgressState(cat)

	assert.Len(t, state.Lessons, 7)
	assert.Len(t, state.Goals, 3)
	assert.Empty(t, state.History)
	assert.Empty(t, state.Schedule)

	record := state.Lessons["math1"]
	require.NotNil(t, record)
	assert.False(t, record.Completed)
	assert.Zero(t, record.Attempts)
	assert.Nil(t, record.BestScore)
}

func TestMergeProgressStateGarbageInput(t *testing.T) {
	cat := catalog.Default()

	for _, raw := range []string{"", "not json", "[1,2,3]", "null"} {
		state := MergeProgressState([]byte(raw), cat, 0)
		require.NotNil(t, state, "input %q", raw)
		assert.Len(t, state.Lessons, 7, "input %q", raw)
	}
}

func TestMergeProgressStateDropsUnknownLessons(t *testing.T) {
	cat := catalog.Default()
	raw := []byte(`{
		"lessons": {"math1": {"completed": true}, "ghost": {"completed": true}},
		"history": [
			{"lessonId": "math1", "score": 80, "completedAt": "2026-01-02T10:00:00Z"},
			{"lessonId": "ghost", "score": 10, "completedAt": "2026-01-02T10:00:00Z"}
		],
		"schedule": [
			{"id": "s1", "lessonId": "ghost", "day": "monday", "time": "09:00"},
			{"id": "s2", "lessonId": "english1", "day": "tuesday", "time": "10:00"}
		],
		"goals": {"math": {"targetPercent": 85}, "history": {"targetPercent": 50}}
	}`)

	state := MergeProgressState(raw, cat, 0)

	assert.True(t, state.Lessons["math1"].Completed)
	_, hasGhost := state.Lessons["ghost"]
	assert.False(t, hasGhost)

	require.Len(t, state.History, 1)
	assert.Equal(t, "math1", state.History[0].LessonID)

	require.Len(t, state.Schedule, 1)
	assert.Equal(t, "english1", state.Schedule[0].LessonID)

	require.NotNil(t, state.Goals["math"].TargetPercent)
	assert.Equal(t, 85.0, *state.Goals["math"].TargetPercent)
	_, hasHistoryGoal := state.Goals["history"]
	assert.False(t, hasHistoryGoal)
}

func TestMergeProgressStateLegacyBooleanLessons(t *testing.T) {
	cat := catalog.Default()
	raw := []byte(`{"lessons": {"math1": true, "math2": 1, "math3": "", "english1": false}}`)

	state := MergeProgressState(raw, cat, 0)

	assert.True(t, state.Lessons["math1"].Completed)
	assert.True(t, state.Lessons["math2"].Completed)
	assert.False(t, state.Lessons["math3"].Completed)
	assert.False(t, state.Lessons["english1"].Completed)
}

func TestMergeProgressStateScoreCoercion(t *testing.T) {
	cat := catalog.Default()
	raw := []byte(`{"lessons": {
		"math1": {"bestScore": "92.5", "lastScore": "oops", "attempts": "3", "totalTimeMs": 4500},
		"math2": {"bestScore": 70, "attempts": 2}
	}}`)

	state := MergeProgressState(raw, cat, 0)

	record := state.Lessons["math1"]
	require.NotNil(t, record.BestScore)
	assert.Equal(t, 92.5, *record.BestScore)
	assert.Nil(t, record.LastScore)
	// attempts 只接受数字字面量，不做字符串强转
	assert.Zero(t, record.Attempts)
	assert.Equal(t, int64(4500), record.TotalTimeMs)

	record2 := state.Lessons["math2"]
	require.NotNil(t, record2.BestScore)
	assert.Equal(t, 70.0, *record2.BestScore)
	assert.Equal(t, 2, record2.Attempts)
}

func TestMergeProgressStateScheduleDefaults(t *testing.T) {
	cat := catalog.Default()
	raw := []byte(`{"schedule": [{"lessonId": "math1"}]}`)

	state := MergeProgressState(raw, cat, 0)

	require.Len(t, state.Schedule, 1)
	item := state.Schedule[0]
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "monday", item.Day)
	assert.Equal(t, "09:00", item.Time)
	assert.Empty(t, item.Notes)
}

func TestMergeProgressStateHistoryCap(t *testing.T) {
	cat := catalog.Default()

	entries := make([]HistoryEntry, 0, 30)
	for i := 0; i < 30; i++ {
		entries = append(entries, HistoryEntry{LessonID: "math1"})
	}
	raw, err := json.Marshal(map[string]any{"history": entries})
	require.NoError(t, err)

	state := MergeProgressState(raw, cat, 0)
	assert.Len(t, state.History, HistoryLimit)

	custom := MergeProgressState(raw, cat, 10)
	assert.Len(t, custom.History, 10)
}

func TestMergeProgressStateRoundTrip(t *testing.T) {
	cat := catalog.Default()
	state := DefaultProgressState(cat)

	score := 88.0
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	state.Lessons["math1"].Completed = true
	state.Lessons["math1"].Attempts = 2
	state.Lessons["math1"].BestScore = &score
	state.Lessons["math1"].LastCompletedAt = &now
	state.History = append(state.History, HistoryEntry{LessonID: "math1", Score: &score, CompletedAt: &now})

	raw, err := json.Marshal(state)
	require.NoError(t, err)

	restored := MergeProgressState(raw, cat, 0)
	assert.True(t, restored.Lessons["math1"].Completed)
	assert.Equal(t, 2, restored.Lessons["math1"].Attempts)
	require.NotNil(t, restored.Lessons["math1"].BestScore)
	assert.Equal(t, score, *restored.Lessons["math1"].BestScore)
	require.Len(t, restored.History, 1)
	require.NotNil(t, restored.History[0].CompletedAt)
	assert.True(t, restored.History[0].CompletedAt.Equal(now))
}

func TestLessonRecordClone(t *testing.T) {
	score := 50.0
	record := &LessonRecord{Completed: true, BestScore: &score}

	clone := record.Clone()
	*clone.BestScore = 99.0

	assert.Equal(t, 50.0, *record.BestScore)

	var nilRecord *LessonRecord
	assert.Nil(t, nilRecord.Clone())
}

func TestSubjectGoalCloneNil(t *testing.T) {
	var goal *SubjectGoal
	clone := goal.Clone()
	require.NotNil(t, clone)
	assert.Nil(t, clone.TargetPercent)
	assert.Empty(t, clone.Notes)
}
