package service

import (
	"testing"
	"time"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scenarioState 两节数学课已完成（80/95 分），其余未动
func scenarioState(t *testing.T) *model.ProgressState {
	t.Helper()
	state := model.DefaultProgressState(catalog.Default())

	complete := func(lessonID string, score float64, at time.Time) {
		record := state.Lessons[lessonID]
		record.Completed = true
		record.Attempts = 1
		record.BestScore = &score
		record.LastScore = &score
		record.LastCompletedAt = &at
		state.History = append([]model.HistoryEntry{{
			LessonID:    lessonID,
			Score:       &score,
			CompletedAt: &at,
		}}, state.History...)
	}
	complete("math1", 80, time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC))
	complete("math2", 95, time.Date(2026, 1, 3, 10, 0, 0, 0, time.UTC))
	return state
}

func TestSubjectProgress(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)

	assert.Equal(t, Completion{Completed: 2, Total: 3, Percent: 67}, svc.SubjectProgress(state, "math", ""))
	assert.Equal(t, Completion{Completed: 0, Total: 2, Percent: 0}, svc.SubjectProgress(state, "english", ""))
	assert.Equal(t, Completion{}, svc.SubjectProgress(state, "history", ""))
}

func TestCategoryProgress(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)

	assert.Equal(t, Completion{Completed: 2, Total: 2, Percent: 100}, svc.CategoryProgress(state, "math", "counting", ""))
	assert.Equal(t, Completion{Completed: 0, Total: 1, Percent: 0}, svc.CategoryProgress(state, "math", "operations", ""))
}

func TestOverallProgress(t *testing.T) {
	svc := NewDerivationService(catalog.Default())

	assert.Equal(t, Completion{Completed: 0, Total: 7, Percent: 0},
		svc.OverallProgress(model.DefaultProgressState(catalog.Default())))
	assert.Equal(t, Completion{Completed: 2, Total: 7, Percent: 29},
		svc.OverallProgress(scenarioState(t)))
}

func TestAttendanceProgress(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)

	attendance := svc.AttendanceProgress(state, 5)
	assert.Equal(t, Attendance{CompletedDays: 2, GoalDays: 5, Percent: 40}, attendance)

	// 完成数超过目标天数时封顶
	for _, record := range state.Lessons {
		record.Completed = true
	}
	capped := svc.AttendanceProgress(state, 5)
	assert.Equal(t, Attendance{CompletedDays: 5, GoalDays: 5, Percent: 100}, capped)

	zero := svc.AttendanceProgress(state, 0)
	assert.Zero(t, zero.Percent)
}

func TestNextLesson(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)

	next := svc.NextLesson(state)
	require.NotNil(t, next)
	assert.Equal(t, "math3", next.ID)

	// 全部完成时返回最后一节
	for _, record := range state.Lessons {
		record.Completed = true
	}
	last := svc.NextLesson(state)
	require.NotNil(t, last)
	assert.Equal(t, "science2", last.ID)
}

func TestDayScheduleSortsByTime(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := model.DefaultProgressState(catalog.Default())
	state.Schedule = []model.ScheduleItem{
		{ID: "a", LessonID: "math1", Day: "monday", Time: "10:30"},
		{ID: "b", LessonID: "english1", Day: "monday", Time: "09:00"},
		{ID: "c", LessonID: "science1", Day: "tuesday", Time: "08:00"},
	}

	items := svc.DaySchedule(state, "monday")
	require.Len(t, items, 2)
	assert.Equal(t, "b", items[0].ID)
	assert.Equal(t, "a", items[1].ID)
	require.NotNil(t, items[0].Lesson)
	assert.Equal(t, "english1", items[0].Lesson.ID)
}

func TestWeeklySchedule(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := model.DefaultProgressState(catalog.Default())
	state.Schedule = []model.ScheduleItem{
		{ID: "a", LessonID: "math1", Day: "sunday", Time: "10:00"},
	}

	week := svc.WeeklySchedule(state)
	require.Len(t, week, 7)
	assert.Equal(t, "monday", week[0].Day)
	assert.Equal(t, "sunday", week[6].Day)
	assert.Empty(t, week[0].Items)
	assert.Len(t, week[6].Items, 1)
}

func TestTodaysFocusPrefersSchedule(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)
	// 2026-01-05 是周一
	monday := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	state.Schedule = []model.ScheduleItem{
		{ID: "done", LessonID: "math1", Day: "monday", Time: "08:00"},
		{ID: "todo", LessonID: "english1", Day: "monday", Time: "09:00"},
	}

	focus := svc.TodaysFocus(state, monday)
	assert.Equal(t, "schedule", focus.Type)
	assert.Equal(t, "Today's Scheduled Focus", focus.Label)
	require.NotNil(t, focus.ScheduleItem)
	assert.Equal(t, "todo", focus.ScheduleItem.ID)
	require.NotNil(t, focus.Lesson)
	assert.Equal(t, "english1", focus.Lesson.ID)
}

func TestTodaysFocusFallsBackToNextLesson(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)
	monday := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	focus := svc.TodaysFocus(state, monday)
	assert.Equal(t, "lesson", focus.Type)
	assert.Equal(t, "Next Suggested Lesson", focus.Label)
	assert.Nil(t, focus.ScheduleItem)
	require.NotNil(t, focus.Lesson)
	assert.Equal(t, "math3", focus.Lesson.ID)
}

func TestSubjectNeedingAttentionTieBreak(t *testing.T) {
	svc := NewDerivationService(catalog.Default())

	// 全部为 0% 时取目录顺序第一个学科
	attention := svc.SubjectNeedingAttention(model.DefaultProgressState(catalog.Default()))
	require.NotNil(t, attention)
	assert.Equal(t, "math", attention.SubjectID)

	// 数学有进度后聚焦到下一个 0% 学科
	attention = svc.SubjectNeedingAttention(scenarioState(t))
	require.NotNil(t, attention)
	assert.Equal(t, "english", attention.SubjectID)
}

func TestRecentAchievements(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	state := scenarioState(t)

	achievements := svc.RecentAchievements(state, 3)
	require.Len(t, achievements, 2)
	// 历史按最近在前
	assert.Equal(t, "math2", achievements[0].LessonID)
	require.NotNil(t, achievements[0].Lesson)

	assert.Empty(t, svc.RecentAchievements(state, 0))
	assert.Empty(t, svc.RecentAchievements(state, -1))
	assert.Len(t, svc.RecentAchievements(state, 1), 1)
}

func TestFormatAchievement(t *testing.T) {
	svc := NewDerivationService(catalog.Default())
	at := time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)
	score := 80.4

	assert.Equal(t, "🏅 Learning Numbers: Scored 80% (Jan 2)",
		svc.FormatAchievement(model.HistoryEntry{LessonID: "math1", Score: &score, CompletedAt: &at}))
	assert.Equal(t, "✅ Completed Learning Numbers (Jan 2)",
		svc.FormatAchievement(model.HistoryEntry{LessonID: "math1", CompletedAt: &at}))
	assert.Equal(t, "✅ Completed Learning Numbers (Recently)",
		svc.FormatAchievement(model.HistoryEntry{LessonID: "math1"}))
	assert.Empty(t, svc.FormatAchievement(model.HistoryEntry{LessonID: "ghost"}))
}

func TestFormatTimeRange(t *testing.T) {
	svc := NewDerivationService(catalog.Default())

	assert.Equal(t, "09:00 – 09:08", svc.FormatTimeRange("09:00", 8))
	assert.Equal(t, "23:55 – 00:05", svc.FormatTimeRange("23:55", 10))
	assert.Equal(t, "Flexible", svc.FormatTimeRange("", 8))
	assert.Equal(t, "Flexible", svc.FormatTimeRange("not-a-time", 8))
}
