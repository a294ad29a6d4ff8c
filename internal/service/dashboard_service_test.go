package service

import (
	"testing"
	"time"

	"homeschool_lms_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboardService(t *testing.T) (*DashboardService, *ProgressService) {
	t.Helper()
	progress := newTestProgressService(t)
	derivation := NewDerivationService(progress.Catalog)
	return NewDashboardService(progress, derivation, progress.Catalog), progress
}

func TestBuildDashboardFreshState(t *testing.T) {
	svc, _ := newTestDashboardService(t)
	monday := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	dash := svc.BuildDashboard("dash-fresh", monday)

	assert.Equal(t, Completion{Completed: 0, Total: 7, Percent: 0}, dash.Overall)
	assert.Equal(t, "0 of 5 days", dash.AttendanceText)
	assert.Len(t, dash.SubjectCards, 3)
	assert.Len(t, dash.GradeCards, 13)
	assert.Len(t, dash.LessonCards, 7)

	require.NotNil(t, dash.NextLesson)
	assert.Equal(t, "math1", dash.NextLesson.LessonID)
	assert.Equal(t, "Math Adventures • Lesson 1: Learning Numbers", dash.NextLesson.Label)
	assert.Equal(t, "Math Adventures: Learning Numbers", dash.NextUp)

	assert.Equal(t, []string{"Complete your first lesson to start earning achievements!"}, dash.Achievements)
	assert.Equal(t, "No scheduled lessons today. Add items from the parent dashboard.", dash.ScheduleMessage)

	require.NotNil(t, dash.Spotlight)
	assert.Equal(t, "Math Adventures Spotlight", dash.Spotlight.Title)
	assert.Zero(t, dash.Spotlight.Percent)
}

func TestBuildDashboardWithProgress(t *testing.T) {
	svc, progress := newTestDashboardService(t)
	key := "dash-progress"
	monday := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	progress.MarkLessonComplete(key, "math1", AttemptDetails{Score: floatPtr(80)})
	progress.MarkLessonComplete(key, "math2", AttemptDetails{Score: floatPtr(95)})
	progress.SetSubjectGoal(key, "math", model.SubjectGoal{TargetPercent: floatPtr(85), Notes: "keep pace"})
	progress.AddScheduleItem(key, ScheduleItemInput{LessonID: "english1", Day: "monday", Time: "09:30", Notes: "read aloud"})

	dash := svc.BuildDashboard(key, monday)

	assert.Equal(t, Completion{Completed: 2, Total: 7, Percent: 29}, dash.Overall)
	assert.Equal(t, "2 of 5 days", dash.AttendanceText)

	var mathCard *SubjectCard
	for i := range dash.SubjectCards {
		if dash.SubjectCards[i].SubjectID == "math" {
			mathCard = &dash.SubjectCards[i]
		}
	}
	require.NotNil(t, mathCard)
	assert.Equal(t, "2 of 3 lessons", mathCard.Status)
	assert.Equal(t, "85% target • keep pace", mathCard.GoalSummary)

	// 今日有未完成的课表项，重点卡片优先展示它
	assert.Equal(t, "Lesson 4: Story Sequencing", dash.Focus.Title)
	assert.Equal(t, "read aloud", dash.Focus.Description)
	assert.Equal(t, "Today's Scheduled Focus · 09:30 – 09:40 • English Explorers", dash.Focus.Status)
	assert.Zero(t, dash.Focus.BarPercent)

	require.Len(t, dash.TodaySchedule, 1)
	assert.Empty(t, dash.ScheduleMessage)

	require.Len(t, dash.Achievements, 2)
	assert.Contains(t, dash.Achievements[0], "Scored 95%")

	require.NotNil(t, dash.Spotlight)
	assert.Equal(t, "English Explorers Spotlight", dash.Spotlight.Title)
	assert.Contains(t, dash.Spotlight.Message, "You're 0% complete.")
}

func TestGoalSummaryFallbacks(t *testing.T) {
	assert.Equal(t, "No goal set", goalSummary(nil))
	assert.Equal(t, "No goal set", goalSummary(&model.SubjectGoal{}))
	assert.Equal(t, "just notes", goalSummary(&model.SubjectGoal{Notes: "just notes"}))
	assert.Equal(t, "70% target", goalSummary(&model.SubjectGoal{TargetPercent: floatPtr(70)}))
}

func TestBuildDashboardFocusFallback(t *testing.T) {
	svc, progress := newTestDashboardService(t)
	key := "dash-focus-fallback"
	monday := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)

	progress.MarkLessonComplete(key, "math1", AttemptDetails{})

	dash := svc.BuildDashboard(key, monday)

	assert.Equal(t, "Lesson 2: Counting Objects", dash.Focus.Title)
	assert.Equal(t, "Next Suggested Lesson", dash.Focus.Status)
	assert.Equal(t, "Estimated 7 minutes to reinforce Counting & Number Sense.", dash.Focus.Description)
}
