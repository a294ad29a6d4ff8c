package service

import (
	"testing"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestProgressService(t *testing.T) *ProgressService {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.ProgressSnapshot{}))

	cfg := &config.Config{}
	cfg.Progress.StorageKeyBase = "my-lms-progress-v2"
	cfg.Progress.HistoryLimit = 20

	return NewProgressService(repository.NewProgressRepository(db), catalog.Default(), cfg)
}

func floatPtr(v float64) *float64 { return &v }

func TestStorageKey(t *testing.T) {
	svc := newTestProgressService(t)

	userID := uint(7)
	assert.Equal(t, "my-lms-progress-v2-7", svc.StorageKey(&userID))
	assert.Equal(t, "my-lms-progress-v2", svc.StorageKey(nil))
}

func TestRecordLessonAttempt(t *testing.T) {
	svc := newTestProgressService(t)
	key := "attempt-test"

	svc.RecordLessonAttempt(key, "math1", AttemptDetails{Score: floatPtr(60), DurationMs: 3000})
	svc.RecordLessonAttempt(key, "math1", AttemptDetails{Score: floatPtr(90), DurationMs: 2000, Completed: true})

	record := svc.GetLessonMetrics(key, "math1")
	require.NotNil(t, record)
	assert.Equal(t, 2, record.Attempts)
	assert.Equal(t, int64(5000), record.TotalTimeMs)
	assert.True(t, record.Completed)
	require.NotNil(t, record.BestScore)
	assert.Equal(t, 90.0, *record.BestScore)
	require.NotNil(t, record.LastScore)
	assert.Equal(t, 90.0, *record.LastScore)
	assert.NotNil(t, record.LastCompletedAt)

	state := svc.LoadState(key)
	require.Len(t, state.History, 1)
	assert.Equal(t, "math1", state.History[0].LessonID)
}

func TestRecordLessonAttemptBestScoreKeepsMax(t *testing.T) {
	svc := newTestProgressService(t)
	key := "best-score-test"

	svc.RecordLessonAttempt(key, "math1", AttemptDetails{Score: floatPtr(95)})
	svc.RecordLessonAttempt(key, "math1", AttemptDetails{Score: floatPtr(40)})
	// 无分数的尝试清空最近分数，但不影响最佳分数
	svc.RecordLessonAttempt(key, "math1", AttemptDetails{})

	record := svc.GetLessonMetrics(key, "math1")
	require.NotNil(t, record.BestScore)
	assert.Equal(t, 95.0, *record.BestScore)
	assert.Nil(t, record.LastScore)
	assert.Equal(t, 3, record.Attempts)
}

func TestRecordLessonAttemptUnknownLessonIsNoop(t *testing.T) {
	svc := newTestProgressService(t)
	key := "unknown-lesson-test"

	svc.RecordLessonAttempt(key, "ghost", AttemptDetails{Completed: true})

	state := svc.LoadState(key)
	assert.Empty(t, state.History)
	assert.Nil(t, svc.GetLessonMetrics(key, "ghost"))
}

func TestHistoryCappedAtLimit(t *testing.T) {
	svc := newTestProgressService(t)
	key := "history-cap-test"

	for i := 0; i < model.HistoryLimit+5; i++ {
		svc.MarkLessonComplete(key, "math1", AttemptDetails{})
	}

	state := svc.LoadState(key)
	assert.Len(t, state.History, model.HistoryLimit)
}

func TestHistoryLimitFromConfig(t *testing.T) {
	svc := newTestProgressService(t)
	svc.Cfg.Progress.HistoryLimit = 5
	key := "history-config-test"

	for i := 0; i < 8; i++ {
		svc.MarkLessonComplete(key, "math1", AttemptDetails{})
	}

	// 写入与读回都按配置的上限截断
	state := svc.LoadState(key)
	assert.Len(t, state.History, 5)
}

func TestResetLessonProgress(t *testing.T) {
	svc := newTestProgressService(t)
	key := "reset-lesson-test"

	svc.MarkLessonComplete(key, "math1", AttemptDetails{Score: floatPtr(80)})
	svc.MarkLessonComplete(key, "english1", AttemptDetails{})

	svc.ResetLessonProgress(key, "math1")

	record := svc.GetLessonMetrics(key, "math1")
	assert.False(t, record.Completed)
	assert.Zero(t, record.Attempts)
	assert.Nil(t, record.BestScore)

	// 只清该课的历史，别的课保留
	state := svc.LoadState(key)
	require.Len(t, state.History, 1)
	assert.Equal(t, "english1", state.History[0].LessonID)
	assert.True(t, svc.GetLessonProgress(key, "english1"))
}

func TestResetAllProgress(t *testing.T) {
	svc := newTestProgressService(t)
	key := "reset-all-test"

	svc.MarkLessonComplete(key, "math1", AttemptDetails{})
	svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "math2"})
	svc.SetSubjectGoal(key, "math", model.SubjectGoal{TargetPercent: floatPtr(90)})

	svc.ResetAllProgress(key)

	state := svc.LoadState(key)
	assert.False(t, state.Lessons["math1"].Completed)
	assert.Empty(t, state.History)
	assert.Empty(t, state.Schedule)
	assert.Nil(t, state.Goals["math"].TargetPercent)
}

func TestSetLessonGrade(t *testing.T) {
	svc := newTestProgressService(t)
	key := "grade-test"

	svc.SetLessonGrade(key, "math1", floatPtr(87.5))
	record := svc.GetLessonMetrics(key, "math1")
	require.NotNil(t, record.Grade)
	assert.Equal(t, 87.5, *record.Grade)

	svc.SetLessonGrade(key, "math1", nil)
	record = svc.GetLessonMetrics(key, "math1")
	assert.Nil(t, record.Grade)
}

func TestSetSubjectGoal(t *testing.T) {
	svc := newTestProgressService(t)
	key := "goal-test"

	svc.SetSubjectGoal(key, "math", model.SubjectGoal{TargetPercent: floatPtr(85), Notes: "push counting"})

	goal := svc.GetSubjectGoal(key, "math")
	require.NotNil(t, goal.TargetPercent)
	assert.Equal(t, 85.0, *goal.TargetPercent)
	assert.Equal(t, "push counting", goal.Notes)

	// 未知学科静默忽略
	svc.SetSubjectGoal(key, "history", model.SubjectGoal{TargetPercent: floatPtr(50)})
	unknown := svc.GetSubjectGoal(key, "history")
	assert.Nil(t, unknown.TargetPercent)
}

func TestAddScheduleItem(t *testing.T) {
	svc := newTestProgressService(t)
	key := "schedule-add-test"

	item := svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "math1", Day: "FRIDAY", Time: "14:30", Notes: "review"})
	require.NotNil(t, item)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "friday", item.Day)
	assert.Equal(t, "14:30", item.Time)

	// 默认值
	defaulted := svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "math2"})
	require.NotNil(t, defaulted)
	assert.Equal(t, "monday", defaulted.Day)
	assert.Equal(t, "09:00", defaulted.Time)

	// 未知课程返回 nil 且不落库
	assert.Nil(t, svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "ghost"}))
	state := svc.LoadState(key)
	assert.Len(t, state.Schedule, 2)
}

func TestUpdateScheduleItem(t *testing.T) {
	svc := newTestProgressService(t)
	key := "schedule-update-test"

	item := svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "math1", Day: "monday", Time: "09:00", Notes: "before"})
	require.NotNil(t, item)

	day := "Tuesday"
	notes := ""
	ghost := "ghost"
	svc.UpdateScheduleItem(key, item.ID, ScheduleItemUpdate{Day: &day, Notes: &notes, LessonID: &ghost})

	state := svc.LoadState(key)
	require.Len(t, state.Schedule, 1)
	updated := state.Schedule[0]
	assert.Equal(t, "tuesday", updated.Day)
	assert.Empty(t, updated.Notes)
	// 未知课程 ID 保留旧值
	assert.Equal(t, "math1", updated.LessonID)
	assert.Equal(t, "09:00", updated.Time)
}

func TestRemoveScheduleItem(t *testing.T) {
	svc := newTestProgressService(t)
	key := "schedule-remove-test"

	item := svc.AddScheduleItem(key, ScheduleItemInput{LessonID: "math1"})
	require.NotNil(t, item)

	svc.RemoveScheduleItem(key, item.ID)
	state := svc.LoadState(key)
	assert.Empty(t, state.Schedule)

	// 未命中 ID 为 no-op
	svc.RemoveScheduleItem(key, "missing")
}

func TestGetLessonMetricsReturnsClone(t *testing.T) {
	svc := newTestProgressService(t)
	key := "clone-test"

	svc.RecordLessonAttempt(key, "math1", AttemptDetails{Score: floatPtr(75)})

	record := svc.GetLessonMetrics(key, "math1")
	*record.BestScore = 1.0

	fresh := svc.GetLessonMetrics(key, "math1")
	assert.Equal(t, 75.0, *fresh.BestScore)
}
