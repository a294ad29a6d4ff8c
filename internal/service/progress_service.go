package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/pkg/logger"

	"go.uber.org/zap"
)

// ProgressService 进度存储。每个变更操作按存储键整体加载、
// 原地修改、整体回写，与快照行一一对应。未知课程/学科 ID 一律
// 静默忽略（AddScheduleItem 例外，返回 nil 表示失败）。
type ProgressService struct {
	Repo    *repository.ProgressRepository
	Catalog *catalog.Catalog
	Cfg     *config.Config
}

func NewProgressService(repo *repository.ProgressRepository, cat *catalog.Catalog, cfg *config.Config) *ProgressService {
	return &ProgressService{
		Repo:    repo,
		Catalog: cat,
		Cfg:     cfg,
	}
}

// StorageKey 用户侧进度存储键：已登录用户按 ID 区分，匿名共用基础键
func (s *ProgressService) StorageKey(userID *uint) string {
	if userID != nil {
		return fmt.Sprintf("%s-%d", s.Cfg.Progress.StorageKeyBase, *userID)
	}
	return s.Cfg.Progress.StorageKeyBase
}

// historyLimit 配置的历史保留条数，未配置时用模型默认值
func (s *ProgressService) historyLimit() int {
	if s.Cfg.Progress.HistoryLimit > 0 {
		return s.Cfg.Progress.HistoryLimit
	}
	return model.HistoryLimit
}

// LoadState 读取并合并持久化状态。读不到、读坏了都回退默认状态，
// 不向上抛错（fail open）。
func (s *ProgressService) LoadState(storageKey string) *model.ProgressState {
	raw, err := s.Repo.Load(storageKey)
	if err != nil {
		logger.Log.Warn("progress load failed, falling back to defaults",
			zap.String("storageKey", storageKey), zap.Error(err))
		return model.DefaultProgressState(s.Catalog)
	}
	return model.MergeProgressState(raw, s.Catalog, s.historyLimit())
}

// persist 整树序列化回写。写失败只记日志，状态仅存在于本次请求内存中。
func (s *ProgressService) persist(storageKey string, state *model.ProgressState) {
	raw, err := json.Marshal(state)
	if err != nil {
		logger.Log.Error("progress state marshal failed", zap.Error(err))
		return
	}
	if err := s.Repo.Save(storageKey, raw); err != nil {
		logger.Log.Warn("progress persist failed, state not saved",
			zap.String("storageKey", storageKey), zap.Error(err))
	}
}

// AttemptDetails 一次学习尝试的元数据
type AttemptDetails struct {
	Score      *float64 `json:"score"`
	DurationMs int64    `json:"durationMs"`
	Completed  bool     `json:"completed"`
}

// RecordLessonAttempt 记录一次尝试：累加次数与时长，更新最近/最佳分数，
// 完成时打时间戳并写入历史（按配置的条数上限截断，默认 20）。
func (s *ProgressService) RecordLessonAttempt(storageKey, lessonID string, details AttemptDetails) {
	if !s.Catalog.HasLesson(lessonID) {
		return
	}

	state := s.LoadState(storageKey)
	record := state.Lessons[lessonID]
	if record == nil {
		record = model.NewLessonRecord()
		state.Lessons[lessonID] = record
	}

	record.Attempts++
	if details.DurationMs > 0 {
		record.TotalTimeMs += details.DurationMs
	}

	if details.Score == nil || math.IsNaN(*details.Score) {
		record.LastScore = nil
	} else {
		score := *details.Score
		record.LastScore = &score
		if record.BestScore == nil || score > *record.BestScore {
			best := score
			record.BestScore = &best
		}
	}

	if details.Completed {
		record.Completed = true
		now := time.Now().UTC()
		record.LastCompletedAt = &now
		entry := model.HistoryEntry{
			LessonID:    lessonID,
			Score:       record.LastScore,
			CompletedAt: &now,
		}
		state.History = append([]model.HistoryEntry{entry}, state.History...)
		if limit := s.historyLimit(); len(state.History) > limit {
			state.History = state.History[:limit]
		}
	}

	s.persist(storageKey, state)
}

// MarkLessonComplete RecordLessonAttempt 的完成语法糖
func (s *ProgressService) MarkLessonComplete(storageKey, lessonID string, details AttemptDetails) {
	details.Completed = true
	s.RecordLessonAttempt(storageKey, lessonID, details)
}

// ResetLessonProgress 单课重置为初始记录，并清掉它的全部历史
func (s *ProgressService) ResetLessonProgress(storageKey, lessonID string) {
	if !s.Catalog.HasLesson(lessonID) {
		return
	}

	state := s.LoadState(storageKey)
	state.Lessons[lessonID] = model.NewLessonRecord()

	history := state.History[:0]
	for _, entry := range state.History {
		if entry.LessonID != lessonID {
			history = append(history, entry)
		}
	}
	state.History = history

	s.persist(storageKey, state)
}

// ResetAllProgress 整个状态树回到默认：历史、课表、目标一并清空
func (s *ProgressService) ResetAllProgress(storageKey string) {
	s.persist(storageKey, model.DefaultProgressState(s.Catalog))
}

// SetLessonGrade 手动评分覆盖，传 nil 表示清除
func (s *ProgressService) SetLessonGrade(storageKey, lessonID string, grade *float64) {
	if !s.Catalog.HasLesson(lessonID) {
		return
	}

	state := s.LoadState(storageKey)
	record := state.Lessons[lessonID]
	if record == nil {
		record = model.NewLessonRecord()
		state.Lessons[lessonID] = record
	}

	if grade == nil || math.IsNaN(*grade) {
		record.Grade = nil
	} else {
		value := *grade
		record.Grade = &value
	}

	s.persist(storageKey, state)
}

// SetSubjectGoal 整体替换学科目标；未知学科静默忽略
func (s *ProgressService) SetSubjectGoal(storageKey, subjectID string, goal model.SubjectGoal) {
	state := s.LoadState(storageKey)
	if _, known := state.Goals[subjectID]; !known {
		return
	}

	target := goal.TargetPercent
	if target != nil && math.IsNaN(*target) {
		target = nil
	}
	state.Goals[subjectID] = &model.SubjectGoal{
		TargetPercent: target,
		Notes:         goal.Notes,
	}

	s.persist(storageKey, state)
}

// ScheduleItemInput 新增课表项的入参
type ScheduleItemInput struct {
	LessonID string `json:"lessonId"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// AddScheduleItem 追加课表项。课程不在目录中返回 nil 且不落库；
// 星期默认 monday，时间默认 09:00，ID 为生成的 UUID。
func (s *ProgressService) AddScheduleItem(storageKey string, input ScheduleItemInput) *model.ScheduleItem {
	if !s.Catalog.HasLesson(input.LessonID) {
		return nil
	}

	day := strings.ToLower(input.Day)
	if day == "" {
		day = "monday"
	}
	timeStr := input.Time
	if timeStr == "" {
		timeStr = "09:00"
	}

	item := model.ScheduleItem{
		ID:       model.GenerateUUID(),
		LessonID: input.LessonID,
		Day:      day,
		Time:     timeStr,
		Notes:    input.Notes,
	}

	state := s.LoadState(storageKey)
	state.Schedule = append(state.Schedule, item)
	s.persist(storageKey, state)

	result := item
	return &result
}

// RemoveScheduleItem 按 ID 删除；未命中时不回写
func (s *ProgressService) RemoveScheduleItem(storageKey, id string) {
	state := s.LoadState(storageKey)

	schedule := state.Schedule[:0]
	for _, item := range state.Schedule {
		if item.ID != id {
			schedule = append(schedule, item)
		}
	}
	if len(schedule) == len(state.Schedule) {
		return
	}
	state.Schedule = schedule

	s.persist(storageKey, state)
}

// ScheduleItemUpdate 课表项的部分更新，nil 字段保持原值
type ScheduleItemUpdate struct {
	LessonID *string `json:"lessonId"`
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	Notes    *string `json:"notes"`
}

// UpdateScheduleItem 应用部分更新。ID 未命中为 no-op；
// 更新里的未知课程 ID 被忽略，保留旧值。
func (s *ProgressService) UpdateScheduleItem(storageKey, id string, updates ScheduleItemUpdate) {
	state := s.LoadState(storageKey)

	var item *model.ScheduleItem
	for i := range state.Schedule {
		if state.Schedule[i].ID == id {
			item = &state.Schedule[i]
			break
		}
	}
	if item == nil {
		return
	}

	if updates.LessonID != nil && *updates.LessonID != "" && s.Catalog.HasLesson(*updates.LessonID) {
		item.LessonID = *updates.LessonID
	}
	if updates.Day != nil && *updates.Day != "" {
		item.Day = strings.ToLower(*updates.Day)
	}
	if updates.Time != nil && *updates.Time != "" {
		item.Time = *updates.Time
	}
	if updates.Notes != nil {
		item.Notes = *updates.Notes
	}

	s.persist(storageKey, state)
}

// GetLessonMetrics 返回课程记录的深拷贝，未知课程返回 nil
func (s *ProgressService) GetLessonMetrics(storageKey, lessonID string) *model.LessonRecord {
	if !s.Catalog.HasLesson(lessonID) {
		return nil
	}
	state := s.LoadState(storageKey)
	return state.Lessons[lessonID].Clone()
}

// GetLessonProgress 课程是否已完成
func (s *ProgressService) GetLessonProgress(storageKey, lessonID string) bool {
	if !s.Catalog.HasLesson(lessonID) {
		return false
	}
	state := s.LoadState(storageKey)
	record := state.Lessons[lessonID]
	return record != nil && record.Completed
}

// GetSubjectGoal 学科目标拷贝；未知学科返回空目标
func (s *ProgressService) GetSubjectGoal(storageKey, subjectID string) *model.SubjectGoal {
	state := s.LoadState(storageKey)
	return state.Goals[subjectID].Clone()
}
