package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/model"
)

// DaysOrder 课表使用的星期顺序，周一开头
var DaysOrder = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

// Completion 完成度三元组，percent 四舍五入
type Completion struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Percent   int `json:"percent"`
}

// Attendance 按周目标天数折算的出勤指标
type Attendance struct {
	CompletedDays int `json:"completedDays"`
	GoalDays      int `json:"goalDays"`
	Percent       int `json:"percent"`
}

// ScheduledLesson 课表项与课程元数据的联结
type ScheduledLesson struct {
	model.ScheduleItem
	Lesson *catalog.Lesson `json:"lesson"`
}

// DayScheduleGroup 某一天的课表项集合
type DayScheduleGroup struct {
	Day   string            `json:"day"`
	Items []ScheduledLesson `json:"items"`
}

// FocusSuggestion 今日重点：优先当天未完成的课表项，否则下一节建议课程
type FocusSuggestion struct {
	Type         string              `json:"type"`
	Lesson       *catalog.Lesson     `json:"lesson"`
	ScheduleItem *model.ScheduleItem `json:"scheduleItem"`
	Label        string              `json:"label"`
}

// SubjectAttention 完成度最低的学科
type SubjectAttention struct {
	SubjectID string     `json:"subjectId"`
	Progress  Completion `json:"progress"`
}

// Achievement 历史条目与课程元数据的联结
type Achievement struct {
	model.HistoryEntry
	Lesson *catalog.Lesson `json:"lesson"`
}

// DerivationService 派生指标计算。只读目录与状态树，
// 不触碰存储，输出全部按需现算。
type DerivationService struct {
	Catalog *catalog.Catalog
}

func NewDerivationService(cat *catalog.Catalog) *DerivationService {
	return &DerivationService{Catalog: cat}
}

func (s *DerivationService) lessonCompleted(state *model.ProgressState, lessonID string) bool {
	record := state.Lessons[lessonID]
	return record != nil && record.Completed
}

func (s *DerivationService) completionOf(state *model.ProgressState, lessonIDs []string) Completion {
	completed := 0
	for _, id := range lessonIDs {
		if s.lessonCompleted(state, id) {
			completed++
		}
	}
	return Completion{
		Completed: completed,
		Total:     len(lessonIDs),
		Percent:   roundPercent(completed, len(lessonIDs)),
	}
}

func roundPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

// SubjectProgress 学科完成度，gradeID 非空时限定年级
func (s *DerivationService) SubjectProgress(state *model.ProgressState, subjectID, gradeID string) Completion {
	return s.completionOf(state, s.Catalog.SubjectLessons(subjectID, gradeID))
}

func (s *DerivationService) CategoryProgress(state *model.ProgressState, subjectID, categoryID, gradeID string) Completion {
	return s.completionOf(state, s.Catalog.CategoryLessons(subjectID, categoryID, gradeID))
}

func (s *DerivationService) GradeProgress(state *model.ProgressState, gradeID string) Completion {
	return s.completionOf(state, s.Catalog.GradeLessons(gradeID))
}

// OverallProgress 全部课程的总完成度
func (s *DerivationService) OverallProgress(state *model.ProgressState) Completion {
	completed := 0
	for _, record := range state.Lessons {
		if record != nil && record.Completed {
			completed++
		}
	}
	total := len(s.Catalog.Lessons)
	return Completion{Completed: completed, Total: total, Percent: roundPercent(completed, total)}
}

// AttendanceProgress 以总完成课程数折算，封顶周目标天数
func (s *DerivationService) AttendanceProgress(state *model.ProgressState, goalDays int) Attendance {
	overall := s.OverallProgress(state)
	completedDays := overall.Completed
	if completedDays > goalDays {
		completedDays = goalDays
	}
	return Attendance{
		CompletedDays: completedDays,
		GoalDays:      goalDays,
		Percent:       roundPercent(completedDays, goalDays),
	}
}

// NextLesson 目录顺序下第一节未完成课程；全部完成时返回最后一节
func (s *DerivationService) NextLesson(state *model.ProgressState) *catalog.Lesson {
	if len(s.Catalog.Lessons) == 0 {
		return nil
	}
	for i := range s.Catalog.Lessons {
		if !s.lessonCompleted(state, s.Catalog.Lessons[i].ID) {
			return &s.Catalog.Lessons[i]
		}
	}
	return &s.Catalog.Lessons[len(s.Catalog.Lessons)-1]
}

// DaySchedule 某天的课表项，按时间字典序排序并联结课程元数据
func (s *DerivationService) DaySchedule(state *model.ProgressState, day string) []ScheduledLesson {
	items := make([]ScheduledLesson, 0)
	for _, item := range state.Schedule {
		if item.Day != day {
			continue
		}
		items = append(items, ScheduledLesson{
			ScheduleItem: item,
			Lesson:       s.Catalog.Lesson(item.LessonID),
		})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Time < items[j].Time
	})
	return items
}

func (s *DerivationService) WeeklySchedule(state *model.ProgressState) []DayScheduleGroup {
	groups := make([]DayScheduleGroup, 0, len(DaysOrder))
	for _, day := range DaysOrder {
		groups = append(groups, DayScheduleGroup{Day: day, Items: s.DaySchedule(state, day)})
	}
	return groups
}

// TodaysSchedule 当前星期对应的课表项
func (s *DerivationService) TodaysSchedule(state *model.ProgressState, now time.Time) []ScheduledLesson {
	return s.DaySchedule(state, dayName(now))
}

func dayName(now time.Time) string {
	weekday := int(now.Weekday())
	if weekday == 0 {
		return DaysOrder[6]
	}
	return DaysOrder[weekday-1]
}

// TodaysFocus 今日重点：当天第一条未完成课表项优先，否则回退下一节建议课程
func (s *DerivationService) TodaysFocus(state *model.ProgressState, now time.Time) FocusSuggestion {
	for _, item := range s.TodaysSchedule(state, now) {
		if s.lessonCompleted(state, item.LessonID) {
			continue
		}
		scheduled := item.ScheduleItem
		return FocusSuggestion{
			Type:         "schedule",
			Lesson:       item.Lesson,
			ScheduleItem: &scheduled,
			Label:        "Today's Scheduled Focus",
		}
	}
	return FocusSuggestion{
		Type:   "lesson",
		Lesson: s.NextLesson(state),
		Label:  "Next Suggested Lesson",
	}
}

// SubjectNeedingAttention 完成度最低的学科，并列时取目录顺序靠前者
func (s *DerivationService) SubjectNeedingAttention(state *model.ProgressState) *SubjectAttention {
	var lowest *SubjectAttention
	for _, subject := range s.Catalog.Subjects {
		progress := s.SubjectProgress(state, subject.ID, "")
		if lowest == nil || progress.Percent < lowest.Progress.Percent {
			lowest = &SubjectAttention{SubjectID: subject.ID, Progress: progress}
		}
	}
	return lowest
}

// RecentAchievements 最近 limit 条完成历史，联结课程元数据。
// limit 非正时返回空列表。
func (s *DerivationService) RecentAchievements(state *model.ProgressState, limit int) []Achievement {
	if limit < 0 {
		limit = 0
	}
	if limit > len(state.History) {
		limit = len(state.History)
	}
	achievements := make([]Achievement, 0, limit)
	for _, entry := range state.History[:limit] {
		achievements = append(achievements, Achievement{
			HistoryEntry: entry,
			Lesson:       s.Catalog.Lesson(entry.LessonID),
		})
	}
	return achievements
}

// FormatAchievement 历史条目转成就文案。无日期时显示 Recently。
func (s *DerivationService) FormatAchievement(entry model.HistoryEntry) string {
	lesson := s.Catalog.Lesson(entry.LessonID)
	if lesson == nil {
		return ""
	}
	dateLabel := "Recently"
	if entry.CompletedAt != nil {
		dateLabel = entry.CompletedAt.Format("Jan 2")
	}
	if entry.Score == nil {
		return fmt.Sprintf("✅ Completed %s (%s)", lesson.ShortName, dateLabel)
	}
	return fmt.Sprintf("🏅 %s: Scored %d%% (%s)", lesson.ShortName, int(math.Round(*entry.Score)), dateLabel)
}

// FormatTimeRange 由开始时间与时长生成展示用时间段，无法解析时显示 Flexible
func (s *DerivationService) FormatTimeRange(timeString string, minutes int) string {
	if timeString == "" {
		return "Flexible"
	}
	start, err := time.Parse("15:04", timeString)
	if err != nil {
		return "Flexible"
	}
	end := start.Add(time.Duration(minutes) * time.Minute)
	return fmt.Sprintf("%s – %s", start.Format("15:04"), end.Format("15:04"))
}
