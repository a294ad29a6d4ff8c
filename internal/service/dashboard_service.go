package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/model"
)

// AttendanceGoalDays 每周默认学习天数目标
const AttendanceGoalDays = 5

const (
	emptyAchievementsMessage = "Complete your first lesson to start earning achievements!"
	emptyScheduleMessage     = "No scheduled lessons today. Add items from the parent dashboard."
)

// SubjectCard 学科概览卡片
type SubjectCard struct {
	SubjectID   string     `json:"subjectId"`
	Label       string     `json:"label"`
	Description string     `json:"description"`
	Progress    Completion `json:"progress"`
	Status      string     `json:"status"`
	GoalSummary string     `json:"goalSummary"`
}

// CategoryCard 学科下分类卡片
type CategoryCard struct {
	SubjectID  string     `json:"subjectId"`
	CategoryID string     `json:"categoryId"`
	Label      string     `json:"label"`
	Progress   Completion `json:"progress"`
	Status     string     `json:"status"`
}

// GradeCard 年级概览卡片
type GradeCard struct {
	GradeID    string     `json:"gradeId"`
	Label      string     `json:"label"`
	ShortLabel string     `json:"shortLabel"`
	Summary    string     `json:"summary"`
	Progress   Completion `json:"progress"`
	Status     string     `json:"status"`
}

// LessonCard 单课卡片，Status 为 Completed / Not started
type LessonCard struct {
	LessonID  string `json:"lessonId"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Subject   string `json:"subject"`
	Path      string `json:"path"`
	Completed bool   `json:"completed"`
	Status    string `json:"status"`
}

// NextLessonLink 导航栏的下一课快捷入口
type NextLessonLink struct {
	LessonID string `json:"lessonId"`
	Path     string `json:"path"`
	Label    string `json:"label"`
}

// FocusCard 今日重点卡片
type FocusCard struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status"`
	BarPercent  int    `json:"barPercent"`
}

// SpotlightCard 需要关注的学科卡片
type SpotlightCard struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Percent int    `json:"percent"`
}

// Dashboard 仪表盘视图模型，一次请求内整体组装
type Dashboard struct {
	Overall         Completion        `json:"overall"`
	Attendance      Attendance        `json:"attendance"`
	AttendanceText  string            `json:"attendanceText"`
	GradeCards      []GradeCard       `json:"gradeCards"`
	SubjectCards    []SubjectCard     `json:"subjectCards"`
	CategoryCards   []CategoryCard    `json:"categoryCards"`
	LessonCards     []LessonCard      `json:"lessonCards"`
	NextLesson      *NextLessonLink   `json:"nextLesson"`
	NextUp          string            `json:"nextUp"`
	Focus           FocusCard         `json:"focus"`
	Achievements    []string          `json:"achievements"`
	Spotlight       *SpotlightCard    `json:"spotlight"`
	TodaySchedule   []ScheduledLesson `json:"todaySchedule"`
	ScheduleMessage string            `json:"scheduleMessage"`
}

// DashboardService 把派生指标组装成前端可直接渲染的视图模型
type DashboardService struct {
	Progress   *ProgressService
	Derivation *DerivationService
	Catalog    *catalog.Catalog
}

func NewDashboardService(progress *ProgressService, derivation *DerivationService, cat *catalog.Catalog) *DashboardService {
	return &DashboardService{
		Progress:   progress,
		Derivation: derivation,
		Catalog:    cat,
	}
}

// BuildDashboard 组装完整仪表盘。now 决定今日课表与重点。
func (s *DashboardService) BuildDashboard(storageKey string, now time.Time) *Dashboard {
	state := s.Progress.LoadState(storageKey)

	dash := &Dashboard{
		Overall:    s.Derivation.OverallProgress(state),
		Attendance: s.Derivation.AttendanceProgress(state, AttendanceGoalDays),
	}
	dash.AttendanceText = fmt.Sprintf("%d of %d days", dash.Attendance.CompletedDays, dash.Attendance.GoalDays)

	dash.GradeCards = s.buildGradeCards(state)
	dash.SubjectCards = s.buildSubjectCards(state)
	dash.CategoryCards = s.buildCategoryCards(state)
	dash.LessonCards = s.buildLessonCards(state)

	if next := s.Derivation.NextLesson(state); next != nil {
		dash.NextLesson = &NextLessonLink{
			LessonID: next.ID,
			Path:     next.Path,
			Label:    fmt.Sprintf("%s • %s", s.subjectLabel(next.Subject), next.Name),
		}
		dash.NextUp = fmt.Sprintf("%s: %s", s.subjectLabel(next.Subject), next.ShortName)
	}

	dash.Focus = s.buildFocusCard(state, now)
	dash.Achievements = s.buildAchievements(state)
	dash.Spotlight = s.buildSpotlight(state)

	dash.TodaySchedule = s.Derivation.TodaysSchedule(state, now)
	if len(dash.TodaySchedule) == 0 {
		dash.ScheduleMessage = emptyScheduleMessage
	}
	return dash
}

func (s *DashboardService) subjectLabel(subjectID string) string {
	if subject := s.Catalog.Subject(subjectID); subject != nil {
		return subject.Label
	}
	return subjectID
}

func lessonCountStatus(progress Completion) string {
	if progress.Total == 0 {
		return "No lessons yet"
	}
	return fmt.Sprintf("%d of %d lessons", progress.Completed, progress.Total)
}

func (s *DashboardService) buildGradeCards(state *model.ProgressState) []GradeCard {
	cards := make([]GradeCard, 0, len(s.Catalog.Grades))
	for _, grade := range s.Catalog.Grades {
		progress := s.Derivation.GradeProgress(state, grade.ID)
		cards = append(cards, GradeCard{
			GradeID:    grade.ID,
			Label:      grade.Label,
			ShortLabel: grade.ShortLabel,
			Summary:    grade.Description,
			Progress:   progress,
			Status:     lessonCountStatus(progress),
		})
	}
	return cards
}

func (s *DashboardService) buildSubjectCards(state *model.ProgressState) []SubjectCard {
	cards := make([]SubjectCard, 0, len(s.Catalog.Subjects))
	for _, subject := range s.Catalog.Subjects {
		progress := s.Derivation.SubjectProgress(state, subject.ID, "")
		cards = append(cards, SubjectCard{
			SubjectID:   subject.ID,
			Label:       subject.Label,
			Description: subject.Description,
			Progress:    progress,
			Status:      lessonCountStatus(progress),
			GoalSummary: goalSummary(state.Goals[subject.ID]),
		})
	}
	return cards
}

// goalSummary 目标摘要：目标百分比与备注用 • 连接，都没有时显示 No goal set
func goalSummary(goal *model.SubjectGoal) string {
	if goal == nil {
		return "No goal set"
	}
	parts := make([]string, 0, 2)
	if goal.TargetPercent != nil {
		parts = append(parts, strconv.FormatFloat(*goal.TargetPercent, 'f', -1, 64)+"% target")
	}
	if goal.Notes != "" {
		parts = append(parts, goal.Notes)
	}
	if len(parts) == 0 {
		return "No goal set"
	}
	return strings.Join(parts, " • ")
}

func (s *DashboardService) buildCategoryCards(state *model.ProgressState) []CategoryCard {
	var cards []CategoryCard
	for _, subject := range s.Catalog.Subjects {
		for _, category := range subject.Categories {
			progress := s.Derivation.CategoryProgress(state, subject.ID, category.ID, "")
			cards = append(cards, CategoryCard{
				SubjectID:  subject.ID,
				CategoryID: category.ID,
				Label:      category.Label,
				Progress:   progress,
				Status:     lessonCountStatus(progress),
			})
		}
	}
	return cards
}

func (s *DashboardService) buildLessonCards(state *model.ProgressState) []LessonCard {
	cards := make([]LessonCard, 0, len(s.Catalog.Lessons))
	for _, lesson := range s.Catalog.Lessons {
		record := state.Lessons[lesson.ID]
		completed := record != nil && record.Completed
		status := "Not started"
		if completed {
			status = "Completed"
		}
		cards = append(cards, LessonCard{
			LessonID:  lesson.ID,
			Name:      lesson.Name,
			ShortName: lesson.ShortName,
			Subject:   lesson.Subject,
			Path:      lesson.Path,
			Completed: completed,
			Status:    status,
		})
	}
	return cards
}

func (s *DashboardService) buildFocusCard(state *model.ProgressState, now time.Time) FocusCard {
	focus := s.Derivation.TodaysFocus(state, now)
	if focus.Lesson == nil {
		return FocusCard{}
	}
	lesson := focus.Lesson

	card := FocusCard{Title: lesson.Name}

	if focus.ScheduleItem != nil && focus.ScheduleItem.Notes != "" {
		card.Description = focus.ScheduleItem.Notes
	} else {
		card.Description = fmt.Sprintf("Estimated %d minutes to reinforce %s.",
			lesson.EstimatedMinutes, s.categoryLabel(lesson))
	}

	if focus.ScheduleItem != nil {
		timeRange := s.Derivation.FormatTimeRange(focus.ScheduleItem.Time, lesson.EstimatedMinutes)
		card.Status = fmt.Sprintf("%s · %s • %s", focus.Label, timeRange, s.subjectLabel(lesson.Subject))
	} else {
		card.Status = focus.Label
	}

	record := state.Lessons[lesson.ID]
	if record != nil && record.Completed {
		card.BarPercent = 100
	}
	return card
}

func (s *DashboardService) categoryLabel(lesson *catalog.Lesson) string {
	if subject := s.Catalog.Subject(lesson.Subject); subject != nil {
		for _, category := range subject.Categories {
			if category.ID == lesson.Category {
				return category.Label
			}
		}
	}
	return "key skills"
}

func (s *DashboardService) buildAchievements(state *model.ProgressState) []string {
	recent := s.Derivation.RecentAchievements(state, 3)
	messages := make([]string, 0, len(recent))
	for _, achievement := range recent {
		if formatted := s.Derivation.FormatAchievement(achievement.HistoryEntry); formatted != "" {
			messages = append(messages, formatted)
		}
	}
	if len(messages) == 0 {
		messages = append(messages, emptyAchievementsMessage)
	}
	return messages
}

func (s *DashboardService) buildSpotlight(state *model.ProgressState) *SpotlightCard {
	attention := s.Derivation.SubjectNeedingAttention(state)
	if attention == nil {
		return nil
	}
	subject := s.Catalog.Subject(attention.SubjectID)
	if subject == nil {
		return nil
	}
	return &SpotlightCard{
		Title:   fmt.Sprintf("%s Spotlight", subject.Label),
		Message: fmt.Sprintf("You're %d%% complete. Focus on %s", attention.Progress.Percent, subject.Description),
		Percent: attention.Progress.Percent,
	}
}
