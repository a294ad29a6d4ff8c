package controller

import (
	"time"

	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ProgressController 学习进度的读写接口。所有操作按解析出的
// 存储键走整树加载与回写。
type ProgressController struct {
	progressScope
	Derivation *service.DerivationService
}

func NewProgressController(progress *service.ProgressService, users *service.UserService, derivation *service.DerivationService) *ProgressController {
	return &ProgressController{
		progressScope: progressScope{Progress: progress, Users: users},
		Derivation:    derivation,
	}
}

// GetState godoc
// @Summary 完整进度状态
// @Description 返回课程记录、完成历史、课表与学科目标的整棵状态树
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID（监护人/教师查看学生数据时使用）"
// @Success 200 {object} util.Response{data=model.ProgressState}
// @Failure 401 {object} util.Response "未认证"
// @Failure 403 {object} util.Response "无权访问该学生"
// @Router /api/progress [get]
func (c *ProgressController) GetState(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Progress.LoadState(key))
}

// GetOverall godoc
// @Summary 总体完成度
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=service.Completion}
// @Router /api/progress/overall [get]
func (c *ProgressController) GetOverall(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, c.Derivation.OverallProgress(state))
}

// GetSubjectProgress godoc
// @Summary 学科完成度
// @Description 可用 grade 查询参数限定年级
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path string true "学科 ID"
// @Param grade query string false "年级 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/progress/subjects/{id} [get]
func (c *ProgressController) GetSubjectProgress(ctx *gin.Context) {
	subjectID := ctx.Param("id")
	if !c.Progress.Catalog.HasSubject(subjectID) {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, gin.H{
		"subjectId": subjectID,
		"progress":  c.Derivation.SubjectProgress(state, subjectID, ctx.Query("grade")),
		"goal":      state.Goals[subjectID].Clone(),
	})
}

// GetCategoryProgress godoc
// @Summary 分类完成度
// @Description 某学科下某分类的完成情况，可用 grade 查询参数限定年级
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "学科 ID"
// @Param categoryId path string true "分类 ID"
// @Param grade query string false "年级 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=service.Completion}
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/progress/categories/{subjectId}/{categoryId} [get]
func (c *ProgressController) GetCategoryProgress(ctx *gin.Context) {
	subjectID := ctx.Param("subjectId")
	if !c.Progress.Catalog.HasSubject(subjectID) {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, c.Derivation.CategoryProgress(state, subjectID, ctx.Param("categoryId"), ctx.Query("grade")))
}

// GetGradeProgress godoc
// @Summary 年级完成度
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path string true "年级 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=service.Completion}
// @Failure 404 {object} util.Response "年级不存在"
// @Router /api/progress/grades/{id} [get]
func (c *ProgressController) GetGradeProgress(ctx *gin.Context) {
	gradeID := ctx.Param("id")
	if c.Progress.Catalog.Grade(gradeID) == nil {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, c.Derivation.GradeProgress(state, gradeID))
}

// GetAttendance godoc
// @Summary 出勤进度
// @Description 以总完成数折算的周出勤，封顶于目标天数
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=service.Attendance}
// @Router /api/progress/attendance [get]
func (c *ProgressController) GetAttendance(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, c.Derivation.AttendanceProgress(state, service.AttendanceGoalDays))
}

// GetFocus godoc
// @Summary 今日学习重点
// @Description 优先返回今天课表中第一个未完成的安排，否则回退到建议课程
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=service.FocusSuggestion}
// @Router /api/progress/focus [get]
func (c *ProgressController) GetFocus(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, c.Derivation.TodaysFocus(state, time.Now()))
}

// GetLessonMetrics godoc
// @Summary 单课学习记录
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=model.LessonRecord}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/lessons/{id} [get]
func (c *ProgressController) GetLessonMetrics(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if !c.Progress.Catalog.HasLesson(lessonID) {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Progress.GetLessonMetrics(key, lessonID))
}

// GetNextLesson godoc
// @Summary 下一节建议课程
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/progress/next-lesson [get]
func (c *ProgressController) GetNextLesson(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, gin.H{"lesson": c.Derivation.NextLesson(state)})
}

// GetAchievements godoc
// @Summary 最近成就
// @Description 最近三条完成历史的成就文案
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/progress/achievements [get]
func (c *ProgressController) GetAchievements(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	achievements := c.Derivation.RecentAchievements(state, 3)
	messages := make([]string, 0, len(achievements))
	for _, entry := range achievements {
		if formatted := c.Derivation.FormatAchievement(entry.HistoryEntry); formatted != "" {
			messages = append(messages, formatted)
		}
	}
	util.Success(ctx, gin.H{
		"achievements": achievements,
		"messages":     messages,
	})
}

// AttemptRequest 学习尝试上报
// swagger:model AttemptRequest
type AttemptRequest struct {
	Score      *float64 `json:"score"`
	DurationMs int64    `json:"durationMs"`
	Completed  bool     `json:"completed"`
}

// RecordAttempt godoc
// @Summary 上报学习尝试
// @Description 累加尝试次数与时长，更新分数，completed 为 true 时记完成
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程 ID"
// @Param studentId query int false "学生 ID"
// @Param body body AttemptRequest true "尝试数据"
// @Success 200 {object} util.Response{data=model.LessonRecord}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/lessons/{id}/attempts [post]
func (c *ProgressController) RecordAttempt(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if !c.Progress.Catalog.HasLesson(lessonID) {
		util.NotFound(ctx)
		return
	}

	var req AttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.RecordLessonAttempt(key, lessonID, service.AttemptDetails{
		Score:      req.Score,
		DurationMs: req.DurationMs,
		Completed:  req.Completed,
	})
	util.Success(ctx, c.Progress.GetLessonMetrics(key, lessonID))
}

// MarkComplete godoc
// @Summary 标记课程完成
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程 ID"
// @Param studentId query int false "学生 ID"
// @Param body body AttemptRequest false "可选的分数与时长"
// @Success 200 {object} util.Response{data=model.LessonRecord}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/lessons/{id}/complete [post]
func (c *ProgressController) MarkComplete(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if !c.Progress.Catalog.HasLesson(lessonID) {
		util.NotFound(ctx)
		return
	}

	var req AttemptRequest
	_ = ctx.ShouldBindJSON(&req)

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.MarkLessonComplete(key, lessonID, service.AttemptDetails{
		Score:      req.Score,
		DurationMs: req.DurationMs,
	})
	util.Success(ctx, c.Progress.GetLessonMetrics(key, lessonID))
}

// GradeRequest 教师手动评分，grade 传 null 表示清除
// swagger:model GradeRequest
type GradeRequest struct {
	Grade *float64 `json:"grade"`
}

// SetGrade godoc
// @Summary 课程评分
// @Description 教师或监护人为课程写入手动评分
// @Tags 进度
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程 ID"
// @Param studentId query int false "学生 ID"
// @Param body body GradeRequest true "评分"
// @Success 200 {object} util.Response{data=model.LessonRecord}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/lessons/{id}/grade [put]
func (c *ProgressController) SetGrade(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if !c.Progress.Catalog.HasLesson(lessonID) {
		util.NotFound(ctx)
		return
	}

	var req GradeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.SetLessonGrade(key, lessonID, req.Grade)
	util.Success(ctx, c.Progress.GetLessonMetrics(key, lessonID))
}

// ResetLesson godoc
// @Summary 重置单课进度
// @Description 课程记录回到初始状态并清除其完成历史
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param id path string true "课程 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/progress/lessons/{id} [delete]
func (c *ProgressController) ResetLesson(ctx *gin.Context) {
	lessonID := ctx.Param("id")
	if !c.Progress.Catalog.HasLesson(lessonID) {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.ResetLessonProgress(key, lessonID)
	util.Success(ctx, gin.H{"reset": lessonID})
}

// ResetAll godoc
// @Summary 重置全部进度
// @Description 整棵状态树回到默认：历史、课表与目标一并清空
// @Tags 进度
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response
// @Router /api/progress [delete]
func (c *ProgressController) ResetAll(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.ResetAllProgress(key)
	util.Success(ctx, gin.H{"reset": "all"})
}
