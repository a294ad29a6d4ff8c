package controller

import (
	"time"

	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// ScheduleController 周课表的读写接口。查询对任意已认证用户开放，
// 变更由路由层限定给监护人与教师。
type ScheduleController struct {
	progressScope
	Derivation *service.DerivationService
}

func NewScheduleController(progress *service.ProgressService, users *service.UserService, derivation *service.DerivationService) *ScheduleController {
	return &ScheduleController{
		progressScope: progressScope{Progress: progress, Users: users},
		Derivation:    derivation,
	}
}

// GetWeekly godoc
// @Summary 整周课表
// @Description 按周一到周日分组，组内按时间排序并附课程信息
// @Tags 课表
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/schedule [get]
func (c *ScheduleController) GetWeekly(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	util.Success(ctx, gin.H{"week": c.Derivation.WeeklySchedule(state)})
}

// GetToday godoc
// @Summary 今日课表
// @Tags 课表
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/schedule/today [get]
func (c *ScheduleController) GetToday(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	state := c.Progress.LoadState(key)
	items := c.Derivation.TodaysSchedule(state, time.Now())
	resp := gin.H{"items": items}
	if len(items) == 0 {
		resp["message"] = "No scheduled lessons today. Add items from the parent dashboard."
	}
	util.Success(ctx, resp)
}

// ScheduleItemRequest 新增课表项请求
// swagger:model ScheduleItemRequest
type ScheduleItemRequest struct {
	LessonID string `json:"lessonId" binding:"required"`
	Day      string `json:"day"`
	Time     string `json:"time"`
	Notes    string `json:"notes"`
}

// AddItem godoc
// @Summary 新增课表项
// @Description 星期默认 monday，时间默认 09:00
// @Tags 课表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID"
// @Param body body ScheduleItemRequest true "课表项"
// @Success 201 {object} util.Response{data=model.ScheduleItem}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/schedule [post]
func (c *ScheduleController) AddItem(ctx *gin.Context) {
	var req ScheduleItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	item := c.Progress.AddScheduleItem(key, service.ScheduleItemInput{
		LessonID: req.LessonID,
		Day:      req.Day,
		Time:     req.Time,
		Notes:    req.Notes,
	})
	if item == nil {
		util.NotFound(ctx)
		return
	}
	util.Created(ctx, item)
}

// ScheduleItemPatch 课表项部分更新，缺省字段保持原值
// swagger:model ScheduleItemPatch
type ScheduleItemPatch struct {
	LessonID *string `json:"lessonId"`
	Day      *string `json:"day"`
	Time     *string `json:"time"`
	Notes    *string `json:"notes"`
}

// UpdateItem godoc
// @Summary 更新课表项
// @Tags 课表
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "课表项 ID"
// @Param studentId query int false "学生 ID"
// @Param body body ScheduleItemPatch true "更新内容"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "请求参数错误"
// @Router /api/schedule/{id} [patch]
func (c *ScheduleController) UpdateItem(ctx *gin.Context) {
	var req ScheduleItemPatch
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.UpdateScheduleItem(key, ctx.Param("id"), service.ScheduleItemUpdate{
		LessonID: req.LessonID,
		Day:      req.Day,
		Time:     req.Time,
		Notes:    req.Notes,
	})
	util.Success(ctx, gin.H{"updated": ctx.Param("id")})
}

// RemoveItem godoc
// @Summary 删除课表项
// @Tags 课表
// @Produce json
// @Security BearerAuth
// @Param id path string true "课表项 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response
// @Router /api/schedule/{id} [delete]
func (c *ScheduleController) RemoveItem(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.RemoveScheduleItem(key, ctx.Param("id"))
	util.Success(ctx, gin.H{"removed": ctx.Param("id")})
}
