package controller

import (
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// GoalController 学科目标的读写接口
type GoalController struct {
	progressScope
}

func NewGoalController(progress *service.ProgressService, users *service.UserService) *GoalController {
	return &GoalController{
		progressScope: progressScope{Progress: progress, Users: users},
	}
}

// GetGoal godoc
// @Summary 学科目标
// @Tags 目标
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "学科 ID"
// @Param studentId query int false "学生 ID"
// @Success 200 {object} util.Response{data=model.SubjectGoal}
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/goals/{subjectId} [get]
func (c *GoalController) GetGoal(ctx *gin.Context) {
	subjectID := ctx.Param("subjectId")
	if !c.Progress.Catalog.HasSubject(subjectID) {
		util.NotFound(ctx)
		return
	}
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Progress.GetSubjectGoal(key, subjectID))
}

// GoalRequest 目标设定请求，targetPercent 传 null 表示清除目标百分比
// swagger:model GoalRequest
type GoalRequest struct {
	TargetPercent *float64 `json:"targetPercent"`
	Notes         string   `json:"notes"`
}

// SetGoal godoc
// @Summary 设定学科目标
// @Description 整体替换目标百分比与备注
// @Tags 目标
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param subjectId path string true "学科 ID"
// @Param studentId query int false "学生 ID"
// @Param body body GoalRequest true "目标内容"
// @Success 200 {object} util.Response{data=model.SubjectGoal}
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 404 {object} util.Response "学科不存在"
// @Router /api/goals/{subjectId} [put]
func (c *GoalController) SetGoal(ctx *gin.Context) {
	subjectID := ctx.Param("subjectId")
	if !c.Progress.Catalog.HasSubject(subjectID) {
		util.NotFound(ctx)
		return
	}

	var req GoalRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	c.Progress.SetSubjectGoal(key, subjectID, model.SubjectGoal{
		TargetPercent: req.TargetPercent,
		Notes:         req.Notes,
	})
	util.Success(ctx, c.Progress.GetSubjectGoal(key, subjectID))
}
