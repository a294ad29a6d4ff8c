package controller

import (
	"time"

	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	progressScope
	Dashboard *service.DashboardService
}

func NewDashboardController(progress *service.ProgressService, users *service.UserService, dashboard *service.DashboardService) *DashboardController {
	return &DashboardController{
		progressScope: progressScope{Progress: progress, Users: users},
		Dashboard:     dashboard,
	}
}

// GetDashboard godoc
// @Summary 学习仪表盘
// @Description 一次返回总进度、出勤、各级卡片、今日重点、成就与今日课表
// @Tags 仪表盘
// @Produce json
// @Security BearerAuth
// @Param studentId query int false "学生 ID（监护人/教师查看学生数据时使用）"
// @Success 200 {object} util.Response{data=service.Dashboard}
// @Failure 401 {object} util.Response "未认证"
// @Failure 403 {object} util.Response "无权访问该学生"
// @Router /api/dashboard [get]
func (c *DashboardController) GetDashboard(ctx *gin.Context) {
	key, ok := c.resolveStorageKey(ctx)
	if !ok {
		return
	}
	util.Success(ctx, c.Dashboard.BuildDashboard(key, time.Now()))
}
