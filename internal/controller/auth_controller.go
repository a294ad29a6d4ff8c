package controller

import (
	"errors"
	"fmt"
	"net/http"

	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// LoginRequest 登录请求体，identifier 为用户名或邮箱
// swagger:model LoginRequest
type LoginRequest struct {
	Identifier string `json:"identifier" binding:"required"`
	Password   string `json:"password" binding:"required"`
	// ExpectedRole 登录面板期望的角色，不匹配时拒绝登录
	ExpectedRole string `json:"expectedRole"`
}

// Login godoc
// @Summary 用户登录
// @Description 用户名或邮箱登录，角色与登录面板不符时返回 403
// @Tags 认证
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "登录凭据"
// @Success 200 {object} util.Response{data=object} "登录成功，返回 token 与用户信息"
// @Failure 400 {object} util.Response "请求参数错误"
// @Failure 401 {object} util.Response "凭据无效"
// @Failure 403 {object} util.Response "角色不匹配"
// @Router /api/auth/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "Identifier and password are required.")
		return
	}

	token, user, err := c.AuthService.Login(req.Identifier, req.Password, model.UserRole(req.ExpectedRole))
	if err != nil {
		switch {
		case errors.Is(err, util.ErrInvalidCredentials):
			util.Error(ctx, http.StatusUnauthorized, "Invalid credentials.")
		case errors.Is(err, util.ErrRoleMismatch):
			util.Error(ctx, http.StatusForbidden,
				fmt.Sprintf("Account is registered as %s. Switch to the appropriate login panel.", user.Role))
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me godoc
// @Summary 当前用户
// @Description 根据 Bearer token 返回当前用户信息，用于刷新后恢复会话
// @Tags 认证
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=model.SanitizedUser}
// @Failure 401 {object} util.Response "未认证"
// @Router /api/auth/me [get]
func (c *AuthController) Me(ctx *gin.Context) {
	user := c.AuthService.GetCurrentUser(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}
	util.Success(ctx, gin.H{"user": user.Sanitize()})
}

// ListRoles godoc
// @Summary 角色列表
// @Description 公开接口，返回全部角色及其权限范围
// @Tags 认证
// @Produce  json
// @Success 200 {object} util.Response{data=object}
// @Router /api/roles [get]
func (c *AuthController) ListRoles(ctx *gin.Context) {
	roles, err := c.AuthService.ListRoles()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	type roleView struct {
		ID          uint     `json:"id"`
		Name        string   `json:"name"`
		Description string   `json:"description"`
		Permissions []string `json:"permissions"`
	}
	views := make([]roleView, 0, len(roles))
	for i := range roles {
		views = append(views, roleView{
			ID:          roles[i].ID,
			Name:        string(roles[i].Name),
			Description: roles[i].Description,
			Permissions: roles[i].PermissionList(),
		})
	}
	util.Success(ctx, gin.H{"roles": views})
}
