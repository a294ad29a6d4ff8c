package controller

import (
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// progressScope 进度数据的访问范围解析。学生只能操作自己的数据；
// 监护人可通过 studentId 操作名下学生；教师与管理员不受限制。
type progressScope struct {
	Progress *service.ProgressService
	Users    *service.UserService
}

// resolveStorageKey 按当前用户与可选 studentId 参数解析存储键。
// 解析失败时已写好响应，调用方直接 return 即可。
func (s *progressScope) resolveStorageKey(ctx *gin.Context) (string, bool) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return "", false
	}

	studentID := util.MustParseUint(ctx.Query("studentId"))
	if studentID == 0 || studentID == claims.UserID {
		userID := claims.UserID
		return s.Progress.StorageKey(&userID), true
	}

	switch claims.Role {
	case model.Teacher, model.Admin:
	case model.Parent:
		if !s.Users.IsLinkedChild(claims.UserID, studentID) {
			util.Forbidden(ctx)
			return "", false
		}
	default:
		util.Forbidden(ctx)
		return "", false
	}
	return s.Progress.StorageKey(&studentID), true
}
