package controller

import (
	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CatalogController 课程目录只读接口，数据来自内置目录
type CatalogController struct {
	Catalog *catalog.Catalog
}

func NewCatalogController(cat *catalog.Catalog) *CatalogController {
	return &CatalogController{Catalog: cat}
}

// GetCatalog godoc
// @Summary 完整课程目录
// @Description 返回学科、年级与课程的完整目录
// @Tags 目录
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/catalog [get]
func (c *CatalogController) GetCatalog(ctx *gin.Context) {
	util.Success(ctx, gin.H{
		"subjects": c.Catalog.Subjects,
		"grades":   c.Catalog.Grades,
		"lessons":  c.Catalog.Lessons,
	})
}

// ListSubjects godoc
// @Summary 学科列表
// @Tags 目录
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/catalog/subjects [get]
func (c *CatalogController) ListSubjects(ctx *gin.Context) {
	util.Success(ctx, gin.H{"subjects": c.Catalog.Subjects})
}

// ListGrades godoc
// @Summary 年级列表
// @Tags 目录
// @Produce json
// @Success 200 {object} util.Response{data=object}
// @Router /api/catalog/grades [get]
func (c *CatalogController) ListGrades(ctx *gin.Context) {
	util.Success(ctx, gin.H{"grades": c.Catalog.Grades})
}

// ListLessons godoc
// @Summary 课程列表
// @Description 可按 subject、grade 查询参数过滤
// @Tags 目录
// @Produce json
// @Param subject query string false "学科 ID"
// @Param grade query string false "年级 ID"
// @Success 200 {object} util.Response{data=object}
// @Router /api/catalog/lessons [get]
func (c *CatalogController) ListLessons(ctx *gin.Context) {
	subject := ctx.Query("subject")
	grade := ctx.Query("grade")

	lessons := make([]catalog.Lesson, 0, len(c.Catalog.Lessons))
	for _, lesson := range c.Catalog.Lessons {
		if subject != "" && lesson.Subject != subject {
			continue
		}
		if grade != "" && lesson.Grade != grade {
			continue
		}
		lessons = append(lessons, lesson)
	}
	util.Success(ctx, gin.H{"lessons": lessons})
}

// GetLesson godoc
// @Summary 单课详情
// @Tags 目录
// @Produce json
// @Param id path string true "课程 ID"
// @Success 200 {object} util.Response{data=object}
// @Failure 404 {object} util.Response "课程不存在"
// @Router /api/catalog/lessons/{id} [get]
func (c *CatalogController) GetLesson(ctx *gin.Context) {
	lesson := c.Catalog.Lesson(ctx.Param("id"))
	if lesson == nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, gin.H{"lesson": lesson})
}
