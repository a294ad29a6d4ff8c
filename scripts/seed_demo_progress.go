// 手动写入演示进度数据脚本
//
// 为演示学生账号（student1）生成一份有完成记录、课表与目标的
// 进度快照，方便前端联调与演示环境初始化。重复执行会覆盖旧快照。
//
// 用法: go run scripts/seed_demo_progress.go

package main

import (
	"log"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/pkg/database"
	"homeschool_lms_backend/pkg/logger"
)

func main() {
	// 与服务端走同一套配置加载，保证存储键前缀等默认值一致
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	student, err := userRepo.FindByIdentifier("student1")
	if err != nil {
		log.Fatalf("找不到演示学生账号: %v", err)
	}

	cat := catalog.Default()
	progress := service.NewProgressService(repository.NewProgressRepository(db), cat, cfg)
	key := progress.StorageKey(&student.ID)

	log.Println("写入演示进度数据...")

	progress.ResetAllProgress(key)

	score1 := 80.0
	progress.MarkLessonComplete(key, "math1", service.AttemptDetails{Score: &score1, DurationMs: 6 * 60 * 1000})
	score2 := 95.0
	progress.MarkLessonComplete(key, "math2", service.AttemptDetails{Score: &score2, DurationMs: 5 * 60 * 1000})
	progress.RecordLessonAttempt(key, "english1", service.AttemptDetails{DurationMs: 3 * 60 * 1000})

	progress.AddScheduleItem(key, service.ScheduleItemInput{
		LessonID: "english1",
		Day:      "monday",
		Time:     "09:30",
		Notes:    "Read the story together first.",
	})
	progress.AddScheduleItem(key, service.ScheduleItemInput{
		LessonID: "science1",
		Day:      "wednesday",
		Time:     "10:00",
	})

	target := 85.0
	progress.SetSubjectGoal(key, "math", model.SubjectGoal{
		TargetPercent: &target,
		Notes:         "Finish counting unit this month.",
	})

	log.Println("完成！")
}
