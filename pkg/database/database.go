package database

import (
	"encoding/json"
	"log"

	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.ProgressSnapshot{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	if err := seedRoles(db); err != nil {
		return nil, err
	}
	if err := seedUsers(db); err != nil {
		return nil, err
	}

	return db, nil
}

func permissionsJSON(perms ...string) datatypes.JSON {
	raw, _ := json.Marshal(perms)
	return raw
}

// seedRoles 首次启动写入四个内置角色及其权限范围
func seedRoles(db *gorm.DB) error {
	var count int64
	db.Model(&model.Role{}).Count(&count)
	if count > 0 {
		return nil
	}

	roles := []model.Role{
		{
			Name:        model.Student,
			Description: "Access to assigned courses, progress tracking, and daily schedule.",
			Permissions: permissionsJSON("view:student-dashboard", "view:lessons", "track:progress"),
		},
		{
			Name:        model.Parent,
			Description: "Oversight of linked students, goal setting, and scheduling controls.",
			Permissions: permissionsJSON("view:parent-dashboard", "manage:schedule", "manage:goals", "review:grades"),
		},
		{
			Name:        model.Teacher,
			Description: "Classroom level controls over assignments, pacing, and assessments.",
			Permissions: permissionsJSON("view:teacher-dashboard", "assign:lessons", "track:class-progress", "comment:feedback"),
		},
		{
			Name:        model.Admin,
			Description: "Organization-wide management of curriculum, roles, and compliance.",
			Permissions: permissionsJSON("view:admin-dashboard", "manage:users", "configure:curriculum", "audit:reports"),
		},
	}
	for i := range roles {
		if err := db.Create(&roles[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// seedUsers 首次启动写入演示账号，学生账号挂在监护人名下
func seedUsers(db *gorm.DB) error {
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count > 0 {
		return nil
	}

	roleID := func(name model.UserRole) uint {
		var role model.Role
		db.Where("name = ?", name).First(&role)
		return role.ID
	}

	hash := func(password string) string {
		hashed, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			log.Fatalf("failed to hash seed password: %v", err)
		}
		return string(hashed)
	}

	parent := model.User{
		Username:    "parent1",
		Email:       "parent@example.com",
		DisplayName: "Jordan Avery",
		Password:    hash("ParentPass123!"),
		RoleID:      roleID(model.Parent),
	}
	if err := db.Create(&parent).Error; err != nil {
		return err
	}

	users := []model.User{
		{
			Username:    "admin1",
			Email:       "admin@example.com",
			DisplayName: "District Admin",
			Password:    hash("AdminPass123!"),
			RoleID:      roleID(model.Admin),
		},
		{
			Username:    "teacher1",
			Email:       "teacher@example.com",
			DisplayName: "Ms. Carter",
			Password:    hash("TeacherPass123!"),
			RoleID:      roleID(model.Teacher),
		},
		{
			Username:    "student1",
			Email:       "student@example.com",
			DisplayName: "Mia Avery",
			Password:    hash("StudentPass123!"),
			RoleID:      roleID(model.Student),
			ParentID:    &parent.ID,
		},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
