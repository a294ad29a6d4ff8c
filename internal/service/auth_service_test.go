package service

import (
	"testing"
	"time"

	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/model"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/internal/util"
	"homeschool_lms_backend/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()
	logger.Log = zap.NewNop()

	db, err := gorm.Open(sqlite.Open("file:authtest?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Role{}, &model.User{}))

	role := model.Role{
		Name:        model.Student,
		Description: "Access to assigned courses, progress tracking, and daily schedule.",
		Permissions: []byte(`["view:student-dashboard","view:lessons","track:progress"]`),
	}
	require.NoError(t, db.FirstOrCreate(&role, model.Role{Name: model.Student}).Error)

	hashed, err := bcrypt.GenerateFromPassword([]byte("StudentPass123!"), bcrypt.MinCost)
	require.NoError(t, err)
	user := model.User{
		Username:    "student1",
		Email:       "student@example.com",
		DisplayName: "Mia Avery",
		Password:    string(hashed),
		RoleID:      role.ID,
	}
	require.NoError(t, db.FirstOrCreate(&user, model.User{Username: "student1"}).Error)

	cfg := &config.Config{}
	cfg.JWT.Secret = "test-secret-test-secret-test-secret!"
	cfg.JWT.ExpireTime = time.Hour

	return NewAuthService(repository.NewUserRepository(db), repository.NewRoleRepository(db), cfg)
}

func TestLoginByUsernameAndEmail(t *testing.T) {
	svc := newTestAuthService(t)

	for _, identifier := range []string{"student1", "student@example.com"} {
		token, user, err := svc.Login(identifier, "StudentPass123!", "")
		require.NoError(t, err, "identifier %q", identifier)
		assert.NotEmpty(t, token)
		require.NotNil(t, user)
		assert.Equal(t, model.Student, user.Role)
		assert.Contains(t, user.Permissions, "track:progress")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestAuthService(t)

	_, _, err := svc.Login("student1", "WrongPass", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLoginUnknownIdentifier(t *testing.T) {
	svc := newTestAuthService(t)

	_, _, err := svc.Login("nobody", "whatever", "")
	assert.ErrorIs(t, err, util.ErrInvalidCredentials)
}

func TestLoginExpectedRoleMismatch(t *testing.T) {
	svc := newTestAuthService(t)

	_, user, err := svc.Login("student1", "StudentPass123!", model.Teacher)
	assert.ErrorIs(t, err, util.ErrRoleMismatch)
	// 角色不匹配时仍返回用户信息，供上层拼装提示文案
	require.NotNil(t, user)
	assert.Equal(t, model.Student, user.Role)
}

func TestLoginExpectedRoleMatch(t *testing.T) {
	svc := newTestAuthService(t)

	token, _, err := svc.Login("student1", "StudentPass123!", model.Student)
	require.NoError(t, err)

	claims, err := util.ParseJWT(token, "test-secret-test-secret-test-secret!")
	require.NoError(t, err)
	assert.Equal(t, model.Student, claims.Role)
	assert.Contains(t, claims.Permissions, "view:lessons")
}
