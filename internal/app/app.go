package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"homeschool_lms_backend/internal/catalog"
	"homeschool_lms_backend/internal/config"
	"homeschool_lms_backend/internal/controller"
	"homeschool_lms_backend/internal/repository"
	"homeschool_lms_backend/internal/service"
	"homeschool_lms_backend/pkg/database"
	"homeschool_lms_backend/pkg/logger"
	"homeschool_lms_backend/pkg/monitoring"
	"homeschool_lms_backend/pkg/security"
	"homeschool_lms_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Catalog         *catalog.Catalog
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	role     *repository.RoleRepository
	progress *repository.ProgressRepository
}

type services struct {
	auth       *service.AuthService
	user       *service.UserService
	progress   *service.ProgressService
	derivation *service.DerivationService
	dashboard  *service.DashboardService
}

type controllers struct {
	auth      *controller.AuthController
	user      *controller.UserController
	catalog   *controller.CatalogController
	progress  *controller.ProgressController
	schedule  *controller.ScheduleController
	goal      *controller.GoalController
	dashboard *controller.DashboardController
	health    *controller.HealthController
}

// RegisterConfigCallback 配置热更新回调，configwatcher 触发时逐个调用
func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		role:     repository.NewRoleRepository(db),
		progress: repository.NewProgressRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, cat *catalog.Catalog) *services {
	progress := service.NewProgressService(repos.progress, cat, cfg)
	derivation := service.NewDerivationService(cat)
	return &services{
		auth:       service.NewAuthService(repos.user, repos.role, cfg),
		user:       service.NewUserService(repos.user),
		progress:   progress,
		derivation: derivation,
		dashboard:  service.NewDashboardService(progress, derivation, cat),
	}
}

func (a *App) initControllers(s *services, cat *catalog.Catalog, db *gorm.DB) *controllers {
	return &controllers{
		auth:      controller.NewAuthController(s.auth),
		user:      controller.NewUserController(s.user),
		catalog:   controller.NewCatalogController(cat),
		progress:  controller.NewProgressController(s.progress, s.user, s.derivation),
		schedule:  controller.NewScheduleController(s.progress, s.user, s.derivation),
		goal:      controller.NewGoalController(s.progress, s.user),
		dashboard: controller.NewDashboardController(s.progress, s.user, s.dashboard),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 600
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	cat := catalog.Default()

	app := &App{
		Config:  cfg,
		DB:      db,
		Catalog: cat,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, cat)
	controllers := app.initControllers(services, cat, db)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("homeschool-lms", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
