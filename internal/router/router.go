package router

import (
	"time"

	"warungpos/internal/config"
	"warungpos/internal/handler"
	"warungpos/internal/middleware"
	"warungpos/internal/model"
	"warungpos/internal/repository"
	"warungpos/internal/service"
	"warungpos/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP

	// ── Repositories ─────────────────────────────────────────────────────────
	userRepo := repository.NewUserRepository(db)
	stockRepo := repository.NewStockRepository(db)
	shiftRepo := repository.NewShiftRepository(db)
	saleRepo := repository.NewSaleRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpirationHours, cfg.JWTRefreshHours)
	stockSvc := service.NewStockService(stockRepo, rdb, time.Duration(cfg.StockCacheTTLSecs)*time.Second)
	shiftSvc := service.NewShiftService(shiftRepo, saleRepo, dispatcher)
	saleSvc := service.NewSaleService(saleRepo, stockRepo, shiftSvc, rdb)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	stockH := handler.NewStockHandler(stockSvc)
	shiftH := handler.NewShiftHandler(shiftSvc)
	salesH := handler.NewSalesHandler(saleSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", handler.Health(db, rdb))

	// Auth (public)
	auth := r.Group("/v1/auth")
	{
		auth.POST("/login", middleware.LoginRateLimiter(), authH.Login)
		auth.POST("/refresh", authH.Refresh)
	}

	// Protected routes
	jwtMW := middleware.JWTAuth(cfg.JWTSecret)
	anyStaff := middleware.RequireRole(model.RoleCashier, model.RoleSupervisor, model.RoleOwner)
	backOffice := middleware.RequireRole(model.RoleSupervisor, model.RoleOwner)

	v1 := r.Group("/v1", jwtMW)
	{
		// Stock ledger
		v1.GET("/stock", anyStaff, stockH.CurrentQuantity)
		v1.POST("/stock/movements", backOffice, stockH.ApplyMovement)
		v1.GET("/stock/movements", anyStaff, stockH.ListMovements)

		// Shift sessions
		shifts := v1.Group("/shifts")
		{
			shifts.POST("", anyStaff, shiftH.Open)
			shifts.GET("/active", anyStaff, shiftH.Active)
			shifts.GET("/history", backOffice, shiftH.History)
			shifts.GET("/:id/summary", anyStaff, shiftH.Summary)
			shifts.POST("/:id/close", anyStaff, shiftH.Close)
		}

		// Sales
		v1.POST("/sales", anyStaff, salesH.Record)
		v1.GET("/sales/:id", anyStaff, salesH.Get)

		// User management — owner only
		users := v1.Group("/users", middleware.RequireRole(model.RoleOwner))
		{
			users.POST("", authH.CreateUser)
			users.GET("", authH.ListUsers)
			users.PUT("/:id", authH.UpdateUser)
			users.DELETE("/:id", authH.DeactivateUser)
			users.PATCH("/:id/reactivate", authH.ReactivateUser)
		}
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
