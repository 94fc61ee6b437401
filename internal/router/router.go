package router

import (
	"net/http"
	"time"

	"github.com/GymAurCode/in-ven-tory/internal/apierror"
	"github.com/GymAurCode/in-ven-tory/internal/config"
	"github.com/GymAurCode/in-ven-tory/internal/dto"
	"github.com/GymAurCode/in-ven-tory/internal/handler"
	"github.com/GymAurCode/in-ven-tory/internal/infra"
	"github.com/GymAurCode/in-ven-tory/internal/middleware"
	"github.com/GymAurCode/in-ven-tory/internal/repository"
	"github.com/GymAurCode/in-ven-tory/internal/service"
	"github.com/GymAurCode/in-ven-tory/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
// rdb may be nil: the stats cache then always misses and no jobs are queued.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, queueCB *infra.CircuitBreaker) *gin.Engine {
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
	r.Use(middleware.RateLimiter(1000, time.Minute))

	// ── Repositories ─────────────────────────────────────────────────────────
	catalog := repository.NewProductRepository(db)
	ledger := repository.NewLedgerStore(db)
	users := repository.NewUserRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	statsCache := infra.NewViewCache[dto.SalesStatsResponse](rdb, cfg.StatsCacheTTL())
	dispatcher := worker.NewDispatcher(rdb, queueCB)

	authSvc := service.NewAuthService(users, cfg)
	saleSvc := service.NewSaleService(catalog, ledger, dispatcher, statsCache)
	statsSvc := service.NewStatsService(catalog, ledger, statsCache)

	// ── Handlers ─────────────────────────────────────────────────────────────
	authH := handler.NewAuthHandler(authSvc)
	salesH := handler.NewSalesHandler(saleSvc, statsSvc, cfg.BusinessName)

	// ── Routes ───────────────────────────────────────────────────────────────
	api := r.Group("/api")
	api.GET("/health", handler.Health(db, rdb, queueCB))
	api.POST("/auth/login", middleware.LoginRateLimiter(), authH.Login)

	sales := api.Group("/sales",
		middleware.JWTAuth(cfg.JWTSecret),
		middleware.RequireRole(service.RoleOwner, service.RoleStaff),
	)
	{
		sales.GET("", salesH.ListSales)
		sales.GET("/stats", salesH.GetStats)
		sales.GET("/products", salesH.ProductsForSale)
		sales.GET("/product/:productId", salesH.ListByProduct)
		sales.POST("", salesH.RecordSale)
		sales.GET("/:id", salesH.GetSale)
		sales.GET("/:id/receipt", salesH.Receipt)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, apierror.WithCode(apierror.CodeNotFound, "Route not found"))
	})

	return r
}
