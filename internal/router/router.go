// Package router assembles the HTTP API from the ledger services.
package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"pitaka/internal/config"
	_ "pitaka/internal/docs" // Import swagger docs
	"pitaka/internal/events"
	"pitaka/internal/handlers"
	"pitaka/internal/lock"
	"pitaka/internal/middleware"
	"pitaka/internal/services"
	"pitaka/internal/store"
	"pitaka/internal/validator"
)

// Handlers are the route handlers mounted under /api/v1.
type Handlers struct {
	Allowances *handlers.AllowanceHandler
	Entries    *handlers.EntryHandler
	Goals      *handlers.GoalHandler
}

// NewHandlers wires the services over db. All services share one lock table
// so writes to an allowance are serialized across them.
func NewHandlers(cfg *config.Config, db *gorm.DB, publisher events.Publisher) Handlers {
	st := store.NewGormStore(db)
	locks := &lock.Keyed{}
	opts := []services.Option{services.WithPublisher(publisher)}
	if cfg.Location != nil {
		loc := cfg.Location
		opts = append(opts, services.WithClock(func() time.Time { return time.Now().In(loc) }))
	}

	return Handlers{
		Allowances: handlers.NewAllowanceHandler(services.NewAllowanceService(st, locks, opts...)),
		Entries:    handlers.NewEntryHandler(services.NewEntryService(st, locks, opts...), cfg.Location),
		Goals:      handlers.NewGoalHandler(services.NewGoalService(st, locks, opts...)),
	}
}

// Setup builds the Gin engine with middleware, docs, health check and the
// protected ledger routes.
func Setup(cfg *config.Config, h Handlers) *gin.Engine {
	validator.Register()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Protected routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret, cfg.JWTIssuer))

	allowances := v1.Group("/allowances")
	allowances.POST("", h.Allowances.RecordFunding)
	allowances.GET("", h.Allowances.ListAllowances)
	allowances.GET("/active", h.Allowances.GetActiveSummary)
	allowances.GET("/history", h.Allowances.GetHistory)
	allowances.GET("/:id", h.Allowances.GetAllowance)
	allowances.GET("/:id/summary", h.Allowances.GetSummary)
	allowances.PUT("/:id/top-up", h.Allowances.RecordTopUp)
	allowances.POST("/:id/expenses", h.Entries.RecordExpense)
	allowances.GET("/:id/entries", h.Entries.ListEntries)
	allowances.GET("/:id/categories", h.Entries.GetCategoryBreakdown)

	goals := v1.Group("/goals")
	goals.POST("", h.Goals.CreateGoal)
	goals.GET("", h.Goals.ListGoals)
	goals.GET("/:id", h.Goals.GetGoal)
	goals.GET("/:id/entries", h.Goals.GetGoalHistory)
	goals.POST("/:id/fund", h.Goals.FundGoal)
	goals.DELETE("/:id", h.Goals.DeleteGoal)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		c.AllowAllOrigins = true
	} else {
		c.AllowOrigins = origins
	}
	c.AddAllowHeaders("Authorization", "X-Request-ID")
	c.AddExposeHeaders("X-Request-ID")
	return c
}
