package routes

import (
	"net/http"
	"time"

	"memo-registry/src/interface/handler"
	"memo-registry/src/middleware"
	"memo-registry/src/usecase"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Options configures the router
type Options struct {
	AllowOrigins []string
	Driver       string
	// Health はバックエンドの疎通確認。nil なら省略
	Health func() error
}

// SetupRoutes sets up all API routes
func SetupRoutes(r *gin.Engine, registry *usecase.Registry, logger *logrus.Logger, opts Options) {
	memoHandler := handler.NewMemoHandler(registry, logger)
	departmentHandler := handler.NewDepartmentHandler(registry, logger)
	viewHandler := handler.NewViewHandler(registry, logger)
	statsHandler := handler.NewStatsHandler(registry, logger)

	r.Use(middleware.LoggerMiddleware(logger))
	r.Use(middleware.CORSMiddleware(opts.AllowOrigins))

	// NoRouteハンドラー（404）
	r.NoRoute(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method":    c.Request.Method,
			"uri":       c.Request.RequestURI,
			"client_ip": c.ClientIP(),
		}).Warn("404: ルートが見つかりません")
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	})

	// NoMethodハンドラー（405）
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		logger.WithFields(logrus.Fields{
			"method": c.Request.Method,
			"uri":    c.Request.RequestURI,
		}).Warn("405: サポートされていないメソッド")
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "memo registry",
			"service": "memo-registry",
		})
	})

	// ヘルスチェック用のエンドポイント
	r.GET("/health", func(c *gin.Context) {
		status, code := "OK", http.StatusOK
		if opts.Health != nil {
			if err := opts.Health(); err != nil {
				logger.WithError(err).Warn("ストレージのヘルスチェックに失敗")
				status, code = "DEGRADED", http.StatusServiceUnavailable
			}
		}
		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().Format(time.RFC3339),
			"storage":   opts.Driver,
			"dirty":     registry.Dirty(),
		})
	})

	api := r.Group("/api")

	memos := api.Group("/memos")
	{
		memos.POST("", memoHandler.CreateMemo)                       // POST /api/memos
		memos.GET("", memoHandler.ListMemos)                         // GET /api/memos
		memos.GET("/:id", memoHandler.GetMemo)                       // GET /api/memos/:id
		memos.PUT("/:id", memoHandler.UpdateMemo)                    // PUT /api/memos/:id
		memos.DELETE("/:id", memoHandler.DeleteMemo)                 // DELETE /api/memos/:id?confirm=true
		memos.GET("/:id/attachment", memoHandler.DownloadAttachment) // GET /api/memos/:id/attachment
	}

	departments := api.Group("/departments")
	{
		departments.GET("", departmentHandler.ListDepartments)
		departments.POST("", departmentHandler.AddDepartment)
	}

	view := api.Group("/view")
	{
		view.GET("", viewHandler.GetView)
		view.DELETE("", viewHandler.ResetView)
		view.PUT("/filter", viewHandler.SetFilter)
		view.POST("/sort/:field", viewHandler.ToggleSort)
		view.PUT("/page/:page", viewHandler.SetPage)
	}

	stats := api.Group("/stats")
	{
		stats.GET("/departments", statsHandler.DepartmentStats)
		stats.GET("/timeline", statsHandler.Timeline)
	}
	api.GET("/dashboard", statsHandler.Dashboard)

	api.POST("/sync", memoHandler.Sync)
}
