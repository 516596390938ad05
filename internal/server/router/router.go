package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/server/handlers"
	"github.com/mamadbah2/farmhub/internal/server/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers groups the resource handlers mounted under /api.
type Handlers struct {
	Users    *handlers.UserHandler
	Lands    *handlers.LandHandler
	Crops    *handlers.CropHandler
	Tasks    *handlers.TaskHandler
	Diseases *handlers.DiseaseHandler
	Market   *handlers.MarketHandler
	Weather  *handlers.WeatherHandler
	AI       *handlers.AIHandler
}

// New wires the Gin engine with required routes and middlewares. db may be
// nil, in which case /healthz only reports the process is up.
func New(h Handlers, metrics *middleware.Metrics, db Pinger, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.MaxMultipartMemory = handlers.MaxImageBytes
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Logger(logger))
	if metrics != nil {
		r.Use(metrics.Middleware())
		r.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	r.GET("/healthz", healthz(db))

	api := r.Group("/api")

	users := api.Group("/users")
	users.POST("", h.Users.Create)
	users.GET("/firebase/:uid", h.Users.GetByUID)
	users.PUT("/:uid", h.Users.Update)

	lands := api.Group("/lands")
	lands.POST("", h.Lands.Create)
	lands.GET("/user/:uid", h.Lands.ListByUser)
	lands.GET("/:id", h.Lands.Get)
	lands.PUT("/:id", h.Lands.Update)
	lands.DELETE("/:id", h.Lands.Delete)

	plots := api.Group("/plots")
	plots.POST("", h.Lands.DividePlots)
	plots.GET("/land/:landId", h.Lands.ListPlots)
	plots.GET("/:id", h.Lands.GetPlot)
	plots.PUT("/:id", h.Lands.UpdatePlot)
	plots.DELETE("/:id", h.Lands.DeletePlot)

	crops := api.Group("/crops")
	crops.POST("", h.Crops.Create)
	crops.GET("/land/:landId", h.Crops.ListByLand)
	crops.GET("/details/:id", h.Crops.Details)
	crops.GET("/export/:uid", h.Crops.Export)
	crops.GET("/:uid", h.Crops.ListByUser)
	crops.PUT("/:id", h.Crops.Update)
	crops.PUT("/:id/harvest", h.Crops.Harvest)
	crops.PUT("/:id/stage", h.Crops.SetStage)
	crops.DELETE("/:id", h.Crops.Delete)

	tasks := api.Group("/tasks")
	tasks.POST("", h.Tasks.Create)
	tasks.GET("/crop/:cropId", h.Tasks.ListByCrop)
	tasks.GET("/user/:uid", h.Tasks.ListByUser)
	tasks.PUT("/:id", h.Tasks.Update)
	tasks.PUT("/:id/complete", h.Tasks.Complete)
	tasks.DELETE("/:id", h.Tasks.Delete)

	diseases := api.Group("/diseases")
	diseases.POST("", h.Diseases.Create)
	diseases.POST("/detect", h.Diseases.Detect)
	diseases.GET("/crop/:cropId", h.Diseases.ListByCrop)
	diseases.GET("/user/:uid", h.Diseases.ListByUser)
	diseases.PUT("/:id", h.Diseases.Update)
	diseases.PUT("/:id/status", h.Diseases.UpdateStatus)
	diseases.DELETE("/:id", h.Diseases.Delete)

	market := api.Group("/market")
	market.GET("/prices/:cropName", h.Market.Prices)
	market.GET("/best-markets/:cropName", h.Market.BestMarkets)

	weather := api.Group("/weather")
	weather.GET("/current", h.Weather.Current)
	weather.GET("/forecast", h.Weather.Forecast)

	ai := api.Group("/ai")
	ai.POST("/crop-recommendations", h.AI.CropRecommendations)
	ai.POST("/ask", h.AI.Ask)
	ai.POST("/pesticide-recommendations", h.AI.PesticideRecommendations)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "route not found"})
	})

	logger.Info("router initialized", zap.Int("routes", len(r.Routes())))
	return r
}

func healthz(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
