package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"go.uber.org/zap"

	"github.com/mamadbah2/farmhub/internal/catalog"
	"github.com/mamadbah2/farmhub/internal/config"
	"github.com/mamadbah2/farmhub/internal/repository/mongodb"
	"github.com/mamadbah2/farmhub/internal/repository/sheets"
	"github.com/mamadbah2/farmhub/internal/scheduler"
	"github.com/mamadbah2/farmhub/internal/server/handlers"
	"github.com/mamadbah2/farmhub/internal/server/middleware"
	"github.com/mamadbah2/farmhub/internal/server/router"
	advisorsvc "github.com/mamadbah2/farmhub/internal/service/advisor"
	cropsvc "github.com/mamadbah2/farmhub/internal/service/crops"
	diseasesvc "github.com/mamadbah2/farmhub/internal/service/diseases"
	landsvc "github.com/mamadbah2/farmhub/internal/service/lands"
	marketsvc "github.com/mamadbah2/farmhub/internal/service/market"
	plotsvc "github.com/mamadbah2/farmhub/internal/service/plots"
	reportingsvc "github.com/mamadbah2/farmhub/internal/service/reporting"
	tasksvc "github.com/mamadbah2/farmhub/internal/service/tasks"
	usersvc "github.com/mamadbah2/farmhub/internal/service/users"
	weathersvc "github.com/mamadbah2/farmhub/internal/service/weather"
	"github.com/mamadbah2/farmhub/pkg/clients/anthropic"
	"github.com/mamadbah2/farmhub/pkg/clients/detection"
	"github.com/mamadbah2/farmhub/pkg/clients/weather"
	"github.com/mamadbah2/farmhub/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New(cfg.Server.LogLevel))
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	loc, err := time.LoadLocation(cfg.Reporting.Timezone)
	if err != nil {
		baseLogger.Fatal("invalid timezone", zap.Error(err))
	}

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	mongoRepo, err := mongodb.NewMongoDBRepository(startCtx, cfg.MongoDB, baseLogger.Named("repo.mongodb"))
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(startCtx); err != nil {
		baseLogger.Fatal("failed to ensure mongodb indexes", zap.Error(err))
	}
	defer func() {
		if err := mongoRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	var digestSheet reportingsvc.SheetWriter
	if cfg.Sheets.Enabled() {
		writer, err := sheets.NewWriter(startCtx, cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets writer", zap.Error(err))
		}
		digestSheet = writer
	} else {
		baseLogger.Warn("google sheets not configured, daily digest export disabled")
	}
	cancelStart()

	// Keep the interfaces nil when a provider is missing so services fall back.
	var llm advisorsvc.LLM
	if cfg.AI.AnthropicKey != "" {
		llm = anthropic.NewClient(cfg.AI)
		baseLogger.Info("anthropic ai client enabled", zap.String("model", cfg.AI.Model))
	} else {
		baseLogger.Warn("anthropic api key missing, ai endpoints will serve fallbacks")
	}

	var detector diseasesvc.Detector
	if cfg.Detection.BaseURL != "" {
		detector = detection.NewClient(cfg.Detection)
	} else {
		baseLogger.Warn("detection service url missing, image detection disabled")
	}

	if cfg.Weather.APIKey == "" {
		baseLogger.Warn("weather api key missing, weather endpoints will fail")
	}

	cat := catalog.Default()

	userSvc := usersvc.NewService(mongoRepo.Users(), baseLogger.Named("svc.users"))
	landSvc := landsvc.NewService(mongoRepo.Lands(), mongoRepo.Users(), baseLogger.Named("svc.lands"))
	plotSvc := plotsvc.NewService(mongoRepo.Plots(), mongoRepo.Lands(), baseLogger.Named("svc.plots"))
	cropSvc := cropsvc.NewService(mongoRepo.Crops(), mongoRepo.Lands(), mongoRepo.Plots(), cat, baseLogger.Named("svc.crops"))
	taskSvc := tasksvc.NewService(mongoRepo.Tasks(), mongoRepo.Crops(), baseLogger.Named("svc.tasks"))
	diseaseSvc := diseasesvc.NewService(mongoRepo.Diseases(), mongoRepo.Crops(), detector, baseLogger.Named("svc.diseases"))
	marketSvc := marketsvc.NewService(mongoRepo.MarketPrices(), baseLogger.Named("svc.market"))
	weatherSvc := weathersvc.NewService(weather.NewClient(cfg.Weather), baseLogger.Named("svc.weather"))
	advisorSvc := advisorsvc.NewService(llm, cat, baseLogger.Named("svc.advisor"))
	reportingSvc := reportingsvc.NewService(mongoRepo.Crops(), mongoRepo.Tasks(), mongoRepo.Diseases(), digestSheet, loc, baseLogger.Named("svc.reporting"))

	engine := router.New(router.Handlers{
		Users:    handlers.NewUserHandler(userSvc, baseLogger.Named("handlers.users")),
		Lands:    handlers.NewLandHandler(landSvc, plotSvc, baseLogger.Named("handlers.lands")),
		Crops:    handlers.NewCropHandler(cropSvc, reportingSvc, baseLogger.Named("handlers.crops")),
		Tasks:    handlers.NewTaskHandler(taskSvc, baseLogger.Named("handlers.tasks")),
		Diseases: handlers.NewDiseaseHandler(diseaseSvc, baseLogger.Named("handlers.diseases")),
		Market:   handlers.NewMarketHandler(marketSvc, baseLogger.Named("handlers.market")),
		Weather:  handlers.NewWeatherHandler(weatherSvc, baseLogger.Named("handlers.weather")),
		AI:       handlers.NewAIHandler(advisorSvc, baseLogger.Named("handlers.ai")),
	}, middleware.NewMetrics(), mongoRepo, baseLogger.Named("router"))

	sched, err := scheduler.NewScheduler(cfg.Reporting, reportingSvc, baseLogger.Named("scheduler"))
	if err != nil {
		baseLogger.Fatal("failed to init scheduler", zap.Error(err))
	}
	if err := sched.Start(); err != nil {
		baseLogger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}

// writeTimeout leaves room for the slowest upstream call plus the response.
func writeTimeout(cfg *config.Config) time.Duration {
	const headroom = 15 * time.Second
	longest := anthropic.RequestTimeout
	if cfg.Detection.Timeout > longest {
		longest = cfg.Detection.Timeout
	}
	return longest + headroom
}
