package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/fadilmartias/cv-screener/internal/bootstrap"
	"github.com/fadilmartias/cv-screener/internal/config"
	"github.com/fadilmartias/cv-screener/internal/domain/fiber/handler"
	"github.com/fadilmartias/cv-screener/internal/logger"
	"github.com/fadilmartias/cv-screener/internal/middleware"
	"github.com/fadilmartias/cv-screener/internal/repository"
	"github.com/fadilmartias/cv-screener/internal/service"
	"github.com/fadilmartias/cv-screener/internal/usecase"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Could not load .env file")
	}

	appConfig := config.LoadAppConfig()
	zlog, err := logger.New(appConfig)
	if err != nil {
		log.Fatal(err)
	}
	defer zlog.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	screenerConfig := config.LoadScreenerConfig()
	campaignConfig := config.LoadCampaignConfig()

	app := fiber.New(fiber.Config{
		AppName:   appConfig.Name,
		BodyLimit: int(screenerConfig.MaxUploadBytes) + 64*1024,
		ErrorHandler: func(ctx *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError

			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}

			message := err.Error()
			if message == "" {
				message = "Internal Server Error"
			}

			return ctx.Status(code).JSON(fiber.Map{"success": false, "message": message})
		},
	})
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
	}))
	app.Use(recover.New(recover.Config{
		EnableStackTrace: !appConfig.IsProduction(),
	}))
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
	app.Use(pprof.New(pprof.Config{
		Next: func(c *fiber.Ctx) bool {
			return appConfig.IsProduction()
		},
	}))
	app.Use(healthcheck.New())
	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.RateLimiter(50, 1*time.Minute))

	var db *gorm.DB
	if campaignConfig.StatusStore == config.StorePostgres {
		db, err = bootstrap.ConnectDB(config.LoadDBConfig(), appConfig)
		if err != nil {
			zlog.Fatal("database unavailable", zap.Error(err))
		}
	}

	store, closer, err := bootstrap.OpenStatusStore(campaignConfig, db)
	if err != nil {
		zlog.Fatal("could not open status store", zap.Error(err))
	}
	defer closer.Close()

	screener := service.NewScreenerService(screenerConfig)
	extractor, err := bootstrap.NewExtractor(screenerConfig, screener)
	if err != nil {
		zlog.Fatal("extractor", zap.Error(err))
	}
	analyzer, err := bootstrap.NewAnalyzer(ctx, screenerConfig, config.LoadGeminiConfig(), screener, zlog)
	if err != nil {
		zlog.Fatal("analyzer", zap.Error(err))
	}

	var source bootstrap.RosterSource
	if db != nil {
		source = repository.NewCandidateRepository(db)
	}
	roster, err := bootstrap.LoadRoster(ctx, campaignConfig, source)
	if err != nil {
		zlog.Fatal("could not load roster", zap.Error(err))
	}

	feed := handler.NewEventFeed(200)
	observer := func(e usecase.Event) {
		feed.Observe(e)
		zlog.Debug("event", zap.String("kind", string(e.Kind)), zap.String("candidate", e.Candidate), zap.String("message", e.Message))
	}

	pipeline := usecase.NewUploadPipeline(extractor, analyzer, zlog, observer)
	campaign := usecase.NewCampaign(store, service.NewMailService(screenerConfig), usecase.CampaignOptions{
		Key:            campaignConfig.Key,
		MatchThreshold: campaignConfig.MatchThreshold,
	}, zlog, observer)
	campaign.Initialize(ctx, roster)

	handler.NewUploadHandler(pipeline, screenerConfig.MaxUploadBytes).RegisterRoutes(app)
	handler.NewCampaignHandler(campaign, zlog).RegisterRoutes(app)
	handler.NewEventHandler(feed).RegisterRoutes(app)

	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				zlog.Debug("runtime", zap.Int("goroutines", runtime.NumGoroutine()))
			}
		}
	}()

	go func() {
		<-ctx.Done()
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("shutdown", zap.Error(err))
		}
	}()

	zlog.Info("server running", zap.String("addr", appConfig.Port),
		zap.String("extractor", screenerConfig.ExtractorBackend),
		zap.String("analyzer", screenerConfig.AnalyzerBackend),
		zap.String("status_store", campaignConfig.StatusStore))
	if err := app.Listen(appConfig.Port); err != nil {
		zlog.Fatal("listen", zap.Error(err))
	}
}
