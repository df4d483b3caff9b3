package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/agrimart/configs"
	"github.com/maheshrc27/agrimart/internal/api/handlers"
	"github.com/maheshrc27/agrimart/internal/api/middleware"
	job "github.com/maheshrc27/agrimart/internal/jobs"
	"github.com/maheshrc27/agrimart/internal/queue"
	"github.com/maheshrc27/agrimart/internal/repository"
	"github.com/maheshrc27/agrimart/internal/service"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	listingRepo := repository.NewListingRepository(db)
	reelRepo := repository.NewReelRepository(db)
	toolRepo := repository.NewToolRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)

	stager, err := service.NewStager(cfg.StagingDir)
	if err != nil {
		log.Fatalf("Failed to set up staging directory: %v", err)
	}

	r2Service := service.NewR2Service(*cfg)
	mediaService := service.NewMediaService(r2Service, stager, queue.NewEnqueuer(client))
	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	listingService := service.NewListingService(db, listingRepo, mediaAssetRepo, mediaService)
	reelService := service.NewReelService(db, reelRepo, mediaAssetRepo, mediaService)
	toolService := service.NewToolService(db, toolRepo, mediaAssetRepo, mediaService)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Post("/register", auth.Register)
	app.Post("/login", auth.Login)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	listing := handlers.NewListingHandler(listingService)
	api.Post("/listings", listing.Create)
	api.Get("/listings", listing.List)
	api.Get("/listings/:id", listing.GetByID)
	api.Put("/listings/:id", listing.Update)
	api.Delete("/listings/:id", listing.Delete)

	reel := handlers.NewReelHandler(reelService)
	api.Post("/reels", reel.Create)
	api.Get("/reels", reel.List)
	api.Get("/reels/:id", reel.GetByID)
	api.Put("/reels/:id", reel.Update)
	api.Delete("/reels/:id", reel.Delete)
	api.Post("/reels/:id/like", reel.Like)
	api.Post("/reels/:id/comment", reel.Comment)

	tool := handlers.NewToolHandler(toolService)
	api.Post("/tools", tool.Create)
	api.Get("/tools", tool.List)
	api.Get("/tools/:id", tool.GetByID)
	api.Put("/tools/:id", tool.Update)
	api.Delete("/tools/:id", tool.Delete)

	// cron jobs
	sweepJob := job.NewStagingSweepJob(stager, cfg.StagingTTL)

	c := cron.New()
	c.AddFunc("@every 1h0m0s", sweepJob.Sweep)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		worker := queue.NewWorker(r2Service, client)
		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeReclaimAsset, worker.HandleReclaimAssetTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
