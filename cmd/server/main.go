package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appConfig "github.com/aetherbuildapp/aetherbuild/config"
	"github.com/aetherbuildapp/aetherbuild/internal/ai"
	"github.com/aetherbuildapp/aetherbuild/internal/api"
	"github.com/aetherbuildapp/aetherbuild/internal/db"
	"github.com/aetherbuildapp/aetherbuild/internal/middleware"
	"github.com/aetherbuildapp/aetherbuild/internal/services"
	"github.com/aetherbuildapp/aetherbuild/internal/worker"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appConfig.Load()

	// Initialize PostgreSQL client
	pgClient, err := db.NewPostgresClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pgClient.Close()

	schemaCtx, schemaCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgClient.EnsureSchema(schemaCtx); err != nil {
		schemaCancel()
		log.Fatalf("Failed to ensure database schema: %v", err)
	}
	schemaCancel()

	log.Println("Successfully connected to PostgreSQL database")

	// Initialize MongoDB client (published site store)
	mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer mongoCancel()

	mongoClient, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.MongoURL))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Printf("Error disconnecting MongoDB: %v", err)
		}
	}()

	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	log.Println("Successfully connected to MongoDB")

	// Initialize AWS S3 client
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AWSAccessKey,
			cfg.AWSSecretKey,
			"",
		)),
	)
	if err != nil {
		log.Fatalf("Failed to load AWS config: %v", err)
	}
	s3Client := s3.NewFromConfig(awsCfg)

	// Initialize Redis client (generation progress pub/sub). Optional.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("Failed to parse Redis URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	} else {
		log.Println("REDIS_URL not set, progress streaming disabled")
	}

	// Initialize Gemini client
	gemini, err := ai.NewGeminiClient(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create Gemini client: %v", err)
	}

	// Initialize services
	projectService := services.NewProjectService(pgClient)
	publishService := services.NewPublishService(mongoClient)
	uploadService := services.NewUploadService(s3Client, cfg)

	// Initialize worker
	siteGenerator := worker.NewSiteGenerator(gemini, gemini, projectService, redisClient)

	// Initialize the per-user engine registry and API handlers
	registry := api.NewSessionRegistry(cfg, gemini, gemini, gemini, gemini, uploadService, projectService)
	onboardingHandler := api.NewOnboardingHandler(registry, siteGenerator)
	builderHandler := api.NewBuilderHandler(registry, publishService, uploadService)
	progressHandler := api.NewProgressHandler(redisClient)
	publicHandler := api.NewPublicHandler(publishService)

	// Setup router
	r := mux.NewRouter()
	r.Use(middleware.CORSMiddleware)

	// Public routes (no auth required)
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/sites/{projectId}", publicHandler.GetSite).Methods("GET", "OPTIONS")

	// Protected routes
	apiRoutes := r.PathPrefix("/api/v1").Subrouter()
	apiRoutes.Use(middleware.AuthMiddleware(cfg))

	// Onboarding routes
	apiRoutes.HandleFunc("/onboarding", onboardingHandler.GetState).Methods("GET", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/message", onboardingHandler.SendMessage).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/option", onboardingHandler.SelectOption).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/skip", onboardingHandler.Skip).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/back", onboardingHandler.GoBack).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/restart", onboardingHandler.Restart).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/logo", onboardingHandler.UploadLogo).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/onboarding/generate", onboardingHandler.StartGeneration).Methods("POST", "OPTIONS")

	// Builder routes
	apiRoutes.HandleFunc("/builder", builderHandler.GetProject).Methods("GET", "OPTIONS")
	apiRoutes.HandleFunc("/builder/languages", builderHandler.GetLanguages).Methods("GET", "OPTIONS")
	apiRoutes.HandleFunc("/builder/undo", builderHandler.Undo).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/redo", builderHandler.Redo).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/language", builderHandler.SetLanguage).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/publish", builderHandler.PublishSite).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/upload", builderHandler.UploadImage).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections", builderHandler.AddSection).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/reorder", builderHandler.ReorderSections).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}", builderHandler.RemoveSection).Methods("DELETE", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}/roll", builderHandler.RollSection).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}/variant", builderHandler.SetVariant).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}/styles", builderHandler.UpdateStyles).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}/translate", builderHandler.TranslateSection).Methods("POST", "OPTIONS")
	apiRoutes.HandleFunc("/builder/sections/{id}/image", builderHandler.GenerateImage).Methods("POST", "OPTIONS")

	// SSE route for generation progress
	apiRoutes.HandleFunc("/generate/progress/{projectId}", progressHandler.Stream).Methods("GET", "OPTIONS")

	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, `{"status":"healthy"}`)
}
