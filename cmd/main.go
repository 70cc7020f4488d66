package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"modular-rag-service/internal/ai"
	"modular-rag-service/internal/config"
	"modular-rag-service/internal/logger"
	"modular-rag-service/internal/telemetry"
	"modular-rag-service/middleware"
	"modular-rag-service/routes"
	"modular-rag-service/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logger.InitLogger(cfg)

	if cfg.TracingEnabled {
		shutdown, err := telemetry.InitTracer("modular-rag-service", cfg.OTLPEndpoint)
		if err != nil {
			log.Fatal("Failed to init tracer:", err)
		}
		defer shutdown()
	}

	metrics, err := telemetry.InitMetrics()
	if err != nil {
		log.Fatal("Failed to init metrics:", err)
	}

	// Connect to MongoDB
	mongoClient, err := config.ConnectMongoDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		mongoClient.Disconnect(ctx)
	}()
	db := mongoClient.Database(cfg.DBName)

	// Vector store
	vectorStore, err := services.NewChromemStore(cfg.VectorDBPath, cfg.VectorCollection)
	if err != nil {
		log.Fatal("Failed to open vector store:", err)
	}

	// Gemini clients
	embedder, err := ai.NewEmbeddingService(context.Background(), cfg)
	if err != nil {
		log.Fatal("Failed to create embedding service:", err)
	}
	defer embedder.Close()
	completion := ai.NewCompletionClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL, cfg.GeminiRPM, metrics)

	// Services
	chunker := services.NewChunkingService()
	pdfExtractor := services.NewPDFExtractor()
	ingestion := services.NewIngestionService(chunker, embedder, vectorStore, services.NewMongoChunkMetaStore(db), metrics)
	extractor := services.NewStructuredExtractor(completion.Complete, metrics)
	booking := services.NewBookingService(extractor, services.NewMongoBookingStore(db), metrics)

	// Initialize Gin router
	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	if cfg.TracingEnabled {
		router.Use(otelgin.Middleware("modular-rag-service"))
	}

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Requested-With"}
	router.Use(cors.New(corsConfig))

	// Rate limiting is optional: skip when Redis is not reachable
	if rdb, err := config.NewRedisClient(cfg); err != nil {
		logger.Warn("redis unavailable, rate limiting disabled", "error", err)
	} else {
		router.Use(middleware.RateLimitMiddleware(rdb, cfg))
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
	})

	// Setup routes
	routes.SetupIngestionRoutes(router, cfg, ingestion, pdfExtractor)
	routes.SetupChatRoutes(router, booking)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exited")
}
