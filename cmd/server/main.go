package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"bucketlist/internal/auth"
	"bucketlist/internal/config"
	svc "bucketlist/internal/domain/services/bucketlist"
	"bucketlist/internal/events"
	"bucketlist/internal/handler"
	"bucketlist/internal/handler/sse"
	"bucketlist/internal/imagehost"
	"bucketlist/internal/middleware"
	"bucketlist/internal/repository"
	authsvc "bucketlist/internal/service/auth"
	"bucketlist/internal/service/bucketlist"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	var logOutput io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to set up log file: %v", err)
		}
		defer logFile.Close()
		logOutput = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger) // Set as default logger

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"store", cfg.Store,
	)

	ctx := context.Background()

	// Create JWT verifier for the identity provider
	if cfg.JWKSURL == "" {
		log.Fatalf("JWKS_URL is required")
	}
	jwtVerifier, err := auth.NewJWTVerifier(ctx, cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Document store
	store, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("Failed to open document store: %v", err)
	}
	defer closeStore()

	// Image host (optional: without credentials uploads are rejected)
	var images svc.ImageHost
	if cfg.S3AccessKey != "" && cfg.S3SecretKey != "" {
		policy, err := imagehost.DefaultPolicy()
		if err != nil {
			log.Fatalf("Failed to load upload policy: %v", err)
		}
		host, err := imagehost.NewS3Host(ctx, cfg, policy, logger)
		if err != nil {
			log.Fatalf("Failed to create image host: %v", err)
		}
		images = host
		logger.Info("image host configured", "bucket", cfg.S3Bucket)
	} else {
		logger.Warn("S3 credentials not set, photo uploads are disabled")
	}

	// Change feed for connected clients
	bus := events.NewBus(logger)

	// Synchronization core
	registry := bucketlist.NewSessionRegistry(bucketlist.Dependencies{
		Loader:        bucketlist.NewLoader(store, logger),
		Items:         bucketlist.NewItemMutator(store, logger),
		Comments:      bucketlist.NewCommentMutator(store, cfg.MaxWriteRetries, logger),
		Images:        images,
		Authorizer:    authsvc.NewOwnerBasedAuthorizer(),
		Publisher:     bus,
		Logger:        logger,
		RemoteTimeout: cfg.RemoteTimeout,
	})

	// Create handlers
	itemHandler := handler.NewItemHandler(registry, logger)
	commentHandler := handler.NewCommentHandler(registry, logger)
	uploadHandler := handler.NewUploadHandler(registry, logger)
	sessionHandler := handler.NewSessionHandler(registry, logger)
	eventsHandler := handler.NewEventsHandler(bus, sse.DefaultConfig(), logger)

	// Setup router
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.Health(bus))

	// Item routes
	mux.HandleFunc("GET /api/items", itemHandler.List)
	mux.HandleFunc("POST /api/items", itemHandler.Create)
	mux.HandleFunc("PATCH /api/items/{id}", itemHandler.Update)
	mux.HandleFunc("DELETE /api/items/{id}", itemHandler.Delete)
	mux.HandleFunc("POST /api/items/{id}/complete", itemHandler.Complete)
	mux.HandleFunc("DELETE /api/items/{id}/complete", itemHandler.Reopen)
	mux.HandleFunc("POST /api/items/{id}/photo", itemHandler.AttachPhoto)
	mux.HandleFunc("PUT /api/items/{id}/photo", itemHandler.SetPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/photo", itemHandler.DetachPhoto)

	// Comment routes
	mux.HandleFunc("POST /api/items/{id}/comments", commentHandler.Add)
	mux.HandleFunc("PATCH /api/items/{id}/comments/{cid}", commentHandler.Edit)
	mux.HandleFunc("DELETE /api/items/{id}/comments/{cid}", commentHandler.Remove)
	mux.HandleFunc("POST /api/items/{id}/comments/{cid}/photo", commentHandler.AttachPhoto)
	mux.HandleFunc("DELETE /api/items/{id}/comments/{cid}/photo", commentHandler.DetachPhoto)

	// Pending photo uploads
	mux.HandleFunc("POST /api/uploads", uploadHandler.Upload)

	// Change stream
	mux.HandleFunc("GET /api/events", eventsHandler.Stream) // SSE streaming endpoint

	// Session routes
	mux.HandleFunc("GET /api/session", sessionHandler.Get)
	mux.HandleFunc("DELETE /api/session", sessionHandler.Delete)

	// Build middleware chain
	var handler http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Auth → Recovery → RequestLogger → Routes
	// Recovery sits inside Auth so a panic is logged with the actor and route.
	handler = middleware.RequestLogger(logger)(handler)
	handler = middleware.Recovery(logger)(handler)
	handler = middleware.AuthMiddleware(jwtVerifier, logger)(handler)

	// CORS - Must be before auth to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization", "Last-Event-ID"},
		AllowCredentials: true,
	})
	handler = corsHandler.Handler(handler)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler,
		ReadTimeout:  30 * time.Second, // Photo uploads need longer than JSON bodies
		WriteTimeout: 0,                // Disabled to allow long-lived SSE streams
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
