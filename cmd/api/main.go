//	@title			Docs Wallet API
//	@version		1.0
//	@description	Document-storage backend: authenticated image uploads with metadata tracking.
//
//	@host		localhost:5000
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT Bearer token. Format: **Bearer {token}**

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/docswallet/service/internal/auth"
	"github.com/docswallet/service/internal/config"
	"github.com/docswallet/service/internal/db"
	"github.com/docswallet/service/internal/image"
	appMiddleware "github.com/docswallet/service/internal/middleware"
	"github.com/docswallet/service/internal/storage"
	"github.com/docswallet/service/internal/token"
	"github.com/docswallet/service/internal/user"
	"github.com/docswallet/service/internal/work"

	_ "github.com/docswallet/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageBucket,
		cfg.StoragePublicBase,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	// Wire dependencies: repository → service → handler
	tokens := token.NewService(cfg.JWTSecret)
	authHandler := auth.NewHandler(tokens)

	userSvc := user.NewService(user.NewRepository(pool))
	userHandler := user.NewHandler(userSvc)

	imageSvc := image.NewService(image.NewRepository(pool), store)
	imageHandler := image.NewHandler(imageSvc)

	workSvc := work.NewService(work.NewRepository(pool))
	workHandler := work.NewHandler(workSvc)

	// Router
	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(appMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// Liveness
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Docs Wallet is running."))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Swagger UI — available at http://localhost:5000/swagger/
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Public endpoints
	r.Post("/jwt", authHandler.IssueToken)
	r.Post("/users", userHandler.Register)

	// Protected endpoints. Every mutation is scoped to the authenticated
	// owner, image deletion included.
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.RequireAuth(tokens))

		r.Get("/user", userHandler.GetMe)

		r.Post("/images", imageHandler.Upload)
		r.Get("/images", imageHandler.List)
		r.Delete("/images/{id}", imageHandler.Delete)

		r.Post("/works", workHandler.Create)
		r.Get("/works", workHandler.List)
		r.Delete("/works/{id}", workHandler.Delete)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine; wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Docs Wallet is running on port %s (env=%s)", cfg.Port, cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("forced shutdown: %v", err)
	}

	log.Println("server stopped")
}
