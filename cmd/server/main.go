package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/askarov/gamerater/internal/config"
	"github.com/askarov/gamerater/internal/database"
	"github.com/askarov/gamerater/internal/handlers"
	"github.com/askarov/gamerater/internal/repository"
	"github.com/askarov/gamerater/internal/services"
	"github.com/askarov/gamerater/pkg/email"
	"github.com/askarov/gamerater/pkg/logger"
	"github.com/askarov/gamerater/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatalf("Index creation error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	emailTokenRepo := repository.NewTokenRepository(db, "email_tokens")
	resetTokenRepo := repository.NewTokenRepository(db, "reset_tokens")
	reviewRepo := repository.NewReviewRepository(db)
	gameRepo := repository.NewGameRepository(db)

	mailSender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPSender, cfg.SMTPPassword)

	// --- Services ---
	userService := services.NewUserService(userRepo, emailTokenRepo, resetTokenRepo, mailSender, cfg.FrontendURL)
	socialService := services.NewSocialService(userRepo, gameRepo, reviewRepo, emailTokenRepo, resetTokenRepo)
	reviewService := services.NewReviewService(reviewRepo, gameRepo)
	gameService := services.NewGameService(gameRepo)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService, cfg)
	userHandler := handlers.NewUserHandler(userService, socialService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	gameHandler := handlers.NewGameHandler(gameService)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public auth routes
	router.HandleFunc("/auth/register", authHandler.RegisterHandler).Methods("POST")
	router.HandleFunc("/auth/login", authHandler.LoginHandler).Methods("POST")
	router.HandleFunc("/auth/verify/{token}", authHandler.VerifyEmailHandler).Methods("GET")
	router.HandleFunc("/auth/forgot-password", authHandler.ForgotPasswordHandler).Methods("POST")
	router.HandleFunc("/auth/reset-password/{token}", authHandler.ResetPasswordHandler).Methods("POST")

	// Protected auth routes (profile, follow graph, playlist)
	protectedAuthRoutes := router.PathPrefix("/auth").Subrouter()
	protectedAuthRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedAuthRoutes.HandleFunc("/profile/me", userHandler.MeHandler).Methods("GET")
	protectedAuthRoutes.HandleFunc("/profile/edit", userHandler.EditProfileHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/profile/delete", userHandler.DeleteProfileHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/follow/{targetId}", userHandler.FollowHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/unfollow/{targetId}", userHandler.UnfollowHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/watch/{gameId}", userHandler.WatchHandler).Methods("POST")
	protectedAuthRoutes.HandleFunc("/watch/{gameId}", userHandler.UnwatchHandler).Methods("DELETE")

	// User routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/me", userHandler.MeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("", userHandler.SearchUsersHandler).Methods("GET")

	// Review routes
	router.HandleFunc("/reviews/game/{id}", reviewHandler.GetGameReviewsHandler).Methods("GET")
	router.HandleFunc("/reviews/user/{id}", reviewHandler.GetUserReviewsHandler).Methods("GET")

	protectedReviewRoutes := router.PathPrefix("/reviews").Subrouter()
	protectedReviewRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedReviewRoutes.HandleFunc("", reviewHandler.CreateReviewHandler).Methods("POST")
	protectedReviewRoutes.HandleFunc("/{id}", reviewHandler.UpdateReviewHandler).Methods("PUT")
	protectedReviewRoutes.HandleFunc("/{id}", reviewHandler.DeleteReviewHandler).Methods("DELETE")

	// Game routes
	router.HandleFunc("/games", gameHandler.SearchGamesHandler).Methods("GET")
	router.HandleFunc("/games/{id}", gameHandler.GetGameHandler).Methods("GET")

	protectedGameRoutes := router.PathPrefix("/games").Subrouter()
	protectedGameRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedGameRoutes.HandleFunc("", gameHandler.CreateGameHandler).Methods("POST")

	// Health check
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"OK"}`))
	}).Methods("GET")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
