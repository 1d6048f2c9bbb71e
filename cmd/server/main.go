// File: cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/solent-ai/genchat/internal/config"
	"github.com/solent-ai/genchat/internal/domain"
	"github.com/solent-ai/genchat/internal/handlers"
	"github.com/solent-ai/genchat/internal/middleware"
	"github.com/solent-ai/genchat/internal/repository/conversation"
	"github.com/solent-ai/genchat/internal/repository/message"
	"github.com/solent-ai/genchat/internal/repository/user"
	"github.com/solent-ai/genchat/internal/services"
	"github.com/solent-ai/genchat/internal/services/ai"
)

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func main() {
	cfg := config.Load()
	logger := services.NewLogger("genchat")

	db, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		log.Fatalf("DB Error: %v", err)
	}
	if err := db.AutoMigrate(&domain.User{}, &domain.Conversation{}, &domain.Message{}); err != nil {
		log.Fatalf("DB Migration Error: %v", err)
	}

	// --- Repositories ---
	userRepo := user.NewUserRepository(db)
	conversationRepo := conversation.NewConversationRepository(db)
	messageRepo := message.NewMessageRepository(db)

	// --- Services ---
	aiConfig := ai.DefaultConfig()
	aiConfig.APIKey = cfg.AIAPIKey
	aiConfig.BaseURL = cfg.AIBaseURL
	aiConfig.Model = cfg.AIModel
	aiConfig.Timeout = time.Duration(cfg.AITimeoutSeconds) * time.Second

	aiService, err := ai.NewService(aiConfig, logger)
	if err != nil {
		log.Fatalf("Failed to initialize AI service: %v", err)
	}

	chatService, err := services.NewChatService(conversationRepo, messageRepo, aiService, logger)
	if err != nil {
		log.Fatalf("Failed to initialize chat service: %v", err)
	}
	userService := services.NewUserService(userRepo, cfg.JWTSecretKey, logger)

	// --- Handlers ---
	authHandler := handlers.NewAuthHandler(userService)
	chatHandler := handlers.NewChatHandler(chatService)

	// --- Router Setup ---
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(corsMiddleware)
	r.Use(middleware.RecoverPanic(logger))
	r.Use(middleware.Logging(logger))

	// --- Public Routes ---
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}).Methods("GET")
	r.HandleFunc("/api/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/api/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/api/logout", authHandler.Logout).Methods("POST")

	// --- Protected Routes ---
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.NewJWTMiddleware(userService, logger))
	api.HandleFunc("/profile", authHandler.GetProfile).Methods("GET")
	api.HandleFunc("/profile", authHandler.UpdateProfile).Methods("PUT")
	api.HandleFunc("/conversations", chatHandler.ListConversations).Methods("GET")
	api.HandleFunc("/conversations", chatHandler.CreateConversation).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.GetMessages).Methods("GET")
	api.HandleFunc("/conversations/{id:[0-9]+}/messages", chatHandler.SendMessage).Methods("POST")
	api.HandleFunc("/conversations/{id:[0-9]+}", chatHandler.DeleteConversation).Methods("DELETE")
	api.HandleFunc("/messages", chatHandler.SendMessageLoose).Methods("POST")

	// --- Server Configuration ---
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	logger.Info("server starting", "port", cfg.ServerPort, "environment", cfg.Environment)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server startup failed: %v", err)
		}
	}()

	// --- Graceful Shutdown ---
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	logger.Info("server stopped")
}
