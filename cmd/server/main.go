package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/codyseavey/footy-cards/backend/internal/api"
	"github.com/codyseavey/footy-cards/backend/internal/database"
	"github.com/codyseavey/footy-cards/backend/internal/services"
	"github.com/codyseavey/footy-cards/backend/internal/store"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	// Database path
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = "./footy_cards.db"
	}

	// Initialize database
	if err := database.Initialize(dbPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	clock := clockwork.NewRealClock()

	// Restore the collection from its last persisted snapshot
	snapshots := database.NewSnapshotStore(database.GetDB())
	collection := store.NewCollection(snapshots)
	log.Printf("Loaded %d cards from collection snapshot", collection.Len())

	// Initialize Gemini-backed scouting
	geminiService := services.NewGeminiService()
	scoutService := services.NewScoutService(geminiService, geminiService, clock)

	// Initialize value tracker for daily collection value snapshots
	valueTracker := services.NewValueTracker(collection, clock)

	// Create a cancellable context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start value tracker in background
	go valueTracker.Start(ctx)

	// Setup router
	router := api.SetupRouter(scoutService, collection, valueTracker)

	// Get port from environment
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server for graceful shutdown
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Cancel the context to stop the value tracker
	cancel()

	// Give outstanding requests a deadline to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
