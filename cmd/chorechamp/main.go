package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwhite/chorechamp/internal/database"
	"github.com/mwhite/chorechamp/internal/logging"
	"github.com/mwhite/chorechamp/internal/server"
	"github.com/mwhite/chorechamp/internal/suggest"
)

func main() {
	logger := logging.Setup(os.Getenv("CHORECHAMP_LOG_LEVEL"))

	port := os.Getenv("CHORECHAMP_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CHORECHAMP_DB_PATH")
	if dbPath == "" {
		dbPath = "chorechamp.db"
	}

	db, err := database.Open(dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	suggestSvc := suggest.NewService(suggest.Config{
		APIKey: os.Getenv("CHORECHAMP_GEMINI_API_KEY"),
		Model:  os.Getenv("CHORECHAMP_GEMINI_MODEL"),
	}, logger.With("component", "suggest"))

	srv := server.New(db, suggestSvc, logger)

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		fmt.Printf("ChoreChamp running at http://localhost:%s\n", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
