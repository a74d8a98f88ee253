package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"todoapp/internal/server"
	db "todoapp/repository/db"
	inmemory "todoapp/repository/inmemory"
)

func main() {
	log.Println("Todo API service starting...")

	cfg := server.ReadConfig()

	if err := db.Migration(cfg.DBStr, cfg.MigratePath); err != nil {
		log.Println("[WARN] Failed to apply migrations:", err)
	} else {
		log.Println("[SUCCESS] Migrations applied")
	}

	var userRepo server.UserRepository
	var todoRepo server.TodoRepository

	dbStorage, err := db.NewStorage(cfg.DBStr)
	if err != nil {
		log.Println("[WARN] Database unreachable, falling back to in-memory storage:", err)
		inmem := inmemory.NewStorage()
		userRepo = inmem
		todoRepo = inmem
	} else {
		userRepo = dbStorage
		todoRepo = dbStorage
	}

	api := server.NewTodoAPI(userRepo, todoRepo, cfg)
	if api == nil {
		log.Fatal("[ERROR] Failed to initialize the API")
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		log.Printf("Service listening on %s:%d", cfg.Addr, cfg.Port)
		if err := api.Start(); err != nil {
			serverErr <- err
		}
	}()

	select {
	case sig := <-sigChan:
		log.Printf("[INFO] Received signal %v, starting graceful shutdown...", sig)

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := api.Shutdown(shutdownCtx); err != nil {
			log.Printf("[ERROR] Graceful shutdown failed: %v", err)
		} else {
			log.Println("[SUCCESS] Graceful shutdown complete")
		}

	case err := <-serverErr:
		log.Printf("[ERROR] Server error: %v", err)
	}

	log.Println("Service stopped")
}
