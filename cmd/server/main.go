package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignite/value-matrix/internal/api"
	"github.com/ignite/value-matrix/internal/config"
	"github.com/ignite/value-matrix/internal/matrix"
	"github.com/ignite/value-matrix/internal/store"
)

// checkPortAvailable verifies that the target port is not already in use.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	log.Println("╔════════════════════════════════════════════════════════════╗")
	log.Println("║  Sales Value Matrix Server (cmd/server/main.go)            ║")
	log.Println("║  Agency scoring, quadrant classification, chart rendering  ║")
	log.Println("╚════════════════════════════════════════════════════════════╝")

	// Load configuration
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if os.Getenv("REDIS_URL") != "" {
		log.Println("[config] REDIS_URL env override active")
	}

	// Pre-flight check: verify the target port is available
	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if port == 0 {
		port = 8051
	}
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	// Initialize the session store
	st, err := store.New(cfg.Store)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	if cfg.Store.Type == "redis" {
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := st.Ping(pingCtx); err != nil {
			log.Printf("Warning: Redis connection failed (%s): %v — falling back to in-memory sessions", cfg.Store.RedisURL, err)
			st.Close()
			st = store.NewMemory(cfg.Store.SessionTTL())
		} else {
			log.Printf("Redis connected: %s (sessions expire after %s)", cfg.Store.RedisURL, cfg.Store.SessionTTL())
		}
		pingCancel()
	}
	defer st.Close()

	// Initialize the scoring engine with configured defaults
	engine := matrix.NewEngine(api.EngineOptions(cfg.Matrix))
	log.Printf("Matrix engine ready: score threshold %.2f, stage threshold %.1f, scale max %g",
		cfg.Matrix.ScoreThreshold, cfg.Matrix.StageThreshold, cfg.Matrix.ScaleMax)

	// Initialize and start API server
	server := api.NewServer(cfg, st, engine)

	// Setup graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	log.Println("All services initialized — server is ready")

	<-done
	log.Println("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
