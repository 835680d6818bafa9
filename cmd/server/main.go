/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the attendance penalty engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Wire the engine (policy cache, orchestrator, notifier)
  4. Configure HTTP router and daily scheduler
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port      HTTP server port (default: 8080)
  -db        SQLite database path (default: attendance.db)
             Use ":memory:" for in-memory database
  -hr        Comma-separated HR notification recipients
  -run-hour  Local hour for the daily batch pass (default: 2)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Stop the scheduler
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/attendance.db"

  # Run with in-memory database and HR recipients
  ./server -db=":memory:" -hr="hr@example.com,ops@example.com"

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Daily batch trigger
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/warp/attendance-engine/api"
	"github.com/warp/attendance-engine/engine"
	"github.com/warp/attendance-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "attendance.db", "SQLite database path")
	hrList := flag.String("hr", "", "Comma-separated HR notification recipients")
	runHour := flag.Int("run-hour", 2, "Local hour for the daily batch pass")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the engine
	policies := engine.NewCachedPolicyStore(store)
	notifier := engine.NewLogNotifier()
	orch := engine.NewOrchestrator(policies, store, store, notifier)
	if *hrList != "" {
		orch.HRRecipients = strings.Split(*hrList, ",")
		orch.Applicator.HRRecipients = orch.HRRecipients
	}

	// Initialize handler and scheduler
	handler := api.NewHandler(store, policies, orch)
	handler.Runs = store

	scheduler := api.NewDailyScheduler(orch)
	scheduler.Runs = store
	scheduler.RunAtHour = *runHour
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
