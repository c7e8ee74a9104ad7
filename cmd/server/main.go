package main

import (
	"log"
	netHttp "net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"feepay-module/config"
	"feepay-module/db"
	"feepay-module/http"
	"feepay-module/logger"
	"feepay-module/services"
)

func main() {
	// Determine project root by searching upward for go.mod
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal("Error getting current working directory:", err)
	}

	absProjectRoot := findProjectRoot(cwd)
	if absProjectRoot == "" {
		log.Fatalf("Could not locate project root (go.mod) from %s", cwd)
	}

	if err := os.Chdir(absProjectRoot); err != nil {
		log.Fatal("Error changing to project root:", err)
	}
	logger.Info("Working directory set to project root: %s", absProjectRoot)

	// Load configuration
	config.LoadConfig()

	// Initialize Kafka producer (non-fatal)
	services.InitProducer()

	// Initialize database. A missing database degrades the service:
	// verification still answers, recording and admin APIs are disabled.
	if err := db.InitDB(); err != nil {
		logger.Warn("Database unavailable, payments will not be recorded: %v", err)
	}

	// Email worker: consumes email.send events and delivers over SMTP
	services.RegisterEmailProcessor(func(event map[string]interface{}) error {
		recipient, _ := event["recipient"].(string)
		subject, _ := event["subject"].(string)
		body, _ := event["body"].(string)
		attachment, _ := event["attachment"].(string)
		return services.SendEmailDirect(recipient, subject, body, attachment)
	})
	if err := services.InitConsumer(); err != nil {
		logger.Warn("Error initializing Kafka consumer: %v", err)
	}
	services.StartConsumer()

	// Setup routes
	http.SetupRoutes()

	// Set up graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		addr := ":" + config.AppConfig.ServerPort
		logger.Info("Server starting on %s", addr)
		log.Fatal(netHttp.ListenAndServe(addr, nil))
	}()

	// Wait for shutdown signal
	<-sigChan
	logger.Info("Shutdown signal received, stopping workers...")

	if err := services.StopConsumer(); err != nil {
		logger.Error("Error stopping Kafka consumer: %v", err)
	}
	if err := services.Close(); err != nil {
		logger.Error("Error closing Kafka producer: %v", err)
	}

	logger.Info("Server shutdown complete")
}

// findProjectRoot walks up from start and returns the first directory containing go.mod
func findProjectRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir || strings.HasSuffix(dir, ":\\") || parent == "" {
			break
		}
		dir = parent
	}
	return ""
}
