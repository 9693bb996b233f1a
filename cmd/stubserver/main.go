// Command stubserver runs the development twin of the mall backend so the
// storefront client can be exercised without the real server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chungmin23/storefront/internal/stubapi"
	"github.com/chungmin23/storefront/pkg/logger"
)

func main() {
	var (
		port     = flag.Int("port", 8080, "HTTP listen port")
		seedFile = flag.String("seed-file", "", "YAML fixture for initial state (default: built-in seed)")
		secret   = flag.String("secret", "stub-secret", "HS256 signing secret for issued tokens")
		logLevel = flag.String("log-level", "info", "log level (debug, info, warn, error)")
	)
	flag.Parse()

	log := logger.New(*logLevel)
	slog.SetDefault(log)

	seed := stubapi.DefaultSeed()
	if *seedFile != "" {
		loaded, err := stubapi.LoadSeed(*seedFile)
		if err != nil {
			log.Error("failed to load seed file", "path", *seedFile, "error", err)
			os.Exit(1)
		}
		seed = loaded
	}

	server := stubapi.New(seed, *secret, log)

	addr := fmt.Sprintf(":%d", *port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Info("stub mall backend listening",
			"address", addr,
			"members", len(seed.Members),
			"products", len(seed.Products),
			"coupons", len(seed.Coupons),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped gracefully")
}
