// Command storefront is a terminal front end for the mall backend: product
// browsing, cart management, coupon redemption, checkout and order history,
// plus a few admin operations for accounts carrying the ADMIN role.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/chungmin23/storefront/internal/api"
	"github.com/chungmin23/storefront/internal/config"
	"github.com/chungmin23/storefront/internal/storage"
	"github.com/chungmin23/storefront/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)

	store, err := storage.NewFile(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open state file: %v\n", err)
		os.Exit(1)
	}

	client := api.New(cfg.API.BaseURL, time.Duration(cfg.API.Timeout)*time.Second, store, log)

	app := newApp(client, store, log)
	if err := app.run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
