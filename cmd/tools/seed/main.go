// main.go - demo data seeding tool
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"raporbot/internal"
	"raporbot/internal/seeder"
)

func main() {
	rowCount := flag.Int("rows", 5000, "approximate content stat rows per brand")
	flag.Parse()

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to create app: %v", err)
	}
	defer app.DBManager.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := seeder.NewSeeder(app.DBManager.GetConnection(), app.Logger, *rowCount)
	if err := s.Run(ctx); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}
