// cmd/watcher runs a headless page: a sync coordinator that follows the
// shared store through the bus relay and logs what it sees. Handy for
// watching cross-process propagation during development.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/app"
	"github.com/shrimpsizemoose/kladdkaka/internal/store"
	"github.com/shrimpsizemoose/kladdkaka/internal/syncer"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	watched := []string{"courses", "scores", "audit_logs"}
	coord := syncer.New(
		service.Store,
		service.Bus,
		watched,
		func(view map[string][]store.Document) {
			for _, col := range watched {
				logger.Info.Printf("%s: %d records", col, len(view[col]))
			}
		},
		service.Config.SyncInterval(),
	)
	coord.Start()
	defer coord.Stop()
	coord.Request("startup")

	logger.Info.Printf("Watching %v as page %s", watched, coord.ID())

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
