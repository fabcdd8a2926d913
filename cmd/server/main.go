package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/kladdkaka/internal/app"
	"github.com/shrimpsizemoose/kladdkaka/internal/handlers"
	"github.com/shrimpsizemoose/kladdkaka/internal/seed"
)

func main() {
	service, err := app.NewService("config.toml")
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	fixture, err := seed.DefaultFixture()
	if err != nil {
		logger.Error.Fatalf("Failed to build seed fixture: %v", err)
	}
	runner := seed.NewRunner(service.Store, service.Config.Seed.Generation)
	seeded, err := runner.Boot(fixture)
	if err != nil {
		logger.Error.Fatalf("Failed to seed baseline data: %v", err)
	}
	if seeded {
		logger.Info.Printf("Seeded baseline data for generation %q", service.Config.Seed.Generation)
	}

	panelHandler := handlers.NewPanelHandler(service)

	http.HandleFunc("POST /api/v1/login", panelHandler.HandleLogin)
	http.HandleFunc("GET /api/v1/courses", panelHandler.HandleListCourses)
	http.HandleFunc("POST /api/v1/courses", panelHandler.HandleSaveCourse)
	http.HandleFunc("POST /api/v1/courses/{course}/publish", panelHandler.HandlePublishCourse)
	http.HandleFunc("GET /api/v1/plans/{plan}/scores", panelHandler.HandlePlanScores)
	http.HandleFunc("POST /api/v1/plans/{plan}/scores/recompute", panelHandler.HandleRecomputePlan)
	http.HandleFunc("GET /api/v1/audit", panelHandler.HandleAuditLogs)
	http.HandleFunc("DELETE /api/v1/audit", panelHandler.HandleClearAuditLogs)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting kladdkaka server on %s", service.Config.Server.Port)
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Kladdkaka server failed: %v", err)
	}
}
