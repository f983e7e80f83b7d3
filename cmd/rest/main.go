package main

import (
	"context"
	"log"

	"recall-be/internal/bootstrap"
	"recall-be/internal/config"
	"recall-be/internal/server"
	"recall-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)
	defer container.WorkspaceService.Shutdown()

	// 3. Start Background Consumer
	if err := container.ConsumerService.Consume(context.Background()); err != nil {
		log.Fatalf("Failed to start decision consumer: %v", err)
	}

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
