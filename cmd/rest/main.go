package main

import (
	"context"
	"log"

	"unimind-be/internal/bootstrap"
	"unimind-be/internal/config"
	"unimind-be/internal/server"
	"unimind-be/internal/tracer"
	"unimind-be/pkg/database"
)

func main() {
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	cfg := config.Load()

	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	if err := database.Migrate(gormDB); err != nil {
		log.Panicf("Unable to run migrations: %v", err)
	}

	container := bootstrap.NewContainer(gormDB, cfg)

	// Push worker: durable event consumers feeding the websocket hub
	if container.PushService != nil {
		go func() {
			log.Println("Background: Starting Push Service...")
			if err := container.PushService.Start(); err != nil {
				log.Printf("Background Push Service Error: %v", err)
			}
		}()
	}

	srv := server.New(cfg, container)

	log.Fatal(srv.Run())
}
