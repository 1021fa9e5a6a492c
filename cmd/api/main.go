package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crewdesk.org/internal/httpapi"
	"crewdesk.org/internal/obs"
	"crewdesk.org/internal/store/pg"
	"crewdesk.org/internal/stream"
	"crewdesk.org/internal/useradmin"
)

var version = "0.3.1"

func main() {
	obs.Init()
	version = obs.BuildVersion(version)

	var (
		store useradmin.Store
		db    *sql.DB
	)
	if dsn := os.Getenv("CREWDESK_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		store = pgStore
		db = pgStore.DB()
	} else {
		log.Printf("CREWDESK_PG_DSN not set, using in-memory store")
		store = useradmin.NewMemory()
	}

	admin, err := useradmin.NewService(store)
	if err != nil {
		log.Fatalf("admin service: %v", err)
	}

	api := httpapi.New(httpapi.ReadyProbe{DB: db}, version, admin, stream.New())

	addr := os.Getenv("CREWDESK_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting crewdesk-admin %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if db != nil {
		_ = db.Close()
	}
	log.Println("Stopped")
}
