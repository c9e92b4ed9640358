package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"aslaw.org/internal/auth"
	"aslaw.org/internal/docket"
	"aslaw.org/internal/httpapi"
	"aslaw.org/internal/obs"
)

var version = "0.3.1"

func main() {
	_ = godotenv.Load()
	obs.Init()

	secret := os.Getenv("ASLAW_AUTH_SECRET")
	if secret == "" {
		log.Fatal("missing ASLAW_AUTH_SECRET")
	}

	dsn := os.Getenv("ASLAW_PG_DSN")
	if dsn == "" {
		log.Fatal("missing ASLAW_PG_DSN")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	var tokenOpts []auth.TokenOption
	if ttl := os.Getenv("ASLAW_TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			log.Fatalf("parse ASLAW_TOKEN_TTL: %v", err)
		}
		tokenOpts = append(tokenOpts, auth.WithTokenTTL(d))
	}
	tokens, err := auth.NewTokenService(secret, tokenOpts...)
	if err != nil {
		log.Fatalf("token service: %v", err)
	}
	authSvc, err := auth.NewService(auth.NewPGStore(db), tokens)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}

	probe := httpapi.ReadyProbe{DB: db}
	api := httpapi.New(authSvc, docket.NewPGStore(db), probe, version)

	httpAddr := envOr("ASLAW_HTTP_ADDR", ":8080")
	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// gRPC health endpoint for orchestrator probes.
	grpcAddr := envOr("ASLAW_GRPC_ADDR", ":9090")
	grpcHealth := httpapi.NewGRPCHealth(probe)
	go func() {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		if err := grpcHealth.Serve(ctx, lis, 10*time.Second); err != nil {
			log.Printf("grpc serve: %v", err)
		}
	}()

	log.Printf("Starting aslaw-api %s on %s (grpc %s)", version, httpAddr, grpcAddr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = db.Close()
	log.Println("Stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
