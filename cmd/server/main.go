package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/login-mail/internal/api"
	"github.com/ignite/login-mail/internal/config"
	"github.com/ignite/login-mail/internal/mailer"
	"github.com/ignite/login-mail/internal/repository/postgres"
	"github.com/ignite/login-mail/internal/service/admission"
	"github.com/ignite/login-mail/internal/service/login"
	"github.com/ignite/login-mail/internal/token"
)

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if os.Getenv("DATABASE_URL") != "" {
		log.Println("[config] DATABASE_URL env override active")
	}

	// PostgreSQL holds mail records, identities and bans.
	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatalf("Database unreachable: %v", err)
	}
	log.Println("Connected to database")

	// Redis backs the admission counter.
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("Invalid redis url: %v", err)
	}
	redisClient := redis.NewClient(opts)
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		pingCancel()
		log.Fatalf("Redis unreachable: %v", err)
	}
	pingCancel()
	defer redisClient.Close()
	log.Printf("Redis connected: %s", cfg.Redis.URL)

	tokens, err := token.NewManager([]byte(cfg.Auth.Secret), nil)
	if err != nil {
		log.Fatalf("Failed to initialize token manager: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sender, err := mailer.NewSESSender(ctx, cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region, cfg.SES.From, cfg.Auth.VerifyURL)
	if err != nil {
		log.Fatalf("Failed to initialize SES sender: %v", err)
	}

	loginSvc := login.NewService(
		tokens,
		postgres.NewMailRecordRepo(db),
		postgres.NewIdentityRepo(db),
		sender,
		time.Duration(cfg.Auth.TokenMinutes)*time.Minute,
		nil,
	)

	admissionCtl := admission.NewController(
		admission.NewRedisCounter(redisClient),
		postgres.NewIPBanRepo(db),
		cfg.Admission.Threshold,
		time.Duration(cfg.Admission.WindowMinutes)*time.Minute,
	)

	server := api.NewServer(loginSvc, admissionCtl, cfg.Auth.AdminToken, cfg.Admission.TrustProxy)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Starting server on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
