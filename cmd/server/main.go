package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/okravets/contactsbook/internal/config"
	"github.com/okravets/contactsbook/internal/db"
	"github.com/okravets/contactsbook/internal/es"
	"github.com/okravets/contactsbook/internal/events"
	"github.com/okravets/contactsbook/internal/handlers"
	"github.com/okravets/contactsbook/internal/logging"
	"github.com/okravets/contactsbook/internal/mail"
	"github.com/okravets/contactsbook/internal/middleware"
	"github.com/okravets/contactsbook/internal/ratelimit"
	"github.com/okravets/contactsbook/internal/repository"
	authsvc "github.com/okravets/contactsbook/internal/service/auth"
	contactsvc "github.com/okravets/contactsbook/internal/service/contacts"
	"github.com/okravets/contactsbook/internal/storage"
	"github.com/okravets/contactsbook/internal/tokens"
	httpserver "github.com/okravets/contactsbook/internal/transport/http"
)

const contactsIndex = "contacts"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	config.MustNonEmpty(cfg.SecretKey, "SECRET_KEY")

	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	gdb, err := db.Open(ctx, cfg)
	if err != nil {
		log.Fatalf("db init: %v", err)
	}

	tokenManager := tokens.NewManager([]byte(cfg.SecretKey))
	userRepo := &repository.UserRepository{DB: gdb}
	contactRepo := &repository.ContactRepository{DB: gdb}

	notifier := &mail.Sender{
		Host:     cfg.MailHost,
		Port:     cfg.MailPort,
		Username: cfg.MailUsername,
		Password: cfg.MailPassword,
		From:     cfg.MailFrom,
		BaseURL:  cfg.BaseURL,
		Tokens:   tokenManager,
		Logger:   logger,
	}

	authService := &authsvc.Service{
		Users:    userRepo,
		Tokens:   tokenManager,
		Notifier: notifier,
	}
	contactService := &contactsvc.Service{Repo: contactRepo}

	producer := events.NewProducer(cfg.KafkaBrokers)

	esClient, err := es.NewClient(cfg)
	if err != nil {
		log.Fatalf("elasticsearch init: %v", err)
	}

	avatars, err := storage.NewMinioStorage(cfg)
	if err != nil {
		log.Fatalf("minio init: %v", err)
	}
	if err := avatars.EnsureBucket(ctx); err != nil {
		log.Fatalf("minio bucket: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("redis init: %v", err)
	}

	e := echo.New()
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover(), echomw.RequestID(), middleware.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:          gdb,
		AuthHandler: &handlers.AuthHandler{Auth: authService, Producer: producer},
		ContactHandler: &handlers.ContactHandler{
			Contacts: contactService,
			Producer: producer,
			ES:       esClient,
			Index:    contactsIndex,
		},
		UserHandler: &handlers.UserHandler{Auth: authService, Avatars: avatars},
		AuthMW:      &middleware.Auth{Service: authService},
		Limiter:     &ratelimit.Limiter{Redis: rdb},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := gdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}
	if err := rdb.Close(); err != nil {
		log.Printf("redis close error: %v", err)
	}

	log.Println("shutdown complete")
}
