package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/mkuznecov/warehouse/internal/config"
	"github.com/mkuznecov/warehouse/internal/handlers"
	"github.com/mkuznecov/warehouse/internal/logging"
	authmw "github.com/mkuznecov/warehouse/internal/middleware/auth"
	"github.com/mkuznecov/warehouse/internal/mykafka"
	"github.com/mkuznecov/warehouse/internal/seed"
	"github.com/mkuznecov/warehouse/internal/service/catalog"
	"github.com/mkuznecov/warehouse/internal/service/users"
	"github.com/mkuznecov/warehouse/internal/session"
	httpserver "github.com/mkuznecov/warehouse/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("Ошибка инициализации БД: %v", err)
	}

	if err := seed.Run(db); err != nil {
		log.Fatalf("Ошибка наполнения БД: %v", err)
	}

	var producer *mykafka.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = mykafka.NewProducer(configuration.KAFKA_ADDRESS)
		defer producer.Close()
	}

	userService := &users.Service{DB: db}
	catalogService := &catalog.Service{DB: db}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = httpserver.ErrorHandler(logger)
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(session.Middleware([]byte(configuration.SESSION_SECRET)))
	e.Use(logging.RequestLogger(logger))

	deps := httpserver.Deps{
		DB:             db,
		AuthHandler:    &handlers.AuthHandler{Users: userService, Producer: producer},
		SearchHandler:  &handlers.SearchHandler{Catalog: catalogService},
		ProductHandler: &handlers.ProductHandler{Catalog: catalogService},
		AdminHandler:   &handlers.AdminHandler{Catalog: catalogService, Producer: producer},
		APIHandler:     &handlers.APIHandler{Catalog: catalogService},
		Guard:          &authmw.Guard{Users: userService},
	}
	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		logger.Info("server started", "addr", configuration.HTTP_ADDR)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("http server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	}
}
