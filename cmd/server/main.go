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

	"github.com/akozharin/music-store/internal/config"
	"github.com/akozharin/music-store/internal/es"
	"github.com/akozharin/music-store/internal/events"
	"github.com/akozharin/music-store/internal/handlers"
	"github.com/akozharin/music-store/internal/logging"
	loggingmw "github.com/akozharin/music-store/internal/middleware/logging"
	"github.com/akozharin/music-store/internal/render"
	httpserver "github.com/akozharin/music-store/internal/transport/http"
	"github.com/akozharin/music-store/internal/upload"
)

const instrumentIndex = "instruments"

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if err := configuration.EnsureDirs(); err != nil {
		log.Fatal(err)
	}

	db, err := config.InitDB(configuration)
	if err != nil {
		log.Fatalf("db init failed: %v", err)
	}

	logger := logging.New(configuration.LOG_LEVEL)

	var producer *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		producer = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	esClient, err := es.NewClient(configuration)
	if err != nil {
		log.Fatal(err)
	}

	renderer, err := render.New(configuration.TEMPLATES_DIR)
	if err != nil {
		log.Fatal(err)
	}

	e := echo.New()
	e.Renderer = renderer
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID(), loggingmw.RequestLogger(logger))

	uploads := &upload.Saver{StaticDir: configuration.STATIC_DIR, Mount: "/static"}

	deps := httpserver.Deps{
		DB: db,
		ClientHandler: &handlers.ClientHandler{
			DB:        db,
			Producer:  producer,
			Uploads:   uploads,
			ImagesDir: configuration.ClientImagesDir(),
		},
		InstrumentHandler: &handlers.InstrumentHandler{
			DB:        db,
			Producer:  producer,
			Uploads:   uploads,
			ImagesDir: configuration.InstrumentImagesDir(),
			ES:        esClient,
			Index:     instrumentIndex,
		},
		OrderHandler:     &handlers.OrderHandler{DB: db, Producer: producer},
		DashboardHandler: &handlers.DashboardHandler{DB: db},
		ExportHandler:    &handlers.ExportHandler{DB: db},
		SearchHandler:    &handlers.SearchHandler{ES: esClient, Index: instrumentIndex},
		StaticDir:        configuration.STATIC_DIR,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         ":" + configuration.HTTP_PORT,
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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.Printf("db close error: %v", err)
		}
	} else {
		log.Printf("db() error: %v", err)
	}

	if err := producer.Close(); err != nil {
		log.Printf("kafka close error: %v", err)
	}

	log.Println("shutdown complete")
}
