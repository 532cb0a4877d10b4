package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/suddernpy/resq/internal/api"
	"github.com/suddernpy/resq/internal/cache"
	"github.com/suddernpy/resq/internal/config"
	"github.com/suddernpy/resq/internal/db"
	"github.com/suddernpy/resq/internal/feed"
	"github.com/suddernpy/resq/internal/services"
	"github.com/suddernpy/resq/internal/snapshot"
	"github.com/suddernpy/resq/internal/storage"
	"github.com/suddernpy/resq/internal/store"
	"github.com/suddernpy/resq/internal/tasks"
	"github.com/suddernpy/resq/internal/venues"
	"github.com/suddernpy/resq/internal/views"
)

var runMode = flag.String("m", "all", "Run mode: 'api', 'bg' (background tasks), 'all' (default)")

func main() {
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*runMode)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Database
	mongoClient, mongoDb, err := db.ConnectDB(cfg.MongoURI, cfg.MongoDbName)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.DisconnectDB(mongoClient); err != nil {
			log.Printf("Error disconnecting from MongoDB: %v", err)
		}
	}()

	// Initialize Cache (Redis)
	redisClient, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() {
		if err := cache.DisconnectRedis(redisClient); err != nil {
			log.Printf("Error disconnecting from Redis: %v", err)
		}
	}()

	// Initialize image storage
	imageStorage, err := storage.NewS3Storage(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize S3 storage: %v", err)
	}

	// --- Sync engine ---
	listingStore := store.New()
	directory := venues.NewDirectory()
	listingsColl := mongoDb.Collection(cfg.ListingsCollection)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Subscribe first, then snapshot: a notification arriving before the
	// snapshot lands is absorbed by the store's upsert idempotence.
	subscriber := feed.NewSubscriber(listingsColl, listingStore)
	subscriber.Start(rootCtx)
	defer subscriber.Close()

	loader := snapshot.NewLoader(listingsColl, listingStore)
	go func() {
		backoff := 2 * time.Second
		for {
			ctx, cancel := context.WithTimeout(rootCtx, cfg.SnapshotTimeout)
			err := loader.Load(ctx)
			cancel()
			if err == nil {
				log.Printf("Listings snapshot loaded (%d record(s)).", listingStore.Len())
				return
			}
			if rootCtx.Err() != nil {
				return
			}
			log.Printf("Listings snapshot failed: %v. Retrying in %v...", err, backoff)
			select {
			case <-rootCtx.Done():
				return
			case <-time.After(backoff):
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
		}
	}()

	// Services consumed by the API layer
	listingService := services.NewListingService(mongoDb, cfg, directory)
	favouritesService := services.NewFavouritesService(redisClient, cfg.FavouritesTTL)
	projector := views.NewProjector(listingStore, directory, imageStorage, nil)

	// Background task plumbing
	taskClient := tasks.NewClient(redisClient)
	defer taskClient.Close()
	taskProcessor := tasks.NewTaskProcessor(cfg, mongoDb, taskClient)

	// WaitGroup for managing goroutines
	var wg sync.WaitGroup

	var mainApiSrv *http.Server
	var backgroundTaskSrv *asynq.Server

	fmt.Printf("Starting application in '%s' mode...\n", cfg.RunMode)

	apiMode := func() {
		fmt.Println("Starting main API server...")
		mainApiRouter := api.SetupRouter(cfg, listingStore, directory, projector, listingService, favouritesService, imageStorage)
		mainApiSrv = &http.Server{
			Addr:    ":" + cfg.ApiPort,
			Handler: mainApiRouter,
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Printf("Main API listening on :%s\n", cfg.ApiPort)
			if err := mainApiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Main API ListenAndServe error: %v", err)
			}
			fmt.Println("Main API server stopped.")
		}()
	}

	bgMode := func() {
		fmt.Println("Starting background worker...")
		backgroundTaskSrv = tasks.SetupServer(redisClient, taskProcessor)
		wg.Add(1)
		go func() {
			defer wg.Done()
			fmt.Println("Background task server starting...")
			if err := backgroundTaskSrv.Run(tasks.NewMux(taskProcessor)); err != nil {
				log.Fatalf("Background task server error: %v", err)
			}
			fmt.Println("Background task server stopped.")
		}()
		if err := tasks.EnqueueRetentionSweep(taskClient, cfg.SweepInterval); err != nil {
			log.Printf("WARNING: failed to schedule retention sweep: %v", err)
		}
	}

	switch cfg.RunMode {
	case "api":
		apiMode()
	case "bg":
		bgMode()
	case "all":
		apiMode()
		bgMode()
	default:
		log.Fatalf("Invalid run mode specified in config: %s.", cfg.RunMode)
	}

	// --- Graceful Shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	fmt.Printf("\nReceived signal: %s. Shutting down gracefully...\n", sig)

	// Stop the change feed first so no merges race the teardown; Close is
	// idempotent, the deferred call above becomes a no-op.
	subscriber.Close()
	rootCancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelShutdown()

	if mainApiSrv != nil {
		fmt.Println("Shutting down Main API server...")
		if err := mainApiSrv.Shutdown(ctxShutdown); err != nil {
			log.Printf("Main API server shutdown error: %v", err)
		}
	}

	if backgroundTaskSrv != nil {
		fmt.Println("Shutting down Background Task server...")
		backgroundTaskSrv.Shutdown()
	}

	wg.Wait()
	fmt.Println("Application shut down.")
}
