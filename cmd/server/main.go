package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"regintel/internal/config"
	"regintel/internal/controller"
	"regintel/internal/handler"
	"regintel/internal/port"
	"regintel/internal/repository/postgres"
	"regintel/internal/retrieval"
	"regintel/internal/router"
	"regintel/internal/service"
	s3storage "regintel/internal/storage/s3"
	"regintel/internal/worker"
	"regintel/internal/worker/ollama"
	"regintel/internal/worker/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	docRepo := postgres.NewDocumentRepo(db)
	sectionRepo := postgres.NewSectionRepo(db)
	spanRepo := postgres.NewSpanRepo(db)
	stateRepo := postgres.NewStateRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Register worker backends and build the active worker
	worker.RegisterProvider("openai", openai.New)
	worker.RegisterProvider("ollama", ollama.New)

	llmWorker, err := worker.NewWorker(&cfg.Worker.Primary)
	if err != nil {
		return fmt.Errorf("failed to initialize primary worker: %w", err)
	}
	if secondary := cfg.Worker.SecondaryConfig(); secondary != nil {
		secondaryWorker, err := worker.NewWorker(secondary)
		if err != nil {
			return fmt.Errorf("failed to initialize secondary worker: %w", err)
		}
		llmWorker = worker.NewFallbackWorker([]port.LLMWorker{llmWorker, secondaryWorker})
	}

	// Initialize retrieval and extraction pipeline
	retriever := retrieval.NewBM25Index(sectionRepo)
	builder := controller.NewDefaultStateBuilder(retriever, llmWorker, cfg.Extraction)

	// Initialize services
	extractionSvc := service.NewExtractionService(
		docRepo, sectionRepo, spanRepo, stateRepo, retriever, builder, llmWorker.Name())
	archiveSvc := service.NewArchiveService(docRepo, s3Client, &cfg.S3)

	// Initialize handlers
	documentH := handler.NewDocumentHandler(extractionSvc, archiveSvc)
	stateH := handler.NewStateHandler(extractionSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg, documentH, stateH, healthH)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the extraction queue worker
	queueWorker := service.NewExtractQueueWorker(docRepo, extractionSvc, service.ExtractQueueConfig{
		PollInterval: time.Duration(cfg.Queue.PollIntervalSecs) * time.Second,
		Concurrency:  cfg.Queue.Concurrency,
	})
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		queueWorker.Start(ctx)
	}()

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Printf("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	<-workerDone

	return nil
}
