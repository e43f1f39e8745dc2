package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/docubase-ai/docubase/internal/api/handlers"
	"github.com/docubase-ai/docubase/internal/config"
	"github.com/docubase-ai/docubase/internal/database"
	"github.com/docubase-ai/docubase/internal/jobs"
	"github.com/docubase-ai/docubase/internal/openai"
	"github.com/docubase-ai/docubase/internal/repository"
	"github.com/docubase-ai/docubase/internal/server"
	"github.com/docubase-ai/docubase/internal/service"
	"github.com/docubase-ai/docubase/internal/storage"
	"github.com/docubase-ai/docubase/internal/telemetry"
	openaigo "github.com/sashabaranov/go-openai"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the docubase API server on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.HasOpenAI() {
		return fmt.Errorf("DOCUBASE_OPENAI_API_KEY is required")
	}

	// Initialize Sentry with tracing if SENTRY_DSN is set
	if dsn := os.Getenv("SENTRY_DSN"); dsn != "" {
		environment := os.Getenv("ENVIRONMENT")
		if environment == "" {
			environment = "development"
		}

		sampleRate := 0.1
		if environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              dsn,
			Environment:      environment,
			TracesSampleRate: sampleRate,
		})
		if err != nil {
			log.Printf("telemetry init failed (continuing without tracing): %v", err)
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL, MaxConns: 10, MinConns: 2})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()
	log.Println("connected to database")

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	if !noMigrate {
		if err := runMigrations(cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	documentRepo := repository.NewDocumentRepository(pool)
	chunkRepo := repository.NewChunkRepository(pool)
	txRunner := repository.NewTxRunner(pool, cfg.InsertBatchSize)

	openaiClient := openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		EmbeddingModel:      openaigo.EmbeddingModel(cfg.EmbeddingModel),
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		CompletionModel:     cfg.CompletionModel,
	})

	var s3Client *storage.S3Client
	if cfg.HasS3() {
		s3Client, err = storage.NewS3Client(ctx, storage.S3ClientConfig{
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKey,
			SecretAccessKey: cfg.S3SecretKey,
			Bucket:          cfg.S3Bucket,
			UsePathStyle:    true,
		})
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		if err := s3Client.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure S3 bucket: %w", err)
		}
		log.Printf("S3 bucket '%s' ready", cfg.S3Bucket)
	}

	tracker := jobs.NewTracker(cfg.JobRetention)
	worker := jobs.NewWorker(tracker, 32, 2, time.Minute)
	go worker.Start(ctx)
	log.Println("ingest worker started")

	embedder := service.NewEmbedder(openaiClient, cfg.EmbeddingBatchSize)
	chunkCfg := service.ChunkConfig{Size: cfg.ChunkSize, Overlap: cfg.ChunkOverlap}

	pipeline := service.NewIngestPipeline(embedder, txRunner, tracker, chunkCfg)
	if s3Client != nil {
		pipeline = pipeline.WithArchiver(s3Client)
	}

	var documentSvc *service.DocumentService
	if s3Client != nil {
		documentSvc = service.NewDocumentServiceWithArchive(documentRepo, s3Client)
	} else {
		documentSvc = service.NewDocumentService(documentRepo)
	}

	retriever := service.NewRetriever(embedder, chunkRepo)
	composer := service.NewComposer(retriever, &generationAdapter{client: openaiClient}, service.ComposerConfig{
		SimilarityThreshold: cfg.SimilarityThreshold,
		TopK:                cfg.RetrievalTopK,
	})

	router := server.NewRouter(server.RouterConfig{
		DocumentHandler: handlers.NewDocumentHandler(documentSvc),
		UploadHandler:   handlers.NewUploadHandler(tracker, worker, pipeline),
		AskHandler:      handlers.NewAskHandler(composer),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	worker.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("server exited")
	return nil
}

// generationAdapter bridges the OpenAI client to the composer's
// GenerationClient interface.
type generationAdapter struct {
	client *openai.Client
}

func (a *generationAdapter) StreamCompletion(ctx context.Context, prompt string) (service.TokenStream, error) {
	return a.client.StreamCompletion(ctx, prompt)
}

