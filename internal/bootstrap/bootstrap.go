package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rudradey/campus-companion/internal/config"
	"github.com/rudradey/campus-companion/internal/core/classifier"
	"github.com/rudradey/campus-companion/internal/core/ports"
	"github.com/rudradey/campus-companion/internal/core/usecase"
	"github.com/rudradey/campus-companion/internal/infrastructure/chunking"
	"github.com/rudradey/campus-companion/internal/infrastructure/extractor"
	pdfextractor "github.com/rudradey/campus-companion/internal/infrastructure/extractor/pdf"
	"github.com/rudradey/campus-companion/internal/infrastructure/extractor/plaintext"
	"github.com/rudradey/campus-companion/internal/infrastructure/intentdata"
	"github.com/rudradey/campus-companion/internal/infrastructure/llm/ollama"
	"github.com/rudradey/campus-companion/internal/infrastructure/queue/nats"
	"github.com/rudradey/campus-companion/internal/infrastructure/repository/postgres"
	"github.com/rudradey/campus-companion/internal/infrastructure/resilience"
	"github.com/rudradey/campus-companion/internal/infrastructure/storage/localfs"
	"github.com/rudradey/campus-companion/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	ChatUC    ports.ChatService
	TrainUC   ports.ModelTrainer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure documents schema: %w", err)
	}
	directory := postgres.NewDirectoryRepository(db)
	if err := directory.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure directory schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSIngestSubject, cfg.NATSRetrainSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ollamaClient := ollama.New(cfg.OllamaURL, cfg.OllamaGenModel, cfg.OllamaEmbedModel, ollama.Options{
		ResilienceExecutor: executor,
	})
	embedder := ollama.NewEmbedder(ollamaClient)
	generator := ollama.NewGenerator(ollamaClient)

	vectorDB := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection, cfg.EmbeddingDim)
	chunker := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	extractors := extractor.NewSelector(
		pdfextractor.NewExtractor(storage),
		plaintext.NewExtractor(storage),
	)

	dataSource := intentdata.NewSource(cfg.TrainingDataPath, cfg.KeywordDataPath)
	keywordGroups, err := dataSource.KeywordGroups()
	if err != nil {
		return nil, fmt.Errorf("load keyword groups: %w", err)
	}

	mlClassifier := classifier.NewMLClassifier()
	trainUC := usecase.NewTrainUseCase(dataSource, mlClassifier, logger)
	if err := trainUC.Retrain(ctx); err != nil {
		// The keyword and LLM tiers carry classification until the
		// first successful retrain lands.
		logger.Warn("initial_ml_training_failed", "error", err)
	}

	unified := classifier.NewUnifiedClassifier(
		classifier.NewKeywordClassifier(keywordGroups),
		mlClassifier,
		classifier.NewLLMClassifier(generator, time.Duration(cfg.LLMTimeoutSeconds)*time.Second),
		classifier.Thresholds{
			Escalation:         cfg.EscalationThreshold,
			FallbackConfidence: cfg.FallbackConfidence,
			MultiIntentMargin:  cfg.MultiIntentMargin,
			MultiIntentFloor:   cfg.MultiIntentFloor,
		},
		logger,
	)

	retriever := usecase.NewRetrievalUseCase(embedder, vectorDB, cfg.EmbeddingDim, cfg.RetrievalMinScore, cfg.RetrievalTopK)
	chatUC := usecase.NewChatUseCase(unified, retriever, directory, generator, cfg.RetrievalTopK, cfg.AllowLLM, logger)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, extractors, chunker, embedder, vectorDB, cfg.EmbeddingDim)

	return &App{
		Config: cfg,
		Logger: logger,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ChatUC:    chatUC,
		TrainUC:   trainUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
