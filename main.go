package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // database/sql driver for migrations
	"go.uber.org/zap"

	"github.com/askdata-inc/askdata-engine/pkg/config"
	"github.com/askdata-inc/askdata-engine/pkg/database"
	"github.com/askdata-inc/askdata-engine/pkg/handlers"
	"github.com/askdata-inc/askdata-engine/pkg/llm"
	"github.com/askdata-inc/askdata-engine/pkg/logging"
	"github.com/askdata-inc/askdata-engine/pkg/middleware"
	"github.com/askdata-inc/askdata-engine/pkg/repositories"
	"github.com/askdata-inc/askdata-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Env)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Configuration loaded",
		zap.String("environment", cfg.Env),
		zap.String("database", cfg.Database.Database),
		zap.String("ai_provider", cfg.AI.Provider))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, &database.Config{
		URL:            cfg.Database.URL(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		// Connection errors can echo the DSN back, credentials included.
		logger.Fatal("Failed to connect to database",
			zap.String("error", logging.SanitizeError(err)))
	}
	defer db.Close()

	// Migrations run over database/sql; the pool handles everything else.
	sqlDB, err := sql.Open("pgx", cfg.Database.URL())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	_ = sqlDB.Close()

	datasetRepo := repositories.NewDatasetRepository(db)
	snippetRepo := repositories.NewSnippetRepository(db)

	llmClient, err := llm.NewFromConfig(&cfg.AI, logger.Named("llm"))
	if err != nil {
		logger.Fatal("Failed to create LLM client", zap.Error(err))
	}

	followUp := services.NewFollowUpService(llmClient, logger.Named("followup"))
	retrieval := services.NewRetrievalService(llmClient, snippetRepo,
		cfg.AI.EmbeddingModel, cfg.Engine.SimilarityThreshold, cfg.Engine.SnippetLimit,
		logger.Named("retrieval"))
	engine := services.NewAnalysisEngine(datasetRepo, followUp, retrieval, logger.Named("engine"))
	ingest := services.NewIngestService(datasetRepo, snippetRepo, llmClient,
		cfg.AI.EmbeddingModel, logger.Named("ingest"))

	mux := http.NewServeMux()
	handlers.NewHealthHandler(cfg, logger.Named("health")).RegisterRoutes(mux)
	handlers.NewAskHandler(engine, logger.Named("ask")).RegisterRoutes(mux)
	handlers.NewDatasetHandler(ingest, datasetRepo, logger.Named("datasets")).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger.Named("http"))(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting askdata-engine",
		zap.String("addr", addr),
		zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}

func newLogger(env string) (*zap.Logger, error) {
	if env == "local" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
