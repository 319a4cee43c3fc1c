package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"github.com/storytailor/storytailor/internal/api"
	"github.com/storytailor/storytailor/internal/config"
	"github.com/storytailor/storytailor/internal/llm"
	"github.com/storytailor/storytailor/internal/rag/embeddings"
	"github.com/storytailor/storytailor/internal/rag/interfaces"
	"github.com/storytailor/storytailor/internal/rag/knowledge"
	"github.com/storytailor/storytailor/internal/rag/retrieval"
	"github.com/storytailor/storytailor/internal/rag/storages/docstore"
	"github.com/storytailor/storytailor/internal/rag/storages/vectorstore"
	"github.com/storytailor/storytailor/internal/safety"
	"github.com/storytailor/storytailor/internal/story"
	"github.com/storytailor/storytailor/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.Init(level)
	appLogger := logger.New("StoryTailor", "")
	appLogger.Info("Starting StoryTailor service...")

	ctx := context.Background()

	index := buildVectorIndex(ctx, cfg, appLogger)
	docs := buildDocStore(ctx, cfg, appLogger)
	embedder := buildEmbedder(cfg, appLogger)

	store := knowledge.NewStore(embedder, index, docs, appLogger)
	if err := store.BootstrapDefaults(ctx); err != nil {
		log.Fatalf("Failed to bootstrap the default corpus: %v", err)
	}

	generator, err := llm.NewClient(ctx, cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.APIKey)
	if err != nil {
		log.Fatalf("Failed to create generation client: %v", err)
	}

	retriever := retrieval.NewService(store, appLogger)
	filter := safety.NewFilter(appLogger)
	engine := story.NewEngine(retriever, generator, filter, cfg.LLM.GenerationTimeout(), appLogger)

	gin.SetMode(gin.ReleaseMode)
	handlers := api.NewAPI(engine, retriever, store, filter, appLogger)
	router := api.NewRouter(handlers, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("Forced shutdown: %v", err))
	}
	appLogger.Info("Server gracefully stopped")
}

// buildVectorIndex connects to Milvus when configured and falls back to
// the in-memory index otherwise. A configured but unreachable Milvus is
// a startup failure, not a silent fallback.
func buildVectorIndex(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) interfaces.VectorIndex {
	if cfg.Milvus.Address == "" {
		log.Info("Milvus not configured, using the in-memory vector index")
		return vectorstore.NewMemoryIndex()
	}
	index, err := vectorstore.NewMilvusIndex(ctx, cfg.Milvus.Address, cfg.Milvus.Collection, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to connect to Milvus: %v", err))
	}
	return index
}

// buildDocStore connects to MongoDB when configured and falls back to
// the in-memory store otherwise.
func buildDocStore(ctx context.Context, cfg *config.AppConfig, log *logger.Logger) interfaces.DocStore {
	if cfg.Mongo.URI == "" {
		log.Info("MongoDB not configured, using the in-memory document store")
		return docstore.NewMemoryStore()
	}
	store, err := docstore.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		log.Fatal(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
	}
	return store
}

// buildEmbedder wraps the hash embedder with a Redis cache when Redis
// is configured.
func buildEmbedder(cfg *config.AppConfig, log *logger.Logger) interfaces.EmbeddingModel {
	embedder := embeddings.NewHashEmbedder()
	if cfg.Redis.Address == "" {
		return embedder
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	log.Info("Embedding cache enabled")
	return embeddings.NewCachedEmbedder(embedder, client, cfg.Redis.CacheTTL(), log)
}
