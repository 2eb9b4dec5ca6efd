package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"docassist/internal/config"
	"docassist/internal/conversation"
	"docassist/internal/data/redisStore"
	"docassist/internal/handlers"
	"docassist/internal/mcpserver"
	"docassist/internal/rag"
	"docassist/internal/rag/answercache/qdrantCache"
	"docassist/internal/rag/embedding"
	"docassist/internal/rag/embedding/googleEmbedding"
	"docassist/internal/rag/embedding/openaiEmbedding"
	"docassist/internal/rag/llm"
	"docassist/internal/rag/llm/gemini"
	"docassist/internal/rag/llm/openaiLLM"
	"docassist/internal/server"
	"docassist/internal/session"
	"docassist/pkg/logkit"
)

var (
	listenAddr string
	configPath string
	mcpMode    bool
)

func main() {
	logkit.Init(config.IS_PROD, config.LOG_LEVEL_PROD)
	var logger = logkit.NewLogger("main")

	//config
	_ = godotenv.Load()
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address")
	flag.StringVar(&configPath, "config", "", "path to a yaml settings file")
	flag.BoolVar(&mcpMode, "mcp", false, "serve MCP tools over stdio instead of HTTP")
	flag.Parse()

	settings, err := config.Load(configPath)
	if err != nil {
		logger.Error("Could not load settings", "path", configPath, "error", err)
		return
	}
	if listenAddr == "" {
		listenAddr = settings.ListenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	embedder := selectEmbedder(serviceContext, settings)
	llmProvider := selectLLMProvider(serviceContext, settings)
	if embedder == nil || llmProvider == nil {
		logger.Error("External services failed to initialize. Shutting down.",
			"EmbeddingService", embedder != nil, "LLMProvider", llmProvider != nil)
		return
	}

	answerCache := qdrantCache.GetQdrantCache(serviceContext, settings.QdrantHost)

	sessionManager := session.NewManager(selectLogFactory(serviceContext, settings, logger))
	ragService := rag.NewService(llmProvider, embedder, answerCache)

	if mcpMode {
		runMCP(serviceContext, ragService, sessionManager, logger)
		return
	}

	handlers.InitSessionHandler(sessionManager, ragService)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func selectEmbedder(ctx context.Context, settings *config.Settings) embedding.Embedder {
	if settings.EmbedProvider == "openai" {
		return openaiEmbedding.GetOpenAIEmbeddingClient(config.OpenAIEmbeddingModel, settings.OpenAIAPIKey)
	}
	return googleEmbedding.GetGoogleEmbeddingClient(ctx, config.GoogleEmbeddingModel, settings.GoogleAPIKey)
}

func selectLLMProvider(ctx context.Context, settings *config.Settings) llm.Provider {
	if settings.LLMProvider == "openai" {
		return openaiLLM.GetOpenAIClient(config.OpenAIModelName, settings.OpenAIAPIKey)
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, settings.GoogleAPIKey)
}

// selectLogFactory decides where conversation turns live. Redis survives a
// restart (for the history TTL); memory is the fallback when redis is
// offline or not asked for.
func selectLogFactory(ctx context.Context, settings *config.Settings, logger *logkit.Logger) session.LogFactory {
	if settings.HistoryBackend == "redis" {
		store := redisStore.GetRedisStore(ctx, settings.RedisAddr, config.RedisPassword, config.RedisHistoryDB)
		if store != nil {
			return func(sessionId string) conversation.Log {
				return conversation.NewRedisLog(store, sessionId, config.RedisHistoryTTL)
			}
		}
		logger.Warn("Redis history backend unavailable, using in-memory logs")
	}
	return func(string) conversation.Log { return conversation.NewMemoryLog() }
}

func runMCP(ctx context.Context, ragService rag.Service, sessions *session.Manager, logger *logkit.Logger) {
	mcpCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := mcpserver.NewServer(ragService, sessions)
	if err := s.Run(mcpCtx); err != nil {
		logger.Error("MCP server stopped", "error", err)
	}
	// Give background cache writes a moment before the process exits.
	time.Sleep(100 * time.Millisecond)
}
