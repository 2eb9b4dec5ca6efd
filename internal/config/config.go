package config

import (
	"log/slog"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	// Retrieval pipeline tunables. Overlap must stay below size; the
	// chunker rejects anything else at ingest time.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 150
	DefaultTopK         = 4

	// Only the trailing window of the conversation is folded back into each
	// prompt. The original behaviour was to concatenate every prior turn,
	// which grows without bound.
	HistoryWindowTurns = 5

	// Budget for each hosted-model call (embedding, completion). A call
	// that exceeds it surfaces as a timeout instead of hanging the session.
	ExternalCallTimeout = 30 * time.Second

	// Semantic answer cache. Disabled unless QDRANT_HOST is set.
	CacheCollectionName   = "answer-cache"
	CacheSimilarityCutoff = 0.97
	QdrantGrpcPort        = 6334
	QdrantUseTLS          = false
	QdrantPoolSize        = 1

	EmbeddingBatchSize = 100

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 60 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	ServerListenAddr = ":3000"

	MaxUploadBytes = 32 << 20

	//llm + embeddings
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAIModelName      = "gpt-4o-mini"
	OpenAIEmbeddingModel = "text-embedding-3-small"

	EmbeddingOutputDimensionality int32 = 1536

	ModelTemperature float32 = 0.7
	SystemInstruction        = "You are a helpful document assistant. Answer using the supplied " +
		"context when it is present; if the context does not cover the question, say so. " +
		"If no context is supplied, answer from general knowledge and do not invent sources."

	//redis
	redisHost = "127.0.0.1"
	redisPort = "6379"
	RedisAddr = redisHost + ":" + redisPort

	RedisPassword   = ""
	RedisHistoryDB  = 0
	RedisHistoryTTL = 24 * time.Hour

	NoAuthBypass = true
	AuthToken    = ""
)

// Settings are the deploy-time values that vary per environment. Everything
// defaults to the constants above; a yaml file and then the environment can
// override them.
type Settings struct {
	ListenAddr     string `yaml:"listen_addr"`
	GoogleAPIKey   string `yaml:"google_api_key"`
	OpenAIAPIKey   string `yaml:"openai_api_key"`
	RedisAddr      string `yaml:"redis_addr"`
	QdrantHost     string `yaml:"qdrant_host"`
	LLMProvider    string `yaml:"llm_provider"`    // "gemini" or "openai"
	EmbedProvider  string `yaml:"embed_provider"`  // "google" or "openai"
	HistoryBackend string `yaml:"history_backend"` // "memory" or "redis"
}

func Load(path string) (*Settings, error) {
	s := &Settings{
		ListenAddr:     ServerListenAddr,
		RedisAddr:      RedisAddr,
		LLMProvider:    "gemini",
		EmbedProvider:  "google",
		HistoryBackend: "memory",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(&s.GoogleAPIKey, "GOOGLE_API_KEY")
	overrideFromEnv(&s.OpenAIAPIKey, "OPENAI_API_KEY")
	overrideFromEnv(&s.RedisAddr, "REDIS_ADDR")
	overrideFromEnv(&s.QdrantHost, "QDRANT_HOST")
	overrideFromEnv(&s.LLMProvider, "LLM_PROVIDER")
	overrideFromEnv(&s.EmbedProvider, "EMBED_PROVIDER")
	overrideFromEnv(&s.HistoryBackend, "HISTORY_BACKEND")
	return s, nil
}

func overrideFromEnv(target *string, key string) {
	if v := os.Getenv(key); v != "" {
		*target = v
	}
}
