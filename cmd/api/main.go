// @title           Chat & RAG API
// @version         1.0
// @description     This API handles asynchronous chat processing and RAG status tracking.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   ank.github@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akolanti/GoRAG/internal/config"
	"github.com/akolanti/GoRAG/internal/customHttpClient"
	"github.com/akolanti/GoRAG/internal/data/store"
	"github.com/akolanti/GoRAG/internal/domain/commonModels"
	jobmodel "github.com/akolanti/GoRAG/internal/domain/jobModel"
	"github.com/akolanti/GoRAG/internal/handlers"
	"github.com/akolanti/GoRAG/internal/job"
	"github.com/akolanti/GoRAG/internal/mcp"
	"github.com/akolanti/GoRAG/internal/rag"
	"github.com/akolanti/GoRAG/internal/rag/chunker"
	"github.com/akolanti/GoRAG/internal/rag/conversation"
	"github.com/akolanti/GoRAG/internal/rag/embedding"
	"github.com/akolanti/GoRAG/internal/rag/embedding/googleEmbedding"
	"github.com/akolanti/GoRAG/internal/rag/embedding/openaiEmbedding"
	"github.com/akolanti/GoRAG/internal/rag/ingest"
	"github.com/akolanti/GoRAG/internal/rag/llm/gemini"
	"github.com/akolanti/GoRAG/internal/rag/retriever"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB/memoryDB"
	"github.com/akolanti/GoRAG/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/GoRAG/internal/server"
	"github.com/akolanti/GoRAG/internal/worker"
	"github.com/akolanti/GoRAG/pkg/logger_i"
)

var (
	listenAddr        string
	embedderBackend   string
	vectorBackend     string
	mcpMode           bool
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {

	logger_i.Init()
	var logger = logger_i.NewLogger("main")

	flag.StringVar(&listenAddr, "listen-addr", config.ServerListenAddr, "server listen address")
	flag.StringVar(&embedderBackend, "embedder", "google", "embedding backend: google or openai")
	flag.StringVar(&vectorBackend, "vector-db", "qdrant", "vector backend: qdrant or memory")
	flag.BoolVar(&mcpMode, "mcp", false, "serve the retrieve tool over MCP stdio instead of HTTP")
	flag.Parse()

	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	// Stores fall back to their in-memory versions when redis is offline.
	var jobStore jobmodel.JobStore
	var sessionStore commonModels.SessionStore
	var chunkStore commonModels.ChunkStore
	if rs := store.GetRedisJobStore(serviceContext); rs != nil {
		jobStore = rs
		sessionStore = store.GetRedisSessionStore(serviceContext)
		chunkStore = store.GetRedisChunkStore(serviceContext)
	} else if config.FALLBACK_REDIS_TO_INTERNALSTORE {
		logger.Warn("Redis is offline, using in-memory stores")
		jobStore = store.InitInMemoryJobStore()
		sessionStore = store.InitSessionStore()
		chunkStore = store.InitChunkStore()
	} else {
		logger.Error("Redis is offline and fallback is disabled. Shutting down.")
		return
	}

	var index vectorDB.Index
	var answerCache vectorDB.AnswerCache
	switch vectorBackend {
	case "qdrant":
		qdrantStore, err := qdrantDB.New(serviceContext, qdrantDB.Config{
			Host:       config.QdrantHost,
			Port:       config.QdrantGrpcPort,
			UseTLS:     config.QdrantUseTLS,
			PoolSize:   config.QdrantPoolSize,
			Collection: config.EmbeddingDBName,
			Dimension:  int(config.EmbeddingOutputDimensionality),
		})
		if err != nil {
			logger.Error("Qdrant failed to initialize. Shutting down.", "error", err)
			return
		}
		defer qdrantStore.Close()
		index = qdrantStore
		answerCache = qdrantStore
	case "memory":
		memIndex, err := memoryDB.NewIndex(int(config.EmbeddingOutputDimensionality), memoryDB.Cosine)
		if err != nil {
			logger.Error("In-memory index failed to initialize. Shutting down.", "error", err)
			return
		}
		index = memIndex
		answerCache = memoryDB.NewAnswerCache(config.CacheSimilarityCutoff)
	default:
		logger.Error("Unknown vector backend", "backend", vectorBackend)
		return
	}

	var embedder embedding.Embedder
	var err error
	switch embedderBackend {
	case "google":
		embedder, err = googleEmbedding.NewClient(serviceContext, googleEmbedding.Config{
			APIKey:    config.GoogleAPIKey,
			Model:     config.GoogleEmbeddingModel,
			Dimension: config.EmbeddingOutputDimensionality,
			BatchSize: config.EmbeddingBatchSize,
		})
	case "openai":
		embedder, err = openaiEmbedding.NewClient(openaiEmbedding.Config{
			APIKey:     config.OpenAIAPIKey,
			Model:      config.OpenAIEmbeddingModel,
			Dimension:  int64(config.EmbeddingOutputDimensionality),
			BatchSize:  config.EmbeddingBatchSize,
			HTTPClient: customHttpClient.Pooled(),
		})
	default:
		logger.Error("Unknown embedding backend", "backend", embedderBackend)
		return
	}
	if err != nil {
		logger.Error("Embedding client failed to initialize. Shutting down.", "error", err)
		return
	}

	docRetriever, err := retriever.New(embedder, index, chunkStore)
	if err != nil {
		logger.Error("Retriever failed to initialize. Shutting down.", "error", err)
		return
	}

	if mcpMode {
		runMCP(serviceContext, docRetriever, logger)
		return
	}

	llmProvider, err := gemini.NewClient(serviceContext, gemini.Config{
		APIKey:            config.GoogleAPIKey,
		Model:             config.GeminiModelName,
		SystemInstruction: config.ModelContext,
		Temperature:       config.ModelTemperature,
	})
	if err != nil {
		logger.Error("Gemini provider failed to initialize. Shutting down.", "error", err)
		return
	}

	docChunker, err := chunker.New(chunker.Config{
		MaxChunkSize: config.MaxChunkSize,
		Overlap:      config.ChunkOverlap,
	})
	if err != nil {
		logger.Error("Chunker failed to initialize. Shutting down.", "error", err)
		return
	}
	pipeline, err := ingest.NewPipeline(docChunker, embedder, index, chunkStore, config.EmbeddingBatchSize)
	if err != nil {
		logger.Error("Ingestion pipeline failed to initialize. Shutting down.", "error", err)
		return
	}

	ragService := rag.NewService(rag.Deps{
		Retriever: docRetriever,
		Provider:  llmProvider,
		Embedder:  embedder,
		Pipeline:  pipeline,
		Cache:     answerCache,
		ConvCfg: conversation.Config{
			Template:     config.RAGPromptTemplate,
			TopK:         config.RetrievalTopK,
			TokenBudget:  config.PromptTokenBudget,
			SessionStore: sessionStore,
		},
	})

	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
		JobStore:          jobStore,
		SessionStore:      sessionStore,
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	handlers.InitJobHandler(service)

	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(listenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func runMCP(ctx context.Context, docRetriever *retriever.Retriever, logger *logger_i.Logger) {
	mcpServer, err := mcp.NewServer(docRetriever, config.RetrievalTopK)
	if err != nil {
		logger.Error("MCP server failed to initialize. Shutting down.", "error", err)
		return
	}

	runCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	if err := mcpServer.Run(runCtx); err != nil {
		logger.Error("MCP server stopped", "error", err)
	}
}
