package api

import (
	"net/http"

	"docchat/internal/api/handler"
	customMiddleware "docchat/internal/api/middleware"
	"docchat/internal/config"
	"docchat/internal/extractor"
	"docchat/internal/llm"
	"docchat/internal/llm/gemini"
	redisrepo "docchat/internal/repository/redis"
	"docchat/internal/service"
	"docchat/internal/store/memory"
	"docchat/internal/vectorstore/qdrant"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// NewRouter creates and configures the HTTP router. redisClient may be nil;
// the embedding cache is an optional optimization.
func NewRouter(cfg *config.Config, redisClient *redisrepo.Client) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.MiddlewareTimeout))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Generative model provider
	provider := gemini.NewProvider(cfg.Gemini)
	if !provider.IsConfigured() {
		log.Warn().Msg("Gemini API key is empty; model calls will fail until it is set")
	}

	// Embedder, optionally cached through Redis
	var embedder llm.Embedder = provider
	if redisClient != nil {
		embedder = redisrepo.NewEmbeddingCache(redisClient, provider)
		log.Info().Msg("embedding cache enabled")
	}

	// Stores
	vectors := qdrant.NewStore(cfg.Qdrant, embedder)
	fallback := memory.NewStore()

	// Services
	ingestService := service.NewIngestService(extractor.New(provider), vectors, fallback)
	chatService := service.NewChatService(provider, vectors, fallback)

	// Handlers
	uploadHandler := handler.NewUploadHandler(ingestService)
	chatHandler := handler.NewChatHandler(chatService)
	sessionHandler := handler.NewSessionHandler(chatService)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", handler.HealthCheck(vectors))
		r.Post("/upload", uploadHandler.Upload)
		r.Post("/chat", chatHandler.Chat)
		r.Get("/session/{sessionID}", sessionHandler.Get)
	})

	// Static dashboard
	if cfg.Server.StaticDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(cfg.Server.StaticDir)))
	}

	return r
}
