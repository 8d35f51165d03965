package main

import (
	"log"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/subosito/gotenv"

	"github.com/dialogcast/dialogcast/adapters/archive"
	"github.com/dialogcast/dialogcast/adapters/hasher"
	"github.com/dialogcast/dialogcast/adapters/http"
	"github.com/dialogcast/dialogcast/adapters/llm"
	"github.com/dialogcast/dialogcast/adapters/message_broker"
	"github.com/dialogcast/dialogcast/adapters/podcast"
	"github.com/dialogcast/dialogcast/adapters/speech"
	"github.com/dialogcast/dialogcast/adapters/tts"
	"github.com/dialogcast/dialogcast/adapters/websocket"
	"github.com/dialogcast/dialogcast/usecase"
)

func main() {
	gotenv.Load()

	generator := llm.NewGeminiGenerator()
	googleTTS := tts.NewGoogleTTS()
	googleSpeech := speech.NewGoogleSpeech()
	broker := message_broker.NewChannelMessageBroker()

	audioDir := envOr("AUDIO_DIR", "audio")
	store, err := podcast.NewStore(googleTTS, hasher.New(), audioDir)
	if err != nil {
		log.Fatal(err)
	}
	archiver, err := archive.NewFileArchiver(envOr("SAVES_DIR", "saves"))
	if err != nil {
		log.Fatal(err)
	}

	sessions := usecase.NewSessionStore()
	generation := usecase.NewGenerationService(generator, archiver, broker, sessions)
	assembly := usecase.NewAssemblyService(store, store, store, broker, sessions)
	export := usecase.NewExportService(sessions)

	server := websocket.NewServer(broker)
	go server.RunWebsocketHub()

	handler := http.NewPodcastHandler(generation, assembly, export, googleSpeech, googleTTS)

	e := echo.New()

	// Security middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.Secure())
	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20))) // 20 requests per minute

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"}, // In production, specify exact origins
		AllowMethods: []string{echo.GET, echo.POST, echo.PUT, echo.DELETE, echo.OPTIONS},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			"X-API-Key",
			"X-API-Secret",
			"Content-Length",
		},
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Request size limit
	e.Use(middleware.BodyLimit("10MB"))

	// Pipeline event feed (JWT auth, same as HTTP)
	wsGroup := e.Group("/ws")
	wsGroup.Use(handler.JWTMiddleware)
	wsGroup.GET("", server.Handler)

	// HTTP API routes
	api := e.Group("/api/v1")

	// Public endpoints (no auth required)
	api.GET("/health", handler.HealthCheck)
	api.POST("/auth/token", handler.GenerateJWT)

	// Podcast pipeline endpoints (JWT auth required)
	pipeline := api.Group("/podcast")
	pipeline.Use(handler.JWTMiddleware)
	pipeline.Use(handler.RateLimitMiddleware)

	pipeline.POST("/generate", handler.Generate)
	pipeline.POST("/regenerate", handler.Regenerate)
	pipeline.POST("/synthesize", handler.SynthesizeTurn)
	pipeline.POST("/assemble", handler.Assemble)
	pipeline.GET("/export/text", handler.ExportText)
	pipeline.GET("/export/script", handler.ExportScript)
	pipeline.GET("/voices", handler.Voices)
	pipeline.PUT("/voices", handler.UpdateVoice)

	// Audio import (JWT auth required)
	audio := api.Group("/audio")
	audio.Use(handler.JWTMiddleware)
	audio.Use(handler.RateLimitMiddleware)
	audio.POST("/transcribe", handler.Transcribe)

	// Serve synthesized audio and assembled artifacts
	e.Static("/audio", audioDir)

	log.Println("Starting server on :8080")
	log.Println("Available endpoints:")
	log.Println("  GET  /api/v1/health                  - Health check")
	log.Println("  POST /api/v1/auth/token              - Get JWT token")
	log.Println("  POST /api/v1/podcast/generate        - Generate dialog script (JWT required)")
	log.Println("  POST /api/v1/podcast/assemble        - Assemble podcast (JWT required)")
	log.Println("  GET  /ws                             - Pipeline event feed (JWT required)")
	log.Fatal(e.Start(":" + envOr("PORT", "8080")))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
