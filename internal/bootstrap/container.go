package bootstrap

import (
	"context"
	"log"

	"github.com/rvemuri2/helix-backend/internal/config"
	"github.com/rvemuri2/helix-backend/internal/controller"
	"github.com/rvemuri2/helix-backend/internal/handler"
	"github.com/rvemuri2/helix-backend/internal/pkg/logger"
	"github.com/rvemuri2/helix-backend/internal/repository/memory"
	"github.com/rvemuri2/helix-backend/internal/repository/unitofwork"
	"github.com/rvemuri2/helix-backend/internal/service"
	"github.com/rvemuri2/helix-backend/internal/websocket"
	"github.com/rvemuri2/helix-backend/pkg/llm/factory"
	"github.com/rvemuri2/helix-backend/pkg/sequence/intent"
	"github.com/rvemuri2/helix-backend/pkg/sequence/stepgen"

	pktNats "github.com/rvemuri2/helix-backend/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	SequenceController controller.ISequenceController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	SequenceWsHandler *handler.SequenceWsHandler
	WebSocketHub      *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. LLM Provider
	apiKey := cfg.Ai.OpenAIAPIKey
	baseURL := cfg.Ai.OpenAIBaseURL
	if cfg.Ai.LLMProvider == "ollama" {
		baseURL = cfg.Ai.OllamaBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(cfg.Ai.LLMProvider, cfg.Ai.LLMModel, baseURL, apiKey)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	intentCache := memory.NewIntentCache()
	classifier := intent.NewLLMClassifier(llmProvider, intentCache, sysLogger.Raw())
	generator := stepgen.NewGenerator(llmProvider, sysLogger.Raw())

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/sequence_ws.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Services
	publisherService := service.NewPublisherService(cfg.Topics.SequenceUpdated, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.Topics.SequenceUpdated, wsHub, sysLogger)

	chatService := service.NewChatService(uowFactory, classifier, generator, publisherService, natsPub, sysLogger)
	sequenceService := service.NewSequenceService(uowFactory, publisherService, sysLogger)

	// 5. Handlers & Controllers
	wsHandler := handler.NewSequenceWsHandler(wsHub, wsLogger)

	return &Container{
		ChatController:     controller.NewChatController(chatService),
		SequenceController: controller.NewSequenceController(sequenceService),

		ConsumerService: consumerService,

		SequenceWsHandler: wsHandler,
		WebSocketHub:      wsHub,
	}
}
