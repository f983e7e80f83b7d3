package bootstrap

import (
	"recall-be/internal/config"
	"recall-be/internal/controller"
	"recall-be/internal/handler"
	"recall-be/internal/pkg/logger"
	"recall-be/internal/repository/memory"
	"recall-be/internal/service"
	"recall-be/internal/websocket"
	"recall-be/pkg/thread"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	WorkspaceController  controller.IWorkspaceController
	ExtractionController controller.IExtractionController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSocket feed
	FeedHandler  *handler.FeedHandler
	WebSocketHub *websocket.Hub

	// Exposed so main can cancel highlight timers on shutdown
	WorkspaceService service.IWorkspaceService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	feedLogger := logger.NewIsolatedLogger(cfg.App.FeedLogFilePath)

	threadClient := thread.NewClient(cfg.Thread.BaseURL, cfg.Thread.Timeout)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. In-memory stores
	projectRepo := memory.NewProjectRepository()
	sessionRepo := memory.NewSessionRepository()

	// 4. WebSocket hub
	hub := websocket.NewHub(feedLogger)
	go hub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(pubSub, cfg.App.DecisionSavedTopic)

	workspaceService := service.NewWorkspaceService(
		projectRepo,
		threadClient,
		sysLogger,
		cfg.Analysis.HighlightDuration,
	)

	extractionService := service.NewExtractionService(
		sessionRepo,
		projectRepo,
		threadClient,
		publisherService,
		sysLogger,
		cfg.Analysis.StageDelay,
		cfg.Analysis.FinalizeDelay,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.DecisionSavedTopic,
		workspaceService,
		hub,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		WorkspaceController:  controller.NewWorkspaceController(workspaceService),
		ExtractionController: controller.NewExtractionController(extractionService),
		ConsumerService:      consumerService,
		FeedHandler:          handler.NewFeedHandler(workspaceService, hub, feedLogger),
		WebSocketHub:         hub,
		WorkspaceService:     workspaceService,
	}
}
