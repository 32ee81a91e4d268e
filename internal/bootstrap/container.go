package bootstrap

import (
	"context"
	"log"
	"time"

	"unimind-be/internal/channel"
	"unimind-be/internal/config"
	"unimind-be/internal/controller"
	"unimind-be/internal/pkg/logger"
	"unimind-be/internal/realtime"
	"unimind-be/internal/repository/unitofwork"
	"unimind-be/internal/service"
	"unimind-be/internal/websocket"
	"unimind-be/pkg/assistant"
	"unimind-be/pkg/command"

	pktNats "unimind-be/pkg/nats"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController    controller.IChatController
	DMController      controller.IDirectMessageController
	CommandController controller.ICommandController

	// Background workers (main.go starts these)
	PushService *service.PushService

	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// Infrastructure: NATS for durable events, Redis for cross-instance push.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

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

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/push.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Realtime feed and per-user channels
	feed := realtime.NewFeed(sysLogger)
	dmStore := service.NewDirectMessageStore(uowFactory, natsPub, sysLogger)
	registry := channel.NewRegistry(dmStore, feed, sysLogger)

	// Assistant gateway
	gateway := assistant.NewClient(
		cfg.Assistant.AskURL,
		cfg.Assistant.IngestURL,
		time.Duration(cfg.Assistant.TimeoutSeconds)*time.Second,
	)

	// Consent-gated command pipeline
	oauthConf := &oauth2.Config{
		ClientID:     cfg.Calendar.ClientID,
		ClientSecret: cfg.Calendar.ClientSecret,
		RedirectURL:  cfg.Calendar.RedirectURL,
		Scopes:       []string{"https://www.googleapis.com/auth/calendar.events"},
		Endpoint:     google.Endpoint,
	}
	calendarClient := command.NewGoogleCalendarClient(cfg.Calendar.EventsURL, cfg.Calendar.TimeZone, oauthConf)
	commandBridge := service.NewCommandBridge(uowFactory, natsPub, sysLogger)
	dispatcher := command.NewDispatcher(calendarClient, commandBridge, commandBridge, sysLogger)

	// Services
	chatService := service.NewChatService(uowFactory, gateway, dispatcher, sysLogger)
	dmService := service.NewDirectMessageService(uowFactory, registry, sysLogger)

	var pushService *service.PushService
	if natsSub != nil {
		pushService = service.NewPushService(natsSub, wsHub, wsLogger)
	}

	return &Container{
		ChatController:    controller.NewChatController(chatService),
		DMController:      controller.NewDirectMessageController(dmService, wsHub),
		CommandController: controller.NewCommandController(dispatcher),

		PushService:  pushService,
		WebSocketHub: wsHub,
	}
}
