package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"skillswap-service/internal/auth"
	"skillswap-service/internal/config"
	"skillswap-service/internal/db"
	"skillswap-service/internal/handlers"
	"skillswap-service/internal/middleware"
	"skillswap-service/internal/observability"
	"skillswap-service/internal/presence"
	"skillswap-service/internal/rabbitmq"
	"skillswap-service/internal/repositories"
	"skillswap-service/internal/telemetry"
	"skillswap-service/internal/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	database, err := db.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing := telemetry.InitTracing(context.Background(), "skillswap-service", cfg.OTLPEndpoint)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	log.Printf("event publisher mode=%s", rabbitmq.PublisherMode(publisher))
	emitter := telemetry.NewEventEmitter(publisher, "skillswap-service", cfg.Environment)

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	presenceStore := presence.NewStore(rdb)

	tokens := auth.NewTokenManager(cfg.JWTSecret)

	userRepo := repositories.NewUserRepo(database)
	peerRepo := repositories.NewPeerRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)

	hub := ws.NewHub()

	userHandler := handlers.NewUserHandler(userRepo, tokens)
	peerHandler := handlers.NewPeerHandler(peerRepo, userRepo, notificationRepo, hub, emitter)
	chatHandler := handlers.NewChatHandler(conversationRepo, messageRepo, peerRepo, userRepo, hub, emitter)
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	presenceHandler := handlers.NewPresenceHandler(presenceStore, peerRepo, conversationRepo, hub)

	conversationWS := ws.NewConversationWSHandler(hub, conversationRepo, tokens, emitter)
	userWS := ws.NewUserWSHandler(hub, tokens, emitter)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("skillswap-service"))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/users/sync", userHandler.Sync)

	authMiddleware := middleware.AuthMiddleware(tokens)

	router.GET("/users/:user_id", authMiddleware, userHandler.Get)
	router.PUT("/users/me", authMiddleware, userHandler.UpdateMe)
	router.GET("/users/:user_id/presence", authMiddleware, presenceHandler.GetPresence)

	router.GET("/peers", authMiddleware, peerHandler.ListPeers)
	router.GET("/peers/requests", authMiddleware, peerHandler.ListRequests)
	router.POST("/peers/requests", authMiddleware, peerHandler.SendRequest)
	router.POST("/peers/requests/:request_id/respond", authMiddleware, peerHandler.RespondRequest)
	router.DELETE("/peers/:user_id", authMiddleware, peerHandler.RemovePeer)

	router.GET("/conversations", authMiddleware, chatHandler.ListConversations)
	router.POST("/conversations/start", authMiddleware, chatHandler.StartConversation)
	router.GET("/conversations/:conversation_id/messages", authMiddleware, chatHandler.GetMessages)
	router.POST("/conversations/:conversation_id/messages", authMiddleware, chatHandler.PostMessage)
	router.POST("/conversations/:conversation_id/read", authMiddleware, chatHandler.MarkRead)

	router.GET("/notifications", authMiddleware, notificationHandler.List)
	router.POST("/notifications/:notification_id/read", authMiddleware, notificationHandler.MarkRead)
	router.POST("/notifications/read-all", authMiddleware, notificationHandler.MarkAllRead)

	router.PUT("/presence", authMiddleware, presenceHandler.SetPresence)
	router.PUT("/presence/typing", authMiddleware, presenceHandler.SetTyping)

	router.GET("/ws/conversations/:conversation_id", conversationWS.Handle)
	router.GET("/ws/me", userWS.Handle)

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
