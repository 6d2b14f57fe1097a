package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "finbro-chat/internal/app"
	"finbro-chat/internal/bootstrap"
	"finbro-chat/internal/botclient"
	"finbro-chat/internal/cache"
	"finbro-chat/internal/platform/rabbitmq"
	"finbro-chat/internal/repository"
	"finbro-chat/internal/transport/http/handler"
	"finbro-chat/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.CORS())

	healthHandler := handler.NewHealthHandler(app)
	router.StaticFile("/", "web/index.html")
	router.StaticFile("/chat", "web/chat.html")
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	chatRepo := repository.NewChatRepository(app.MySQL)
	messageRepo := repository.NewMessageRepository(app.MySQL)

	historyCache := cache.NewHistoryCache(
		app.Redis,
		time.Duration(app.Config.Redis.HistoryTTLSeconds)*time.Second,
		time.Duration(app.Config.Redis.HistoryDirtyTTLSeconds)*time.Second,
	)
	publisher := rabbitmq.NewMessagePublisher(app.MQConn, app.Config.RabbitMQ.MessagePersistQueue)
	bot := botclient.New(botclient.Config{
		Endpoint: app.Config.Bot.Endpoint,
		Password: app.Config.Bot.Password,
		Timeout:  time.Duration(app.Config.Bot.TimeoutSeconds) * time.Second,
	})

	authService := appsvc.NewAuthService(
		userRepo,
		app.Config.Auth.JWTSecret,
		time.Duration(app.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	chatService := appsvc.NewChatService(chatRepo, messageRepo, publisher, historyCache, bot, app.Logger)
	historyService := appsvc.NewHistoryService(chatRepo, messageRepo, historyCache)

	authHandler := handler.NewAuthHandler(authService)
	chatHandler := handler.NewChatHandler(chatService)
	historyHandler := handler.NewHistoryHandler(historyService)

	v1 := router.Group("/api/v1")
	authGroup := v1.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(app.Config.Auth.JWTSecret), authHandler.Me)

	chatGroup := v1.Group("/chat")
	chatGroup.POST("/messages", chatHandler.SendMessage)
	chatGroup.GET("/transcript", chatHandler.Transcript)

	historyGroup := chatGroup.Group("/history")
	historyGroup.Use(middleware.RequireUserID())
	historyGroup.POST("", historyHandler.PostAction)
	historyGroup.GET("", historyHandler.GetHistory)

	v1.GET("/chats", middleware.RequireUserID(), historyHandler.GetHistory)

	return router
}
