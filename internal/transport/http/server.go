package http

import (
	"time"

	"github.com/gin-gonic/gin"

	appsvc "blogfolio/internal/app"
	"blogfolio/internal/bootstrap"
	"blogfolio/internal/cache"
	"blogfolio/internal/platform/rabbitmq"
	"blogfolio/internal/repository"
	"blogfolio/internal/transport/http/handler"
	"blogfolio/internal/transport/http/middleware"
)

func NewRouter(app *bootstrap.App) *gin.Engine {
	gin.SetMode(app.Config.App.GinMode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	healthHandler := handler.NewHealthHandler(app)
	router.GET("/healthz", healthHandler.Check)

	userRepo := repository.NewUserRepository(app.MySQL)
	postRepo := repository.NewPostRepository(app.MySQL)

	publisher := rabbitmq.NewEventPublisher(app.MQConn, app.Config.RabbitMQ.AuditQueue)
	postCache := cache.NewPostCache(app.Redis, time.Duration(app.Config.Redis.PostTTLSeconds)*time.Second)
	tokenCfg := app.TokenConfig()

	authService := appsvc.NewAuthService(userRepo, tokenCfg, publisher, app.Logger)
	postService := appsvc.NewPostService(postRepo, postCache, publisher, app.Logger)
	userService := appsvc.NewUserService(userRepo)

	authHandler := handler.NewAuthHandler(authService)
	postHandler := handler.NewPostHandler(postService)
	userHandler := handler.NewUserHandler(userService)

	requireAuth := middleware.AuthJWT(tokenCfg, app.Logger)
	optionalAuth := middleware.OptionalAuthJWT(tokenCfg, app.Logger)

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)

	posts := api.Group("/posts")
	posts.GET("", postHandler.List)
	posts.GET("/:slug", optionalAuth, postHandler.GetBySlug)
	posts.POST("", requireAuth, postHandler.Create)
	posts.PUT("/:id", requireAuth, postHandler.Update)
	posts.DELETE("/:id", requireAuth, postHandler.Delete)

	users := api.Group("/users")
	users.GET("/me", requireAuth, userHandler.Me)
	users.PUT("/me", requireAuth, userHandler.UpdateMe)
	users.GET("/:id", userHandler.PublicProfile)

	return router
}
