package server

import (
	"net/http"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/config"
	"socialnet/backend/internal/handler"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter builds the gin engine with every route of the API.
// It expects config.AppConfig and database.DB to be initialized.
func NewRouter() (*gin.Engine, error) {
	// Request bodies must not carry fields the input structs don't declare.
	binding.EnableDecoderDisallowUnknownFields = true
	if err := handler.RegisterValidators(); err != nil {
		return nil, err
	}

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check endpoint
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	limiter := auth.NewRateLimiter(config.AppConfig.AuthRateLimit, config.AppConfig.AuthRateBurst)

	api := router.Group("/api")
	{
		// User routes
		userRoutes := api.Group("/user")
		{
			userRoutes.POST("/registro", limiter.Middleware(), handler.RegisterUser)
			userRoutes.POST("/login", limiter.Middleware(), handler.LoginUser)
			userRoutes.GET("/avatar/:file", handler.GetAvatar)
			userRoutes.GET("/profile/:id", auth.OptionalAuthMiddleware(), handler.GetProfile)

			protected := userRoutes.Group("")
			protected.Use(auth.AuthMiddleware(), auth.RequireAccount())
			{
				protected.GET("/list", handler.ListUsers)
				protected.GET("/list/:page", handler.ListUsers)
				protected.PUT("/update", handler.UpdateUser)
				protected.POST("/upload", handler.UploadAvatar)
				protected.GET("/counters", handler.GetCounters)
				protected.GET("/counters/:id", handler.GetCounters)
			}
		}

		// Follow routes (protected)
		followRoutes := api.Group("/follow")
		followRoutes.Use(auth.AuthMiddleware(), auth.RequireAccount())
		{
			followRoutes.POST("/save", handler.SaveFollow)
			followRoutes.DELETE("/unfollow/:id", handler.Unfollow)
			followRoutes.GET("/following", handler.GetFollowing)
			followRoutes.GET("/following/:id", handler.GetFollowing)
			followRoutes.GET("/following/:id/:page", handler.GetFollowing)
			followRoutes.GET("/followers", handler.GetFollowers)
			followRoutes.GET("/followers/:id", handler.GetFollowers)
			followRoutes.GET("/followers/:id/:page", handler.GetFollowers)
		}

		// Publication routes (protected)
		publicationRoutes := api.Group("/publication")
		publicationRoutes.Use(auth.AuthMiddleware(), auth.RequireAccount())
		{
			publicationRoutes.POST("/save", handler.SavePublication)
			publicationRoutes.GET("/detail/:id", handler.GetPublication)
			publicationRoutes.DELETE("/remove/:id", handler.RemovePublication)
			publicationRoutes.GET("/user/:id", handler.GetUserPublications)
			publicationRoutes.GET("/user/:id/:page", handler.GetUserPublications)
			publicationRoutes.GET("/feed", handler.GetFeed)
			publicationRoutes.GET("/feed/:page", handler.GetFeed)
		}

		// Notification stream (protected)
		api.GET("/notifications/stream", auth.AuthMiddleware(), auth.RequireAccount(), handler.StreamNotifications)
	}

	return router, nil
}
