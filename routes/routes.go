package routes

import (
	"log/slog"
	"net/http"

	"quill/config"
	"quill/controllers"
	"quill/handlers"
	"quill/middleware"
	"quill/models"
	"quill/observability"
	"quill/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	_ "quill/docs"
)

// SetupRouter wires services, controllers and middleware into an engine.
// hub may be shared with other routers; its lifetime belongs to the caller.
func SetupRouter(db *gorm.DB, cfg *config.Config, hub *services.HubService, logger *slog.Logger) *gin.Engine {
	controllers.RegisterValidators()

	metrics := observability.NewMetrics(observability.Meter())
	sessions := services.NewSessionService(db, cfg.JWTSecret, cfg.SessionTTL)
	posts := services.NewPostService(db, metrics)
	likes := services.NewLikeService(db, hub, metrics)
	comments := services.NewCommentService(db, posts, hub, metrics)
	contacts := services.NewContactService(db, metrics)
	avatars := services.NewAvatarStore(cfg.MediaRoot, cfg.MediaURL, cfg.MaxAvatarBytes)

	r := gin.New()
	r.MaxMultipartMemory = cfg.MaxAvatarBytes
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.Tracing())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.LoadUser(sessions, cfg.SessionCookie))

	SetupRoutes(r,
		controllers.NewPostController(cfg, posts, likes, services.NewSearchService(db), sessions),
		controllers.NewCommentController(comments),
		controllers.NewAuthController(db, cfg, sessions),
		controllers.NewUserController(db, posts, avatars),
		controllers.NewContactController(contacts),
		controllers.NewAdminController(services.NewAdminService(db, contacts)),
		handlers.NewWebSocketHandler(hub, posts, cfg.CORSAllowedOrigins),
	)

	r.Static(cfg.MediaURL, cfg.MediaRoot)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func SetupRoutes(
	r *gin.Engine,
	postController *controllers.PostController,
	commentController *controllers.CommentController,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	contactController *controllers.ContactController,
	adminController *controllers.AdminController,
	w *handlers.WebSocketHandler,
) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/", postController.Feed)
	r.GET("/search/", postController.Search)
	r.GET("/new/", middleware.LoginRequired(), postController.NewForm)
	r.POST("/new/", middleware.LoginRequired(), postController.Create)

	post := r.Group("/:handle/:slug")
	{
		post.GET("/", postController.Detail)
		post.POST("/like/", middleware.LoginRequired(), postController.Like)
		post.GET("/edit/", middleware.LoginRequired(), postController.EditForm)
		post.POST("/edit/", middleware.LoginRequired(), postController.Edit)
		post.GET("/live/", w.HandleLive)
	}

	r.POST("/posts/:slug/comment/add/",
		middleware.LoginRequired(),
		middleware.PermissionRequired(models.PermCreateComment),
		commentController.Add,
	)

	account := r.Group("/account")
	{
		account.GET("/signup/", authController.SignupForm)
		account.POST("/signup/", authController.Signup)
		account.GET("/login/", authController.LoginForm)
		account.POST("/login/", authController.Login)
		account.GET("/logout/", authController.Logout)
		account.POST("/logout/", authController.Logout)

		account.GET("/:handle/", userController.Profile)
		account.GET("/:handle/edit/", middleware.LoginRequired(), userController.EditForm)
		account.POST("/:handle/edit/", middleware.LoginRequired(), userController.Edit)
	}

	r.GET("/contact/", contactController.Form)
	r.POST("/contact/", contactController.Submit)

	admin := r.Group("/admin")
	admin.Use(middleware.StaffRequired())
	{
		admin.GET("/posts", adminController.Posts)
		admin.GET("/users", adminController.Users)
		admin.GET("/comments", adminController.Comments)
		admin.GET("/likes", adminController.Likes)
		admin.GET("/contacts", adminController.Contacts)
		admin.DELETE("/contacts/:id", adminController.DeleteContact)
	}
}
