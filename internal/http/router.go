package api

import (
	"log"
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"pms/internal/config"
	"pms/internal/domain"
	h "pms/internal/http/handlers"
	"pms/internal/http/middleware"
)

// Handlers groups the route handlers wired by the composition root.
type Handlers struct {
	System    h.SystemHandler
	Auth      h.AuthHandler
	Users     h.UserHandler
	Projects  h.ProjectHandler
	Tasks     h.TaskHandler
	Calendar  h.CalendarHandler
	Chat      h.ChatHandler
	Dashboard h.DashboardHandler
	Files     h.FileHandler
	Reports   h.ReportHandler
}

// NewRouter builds the gin engine. Every request is rate limited and resolved
// to a principal; read routes accept anonymous callers (row scoping happens in
// the query layer) while mutations require a signed-in principal.
func NewRouter(cfg config.Config, logger *logrus.Logger, limiter *middleware.RateLimiter, parse middleware.TokenParser, hs Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		gin.Recovery(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.RateLimit(limiter),
		middleware.Authenticate(parse),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	api := r.Group("/api")
	{
		api.GET("/health", hs.System.Health)
		api.GET("/db-check", hs.System.DBCheck)
		api.GET("/routes", hs.System.Routes)

		auth := api.Group("/auth")
		auth.POST("/register", hs.Auth.Register)
		auth.POST("/login", hs.Auth.Login)
		auth.GET("/me", middleware.RequireAuth(), hs.Auth.Me)

		users := api.Group("/users", middleware.RequireAuth())
		users.GET("", hs.Users.List)
		users.GET("/:id", hs.Users.Get)
		users.POST("", middleware.RequireRole(domain.RoleAdmin), hs.Users.Create)
		users.PUT("/:id", hs.Users.Update)
		users.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), hs.Users.Delete)

		projects := api.Group("/projects")
		projects.GET("", hs.Projects.List)
		projects.GET("/:id", hs.Projects.Get)
		projects.GET("/:id/members", hs.Projects.Members)
		projects.POST("", middleware.RequireAuth(), hs.Projects.Create)
		projects.PUT("/:id", middleware.RequireAuth(), hs.Projects.Update)
		projects.DELETE("/:id", middleware.RequireAuth(), hs.Projects.Delete)
		projects.POST("/:id/members", middleware.RequireAuth(), hs.Projects.AddMember)
		projects.DELETE("/:id/members/:user_id", middleware.RequireAuth(), hs.Projects.RemoveMember)
		projects.GET("/:id/tasks", hs.Tasks.ListForProject)
		projects.POST("/:id/tasks", middleware.RequireAuth(), hs.Tasks.CreateForProject)
		projects.GET("/:id/report", hs.Reports.ProjectPDF)

		tasks := api.Group("/tasks")
		tasks.GET("", hs.Tasks.List)
		tasks.GET("/:id", hs.Tasks.Get)
		tasks.POST("", middleware.RequireAuth(), hs.Tasks.Create)
		tasks.PUT("/:id", middleware.RequireAuth(), hs.Tasks.Update)
		tasks.DELETE("/:id", middleware.RequireAuth(), hs.Tasks.Delete)

		events := api.Group("/events")
		events.GET("", hs.Calendar.List)
		events.GET("/:id", hs.Calendar.Get)
		events.POST("", middleware.RequireAuth(), hs.Calendar.Create)
		events.PUT("/:id", middleware.RequireAuth(), hs.Calendar.Update)
		events.DELETE("/:id", middleware.RequireAuth(), hs.Calendar.Delete)

		chat := api.Group("/chat", middleware.RequireAuth())
		chat.GET("/sessions", hs.Chat.ListSessions)
		chat.POST("/sessions", hs.Chat.CreateSession)
		chat.GET("/sessions/:id", hs.Chat.GetSession)
		chat.DELETE("/sessions/:id", hs.Chat.DeleteSession)
		chat.GET("/sessions/:id/messages", hs.Chat.Messages)
		chat.POST("/sessions/:id/messages", hs.Chat.SendMessage)

		api.GET("/dashboard", middleware.RequireAuth(), hs.Dashboard.Summary)

		files := api.Group("/files", middleware.RequireAuth())
		files.GET("", hs.Files.List)
		files.POST("", hs.Files.Upload)
		files.GET("/:id", hs.Files.Download)
		files.DELETE("/:id", hs.Files.Delete)

		api.POST("/graphql", h.GraphQL)
	}

	h.SetRouter(r)
	return r
}
