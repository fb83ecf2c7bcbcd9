// Package server wires repositories, services and handlers into the gin engine.
package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/agency-hub/internal/config"
	"github.com/yukikurage/agency-hub/internal/constants"
	"github.com/yukikurage/agency-hub/internal/handlers"
	"github.com/yukikurage/agency-hub/internal/logging"
	"github.com/yukikurage/agency-hub/internal/middleware"
	"github.com/yukikurage/agency-hub/internal/realtime"
	"github.com/yukikurage/agency-hub/internal/repository"
	"github.com/yukikurage/agency-hub/internal/services"
	"github.com/yukikurage/agency-hub/internal/storage"
	"github.com/yukikurage/agency-hub/internal/token"
	"gorm.io/gorm"
)

// Options carries the process-level dependencies. Nil fields get defaults.
type Options struct {
	Config  *config.Config
	DB      *gorm.DB
	Hub     *realtime.Hub
	Emitter realtime.Emitter
	Store   sessions.Store
	AI      *services.AIService
	Files   storage.FileStorage
}

// Server is the assembled HTTP application.
type Server struct {
	Engine        *gin.Engine
	Hub           *realtime.Hub
	Tokens        *token.Manager
	Invoices      *services.InvoiceService
	Notifications *services.NotificationService
}

func New(opts Options) (*Server, error) {
	cfg := opts.Config
	if opts.Hub == nil {
		opts.Hub = realtime.NewHub()
	}
	if opts.Emitter == nil {
		opts.Emitter = opts.Hub
	}
	if opts.Files == nil {
		opts.Files = storage.NewLocalStorage(cfg.UploadDir, cfg.PublicBaseURL)
	}
	if opts.Store == nil {
		store, err := NewSessionStore(cfg)
		if err != nil {
			return nil, err
		}
		opts.Store = store
	}

	node, err := snowflake.NewNode(cfg.SnowflakeNode)
	if err != nil {
		return nil, fmt.Errorf("failed to create invoice number generator: %w", err)
	}

	tokens := token.NewManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryHours)*time.Hour)

	var identities *token.IdentityVerifier
	if cfg.ClerkJWTKey != "" {
		identities, err = token.NewIdentityVerifier(cfg.ClerkJWTKey, cfg.ClerkIssuer)
		if err != nil {
			return nil, err
		}
	}

	// Repositories
	userRepo := repository.NewUserRepository(opts.DB)
	agencyRepo := repository.NewAgencyRepository(opts.DB)
	clientRepo := repository.NewClientRepository(opts.DB)
	projectRepo := repository.NewProjectRepository(opts.DB)
	taskRepo := repository.NewTaskRepository(opts.DB)
	invoiceRepo := repository.NewInvoiceRepository(opts.DB)
	notificationRepo := repository.NewNotificationRepository(opts.DB)
	messageRepo := repository.NewMessageRepository(opts.DB)
	analyticsRepo := repository.NewAnalyticsRepository(opts.DB)

	// Services
	notificationService := services.NewNotificationService(notificationRepo, opts.Emitter)
	authService := services.NewAuthService(userRepo, agencyRepo, clientRepo, tokens, identities)
	agencyService := services.NewAgencyService(agencyRepo, userRepo, opts.Files)
	clientService := services.NewClientService(clientRepo)
	projectService := services.NewProjectService(projectRepo, clientRepo, notificationService)
	taskService := services.NewTaskService(taskRepo, projectRepo, userRepo, notificationService, opts.AI)
	invoiceService := services.NewInvoiceService(invoiceRepo, projectRepo, agencyRepo, userRepo, notificationService, node)
	teamService := services.NewTeamService(userRepo, clientRepo)
	chatService := services.NewChatService(messageRepo, userRepo, opts.Emitter)
	analyticsService := services.NewAnalyticsService(analyticsRepo)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	agencyHandler := handlers.NewAgencyHandler(agencyService, authService)
	clientHandler := handlers.NewClientHandler(clientService)
	projectHandler := handlers.NewProjectHandler(projectService)
	taskHandler := handlers.NewTaskHandler(taskService)
	invoiceHandler := handlers.NewInvoiceHandler(invoiceService)
	teamHandler := handlers.NewTeamHandler(teamService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	chatHandler := handlers.NewChatHandler(chatService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	realtimeHandler := handlers.NewRealtimeHandler(opts.Hub, tokens, userRepo, chatService, originChecker(cfg.CORSOrigins))

	r := gin.New()
	r.Use(gin.Recovery(), logging.RequestLogger())
	r.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	r.Use(sessions.Sessions(constants.SessionCookieName, opts.Store))

	r.Static("/uploads", cfg.UploadDir)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Agency Hub API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokens, userRepo)
	owner := middleware.RequireOwner()
	team := middleware.RequireTeam()

	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/clerk-sync", authHandler.ClerkSync)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		api.GET("/ws", realtimeHandler.Connect)

		agency := api.Group("/agency", requireAuth)
		{
			agency.GET("", agencyHandler.GetAgency)
			agency.PUT("", owner, agencyHandler.UpdateAgency)
			agency.POST("/setup", agencyHandler.SetupAgency)
		}

		clients := api.Group("/clients", requireAuth, owner)
		{
			clients.GET("", clientHandler.ListClients)
			clients.POST("", clientHandler.CreateClient)
			clients.GET("/:id", clientHandler.GetClient)
			clients.PUT("/:id", clientHandler.UpdateClient)
			clients.DELETE("/:id", clientHandler.DeleteClient)
		}

		projects := api.Group("/projects", requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("", owner, projectHandler.CreateProject)
			projects.PUT("/:id", owner, projectHandler.UpdateProject)
			projects.DELETE("/:id", owner, projectHandler.DeleteProject)
		}

		tasks := api.Group("/tasks", requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.GET("/capacity", owner, taskHandler.Capacity)
			tasks.POST("/generate", owner, taskHandler.GenerateTasks)
			tasks.POST("", owner, taskHandler.CreateTask)
			tasks.GET("/:id", taskHandler.GetTask)
			tasks.PUT("/:id", team, taskHandler.UpdateTask)
			tasks.DELETE("/:id", owner, taskHandler.DeleteTask)
			tasks.POST("/:id/comments", team, taskHandler.AddComment)
		}

		invoices := api.Group("/invoices", requireAuth)
		{
			invoices.GET("", invoiceHandler.ListInvoices)
			invoices.GET("/:id", invoiceHandler.GetInvoice)
			invoices.POST("", owner, invoiceHandler.CreateInvoice)
			invoices.PUT("/:id", owner, invoiceHandler.UpdateInvoice)
			invoices.PUT("/:id/status", owner, invoiceHandler.UpdateStatus)
			invoices.DELETE("/:id", owner, invoiceHandler.DeleteInvoice)
		}

		teamRoutes := api.Group("/team", requireAuth, owner)
		{
			teamRoutes.GET("", teamHandler.ListTeam)
			teamRoutes.POST("", teamHandler.AddMember)
			teamRoutes.GET("/:id", teamHandler.GetMember)
			teamRoutes.PUT("/:id", teamHandler.UpdateMember)
			teamRoutes.PUT("/:id/status", teamHandler.UpdateStatus)
			teamRoutes.PUT("/:id/password", teamHandler.ResetPassword)
			teamRoutes.DELETE("/:id", teamHandler.RemoveMember)
		}

		notifications := api.Group("/notifications", requireAuth)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PUT("/read-all", notificationHandler.MarkAllRead)
			notifications.PUT("/:id/read", notificationHandler.MarkRead)
		}

		chat := api.Group("/chat", requireAuth)
		{
			chat.GET("/users", chatHandler.ListUsers)
			chat.PUT("/read", chatHandler.MarkRead)
			chat.POST("", chatHandler.SendMessage)
			chat.GET("/:userId", chatHandler.Conversation)
		}

		analytics := api.Group("/analytics", requireAuth, owner)
		{
			analytics.GET("/overview", analyticsHandler.Overview())
			analytics.GET("/revenue", analyticsHandler.Revenue())
			analytics.GET("/projects", analyticsHandler.Projects())
			analytics.GET("/tasks", analyticsHandler.Tasks())
			analytics.GET("/clients", analyticsHandler.Clients())
			analytics.GET("/team", analyticsHandler.Team())
		}
	}

	return &Server{
		Engine:        r,
		Hub:           opts.Hub,
		Tokens:        tokens,
		Invoices:      invoiceService,
		Notifications: notificationService,
	}, nil
}

// NewSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func NewSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.JWTExpiryHours * 3600,
		HttpOnly: true,
		Secure:   cfg.IsRelease(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		c.AllowCredentials = false
		return c
	}
	c.AllowOrigins = origins
	return c
}

// originChecker admits websocket upgrades from the configured CORS origins and same-origin requests.
func originChecker(origins []string) func(*http.Request) bool {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed[origin] || allowed["*"] || origin == "http://"+r.Host || origin == "https://"+r.Host
	}
}
