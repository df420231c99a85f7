package api

import (
	"errors"
	"time"

	"kbbot/docs"
	"kbbot/internal/api/handlers"
	"kbbot/internal/dto"
	"kbbot/pkg/auth"
	"kbbot/pkg/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Auth           *handlers.AuthHandler
	Bots           *handlers.BotHandler
	KnowledgeBases *handlers.KnowledgeBaseHandler
	Documents      *handlers.DocumentHandler
	Conversations  *handlers.ConversationHandler
}

type Options struct {
	// BodyLimit must leave room for the largest accepted upload.
	BodyLimit    int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func SetupRouter(h Handlers, jwtManager *auth.JWTManager, opts Options, appLogger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		BodyLimit:    opts.BodyLimit,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				appLogger.Error("Unhandled request error", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(dto.ErrorResponse{
				Success: false,
				Error:   err.Error(),
			})
		},
	})

	// Middleware
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(logger.New())

	_ = docs.SwaggerInfo
	app.Get("/swagger/*", swagger.HandlerDefault)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")

	// Auth routes (public)
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", h.Auth.Register)
	authRoutes.Post("/login", h.Auth.Login)
	authRoutes.Post("/refresh", h.Auth.RefreshToken)

	// Protected routes
	protected := api.Group("", middleware.AuthMiddleware(jwtManager, appLogger))

	// Static bot paths go before /bots/:id
	bots := protected.Group("/bots")
	bots.Get("/status", h.Bots.AllStatuses)
	bots.Get("/running", h.Bots.RunningBots)
	bots.Get("", h.Bots.ListBots)
	bots.Post("", h.Bots.CreateBot)
	bots.Get("/:id", h.Bots.GetBot)
	bots.Put("/:id", h.Bots.UpdateBot)
	bots.Delete("/:id", h.Bots.DeleteBot)
	bots.Post("/:id/start", h.Bots.StartBot)
	bots.Post("/:id/stop", h.Bots.StopBot)
	bots.Get("/:id/status", h.Bots.BotStatus)
	bots.Get("/:id/knowledge-bases", h.KnowledgeBases.ListKnowledgeBases)
	bots.Post("/:id/knowledge-bases", h.KnowledgeBases.CreateKnowledgeBase)
	bots.Get("/:id/stats", h.KnowledgeBases.BotStats)
	bots.Post("/:id/ask", h.KnowledgeBases.Ask)
	bots.Get("/:id/conversations", h.Conversations.ListConversations)

	kbs := protected.Group("/knowledge-bases")
	kbs.Get("/:id", h.KnowledgeBases.GetKnowledgeBase)
	kbs.Delete("/:id", h.KnowledgeBases.DeleteKnowledgeBase)
	kbs.Get("/:id/stats", h.KnowledgeBases.KnowledgeBaseStats)
	kbs.Post("/:id/search", h.KnowledgeBases.Search)
	kbs.Post("/:id/documents", h.Documents.UploadDocument)
	kbs.Get("/:id/documents", h.Documents.ListDocuments)

	documents := protected.Group("/documents")
	documents.Get("/:id", h.Documents.GetDocument)
	documents.Delete("/:id", h.Documents.DeleteDocument)
	documents.Post("/:id/process", h.Documents.ProcessDocument)
	documents.Get("/:id/chunks", h.Documents.ListChunks)

	return app
}
