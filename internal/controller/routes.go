package controller

import (
	"errors"
	"net/http"
	"strings"

	"github.com/benbeisheim/webchess-backend/internal/config"
	"github.com/benbeisheim/webchess-backend/internal/middleware"
	"github.com/benbeisheim/webchess-backend/internal/service"
	"github.com/benbeisheim/webchess-backend/internal/views"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/template/html/v2"
	"github.com/gofiber/websocket/v2"
)

// NewApp builds the fiber application with every route wired to gameService.
func NewApp(cfg config.Config, gameService *service.GameService) *fiber.App {
	app := fiber.New(fiber.Config{
		Views:        html.NewFileSystem(http.FS(views.FS), ".html"),
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, X-Session-ID",
		AllowMethods:     "GET, POST, DELETE, OPTIONS",
		AllowCredentials: cfg.AllowOrigins != "*",
	}))

	// Initialize controllers
	gameController := NewGameController(gameService)
	pageController := NewPageController(gameService)
	wsController := NewWebSocketController(gameService)

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:       http.FS(views.FS),
		PathPrefix: "static",
	}))

	// Page routes
	session := middleware.EnsureSession(cfg.SessionTTL)
	app.Get("/", session, pageController.Index)
	app.Post("/move", session, pageController.Move)
	app.Post("/reset", session, pageController.Reset)

	// Set up WebSocket routes
	app.Get("/ws/games/:gameId", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         splitOrigins(cfg.AllowOrigins),
	}))

	// Set up REST routes
	api := app.Group("/api")
	api.Post("/validate", gameController.Validate)

	gameRoutes := api.Group("/games")
	gameRoutes.Post("/", gameController.CreateGame)
	gameRoutes.Get("/:gameId", gameController.GetGameState)
	gameRoutes.Delete("/:gameId", gameController.DeleteGame)
	gameRoutes.Post("/:gameId/moves", gameController.MakeMove)
	gameRoutes.Post("/:gameId/reset", gameController.ResetGame)

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		log.Errorf("%s %s: %v", c.Method(), c.Path(), err)
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
