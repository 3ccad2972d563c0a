package detectionHandler

import (
	detectionService "FallWatch/internal/api/detection/service"
	"FallWatch/internal/middleware"
	"FallWatch/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type DetectionHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	detectionService detectionService.IDetectionService
	utils            utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	ds detectionService.IDetectionService,
	utils utils.IUtils,
) *DetectionHandler {
	return &DetectionHandler{
		detectionService: ds,
		log:              log,
		validator:        validator,
		middleware:       middleware,
		utils:            utils,
	}
}

func (h *DetectionHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	srv.Post("/predict", h.middleware.NewRateLimiter, h.middleware.NewOptionalTokenMiddleware, h.HandlePredict)

	srv.Get("/analyses", h.middleware.NewTokenMiddleware, h.HandleListAnalyses)
	srv.Get("/analyses/:id", h.middleware.NewTokenMiddleware, h.HandleGetAnalysis)
	srv.Post("/analyses/:id/advice", h.middleware.NewRateLimiter, h.middleware.NewTokenMiddleware, h.HandleAdvice)

	live := srv.Group("/detection")
	live.Use("/ws", wsMiddleware)
	live.Get("/ws", websocket.New(h.handleWebSocket))
}
