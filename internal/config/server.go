package config

import (
	"FallWatch/database/postgres"
	authHandler "FallWatch/internal/api/auth/handler"
	authRepository "FallWatch/internal/api/auth/repository"
	authService "FallWatch/internal/api/auth/service"
	detectionHandler "FallWatch/internal/api/detection/handler"
	detectionRepository "FallWatch/internal/api/detection/repository"
	detectionService "FallWatch/internal/api/detection/service"
	"FallWatch/internal/middleware"
	"FallWatch/pkg/analyzer"
	"FallWatch/pkg/bcrypt"
	"FallWatch/pkg/classifier"
	"FallWatch/pkg/gemini"
	"FallWatch/pkg/landmark"
	"FallWatch/pkg/mqtt"
	"FallWatch/pkg/redis"
	"FallWatch/pkg/s3"
	"FallWatch/pkg/smtp"
	"FallWatch/pkg/utils"
	"FallWatch/pkg/video"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	db             *sqlx.DB
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	bcryptUtils    bcrypt.IBcrypt
	handlers       []handler
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	landmarkClient landmark.IWebsocket
	videoOpener    video.Opener
	mqttPublisher  mqtt.IPublisher
	geminiClient   gemini.IGemini
	s3Client       s3.ItfS3
	uploadDir      string
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.landmarkClient == nil {
		return nil, fmt.Errorf("landmark client is required")
	}
	if server.middleware == nil {
		server.middleware = middleware.New(server.log)
	}
	if server.validator == nil {
		server.validator = NewValidator()
	}
	if server.utils == nil {
		server.utils = utils.New()
	}
	if server.videoOpener == nil {
		server.videoOpener = video.NewFFmpegOpener()
	}
	if server.uploadDir == "" {
		server.uploadDir = "uploads"
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithDB(db *sqlx.DB) ServerOption {
	return func(s *Server) error {
		s.db = db
		return nil
	}
}

// WithRedisServer enables the result cache; a nil client disables it.
func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithLandmarkClient(client landmark.IWebsocket) ServerOption {
	return func(s *Server) error {
		s.landmarkClient = client
		return nil
	}
}

func WithVideoOpener(opener video.Opener) ServerOption {
	return func(s *Server) error {
		s.videoOpener = opener
		return nil
	}
}

func WithUploadDir(dir string) ServerOption {
	return func(s *Server) error {
		s.uploadDir = dir
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

// The optional integrations below log and stay disabled when their
// environment is not configured; any other failure aborts startup.

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if errors.Is(err, s3.ErrNotConfigured) {
			s.logDisabled("S3 video archive", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if errors.Is(err, gemini.ErrNotConfigured) {
			s.logDisabled("Gemini advice", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithMQTTPublisher() ServerOption {
	return func(s *Server) error {
		publisher, err := mqtt.New(s.log)
		if errors.Is(err, mqtt.ErrNotConfigured) {
			s.logDisabled("MQTT alerts", err)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create MQTT publisher: %w", err)
		}
		s.mqttPublisher = publisher
		return nil
	}
}

func WithSMTPMailer() ServerOption {
	return func(s *Server) error {
		mailer, err := smtp.New()
		if errors.Is(err, smtp.ErrNotConfigured) {
			s.logDisabled("E-mail alerts", err)
			return nil
		}
		if err != nil {
			return err
		}
		s.smtpMailer = mailer
		return nil
	}
}

func (s *Server) logDisabled(feature string, reason error) {
	if s.log != nil {
		s.log.Infof("%s disabled: %v", feature, reason)
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func WithBcryptUtils() ServerOption {
	return func(s *Server) error {
		s.bcryptUtils = bcrypt.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	if s.bcryptUtils == nil {
		s.bcryptUtils = bcrypt.New()
	}

	// Auth Domain
	authRepo := authRepository.New(s.db, s.log)
	authServices := authService.New(s.log, authRepo, s.bcryptUtils, s.utils)
	authHandlers := authHandler.New(s.log, authServices, s.validator, s.middleware)

	// Detection
	frameClassifier := classifier.New(s.landmarkClient, s.log)
	videoAnalyzer := analyzer.New(s.videoOpener, frameClassifier, s.log)
	detectionRepo := detectionRepository.New(s.db, s.log)
	detectionServices := detectionService.NewDetectionService(
		s.log,
		detectionRepo,
		videoAnalyzer,
		frameClassifier,
		s.utils,
		s.uploadDir,
		detectionService.Integrations{
			Cache:     s.redisServer,
			Archive:   s.s3Client,
			Advisor:   s.geminiClient,
			Publisher: s.mqttPublisher,
			Mailer:    s.smtpMailer,
		},
	)
	detectionHandlers := detectionHandler.New(s.log, s.validator, s.middleware, detectionServices, s.utils)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, authHandlers, detectionHandlers)
}

func (s *Server) Run() error {
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware())
	router := s.engine.Group("/api/v1")

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

// Shutdown stops accepting requests and releases the outbound clients.
func (s *Server) Shutdown() error {
	err := s.engine.Shutdown()

	s.landmarkClient.CloseConnections()
	if s.mqttPublisher != nil {
		s.mqttPublisher.Close()
	}
	if s.db != nil {
		if dbErr := s.db.Close(); dbErr != nil && err == nil {
			err = dbErr
		}
	}

	return err
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
			"landmark": fiber.Map{
				"pose":      s.landmarkClient.IsConnected(landmark.PoseModel),
				"face_mesh": s.landmarkClient.IsConnected(landmark.FaceMeshModel),
			},
		})
	})
}
