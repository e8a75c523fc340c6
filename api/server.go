// Package api serves recorded chat transcripts over HTTP for inspection.
package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/papercomputeco/console/pkg/llm"
	"github.com/papercomputeco/console/pkg/transcript"
)

// Config is the API server configuration.
type Config struct {
	// Address to listen on (e.g., ":6061")
	ListenAddr string
}

// Server is a read-only HTTP view over a transcript store.
type Server struct {
	config Config
	store  transcript.Store
	logger *zap.Logger
	app    *fiber.App
}

// NewServer creates a Server over the given store.
func NewServer(config Config, store transcript.Store, logger *zap.Logger) *Server {
	app := fiber.New(fiber.Config{
		// Disable startup message for cleaner logs
		DisableStartupMessage: true,
	})

	s := &Server{
		config: config,
		store:  store,
		logger: logger,
		app:    app,
	}

	// Register routes
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(map[string]string{"status": "ok"})
	})
	app.Get("/stats", s.handleStats)
	app.Get("/sessions", s.handleListSessions)
	app.Get("/sessions/:id", s.handleGetSession)

	return s
}

// Run starts the server on the configured listening address.
func (s *Server) Run() error {
	s.logger.Info("starting transcript server",
		zap.String("listen", s.config.ListenAddr),
	)

	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// handleStats returns session and exchange counts.
func (s *Server) handleStats(c *fiber.Ctx) error {
	ctx := c.Context()

	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: llm.APIError{Message: "failed to list sessions"},
		})
	}

	var exchangeCount int
	for _, sess := range sessions {
		exchanges, err := s.store.Exchanges(ctx, sess.ID)
		if err != nil {
			continue
		}
		exchangeCount += len(exchanges)
	}

	return c.JSON(map[string]any{
		"session_count":  len(sessions),
		"exchange_count": exchangeCount,
	})
}

// handleListSessions returns all recorded sessions, most recent first.
func (s *Server) handleListSessions(c *fiber.Ctx) error {
	sessions, err := s.store.ListSessions(c.Context())
	if err != nil {
		s.logger.Error("failed to list sessions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: llm.APIError{Message: "failed to list sessions"},
		})
	}

	return c.JSON(map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// SessionResponse is one session with its exchanges in order.
type SessionResponse struct {
	Session   transcript.Session    `json:"session"`
	Exchanges []transcript.Exchange `json:"exchanges"`
}

// handleGetSession returns a single session's full transcript.
func (s *Server) handleGetSession(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(llm.ErrorResponse{
			Error: llm.APIError{Message: "id parameter required"},
		})
	}

	ctx := c.Context()

	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		var notFound transcript.ErrNotFound
		if errors.As(err, &notFound) {
			return c.Status(fiber.StatusNotFound).JSON(llm.ErrorResponse{
				Error: llm.APIError{Message: "session not found"},
			})
		}
		s.logger.Error("failed to get session", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: llm.APIError{Message: "failed to get session"},
		})
	}

	exchanges, err := s.store.Exchanges(ctx, id)
	if err != nil {
		s.logger.Error("failed to get exchanges", zap.String("id", id), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(llm.ErrorResponse{
			Error: llm.APIError{Message: "failed to get exchanges"},
		})
	}

	return c.JSON(SessionResponse{Session: sess, Exchanges: exchanges})
}
