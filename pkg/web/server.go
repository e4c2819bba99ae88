// Package web provides the dashboard and streaming API for the
// targeting service: REST endpoints for status and the latest cycle,
// and WebSocket feeds for localization records and annotated frames.
package web

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/hub"
	"github.com/avosky/go-targeting/pkg/protocol"
	"github.com/avosky/go-targeting/pkg/targeting"
)

// Server is the dashboard/API server
type Server struct {
	app  *fiber.App
	port string

	// Hubs for websocket broadcast
	targetsHub   *hub.Hub
	annotatedHub *hub.Hub
	statusHub    *hub.Hub

	// Providers wired by the host process
	StatusFunc    func() protocol.StatusData
	GeometryFunc  func() targeting.Geometry
	LastCycleFunc func() targeting.Cycle

	logger *slog.Logger
}

// NewServer creates a new dashboard server listening on port
func NewServer(port string) *Server {
	s := &Server{
		port:         port,
		targetsHub:   hub.New("targets"),
		annotatedHub: hub.New("annotated"),
		statusHub:    hub.New("status"),
		logger:       log.Component("web"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "Targeting Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/geometry", s.handleGeometry)
	api.Get("/targets", s.handleTargets)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/targets", websocket.New(s.handleTargetsWS))
	app.Get("/ws/annotated", websocket.New(s.handleAnnotatedWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// App returns the underlying fiber app so the host process can
// register more routes (e.g. the sensor ingest endpoints).
func (s *Server) App() *fiber.App {
	return s.app
}

// Start starts the web server and its broadcast hubs
func (s *Server) Start() error {
	s.logger.Info("dashboard listening", "port", s.port)

	go s.targetsHub.Run()
	go s.annotatedHub.Run()
	go s.statusHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("web server error", "error", err)
		}
	}()
}

// BroadcastTarget sends one localization record to target-feed clients
func (s *Server) BroadcastTarget(t protocol.TargetData) {
	msg, err := protocol.NewMessage(protocol.TypeTarget, t)
	if err != nil {
		return
	}
	s.targetsHub.BroadcastJSON(msg)
}

// BroadcastAnnotated sends an annotated JPEG to image-feed clients
func (s *Server) BroadcastAnnotated(jpeg []byte) {
	s.annotatedHub.BroadcastBinary(jpeg)
}

// BroadcastStatus pushes a status update to status-feed clients
func (s *Server) BroadcastStatus(st protocol.StatusData) {
	msg, err := protocol.NewMessage(protocol.TypeStatus, st)
	if err != nil {
		return
	}
	s.statusHub.BroadcastJSON(msg)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
