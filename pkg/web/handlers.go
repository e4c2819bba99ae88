package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/avosky/go-targeting/pkg/hub"
	"github.com/avosky/go-targeting/pkg/protocol"
)

// handleStatus returns current service status
func (s *Server) handleStatus(c *fiber.Ctx) error {
	if s.StatusFunc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "status not available",
		})
	}
	return c.JSON(s.StatusFunc())
}

// handleGeometry returns the fixed camera geometry
func (s *Server) handleGeometry(c *fiber.Ctx) error {
	if s.GeometryFunc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "geometry not available",
		})
	}
	return c.JSON(s.GeometryFunc())
}

// handleTargets returns the localization records of the latest cycle
func (s *Server) handleTargets(c *fiber.Ctx) error {
	if s.LastCycleFunc == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "targets not available",
		})
	}

	cycle := s.LastCycleFunc()
	targets := make([]protocol.TargetData, 0, len(cycle.Targets))
	for _, t := range cycle.Targets {
		targets = append(targets, protocol.TargetData{
			Label:        t.Label,
			RangeM:       t.Range.Sentinel(),
			AzimuthDeg:   t.AzimuthDeg,
			ElevationDeg: t.ElevationDeg,
			FrameWidth:   cycle.Width,
			FrameHeight:  cycle.Height,
			Seq:          cycle.Seq,
		})
	}

	return c.JSON(fiber.Map{
		"seq":     cycle.Seq,
		"targets": targets,
	})
}

// handleTargetsWS streams localization records as they are produced
func (s *Server) handleTargetsWS(c *websocket.Conn) {
	hub.NewClient(s.targetsHub, c).Run()
}

// handleAnnotatedWS streams annotated JPEG frames
func (s *Server) handleAnnotatedWS(c *websocket.Conn) {
	hub.NewClient(s.annotatedHub, c).Run()
}

// handleStatusWS streams status updates
func (s *Server) handleStatusWS(c *websocket.Conn) {
	hub.NewClient(s.statusHub, c).Run()
}
