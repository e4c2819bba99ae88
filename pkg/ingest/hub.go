// Package ingest accepts sensor WebSocket connections and dispatches
// their streams (color frames, depth frames, detection boxes, object
// counts) to typed callbacks. Each stream is independent; the hub never
// correlates or buffers across streams.
package ingest

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/avosky/go-targeting/internal/log"
	"github.com/avosky/go-targeting/pkg/protocol"
)

// SensorConnection represents one connected sensor publisher
type SensorConnection struct {
	ID        string
	Conn      *websocket.Conn
	Connected time.Time
	LastSeen  time.Time

	mu sync.Mutex
}

// Send sends a message back to the sensor
func (s *SensorConnection) Send(msg *protocol.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := msg.Bytes()
	if err != nil {
		return err
	}

	return s.Conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages WebSocket connections from sensor publishers
type Hub struct {
	mu      sync.RWMutex
	sensors map[string]*SensorConnection

	// Callbacks
	onFrame       func(sensorID string, frame *protocol.FrameData)
	onDepth       func(sensorID string, depth *protocol.DepthData)
	onBoxes       func(sensorID string, boxes *protocol.BoxesData)
	onObjectCount func(sensorID string, count int)

	// Stats
	messagesReceived atomic.Uint64
	framesReceived   atomic.Uint64
	depthReceived    atomic.Uint64

	logger *slog.Logger
}

// NewHub creates a new sensor hub
func NewHub() *Hub {
	return &Hub{
		sensors: make(map[string]*SensorConnection),
		logger:  log.Component("ingest"),
	}
}

// OnFrame sets the callback for incoming color frames
func (h *Hub) OnFrame(callback func(sensorID string, frame *protocol.FrameData)) {
	h.mu.Lock()
	h.onFrame = callback
	h.mu.Unlock()
}

// OnDepth sets the callback for incoming depth frames
func (h *Hub) OnDepth(callback func(sensorID string, depth *protocol.DepthData)) {
	h.mu.Lock()
	h.onDepth = callback
	h.mu.Unlock()
}

// OnBoxes sets the callback for incoming detection sets
func (h *Hub) OnBoxes(callback func(sensorID string, boxes *protocol.BoxesData)) {
	h.mu.Lock()
	h.onBoxes = callback
	h.mu.Unlock()
}

// OnObjectCount sets the callback for detector object counts
func (h *Hub) OnObjectCount(callback func(sensorID string, count int)) {
	h.mu.Lock()
	h.onObjectCount = callback
	h.mu.Unlock()
}

// RegisterRoutes registers WebSocket routes on a Fiber app
func (h *Hub) RegisterRoutes(app *fiber.App) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/sensor", websocket.New(h.handleSensor))
	app.Get("/ws/sensor/:id", websocket.New(h.handleSensor))
}

// handleSensor handles a sensor WebSocket connection
func (h *Hub) handleSensor(c *websocket.Conn) {
	sensorID := c.Params("id")
	if sensorID == "" {
		sensorID = "sensor-" + uuid.NewString()[:8]
	}

	sensor := &SensorConnection{
		ID:        sensorID,
		Conn:      c,
		Connected: time.Now(),
		LastSeen:  time.Now(),
	}

	h.mu.Lock()
	h.sensors[sensorID] = sensor
	count := len(h.sensors)
	h.mu.Unlock()

	h.logger.Info("sensor connected", "sensor", sensorID, "total", count)

	defer func() {
		h.mu.Lock()
		delete(h.sensors, sensorID)
		count := len(h.sensors)
		h.mu.Unlock()

		h.logger.Info("sensor disconnected", "sensor", sensorID, "total", count)
	}()

	for {
		_, data, err := c.ReadMessage()
		if err != nil {
			h.logger.Debug("sensor read error", "sensor", sensorID, "error", err)
			return
		}

		sensor.mu.Lock()
		sensor.LastSeen = time.Now()
		sensor.mu.Unlock()

		h.messagesReceived.Add(1)
		h.handleMessage(sensorID, data)
	}
}

// handleMessage processes an incoming message from a sensor
func (h *Hub) handleMessage(sensorID string, data []byte) {
	msg, err := protocol.ParseMessage(data)
	if err != nil {
		h.logger.Debug("parse error", "sensor", sensorID, "error", err)
		return
	}

	h.mu.RLock()
	frameCb := h.onFrame
	depthCb := h.onDepth
	boxesCb := h.onBoxes
	countCb := h.onObjectCount
	h.mu.RUnlock()

	switch msg.Type {
	case protocol.TypeFrame:
		h.framesReceived.Add(1)
		if frameCb != nil {
			frame, err := msg.GetFrameData()
			if err == nil {
				frameCb(sensorID, frame)
			}
		}

	case protocol.TypeDepth:
		h.depthReceived.Add(1)
		if depthCb != nil {
			depth, err := msg.GetDepthData()
			if err == nil {
				depthCb(sensorID, depth)
			}
		}

	case protocol.TypeBoxes:
		if boxesCb != nil {
			boxes, err := msg.GetBoxesData()
			if err == nil {
				boxesCb(sensorID, boxes)
			}
		}

	case protocol.TypeObjectCount:
		if countCb != nil {
			count, err := msg.GetObjectCountData()
			if err == nil {
				countCb(sensorID, count.Count)
			}
		}

	case protocol.TypePing:
		h.sendPong(sensorID, msg.Timestamp)
	}
}

// sendPong sends a pong response to a sensor
func (h *Hub) sendPong(sensorID string, pingTS int64) {
	msg, err := protocol.NewPongMessage(pingTS, time.Now().UnixMilli())
	if err != nil {
		return
	}

	h.mu.RLock()
	sensor, ok := h.sensors[sensorID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	if err := sensor.Send(msg); err != nil {
		h.logger.Debug("pong send failed", "sensor", sensorID, "error", err)
	}
}

// SensorCount returns the number of connected sensors
func (h *Hub) SensorCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sensors)
}

// Sensors returns all connected sensors
func (h *Hub) Sensors() []*SensorConnection {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*SensorConnection, 0, len(h.sensors))
	for _, s := range h.sensors {
		out = append(out, s)
	}
	return out
}

// Stats contains hub statistics
type Stats struct {
	SensorCount      int    `json:"sensor_count"`
	MessagesReceived uint64 `json:"messages_received"`
	FramesReceived   uint64 `json:"frames_received"`
	DepthReceived    uint64 `json:"depth_received"`
}

// GetStats returns current hub statistics
func (h *Hub) GetStats() Stats {
	return Stats{
		SensorCount:      h.SensorCount(),
		MessagesReceived: h.messagesReceived.Load(),
		FramesReceived:   h.framesReceived.Load(),
		DepthReceived:    h.depthReceived.Load(),
	}
}
