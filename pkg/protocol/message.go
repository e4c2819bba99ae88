// Package protocol defines the WebSocket message types between sensors,
// the targeting service, and dashboard clients.
package protocol

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/avosky/go-targeting/pkg/detect"
)

// MessageType identifies the type of WebSocket message
type MessageType string

const (
	// Sensor → service messages
	TypeFrame       MessageType = "frame"        // Color video frame
	TypeDepth       MessageType = "depth"        // Registered depth frame
	TypeBoxes       MessageType = "boxes"        // Detection box set
	TypeObjectCount MessageType = "object_count" // Detector object count

	// Service → client messages
	TypeTarget MessageType = "target" // One localization record
	TypeStatus MessageType = "status" // Service status

	// Bidirectional
	TypePing MessageType = "ping" // Health check
	TypePong MessageType = "pong" // Health check response
)

// Message is the base wrapper for all WebSocket messages
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp int64           `json:"ts,omitempty"` // Unix milliseconds
	Data      json.RawMessage `json:"data,omitempty"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(msgType MessageType, data interface{}) (*Message, error) {
	var rawData json.RawMessage
	if data != nil {
		var err error
		rawData, err = json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal message data: %w", err)
		}
	}

	return &Message{
		Type:      msgType,
		Timestamp: time.Now().UnixMilli(),
		Data:      rawData,
	}, nil
}

// ParseData unmarshals the message data into the provided struct
func (m *Message) ParseData(v interface{}) error {
	if m.Data == nil {
		return nil
	}
	return json.Unmarshal(m.Data, v)
}

// Bytes returns the JSON-encoded message
func (m *Message) Bytes() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage parses a JSON message from bytes
func ParseMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	return &msg, nil
}

// =============================================================================
// Sensor → Service Message Types
// =============================================================================

// FrameData contains a color video frame
type FrameData struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Format  string `json:"format"` // "jpeg"
	Data    string `json:"data"`   // base64 encoded
	FrameID uint64 `json:"frame_id,omitempty"`
}

// Bytes decodes the base64 frame payload
func (f *FrameData) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Data)
}

// DepthData contains a registered depth frame as little-endian float32
// meters, row-major, matching the color frame dimensions
type DepthData struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Data   string `json:"data"` // base64 encoded LE float32
}

// Floats decodes the depth payload into a row-major float32 buffer
func (d *DepthData) Floats() ([]float32, error) {
	raw, err := base64.StdEncoding.DecodeString(d.Data)
	if err != nil {
		return nil, fmt.Errorf("decode depth payload: %w", err)
	}
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("depth payload length %d not a multiple of 4", len(raw))
	}
	out := make([]float32, len(raw)/4)
	for i := range out {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out, nil
}

// BoxesData contains one detection set, replacing any held set
type BoxesData struct {
	Boxes []detect.Box `json:"boxes"`
}

// ObjectCountData reports how many objects the detector currently sees.
// A count of zero clears the held detection set.
type ObjectCountData struct {
	Count int `json:"count"`
}

// =============================================================================
// Service → Client Message Types
// =============================================================================

// TargetData is one localization record for one detected object.
// RangeM is -999 when no valid range measurement exists.
type TargetData struct {
	Label        string  `json:"label"`
	RangeM       float64 `json:"range_m"`
	AzimuthDeg   float64 `json:"azimuth_deg"`
	ElevationDeg float64 `json:"elevation_deg"`
	FrameWidth   int     `json:"frame_width,omitempty"`
	FrameHeight  int     `json:"frame_height,omitempty"`
	Seq          uint64  `json:"seq,omitempty"`
}

// StatusData reports service status to dashboard clients
type StatusData struct {
	EngineState      string `json:"engine_state"`
	SensorsConnected int    `json:"sensors_connected"`
	FramesReceived   uint64 `json:"frames_received"`
	DepthReceived    uint64 `json:"depth_received"`
	TargetsEmitted   uint64 `json:"targets_emitted"`
	LastCycleSeq     uint64 `json:"last_cycle_seq"`
}

// PongData echoes a ping timestamp for latency measurement
type PongData struct {
	PingTS int64 `json:"ping_ts"`
	PongTS int64 `json:"pong_ts"`
}

// =============================================================================
// Constructors and typed accessors
// =============================================================================

// NewFrameMessage creates a frame message from JPEG bytes
func NewFrameMessage(jpeg []byte, width, height int, frameID uint64) (*Message, error) {
	return NewMessage(TypeFrame, FrameData{
		Width:   width,
		Height:  height,
		Format:  "jpeg",
		Data:    base64.StdEncoding.EncodeToString(jpeg),
		FrameID: frameID,
	})
}

// NewDepthMessage creates a depth message from a float32 meter buffer
func NewDepthMessage(buf []float32, width, height int) (*Message, error) {
	raw := make([]byte, len(buf)*4)
	for i, v := range buf {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return NewMessage(TypeDepth, DepthData{
		Width:  width,
		Height: height,
		Data:   base64.StdEncoding.EncodeToString(raw),
	})
}

// NewBoxesMessage creates a detection-set message
func NewBoxesMessage(boxes []detect.Box) (*Message, error) {
	return NewMessage(TypeBoxes, BoxesData{Boxes: boxes})
}

// NewObjectCountMessage creates an object-count message
func NewObjectCountMessage(count int) (*Message, error) {
	return NewMessage(TypeObjectCount, ObjectCountData{Count: count})
}

// NewPongMessage creates a pong response for a ping
func NewPongMessage(pingTS, pongTS int64) (*Message, error) {
	return NewMessage(TypePong, PongData{PingTS: pingTS, PongTS: pongTS})
}

// GetFrameData parses the message as frame data
func (m *Message) GetFrameData() (*FrameData, error) {
	if m.Type != TypeFrame {
		return nil, fmt.Errorf("message type %s is not frame", m.Type)
	}
	var data FrameData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetDepthData parses the message as depth data
func (m *Message) GetDepthData() (*DepthData, error) {
	if m.Type != TypeDepth {
		return nil, fmt.Errorf("message type %s is not depth", m.Type)
	}
	var data DepthData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetBoxesData parses the message as a detection set
func (m *Message) GetBoxesData() (*BoxesData, error) {
	if m.Type != TypeBoxes {
		return nil, fmt.Errorf("message type %s is not boxes", m.Type)
	}
	var data BoxesData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetObjectCountData parses the message as an object count
func (m *Message) GetObjectCountData() (*ObjectCountData, error) {
	if m.Type != TypeObjectCount {
		return nil, fmt.Errorf("message type %s is not object_count", m.Type)
	}
	var data ObjectCountData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// GetTargetData parses the message as a localization record
func (m *Message) GetTargetData() (*TargetData, error) {
	if m.Type != TypeTarget {
		return nil, fmt.Errorf("message type %s is not target", m.Type)
	}
	var data TargetData
	if err := m.ParseData(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
