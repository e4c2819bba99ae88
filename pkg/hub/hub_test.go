package hub

import (
	"encoding/json"
	"testing"
)

func TestBroadcastDoesNotBlock(t *testing.T) {
	h := New("test")

	// No Run loop draining: the buffered channel absorbs messages and
	// overflow is dropped rather than blocking the caller.
	for i := 0; i < 1000; i++ {
		h.Broadcast(NewBinaryMessage([]byte{1, 2, 3}))
	}
}

func TestBroadcastJSON(t *testing.T) {
	h := New("test")

	if err := h.BroadcastJSON(map[string]int{"seq": 1}); err != nil {
		t.Fatalf("BroadcastJSON: %v", err)
	}

	msg := <-h.broadcast
	if msg.Type != JSONMessage {
		t.Errorf("type = %v, want JSONMessage", msg.Type)
	}
	var decoded map[string]int
	if err := json.Unmarshal(msg.Data, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded["seq"] != 1 {
		t.Errorf("seq = %d, want 1", decoded["seq"])
	}

	if err := h.BroadcastJSON(func() {}); err == nil {
		t.Error("unmarshalable value should return an error")
	}
}

func TestNewHubState(t *testing.T) {
	h := New("test")
	if h.ClientCount() != 0 {
		t.Error("new hub should have no clients")
	}
	if h.IsRunning() {
		t.Error("hub should not report running before Run")
	}
}
