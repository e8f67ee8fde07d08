package metric

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message types carried over the feed websocket.
const (
	TypeSystemMetrics = "systemMetrics"
	TypeSystemInfo    = "system_info"
)

// Message is the envelope for every frame sent by the feed.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SystemInfo is sent once when a client connects.
type SystemInfo struct {
	TotalMemoryMB int64 `json:"totalMemoryMB"`
}

// Snapshot is a full set of metric readings. Metrics missing from the map
// have no current value.
type Snapshot map[Name]float64

// Reading is a single cached value with the time its snapshot arrived.
type Reading struct {
	Value       float64
	LastUpdated time.Time
}

// ParseSnapshot decodes a snapshot object. Unknown keys, null values, and
// values that aren't numbers are dropped one key at a time. Anything other
// than a JSON object is rejected.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid data format received: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("invalid data format received: not an object")
	}

	snap := make(Snapshot, len(raw))
	for k, v := range raw {
		n := Name(k)
		if !n.Valid() {
			continue
		}
		var f *float64
		if err := json.Unmarshal(v, &f); err != nil || f == nil {
			continue
		}
		snap[n] = *f
	}
	return snap, nil
}

// Encode wraps a payload in a Message envelope.
func Encode(msgType string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: msgType, Data: data})
}

// MarshalJSON writes the snapshot with string keys in wire form.
func (s Snapshot) MarshalJSON() ([]byte, error) {
	out := make(map[string]float64, len(s))
	for k, v := range s {
		out[string(k)] = v
	}
	return json.Marshal(out)
}
