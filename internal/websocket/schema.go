package websocket

import (
	"encoding/json"
	"time"

	"github.com/ngmvpwd/pakaya-sub001/internal/event"
)

// Reconnect policy the browser client must honor after an unexpected
// disconnect: wait the base delay, double it per attempt, cap the delay,
// give up after the attempt limit. The server itself never limits
// reconnects and treats every new connection identically.
const (
	ReconnectBaseDelay   = 1 * time.Second
	ReconnectMaxDelay    = 30 * time.Second
	ReconnectMaxAttempts = 5
)

// FrameHello is sent once per connection before any events. Event frames
// reuse the bus envelope {type, data, timestamp} directly.
const FrameHello = "hello"

// HelloFrame carries the reconnect policy so clients never hardcode it.
type HelloFrame struct {
	Type      string          `json:"type"`
	Data      ReconnectPolicy `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// ReconnectPolicy is the client-side backoff contract.
type ReconnectPolicy struct {
	BaseDelayMS int `json:"base_delay_ms"`
	MaxDelayMS  int `json:"max_delay_ms"`
	Multiplier  int `json:"multiplier"`
	MaxAttempts int `json:"max_attempts"`
}

// DefaultReconnectPolicy returns the policy advertised in hello frames.
func DefaultReconnectPolicy() ReconnectPolicy {
	return ReconnectPolicy{
		BaseDelayMS: int(ReconnectBaseDelay / time.Millisecond),
		MaxDelayMS:  int(ReconnectMaxDelay / time.Millisecond),
		Multiplier:  2,
		MaxAttempts: ReconnectMaxAttempts,
	}
}

// encodeHello serializes the hello frame for one new connection.
func encodeHello() ([]byte, error) {
	return json.Marshal(HelloFrame{
		Type:      FrameHello,
		Data:      DefaultReconnectPolicy(),
		Timestamp: time.Now().UTC(),
	})
}

// encodeEvent serializes a bus event into its wire envelope.
func encodeEvent(ev event.Event) ([]byte, error) {
	return json.Marshal(ev)
}
