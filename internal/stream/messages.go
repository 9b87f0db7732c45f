package stream

import "encoding/json"

// Envelope wraps all WebSocket messages with a type discriminator.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Server -> Client message types
const (
	TypeTelemetryLive = "telemetry:live"
	TypeKPIUpdate     = "kpi:update"
	TypeAlertsUpdate  = "alerts:update"
)

// NewEnvelope marshals payload under the given type. A nil payload is
// omitted.
func NewEnvelope(msgType string, payload any) ([]byte, error) {
	var raw json.RawMessage
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Envelope{Type: msgType, Payload: raw})
}
