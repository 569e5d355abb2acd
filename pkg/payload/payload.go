// Package payload is the wire-format boundary toward the host: a thin
// pass-through over the CBOR codec. Both directions fail soft and log detail
// instead of returning errors, matching the rest of the firmware's
// degrade-gracefully behaviour.
package payload

import (
	"log"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// VehicleMessage is a single named measurement as exchanged with the host.
type VehicleMessage struct {
	Name      string  `cbor:"1,keyasint"`
	Value     float64 `cbor:"2,keyasint"`
	Event     bool    `cbor:"3,keyasint,omitempty"`
	Timestamp int64   `cbor:"4,keyasint,omitempty"` // milliseconds since epoch
}

func New(name string, value float64) *VehicleMessage {
	return &VehicleMessage{
		Name:      name,
		Value:     value,
		Timestamp: time.Now().UnixMilli(),
	}
}

// Serialize encodes a message for the host. Returns the encoded bytes and
// their length; a nil message or encode error yields (nil, 0).
func Serialize(msg *VehicleMessage) ([]byte, int) {
	if msg == nil {
		log.Println("message object is nil")
		return nil, 0
	}
	data, err := cbor.Marshal(msg)
	if err != nil {
		log.Printf("error encoding message: %v", err)
		return nil, 0
	}
	return data, len(data)
}

// Deserialize decodes a host message into msg and reports success. On
// malformed input msg is left in an unspecified state.
func Deserialize(data []byte, msg *VehicleMessage) bool {
	if err := cbor.Unmarshal(data, msg); err != nil {
		log.Printf("message decoding failed: %v", err)
		return false
	}
	return true
}
