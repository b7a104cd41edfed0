package ws

import (
	"encoding/json"
	"fmt"

	"captrivia/internal/domain"
)

// EncodeCommand serializes an outgoing command with a fresh nonce attached.
func EncodeCommand(typ CommandType, payload interface{}) ([]byte, error) {
	return json.Marshal(PlayerCommand{
		Type:    typ,
		Nonce:   NewNonce(),
		Payload: payload,
	})
}

// DecodeEvent parses and validates an inbound frame. Frames that are not
// JSON objects or that carry neither a type tag nor an error field are
// rejected with ErrMalformedMessage. An envelope with a non-empty Error is
// returned as-is regardless of its tag; the caller surfaces it to the UI
// instead of dispatching on the tag.
func DecodeEvent(frame []byte) (domain.GameEvent, error) {
	var event domain.GameEvent
	if err := json.Unmarshal(frame, &event); err != nil {
		return domain.GameEvent{}, fmt.Errorf("%w: %v", domain.ErrMalformedMessage, err)
	}
	if event.Type == "" && event.Error == "" {
		return domain.GameEvent{}, fmt.Errorf("%w: missing type", domain.ErrMalformedMessage)
	}
	return event, nil
}
