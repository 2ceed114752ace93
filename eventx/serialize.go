package eventx

import (
	"encoding/json"
	"time"
)

// SerializableEvent is the wire form of an event
type SerializableEvent struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Source    string          `json:"source"`
	Version   string          `json:"version"`
	Data      json.RawMessage `json:"data"`
	Metadata  map[string]any  `json:"metadata,omitempty"`
}

// ToSerializable converts an event to its wire form
func ToSerializable(event Event) (*SerializableEvent, error) {
	dataBytes, err := json.Marshal(event.Payload())
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrSerializationFailed, err).
			WithDetail("event_id", event.ID()).
			WithDetail("event_type", event.Type())
	}

	return &SerializableEvent{
		ID:        event.ID(),
		Type:      event.Type(),
		Timestamp: event.Timestamp(),
		Source:    event.Source(),
		Version:   event.Version(),
		Data:      dataBytes,
		Metadata:  event.Metadata(),
	}, nil
}

// ToJSON serializes an event to JSON
func ToJSON(event Event) ([]byte, error) {
	se, err := ToSerializable(event)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(se)
	if err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrSerializationFailed, err).
			WithDetail("event_id", event.ID()).
			WithDetail("event_type", event.Type())
	}
	return data, nil
}

// FromJSON decodes an event whose payload stays raw JSON until a typed
// handler asks for it
func FromJSON(data []byte) (Event, error) {
	var se SerializableEvent
	if err := json.Unmarshal(data, &se); err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrSerializationFailed, err).
			WithDetail("operation", "unmarshal_serializable_event")
	}
	if se.Type == "" {
		return nil, ErrorRegistry.New(ErrSerializationFailed).
			WithDetail("operation", "unmarshal_serializable_event").
			WithDetail("reason", "missing event type")
	}
	if se.Metadata == nil {
		se.Metadata = make(map[string]any)
	}
	return NewEventWithID(se.ID, se.Type, se.Data, se.Timestamp, EventOptions{
		Source:   se.Source,
		Version:  se.Version,
		Metadata: se.Metadata,
	}), nil
}

// FromJSONTyped decodes an event straight into its payload type
func FromJSONTyped[T any](data []byte) (TypedEvent[T], error) {
	e, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	var payload T
	if err := json.Unmarshal(e.Payload().(json.RawMessage), &payload); err != nil {
		return nil, ErrorRegistry.NewWithCause(ErrSerializationFailed, err).
			WithDetail("event_id", e.ID()).
			WithDetail("event_type", e.Type())
	}
	return NewEventWithID(e.ID(), e.Type(), payload, e.Timestamp(), EventOptions{
		Source:   e.Source(),
		Version:  e.Version(),
		Metadata: e.Metadata(),
	}), nil
}
