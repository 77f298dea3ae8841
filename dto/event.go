package dto

import "github.com/mailroomhq/mailroom/internal/enum"

// Event is the envelope every message published to the broker is wrapped
// in, carrying identity and tracing metadata alongside the payload.
type Event struct {
	Event    EventDetails  `json:"event"`
	Metadata EventMetadata `json:"metadata"`
}

type EventDetails struct {
	Id         string          `json:"id"`
	EntityId   string          `json:"entityId"`
	EntityType enum.EntityType `json:"entityType"`
	EventType  string          `json:"eventType"`
	Data       interface{}     `json:"data"`
}

type EventMetadata struct {
	UberTraceId string `json:"uberTraceId"`
	Timestamp   string `json:"timestamp"`
}
