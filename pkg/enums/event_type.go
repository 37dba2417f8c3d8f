package enums

// EventType classifies a club event.
type EventType string

const (
	EventTypePractice EventType = "practice"
	EventTypeGame     EventType = "game"
	EventTypeMeeting  EventType = "meeting"
	EventTypeSocial   EventType = "social"
)

var validEventTypes = []EventType{
	EventTypePractice,
	EventTypeGame,
	EventTypeMeeting,
	EventTypeSocial,
}

func (v EventType) String() string {
	return string(v)
}

func (v EventType) IsValid() bool {
	return isKnown(v, validEventTypes)
}

func ParseEventType(value string) (EventType, error) {
	return parse(value, "event type", validEventTypes)
}
