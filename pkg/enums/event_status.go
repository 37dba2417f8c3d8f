package enums

// EventStatus captures the lifecycle of a scheduled event.
type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusCancelled EventStatus = "cancelled"
	EventStatusCompleted EventStatus = "completed"
)

var validEventStatuses = []EventStatus{
	EventStatusScheduled,
	EventStatusCancelled,
	EventStatusCompleted,
}

func (v EventStatus) String() string {
	return string(v)
}

func (v EventStatus) IsValid() bool {
	return isKnown(v, validEventStatuses)
}

func ParseEventStatus(value string) (EventStatus, error) {
	return parse(value, "event status", validEventStatuses)
}
