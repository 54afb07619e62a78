package event_bus

const (
	SessionStartedType        EventType = "session.started"
	SessionEndedType          EventType = "session.ended"
	NotificationRequestedType EventType = "notification.requested"
)

type SessionStarted struct {
	Username string
}

type SessionEnded struct {
	Username string
}

// NotificationRequested asks the delivery side to show a notification to Username.
type NotificationRequested struct {
	Username string
	Title    string
	Body     string
	Icon     string
	Tag      string
}
