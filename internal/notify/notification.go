package notify

import "time"

// Severity classifies a notification.
type Severity string

const (
	Info    Severity = "info"
	Success Severity = "success"
	Warning Severity = "warning"
	Error   Severity = "error"
)

// DefaultDuration is how long a notification stays visible unless told otherwise.
const DefaultDuration = 5 * time.Second

// Notification is a transient status message. The zero ID means the
// notification was never shown.
type Notification struct {
	ID        uint64
	Message   string
	Severity  Severity
	CreatedAt time.Time
	Duration  time.Duration
}

// Shown reports whether the notification was inserted into a surface.
func (n Notification) Shown() bool {
	return n.ID != 0
}

// ExpiresAt is CreatedAt plus Duration.
func (n Notification) ExpiresAt() time.Time {
	return n.CreatedAt.Add(n.Duration)
}
