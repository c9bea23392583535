package domain

type NotificationType string

const (
	NotificationInfo     NotificationType = "info"
	NotificationWarning  NotificationType = "warning"
	NotificationCritical NotificationType = "critical"
)

// Notification is derived on demand and never stored. ID is stable for the
// same condition so clients can de-duplicate.
type Notification struct {
	ID      string           `json:"id"`
	Title   string           `json:"title"`
	Message string           `json:"message"`
	Type    NotificationType `json:"type"`
	Date    string           `json:"date"`
	Read    bool             `json:"read"`
}
