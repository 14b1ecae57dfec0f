package domain

// NotificationLevel is the severity of a user-facing notice.
type NotificationLevel string

// Notification levels.
const (
	NotifyInfo    NotificationLevel = "info"
	NotifySuccess NotificationLevel = "success"
	NotifyWarning NotificationLevel = "warning"
	NotifyError   NotificationLevel = "error"
)

// Notification is a transient message for the user.
type Notification struct {
	Level   NotificationLevel
	Message string
}
