package entity

import "time"

// NotificationType categorizes push notifications.
type NotificationType string

const (
	NotificationConnection    NotificationType = "connection"
	NotificationGlucose       NotificationType = "glucose"
	NotificationBloodPressure NotificationType = "bloodPressure"
	NotificationWeight        NotificationType = "weight"
	NotificationMessage       NotificationType = "message"
)

// Notification is an append-only delivery log entry, created once per
// successfully delivered device token.
type Notification struct {
	ID        string
	UserID    string
	FCMToken  string
	Title     string
	Message   string
	Type      NotificationType
	Link      string
	IsRead    bool
	CreatedAt time.Time
}
