package domain

import "time"

// Notification kinds produced by the transfer engine.
const (
	NotificationTransfer = "transfer"
)

// Notification is a per-user event log entry created after a durable commit.
type Notification struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Kind      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
