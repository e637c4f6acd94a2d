package notification

import (
	"time"

	domain "site-report-backend/internal/domain/notification"
)

type DeviceInput struct {
	UserID uint64
	Token  string
	Info   string
}

type NotificationDTO struct {
	ID        uint64     `json:"id"`
	Kind      string     `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body,omitempty"`
	Link      string     `json:"link,omitempty"`
	ReportID  *uint64    `json:"report_id,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

func ToDTO(n *domain.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Kind:      n.Kind,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		ReportID:  n.ReportID,
		Read:      n.Status == domain.StatusRead,
		CreatedAt: n.CreatedAt,
		ReadAt:    n.ReadAt,
		ExpiresAt: n.ExpiresAt,
	}
}
