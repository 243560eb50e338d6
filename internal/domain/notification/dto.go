package notification

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine/internal/pkg/validator"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListFilter narrows a recipient's notification list. An empty Types matches every type.
type ListFilter struct {
	Page       int
	PageSize   int
	UnreadOnly bool
	Types      []NotificationType
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	for _, t := range f.Types {
		if !t.IsValid() {
			names := make([]string, 0, len(PayrollTypes()))
			for _, pt := range PayrollTypes() {
				names = append(names, string(pt))
			}
			errs = append(errs, validator.ValidationError{Field: "type", Message: "must be one of " + strings.Join(names, ", ")})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Normalize clamps paging to sane bounds.
func (f *ListFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 || f.PageSize > MaxPageSize {
		f.PageSize = DefaultPageSize
	}
}

// Offset is the number of rows skipped for the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// CreateNotificationRequest represents a request to create a notification
type CreateNotificationRequest struct {
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
}

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSEEvent is pushed to subscribed clients
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}

// SSETokenResponse carries a short-lived token for the notification stream
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}
