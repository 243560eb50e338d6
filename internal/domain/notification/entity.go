package notification

import (
	"slices"
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypePayrollGenerated NotificationType = "payroll_generated"
	TypePayrollApproved  NotificationType = "payroll_approved"
	TypePayrollUnlocked  NotificationType = "payroll_unlocked"
	TypePayrollPaid      NotificationType = "payroll_paid"
)

// PayrollTypes lists every notification type the payroll engine emits.
func PayrollTypes() []NotificationType {
	return []NotificationType{TypePayrollGenerated, TypePayrollApproved, TypePayrollUnlocked, TypePayrollPaid}
}

func (t NotificationType) IsValid() bool {
	return slices.Contains(PayrollTypes(), t)
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	CompanyID   string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}
