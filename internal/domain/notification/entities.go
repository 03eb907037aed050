package notification

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("notification not found")

type Kind string

const (
	KindLoanApproved    Kind = "loan_approved"
	KindLoanRejected    Kind = "loan_rejected"
	KindPaymentReceived Kind = "payment_received"
	KindPaymentFailed   Kind = "payment_failed"
	KindLoanCompleted   Kind = "loan_completed"
	KindLoanOverdue     Kind = "loan_overdue"
	KindSavingsDeposit  Kind = "savings_deposit"
)

type Notification struct {
	ID        uint64    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index:idx_notifications_user" json:"user_id"`
	Title     string    `gorm:"column:title;size:160;not null" json:"title"`
	Message   string    `gorm:"column:message;type:text;not null" json:"message"`
	Type      Kind      `gorm:"column:type;size:32;not null" json:"type"`
	IsRead    bool      `gorm:"column:is_read;not null" json:"read"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (Notification) TableName() string { return "notifications" }
