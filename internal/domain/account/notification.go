package account

import (
	"fmt"
	"time"
)

// NotificationType identifies what a notification is about
type NotificationType string

const (
	NotificationContractRenewalDue NotificationType = "CONTRACT_RENEWAL_DUE"
	NotificationAccountHealthLow   NotificationType = "ACCOUNT_HEALTH_LOW"
)

// Priority of a notification
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

const (
	urgentRenewalDays  = 30
	lowHealthThreshold = 70
)

// Notification is an actionable alert derived from account state.
// Notifications are recomputed on every request; nothing is queued.
type Notification struct {
	Type           NotificationType `json:"type"`
	Priority       Priority         `json:"priority"`
	Message        string           `json:"message"`
	ActionRequired bool             `json:"action_required"`
	DueDate        *time.Time       `json:"due_date,omitempty"`
}

// DeriveNotifications turns contract metadata and a health score into notifications
func DeriveNotifications(acct *Account, score *HealthScore, now time.Time, renewalWindowDays int) []Notification {
	notifications := make([]Notification, 0, 2)

	if days, ok := acct.DaysUntilContractEnd(now); ok && days <= renewalWindowDays {
		priority := PriorityMedium
		if days <= urgentRenewalDays {
			priority = PriorityHigh
		}
		due := *acct.ContractEndDate
		notifications = append(notifications, Notification{
			Type:           NotificationContractRenewalDue,
			Priority:       priority,
			Message:        renewalMessage(acct.Name, days),
			ActionRequired: true,
			DueDate:        &due,
		})
	}

	if score != nil && score.OverallScore < lowHealthThreshold {
		notifications = append(notifications, Notification{
			Type:           NotificationAccountHealthLow,
			Priority:       PriorityHigh,
			Message:        fmt.Sprintf("Account %s health score is %d", acct.Name, score.OverallScore),
			ActionRequired: true,
		})
	}

	return notifications
}

func renewalMessage(name string, days int) string {
	if days < 0 {
		return fmt.Sprintf("Contract for %s expired %d days ago", name, -days)
	}
	return fmt.Sprintf("Contract for %s expires in %d days", name, days)
}
