package cron

import (
	"context"

	"github.com/cmlabs-hris/intern-attendance/internal/domain/leave"
)

// LeaveNotificationJob re-sends leave decision notices that failed earlier.
func LeaveNotificationJob(svc leave.LeaveService) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := svc.RetryNotifications(ctx)
		return err
	}
}
