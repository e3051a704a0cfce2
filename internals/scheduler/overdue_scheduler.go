// file: internals/scheduler/overdue_scheduler.go
package scheduler

import (
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"reviewdesk_backend/internals/configs"
	assignmentService "reviewdesk_backend/internals/features/assessment/assignments/service"
	notificationService "reviewdesk_backend/internals/features/assessment/notifications/service"
)

// StartOverdueSweepScheduler periodically flips past-deadline assignments to
// overdue and notifies the affected experts. Interval is configured via
// OVERDUE_SWEEP_INTERVAL_MINUTES (default 60).
func StartOverdueSweepScheduler(db *gorm.DB) {
	interval := 60
	if raw := configs.GetEnv("OVERDUE_SWEEP_INTERVAL_MINUTES"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			interval = n
		}
	}

	lifecycle := assignmentService.NewLifecycleService(db)
	dispatcher := notificationService.NewDispatcher(db)

	go func() {
		ticker := time.NewTicker(time.Duration(interval) * time.Minute)
		defer ticker.Stop()

		log.Printf("[SCHEDULER] overdue sweep every %d minute(s)", interval)
		for range ticker.C {
			flipped, events, err := lifecycle.MarkOverdue()
			if err != nil {
				log.Printf("[SCHEDULER] overdue sweep failed: %v", err)
				continue
			}
			if flipped > 0 {
				log.Printf("[SCHEDULER] marked %d assignment(s) overdue", flipped)
			}
			dispatcher.Dispatch(events)
		}
	}()
}
