package utils

import (
	"fmt"
	"log"
	"time"

	"lms/config"
	"lms/database"
	courseModels "lms/models/course"
	"lms/progress"

	"github.com/robfig/cron/v3"
)

// logSweep logs sweep scheduler events with timestamp
func logSweep(message string) {
	log.Printf("[SWEEP %s] %s", time.Now().Format(time.RFC3339), message)
}

// runConsistencySweep reconciles the progress document of every active
// enrollment against the current course structure
func runConsistencySweep(engine *progress.Consistency) {
	db := database.Database.Db

	var enrollments []courseModels.Enrollment
	if err := db.Where("status = ? AND is_deleted = false", courseModels.EnrollmentActive).
		Find(&enrollments).Error; err != nil {
		logSweep("Error fetching active enrollments: " + err.Error())
		return
	}

	var scanned, repaired, failed int
	for _, enrollment := range enrollments {
		report, err := engine.EnsureCourseProgressConsistency(enrollment.UserID, enrollment.CourseID)
		if err != nil {
			if err == progress.ErrProgressNotFound {
				// Enrolled but never started: nothing to reconcile
				continue
			}
			failed++
			logSweep(fmt.Sprintf("Sweep failed for user %d course %d: %v", enrollment.UserID, enrollment.CourseID, err))
			continue
		}
		scanned++
		if report.WasInconsistent {
			repaired++
			for _, fix := range report.Fixes {
				logSweep(fmt.Sprintf("Repaired user %d course %d: %s", enrollment.UserID, enrollment.CourseID, fix))
			}
		}
	}

	logSweep(fmt.Sprintf("Sweep complete: %d scanned, %d repaired, %d failed", scanned, repaired, failed))
}

// InitializeSweepScheduler starts the nightly consistency sweep
func InitializeSweepScheduler(engine *progress.Consistency) *cron.Cron {
	logSweep("Initializing consistency sweep scheduler...")

	c := cron.New()
	if _, err := c.AddFunc(config.AppConfig.SweepCronSpec, func() {
		runConsistencySweep(engine)
	}); err != nil {
		logSweep("Invalid sweep cron spec, scheduler disabled: " + err.Error())
		return c
	}

	c.Start()
	logSweep("Consistency sweep scheduled: " + config.AppConfig.SweepCronSpec)
	return c
}
