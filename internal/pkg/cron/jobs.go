package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
)

const (
	JobCompOffExpirySweep = "compoff_expiry_sweep"
	JobAttendanceCorrect  = "attendance_worked_hours_correction"

	// Jobs tick hourly and only do work during their hour (UTC).
	compOffSweepHour     = 0
	attendanceRepairHour = 1
)

type TimekeepingJobs struct {
	compOffService    compoff.CompOffService
	attendanceService attendance.AttendanceService
	now               func() time.Time
}

func NewTimekeepingJobs(compOffService compoff.CompOffService, attendanceService attendance.AttendanceService) *TimekeepingJobs {
	return &TimekeepingJobs{
		compOffService:    compOffService,
		attendanceService: attendanceService,
		now:               time.Now,
	}
}

func (j *TimekeepingJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(JobCompOffExpirySweep, 1*time.Hour, j.ExpireCompOff)
	scheduler.AddJob(JobAttendanceCorrect, 1*time.Hour, j.CorrectWorkedHours)
}

// ExpireCompOff moves every comp-off bucket past its window to expired.
func (j *TimekeepingJobs) ExpireCompOff(ctx context.Context) error {
	now := j.now().UTC()
	if now.Hour() != compOffSweepHour {
		return nil
	}

	slog.Info("Cron: Starting comp-off expiry sweep")

	summary, err := j.compOffService.ExpireDue(ctx, now)
	if err != nil {
		return fmt.Errorf("failed to run comp-off expiry sweep: %w", err)
	}

	slog.Info("Cron: Comp-off expiry sweep completed",
		"expired", summary.Expired,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)
	if summary.Failed > 0 {
		return fmt.Errorf("comp-off expiry sweep: %d buckets failed", summary.Failed)
	}
	return nil
}

// CorrectWorkedHours recomputes worked hours for every attendance record with
// both clock times.
func (j *TimekeepingJobs) CorrectWorkedHours(ctx context.Context) error {
	if j.now().UTC().Hour() != attendanceRepairHour {
		return nil
	}

	slog.Info("Cron: Starting worked hours correction")

	summary, err := j.attendanceService.RecalculateAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to recalculate attendance: %w", err)
	}

	slog.Info("Cron: Worked hours correction completed",
		"total", summary.Total,
		"changed", summary.Changed,
		"errored", summary.Errored,
	)
	if summary.Errored > 0 {
		return fmt.Errorf("worked hours correction: %d records failed", summary.Errored)
	}
	return nil
}
