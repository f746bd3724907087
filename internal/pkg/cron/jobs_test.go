package cron

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompOff struct {
	compoff.CompOffService
	summary compoff.SweepSummary
	err     error
	asOf    []time.Time
}

func (f *fakeCompOff) ExpireDue(ctx context.Context, asOf time.Time) (compoff.SweepSummary, error) {
	f.asOf = append(f.asOf, asOf)
	return f.summary, f.err
}

type fakeAttendance struct {
	attendance.AttendanceService
	summary attendance.CorrectionSummary
	calls   int
}

func (f *fakeAttendance) RecalculateAll(ctx context.Context) (attendance.CorrectionSummary, error) {
	f.calls++
	return f.summary, nil
}

func at(hour int) func() time.Time {
	return func() time.Time { return time.Date(2025, 11, 20, hour, 15, 0, 0, time.UTC) }
}

func TestExpireCompOff_OnlyInItsHour(t *testing.T) {
	co := &fakeCompOff{}
	jobs := NewTimekeepingJobs(co, &fakeAttendance{})

	jobs.now = at(5)
	require.NoError(t, jobs.ExpireCompOff(context.Background()))
	assert.Empty(t, co.asOf)

	jobs.now = at(compOffSweepHour)
	require.NoError(t, jobs.ExpireCompOff(context.Background()))
	require.Len(t, co.asOf, 1)
	assert.Equal(t, at(compOffSweepHour)(), co.asOf[0])
}

func TestExpireCompOff_ReportsFailedBuckets(t *testing.T) {
	co := &fakeCompOff{summary: compoff.SweepSummary{Expired: 2, Failed: 1}}
	jobs := NewTimekeepingJobs(co, &fakeAttendance{})
	jobs.now = at(compOffSweepHour)

	assert.Error(t, jobs.ExpireCompOff(context.Background()))
}

func TestCorrectWorkedHours(t *testing.T) {
	att := &fakeAttendance{summary: attendance.CorrectionSummary{Total: 3, Unchanged: 3}}
	jobs := NewTimekeepingJobs(&fakeCompOff{}, att)

	jobs.now = at(attendanceRepairHour + 1)
	require.NoError(t, jobs.CorrectWorkedHours(context.Background()))
	assert.Equal(t, 0, att.calls)

	jobs.now = at(attendanceRepairHour)
	require.NoError(t, jobs.CorrectWorkedHours(context.Background()))
	assert.Equal(t, 1, att.calls)

	att.summary.Errored = 1
	assert.Error(t, jobs.CorrectWorkedHours(context.Background()))
}

func TestScheduler_RunOnceCountsOutcomes(t *testing.T) {
	m := metrics.New()
	s := NewScheduler(m)
	s.AddJob("ok", time.Hour, func(ctx context.Context) error { return nil })
	s.AddJob("broken", time.Hour, func(ctx context.Context) error { return errors.New("boom") })

	s.RunOnce(context.Background())

	count, err := testutil.GatherAndCount(m.Registry(), "timekeeping_cron_job_runs_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `timekeeping_cron_job_runs_total{job="ok",outcome="success"} 1`)
	assert.Contains(t, body, `timekeeping_cron_job_runs_total{job="broken",outcome="failed"} 1`)
}
