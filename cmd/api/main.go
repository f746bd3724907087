package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/config"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	appHTTP "github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/cron"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/database"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/memory"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/attendance"
	auditService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/audit"
	compoffService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/compoff"
	employeeService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/employee"
	leaveService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/leave"
	overtimeService "github.com/cmlabs-hris/hris-timekeeping-go/internal/service/overtime"
	"golang.org/x/sync/errgroup"
)

// repositories is the storage backend selected by STORE_TYPE.
type repositories struct {
	uow              database.UnitOfWork
	employees        employee.EmployeeRepository
	attendances      attendance.AttendanceRepository
	tracking         compoff.TrackingRepository
	details          compoff.DetailRepository
	compOffRequests  compoff.RequestRepository
	leaveRequests    leave.LeaveRequestRepository
	overtimeRequests overtime.OvertimeRequestRepository
	auditLogs        audit.AuditLogRepository
	close            func()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	switch cfg.App.StoreType {
	case config.StorePostgres:
		db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := postgresql.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		return &repositories{
			uow:              postgresql.NewUnitOfWork(db),
			employees:        postgresql.NewEmployeeRepository(db),
			attendances:      postgresql.NewAttendanceRepository(db),
			tracking:         postgresql.NewCompOffTrackingRepository(db),
			details:          postgresql.NewCompOffDetailRepository(db),
			compOffRequests:  postgresql.NewCompOffRequestRepository(db),
			leaveRequests:    postgresql.NewLeaveRequestRepository(db),
			overtimeRequests: postgresql.NewOvertimeRequestRepository(db),
			auditLogs:        postgresql.NewAuditLogRepository(db),
			close:            db.Close,
		}, nil
	case config.StoreMemory:
		store := memory.NewStore()
		return &repositories{
			uow:              store,
			employees:        memory.NewEmployeeRepository(store),
			attendances:      memory.NewAttendanceRepository(store),
			tracking:         memory.NewCompOffTrackingRepository(store),
			details:          memory.NewCompOffDetailRepository(store),
			compOffRequests:  memory.NewCompOffRequestRepository(store),
			leaveRequests:    memory.NewLeaveRequestRepository(store),
			overtimeRequests: memory.NewOvertimeRequestRepository(store),
			auditLogs:        memory.NewAuditLogRepository(store),
			close:            func() {},
		}, nil
	}
	return nil, fmt.Errorf("unsupported store type: %s", cfg.App.StoreType)
}

func main() {
	if err := run(); err != nil {
		slog.Error("Server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.close()

	m := metrics.New()
	auditSvc := auditService.NewAuditService(repos.auditLogs, m)
	ledger := compoffService.NewLedger(repos.uow, repos.tracking, repos.details, m, cfg.Timekeeping.CompOffExpiryMonths)

	compOffSvc := compoffService.NewCompOffService(repos.uow, ledger, repos.compOffRequests, repos.employees, auditSvc, m)
	attendanceSvc := attendanceService.NewAttendanceService(repos.uow, repos.attendances, repos.employees, auditSvc, m,
		attendanceService.Policy{
			DefaultBreakMinutes: cfg.Timekeeping.DefaultBreakMinutes,
			StandardWorkHours:   cfg.Timekeeping.StandardWorkHours,
		})
	leaveSvc := leaveService.NewLeaveService(repos.uow, repos.leaveRequests, repos.employees, ledger, auditSvc, m)
	overtimeSvc := overtimeService.NewOvertimeService(repos.uow, repos.overtimeRequests, repos.attendances, repos.employees, auditSvc, m)
	employeeSvc := employeeService.NewEmployeeService(repos.uow, repos.employees, employeeService.Referrers{
		Attendance:       repos.attendances,
		CompOffTracking:  repos.tracking,
		CompOffRequests:  repos.compOffRequests,
		LeaveRequests:    repos.leaveRequests,
		OvertimeRequests: repos.overtimeRequests,
	}, auditSvc)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, time.Hour)

	router := appHTTP.NewRouter(cfg.App, JWTService, m.Handler(), appHTTP.Handlers{
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Leave:      appHTTP.NewLeaveHandler(leaveSvc),
		Overtime:   appHTTP.NewOvertimeHandler(overtimeSvc),
		CompOff:    appHTTP.NewCompOffHandler(compOffSvc),
		Audit:      appHTTP.NewAuditHandler(auditSvc),
		Employee:   appHTTP.NewEmployeeHandler(employeeSvc),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server running", "addr", server.Addr, "store", cfg.App.StoreType)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if cfg.App.CronEnabled {
		scheduler := cron.NewScheduler(m)
		cron.NewTimekeepingJobs(compOffSvc, attendanceSvc).RegisterJobs(scheduler)
		scheduler.Start()

		g.Go(func() error {
			<-gctx.Done()
			scheduler.Stop()
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		slog.Info("Shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
