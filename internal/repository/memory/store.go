// Package memory provides in-memory repositories for tests and local runs.
//
// All repositories built from one Store share its data. Store also implements
// database.UnitOfWork: transactions run one at a time and a failing transaction
// restores the snapshot taken when it began.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/attendance"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/audit"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/compoff"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/employee"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/leave"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/overtime"
	"github.com/google/uuid"
)

type txKey struct{}

type Store struct {
	mu   sync.RWMutex // guards data
	txMu sync.Mutex   // held for the whole of a transaction or a standalone write
	data *tables
	now  func() time.Time
}

type tables struct {
	employees        map[string]employee.Employee
	attendances      map[string]attendance.Attendance
	tracking         map[string]compoff.Tracking // keyed by employee ID
	details          []compoff.Detail
	compOffRequests  map[string]compoff.Request
	leaveRequests    map[string]leave.LeaveRequest
	overtimeRequests map[string]overtime.OvertimeRequest
	auditLogs        []audit.Entry
}

func newTables() *tables {
	return &tables{
		employees:        make(map[string]employee.Employee),
		attendances:      make(map[string]attendance.Attendance),
		tracking:         make(map[string]compoff.Tracking),
		compOffRequests:  make(map[string]compoff.Request),
		leaveRequests:    make(map[string]leave.LeaveRequest),
		overtimeRequests: make(map[string]overtime.OvertimeRequest),
	}
}

func (t *tables) clone() *tables {
	c := newTables()
	for k, v := range t.employees {
		c.employees[k] = v
	}
	for k, v := range t.attendances {
		c.attendances[k] = v
	}
	for k, v := range t.tracking {
		c.tracking[k] = v
	}
	for k, v := range t.compOffRequests {
		c.compOffRequests[k] = v
	}
	for k, v := range t.leaveRequests {
		c.leaveRequests[k] = v
	}
	for k, v := range t.overtimeRequests {
		c.overtimeRequests[k] = v
	}
	c.details = append([]compoff.Detail(nil), t.details...)
	c.auditLogs = append([]audit.Entry(nil), t.auditLogs...)
	return c
}

func NewStore() *Store {
	return &Store{data: newTables(), now: time.Now}
}

// WithClock replaces the clock used for created_at/updated_at stamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// WithinTransaction implements database.UnitOfWork.
func (s *Store) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.inTx(ctx) {
		return fn(ctx)
	}

	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	snapshot := s.data.clone()
	s.mu.RUnlock()

	defer func() {
		if p := recover(); p != nil {
			s.restore(snapshot)
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, s)); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) restore(snapshot *tables) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = snapshot
}

func (s *Store) inTx(ctx context.Context) bool {
	owner, ok := ctx.Value(txKey{}).(*Store)
	return ok && owner == s
}

// write runs fn with exclusive access to the data. Outside a transaction it also
// waits for any running transaction so a rollback cannot discard the write.
func (s *Store) write(ctx context.Context, fn func(t *tables) error) error {
	if !s.inTx(ctx) {
		s.txMu.Lock()
		defer s.txMu.Unlock()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.data)
}

func (s *Store) read(fn func(t *tables) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.data)
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}
