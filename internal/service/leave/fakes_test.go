package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/document"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/leave"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
)

// memStore is an in-memory stand-in for the database. Transactions are
// serialized and rolled back by restoring a snapshot.
type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	employees map[string]employee.Employee
	requests  map[string]leave.LeaveRequest
	outbox    []document.OutboxEvent
	holidays  []holiday.Holiday

	// staleWrites makes the next n balance writes report a lost race.
	staleWrites int
	// failWrites makes balance writes for these employees fail.
	failWrites map[string]bool
}

func newMemStore() *memStore {
	return &memStore{
		employees:  map[string]employee.Employee{},
		requests:   map[string]leave.LeaveRequest{},
		failWrites: map[string]bool{},
	}
}

func (s *memStore) addEmployee(id, name string, role user.Role, m balance.Map) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees[id] = employee.Employee{
		ID:           id,
		NIP:          "NIP-" + name,
		FullName:     name,
		Role:         role,
		LeaveBalance: m.Clone(),
	}
}

func (s *memStore) balanceOf(id string) balance.Map {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employees[id].LeaveBalance.Clone()
}

func (s *memStore) request(id string) leave.LeaveRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[id]
}

type memSnapshot struct {
	employees map[string]employee.Employee
	requests  map[string]leave.LeaveRequest
	outbox    []document.OutboxEvent
}

func (s *memStore) snapshot() memSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := memSnapshot{
		employees: make(map[string]employee.Employee, len(s.employees)),
		requests:  make(map[string]leave.LeaveRequest, len(s.requests)),
		outbox:    append([]document.OutboxEvent(nil), s.outbox...),
	}
	for k, v := range s.employees {
		v.LeaveBalance = v.LeaveBalance.Clone()
		snap.employees[k] = v
	}
	for k, v := range s.requests {
		snap.requests[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employees = snap.employees
	s.requests = snap.requests
	s.outbox = snap.outbox
}

// WithinTransaction implements database.Transactor.
func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memEmployeeRepo struct{ s *memStore }

func (r memEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	emp, ok := r.s.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	emp.LeaveBalance = emp.LeaveBalance.Clone()
	return emp, nil
}

func (r memEmployeeRepo) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	return r.GetByID(ctx, id)
}

func (r memEmployeeRepo) ListIDs(ctx context.Context, role *user.Role) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var ids []string
	for id, emp := range r.s.employees {
		if role == nil || emp.Role == *role {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (r memEmployeeRepo) write(id string, m balance.Map, expectedVersion int64, year *int) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.failWrites[id] {
		return 0, errors.New("disk full")
	}
	emp, ok := r.s.employees[id]
	if !ok {
		return 0, employee.ErrEmployeeNotFound
	}
	if r.s.staleWrites > 0 {
		r.s.staleWrites--
		return 0, employee.ErrBalanceVersionStale
	}
	if emp.BalanceVersion != expectedVersion {
		return 0, employee.ErrBalanceVersionStale
	}

	emp.LeaveBalance = m.Clone()
	emp.BalanceVersion++
	if year != nil {
		emp.LastRolloverYear = year
	}
	r.s.employees[id] = emp
	return emp.BalanceVersion, nil
}

func (r memEmployeeRepo) UpdateLeaveBalance(ctx context.Context, id string, m balance.Map, expectedVersion int64) (int64, error) {
	return r.write(id, m, expectedVersion, nil)
}

func (r memEmployeeRepo) CompleteRollover(ctx context.Context, id string, m balance.Map, expectedVersion int64, year int) (int64, error) {
	return r.write(id, m, expectedVersion, &year)
}

type memRequestRepo struct{ s *memStore }

func (r memRequestRepo) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, exists := r.s.requests[request.ID]; exists {
		return leave.LeaveRequest{}, fmt.Errorf("duplicate id %s", request.ID)
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	r.s.requests[request.ID] = request
	return request, nil
}

func (r memRequestRepo) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return request, nil
}

func (r memRequestRepo) GetByIDForUpdate(ctx context.Context, id string) (leave.LeaveRequest, error) {
	return r.GetByID(ctx, id)
}

func (r memRequestRepo) UpdateDecision(ctx context.Context, request leave.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[request.ID]; !ok {
		return leave.ErrLeaveRequestNotFound
	}
	r.s.requests[request.ID] = request
	return nil
}

func (r memRequestRepo) SetDocumentURL(ctx context.Context, id string, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	request, ok := r.s.requests[id]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	request.DocumentURL = &url
	r.s.requests[id] = request
	return nil
}

func (r memRequestRepo) List(ctx context.Context, filter leave.ListLeaveRequestFilter) ([]leave.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []leave.LeaveRequest
	for _, request := range r.s.requests {
		if filter.EmployeeID != nil && request.EmployeeID != *filter.EmployeeID {
			continue
		}
		if filter.Status != nil && request.Status != *filter.Status {
			continue
		}
		if filter.LeaveType != nil && request.LeaveType != *filter.LeaveType {
			continue
		}
		out = append(out, request)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r memRequestRepo) ListAwaitingApprover(ctx context.Context, approverID string) ([]leave.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []leave.LeaveRequest
	for _, request := range r.s.requests {
		stage, err := request.Stage()
		if err != nil {
			continue
		}
		if (stage == leave.StagePendingBoth && request.SupervisorID == approverID) ||
			(stage == leave.StageSupervisorApproved && request.AuthorizedOfficerID == approverID) {
			out = append(out, request)
		}
	}
	return out, nil
}

func (r memRequestRepo) SumApprovedAnnualDays(ctx context.Context, employeeID string, leaveYear int) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var total int
	for _, request := range r.s.requests {
		if request.EmployeeID == employeeID && request.LeaveYear == leaveYear &&
			request.LeaveType == leave.TypeAnnual && request.Status == leave.StatusApproved {
			total += request.WorkingDays
		}
	}
	return total, nil
}

type memOutboxRepo struct{ s *memStore }

func (r memOutboxRepo) Enqueue(ctx context.Context, event document.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.outbox = append(r.s.outbox, event)
	return nil
}

func (r memOutboxRepo) ClaimPending(ctx context.Context, limit int, staleAfter time.Duration) ([]document.OutboxEvent, error) {
	return nil, nil
}

func (r memOutboxRepo) MarkSent(ctx context.Context, id string, documentURL *string) error {
	return nil
}

func (r memOutboxRepo) MarkAttemptFailed(ctx context.Context, id string, reason string, giveUp bool) error {
	return nil
}

type memHolidayRepo struct{ s *memStore }

func (r memHolidayRepo) GetByDateRange(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	var out []holiday.Holiday
	for _, h := range r.s.holidays {
		if !h.Date.Before(start) && !h.Date.After(end) {
			out = append(out, h)
		}
	}
	return out, nil
}

type fakeFileService struct {
	mu       sync.Mutex
	uploaded []string
	deleted  []string
}

func (f *fakeFileService) UploadLeaveAttachment(ctx context.Context, employeeID string, file io.Reader, filename string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "leave/" + employeeID + "/" + filename
	f.uploaded = append(f.uploaded, path)
	return path, nil
}

func (f *fakeFileService) DeleteFile(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *fakeFileService) GetFileURL(ctx context.Context, path string, expiry time.Duration) (string, error) {
	return "http://files.test/" + path, nil
}

type countingTrigger struct {
	mu    sync.Mutex
	kicks int
}

func (c *countingTrigger) Kick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.kicks++
}

func (c *countingTrigger) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.kicks
}
