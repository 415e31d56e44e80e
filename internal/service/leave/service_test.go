package leave

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/leavedesk/leave-backend-go/internal/service/balance"
)

type fakeRequestRepo struct {
	seq      int
	requests map[string]domain.LeaveRequest
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]domain.LeaveRequest)}
}

func (f *fakeRequestRepo) Create(_ context.Context, request domain.LeaveRequest) (domain.LeaveRequest, error) {
	f.seq++
	request.ID = fmt.Sprintf("leave-%d", f.seq)
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	f.requests[request.ID] = request
	return request, nil
}

func (f *fakeRequestRepo) GetByID(_ context.Context, id string) (domain.LeaveRequest, error) {
	request, ok := f.requests[id]
	if !ok {
		return domain.LeaveRequest{}, domain.ErrLeaveNotFound
	}
	return request, nil
}

func (f *fakeRequestRepo) GetByUserID(_ context.Context, userID string) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, request := range f.requests {
		if request.UserID == userID {
			out = append(out, request)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) GetAll(_ context.Context) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, request := range f.requests {
		out = append(out, request)
	}
	return out, nil
}

func (f *fakeRequestRepo) FindApprovedOverlapping(_ context.Context, start, end time.Time) ([]domain.LeaveRequest, error) {
	var out []domain.LeaveRequest
	for _, request := range f.requests {
		if request.Status != domain.StatusApproved {
			continue
		}
		if request.StartDate.After(end) || request.EndDate.Before(start) {
			continue
		}
		out = append(out, request)
	}
	return out, nil
}

func (f *fakeRequestRepo) UpdateDecision(_ context.Context, request domain.LeaveRequest) error {
	if _, ok := f.requests[request.ID]; !ok {
		return domain.ErrLeaveNotFound
	}
	f.requests[request.ID] = request
	return nil
}

type fakeHolidayRepo struct {
	seq      int
	holidays []domain.PublicHoliday
}

func (f *fakeHolidayRepo) Create(_ context.Context, holiday domain.PublicHoliday) (domain.PublicHoliday, error) {
	f.seq++
	holiday.ID = fmt.Sprintf("holiday-%d", f.seq)
	f.holidays = append(f.holidays, holiday)
	return holiday, nil
}

func (f *fakeHolidayRepo) FindAfter(_ context.Context, date time.Time) ([]domain.PublicHoliday, error) {
	var out []domain.PublicHoliday
	for _, holiday := range f.holidays {
		if holiday.Date.After(date) {
			out = append(out, holiday)
		}
	}
	return out, nil
}

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) Create(_ context.Context, u user.User) (user.User, error) {
	f.users[u.ID] = u
	return u, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (f *fakeUserRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	_, err := f.GetByEmail(context.Background(), email)
	return err == nil, nil
}

type notification struct {
	kind      string
	to        string
	decidedBy string
}

type fakeNotifier struct {
	sent []notification
	err  error
}

func (f *fakeNotifier) SendLeaveApplied(to string, _, _ time.Time) error {
	f.sent = append(f.sent, notification{kind: "applied", to: to})
	return f.err
}

func (f *fakeNotifier) SendLeaveApproved(to string, _, _ time.Time, approvedBy string) error {
	f.sent = append(f.sent, notification{kind: "approved", to: to, decidedBy: approvedBy})
	return f.err
}

func (f *fakeNotifier) SendLeaveRejected(to string, _, _ time.Time, rejectedBy string) error {
	f.sent = append(f.sent, notification{kind: "rejected", to: to, decidedBy: rejectedBy})
	return f.err
}

type fakeDocStore struct {
	stored []string
}

func (f *fakeDocStore) Store(_ context.Context, r io.Reader, originalName string) (string, error) {
	if r == nil {
		return "", nil
	}
	ref := "doc-ref-" + originalName
	f.stored = append(f.stored, ref)
	return ref, nil
}

func (f *fakeDocStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("")), nil
}

type workflowFixture struct {
	service  *WorkflowService
	requests *fakeRequestRepo
	holidays *fakeHolidayRepo
	users    *fakeUserRepo
	balances *balance.Service
	notifier *fakeNotifier
	docs     *fakeDocStore
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		requests: newFakeRequestRepo(),
		holidays: &fakeHolidayRepo{},
		users:    &fakeUserRepo{users: make(map[string]user.User)},
		balances: balance.New(),
		notifier: &fakeNotifier{},
		docs:     &fakeDocStore{},
	}
	f.service = NewWorkflowService(f.requests, f.holidays, f.users, f.balances, f.docs, f.notifier)
	return f
}

func (f *workflowFixture) addUser(id, email string, role user.Role) {
	f.users.users[id] = user.User{ID: id, Email: email, Role: role}
}

func mustApply(t *testing.T, f *workflowFixture, userID, leaveType, start, end string) domain.LeaveRequest {
	t.Helper()
	created, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:    userID,
		Type:      leaveType,
		StartDate: start,
		EndDate:   end,
		Reason:    "personal",
	})
	require.NoError(t, err)
	return created
}

func TestApply_DeductsAndCreatesPending(t *testing.T) {
	f := newWorkflowFixture()
	f.addUser("u1", "u1@example.com", user.RoleStaff)

	created, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:    "u1",
		UserEmail: "u1@example.com",
		Type:      "SICK",
		StartDate: "2024-01-01",
		EndDate:   "2024-01-03",
		Reason:    "flu",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, created.Status)
	assert.Equal(t, domain.TypeSick, created.Type)
	assert.NotEmpty(t, created.ID)
	assert.Nil(t, created.DocumentRef)

	balances := f.balances.ViewBalances("u1")
	assert.True(t, balances.Balances[domain.TypeSick].Equal(decimal.NewFromInt(7)),
		"expected SICK balance 7, got %s", balances.Balances[domain.TypeSick])

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "applied", f.notifier.sent[0].kind)
	assert.Equal(t, "u1@example.com", f.notifier.sent[0].to)
}

func TestApply_InsufficientBalanceCreatesNothing(t *testing.T) {
	f := newWorkflowFixture()

	// UNPAID seeds at zero, so any request overdraws.
	_, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:    "u1",
		UserEmail: "u1@example.com",
		Type:      "UNPAID",
		StartDate: "2024-02-01",
		EndDate:   "2024-02-01",
		Reason:    "unpaid day",
	})
	require.ErrorIs(t, err, domain.ErrInsufficientBalance)

	all, err := f.requests.GetAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.notifier.sent)
}

func TestApply_UnknownType(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:    "u1",
		Type:      "SABBATICAL",
		StartDate: "2024-02-01",
		EndDate:   "2024-02-01",
		Reason:    "long break",
	})
	assert.ErrorIs(t, err, domain.ErrUnknownLeaveType)
}

func TestApply_NotifierFailureDoesNotFailApply(t *testing.T) {
	f := newWorkflowFixture()
	f.notifier.err = errors.New("smtp down")

	created, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:    "u1",
		UserEmail: "u1@example.com",
		Type:      "PTO",
		StartDate: "2024-03-04",
		EndDate:   "2024-03-05",
		Reason:    "trip",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, created.Status)
}

func TestApply_StoresDocument(t *testing.T) {
	f := newWorkflowFixture()

	created, err := f.service.Apply(context.Background(), domain.ApplyLeaveRequest{
		UserID:       "u1",
		Type:         "SICK",
		StartDate:    "2024-01-08",
		EndDate:      "2024-01-09",
		Reason:       "doctor visit",
		Document:     strings.NewReader("certificate"),
		DocumentName: "note.pdf",
	})
	require.NoError(t, err)

	require.NotNil(t, created.DocumentRef)
	assert.Equal(t, "doc-ref-note.pdf", *created.DocumentRef)
	assert.Len(t, f.docs.stored, 1)
}

func TestApprove_RequiresManagerOrAdmin(t *testing.T) {
	f := newWorkflowFixture()
	created := mustApply(t, f, "u1", "PTO", "2024-04-01", "2024-04-02")

	_, err := f.service.Approve(context.Background(), domain.DecisionRequest{
		LeaveID:   created.ID,
		ActorID:   "u2",
		ActorRole: user.RoleStaff,
	})
	assert.ErrorIs(t, err, user.ErrPermissionDenied)
}

func TestApprove_SetsStatusAndCommentWithoutBalanceChange(t *testing.T) {
	f := newWorkflowFixture()
	f.addUser("u1", "u1@example.com", user.RoleStaff)
	created := mustApply(t, f, "u1", "PTO", "2024-04-01", "2024-04-03")

	before := f.balances.ViewBalances("u1").Balances[domain.TypePTO]

	approved, err := f.service.Approve(context.Background(), domain.DecisionRequest{
		LeaveID:    created.ID,
		Comment:    "enjoy",
		ActorID:    "mgr",
		ActorEmail: "mgr@example.com",
		ActorRole:  user.RoleManager,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusApproved, approved.Status)
	require.NotNil(t, approved.ManagerComment)
	assert.Equal(t, "enjoy", *approved.ManagerComment)

	after := f.balances.ViewBalances("u1").Balances[domain.TypePTO]
	assert.True(t, before.Equal(after), "approval must not touch the balance")

	stored, err := f.requests.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, stored.Status)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "approved", f.notifier.sent[0].kind)
	assert.Equal(t, "u1@example.com", f.notifier.sent[0].to)
	assert.Equal(t, "mgr@example.com", f.notifier.sent[0].decidedBy)
}

func TestApprove_NotFound(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.service.Approve(context.Background(), domain.DecisionRequest{
		LeaveID:   "missing",
		ActorID:   "mgr",
		ActorRole: user.RoleManager,
	})
	assert.ErrorIs(t, err, domain.ErrLeaveNotFound)
}

func TestApprove_SelfApprovalRejected(t *testing.T) {
	f := newWorkflowFixture()
	created := mustApply(t, f, "mgr", "PTO", "2024-05-01", "2024-05-02")

	_, err := f.service.Approve(context.Background(), domain.DecisionRequest{
		LeaveID:   created.ID,
		ActorID:   "mgr",
		ActorRole: user.RoleManager,
	})
	assert.ErrorIs(t, err, domain.ErrSelfApproval)

	stored, getErr := f.requests.GetByID(context.Background(), created.ID)
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestApprove_AlreadyProcessed(t *testing.T) {
	f := newWorkflowFixture()
	f.addUser("u1", "u1@example.com", user.RoleStaff)
	created := mustApply(t, f, "u1", "PTO", "2024-05-06", "2024-05-07")

	decision := domain.DecisionRequest{
		LeaveID:   created.ID,
		ActorID:   "mgr",
		ActorRole: user.RoleManager,
	}
	_, err := f.service.Approve(context.Background(), decision)
	require.NoError(t, err)

	_, err = f.service.Approve(context.Background(), decision)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)

	_, err = f.service.Reject(context.Background(), decision)
	assert.ErrorIs(t, err, domain.ErrAlreadyProcessed)
}

func TestReject_RefundsDeductedDays(t *testing.T) {
	f := newWorkflowFixture()
	f.addUser("u1", "u1@example.com", user.RoleStaff)
	created := mustApply(t, f, "u1", "PTO", "2024-06-03", "2024-06-05")

	afterApply := f.balances.ViewBalances("u1").Balances[domain.TypePTO]
	assert.True(t, afterApply.Equal(decimal.NewFromInt(17)),
		"expected PTO 17 after apply, got %s", afterApply)

	rejected, err := f.service.Reject(context.Background(), domain.DecisionRequest{
		LeaveID:    created.ID,
		Comment:    "short staffed",
		ActorID:    "mgr",
		ActorEmail: "mgr@example.com",
		ActorRole:  user.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, rejected.Status)

	afterReject := f.balances.ViewBalances("u1").Balances[domain.TypePTO]
	assert.True(t, afterReject.Equal(decimal.NewFromInt(20)),
		"expected PTO restored to 20, got %s", afterReject)

	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t, "rejected", f.notifier.sent[0].kind)
}

func TestAllLeaves_AdminOnly(t *testing.T) {
	f := newWorkflowFixture()
	mustApply(t, f, "u1", "PTO", "2024-07-01", "2024-07-01")

	_, err := f.service.AllLeaves(context.Background(), user.RoleManager)
	assert.ErrorIs(t, err, user.ErrPermissionDenied)

	all, err := f.service.AllLeaves(context.Background(), user.RoleAdmin)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestColleaguesOnLeave_ExcludesSelfAndNonApproved(t *testing.T) {
	f := newWorkflowFixture()
	f.addUser("u1", "u1@example.com", user.RoleStaff)
	f.addUser("u2", "u2@example.com", user.RoleStaff)

	mine := mustApply(t, f, "u1", "PTO", "2024-08-05", "2024-08-09")
	theirs := mustApply(t, f, "u2", "PTO", "2024-08-07", "2024-08-08")
	pending := mustApply(t, f, "u2", "SICK", "2024-08-05", "2024-08-05")

	for _, id := range []string{mine.ID, theirs.ID} {
		_, err := f.service.Approve(context.Background(), domain.DecisionRequest{
			LeaveID:   id,
			ActorID:   "mgr",
			ActorRole: user.RoleManager,
		})
		require.NoError(t, err)
	}

	colleagues, err := f.service.ColleaguesOnLeave(context.Background(), "u1", domain.ColleaguesFilter{
		StartDate: "2024-08-01",
		EndDate:   "2024-08-31",
	})
	require.NoError(t, err)

	require.Len(t, colleagues, 1)
	assert.Equal(t, theirs.ID, colleagues[0].ID)
	assert.NotEqual(t, pending.ID, colleagues[0].ID)
}

func TestColleaguesOnLeave_InvalidFilter(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.service.ColleaguesOnLeave(context.Background(), "u1", domain.ColleaguesFilter{
		StartDate: "not-a-date",
		EndDate:   "2024-08-31",
	})
	assert.Error(t, err)
}

func TestAddHoliday_AdminOnly(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.service.AddHoliday(context.Background(), domain.AddHolidayRequest{
		Name:      "Independence Day",
		Date:      "2030-08-17",
		ActorRole: user.RoleManager,
	})
	assert.ErrorIs(t, err, user.ErrPermissionDenied)

	holiday, err := f.service.AddHoliday(context.Background(), domain.AddHolidayRequest{
		Name:      "Independence Day",
		Date:      "2030-08-17",
		ActorRole: user.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, "Independence Day", holiday.Name)

	upcoming, err := f.service.UpcomingHolidays(context.Background())
	require.NoError(t, err)
	assert.Len(t, upcoming, 1)
}
