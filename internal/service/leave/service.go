package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/leavedesk/leave-backend-go/internal/pkg/email"
	"github.com/leavedesk/leave-backend-go/internal/pkg/storage"
)

// WorkflowService drives the leave request lifecycle: apply, approve, reject,
// and the read-only views. Balance effects always go through the balance
// service; persistence and notification never run inside a balance lock.
type WorkflowService struct {
	requests  leave.LeaveRequestRepository
	holidays  leave.PublicHolidayRepository
	users     user.UserRepository
	balances  leave.BalanceService
	documents storage.DocumentStore
	notifier  email.Notifier
}

var _ leave.Service = (*WorkflowService)(nil)

func NewWorkflowService(
	requests leave.LeaveRequestRepository,
	holidays leave.PublicHolidayRepository,
	users user.UserRepository,
	balances leave.BalanceService,
	documents storage.DocumentStore,
	notifier email.Notifier,
) *WorkflowService {
	return &WorkflowService{
		requests:  requests,
		holidays:  holidays,
		users:     users,
		balances:  balances,
		documents: documents,
		notifier:  notifier,
	}
}

func (s *WorkflowService) Apply(ctx context.Context, req leave.ApplyLeaveRequest) (leave.LeaveRequest, error) {
	leaveType, err := leave.ParseLeaveType(req.Type)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse start date: %w", err)
	}

	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to parse end date: %w", err)
	}

	s.balances.InitBalance(req.UserID)

	// Deduct before anything else: a failed deduction creates no record and
	// leaves nothing to roll back.
	daysRequested := leave.DaysRequested(startDate, endDate)
	if err := s.balances.Deduct(req.UserID, leaveType, daysRequested); err != nil {
		return leave.LeaveRequest{}, err
	}

	var documentRef *string
	if req.Document != nil {
		ref, err := s.documents.Store(ctx, req.Document, req.DocumentName)
		if err != nil {
			return leave.LeaveRequest{}, fmt.Errorf("failed to store document: %w", err)
		}
		if ref != "" {
			documentRef = &ref
		}
	}

	request := leave.LeaveRequest{
		UserID:      req.UserID,
		Type:        leaveType,
		Status:      leave.StatusPending,
		StartDate:   startDate,
		EndDate:     endDate,
		Reason:      req.Reason,
		DocumentRef: documentRef,
	}

	created, err := s.requests.Create(ctx, request)
	if err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	if req.UserEmail != "" {
		if err := s.notifier.SendLeaveApplied(req.UserEmail, startDate, endDate); err != nil {
			slog.Error("failed to send leave applied email", "user_id", req.UserID, "error", err)
		}
	}

	return created, nil
}

func (s *WorkflowService) Approve(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequest, error) {
	request, err := s.decide(ctx, req, leave.StatusApproved)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	// No balance effect: the days were already deducted at apply time.

	s.notifyDecision(ctx, request, req.ActorEmail)
	return request, nil
}

func (s *WorkflowService) Reject(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequest, error) {
	request, err := s.decide(ctx, req, leave.StatusRejected)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	// Refund exactly what apply deducted, recomputed from the stored dates.
	daysRequested := leave.DaysRequested(request.StartDate, request.EndDate)
	s.balances.Refund(request.UserID, request.Type, daysRequested)

	s.notifyDecision(ctx, request, req.ActorEmail)
	return request, nil
}

// decide runs the shared approve/reject transition: role gate, lookup,
// self-decision check, terminal-state guard, then the persisted mutation.
func (s *WorkflowService) decide(ctx context.Context, req leave.DecisionRequest, status leave.LeaveStatus) (leave.LeaveRequest, error) {
	if !req.ActorRole.CanApproveLeave() {
		return leave.LeaveRequest{}, user.ErrPermissionDenied
	}

	request, err := s.requests.GetByID(ctx, req.LeaveID)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	if request.UserID == req.ActorID {
		return leave.LeaveRequest{}, leave.ErrSelfApproval
	}

	if request.Status != leave.StatusPending {
		return leave.LeaveRequest{}, leave.ErrAlreadyProcessed
	}

	comment := req.Comment
	request.Status = status
	request.ManagerComment = &comment

	if err := s.requests.UpdateDecision(ctx, request); err != nil {
		return leave.LeaveRequest{}, fmt.Errorf("failed to update leave request: %w", err)
	}

	return request, nil
}

// notifyDecision emails the request owner about the outcome. Best effort: a
// missing owner or a failing notifier is logged, never surfaced.
func (s *WorkflowService) notifyDecision(ctx context.Context, request leave.LeaveRequest, decidedBy string) {
	owner, err := s.users.GetByID(ctx, request.UserID)
	if err != nil {
		slog.Error("failed to look up leave owner for notification", "user_id", request.UserID, "error", err)
		return
	}
	if owner.Email == "" {
		return
	}

	if request.Status == leave.StatusApproved {
		err = s.notifier.SendLeaveApproved(owner.Email, request.StartDate, request.EndDate, decidedBy)
	} else {
		err = s.notifier.SendLeaveRejected(owner.Email, request.StartDate, request.EndDate, decidedBy)
	}
	if err != nil {
		slog.Error("failed to send leave decision email", "leave_id", request.ID, "error", err)
	}
}

func (s *WorkflowService) MyLeaves(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	return s.requests.GetByUserID(ctx, userID)
}

func (s *WorkflowService) AllLeaves(ctx context.Context, actorRole user.Role) ([]leave.LeaveRequest, error) {
	if !actorRole.CanViewAllLeaves() {
		return nil, user.ErrPermissionDenied
	}
	return s.requests.GetAll(ctx)
}

func (s *WorkflowService) ColleaguesOnLeave(ctx context.Context, userID string, filter leave.ColleaguesFilter) ([]leave.LeaveRequest, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	startDate, _ := time.Parse("2006-01-02", filter.StartDate)
	endDate, _ := time.Parse("2006-01-02", filter.EndDate)

	overlapping, err := s.requests.FindApprovedOverlapping(ctx, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("failed to query overlapping leave requests: %w", err)
	}

	colleagues := make([]leave.LeaveRequest, 0, len(overlapping))
	for _, request := range overlapping {
		if request.UserID == userID {
			continue
		}
		colleagues = append(colleagues, request)
	}
	return colleagues, nil
}

func (s *WorkflowService) UpcomingHolidays(ctx context.Context) ([]leave.PublicHoliday, error) {
	return s.holidays.FindAfter(ctx, time.Now())
}

func (s *WorkflowService) AddHoliday(ctx context.Context, req leave.AddHolidayRequest) (leave.PublicHoliday, error) {
	if !req.ActorRole.CanManageHolidays() {
		return leave.PublicHoliday{}, user.ErrPermissionDenied
	}

	if err := req.Validate(); err != nil {
		return leave.PublicHoliday{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)

	holiday, err := s.holidays.Create(ctx, leave.PublicHoliday{Name: req.Name, Date: date})
	if err != nil {
		return leave.PublicHoliday{}, fmt.Errorf("failed to create public holiday: %w", err)
	}
	return holiday, nil
}
