package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
	"github.com/leavedesk/leave-backend-go/internal/domain/auth"
	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/domain/user"
	"github.com/leavedesk/leave-backend-go/internal/handler/http/response"
)

const maxApplyFormSize = 10 << 20

type LeaveHandler interface {
	InitBalance(w http.ResponseWriter, r *http.Request)
	GetBalances(w http.ResponseWriter, r *http.Request)
	AdjustBalance(w http.ResponseWriter, r *http.Request)
	Carryover(w http.ResponseWriter, r *http.Request)

	Apply(w http.ResponseWriter, r *http.Request)
	MyLeaves(w http.ResponseWriter, r *http.Request)
	AllLeaves(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Colleagues(w http.ResponseWriter, r *http.Request)

	UpcomingHolidays(w http.ResponseWriter, r *http.Request)
	AddHoliday(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService   leave.Service
	balanceService leave.BalanceService
}

func NewLeaveHandler(leaveService leave.Service, balanceService leave.BalanceService) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService:   leaveService,
		balanceService: balanceService,
	}
}

// actorClaims is the identity carried by a verified access token.
type actorClaims struct {
	UserID string
	Email  string
	Role   user.Role
}

func claimsFromRequest(r *http.Request) (actorClaims, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return actorClaims{}, err
	}

	actor := actorClaims{}
	if v, ok := claims["user_id"].(string); ok {
		actor.UserID = v
	}
	if v, ok := claims["email"].(string); ok {
		actor.Email = v
	}
	if v, ok := claims["role"].(string); ok {
		actor.Role = user.Role(v)
	}
	if !actor.Role.IsValid() {
		return actorClaims{}, auth.ErrInvalidToken
	}
	return actor, nil
}

// InitBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) InitBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	l.balanceService.InitBalance(actor.UserID)

	response.SuccessWithMessage(w, "Leave balances initialized", l.balanceService.ViewBalances(actor.UserID))
}

// GetBalances implements LeaveHandler.
func (l *LeaveHandlerImpl) GetBalances(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	response.Success(w, l.balanceService.ViewBalances(actor.UserID))
}

// AdjustBalance implements LeaveHandler.
func (l *LeaveHandlerImpl) AdjustBalance(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.AdjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AdjustBalance decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ActorRole = actor.Role

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := l.balanceService.AdjustBalance(req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave balance adjusted successfully", nil)
}

// Carryover implements LeaveHandler.
func (l *LeaveHandlerImpl) Carryover(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	banked := l.balanceService.ProcessCarryover(actor.UserID)

	response.SuccessWithMessage(w, "Carryover processed successfully", map[string]interface{}{
		"carryover": banked,
	})
}

// Apply implements LeaveHandler.
// Multipart form: a "data" field carrying the JSON payload, plus an optional
// "document" file.
func (l *LeaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxApplyFormSize); err != nil {
		slog.Error("Apply multipart parse error", "error", err)
		response.BadRequest(w, "Invalid multipart form", nil)
		return
	}

	var req leave.ApplyLeaveRequest
	if err := json.Unmarshal([]byte(r.FormValue("data")), &req); err != nil {
		slog.Error("Apply decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.UserID = actor.UserID
	req.UserEmail = actor.Email

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	document, header, err := r.FormFile("document")
	if err == nil {
		defer document.Close()
		req.Document = document
		req.DocumentName = header.Filename
	} else if err != http.ErrMissingFile {
		response.BadRequest(w, "Invalid document upload", nil)
		return
	}

	created, err := l.leaveService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave request submitted successfully", created)
}

// MyLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) MyLeaves(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requests, err := l.leaveService.MyLeaves(r.Context(), actor.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// AllLeaves implements LeaveHandler.
func (l *LeaveHandlerImpl) AllLeaves(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	requests, err := l.leaveService.AllLeaves(r.Context(), actor.Role)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}

// Approve implements LeaveHandler.
func (l *LeaveHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.Approve, "Leave request approved successfully")
}

// Reject implements LeaveHandler.
func (l *LeaveHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	l.decide(w, r, l.leaveService.Reject, "Leave request rejected successfully")
}

func (l *LeaveHandlerImpl) decide(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, req leave.DecisionRequest) (leave.LeaveRequest, error),
	message string,
) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.DecisionRequest
	if r.Body != nil {
		// The comment body is optional.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	req.LeaveID = chi.URLParam(r, "id")
	req.ActorID = actor.UserID
	req.ActorEmail = actor.Email
	req.ActorRole = actor.Role

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	updated, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, message, updated)
}

// Colleagues implements LeaveHandler.
func (l *LeaveHandlerImpl) Colleagues(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	filter := leave.ColleaguesFilter{
		StartDate: r.URL.Query().Get("start_date"),
		EndDate:   r.URL.Query().Get("end_date"),
	}

	colleagues, err := l.leaveService.ColleaguesOnLeave(r.Context(), actor.UserID, filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, colleagues)
}

// UpcomingHolidays implements LeaveHandler.
func (l *LeaveHandlerImpl) UpcomingHolidays(w http.ResponseWriter, r *http.Request) {
	holidays, err := l.leaveService.UpcomingHolidays(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, holidays)
}

// AddHoliday implements LeaveHandler.
func (l *LeaveHandlerImpl) AddHoliday(w http.ResponseWriter, r *http.Request) {
	actor, err := claimsFromRequest(r)
	if err != nil {
		response.Unauthorized(w, "Unauthorized")
		return
	}

	var req leave.AddHolidayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AddHoliday decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ActorRole = actor.Role

	holiday, err := l.leaveService.AddHoliday(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Public holiday added successfully", holiday)
}
