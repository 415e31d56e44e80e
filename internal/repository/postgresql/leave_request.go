package postgresql

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/pkg/database"
)

type leaveRequestRepositoryImpl struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.LeaveRequestRepository {
	return &leaveRequestRepositoryImpl{db: db}
}

func (r *leaveRequestRepositoryImpl) Create(ctx context.Context, request leave.LeaveRequest) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leaves (
			id, user_id, type, status,
			start_date, end_date, reason,
			document_ref, manager_comment,
			created_at, updated_at
		) VALUES (
			uuidv7(), $1, $2, $3,
			$4, $5, $6,
			$7, NULL,
			NOW(), NOW()
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		request.UserID, request.Type, request.Status,
		request.StartDate, request.EndDate, request.Reason,
		request.DocumentRef,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, user_id, type, status, start_date, end_date, reason,
			   document_ref, manager_comment, created_at, updated_at
		FROM leaves
		WHERE id = $1
	`

	var request leave.LeaveRequest
	err := q.QueryRow(ctx, query, id).Scan(
		&request.ID,
		&request.UserID,
		&request.Type,
		&request.Status,
		&request.StartDate,
		&request.EndDate,
		&request.Reason,
		&request.DocumentRef,
		&request.ManagerComment,
		&request.CreatedAt,
		&request.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return leave.LeaveRequest{}, leave.ErrLeaveNotFound
		}
		return leave.LeaveRequest{}, err
	}

	return request, nil
}

func (r *leaveRequestRepositoryImpl) GetByUserID(ctx context.Context, userID string) ([]leave.LeaveRequest, error) {
	query := `
		SELECT id, user_id, type, status, start_date, end_date, reason,
			   document_ref, manager_comment, created_at, updated_at
		FROM leaves
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return r.queryRequests(ctx, query, userID)
}

func (r *leaveRequestRepositoryImpl) GetAll(ctx context.Context) ([]leave.LeaveRequest, error) {
	query := `
		SELECT id, user_id, type, status, start_date, end_date, reason,
			   document_ref, manager_comment, created_at, updated_at
		FROM leaves
		ORDER BY created_at DESC
	`
	return r.queryRequests(ctx, query)
}

func (r *leaveRequestRepositoryImpl) FindApprovedOverlapping(ctx context.Context, start, end time.Time) ([]leave.LeaveRequest, error) {
	query := `
		SELECT id, user_id, type, status, start_date, end_date, reason,
			   document_ref, manager_comment, created_at, updated_at
		FROM leaves
		WHERE status = 'APPROVED' AND start_date <= $2 AND end_date >= $1
		ORDER BY start_date ASC
	`
	return r.queryRequests(ctx, query, start, end)
}

func (r *leaveRequestRepositoryImpl) UpdateDecision(ctx context.Context, request leave.LeaveRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leaves
		SET status = $2, manager_comment = $3, updated_at = NOW()
		WHERE id = $1
	`

	commandTag, err := q.Exec(ctx, query, request.ID, request.Status, request.ManagerComment)
	if err != nil {
		return err
	}
	if commandTag.RowsAffected() != 1 {
		return leave.ErrLeaveNotFound
	}
	return nil
}

func (r *leaveRequestRepositoryImpl) queryRequests(ctx context.Context, query string, args ...interface{}) ([]leave.LeaveRequest, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []leave.LeaveRequest
	for rows.Next() {
		var request leave.LeaveRequest
		err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Type,
			&request.Status,
			&request.StartDate,
			&request.EndDate,
			&request.Reason,
			&request.DocumentRef,
			&request.ManagerComment,
			&request.CreatedAt,
			&request.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}

	return requests, rows.Err()
}
