package postgresql

import (
	"context"
	"time"

	"github.com/leavedesk/leave-backend-go/internal/domain/leave"
	"github.com/leavedesk/leave-backend-go/internal/pkg/database"
)

type publicHolidayRepositoryImpl struct {
	db *database.DB
}

func NewPublicHolidayRepository(db *database.DB) leave.PublicHolidayRepository {
	return &publicHolidayRepositoryImpl{db: db}
}

func (r *publicHolidayRepositoryImpl) Create(ctx context.Context, holiday leave.PublicHoliday) (leave.PublicHoliday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO public_holidays (id, name, date)
		VALUES (uuidv7(), $1, $2)
		RETURNING id
	`

	err := q.QueryRow(ctx, query, holiday.Name, holiday.Date).Scan(&holiday.ID)
	if err != nil {
		return leave.PublicHoliday{}, err
	}

	return holiday, nil
}

func (r *publicHolidayRepositoryImpl) FindAfter(ctx context.Context, date time.Time) ([]leave.PublicHoliday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, name, date
		FROM public_holidays
		WHERE date > $1
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []leave.PublicHoliday
	for rows.Next() {
		var holiday leave.PublicHoliday
		if err := rows.Scan(&holiday.ID, &holiday.Name, &holiday.Date); err != nil {
			return nil, err
		}
		holidays = append(holidays, holiday)
	}

	return holidays, rows.Err()
}
