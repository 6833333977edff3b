package postgresql

import (
	"context"
	"time"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/holiday"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
)

type holidayRepositoryImpl struct {
	db *database.DB
}

func NewHolidayRepository(db *database.DB) holiday.HolidayRepository {
	return &holidayRepositoryImpl{db: db}
}

// GetByDateRange implements holiday.HolidayRepository.
func (r *holidayRepositoryImpl) GetByDateRange(ctx context.Context, start, end time.Time) ([]holiday.Holiday, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, date, name
		FROM holidays
		WHERE date BETWEEN $1::date AND $2::date
		ORDER BY date`

	rows, err := q.Query(ctx, query, start.Format("2006-01-02"), end.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holidays []holiday.Holiday
	for rows.Next() {
		var h holiday.Holiday
		if err := rows.Scan(&h.ID, &h.Date, &h.Name); err != nil {
			return nil, err
		}
		holidays = append(holidays, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return holidays, nil
}
