package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/balance"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/eleave-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/eleave-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

const employeeColumns = `
	e.id, e.nip, e.full_name, e.position, COALESCE(u.role, ''),
	e.leave_balance, e.balance_version, e.last_rollover_year, e.created_at, e.updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	var rawBalance []byte
	err := row.Scan(
		&emp.ID, &emp.NIP, &emp.FullName, &emp.Position, &emp.Role,
		&rawBalance, &emp.BalanceVersion, &emp.LastRolloverYear, &emp.CreatedAt, &emp.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, err
	}

	emp.LeaveBalance = balance.Map{}
	if len(rawBalance) > 0 {
		if err := json.Unmarshal(rawBalance, &emp.LeaveBalance); err != nil {
			return employee.Employee{}, fmt.Errorf("decode leave_balance of employee %s: %w", emp.ID, err)
		}
	}
	return emp, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees e
		LEFT JOIN users u ON u.employee_id = e.id
		WHERE e.id = $1`

	return scanEmployee(q.QueryRow(ctx, query, id))
}

// GetByIDForUpdate implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByIDForUpdate(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT` + employeeColumns + `
		FROM employees e
		LEFT JOIN users u ON u.employee_id = e.id
		WHERE e.id = $1
		FOR UPDATE OF e`

	return scanEmployee(q.QueryRow(ctx, query, id))
}

// ListIDs implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListIDs(ctx context.Context, role *user.Role) ([]string, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id
		FROM employees e
		LEFT JOIN users u ON u.employee_id = e.id
		WHERE ($1::text IS NULL OR u.role = $1::text)
		ORDER BY e.id`

	var roleArg *string
	if role != nil {
		s := string(*role)
		roleArg = &s
	}

	rows, err := q.Query(ctx, query, roleArg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

// UpdateLeaveBalance implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) UpdateLeaveBalance(ctx context.Context, id string, m balance.Map, expectedVersion int64) (int64, error) {
	return r.writeBalance(ctx, id, m, expectedVersion, nil)
}

// CompleteRollover implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) CompleteRollover(ctx context.Context, id string, m balance.Map, expectedVersion int64, year int) (int64, error) {
	return r.writeBalance(ctx, id, m, expectedVersion, &year)
}

func (r *employeeRepositoryImpl) writeBalance(ctx context.Context, id string, m balance.Map, expectedVersion int64, rolloverYear *int) (int64, error) {
	q := GetQuerier(ctx, r.db)

	payload, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("encode leave_balance: %w", err)
	}

	query := `
		UPDATE employees
		SET leave_balance = $2::jsonb,
			balance_version = balance_version + 1,
			last_rollover_year = COALESCE($4::int, last_rollover_year),
			updated_at = NOW()
		WHERE id = $1 AND balance_version = $3
		RETURNING balance_version`

	var version int64
	err = q.QueryRow(ctx, query, id, string(payload), expectedVersion, rolloverYear).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			var exists bool
			if err := q.QueryRow(ctx, "SELECT EXISTS (SELECT 1 FROM employees WHERE id = $1)", id).Scan(&exists); err != nil {
				return 0, err
			}
			if !exists {
				return 0, employee.ErrEmployeeNotFound
			}
			return 0, employee.ErrBalanceVersionStale
		}
		return 0, err
	}

	return version, nil
}
