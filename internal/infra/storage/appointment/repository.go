package appointment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const table = "appointments"

// Коды ошибок PostgreSQL
const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
)

var columns = []string{
	"id",
	"stylist_id",
	"service_id",
	"client_id",
	"appointment_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"token_hash",
	"client_first_name",
	"client_last_name",
	"client_email",
	"client_phone",
	"client_questionnaire",
	"notes",
	"deposit_required",
	"deposit_amount",
	"cancellation_reason",
	"cancelled_at",
	"rescheduled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий записей. Единственное место, где записи пишутся в БД.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// LockStylistDay берет транзакционную advisory-блокировку на (мастер, дата).
// Блокировка снимается при завершении транзакции, поэтому вызов вне транзакции - ошибка.
func (r *Repository) LockStylistDay(ctx context.Context, stylistID int64, date time.Time) error {
	tx, ok := dbmetrics.TxFromContext(ctx)
	if !ok {
		return ErrNoTransaction
	}

	_, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock(hashtextextended($1, 0))",
		"appointments:"+domain.DayKey(stylistID, date))
	if err != nil {
		return fmt.Errorf("%w: LockStylistDay - execute: %v", ErrExecQuery, err)
	}
	return nil
}

// Create создает новую запись.
// Пересечение с другой занимающей записью того же мастера отклоняется ограничением БД (ErrSlotTaken).
func (r *Repository) Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	questionnaire, err := marshalQuestionnaire(appt.Client.Questionnaire)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal questionnaire: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert(table).
		Columns(
			"stylist_id",
			"service_id",
			"client_id",
			"appointment_date",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"token_hash",
			"client_first_name",
			"client_last_name",
			"client_email",
			"client_phone",
			"client_questionnaire",
			"notes",
			"deposit_required",
			"deposit_amount",
		).
		Values(
			appt.StylistID,
			appt.ServiceID,
			appt.ClientID,
			appt.Date.Format(domain.DateFormat),
			appt.StartTime,
			appt.EndTime,
			appt.DurationMinutes,
			appt.Status,
			appt.TokenHash,
			appt.Client.FirstName,
			appt.Client.LastName,
			appt.Client.Email,
			appt.Client.Phone,
			questionnaire,
			appt.Notes,
			appt.DepositRequired,
			appt.DepositAmount,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appt.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return nil, mapped
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	return appt, nil
}

// GetByID получает запись по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id}, false)
}

// GetByIDForUpdate получает запись по ID с блокировкой строки до конца транзакции
func (r *Repository) GetByIDForUpdate(ctx context.Context, id int64) (*domain.Appointment, error) {
	if !dbmetrics.IsInTransaction(ctx) {
		return nil, ErrNoTransaction
	}
	return r.getOne(ctx, "GetByIDForUpdate", squirrel.Eq{"id": id}, true)
}

// GetByTokenHash получает запись по хешу токена изменения
func (r *Repository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Appointment, error) {
	return r.getOne(ctx, "GetByTokenHash", squirrel.Eq{"token_hash": tokenHash}, dbmetrics.IsInTransaction(ctx))
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Sqlizer, forUpdate bool) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(where)
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	appt, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s - scan appointment: %v", ErrScanRow, op, err)
	}

	return appt, nil
}

// ListOccupying получает записи мастера на дату, занимающие интервал (scheduled, confirmed, rescheduled).
// excludeID > 0 исключает запись из результата (перенос не конфликтует сам с собой).
func (r *Repository) ListOccupying(ctx context.Context, stylistID int64, date time.Time, excludeID int64) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{
			"stylist_id":       stylistID,
			"appointment_date": date.Format(domain.DateFormat),
			"status":           statusStrings(domain.OccupyingStatuses),
		}).
		OrderBy("start_time ASC")

	if excludeID > 0 {
		builder = builder.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupying - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOccupying - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListByStylist получает записи мастера с фильтрацией по периоду и статусу
func (r *Repository) ListByStylist(ctx context.Context, filter domain.StylistAppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(columns...).
		From(table).
		Where(squirrel.Eq{"stylist_id": filter.StylistID})

	// Фильтрация по периоду
	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"appointment_date": filter.StartDate.Format(domain.DateFormat)})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"appointment_date": filter.EndDate.Format(domain.DateFormat)})
	}

	// Фильтрация по статусу
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	} else if !filter.IncludeInactive {
		builder = builder.Where(squirrel.Eq{"status": statusStrings(domain.OccupyingStatuses)})
	}

	query, args, err := builder.OrderBy("appointment_date ASC", "start_time ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStylist - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListByStylist - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// UpdateStatus обновляет статус записи
func (r *Repository) UpdateStatus(ctx context.Context, id int64, status domain.AppointmentStatus, at time.Time) error {
	query, args, err := psqlbuilder.Update(table).
		Set("status", status).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateStatus - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "UpdateStatus", query, args)
}

// Cancel отменяет запись с указанием причины. История сохраняется, строка не удаляется.
func (r *Repository) Cancel(ctx context.Context, id int64, reason *string, at time.Time) error {
	query, args, err := psqlbuilder.Update(table).
		Set("status", domain.StatusCancelled).
		Set("cancellation_reason", reason).
		Set("cancelled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Cancel - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Cancel", query, args)
}

// Reschedule переносит запись на новые дату и время и ставит статус rescheduled
func (r *Repository) Reschedule(ctx context.Context, id int64, date time.Time, start, end types.TimeString, at time.Time) error {
	query, args, err := psqlbuilder.Update(table).
		Set("appointment_date", date.Format(domain.DateFormat)).
		Set("start_time", start).
		Set("end_time", end).
		Set("status", domain.StatusRescheduled).
		Set("rescheduled_at", at).
		Set("updated_at", at).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Reschedule - build update query: %v", ErrBuildQuery, err)
	}

	return r.execAffectingOne(ctx, "Reschedule", query, args)
}

func (r *Repository) execAffectingOne(ctx context.Context, op, query string, args []interface{}) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if mapped := mapConstraintError(err); mapped != nil {
			return mapped
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}

	return nil
}

// mapConstraintError переводит нарушения ограничений PostgreSQL в ошибки репозитория
func mapConstraintError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch string(pqErr.Code) {
	case pgExclusionViolation:
		return ErrSlotTaken
	case pgUniqueViolation:
		if pqErr.Constraint == "appointments_token_hash_key" {
			return ErrDuplicateToken
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var (
		appt                 domain.Appointment
		date                 time.Time
		questionnaire        []byte
		createdAt, updatedAt sql.NullTime
	)

	err := row.Scan(
		&appt.ID,
		&appt.StylistID,
		&appt.ServiceID,
		&appt.ClientID,
		&date,
		&appt.StartTime,
		&appt.EndTime,
		&appt.DurationMinutes,
		&appt.Status,
		&appt.TokenHash,
		&appt.Client.FirstName,
		&appt.Client.LastName,
		&appt.Client.Email,
		&appt.Client.Phone,
		&questionnaire,
		&appt.Notes,
		&appt.DepositRequired,
		&appt.DepositAmount,
		&appt.CancellationReason,
		&appt.CancelledAt,
		&appt.RescheduledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	// DATE приходит в UTC, а время записи - локальное время салона
	appt.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local)
	appt.CreatedAt = createdAt.Time
	appt.UpdatedAt = updatedAt.Time

	if len(questionnaire) > 0 {
		if err := json.Unmarshal(questionnaire, &appt.Client.Questionnaire); err != nil {
			return nil, fmt.Errorf("unmarshal questionnaire: %w", err)
		}
	}

	return &appt, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, appt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}

// marshalQuestionnaire пустая анкета хранится как NULL
func marshalQuestionnaire(q map[string]string) (interface{}, error) {
	if len(q) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}
