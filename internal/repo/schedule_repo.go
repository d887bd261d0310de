package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Rotor/internal/domain"
)

const scheduleColumns = `id, panel_id, username, interval_minutes, cron_expr, timezone,
	       enabled, next_due_at, last_run_at, last_error, created_at, updated_at`

// ScheduleRepo — репозиторий расписаний ротации.
type ScheduleRepo struct {
	pool *pgxpool.Pool
}

// NewScheduleRepo создаёт новый ScheduleRepo.
func NewScheduleRepo(pool *pgxpool.Pool) *ScheduleRepo {
	return &ScheduleRepo{pool: pool}
}

// Create создаёт новое расписание.
func (r *ScheduleRepo) Create(ctx context.Context, s *domain.Schedule) error {
	query := `
		INSERT INTO schedules (id, panel_id, username, interval_minutes, cron_expr, timezone,
		                       enabled, next_due_at, last_run_at, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.PanelID,
		s.Username,
		nullInt(s.IntervalMinutes),
		nullString(s.CronExpr),
		s.Timezone,
		s.Enabled,
		s.NextDueAt,
		s.LastRunAt,
		nullString(s.LastError),
		s.CreatedAt,
		s.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}
	return nil
}

// GetByKey возвращает расписание аккаунта.
func (r *ScheduleRepo) GetByKey(ctx context.Context, key domain.AccountKey) (*domain.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		WHERE panel_id = $1 AND username = $2
	`
	return scanSchedule(r.pool.QueryRow(ctx, query, key.PanelID, key.Username))
}

// List возвращает все расписания, упорядоченные по времени следующей ротации.
func (r *ScheduleRepo) List(ctx context.Context) ([]domain.Schedule, error) {
	query := `
		SELECT ` + scheduleColumns + `
		FROM schedules
		ORDER BY next_due_at ASC NULLS LAST, panel_id, username
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// ClaimDue выбирает due-расписания и берёт на них краткоживущий lease.
//
// Условный UPDATE с FOR UPDATE SKIP LOCKED возвращает только те строки,
// которые удалось захватить: несколько процессов планировщика, сканируя
// одно хранилище, не возьмут одно расписание дважды. Lease истекает сам,
// если процесс умер, не дойдя до MarkResult.
func (r *ScheduleRepo) ClaimDue(ctx context.Context, now time.Time, lease time.Duration, limit int) ([]domain.Schedule, error) {
	query := `
		UPDATE schedules SET claimed_until = $2
		WHERE id IN (
			SELECT id FROM schedules
			WHERE enabled = true
			  AND next_due_at IS NOT NULL
			  AND next_due_at <= $1
			  AND (claimed_until IS NULL OR claimed_until <= $1)
			ORDER BY next_due_at ASC
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING ` + scheduleColumns + `
	`
	rows, err := r.pool.Query(ctx, query, now, now.Add(lease), limit)
	if err != nil {
		return nil, fmt.Errorf("claim due schedules: %w", err)
	}
	defer rows.Close()
	return collectSchedules(rows)
}

// MarkResult записывает исход запуска и снимает lease.
// next_due_at двигается только вперёд — это единственное место,
// где он обновляется.
func (r *ScheduleRepo) MarkResult(ctx context.Context, key domain.AccountKey, nextDue, lastRun time.Time, lastError string) error {
	query := `
		UPDATE schedules
		SET next_due_at = $3, last_run_at = $4, last_error = $5,
		    claimed_until = NULL, updated_at = $4
		WHERE panel_id = $1 AND username = $2
	`
	result, err := r.pool.Exec(ctx, query,
		key.PanelID,
		key.Username,
		nextDue,
		lastRun,
		nullString(domain.TruncateError(lastError)),
	)
	if err != nil {
		return fmt.Errorf("mark schedule result: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetEnabled включает/выключает расписание.
func (r *ScheduleRepo) SetEnabled(ctx context.Context, key domain.AccountKey, enabled bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE schedules SET enabled = $3, updated_at = NOW()
		WHERE panel_id = $1 AND username = $2
	`, key.PanelID, key.Username, enabled)
	if err != nil {
		return fmt.Errorf("set enabled: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Update обновляет интервал, cron и пояс расписания.
func (r *ScheduleRepo) Update(ctx context.Context, s *domain.Schedule) error {
	query := `
		UPDATE schedules
		SET interval_minutes = $3, cron_expr = $4, timezone = $5,
		    enabled = $6, next_due_at = $7, updated_at = $8
		WHERE panel_id = $1 AND username = $2
	`
	result, err := r.pool.Exec(ctx, query,
		s.PanelID,
		s.Username,
		nullInt(s.IntervalMinutes),
		nullString(s.CronExpr),
		s.Timezone,
		s.Enabled,
		s.NextDueAt,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete удаляет расписание.
func (r *ScheduleRepo) Delete(ctx context.Context, key domain.AccountKey) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM schedules WHERE panel_id = $1 AND username = $2`,
		key.PanelID, key.Username)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Helpers ---

func scanSchedule(row pgx.Row) (*domain.Schedule, error) {
	var s domain.Schedule
	var intervalMinutes *int
	var cronExpr, lastError *string

	err := row.Scan(
		&s.ID,
		&s.PanelID,
		&s.Username,
		&intervalMinutes,
		&cronExpr,
		&s.Timezone,
		&s.Enabled,
		&s.NextDueAt,
		&s.LastRunAt,
		&lastError,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan schedule: %w", err)
	}

	if intervalMinutes != nil {
		s.IntervalMinutes = *intervalMinutes
	}
	if cronExpr != nil {
		s.CronExpr = *cronExpr
	}
	if lastError != nil {
		s.LastError = *lastError
	}
	return &s, nil
}

func collectSchedules(rows pgx.Rows) ([]domain.Schedule, error) {
	var schedules []domain.Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *s)
	}
	return schedules, rows.Err()
}

// nullInt возвращает nil для нулевого int.
func nullInt(i int) *int {
	if i == 0 {
		return nil
	}
	return &i
}
