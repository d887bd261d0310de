package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Rotor/internal/domain"
)

// PanelRepo — репозиторий панелей. Записи заводит оператор через CLI;
// планировщику нужно только чтение.
type PanelRepo struct {
	pool *pgxpool.Pool
}

// NewPanelRepo создаёт новый PanelRepo.
func NewPanelRepo(pool *pgxpool.Pool) *PanelRepo {
	return &PanelRepo{pool: pool}
}

// Create сохраняет новую панель и возвращает присвоенный id.
func (r *PanelRepo) Create(ctx context.Context, p *domain.Panel) error {
	query := `
		INSERT INTO panels (name, base_url, admin_username, admin_password,
		                    verify_ssl, default_chat_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		RETURNING id, created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		p.Name,
		p.BaseURL,
		p.AdminUsername,
		p.AdminPassword,
		p.VerifySSL,
		p.DefaultChatID,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("create panel: %w", err)
	}
	return nil
}

// SetDefaultChat задаёт чат доставки панели по умолчанию.
// nil снимает чат.
func (r *PanelRepo) SetDefaultChat(ctx context.Context, id int64, chatID *int64) error {
	query := `
		UPDATE panels
		SET default_chat_id = $2, updated_at = now()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, chatID)
	if err != nil {
		return fmt.Errorf("set panel default chat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByID возвращает панель по идентификатору.
func (r *PanelRepo) GetByID(ctx context.Context, id int64) (*domain.Panel, error) {
	query := `
		SELECT id, name, base_url, admin_username, admin_password,
		       verify_ssl, default_chat_id, created_at, updated_at
		FROM panels
		WHERE id = $1
	`

	var p domain.Panel
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID,
		&p.Name,
		&p.BaseURL,
		&p.AdminUsername,
		&p.AdminPassword,
		&p.VerifySSL,
		&p.DefaultChatID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan panel: %w", err)
	}
	return &p, nil
}

// List возвращает все панели.
func (r *PanelRepo) List(ctx context.Context) ([]domain.Panel, error) {
	query := `
		SELECT id, name, base_url, admin_username, admin_password,
		       verify_ssl, default_chat_id, created_at, updated_at
		FROM panels
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list panels: %w", err)
	}
	defer rows.Close()

	var panels []domain.Panel
	for rows.Next() {
		var p domain.Panel
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.BaseURL,
			&p.AdminUsername,
			&p.AdminPassword,
			&p.VerifySSL,
			&p.DefaultChatID,
			&p.CreatedAt,
			&p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan panel: %w", err)
		}
		panels = append(panels, p)
	}
	return panels, rows.Err()
}
