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

// BindingRepo — репозиторий привязок аккаунта к чату доставки.
type BindingRepo struct {
	pool *pgxpool.Pool
}

// NewBindingRepo создаёт новый BindingRepo.
func NewBindingRepo(pool *pgxpool.Pool) *BindingRepo {
	return &BindingRepo{pool: pool}
}

// Get возвращает привязку аккаунта.
func (r *BindingRepo) Get(ctx context.Context, key domain.AccountKey) (*domain.Binding, error) {
	query := `
		SELECT panel_id, username, chat_id, updated_at
		FROM bindings
		WHERE panel_id = $1 AND username = $2
	`

	var b domain.Binding
	err := r.pool.QueryRow(ctx, query, key.PanelID, key.Username).Scan(
		&b.PanelID,
		&b.Username,
		&b.ChatID,
		&b.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan binding: %w", err)
	}
	return &b, nil
}

// Set сохраняет привязку (upsert).
func (r *BindingRepo) Set(ctx context.Context, b *domain.Binding) error {
	query := `
		INSERT INTO bindings (panel_id, username, chat_id, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (panel_id, username) DO UPDATE
		SET chat_id = EXCLUDED.chat_id, updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query, b.PanelID, b.Username, b.ChatID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("upsert binding: %w", err)
	}
	return nil
}

// Delete удаляет привязку.
func (r *BindingRepo) Delete(ctx context.Context, key domain.AccountKey) error {
	result, err := r.pool.Exec(ctx,
		`DELETE FROM bindings WHERE panel_id = $1 AND username = $2`,
		key.PanelID, key.Username)
	if err != nil {
		return fmt.Errorf("delete binding: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
