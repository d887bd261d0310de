package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Rotor/internal/domain"
)

// SelectionRepo — репозиторий настроек уведомления (шаблон, выборка
// ссылок, кнопки).
type SelectionRepo struct {
	pool *pgxpool.Pool
}

// NewSelectionRepo создаёт новый SelectionRepo.
func NewSelectionRepo(pool *pgxpool.Pool) *SelectionRepo {
	return &SelectionRepo{pool: pool}
}

// Get возвращает настройки аккаунта.
func (r *SelectionRepo) Get(ctx context.Context, key domain.AccountKey) (*domain.Selection, error) {
	query := `
		SELECT panel_id, username, message_template, selected_link_keys, button_templates, updated_at
		FROM selections
		WHERE panel_id = $1 AND username = $2
	`

	var s domain.Selection
	var template *string
	var selectedJSON, buttonsJSON []byte

	err := r.pool.QueryRow(ctx, query, key.PanelID, key.Username).Scan(
		&s.PanelID,
		&s.Username,
		&template,
		&selectedJSON,
		&buttonsJSON,
		&s.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan selection: %w", err)
	}

	if template != nil {
		s.MessageTemplate = *template
	}
	if len(selectedJSON) > 0 {
		// Битый JSON в колонке трактуется как пустая выборка,
		// а не как ошибка запуска.
		_ = json.Unmarshal(selectedJSON, &s.SelectedLinkKeys)
	}
	if len(buttonsJSON) > 0 {
		_ = json.Unmarshal(buttonsJSON, &s.ButtonTemplates)
	}
	if len(s.ButtonTemplates) > domain.MaxButtonTemplates {
		s.ButtonTemplates = s.ButtonTemplates[:domain.MaxButtonTemplates]
	}
	return &s, nil
}

// Set сохраняет настройки аккаунта (upsert).
func (r *SelectionRepo) Set(ctx context.Context, s *domain.Selection) error {
	selectedJSON, err := json.Marshal(s.SelectedLinkKeys)
	if err != nil {
		return fmt.Errorf("marshal selected keys: %w", err)
	}

	buttons := s.ButtonTemplates
	if len(buttons) > domain.MaxButtonTemplates {
		buttons = buttons[:domain.MaxButtonTemplates]
	}
	buttonsJSON, err := json.Marshal(buttons)
	if err != nil {
		return fmt.Errorf("marshal button templates: %w", err)
	}

	query := `
		INSERT INTO selections (panel_id, username, message_template, selected_link_keys, button_templates, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (panel_id, username) DO UPDATE
		SET message_template = EXCLUDED.message_template,
		    selected_link_keys = EXCLUDED.selected_link_keys,
		    button_templates = EXCLUDED.button_templates,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query,
		s.PanelID,
		s.Username,
		nullString(s.MessageTemplate),
		selectedJSON,
		buttonsJSON,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert selection: %w", err)
	}
	return nil
}
