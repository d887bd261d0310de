package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shaiso/Rotor/internal/domain"
)

// MessageStateRepo — репозиторий следов доставки уведомлений.
//
// Реализует notify.StateStore: отсутствие следа — штатная ситуация
// (первая доставка), поэтому Get возвращает (nil, nil), а не ErrNotFound.
type MessageStateRepo struct {
	pool *pgxpool.Pool
}

// NewMessageStateRepo создаёт новый MessageStateRepo.
func NewMessageStateRepo(pool *pgxpool.Pool) *MessageStateRepo {
	return &MessageStateRepo{pool: pool}
}

// Get возвращает след последней доставки или nil, если его нет.
func (r *MessageStateRepo) Get(ctx context.Context, key domain.AccountKey) (*domain.MessageState, error) {
	query := `
		SELECT panel_id, username, chat_id, message_ids, message_texts, updated_at
		FROM message_states
		WHERE panel_id = $1 AND username = $2
	`

	var m domain.MessageState
	var idsJSON, textsJSON []byte

	err := r.pool.QueryRow(ctx, query, key.PanelID, key.Username).Scan(
		&m.PanelID,
		&m.Username,
		&m.ChatID,
		&idsJSON,
		&textsJSON,
		&m.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan message state: %w", err)
	}

	if len(idsJSON) > 0 {
		if err := json.Unmarshal(idsJSON, &m.MessageIDs); err != nil {
			return nil, fmt.Errorf("unmarshal message ids: %w", err)
		}
	}
	if len(textsJSON) > 0 {
		if err := json.Unmarshal(textsJSON, &m.MessageTexts); err != nil {
			return nil, fmt.Errorf("unmarshal message texts: %w", err)
		}
	}
	return &m, nil
}

// Set перезаписывает след доставки (upsert).
func (r *MessageStateRepo) Set(ctx context.Context, state *domain.MessageState) error {
	idsJSON, err := json.Marshal(state.MessageIDs)
	if err != nil {
		return fmt.Errorf("marshal message ids: %w", err)
	}
	textsJSON, err := json.Marshal(state.MessageTexts)
	if err != nil {
		return fmt.Errorf("marshal message texts: %w", err)
	}

	query := `
		INSERT INTO message_states (panel_id, username, chat_id, message_ids, message_texts, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (panel_id, username) DO UPDATE
		SET chat_id = EXCLUDED.chat_id,
		    message_ids = EXCLUDED.message_ids,
		    message_texts = EXCLUDED.message_texts,
		    updated_at = EXCLUDED.updated_at
	`
	_, err = r.pool.Exec(ctx, query,
		state.PanelID,
		state.Username,
		state.ChatID,
		idsJSON,
		textsJSON,
		state.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert message state: %w", err)
	}
	return nil
}
