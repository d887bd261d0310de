package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shaiso/Rotor/internal/domain"
)

// ErrEmptyMessage — после разбиения не осталось ни одной части.
var ErrEmptyMessage = errors.New("empty message")

// expiredFallbackText — текст просроченного сообщения, когда после
// снятия разметки не осталось ничего.
const expiredFallbackText = "منقضی شد"

// expireTimeout — бюджет времени на асинхронную просрочку.
const expireTimeout = 30 * time.Second

// Client — транспорт доставки сообщений.
type Client interface {
	// Send отправляет одну часть. Кнопки передаются только для
	// последней части и могут быть пустыми.
	Send(ctx context.Context, chatID int64, text string, buttons []string) (messageID int, err error)

	// EditStruck заменяет текст сообщения перечёркнутым вариантом
	// и снимает инлайн-кнопки.
	EditStruck(ctx context.Context, chatID int64, messageID int, text string) error
}

// StateStore — хранилище MessageState.
type StateStore interface {
	// Get возвращает след последней доставки или nil, если его нет.
	Get(ctx context.Context, key domain.AccountKey) (*domain.MessageState, error)

	// Set перезаписывает след доставки.
	Set(ctx context.Context, state *domain.MessageState) error
}

// Deliverer отправляет уведомления и ведёт их жизненный цикл.
type Deliverer struct {
	client Client
	store  StateStore
	logger *slog.Logger

	maxPartLen int
}

// NewDeliverer создаёт Deliverer.
func NewDeliverer(client Client, store StateStore, logger *slog.Logger) *Deliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deliverer{
		client:     client,
		store:      store,
		logger:     logger,
		maxPartLen: MaxPartLen,
	}
}

// Deliver отправляет текст в чат и обновляет MessageState.
//
// Если предыдущий след существовал и указывает на другой чат или другой
// набор message_id, старые сообщения асинхронно помечаются просроченными.
// Ошибки просрочки игнорируются; ошибка отправки или сохранения следа
// возвращается вызывающему.
func (d *Deliverer) Deliver(ctx context.Context, key domain.AccountKey, chatID int64, text string, buttons []string) (*domain.MessageState, error) {
	parts := Chunk(text, d.maxPartLen)
	if len(parts) == 0 {
		return nil, ErrEmptyMessage
	}

	// Предыдущий след читается до отправки; ошибка чтения не должна
	// блокировать доставку — просрочка и так best-effort.
	prev, err := d.store.Get(ctx, key)
	if err != nil {
		d.logger.Warn("failed to read previous message state",
			"account", key.String(),
			"error", err,
		)
		prev = nil
	}

	messageIDs := make([]int, 0, len(parts))
	for i, part := range parts {
		var partButtons []string
		if i == len(parts)-1 {
			partButtons = buttons
		}

		id, err := d.client.Send(ctx, chatID, part, partButtons)
		if err != nil {
			return nil, fmt.Errorf("send part %d/%d: %w", i+1, len(parts), err)
		}
		messageIDs = append(messageIDs, id)
	}

	state := &domain.MessageState{
		PanelID:      key.PanelID,
		Username:     key.Username,
		ChatID:       chatID,
		MessageIDs:   messageIDs,
		MessageTexts: parts,
		UpdatedAt:    time.Now().UTC(),
	}
	if err := d.store.Set(ctx, state); err != nil {
		return nil, fmt.Errorf("save message state: %w", err)
	}

	if prev != nil && len(prev.MessageIDs) > 0 && !prev.SameDelivery(chatID, messageIDs) {
		go d.expire(prev)
	}

	return state, nil
}

// expire помечает старые сообщения просроченными: текст без разметки,
// перечёркнутый, без кнопок. Любая ошибка просто логируется — сообщение
// могло быть удалено или стать слишком старым для правки.
func (d *Deliverer) expire(prev *domain.MessageState) {
	ctx, cancel := context.WithTimeout(context.Background(), expireTimeout)
	defer cancel()

	for i, messageID := range prev.MessageIDs {
		var src string
		if i < len(prev.MessageTexts) {
			src = prev.MessageTexts[i]
		}

		plain := strings.TrimSpace(StripBasicMarkdown(src))
		if plain == "" {
			plain = expiredFallbackText
		}

		if err := d.client.EditStruck(ctx, prev.ChatID, messageID, plain); err != nil {
			d.logger.Debug("failed to expire message",
				"chat_id", prev.ChatID,
				"message_id", messageID,
				"error", err,
			)
		}
	}
}

// StripBasicMarkdown снимает базовую markdown-разметку перед
// перечёркнутым рендерингом.
func StripBasicMarkdown(text string) string {
	text = strings.ReplaceAll(text, "```", "")
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "*", "")
	return text
}
