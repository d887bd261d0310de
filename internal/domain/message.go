package domain

import "time"

// MessageState — след последней успешной доставки уведомления.
//
// Перезаписывается после каждой успешной доставки. Предыдущее значение
// используется ровно один раз: чтобы решить, какие старые сообщения
// пометить просроченными, после чего оно забывается.
type MessageState struct {
	// PanelID + Username — ключ аккаунта.
	PanelID  int64  `json:"panel_id"`
	Username string `json:"username"`

	// ChatID — чат, в который ушла доставка.
	ChatID int64 `json:"chat_id"`

	// MessageIDs — идентификаторы отправленных частей, по порядку.
	MessageIDs []int `json:"message_ids"`

	// MessageTexts — тексты частей, по порядку. Нужны для
	// зачёркнутого рендеринга при просрочке.
	MessageTexts []string `json:"message_texts"`

	// UpdatedAt — время последней доставки.
	UpdatedAt time.Time `json:"updated_at"`
}

// Key возвращает ключ аккаунта этого состояния.
func (m *MessageState) Key() AccountKey {
	return AccountKey{PanelID: m.PanelID, Username: m.Username}
}

// SameDelivery проверяет, совпадает ли доставка с другой:
// тот же чат и тот же набор message_id в том же порядке.
func (m *MessageState) SameDelivery(chatID int64, messageIDs []int) bool {
	if m == nil {
		return false
	}
	if m.ChatID != chatID {
		return false
	}
	if len(m.MessageIDs) != len(messageIDs) {
		return false
	}
	for i, id := range m.MessageIDs {
		if id != messageIDs[i] {
			return false
		}
	}
	return true
}
