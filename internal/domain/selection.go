package domain

import "time"

// MaxButtonTemplates — максимальное число кнопочных шаблонов на аккаунт.
const MaxButtonTemplates = 3

// Selection — настройки уведомления для аккаунта.
//
// Редактируется оператором через CLI и «самолечится»
// мигратором выборки: при смене схемы ключей сохранённые ключи
// переписываются на актуальные stable-ключи.
type Selection struct {
	// PanelID + Username — ключ аккаунта.
	PanelID  int64  `json:"panel_id"`
	Username string `json:"username"`

	// MessageTemplate — шаблон текста уведомления.
	// Пустая строка означает шаблон по умолчанию.
	MessageTemplate string `json:"message_template,omitempty"`

	// SelectedLinkKeys — упорядоченный набор stable-ключей ссылок,
	// которые попадают в уведомление. Пустой набор = «все ссылки».
	SelectedLinkKeys []string `json:"selected_link_keys,omitempty"`

	// ButtonTemplates — шаблоны инлайн-кнопок (0..MaxButtonTemplates).
	ButtonTemplates []string `json:"button_templates,omitempty"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// Key возвращает ключ аккаунта этой выборки.
func (s *Selection) Key() AccountKey {
	return AccountKey{PanelID: s.PanelID, Username: s.Username}
}

// HasSelection возвращает true, если оператор ограничил набор ссылок.
func (s *Selection) HasSelection() bool {
	return s != nil && len(s.SelectedLinkKeys) > 0
}
