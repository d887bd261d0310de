package domain

import "fmt"

// AccountKey — составной ключ управляемого аккаунта: панель + имя пользователя.
//
// Все хранилища (расписания, выборки ссылок, состояние сообщений, привязки
// чатов) ключуются этой парой. Один и тот же username на разных панелях —
// это разные аккаунты.
type AccountKey struct {
	// PanelID — идентификатор панели, на которой живёт аккаунт.
	PanelID int64 `json:"panel_id"`

	// Username — имя пользователя на панели.
	Username string `json:"username"`
}

// String возвращает каноническое текстовое представление "panel/username".
// Используется в логах и метках claim-реестра.
func (k AccountKey) String() string {
	return fmt.Sprintf("%d/%s", k.PanelID, k.Username)
}

// IsZero проверяет, заполнен ли ключ.
func (k AccountKey) IsZero() bool {
	return k.PanelID == 0 && k.Username == ""
}
