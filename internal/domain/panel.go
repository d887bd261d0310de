package domain

import "time"

// Panel — внешняя панель управления аккаунтами.
//
// Учётные данные администратора нужны клиенту панели для получения
// токена. В JSON пароль не сериализуется.
type Panel struct {
	// ID — идентификатор панели.
	ID int64 `json:"id"`

	// Name — отображаемое имя панели.
	Name string `json:"name"`

	// BaseURL — базовый URL API панели.
	BaseURL string `json:"base_url"`

	// AdminUsername / AdminPassword — учётные данные администратора.
	AdminUsername string `json:"admin_username"`
	AdminPassword string `json:"-"`

	// VerifySSL — проверять ли TLS-сертификат панели.
	VerifySSL bool `json:"verify_ssl"`

	// DefaultChatID — чат по умолчанию для аккаунтов без явной привязки.
	DefaultChatID *int64 `json:"default_chat_id,omitempty"`

	// CreatedAt / UpdatedAt — времена создания и обновления.
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Binding — явная привязка аккаунта к чату доставки.
// Имеет приоритет над DefaultChatID панели.
type Binding struct {
	PanelID   int64     `json:"panel_id"`
	Username  string    `json:"username"`
	ChatID    int64     `json:"chat_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Key возвращает ключ аккаунта этой привязки.
func (b *Binding) Key() AccountKey {
	return AccountKey{PanelID: b.PanelID, Username: b.Username}
}
