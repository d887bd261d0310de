package panel

// Типы ответов панели.
//
// Панель отдаёт слабо типизированный JSON; здесь он валидируется
// в явные структуры с опциональными полями, чтобы логика планировщика
// не разбирала сырые map'ы.

// User — аккаунт на панели.
type User struct {
	// Username — имя пользователя.
	Username string `json:"username"`

	// Status — статус аккаунта ("active", "disabled", …).
	Status string `json:"status"`

	// UsedTraffic — использованный трафик в байтах.
	UsedTraffic int64 `json:"used_traffic"`

	// DataLimit — лимит трафика в байтах. nil или <= 0 — безлимит.
	DataLimit *int64 `json:"data_limit"`

	// Expire — unix-время истечения аккаунта, nil — бессрочный.
	Expire *int64 `json:"expire"`

	// Links — готовые ссылки подключения от API панели.
	Links []string `json:"links"`

	// SubscriptionURL — URL подписки (может быть относительным).
	SubscriptionURL string `json:"subscription_url"`

	// Inbounds — протокол → список имён инбаундов.
	Inbounds map[string][]string `json:"inbounds"`

	// CreatedAt / SubUpdatedAt — ISO-времена от панели, как есть.
	CreatedAt    string `json:"created_at"`
	SubUpdatedAt string `json:"sub_updated_at"`
}

// RemainingTraffic возвращает остаток трафика в байтах.
// nil — лимита нет, остаток не определён.
func (u *User) RemainingTraffic() *int64 {
	if u.DataLimit == nil || *u.DataLimit <= 0 {
		return nil
	}
	rest := *u.DataLimit - u.UsedTraffic
	if rest < 0 {
		rest = 0
	}
	return &rest
}

// InboundNames возвращает уникальные имена инбаундов в порядке обхода.
func (u *User) InboundNames() []string {
	var out []string
	seen := make(map[string]bool)
	for _, tags := range u.Inbounds {
		for _, tag := range tags {
			if tag == "" || seen[tag] {
				continue
			}
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}

// NodeUsage — трафик аккаунта на одном узле.
type NodeUsage struct {
	NodeName    string `json:"node_name"`
	UsedTraffic int64  `json:"used_traffic"`
}

// Usage — сводка использования аккаунта по узлам.
type Usage struct {
	Username string      `json:"username"`
	Usages   []NodeUsage `json:"usages"`
}

// tokenResponse — ответ на запрос токена.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
