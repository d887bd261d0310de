package domain

// LinkItem — одна ссылка подключения с вычисленными отпечатками.
//
// Никогда не сохраняется целиком: пересчитывается при каждом получении
// списка ссылок. В хранилище живут только stable-ключи (в Selection).
type LinkItem struct {
	// Scheme — URI-схема ссылки ("vmess", "vless", …) или "unknown".
	Scheme string `json:"scheme"`

	// Label — человекочитаемая подпись ссылки.
	Label string `json:"label"`

	// StableKey — отпечаток, инвариантный к полям, которые меняет
	// ротация подписки. Единственный ключ, пригодный для сохранения.
	StableKey string `json:"key"`

	// CompatKey — отпечаток старой схемы (полный query). Меняется при
	// ротации, держится только ради миграции сохранённых выборок.
	CompatKey string `json:"compat_key"`

	// LegacyKey — самая старая схема: scheme + текст подписи.
	LegacyKey string `json:"legacy_key"`

	// RawURL — исходный текст ссылки.
	RawURL string `json:"url"`
}
