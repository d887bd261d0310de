package link

import (
	"encoding/base64"
	"regexp"
	"strings"
)

// Схемы, по которым распознаётся список ссылок в подписке.
var uriSchemes = []string{
	"vmess://",
	"vless://",
	"trojan://",
	"ss://",
	"hysteria://",
	"hy2://",
	"tuic://",
	"wireguard://",
}

var base64Re = regexp.MustCompile(`^[A-Za-z0-9+/_-]+={0,2}$`)

// containsURIScheme проверяет, встречается ли в тексте известная схема.
func containsURIScheme(text string) bool {
	for _, s := range uriSchemes {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}

// maybeBase64Decode пытается раскодировать base64-нагрузку подписки.
// Возвращает пустую строку, если текст не похож на base64 или
// раскодированный результат не содержит ссылок.
func maybeBase64Decode(text string) string {
	candidate := strings.Join(strings.Fields(text), "")
	if len(candidate) < 16 || !base64Re.MatchString(candidate) {
		return ""
	}

	if pad := len(candidate) % 4; pad != 0 {
		candidate += strings.Repeat("=", 4-pad)
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.URLEncoding} {
		decoded, err := enc.DecodeString(candidate)
		if err != nil {
			continue
		}
		out := string(decoded)
		if containsURIScheme(out) || strings.Contains(out, "://") {
			return out
		}
	}
	return ""
}

// splitLines режет текст на непустые строки с обрезанными пробелами.
func splitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// ResolveSubscription разбирает полезную нагрузку подписки в список ссылок.
//
// Подписка может быть:
//   - текстом с одной ссылкой на строку
//   - base64 от того же списка
//   - непрозрачным блобом (конфиг для отдельных клиентов) — тогда он
//     возвращается как одна литеральная «ссылка»
func ResolveSubscription(payload string) []string {
	text := strings.TrimSpace(payload)
	if text == "" {
		return nil
	}

	if containsURIScheme(text) {
		return splitLines(text)
	}

	if decoded := maybeBase64Decode(text); decoded != "" {
		return splitLines(decoded)
	}

	return []string{text}
}

// ResolveLinks выбирает итоговый список ссылок аккаунта.
// Нагрузка подписки предпочитается списку из API, если она дала
// нетривиальный результат (не единственный блоб без схемы).
func ResolveLinks(apiLinks []string, subscriptionPayload string) []string {
	cleaned := make([]string, 0, len(apiLinks))
	for _, l := range apiLinks {
		if l = strings.TrimSpace(l); l != "" {
			cleaned = append(cleaned, l)
		}
	}

	if subscriptionPayload != "" {
		links := ResolveSubscription(subscriptionPayload)
		trivial := len(links) == 1 && !strings.Contains(links[0], "://")
		if len(links) > 0 && !trivial {
			return links
		}
	}
	return cleaned
}
