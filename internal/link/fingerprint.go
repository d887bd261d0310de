package link

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shaiso/Rotor/internal/domain"
)

// stableQueryKeys — allow-list низковариативных query-параметров.
// Только они входят в stable-ключ URL-ссылок: остальные параметры
// (например, sni) панель может перемешать при ротации.
var stableQueryKeys = map[string]bool{
	"type":        true,
	"security":    true,
	"path":        true,
	"serviceName": true,
	"mode":        true,
	"headerType":  true,
	"host":        true,
	"authority":   true,
	"encryption":  true,
	"flow":        true,
}

// urlSchemes — схемы, разбираемые как обычный URL.
var urlSchemes = map[string]bool{
	"vless":     true,
	"trojan":    true,
	"ss":        true,
	"socks":     true,
	"hysteria":  true,
	"hy2":       true,
	"tuic":      true,
	"wireguard": true,
}

// Scheme возвращает URI-схему ссылки в нижнем регистре или "unknown".
func Scheme(raw string) string {
	text := strings.TrimSpace(raw)
	if i := strings.Index(text, "://"); i > 0 {
		return strings.ToLower(text[:i])
	}
	return "unknown"
}

// fingerprint — укороченный sha256-отпечаток текста.
func fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])[:12]
}

// truncateLabel обрезает подпись до limit рун.
func truncateLabel(raw string, limit int) string {
	runes := []rune(raw)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	out := string(runes)
	if out == "" {
		return "link"
	}
	return out
}

// BuildItems вычисляет LinkItem для каждой ссылки.
// Точные дубли сырого текста схлопываются (первое вхождение выигрывает),
// порядок входа сохраняется.
func BuildItems(links []string) []domain.LinkItem {
	items := make([]domain.LinkItem, 0, len(links))
	seen := make(map[string]bool, len(links))
	for _, raw := range links {
		raw = strings.TrimSpace(raw)
		if raw == "" || seen[raw] {
			continue
		}
		seen[raw] = true
		items = append(items, buildItem(raw))
	}
	return items
}

// buildItem вычисляет отпечатки одной ссылки.
func buildItem(raw string) domain.LinkItem {
	scheme := Scheme(raw)

	switch {
	case scheme == "vmess":
		return vmessItem(raw)
	case urlSchemes[scheme]:
		return urlItem(raw, scheme)
	}

	// Неизвестная схема: отпечаток сырого текста, подпись — префикс.
	label := truncateLabel(raw, 32)
	key := scheme + ":" + fingerprint(scheme+"|"+raw)
	return domain.LinkItem{
		Scheme:    scheme,
		Label:     label,
		StableKey: key,
		CompatKey: key,
		LegacyKey: scheme + ":" + label,
		RawURL:    raw,
	}
}

// vmessPayload — структурная нагрузка vmess-ссылки.
// Поля за пределами этого набора высоковариативны и в ключ не входят.
type vmessPayload struct {
	PS   string `json:"ps"`
	Add  string `json:"add"`
	Port any    `json:"port"`
	Net  string `json:"net"`
	Type string `json:"type"`
	TLS  string `json:"tls"`
	SNI  string `json:"sni"`
	Host string `json:"host"`
	Path string `json:"path"`
	ALPN string `json:"alpn"`
}

// decodeVmess разбирает base64-JSON нагрузку vmess-ссылки.
func decodeVmess(raw string) *vmessPayload {
	if !strings.HasPrefix(strings.ToLower(raw), "vmess://") {
		return nil
	}
	b64 := strings.TrimSpace(raw[len("vmess://"):])
	if pad := len(b64) % 4; pad != 0 {
		b64 += strings.Repeat("=", 4-pad)
	}
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil
	}
	var payload vmessPayload
	if err := json.Unmarshal(decoded, &payload); err != nil {
		return nil
	}
	return &payload
}

// portString приводит порт из JSON (строка или число) к строке.
func portString(v any) string {
	switch p := v.(type) {
	case string:
		return strings.TrimSpace(p)
	case float64:
		return strconv.FormatInt(int64(p), 10)
	case json.Number:
		return p.String()
	default:
		return ""
	}
}

func vmessItem(raw string) domain.LinkItem {
	payload := decodeVmess(raw)
	if payload == nil {
		// Битый payload: откат к отпечатку сырого текста.
		key := "vmess:" + fingerprint(raw)
		return domain.LinkItem{
			Scheme:    "vmess",
			Label:     "vmess",
			StableKey: key,
			CompatKey: key,
			LegacyKey: "vmess:vmess",
			RawURL:    raw,
		}
	}

	ps := strings.TrimSpace(payload.PS)
	add := strings.TrimSpace(payload.Add)
	port := portString(payload.Port)

	hostport := strings.Trim(add+":"+port, ":")
	legacyLabel := firstNonEmpty(ps, hostport, "vmess")
	label := legacyLabel
	if ps != "" && hostport != "" {
		label = ps + " · " + hostport
	}

	// Детерминированная сериализация низковариативных полей:
	// map сериализуется с отсортированными ключами.
	stable := map[string]string{
		"ps":   ps,
		"add":  add,
		"port": port,
		"net":  strings.TrimSpace(payload.Net),
		"type": strings.TrimSpace(payload.Type),
		"tls":  strings.TrimSpace(payload.TLS),
		"sni":  strings.TrimSpace(payload.SNI),
		"host": strings.TrimSpace(payload.Host),
		"path": strings.TrimSpace(payload.Path),
		"alpn": strings.TrimSpace(payload.ALPN),
	}
	canonical, _ := json.Marshal(stable)
	key := "vmess:" + fingerprint(string(canonical))

	return domain.LinkItem{
		Scheme:    "vmess",
		Label:     label,
		StableKey: key,
		CompatKey: key,
		LegacyKey: "vmess:" + legacyLabel,
		RawURL:    raw,
	}
}

// queryPair — одна пара query-параметра с сохранённым порядком входа.
type queryPair struct {
	key   string
	value string
}

// parseQueryPairs разбирает query-строку в пары, сохраняя пустые значения.
func parseQueryPairs(rawQuery string) []queryPair {
	var pairs []queryPair
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		k, v, _ := strings.Cut(part, "=")
		key, err := url.QueryUnescape(k)
		if err != nil {
			key = k
		}
		value, err := url.QueryUnescape(v)
		if err != nil {
			value = v
		}
		pairs = append(pairs, queryPair{key: key, value: value})
	}
	return pairs
}

// encodeQueryPairs кодирует пары обратно в канонический отсортированный вид.
func encodeQueryPairs(pairs []queryPair) string {
	sorted := make([]queryPair, len(pairs))
	copy(sorted, pairs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].key != sorted[j].key {
			return sorted[i].key < sorted[j].key
		}
		return sorted[i].value < sorted[j].value
	})

	var b strings.Builder
	for i, p := range sorted {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.value))
	}
	return b.String()
}

func urlItem(raw, scheme string) domain.LinkItem {
	parsed, err := url.Parse(raw)
	if err != nil {
		label := truncateLabel(raw, 32)
		key := scheme + ":" + fingerprint(raw)
		return domain.LinkItem{
			Scheme:    scheme,
			Label:     label,
			StableKey: key,
			CompatKey: key,
			LegacyKey: scheme + ":" + label,
			RawURL:    raw,
		}
	}

	hostport := parsed.Host
	frag := strings.TrimSpace(parsed.Fragment)

	legacyLabel := firstNonEmpty(frag, hostport, scheme)
	label := legacyLabel
	if frag != "" && hostport != "" {
		label = frag + " · " + hostport
	}

	host := parsed.Hostname()
	port := parsed.Port()
	path := parsed.Path

	pairs := parseQueryPairs(parsed.RawQuery)

	// Compat-ключ включает полный query. Он меняется, когда панель
	// перемешивает параметры при ротации (например, подменяет sni),
	// поэтому для сохранения выборок он непригоден.
	compatRaw := scheme + "|" + host + "|" + port + "|" + path + "|" + encodeQueryPairs(pairs) + "|" + frag
	compatKey := scheme + ":" + fingerprint(compatRaw)

	// Stable-ключ: только низковариативные транспортные параметры.
	var stablePairs []queryPair
	for _, p := range pairs {
		if stableQueryKeys[p.key] && strings.TrimSpace(p.value) != "" {
			stablePairs = append(stablePairs, p)
		}
	}
	stableRaw := scheme + "|" + host + "|" + port + "|" + path + "|" + encodeQueryPairs(stablePairs) + "|" + frag
	stableKey := scheme + ":" + fingerprint(stableRaw)

	return domain.LinkItem{
		Scheme:    scheme,
		Label:     label,
		StableKey: stableKey,
		CompatKey: compatKey,
		LegacyKey: scheme + ":" + legacyLabel,
		RawURL:    raw,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
