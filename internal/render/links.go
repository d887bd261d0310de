package render

import (
	"fmt"
	"strings"

	"github.com/shaiso/Rotor/internal/link"
)

// FormatLinksMarkdown собирает markdown-блок выбранных ссылок:
// нумерованный заголовок с протоколом и сама ссылка в моноширинном
// блоке. Нумерация — персидскими цифрами.
func FormatLinksMarkdown(links []string) string {
	var blocks []string
	idx := 0
	for _, raw := range links {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		raw = strings.ReplaceAll(raw, "`", "")
		idx++

		num := ToPersianDigits(fmt.Sprintf("%d", idx))
		header := fmt.Sprintf("👇 *کانفیگ %s*", num)
		if scheme := link.Scheme(raw); scheme != "" && scheme != "unknown" {
			header = fmt.Sprintf("%s (%s)", header, strings.ToUpper(scheme))
		}

		blocks = append(blocks, header, fmt.Sprintf("`%s`", raw), "")
	}
	return strings.TrimRight(strings.Join(blocks, "\n"), "\n")
}
