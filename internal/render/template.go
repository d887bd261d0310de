package render

import "strings"

// Границы плейсхолдера. Сопоставление чувствительно к регистру.
const (
	openDelim  = "{{"
	closeDelim = "}}"
)

// MaxButtonTextLen — лимит транспорта на текст инлайн-кнопки.
const MaxButtonTextLen = 64

// isIdentChar — допустимые символы идентификатора плейсхолдера.
func isIdentChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

// Render подставляет переменные в шаблон за один проход.
//
// Плейсхолдер — идентификатор [A-Za-z0-9_]+ в двойных фигурных скобках,
// пробелы вокруг идентификатора допустимы: {{username}}, {{ username }}.
// Идентификатор без значения в vars заменяется пустой строкой.
// Текст, не образующий плейсхолдер, остаётся как есть.
func Render(tmpl string, vars map[string]string) string {
	if !strings.Contains(tmpl, openDelim) {
		return tmpl
	}

	var b strings.Builder
	b.Grow(len(tmpl))

	i := 0
	for i < len(tmpl) {
		start := strings.Index(tmpl[i:], openDelim)
		if start < 0 {
			b.WriteString(tmpl[i:])
			break
		}
		b.WriteString(tmpl[i : i+start])
		i += start

		name, next, ok := scanPlaceholder(tmpl, i+len(openDelim))
		if !ok {
			// Не плейсхолдер: выдаём один символ и ищем дальше,
			// чтобы "{{{x}}}" разбирался как "{" + {{x}} + "}".
			b.WriteByte(tmpl[i])
			i++
			continue
		}

		b.WriteString(vars[name])
		i = next
	}

	return b.String()
}

// scanPlaceholder разбирает "ident }}" начиная с pos (после "{{").
// Возвращает имя, позицию за закрывающими скобками и признак успеха.
func scanPlaceholder(tmpl string, pos int) (name string, next int, ok bool) {
	i := pos
	for i < len(tmpl) && (tmpl[i] == ' ' || tmpl[i] == '\t') {
		i++
	}

	start := i
	for i < len(tmpl) && isIdentChar(tmpl[i]) {
		i++
	}
	if i == start {
		return "", 0, false
	}
	name = tmpl[start:i]

	for i < len(tmpl) && (tmpl[i] == ' ' || tmpl[i] == '\t') {
		i++
	}
	if !strings.HasPrefix(tmpl[i:], closeDelim) {
		return "", 0, false
	}
	return name, i + len(closeDelim), true
}

// CompactOneLine схлопывает текст в одну строку с одиночными пробелами.
func CompactOneLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// TruncateButtonText готовит текст для инлайн-кнопки: одна строка,
// без обратных кавычек, жёсткое усечение с маркером многоточия.
func TruncateButtonText(text string, maxLen int) string {
	value := strings.ReplaceAll(CompactOneLine(text), "`", "")
	runes := []rune(value)
	if len(runes) <= maxLen {
		return value
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return strings.TrimRight(string(runes[:maxLen-1]), " ") + "…"
}

// RenderButtons рендерит кнопочные шаблоны независимо друг от друга.
// Пустые после рендеринга кнопки отбрасываются. При пустом списке
// шаблонов используются кнопки по умолчанию.
func RenderButtons(templates []string, vars map[string]string) []string {
	if len(templates) == 0 {
		templates = DefaultButtonTemplates()
	}

	var out []string
	for _, tmpl := range templates {
		text := TruncateButtonText(strings.TrimSpace(Render(tmpl, vars)), MaxButtonTextLen)
		if text == "" {
			continue
		}
		out = append(out, text)
	}
	return out
}
