package notify

import "strings"

// MaxPartLen — максимальная длина одной части сообщения в рунах.
// Меньше жёсткого лимита Telegram (4096), чтобы оставить запас
// на служебную разметку.
const MaxPartLen = 3800

// Chunk режет текст на части не длиннее maxLen рун.
//
// В буфер копятся целые строки; часть сбрасывается, когда следующая
// строка не помещается. Одиночная строка длиннее лимита режется жёстко
// по границе лимита. Части из одних пробелов отбрасываются.
func Chunk(text string, maxLen int) []string {
	runes := []rune(text)
	if len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	var buf []rune

	flush := func() {
		part := strings.TrimRight(string(buf), "\n")
		parts = append(parts, part)
		buf = buf[:0]
	}

	for _, line := range splitKeepNewline(runes) {
		if len(buf)+len(line) > maxLen && len(buf) > 0 {
			flush()
		}

		if len(line) > maxLen {
			remaining := line
			for len(remaining) > maxLen {
				parts = append(parts, string(remaining[:maxLen]))
				remaining = remaining[maxLen:]
			}
			buf = append(buf, remaining...)
			continue
		}

		buf = append(buf, line...)
	}
	if len(buf) > 0 {
		flush()
	}

	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitKeepNewline режет руны на строки, сохраняя завершающий \n.
func splitKeepNewline(runes []rune) [][]rune {
	var lines [][]rune
	start := 0
	for i, r := range runes {
		if r == '\n' {
			lines = append(lines, runes[start:i+1])
			start = i + 1
		}
	}
	if start < len(runes) {
		lines = append(lines, runes[start:])
	}
	return lines
}
