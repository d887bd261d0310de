package cli

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntervalMinutes разбирает интервал ротации, заданный в часах,
// и возвращает минуты. Принимаются формы:
//
//	"24"    — целые часы
//	"1:30"  — часы и минуты
//	"1.5"   — десятичные часы
//
// Минимум — одна минута.
func ParseIntervalMinutes(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty interval")
	}

	if h, m, ok := strings.Cut(raw, ":"); ok {
		hours, err := strconv.Atoi(h)
		if err != nil || hours < 0 {
			return 0, fmt.Errorf("invalid interval %q", raw)
		}
		minutes, err := strconv.Atoi(m)
		if err != nil || minutes < 0 || minutes > 59 {
			return 0, fmt.Errorf("invalid interval %q", raw)
		}
		return checkMinutes(raw, hours*60+minutes)
	}

	hours, err := strconv.ParseFloat(raw, 64)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("invalid interval %q", raw)
	}
	return checkMinutes(raw, int(hours*60+0.5))
}

func checkMinutes(raw string, minutes int) (int, error) {
	if minutes < 1 {
		return 0, fmt.Errorf("interval %q is below one minute", raw)
	}
	return minutes, nil
}

// FormatIntervalMinutes печатает интервал в форме "H:MM".
func FormatIntervalMinutes(minutes int) string {
	if minutes <= 0 {
		return ""
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}
