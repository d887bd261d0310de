package render

import (
	"fmt"
	"strconv"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// FormatBytes форматирует байты в человекочитаемый вид с двоичным
// (1024) масштабом: "512 B", "1.50 KB", "1.00 GB". Значения меньше
// одной единицы выводятся целым числом, остальные — с двумя знаками.
// Отрицательные значения выводятся как есть.
func FormatBytes(num int64) string {
	if num < 0 {
		return strconv.FormatInt(num, 10)
	}

	value := float64(num)
	unit := byteUnits[0]
	for _, u := range byteUnits {
		unit = u
		if value < 1024.0 || u == byteUnits[len(byteUnits)-1] {
			break
		}
		value /= 1024.0
	}

	if unit == "B" {
		return fmt.Sprintf("%d %s", int64(value), unit)
	}
	return fmt.Sprintf("%.2f %s", value, unit)
}

// FormatBytesOpt — как FormatBytes, но неизвестное значение даёт "-".
func FormatBytesOpt(num *int64) string {
	if num == nil {
		return "-"
	}
	return FormatBytes(*num)
}
