package render

import (
	"testing"
	"time"
)

func TestGregorianToJalali(t *testing.T) {
	tests := []struct {
		gy, gm, gd int
		want       string
	}{
		// Новруз — начало года шамси.
		{2024, 3, 20, "1403-01-01"},
		{2025, 3, 21, "1404-01-01"},
		// Середина года.
		{2024, 8, 30, "1403-06-09"},
		// Последний день года шамси перед Новрузом.
		{2024, 3, 19, "1402-12-29"},
	}

	for _, tt := range tests {
		got := GregorianToJalali(tt.gy, tt.gm, tt.gd).String()
		if got != tt.want {
			t.Errorf("GregorianToJalali(%d, %d, %d) = %s, want %s", tt.gy, tt.gm, tt.gd, got, tt.want)
		}
	}
}

func TestFormatJalaliDate_TimezoneShift(t *testing.T) {
	// 22:00 UTC 19 марта — в Тегеране уже 20 марта, Новруз.
	moment := time.Date(2024, 3, 19, 22, 0, 0, 0, time.UTC)

	if got := FormatJalaliDate(moment, "Asia/Tehran"); got != "1403-01-01" {
		t.Errorf("Tehran date = %s, want 1403-01-01", got)
	}
	if got := FormatJalaliDate(moment, "UTC"); got != "1402-12-29" {
		t.Errorf("UTC date = %s, want 1402-12-29", got)
	}
}

func TestToPersianDigits(t *testing.T) {
	if got := ToPersianDigits("1403-01-09"); got != "۱۴۰۳-۰۱-۰۹" {
		t.Errorf("got %q", got)
	}
	if got := ToPersianDigits("no digits"); got != "no digits" {
		t.Errorf("got %q", got)
	}
}

func TestFormatTehranHour(t *testing.T) {
	tests := []struct {
		hour, minute int
		want         string
	}{
		{8, 30, "ساعت ۸.۳۰ صبح"},
		{0, 5, "ساعت ۱۲.۰۵ بامداد"},
		{12, 0, "ساعت ۱۲.۰۰ ظهر"},
		{15, 45, "ساعت ۳.۴۵ بعدازظهر"},
		{18, 0, "ساعت ۶.۰۰ عصر"},
		{23, 59, "ساعت ۱۱.۵۹ شب"},
	}

	for _, tt := range tests {
		moment := time.Date(2024, 8, 30, tt.hour, tt.minute, 0, 0, LoadTZ("Asia/Tehran"))
		if got := FormatTehranHour(moment, "Asia/Tehran"); got != tt.want {
			t.Errorf("FormatTehranHour(%02d:%02d) = %q, want %q", tt.hour, tt.minute, got, tt.want)
		}
	}
}

func TestLoadTZ_FallsBackToUTC(t *testing.T) {
	if loc := LoadTZ("No/Such_Zone"); loc != time.UTC {
		t.Errorf("expected UTC fallback, got %v", loc)
	}
}
