package render

import (
	"fmt"
	"strings"
	"time"
)

// JalaliDate — дата солнечного (шамси) календаря.
type JalaliDate struct {
	Year  int
	Month int
	Day   int
}

// String возвращает дату в формате YYYY-MM-DD.
func (d JalaliDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// LoadTZ загружает часовой пояс по имени, откатываясь на UTC.
func LoadTZ(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

// GregorianToJalali переводит григорианскую дату в шамси.
// Арифметический алгоритм без таблиц високосных лет.
func GregorianToJalali(gy, gm, gd int) JalaliDate {
	gdm := [12]int{0, 31, 59, 90, 120, 151, 181, 212, 243, 273, 304, 334}

	var jy int
	if gy > 1600 {
		jy = 979
		gy -= 1600
	} else {
		jy = 0
		gy -= 621
	}

	gy2 := gy
	if gm > 2 {
		gy2 = gy + 1
	}
	days := 365*gy + (gy2+3)/4 - (gy2+99)/100 + (gy2+399)/400 - 80 + gd + gdm[gm-1]

	jy += 33 * (days / 12053)
	days %= 12053
	jy += 4 * (days / 1461)
	days %= 1461

	if days > 365 {
		jy += (days - 1) / 365
		days = (days - 1) % 365
	}

	var jm, jd int
	if days < 186 {
		jm = 1 + days/31
		jd = 1 + days%31
	} else {
		jm = 7 + (days-186)/30
		jd = 1 + (days-186)%30
	}

	return JalaliDate{Year: jy, Month: jm, Day: jd}
}

// FormatJalaliDate форматирует дату шамси в поясе tzName.
func FormatJalaliDate(t time.Time, tzName string) string {
	local := t.In(LoadTZ(tzName))
	return GregorianToJalali(local.Year(), int(local.Month()), local.Day()).String()
}

// FormatJalaliDateTime форматирует дату шамси вместе со временем.
func FormatJalaliDateTime(t time.Time, tzName string) string {
	local := t.In(LoadTZ(tzName))
	j := GregorianToJalali(local.Year(), int(local.Month()), local.Day())
	return j.String() + " " + local.Format("15:04:05")
}

var persianDigits = strings.NewReplacer(
	"0", "۰", "1", "۱", "2", "۲", "3", "۳", "4", "۴",
	"5", "۵", "6", "۶", "7", "۷", "8", "۸", "9", "۹",
)

// ToPersianDigits заменяет арабские цифры персидскими.
func ToPersianDigits(text string) string {
	return persianDigits.Replace(text)
}

// FormatTehranHour форматирует время в 12-часовом персидском виде
// с периодом суток: "ساعت ۸.۳۰ صبح".
func FormatTehranHour(t time.Time, tzName string) string {
	local := t.In(LoadTZ(tzName))
	hour := local.Hour()

	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}

	var period string
	switch {
	case hour <= 3:
		period = "بامداد"
	case hour <= 11:
		period = "صبح"
	case hour == 12:
		period = "ظهر"
	case hour <= 16:
		period = "بعدازظهر"
	case hour <= 19:
		period = "عصر"
	default:
		period = "شب"
	}

	hourStr := ToPersianDigits(fmt.Sprintf("%d", hour12))
	minuteStr := ToPersianDigits(fmt.Sprintf("%02d", local.Minute()))
	return fmt.Sprintf("ساعت %s.%s %s", hourStr, minuteStr, period)
}
