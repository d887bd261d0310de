package scheduler

import (
	"testing"
	"time"

	"github.com/shaiso/Rotor/internal/domain"
)

func TestNextDue_Interval(t *testing.T) {
	s := &domain.Schedule{IntervalMinutes: 60, Timezone: "UTC"}
	from := time.Date(2024, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := NextDue(s, from)
	if err != nil {
		t.Fatal(err)
	}
	want := from.Add(time.Hour)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
	if got.Location() != time.UTC {
		t.Error("result must be in UTC")
	}
}

func TestNextDue_IntervalInvalidTimezoneFallsBack(t *testing.T) {
	s := &domain.Schedule{IntervalMinutes: 30, Timezone: "No/Such_Zone"}
	from := time.Date(2024, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := NextDue(s, from)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(from.Add(30 * time.Minute)) {
		t.Errorf("got %v", got)
	}
}

func TestNextDue_CronInTimezone(t *testing.T) {
	// Каждый день в 03:00 по Тегерану (UTC+3:30).
	s := &domain.Schedule{CronExpr: "0 3 * * *", Timezone: "Asia/Tehran"}
	from := time.Date(2024, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := NextDue(s, from)
	if err != nil {
		t.Fatal(err)
	}
	// 03:00 Тегерана 31 августа = 23:30 UTC 30 августа.
	want := time.Date(2024, 8, 30, 23, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextDue_CronWinsOverInterval(t *testing.T) {
	s := &domain.Schedule{CronExpr: "30 * * * *", IntervalMinutes: 5, Timezone: "UTC"}
	from := time.Date(2024, 8, 30, 10, 0, 0, 0, time.UTC)

	got, err := NextDue(s, from)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2024, 8, 30, 10, 30, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestNextDue_Errors(t *testing.T) {
	if _, err := NextDue(&domain.Schedule{Timezone: "UTC"}, time.Now()); err == nil {
		t.Error("schedule without interval and cron must fail")
	}
	if _, err := NextDue(&domain.Schedule{CronExpr: "bad expr", Timezone: "UTC"}, time.Now()); err == nil {
		t.Error("invalid cron must fail")
	}
}

func TestValidateCronExpr(t *testing.T) {
	if err := ValidateCronExpr("0 3 * * *"); err != nil {
		t.Errorf("valid expression rejected: %v", err)
	}
	if err := ValidateCronExpr("not cron"); err == nil {
		t.Error("invalid expression accepted")
	}
	if err := ValidateCronExpr("0 0 * * * *"); err == nil {
		t.Error("six-field expression accepted by five-field parser")
	}
}
