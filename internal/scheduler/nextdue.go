package scheduler

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shaiso/Rotor/internal/domain"
)

// Backoff'ы политики повторов.
const (
	// TransientBackoff — короткий backoff после временной ошибки
	// (сеть, таймаут, 5xx панели или доставки). Запись автоматически
	// попадёт в одну из ближайших выборок due.
	TransientBackoff = 5 * time.Minute

	// ConfigBackoff — длинный backoff после конфигурационной ошибки
	// (нет чата доставки, нет панели). Агрессивный повтор бессмыслен:
	// нужна правка оператора.
	ConfigBackoff = time.Hour
)

// cronParser — парсер cron-выражений (5 полей, без секунд).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// NextDue вычисляет время следующей ротации после успешного запуска.
//
// Для интервальных расписаний — from плюс интервал; для cron — ближайшее
// срабатывание выражения в поясе расписания. Невалидный пояс откатывается
// на UTC. Результат всегда в UTC для хранения в БД.
func NextDue(s *domain.Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	fromInTz := from.In(loc)

	if s.IsCron() {
		schedule, err := cronParser.Parse(s.CronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", s.CronExpr, err)
		}
		return schedule.Next(fromInTz).UTC(), nil
	}

	if s.IsInterval() {
		return fromInTz.Add(s.Interval()).UTC(), nil
	}

	return time.Time{}, fmt.Errorf("schedule has neither cron_expr nor interval_minutes")
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
