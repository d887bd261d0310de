package domain

import (
	"time"

	"github.com/google/uuid"
)

// Schedule — расписание автоматической ротации подписки аккаунта.
//
// Scheduler проверяет next_due_at и выполняет ротацию, когда время подошло:
// - По интервалу: каждые IntervalMinutes минут (основной режим)
// - По cron-выражению: "0 9 * * *" (каждый день в 9:00)
//
// next_due_at двигается только вперёд: на интервал при успехе,
// на короткий фиксированный backoff при ошибке.
type Schedule struct {
	// ID — уникальный идентификатор расписания.
	ID uuid.UUID `json:"id"`

	// PanelID — панель, на которой живёт аккаунт.
	PanelID int64 `json:"panel_id"`

	// Username — имя пользователя на панели.
	Username string `json:"username"`

	// IntervalMinutes — интервал между ротациями в минутах.
	// Используется если CronExpr не задан. Должен быть > 0.
	IntervalMinutes int `json:"interval_minutes,omitempty"`

	// CronExpr — cron-выражение, альтернатива интервалу.
	// Формат: "минуты часы дни месяцы дни_недели".
	// Если задан CronExpr, IntervalMinutes игнорируется.
	CronExpr string `json:"cron_expr,omitempty"`

	// Timezone — часовой пояс для вычисления времени.
	// По умолчанию: "UTC".
	Timezone string `json:"timezone"`

	// Enabled — флаг активности. Выключенные расписания
	// никогда не попадают в выборку due.
	Enabled bool `json:"enabled"`

	// NextDueAt — время следующей ротации.
	NextDueAt *time.Time `json:"next_due_at,omitempty"`

	// LastRunAt — время последнего запуска (успешного или нет).
	LastRunAt *time.Time `json:"last_run_at,omitempty"`

	// LastError — текст последней ошибки, обрезанный до MaxLastErrorLen.
	// Пустая строка после успешного запуска.
	LastError string `json:"last_error,omitempty"`

	// CreatedAt — время создания расписания.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt — время последнего обновления.
	UpdatedAt time.Time `json:"updated_at"`
}

// MaxLastErrorLen — максимальная длина сохраняемого текста ошибки.
const MaxLastErrorLen = 500

// Key возвращает ключ аккаунта этого расписания.
func (s *Schedule) Key() AccountKey {
	return AccountKey{PanelID: s.PanelID, Username: s.Username}
}

// IsCron возвращает true, если расписание использует cron-выражение.
func (s *Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если расписание использует интервал.
func (s *Schedule) IsInterval() bool {
	return s.CronExpr == "" && s.IntervalMinutes > 0
}

// IsDue проверяет, пора ли выполнять ротацию.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled {
		return false
	}
	if s.NextDueAt == nil {
		return false
	}
	return now.After(*s.NextDueAt) || now.Equal(*s.NextDueAt)
}

// Interval возвращает интервал расписания как Duration.
// Минимум одна минута, как и в хранилище.
func (s *Schedule) Interval() time.Duration {
	mins := s.IntervalMinutes
	if mins < 1 {
		mins = 1
	}
	return time.Duration(mins) * time.Minute
}

// TruncateError обрезает текст ошибки до MaxLastErrorLen.
func TruncateError(msg string) string {
	runes := []rune(msg)
	if len(runes) <= MaxLastErrorLen {
		return msg
	}
	return string(runes[:MaxLastErrorLen])
}
