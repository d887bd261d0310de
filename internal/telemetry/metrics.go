package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Метрики планировщика. Регистрируются в default-реестре и
// отдаются промежуточным /metrics endpoint'ом каждого процесса.
var (
	// SchedulerTicks — количество выполненных тиков планировщика.
	SchedulerTicks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotor_scheduler_ticks_total",
		Help: "Total number of scheduler ticks",
	})

	// Rotations — исходы запусков rotate-and-notify (result: success|failure).
	Rotations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rotor_rotations_total",
		Help: "Total rotate-and-notify runs by result",
	}, []string{"result"})

	// ClaimSkips — расписания, пропущенные из-за запуска в полёте.
	ClaimSkips = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotor_claim_skips_total",
		Help: "Schedules skipped because a run for the account is in flight",
	})

	// NotificationParts — отправленные части уведомлений.
	NotificationParts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotor_notification_parts_sent_total",
		Help: "Total notification message parts sent",
	})

	// SelectionMigrations — выборки, переписанные на stable-ключи.
	SelectionMigrations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rotor_selection_migrations_total",
		Help: "Link selections migrated to stable keys",
	})
)
