// Package scheduler реализует цикл ротации подписок.
//
// Scheduler периодически забирает due-расписания из хранилища и для
// каждого выполняет последовательность rotate-and-notify: отзыв
// подписки на панели, миграция сохранённой выборки ссылок, рендеринг
// уведомления и доставка в чат.
//
// Структура:
//   - scheduler.go — Tick и обработка одного расписания
//   - claims.go    — реестр эксклюзивных claim'ов по ключу аккаунта
//   - nextdue.go   — политика повторов: интервал, cron, backoff'ы
//   - report.go    — резервный отчёт, когда шаблон дал пустой текст
//
// Использование:
//
//	sched := scheduler.New(scheduler.Config{...})
//
//	// Вызывается каждый тик цикла (обычно раз в несколько секунд)
//	if err := sched.Tick(ctx); err != nil {
//	    logger.Error("scheduler tick failed", "error", err)
//	}
//
// Гарантии конкурентности:
//
// На один аккаунт — не больше одного rotate-and-notify одновременно
// (реестр claim'ов внутри процесса плюс lease в БД между процессами).
// Между аккаунтами параллельность не ограничена: медленный аккаунт не
// задерживает остальных и не блокирует цикл опроса.
//
// Leader Election:
//
// Дополнительно к lease в ClaimDue процесс-лидер выбирается в main
// через pg_try_advisory_lock; Tick() зовёт только лидер.
package scheduler
