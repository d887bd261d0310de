// Package link вычисляет отпечатки ссылок подключения и мигрирует
// сохранённые выборки между схемами ключей.
//
// Задача отпечатков: ссылки «одного и того же подключения» до и после
// ротации подписки должны давать один и тот же stable-ключ, хотя ротация
// намеренно меняет изменчивые части ссылки (например, sni в query).
//
// Структура:
//   - fingerprint.go  — классификация по схеме, stable/compat/legacy ключи
//   - migrate.go      — перезапись сохранённой выборки на stable-ключи
//   - subscription.go — разбор полезной нагрузки подписки в список ссылок
package link
