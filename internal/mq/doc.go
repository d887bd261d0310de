// Package mq предоставляет инфраструктуру для работы с RabbitMQ.
//
// Структура:
//   - connection.go — управление соединением с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — объявление exchange, queues, bindings
//   - publisher.go  — публикация событий
//
// Планировщик только публикует: потребители событий — внешние системы
// (биллинг, аудит). Публикация best-effort и никогда не блокирует
// ротацию.
//
// Типы сообщений:
//   - rotation.completed — ротация выполнена, уведомление доставлено
//   - rotation.failed    — запуск завершился ошибкой
//
// Exchange:
//   - rotor.events (topic)
package mq
