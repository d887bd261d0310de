// Package notify доставляет уведомления о ротации в чат.
//
// Deliverer режет текст на части под лимит транспорта, отправляет их
// (кнопки несёт только последняя часть) и ведёт MessageState: след
// последней доставки. При повторной доставке старые сообщения помечаются
// просроченными — текст перечёркивается, кнопки снимаются. Просрочка
// выполняется асинхронно и строго best-effort.
//
// Структура:
//   - chunk.go     — разбиение текста на части по границам строк
//   - deliverer.go — отправка, MessageState, просрочка старых сообщений
//   - telegram.go  — клиент Telegram Bot API
package notify
