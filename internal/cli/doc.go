// Package cli реализует инструмент командной строки Rotor.
//
// # Обзор
//
// CLI — операторская утилита планировщика: заводит панели и
// расписания ротации, привязывает аккаунты к чатам, настраивает
// шаблоны уведомлений. Работает напрямую с PostgreSQL через
// репозитории, долгоживущего процесса ей не нужно.
//
// # Ключевые компоненты
//
// ## Stores
//
// Ленивая связка pgx-пула и репозиториев. Открывается после парсинга
// PersistentFlags, когда команда действительно идёт в БД.
//
// ## Output
//
// Форматирование вывода. Поддерживает два режима:
//   - Таблицы (text/tabwriter) — по умолчанию
//   - JSON (json.MarshalIndent) — с флагом --json
//
// Данные выводятся в stdout, сообщения (Success/Error) — в stderr.
// Это позволяет использовать pipe: rotor schedule list --json | jq .
//
// ## Commands
//
// Cobra-команды организованы по ресурсам:
//   - panel:     list, add, show, set-chat, inbounds
//   - schedule:  list, create, show, update, enable, disable, delete, run-now
//   - binding:   show, set, delete
//   - selection: show, set-template, set-buttons, set-keys, clear
//   - usage:     show, reset
//
// Каждая группа создаётся через фабричную функцию (NewScheduleCmd
// и т.д.), принимающую storesFn и outputFn — замыкания для ленивого
// открытия Stores и Output после парсинга PersistentFlags.
package cli
