// Package render наполняет шаблоны уведомлений данными ротации.
//
// Шаблон — обычный текст с плейсхолдерами вида {{имя}}. Подстановка —
// чистая замена данными за один проход, без выражений и без выполнения
// кода. Нераспознанные имена заменяются пустой строкой.
//
// Структура:
//   - template.go — однопроходный токенизатор плейсхолдеров, кнопки
//   - context.go  — сборка переменных рендеринга из данных ротации
//   - bytes.go    — человекочитаемое форматирование байтов
//   - jalali.go   — солнечный (шамси) календарь и персидские цифры
//   - links.go    — markdown-блок выбранных ссылок
package render
