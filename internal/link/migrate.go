package link

import (
	"strings"

	"github.com/shaiso/Rotor/internal/domain"
)

// MigrateSelection переписывает сохранённую выборку ключей на актуальные
// stable-ключи по текущему списку ссылок.
//
// Порядок сопоставления для каждого сохранённого ключа:
//  1. точное совпадение со stable-ключом — ключ уже актуален;
//  2. совпадение с compat-ключом (выигрывает первая ссылка с таким ключом);
//  3. совпадение с legacy-ключом — принимается только если подпись
//     уникальна среди текущих ссылок; неоднозначные legacy-ключи
//     отбрасываются, никогда не угадываются.
//
// Несопоставленные ключи отбрасываются: выборка может сжаться, но
// миграция никогда не ошибается. Результат упорядочен и дедуплицирован.
//
// Вызывать нужно по списку ссылок, полученному ДО ротации: именно её
// изменчивые правки эта схема ключей и переживает.
func MigrateSelection(selected []string, items []domain.LinkItem) []string {
	keys := make([]string, 0, len(selected))
	for _, k := range selected {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return nil
	}

	stableSet := make(map[string]bool, len(items))
	for _, it := range items {
		if it.StableKey != "" {
			stableSet[it.StableKey] = true
		}
	}

	compatToStable := make(map[string]string, len(items))
	for _, it := range items {
		if it.CompatKey == "" || it.StableKey == "" {
			continue
		}
		if _, ok := compatToStable[it.CompatKey]; !ok {
			compatToStable[it.CompatKey] = it.StableKey
		}
	}

	legacyCounts := make(map[string]int, len(items))
	legacyLast := make(map[string]string, len(items))
	for _, it := range items {
		if it.LegacyKey == "" || it.StableKey == "" {
			continue
		}
		legacyCounts[it.LegacyKey]++
		legacyLast[it.LegacyKey] = it.StableKey
	}

	out := make([]string, 0, len(keys))
	seen := make(map[string]bool, len(keys))
	for _, k := range keys {
		var stable string
		switch {
		case stableSet[k]:
			stable = k
		case compatToStable[k] != "":
			stable = compatToStable[k]
		case legacyCounts[k] == 1:
			stable = legacyLast[k]
		}
		if stable == "" || seen[stable] {
			continue
		}
		seen[stable] = true
		out = append(out, stable)
	}
	return out
}

// Equal сравнивает два списка ключей поэлементно.
func Equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// FilterBySelection возвращает сырые ссылки, попавшие в выборку.
// Выборка может содержать ключи любой из трёх схем. Пустая выборка
// или выборка, не совпавшая ни с одной ссылкой, означает «все ссылки».
func FilterBySelection(items []domain.LinkItem, selected []string) []string {
	all := make([]string, 0, len(items))
	for _, it := range items {
		all = append(all, it.RawURL)
	}
	if len(selected) == 0 {
		return all
	}

	set := make(map[string]bool, len(selected))
	for _, k := range selected {
		set[k] = true
	}

	var filtered []string
	for _, it := range items {
		if set[it.StableKey] || set[it.CompatKey] || set[it.LegacyKey] {
			filtered = append(filtered, it.RawURL)
		}
	}
	if len(filtered) == 0 {
		return all
	}
	return filtered
}
