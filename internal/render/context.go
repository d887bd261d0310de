package render

import (
	"strconv"
	"strings"
	"time"
)

// ContextParams — данные ротации для сборки переменных рендеринга.
type ContextParams struct {
	PanelName    string
	Username     string
	InboundNames []string

	// Now — момент ротации, NextReset — время следующей ротации.
	Now       time.Time
	NextReset time.Time

	// Timezone — пояс для календарных представлений.
	Timezone string

	// UsedTraffic — использовано байт; DataLimit — лимит (nil = безлимит).
	UsedTraffic int64
	DataLimit   *int64

	// Links — итоговый (отфильтрованный) список ссылок.
	Links []string
}

// BuildContext собирает карту переменных рендеринга.
//
// Распознаваемые переменные:
//
//	username, panel_name, inbound_name,
//	date_jalali, date_gregorian,
//	traffic_used_human, traffic_limit_human, traffic_remaining_human,
//	next_reset_at, next_reset_at_jalali,
//	configs, configs_count, links, links_count (алиасы)
func BuildContext(p ContextParams) map[string]string {
	inbound := "-"
	if len(p.InboundNames) > 0 {
		inbound = strings.Join(p.InboundNames, ", ")
	}

	var remaining *int64
	if p.DataLimit != nil && *p.DataLimit > 0 {
		rest := *p.DataLimit - p.UsedTraffic
		if rest < 0 {
			rest = 0
		}
		remaining = &rest
	}

	limit := p.DataLimit
	if limit != nil && *limit <= 0 {
		limit = nil
	}

	linksBlock := FormatLinksMarkdown(p.Links)
	count := strconv.Itoa(len(p.Links))

	return map[string]string{
		"username":     p.Username,
		"panel_name":   p.PanelName,
		"inbound_name": inbound,

		"date_jalali":    FormatJalaliDate(p.Now, p.Timezone),
		"date_gregorian": p.Now.In(LoadTZ(p.Timezone)).Format("2006-01-02"),

		"traffic_used_human":      FormatBytes(p.UsedTraffic),
		"traffic_limit_human":     FormatBytesOpt(limit),
		"traffic_remaining_human": FormatBytesOpt(remaining),

		"next_reset_at":        FormatTehranHour(p.NextReset, "Asia/Tehran"),
		"next_reset_at_jalali": FormatJalaliDateTime(p.NextReset, p.Timezone),

		"configs":       linksBlock,
		"configs_count": count,
		"links":         linksBlock,
		"links_count":   count,
	}
}
