package scheduler

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shaiso/Rotor/internal/panel"
	"github.com/shaiso/Rotor/internal/render"
)

// reportParams — входные данные резервного отчёта.
type reportParams struct {
	User      *panel.User
	Usage     *panel.Usage
	PanelName string
	Timezone  string
	Now       time.Time
	NextReset time.Time
}

// buildFallbackReport собирает отчёт об использовании аккаунта, когда
// пользовательский шаблон дал пустой текст. Отчёт строится из фактов
// панели и пустым быть не может.
func buildFallbackReport(p reportParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 *%s*\n", p.User.Username)
	if p.PanelName != "" {
		fmt.Fprintf(&b, "🌐 %s\n", p.PanelName)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "📥 مصرف: %s\n", render.ToPersianDigits(render.FormatBytes(p.User.UsedTraffic)))
	fmt.Fprintf(&b, "📦 حجم کل: %s\n", render.ToPersianDigits(render.FormatBytesOpt(p.User.DataLimit)))
	fmt.Fprintf(&b, "🔋 باقی‌مانده: %s\n", render.ToPersianDigits(render.FormatBytesOpt(p.User.RemainingTraffic())))

	if nodes := nodeLines(p.Usage); len(nodes) > 0 {
		b.WriteString("\n")
		for _, line := range nodes {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	fmt.Fprintf(&b, "🗓 %s\n", render.FormatJalaliDateTime(p.Now, p.Timezone))
	fmt.Fprintf(&b, "🔄 تمدید بعدی: %s", render.FormatJalaliDateTime(p.NextReset, p.Timezone))

	return b.String()
}

// nodeLines форматирует разбивку трафика по узлам, по убыванию
// потребления. Узлы без трафика опускаются.
func nodeLines(usage *panel.Usage) []string {
	if usage == nil || len(usage.Usages) == 0 {
		return nil
	}

	nodes := make([]panel.NodeUsage, 0, len(usage.Usages))
	for _, n := range usage.Usages {
		if n.UsedTraffic <= 0 {
			continue
		}
		nodes = append(nodes, n)
	}
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].UsedTraffic > nodes[j].UsedTraffic
	})

	lines := make([]string, 0, len(nodes))
	for _, n := range nodes {
		name := n.NodeName
		if name == "" {
			name = "—"
		}
		lines = append(lines, fmt.Sprintf("▪️ %s: %s", name, render.ToPersianDigits(render.FormatBytes(n.UsedTraffic))))
	}
	return lines
}
