package render

// DefaultMessageTemplate — шаблон уведомления по умолчанию.
const DefaultMessageTemplate = `✅ *ساب ریست شد*
━━━━━━━━━━━━━━

👤 *یوزر:* ` + "`{{username}}`" + `
📡 *اینباند:* ` + "`{{inbound_name}}`" + `
📅 *تاریخ شمسی:* ` + "`{{date_jalali}}`" + `
📅 *تاریخ میلادی:* ` + "`{{date_gregorian}}`" + `
📊 *باقی‌مانده:* ` + "`{{traffic_remaining_human}}`" + `
⏱ *ریست بعدی:* ` + "`{{next_reset_at}}`" + `

🔗 *کانفیگ‌ها ({{links_count}}):*
{{links}}
`

// DefaultButtonTemplates возвращает кнопочные шаблоны по умолчанию.
func DefaultButtonTemplates() []string {
	return []string{
		"📅 تاریخ شمسی: {{date_jalali}}",
		"📊 باقی‌مانده: {{traffic_remaining_human}}",
		"⏱ ریست بعدی: {{next_reset_at}}",
	}
}
