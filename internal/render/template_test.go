package render

import (
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	vars := map[string]string{
		"username": "alice",
		"count":    "3",
	}

	tests := []struct {
		name     string
		template string
		want     string
	}{
		{
			name:     "simple substitution",
			template: "Hello, {{username}}!",
			want:     "Hello, alice!",
		},
		{
			name:     "spaces inside delimiters",
			template: "{{ username }} has {{\tcount }}",
			want:     "alice has 3",
		},
		{
			name:     "unknown identifier becomes empty",
			template: "[{{missing}}]",
			want:     "[]",
		},
		{
			name:     "no placeholders",
			template: "plain text",
			want:     "plain text",
		},
		{
			name:     "unterminated placeholder kept literally",
			template: "oops {{username",
			want:     "oops {{username",
		},
		{
			name:     "triple braces",
			template: "{{{username}}}",
			want:     "{alice}",
		},
		{
			name:     "empty identifier is not a placeholder",
			template: "{{}} {{ }}",
			want:     "{{}} {{ }}",
		},
		{
			name:     "identifier with invalid chars",
			template: "{{user name}}",
			want:     "{{user name}}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Render(tt.template, vars); got != tt.want {
				t.Errorf("Render(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestTruncateButtonText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short passes through", "hello", 64, "hello"},
		{"newlines collapsed", "a\nb\t c", 64, "a b c"},
		{"backticks stripped", "`code`", 64, "code"},
		{"truncated with ellipsis", strings.Repeat("x", 70), 64, strings.Repeat("x", 63) + "…"},
		{"exact limit untouched", strings.Repeat("x", 64), 64, strings.Repeat("x", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateButtonText(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if n := len([]rune(got)); n > tt.max {
				t.Errorf("result length %d exceeds max %d", n, tt.max)
			}
		})
	}
}

func TestRenderButtons(t *testing.T) {
	vars := map[string]string{"username": "alice"}

	t.Run("renders and drops empties", func(t *testing.T) {
		got := RenderButtons([]string{"user: {{username}}", "{{missing}}", "static"}, vars)
		want := []string{"user: alice", "static"}
		if len(got) != len(want) {
			t.Fatalf("got %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("button %d = %q, want %q", i, got[i], want[i])
			}
		}
	})

	t.Run("empty templates use defaults", func(t *testing.T) {
		got := RenderButtons(nil, map[string]string{
			"date_jalali":             "۱۴۰۳-۰۱-۰۱",
			"traffic_remaining_human": "1.00 GB",
			"next_reset_at":           "ساعت ۸.۳۰ صبح",
		})
		if len(got) != len(DefaultButtonTemplates()) {
			t.Fatalf("expected %d default buttons, got %d", len(DefaultButtonTemplates()), len(got))
		}
	})
}
