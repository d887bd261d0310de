package notify

import (
	"strings"
	"testing"
)

func TestChunk_UnderLimitSinglePart(t *testing.T) {
	text := "short message\nwith lines"
	parts := Chunk(text, 100)
	if len(parts) != 1 || parts[0] != text {
		t.Fatalf("got %v, want single original part", parts)
	}
}

func TestChunk_SplitsOnLineBoundary(t *testing.T) {
	lines := []string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}
	text := strings.Join(lines, "\n")

	parts := Chunk(text, 90)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d: %v", len(parts), parts)
	}
	if parts[0] != lines[0]+"\n"+lines[1] {
		t.Errorf("part 0 = %q", parts[0])
	}
	if parts[1] != lines[2] {
		t.Errorf("part 1 = %q", parts[1])
	}
	for i, p := range parts {
		if n := len([]rune(p)); n > 90 {
			t.Errorf("part %d length %d exceeds limit", i, n)
		}
	}
}

func TestChunk_HardSplitsLongLine(t *testing.T) {
	text := strings.Repeat("x", 250)
	parts := Chunk(text, 100)
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if parts[0] != strings.Repeat("x", 100) || parts[2] != strings.Repeat("x", 50) {
		t.Errorf("unexpected hard split: lengths %d/%d/%d", len(parts[0]), len(parts[1]), len(parts[2]))
	}
}

func TestChunk_DropsWhitespaceParts(t *testing.T) {
	parts := Chunk(strings.Repeat("\n", 60), 25)
	if len(parts) != 0 {
		t.Fatalf("expected no parts for whitespace-only text, got %v", parts)
	}
}

func TestChunk_RuneAware(t *testing.T) {
	// Многобайтовые руны не должны резаться посередине.
	text := strings.Repeat("ک", 150)
	parts := Chunk(text, 100)
	if len(parts) != 2 {
		t.Fatalf("expected 2 parts, got %d", len(parts))
	}
	if got := len([]rune(parts[0])); got != 100 {
		t.Errorf("part 0 rune length = %d, want 100", got)
	}
	for _, p := range parts {
		if !strings.HasPrefix(p, "ک") {
			t.Errorf("part starts with broken rune: %q", p[:4])
		}
	}
}

func TestStripBasicMarkdown(t *testing.T) {
	in := "```\n*bold* and `mono`\n```"
	want := "\nbold and mono\n"
	if got := StripBasicMarkdown(in); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
