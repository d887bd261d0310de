package link

import (
	"testing"

	"github.com/shaiso/Rotor/internal/domain"
)

func testItems() []domain.LinkItem {
	return []domain.LinkItem{
		{Scheme: "vless", StableKey: "vless:s1", CompatKey: "vless:c1", LegacyKey: "vless:alpha", RawURL: "vless://one"},
		{Scheme: "vless", StableKey: "vless:s2", CompatKey: "vless:c2", LegacyKey: "vless:beta", RawURL: "vless://two"},
		{Scheme: "trojan", StableKey: "trojan:s3", CompatKey: "trojan:c3", LegacyKey: "trojan:beta", RawURL: "trojan://three"},
	}
}

func TestMigrateSelection_StablePassesThrough(t *testing.T) {
	got := MigrateSelection([]string{"vless:s2", "vless:s1"}, testItems())
	want := []string{"vless:s2", "vless:s1"}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrateSelection_CompatRewrites(t *testing.T) {
	got := MigrateSelection([]string{"vless:c1", "trojan:c3"}, testItems())
	want := []string{"vless:s1", "trojan:s3"}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrateSelection_LegacyUniqueOnly(t *testing.T) {
	// "vless:alpha" уникален, мигрирует; "beta" встречается у двух
	// ссылок с разными схемами в legacy-ключах "vless:beta" и
	// "trojan:beta" — каждый сам по себе уникален.
	got := MigrateSelection([]string{"vless:alpha", "vless:beta"}, testItems())
	want := []string{"vless:s1", "vless:s2"}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrateSelection_AmbiguousLegacyDropped(t *testing.T) {
	items := []domain.LinkItem{
		{StableKey: "vless:s1", CompatKey: "vless:c1", LegacyKey: "vless:dup"},
		{StableKey: "vless:s2", CompatKey: "vless:c2", LegacyKey: "vless:dup"},
	}

	got := MigrateSelection([]string{"vless:dup", "vless:s1"}, items)
	// Неоднозначный legacy отброшен, точный stable остался.
	want := []string{"vless:s1"}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrateSelection_UnmatchedDroppedAndDeduped(t *testing.T) {
	got := MigrateSelection([]string{"vless:gone", "vless:c1", "vless:s1", ""}, testItems())
	// compat и stable указывают на одну ссылку — дубль схлопывается.
	want := []string{"vless:s1"}
	if !Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestMigrateSelection_Empty(t *testing.T) {
	if got := MigrateSelection(nil, testItems()); got != nil {
		t.Errorf("got %v, want nil", got)
	}
	if got := MigrateSelection([]string{" ", ""}, testItems()); got != nil {
		t.Errorf("got %v, want nil", got)
	}
}

func TestFilterBySelection(t *testing.T) {
	items := testItems()

	tests := []struct {
		name     string
		selected []string
		want     []string
	}{
		{
			name:     "empty selection means all",
			selected: nil,
			want:     []string{"vless://one", "vless://two", "trojan://three"},
		},
		{
			name:     "stable key match",
			selected: []string{"vless:s2"},
			want:     []string{"vless://two"},
		},
		{
			name:     "mixed key schemes match",
			selected: []string{"vless:c1", "trojan:beta"},
			want:     []string{"vless://one", "trojan://three"},
		},
		{
			name:     "no matches falls back to all",
			selected: []string{"vless:nonexistent"},
			want:     []string{"vless://one", "vless://two", "trojan://three"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBySelection(items, tt.selected)
			if !Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}
