package render

import "testing"

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		num  int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1023, "1023 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1048576, "1.00 MB"},
		{1073741824, "1.00 GB"},
		{5 * 1024 * 1024 * 1024, "5.00 GB"},
		{1099511627776, "1.00 TB"},
		{-42, "-42"},
	}

	for _, tt := range tests {
		if got := FormatBytes(tt.num); got != tt.want {
			t.Errorf("FormatBytes(%d) = %q, want %q", tt.num, got, tt.want)
		}
	}
}

func TestFormatBytesOpt(t *testing.T) {
	if got := FormatBytesOpt(nil); got != "-" {
		t.Errorf("FormatBytesOpt(nil) = %q, want -", got)
	}

	v := int64(2048)
	if got := FormatBytesOpt(&v); got != "2.00 KB" {
		t.Errorf("FormatBytesOpt(2048) = %q, want 2.00 KB", got)
	}
}
