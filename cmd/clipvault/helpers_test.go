package main

import "testing"

func TestParseTimecode(t *testing.T) {
	cases := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "95", want: 95},
		{in: "95.5", want: 95.5},
		{in: "1:35", want: 95},
		{in: "1:02:35", want: 3755},
		{in: "0:00:01.25", want: 1.25},
		{in: "", wantErr: true},
		{in: "1:2:3:4", wantErr: true},
		{in: "-5", wantErr: true},
		{in: "abc", wantErr: true},
	}
	for _, tc := range cases {
		got, err := parseTimecode(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseTimecode(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseTimecode(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseTimecode(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFormatSeconds(t *testing.T) {
	if got := formatSeconds(95); got != "1:35" {
		t.Fatalf("formatSeconds(95) = %q", got)
	}
	if got := formatSeconds(3755); got != "1:02:35" {
		t.Fatalf("formatSeconds(3755) = %q", got)
	}
	if got := formatSeconds(-3); got != "0:00" {
		t.Fatalf("formatSeconds(-3) = %q", got)
	}
}

func TestFormatBytes(t *testing.T) {
	if got := formatBytes(512); got != "512 B" {
		t.Fatalf("formatBytes(512) = %q", got)
	}
	if got := formatBytes(2 * 1024 * 1024); got != "2.0 MiB" {
		t.Fatalf("formatBytes(2MiB) = %q", got)
	}
}

func TestTruncateText(t *testing.T) {
	if got := truncateText("abcdef", 5); got != "ab..." {
		t.Fatalf("truncateText = %q", got)
	}
	if got := truncateText("abc", 5); got != "abc" {
		t.Fatalf("truncateText short = %q", got)
	}
}
