package utils

import "testing"

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		total    int64
		expPages int
	}{
		{name: "empty set", page: 1, total: 0, expPages: 0},
		{name: "single partial page", page: 1, total: 10, expPages: 1},
		{name: "exact page boundary", page: 1, total: 25, expPages: 1},
		{name: "one over boundary", page: 1, total: 26, expPages: 2},
		{name: "many pages", page: 3, total: 251, expPages: 11},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			p := NewPagination(tc.page, tc.total)
			if p.Pages != tc.expPages {
				t.Fatalf("expected %d pages for total %d, got %d", tc.expPages, tc.total, p.Pages)
			}
			if p.PerPage != AdminPageSize {
				t.Fatalf("expected page size %d, got %d", AdminPageSize, p.PerPage)
			}
			if p.Total != tc.total {
				t.Fatalf("expected total %d, got %d", tc.total, p.Total)
			}
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	if got := NewPagination(1, 100).Offset(); got != 0 {
		t.Fatalf("expected offset 0 for page 1, got %d", got)
	}
	if got := NewPagination(3, 100).Offset(); got != 50 {
		t.Fatalf("expected offset 50 for page 3, got %d", got)
	}
}

func TestParsePage(t *testing.T) {
	tests := []struct {
		raw      string
		expected int
	}{
		{"1", 1},
		{"7", 7},
		{"0", 1},
		{"-3", 1},
		{"", 1},
		{"abc", 1},
	}

	for _, tc := range tests {
		if got := ParsePage(tc.raw); got != tc.expected {
			t.Fatalf("ParsePage(%q): expected %d, got %d", tc.raw, tc.expected, got)
		}
	}
}
