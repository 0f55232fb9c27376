package utils

import (
	"strings"
	"testing"
)

func TestGenerateInitialPassword(t *testing.T) {
	tests := []struct {
		name     string
		fullName string
		phone    string
		expected string
	}{
		{
			name:     "typical name and phone",
			fullName: "Rajesh Kumar",
			phone:    "+91 98765 43210",
			expected: "TESRA10",
		},
		{
			name:     "lowercase name",
			fullName: "aarav shah",
			phone:    "9998887776",
			expected: "TESAA76",
		},
		{
			name:     "single letter name padded",
			fullName: "A",
			phone:    "12345",
			expected: "TESAX45",
		},
		{
			name:     "single digit phone",
			fullName: "Priya Nair",
			phone:    "x7",
			expected: "TESPR7",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := GenerateInitialPassword(tc.fullName, tc.phone)
			if got != tc.expected {
				t.Fatalf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestGenerateInitialPasswordDeterministic(t *testing.T) {
	first := GenerateInitialPassword("Rajesh Kumar", "+91 98765 43210")
	for i := 0; i < 5; i++ {
		if got := GenerateInitialPassword("Rajesh Kumar", "+91 98765 43210"); got != first {
			t.Fatalf("expected deterministic output %q, got %q", first, got)
		}
	}
}

func TestGenerateInitialPasswordNoDigits(t *testing.T) {
	got := GenerateInitialPassword("Rajesh Kumar", "no digits here")
	if !strings.HasPrefix(got, "TESRA") {
		t.Fatalf("expected TESRA prefix, got %q", got)
	}
	if len(got) != 6 {
		t.Fatalf("expected prefix plus two letters plus one random digit, got %q", got)
	}
	last := got[len(got)-1]
	if last < '0' || last > '9' {
		t.Fatalf("expected trailing digit, got %q", got)
	}
}

func TestGenerateInitialPasswordMaxLength(t *testing.T) {
	got := GenerateInitialPassword("Rajesh Kumar", "1234567890")
	if len(got) > 7 {
		t.Fatalf("expected at most 7 characters, got %q (%d)", got, len(got))
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("secret123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "secret123" {
		t.Fatal("hash should not equal the plaintext")
	}
	if err := CheckPassword("secret123", hash); err != nil {
		t.Fatalf("expected password to verify: %v", err)
	}
	if err := CheckPassword("wrong", hash); err == nil {
		t.Fatal("expected verification failure for wrong password")
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range []string{"student", "teacher", "admin"} {
		if !IsValidRole(role) {
			t.Fatalf("expected %q to be valid", role)
		}
	}
	for _, role := range []string{"", "root", "Student"} {
		if IsValidRole(role) {
			t.Fatalf("expected %q to be invalid", role)
		}
	}
}

func TestIsValidAdmissionStatus(t *testing.T) {
	for _, status := range []string{"pending", "confirmed", "rejected"} {
		if !IsValidAdmissionStatus(status) {
			t.Fatalf("expected %q to be valid", status)
		}
	}
	if IsValidAdmissionStatus("approved") {
		t.Fatal("expected approved to be invalid")
	}
}
