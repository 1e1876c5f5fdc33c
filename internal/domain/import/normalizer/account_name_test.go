package normalizer

import (
	"testing"
)

func TestAccountNameFromFilename(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DCU_Checking_2025.csv", "DCU Checking"},
		{"dcu-savings-2024-statement.csv", "dcu savings statement"},
		{"Joint.Checking.csv", "Joint Checking"},
		{"uploads/account-12345.csv", "account 12345"},
		{"2025.csv", UnknownAccountName},
		{".csv", UnknownAccountName},
		{"", UnknownAccountName},
		{"   ", UnknownAccountName},
		{`C:\Users\me\Brokerage_2023.CSV`, "Brokerage"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := AccountNameFromFilename(tt.input)
			if got != tt.expected {
				t.Errorf("AccountNameFromFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanDescription(t *testing.T) {
	if got := CleanDescription("  COFFEE   SHOP \t #12 "); got != "COFFEE SHOP #12" {
		t.Errorf("CleanDescription = %q", got)
	}
}
