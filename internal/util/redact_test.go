package util

import "testing"

func TestHideAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Long key", "sk-1234567890abcdef", "sk-1...cdef"},
		{"Medium key", "abcdef", "ab...ef"},
		{"Short key", "abcd", "a...d"},
		{"Tiny key", "ab", "ab"},
		{"Empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HideAPIKey(tt.input)
			if got != tt.expected {
				t.Errorf("HideAPIKey(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}
