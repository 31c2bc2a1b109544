package language

import (
	"reflect"
	"testing"
)

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		// 2-letter codes pass through
		{"en", "en"},
		{"EN", "en"},
		{"es", "es"},
		// 3-letter codes convert
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"dut", "nl"},
		// Word forms
		{"english", "en"},
		{"French", "fr"},
		{"GERMAN", "de"},
		// Regional variants match the base code
		{"en-US", "en"},
		{"pt-BR", "pt"},
		// Unknown 2-letter passes through
		{"xy", "xy"},
		// Unknown 3-letter returns empty
		{"xyz", ""},
		// Empty
		{"", ""},
		{" ", ""},
	}
	for _, tt := range tests {
		result := ToISO2(tt.input)
		if result != tt.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"eng", "English"},
		{"japanese", "Japanese"},
		{"", "Unknown"},
		{"xx", "XX"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestNormalizeList(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{nil, nil},
		{[]string{"EN", "english", "eng"}, []string{"en"}},
		{[]string{"english", "spanish"}, []string{"en", "es"}},
		{[]string{" ", "", "fr"}, []string{"fr"}},
		{[]string{"en-US", "de"}, []string{"en", "de"}},
	}
	for _, tt := range tests {
		got := NormalizeList(tt.input)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("NormalizeList(%v) = %v, want %v", tt.input, got, tt.expected)
		}
	}
}
