package textutil

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"  a/b\\c:d*e  ": "a-b-c-d-e",
		"what?<>|\"":     "what",
		"":               "",
	}
	for in, want := range tests {
		if got := SanitizeFileName(in); got != want {
			t.Errorf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"設置状況_交通保安施設", "設置状況_交通保安施設"},
		{"取付道路 No.3", "取付道路_No.3"},
		{"  型枠　 組立  ", "型枠_組立"},
		{"..hidden", "hidden"},
		{"a/b", "a-b"},
		{"tab\there", "tab_here"},
		{"???", "unclassified"},
		{"", "unclassified"},
	}
	for _, tt := range tests {
		if got := SanitizeFolderName(tt.in, "unclassified"); got != tt.want {
			t.Errorf("SanitizeFolderName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFolderNameTruncatesOnRuneBoundary(t *testing.T) {
	long := strings.Repeat("掘", MaxFolderNameRunes+10)
	got := SanitizeFolderName(long, "x")
	if utf8.RuneCountInString(got) != MaxFolderNameRunes || !utf8.ValidString(got) {
		t.Fatalf("got %d runes", utf8.RuneCountInString(got))
	}
}
