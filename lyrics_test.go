package main

import "testing"

func TestJoinLyricSyllables(t *testing.T) {
	tests := []struct {
		syllables []string
		expected  string
	}{
		{[]string{"Hel-", "lo", "world"}, "Hello world"},
		{[]string{"Ex=", "Girl-", "friend"}, "Ex-Girlfriend"},
		{[]string{"Ooh", "+", "yeah#"}, "Ooh yeah"},
		{[]string{"shout^", "now%"}, "shout now"},
		{[]string{"la+", "la"}, "la la"},
		{[]string{"", "  spaced  "}, "spaced"},
		{[]string{"well-", "-"}, "well"},
		{[]string{"mid=word"}, "mid-word"},
		{nil, ""},
	}

	for _, tt := range tests {
		if got := joinLyricSyllables(tt.syllables); got != tt.expected {
			t.Errorf("joinLyricSyllables(%q) = %q, want %q", tt.syllables, got, tt.expected)
		}
	}
}

func TestSectionFromEventText(t *testing.T) {
	tests := []struct {
		text     string
		expected string
		ok       bool
	}{
		{"section Verse 1", "Verse 1", true},
		{"[section verse_1]", "verse 1", true},
		{"[prc_chorus_2]", "chorus 2", true},
		{"prc_intro", "intro", true},
		{"section ", "", false},
		{"[idle]", "", false},
		{"lyric hello", "", false},
		{"phrase_start", "", false},
	}

	for _, tt := range tests {
		got, ok := sectionFromEventText(tt.text)
		if got != tt.expected || ok != tt.ok {
			t.Errorf("sectionFromEventText(%q) = (%q, %v), want (%q, %v)", tt.text, got, ok, tt.expected, tt.ok)
		}
	}
}
