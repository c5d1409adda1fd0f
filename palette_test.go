package main

import (
	"reflect"
	"testing"
)

func TestChordPalette(t *testing.T) {
	tests := []struct {
		name     string
		chords   []string
		expected []string
	}{
		{"trims and dedupes", []string{" C", "G", "C ", "Am"}, []string{"C", "G", "Am"}},
		{"drops empty entries", []string{"", "  ", "D"}, []string{"D"}},
		{"full-width spelling is the same chord", []string{"C", "Ｃ", "Ｇ", "G"}, []string{"C", "Ｇ"}},
		{"case matters", []string{"am", "Am"}, []string{"am", "Am"}},
		{"nil", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChordPalette(tt.chords)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ChordPalette(%q) = %q, want %q", tt.chords, got, tt.expected)
			}
		})
	}
}

func TestSheetChords(t *testing.T) {
	sections := ParseChordSheet("[Intro]\nC  G  x2\n\n[Verse]\nN.C.   Am   C\nHello there\nAm7/G\nfriend\n")

	expected := []string{"C", "G", "Am", "Am7/G"}
	if got := SheetChords(sections); !reflect.DeepEqual(got, expected) {
		t.Errorf("SheetChords = %q, want %q", got, expected)
	}
}

func TestSheetChordsEmpty(t *testing.T) {
	got := SheetChords(nil)
	if got == nil || len(got) != 0 {
		t.Errorf("Expected empty palette, got %#v", got)
	}
}
