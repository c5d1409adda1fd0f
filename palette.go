package main

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ChordPalette returns the distinct chords of a palette in first-seen order.
// Chords are trimmed and empty entries dropped. Two chords that only differ
// in Unicode compatibility form (full-width letters, for example) count as
// the same chord; the first spelling is kept.
func ChordPalette(chords []string) []string {
	seen := make(map[string]bool, len(chords))
	palette := make([]string, 0, len(chords))

	for _, chord := range chords {
		chord = strings.TrimSpace(chord)
		if chord == "" {
			continue
		}
		key := norm.NFKC.String(chord)
		if seen[key] {
			continue
		}
		seen[key] = true
		palette = append(palette, chord)
	}

	return palette
}

// SheetChords collects the chord symbols used in the chord annotations of a
// sheet, deduplicated in order of appearance. Repeat and N.C. markers are
// not chords and are left out.
func SheetChords(sections []Section) []string {
	var chords []string

	for _, section := range sections {
		for _, line := range section.Lines {
			for _, token := range strings.Fields(line.Chords) {
				if isRepeatMarker(token) || strings.EqualFold(token, noChordMarker) {
					continue
				}
				if IsChordToken(token) {
					chords = append(chords, token)
				}
			}
		}
	}

	return ChordPalette(chords)
}
