package main

import (
	"strings"
)

// joinLyricSyllables merges game-chart lyric syllables into a readable
// lyric row.
//
// Vocal charts (Rock Band MIDI, Clone Hero .chart) split words into timed
// syllables and decorate them with markers:
//
//   - "Hel- lo" is one word split in two: "Hello"
//   - "+" is a pitch slide on the previous syllable and carries no text
//   - trailing "#", "^" mark unpitched syllables, "%" a range divider
//   - "=" is a literal hyphen: "Ex= Girl- friend" → "Ex-Girlfriend"
func joinLyricSyllables(syllables []string) string {
	var words []string
	var word strings.Builder

	for _, syllable := range syllables {
		if syllable == "" || syllable == "+" {
			continue
		}

		cleaned := strings.TrimSpace(syllable)
		cleaned = strings.TrimSpace(strings.TrimRight(cleaned, "#^%+"))

		continues := false
		switch {
		case strings.HasSuffix(cleaned, "="):
			cleaned = strings.TrimSuffix(cleaned, "=") + "-"
			continues = true
		case strings.HasSuffix(cleaned, "-"):
			cleaned = strings.TrimSpace(strings.TrimSuffix(cleaned, "-"))
			continues = true
		}
		cleaned = strings.ReplaceAll(cleaned, "=", "-")

		word.WriteString(cleaned)
		if continues {
			continue
		}

		if word.Len() > 0 {
			words = append(words, word.String())
		}
		word.Reset()
	}

	if word.Len() > 0 {
		words = append(words, word.String())
	}

	return strings.Join(words, " ")
}

// sectionFromEventText extracts a section name from a chart or MIDI event
// text such as "section Verse 1", "[section verse_1]" or "[prc_chorus]".
func sectionFromEventText(text string) (string, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(strings.TrimPrefix(text, "["), "]")

	var name string
	switch {
	case strings.HasPrefix(text, "section "):
		name = strings.TrimPrefix(text, "section ")
	case strings.HasPrefix(text, "prc_"):
		name = strings.TrimPrefix(text, "prc_")
	default:
		return "", false
	}

	name = strings.TrimSpace(strings.ReplaceAll(name, "_", " "))
	return name, name != ""
}
