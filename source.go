package main

import (
	"math"
	"strings"
	"unicode/utf8"
)

// SongSource is any song file that can be turned into a chord sheet
type SongSource interface {
	GetMetadata() map[string]string
	GetSheet() (string, error)
}

// SourceRecord reads a song source into a loosely-typed record suitable for
// NormalizeSong. Metadata keys follow the song.ini naming used by chart and
// SNG packages.
func SourceRecord(src SongSource, sourceLabel string) (map[string]any, error) {
	sheet, err := src.GetSheet()
	if err != nil {
		return nil, err
	}

	metadata := src.GetMetadata()

	record := map[string]any{
		"body":   sheet,
		"source": sourceLabel,
	}

	setIfPresent(record, "title", metadata["name"])
	setIfPresent(record, "artist", metadata["artist"])
	setIfPresent(record, "bpm", metadata["bpm"])
	setIfPresent(record, "key", metadata["key"])

	var notes []string
	for _, key := range []string{"album", "year", "charter"} {
		if value := strings.TrimSpace(metadata[key]); value != "" {
			notes = append(notes, key+": "+value)
		}
	}
	setIfPresent(record, "notes", strings.Join(notes, ", "))

	if genre := strings.TrimSpace(metadata["genre"]); genre != "" {
		record["tags"] = []string{genre}
	}

	return record, nil
}

func setIfPresent(record map[string]any, key, value string) {
	if value = strings.TrimSpace(value); value != "" {
		record[key] = value
	}
}

// placedChord is a chord symbol with its position inside a bar as a
// fraction of the bar length
type placedChord struct {
	Name string
	Pos  float64
}

// minChordRowWidth keeps chords from bunching up over short lyrics
const minChordRowWidth = 16

// sheetWriter assembles chord-sheet text from timed song events
type sheetWriter struct {
	rows       []string
	chordsOnly bool // last row is a chord row with no lyric under it
}

// section starts a new header. A chord row directly above a header would
// be dropped by ParseChordSheet, so it is closed with a blank row first.
func (w *sheetWriter) section(label string) {
	if w.chordsOnly {
		w.blank()
	}
	w.rows = append(w.rows, "["+label+"]")
	w.chordsOnly = false
}

func (w *sheetWriter) blank() {
	w.rows = append(w.rows, "")
	w.chordsOnly = false
}

// line writes a chord row positioned over the lyric row. Chords keep at
// least one space between them.
func (w *sheetWriter) line(chords []placedChord, lyric string) {
	if len(chords) > 0 {
		width := utf8.RuneCountInString(lyric)
		if width < minChordRowWidth {
			width = minChordRowWidth
		}

		var row strings.Builder
		column := 0
		for _, chord := range chords {
			target := int(math.Round(chord.Pos * float64(width)))
			if column > 0 && target <= column {
				target = column + 1
			}
			if target > column {
				row.WriteString(strings.Repeat(" ", target-column))
				column = target
			}
			row.WriteString(chord.Name)
			column += utf8.RuneCountInString(chord.Name)
		}
		w.rows = append(w.rows, row.String())
	}

	if lyric != "" {
		w.rows = append(w.rows, lyric)
	}
	w.chordsOnly = len(chords) > 0 && lyric == ""
}

func (w *sheetWriter) String() string {
	return strings.Join(w.rows, "\n")
}
