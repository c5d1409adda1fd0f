package main

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NormalizeSong reconciles a loosely-typed song record into the canonical
// Song. Field aliases are tried in order and the first one holding a usable
// value wins:
//
//	body     body | sheet | lyrics
//	title    title | fallbackTitle
//	artist   artist | author
//	key      key | metadata.key
//	bpm      bpm | metadata.bpm
//	tuning   tuning | metadata.tuning
//	tags     tags | metadata.tags
//	notes    notes | summary
//
// Strings must be non-empty to count; non-zero numbers are accepted and
// formatted. Values of any other type are ignored and the field falls back
// to its default. The body is taken from the first alias holding a truthy
// value (a non-empty string, a non-zero number, true, an object or an
// array); when that value is not a string the body is empty and the later
// aliases are not consulted. When the record carries no usable sections the
// body is parsed with ParseChordSheet. A record without an id gets a fresh one.
//
// NormalizeSong never fails, and normalizing the JSON form of its own
// result returns an equal Song.
func NormalizeSong(record map[string]any, fallbackTitle string) Song {
	if fallbackTitle == "" {
		fallbackTitle = DefaultTitle
	}

	metadata, _ := record["metadata"].(map[string]any)

	body := bodyText(record)

	sections := coerceSections(record["sections"])
	if len(sections) == 0 {
		sections = ParseChordSheet(body)
	}

	id := firstString(record, "id")
	if id == "" {
		id = newSongID()
	}

	tags, ok := stringList(record["tags"])
	if !ok {
		tags, _ = stringList(metadata["tags"])
	}

	chords, _ := stringList(record["chords"])

	return Song{
		ID:         id,
		Title:      orDefault(firstString(record, "title"), fallbackTitle),
		Artist:     orDefault(firstString(record, "artist", "author"), DefaultArtist),
		Source:     orDefault(firstString(record, "source"), DefaultSource),
		Key:        orDefault(firstString(record, "key"), firstString(metadata, "key"), DefaultKey),
		BPM:        orDefault(firstString(record, "bpm"), firstString(metadata, "bpm"), DefaultBPM),
		Tuning:     orDefault(firstString(record, "tuning"), firstString(metadata, "tuning"), DefaultTuning),
		Tags:       uniqueStrings(tags),
		LastSynced: orDefault(firstString(record, "lastSynced"), DefaultLastSynced),
		Notes:      firstString(record, "notes", "summary"),
		Body:       body,
		Sections:   sections,
		Chords:     chords,
	}
}

// UnwrapSongPayload returns the record nested under "song" when a service
// response wraps it, or the payload itself.
func UnwrapSongPayload(payload map[string]any) map[string]any {
	if song, ok := payload["song"].(map[string]any); ok {
		return song
	}
	return payload
}

// NormalizeSongs normalizes every record of a decoded JSON array, the layout
// used for a persisted list of songs. Entries that are not objects are
// skipped.
func NormalizeSongs(records []any) []Song {
	songs := make([]Song, 0, len(records))
	for _, item := range records {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		title, _ := scalarString(record["title"])
		songs = append(songs, NormalizeSong(record, title))
	}
	return songs
}

func newSongID() string {
	return "song-" + uuid.NewString()
}

// firstString returns the first of keys holding a usable scalar value
func firstString(record map[string]any, keys ...string) string {
	if record == nil {
		return ""
	}
	for _, key := range keys {
		if value, ok := scalarString(record[key]); ok {
			return value
		}
	}
	return ""
}

// bodyText resolves the sheet text. Only the first truthy alias is
// considered and it must be a string.
func bodyText(record map[string]any) string {
	for _, key := range []string{"body", "sheet", "lyrics"} {
		value := record[key]
		if !isTruthy(value) {
			continue
		}
		body, _ := value.(string)
		return body
	}
	return ""
}

// isTruthy reports loose truthiness: empty strings, zero, false and null are
// falsy, objects and arrays are truthy even when empty
func isTruthy(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string, float64, float32, int, int64, json.Number:
		_, ok := scalarString(v)
		return ok
	}
	return true
}

// scalarString accepts non-empty strings and non-zero numbers
func scalarString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, v != ""
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), v != 0
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32), v != 0
	case int:
		return strconv.Itoa(v), v != 0
	case int64:
		return strconv.FormatInt(v, 10), v != 0
	case json.Number:
		f, err := v.Float64()
		return v.String(), err == nil && f != 0
	}
	return "", false
}

// stringList accepts any array shape and keeps its string items. The bool
// reports whether the value was an array at all, empty or not.
func stringList(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return append([]string{}, v...), true
	case []any:
		list := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				list = append(list, s)
			}
		}
		return list, true
	}
	return []string{}, false
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	unique := make([]string, 0, len(values))
	for _, value := range values {
		if seen[value] {
			continue
		}
		seen[value] = true
		unique = append(unique, value)
	}
	return unique
}

func orDefault(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}

// coerceSections reads pre-split sections from a record. Sections without
// a label are numbered by position, spacer lines are cleared, and lines or
// sections left with no content are dropped.
func coerceSections(value any) []Section {
	var raw []any

	switch v := value.(type) {
	case []Section:
		raw = make([]any, len(v))
		for i, section := range v {
			raw[i] = section
		}
	case []any:
		raw = v
	default:
		return nil
	}

	sections := make([]Section, 0, len(raw))
	for i, item := range raw {
		var label string
		var lines []Line

		switch s := item.(type) {
		case Section:
			label = s.Label
			lines = coerceLines(s.Lines)
		case map[string]any:
			label, _ = scalarString(s["label"])
			lines = coerceLines(s["lines"])
		default:
			continue
		}

		if len(lines) == 0 {
			continue
		}

		label = strings.TrimSpace(label)
		if label == "" {
			label = fmt.Sprintf("Section %d", i+1)
		}
		sections = append(sections, Section{Label: label, Lines: lines})
	}

	return sections
}

func coerceLines(value any) []Line {
	var lines []Line

	add := func(line Line) {
		if line.Spacer {
			lines = append(lines, SpacerLine())
			return
		}
		if line.IsEmpty() {
			return
		}
		lines = append(lines, line)
	}

	switch v := value.(type) {
	case []Line:
		for _, line := range v {
			add(line)
		}
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			chords, _ := m["chords"].(string)
			lyrics, _ := m["lyrics"].(string)
			spacer, _ := m["spacer"].(bool)
			add(Line{Chords: chords, Lyrics: lyrics, Spacer: spacer})
		}
	}

	return lines
}
