package main

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// vocalTrackName is the Rock Band lead vocal track; plain text events on it
// are lyric syllables rather than annotations
const vocalTrackName = "PART VOCALS"

type sheetEventKind int

const (
	sheetEventSection sheetEventKind = iota
	sheetEventChord
	sheetEventLyric
)

// sheetEvent is a section marker, chord or lyric syllable at an absolute tick
type sheetEvent struct {
	Time uint32
	Kind sheetEventKind
	Text string
}

// MidiFile wraps an SMF so it can be read as a SongSource
type MidiFile struct {
	*smf.SMF
}

func (m *MidiFile) GetMetadata() map[string]string {
	result := make(map[string]string)

	if len(m.Tracks) > 0 {
		trackName := getTrackName(m.Tracks[0])
		if trackName != "" {
			result["name"] = trackName
		}
	}

	if bpm, ok := firstTempo(m.SMF); ok {
		result["bpm"] = strconv.FormatFloat(math.Round(bpm*100)/100, 'f', -1, 64)
	}

	return result
}

// GetSheet rebuilds a chord sheet from the file's meta events. Every bar
// holding chords or lyrics becomes one row pair; empty bars between them
// become blank rows. Bars come from the BEAT track when there is one,
// otherwise a 4/4 grid at the file's resolution is assumed.
func (m *MidiFile) GetSheet() (string, error) {
	ticksPerQuarter, ok := m.TimeFormat.(smf.MetricTicks)
	if !ok {
		return "", fmt.Errorf("unsupported time format, expected MetricTicks")
	}

	var grid measureGrid = fixedGrid{ticksPerMeasure: 4 * uint32(ticksPerQuarter)}
	if timeline, err := ExtractBeatTimeline(m.SMF); err == nil {
		log.Debugf("using BEAT track %s", timeline)
		grid = timeline
	}

	events := collectSheetEvents(m.SMF)
	if len(events) == 0 {
		return "", fmt.Errorf("no lyric, chord or section events found")
	}

	log.Infof("read %d sheet events from MIDI", len(events))
	return writeMeasureSheet(events, grid), nil
}

// collectSheetEvents gathers section, chord and lyric events of all tracks
// in time order. Sections sort ahead of anything sharing their tick.
func collectSheetEvents(smfData *smf.SMF) []sheetEvent {
	var events []sheetEvent

	for _, track := range smfData.Tracks {
		vocal := getTrackName(track) == vocalTrackName

		var currentTime uint32
		for _, event := range track {
			currentTime += event.Delta
			msg := event.Message

			var text string
			switch {
			case msg.GetMetaMarker(&text):
				label := strings.TrimSpace(text)
				if name, ok := sectionFromEventText(text); ok {
					label = name
				}
				if label != "" {
					events = append(events, sheetEvent{Time: currentTime, Kind: sheetEventSection, Text: label})
				}
			case msg.GetMetaLyric(&text):
				events = append(events, sheetEvent{Time: currentTime, Kind: sheetEventLyric, Text: text})
			case msg.GetMetaText(&text):
				if name, ok := sectionFromEventText(text); ok {
					events = append(events, sheetEvent{Time: currentTime, Kind: sheetEventSection, Text: name})
					continue
				}
				// skip bracketed animation markers
				if len(text) == 0 || text[0] == '[' {
					continue
				}
				if vocal {
					events = append(events, sheetEvent{Time: currentTime, Kind: sheetEventLyric, Text: text})
				} else if chord := strings.TrimSpace(text); IsChordToken(chord) {
					events = append(events, sheetEvent{Time: currentTime, Kind: sheetEventChord, Text: chord})
				}
			}
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Time != events[j].Time {
			return events[i].Time < events[j].Time
		}
		return events[i].Kind == sheetEventSection && events[j].Kind != sheetEventSection
	})

	return events
}

// writeMeasureSheet groups events by bar and writes the sheet text
func writeMeasureSheet(events []sheetEvent, grid measureGrid) string {
	w := &sheetWriter{}

	var chords []placedChord
	var syllables []string
	current := -1 // bar being collected
	last := -1    // last bar written in this section

	// empty bars since the last written bar become blank rows
	gapTo := func(bar int) {
		if last < 0 {
			return
		}
		for gap := last + 1; gap < bar; gap++ {
			w.blank()
		}
	}

	flush := func() {
		if len(chords) == 0 && len(syllables) == 0 {
			return
		}
		gapTo(current)
		w.line(chords, joinLyricSyllables(syllables))
		last = current
		chords = nil
		syllables = nil
	}

	for _, event := range events {
		if event.Kind == sheetEventSection {
			flush()
			bar, _ := grid.Locate(event.Time)
			gapTo(bar)
			w.section(event.Text)
			last = -1
			current = -1
			continue
		}

		measure, pos := grid.Locate(event.Time)
		if measure != current {
			flush()
			current = measure
		}

		if event.Kind == sheetEventChord {
			chords = append(chords, placedChord{Name: event.Text, Pos: pos})
		} else {
			syllables = append(syllables, event.Text)
		}
	}
	flush()

	return w.String()
}

// getTrackName returns the name of a track, or "" when it has none
func getTrackName(track smf.Track) string {
	for _, event := range track {
		msg := event.Message

		var trackName string
		if msg.GetMetaTrackName(&trackName) {
			return trackName
		}
	}
	return ""
}

// firstTempo returns the earliest tempo event of the file
func firstTempo(smfData *smf.SMF) (float64, bool) {
	var found bool
	var bestTime uint32
	var bestBPM float64

	for _, track := range smfData.Tracks {
		var currentTime uint32
		for _, event := range track {
			currentTime += event.Delta

			var bpm float64
			if event.Message.GetMetaTempo(&bpm) {
				if !found || currentTime < bestTime {
					found = true
					bestTime = currentTime
					bestBPM = bpm
				}
				break
			}
		}
	}

	return bestBPM, found
}
