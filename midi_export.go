package main

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"gitlab.com/gomidi/midi/v2/smf"
)

const (
	exportTicksPerQuarter = 480
	exportBeatsPerMeasure = 4
	exportDefaultBPM      = 120.0
	sheetTrackName        = "CHORD SHEET"
)

// MidiEvent represents a MIDI event with absolute timing
type MidiEvent struct {
	Time    uint32
	Message smf.Message
}

// TrackInfo contains information needed to create a MIDI track
type TrackInfo struct {
	Name   string      // Track name for meta event
	Events []MidiEvent // All MIDI events for this track
}

// SheetMidiExporter writes a chord sheet as a type 1 MIDI file made only of
// meta events: a marker per section, a text event per chord and a lyric
// event per lyric row. Each content line fills one 4/4 bar and each spacer
// one empty bar, so DAWs and karaoke players show the sheet in time.
type SheetMidiExporter struct {
	smf    *smf.SMF
	tracks []TrackInfo
}

// NewSheetMidiExporter creates a new MIDI exporter
func NewSheetMidiExporter() *SheetMidiExporter {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(exportTicksPerQuarter)
	return &SheetMidiExporter{smf: s}
}

// ExportSongMidi writes song as a chord-sheet MIDI file
func ExportSongMidi(song Song, writer io.Writer) error {
	e := NewSheetMidiExporter()
	e.SetupTimingTrack(song)
	if err := e.AddSheetTrack(song.Sections); err != nil {
		return err
	}
	return e.WriteTo(writer)
}

// SetupTimingTrack adds the conductor track: song title, tempo and a 4/4
// time signature. Songs without a numeric BPM play at 120.
func (e *SheetMidiExporter) SetupTimingTrack(song Song) {
	bpm := parseBPM(song.BPM)

	tempoTrack := smf.Track{}
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(song.Title))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTempo(bpm))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTimeSig(exportBeatsPerMeasure, 4, 24, 8))})
	tempoTrack = append(tempoTrack, smf.Event{Delta: 0, Message: smf.EOT})

	e.smf.Add(tempoTrack)
}

// AddSheetTrack lays the sections out bar by bar on a single track
func (e *SheetMidiExporter) AddSheetTrack(sections []Section) error {
	if len(sections) == 0 {
		return fmt.Errorf("no sections to export")
	}

	measureTicks := uint32(exportBeatsPerMeasure * exportTicksPerQuarter)

	var events []MidiEvent
	var now uint32

	for _, section := range sections {
		events = append(events, MidiEvent{Time: now, Message: smf.Message(smf.MetaMarker(section.Label))})

		for _, line := range section.Lines {
			if !line.Spacer {
				events = append(events, lineEvents(line, now, measureTicks)...)
			}
			now += measureTicks
		}
	}

	log.Infof("generated %d MIDI events from %d sections", len(events), len(sections))
	e.tracks = append(e.tracks, TrackInfo{Name: sheetTrackName, Events: events})
	return nil
}

// lineEvents places each chord of the annotation at the point of the bar
// matching its column over the lyric, and the lyric on the downbeat
func lineEvents(line Line, start, measureTicks uint32) []MidiEvent {
	var events []MidiEvent

	width := utf8.RuneCountInString(line.Chords)
	if n := utf8.RuneCountInString(line.Lyrics); n > width {
		width = n
	}

	tokens := TokenizeChordLine(line.Chords)
	columns := tokenColumns(tokens)
	chordIndex := 0
	for _, token := range tokens {
		if token.Whitespace {
			continue
		}
		offset := uint32(uint64(columns[chordIndex]) * uint64(measureTicks) / uint64(width))
		events = append(events, MidiEvent{Time: start + offset, Message: smf.Message(smf.MetaText(token.Text))})
		chordIndex++
	}

	if line.Lyrics != "" {
		events = append(events, MidiEvent{Time: start, Message: smf.Message(smf.MetaLyric(strings.TrimSpace(line.Lyrics)))})
	}

	return events
}

// WriteTo finalizes the MIDI file and writes it to the provided writer
func (e *SheetMidiExporter) WriteTo(writer io.Writer) error {
	if len(e.tracks) == 0 {
		return fmt.Errorf("no tracks to export")
	}

	for _, trackInfo := range e.tracks {
		e.smf.Add(createMidiTrack(trackInfo))
	}

	if _, err := e.smf.WriteTo(writer); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}

	return nil
}

// createMidiTrack builds a complete MIDI track from TrackInfo. Events that
// share a tick keep the order they were added in.
func createMidiTrack(trackInfo TrackInfo) smf.Track {
	track := smf.Track{}
	track = append(track, smf.Event{Delta: 0, Message: smf.Message(smf.MetaTrackSequenceName(trackInfo.Name))})

	events := make([]MidiEvent, len(trackInfo.Events))
	copy(events, trackInfo.Events)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Time < events[j].Time
	})

	var lastTime uint32
	for _, event := range events {
		track = append(track, smf.Event{Delta: event.Time - lastTime, Message: event.Message})
		lastTime = event.Time
	}

	track = append(track, smf.Event{Delta: 0, Message: smf.EOT})
	return track
}

func parseBPM(value string) float64 {
	bpm, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || bpm <= 0 || math.IsNaN(bpm) || math.IsInf(bpm, 0) {
		if value != DefaultBPM {
			log.Warningf("unusable BPM %q, exporting at %g", value, exportDefaultBPM)
		}
		return exportDefaultBPM
	}
	return bpm
}
