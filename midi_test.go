package main

import (
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const testTicksPerQuarter = 480

// newTestSMF builds a format 1 file at 480 ticks per quarter from tracks
// given as absolute-time events
func newTestSMF(tracks ...TrackInfo) *smf.SMF {
	s := smf.NewSMF1()
	s.TimeFormat = smf.MetricTicks(testTicksPerQuarter)
	for _, track := range tracks {
		s.Add(createMidiTrack(track))
	}
	return s
}

// beatTrack marks bars of beatsPerBar quarter notes
func beatTrack(bars, beatsPerBar int) TrackInfo {
	var events []MidiEvent
	for bar := 0; bar < bars; bar++ {
		for beat := 0; beat < beatsPerBar; beat++ {
			key := beatUpbeatKey
			if beat == 0 {
				key = beatDownbeatKey
			}
			start := uint32((bar*beatsPerBar + beat) * testTicksPerQuarter)
			events = append(events,
				MidiEvent{Time: start, Message: smf.Message(midi.NoteOn(0, key, 100))},
				MidiEvent{Time: start + 120, Message: smf.Message(midi.NoteOff(0, key))},
			)
		}
	}
	return TrackInfo{Name: "BEAT", Events: events}
}

func textEvent(time uint32, text string) MidiEvent {
	return MidiEvent{Time: time, Message: smf.Message(smf.MetaText(text))}
}

func TestExtractBeatTimeline(t *testing.T) {
	timeline, err := ExtractBeatTimeline(newTestSMF(beatTrack(3, 3)))
	if err != nil {
		t.Fatalf("ExtractBeatTimeline failed: %v", err)
	}

	if len(timeline.Measures) != 3 {
		t.Fatalf("Expected 3 measures, got %d", len(timeline.Measures))
	}
	if len(timeline.BeatNotes) != 9 {
		t.Errorf("Expected 9 beat notes, got %d", len(timeline.BeatNotes))
	}

	expected := []Measure{
		{StartTime: 0, EndTime: 1440, BeatsPerMeasure: 3},
		{StartTime: 1440, EndTime: 2880, BeatsPerMeasure: 3},
		{StartTime: 2880, EndTime: 4320, BeatsPerMeasure: 3},
	}
	for i, want := range expected {
		if timeline.Measures[i] != want {
			t.Errorf("Measure %d: got %+v, want %+v", i, timeline.Measures[i], want)
		}
	}
}

func TestTimelineLocate(t *testing.T) {
	timeline, err := ExtractBeatTimeline(newTestSMF(beatTrack(2, 4)))
	if err != nil {
		t.Fatalf("ExtractBeatTimeline failed: %v", err)
	}

	tests := []struct {
		time    uint32
		measure int
		pos     float64
	}{
		{0, 0, 0},
		{960, 0, 0.5},
		{1920, 1, 0},
		{3360, 1, 0.75},
		{3840, 2, 0},
		{5760, 3, 0},
	}

	for _, tt := range tests {
		measure, pos := timeline.Locate(tt.time)
		if measure != tt.measure || pos != tt.pos {
			t.Errorf("Locate(%d) = (%d, %v), want (%d, %v)", tt.time, measure, pos, tt.measure, tt.pos)
		}
	}
}

func TestExtractBeatTimelineMissing(t *testing.T) {
	s := newTestSMF(TrackInfo{Name: "PART GUITAR"})
	if _, err := ExtractBeatTimeline(s); err == nil {
		t.Error("Expected error when there is no BEAT track")
	}
}

func TestFixedGridLocate(t *testing.T) {
	grid := fixedGrid{ticksPerMeasure: 1920}

	if measure, pos := grid.Locate(2400); measure != 1 || pos != 0.25 {
		t.Errorf("Locate(2400) = (%d, %v), want (1, 0.25)", measure, pos)
	}
	if measure, pos := (fixedGrid{}).Locate(100); measure != 0 || pos != 0 {
		t.Errorf("Zero grid should locate everything at the start, got (%d, %v)", measure, pos)
	}
}

func TestMidiSheetWithBeatTrack(t *testing.T) {
	s := newTestSMF(
		TrackInfo{Name: "Beat Song", Events: []MidiEvent{
			{Time: 0, Message: smf.Message(smf.MetaTempo(100))},
		}},
		beatTrack(3, 3),
		TrackInfo{Name: "EVENTS", Events: []MidiEvent{
			textEvent(0, "[section verse]"),
		}},
		TrackInfo{Name: "CHORDS", Events: []MidiEvent{
			textEvent(0, "Am"),
			textEvent(720, "E"),
			textEvent(1000, "not a chord"),
			textEvent(1440, "G"),
		}},
		TrackInfo{Name: vocalTrackName, Events: []MidiEvent{
			textEvent(0, "[idle]"),
			textEvent(0, "Hel-"),
			textEvent(240, "lo"),
			textEvent(480, "world"),
			textEvent(1440, "again"),
		}},
	)

	midiFile := &MidiFile{SMF: s}

	sheet, err := midiFile.GetSheet()
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}

	expected := "[verse]\nAm      E\nHello world\nG\nagain"
	if sheet != expected {
		t.Errorf("Unexpected sheet:\ngot:\n%s\nwant:\n%s", sheet, expected)
	}

	metadata := midiFile.GetMetadata()
	if metadata["name"] != "Beat Song" || metadata["bpm"] != "100" {
		t.Errorf("Unexpected metadata: %v", metadata)
	}
}

func TestMidiSheetEmptyBarsBecomeSpacers(t *testing.T) {
	s := newTestSMF(TrackInfo{Name: "LYRICS", Events: []MidiEvent{
		{Time: 0, Message: smf.Message(smf.MetaLyric("one"))},
		{Time: 3 * 1920, Message: smf.Message(smf.MetaLyric("two"))},
	}})

	sheet, err := (&MidiFile{SMF: s}).GetSheet()
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}

	sections := ParseChordSheet(sheet)
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	lines := sections[0].Lines
	if len(lines) != 4 || !lines[1].Spacer || !lines[2].Spacer || lines[3].Lyrics != "two" {
		t.Errorf("Expected one, two spacers, two; got %+v", lines)
	}
}

func TestMidiSheetChordsOnlyBeforeSection(t *testing.T) {
	s := newTestSMF(TrackInfo{Name: "SHEET", Events: []MidiEvent{
		{Time: 0, Message: smf.Message(smf.MetaMarker("Intro"))},
		textEvent(0, "C"),
		{Time: 1920, Message: smf.Message(smf.MetaMarker("Verse"))},
		{Time: 1920, Message: smf.Message(smf.MetaLyric("Hello"))},
	}})

	sheet, err := (&MidiFile{SMF: s}).GetSheet()
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}

	sections := ParseChordSheet(sheet)
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections, got %d\n%s", len(sections), sheet)
	}
	if sections[0].Label != "Intro" || sections[0].Lines[0] != ChordLine("C") {
		t.Errorf("Expected the intro chord row to survive the next header, got %+v", sections[0])
	}
	if sections[1].Lines[0] != LyricLine("Hello") {
		t.Errorf("Unexpected verse: %+v", sections[1])
	}
}

func TestMidiSheetWithoutEvents(t *testing.T) {
	s := newTestSMF(beatTrack(1, 4))
	if _, err := (&MidiFile{SMF: s}).GetSheet(); err == nil {
		t.Error("Expected error for a file without sheet events")
	}
}
