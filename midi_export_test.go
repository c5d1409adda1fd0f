package main

import (
	"bytes"
	"strings"
	"testing"

	"gitlab.com/gomidi/midi/v2/smf"
)

func exportTestSong() Song {
	return Song{
		Title: "Test Export",
		BPM:   "96",
		Sections: []Section{
			{Label: "Verse", Lines: []Line{
				PairedLine("C   G", "Hello there"),
				SpacerLine(),
				PairedLine("Am", "friend"),
			}},
			{Label: "Chorus", Lines: []Line{
				LyricLine("La la la"),
				PairedLine("F G", "Sing"),
			}},
		},
	}
}

func exportAndRead(t *testing.T, song Song) *MidiFile {
	t.Helper()

	var buf bytes.Buffer
	if err := ExportSongMidi(song, &buf); err != nil {
		t.Fatalf("ExportSongMidi failed: %v", err)
	}

	smfFile, err := smf.ReadFrom(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("Failed to read exported MIDI: %v", err)
	}
	return &MidiFile{SMF: smfFile}
}

func TestExportSongMidiTracks(t *testing.T) {
	midiFile := exportAndRead(t, exportTestSong())

	if len(midiFile.Tracks) != 2 {
		t.Fatalf("Expected 2 tracks, got %d", len(midiFile.Tracks))
	}
	if name := getTrackName(midiFile.Tracks[1]); name != sheetTrackName {
		t.Errorf("Expected sheet track %q, got %q", sheetTrackName, name)
	}

	var markers, texts, lyrics []string
	for _, event := range midiFile.Tracks[1] {
		var text string
		switch {
		case event.Message.GetMetaMarker(&text):
			markers = append(markers, text)
		case event.Message.GetMetaLyric(&text):
			lyrics = append(lyrics, text)
		case event.Message.GetMetaText(&text):
			texts = append(texts, text)
		}
	}

	if strings.Join(markers, ",") != "Verse,Chorus" {
		t.Errorf("Unexpected markers: %v", markers)
	}
	if strings.Join(texts, ",") != "C,G,Am,F,G" {
		t.Errorf("Unexpected chord texts: %v", texts)
	}
	if strings.Join(lyrics, ",") != "Hello there,friend,La la la,Sing" {
		t.Errorf("Unexpected lyrics: %v", lyrics)
	}
}

func TestExportSongMidiMetadata(t *testing.T) {
	metadata := exportAndRead(t, exportTestSong()).GetMetadata()

	if metadata["name"] != "Test Export" {
		t.Errorf("Expected name 'Test Export', got %q", metadata["name"])
	}
	if metadata["bpm"] != "96" {
		t.Errorf("Expected bpm '96', got %q", metadata["bpm"])
	}
}

func TestExportSongMidiNonFiniteBPM(t *testing.T) {
	for _, bpm := range []string{"NaN", "Inf", "-Inf"} {
		song := exportTestSong()
		song.BPM = bpm

		if got := exportAndRead(t, song).GetMetadata()["bpm"]; got != "120" {
			t.Errorf("BPM %q: expected export at 120, got %q", bpm, got)
		}
	}
}

func TestExportSongMidiRoundTrip(t *testing.T) {
	song := exportTestSong()

	sheet, err := exportAndRead(t, song).GetSheet()
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}

	sections := ParseChordSheet(sheet)
	if len(sections) != len(song.Sections) {
		t.Fatalf("Expected %d sections, got %d\n%s", len(song.Sections), len(sections), sheet)
	}

	for i, want := range song.Sections {
		got := sections[i]
		if got.Label != want.Label {
			t.Errorf("Section %d: label %q, want %q", i, got.Label, want.Label)
		}
		if len(got.Lines) != len(want.Lines) {
			t.Errorf("Section %q: %d lines, want %d\n%s", want.Label, len(got.Lines), len(want.Lines), sheet)
			continue
		}
		for j, wantLine := range want.Lines {
			gotLine := got.Lines[j]
			if gotLine.Spacer != wantLine.Spacer || gotLine.Lyrics != wantLine.Lyrics {
				t.Errorf("Section %q line %d: got %+v, want %+v", want.Label, j, gotLine, wantLine)
			}
			if strings.Join(strings.Fields(gotLine.Chords), " ") != strings.Join(strings.Fields(wantLine.Chords), " ") {
				t.Errorf("Section %q line %d: chords %q, want %q", want.Label, j, gotLine.Chords, wantLine.Chords)
			}
		}
	}
}

func TestExportSongMidiChordColumns(t *testing.T) {
	song := Song{Title: "Columns", Sections: []Section{
		{Label: "A", Lines: []Line{PairedLine("C       G", "one two three four")}},
	}}

	sheet, err := exportAndRead(t, song).GetSheet()
	if err != nil {
		t.Fatalf("GetSheet failed: %v", err)
	}

	sections := ParseChordSheet(sheet)
	if len(sections) != 1 || len(sections[0].Lines) != 1 {
		t.Fatalf("Unexpected sections: %+v", sections)
	}
	chords := sections[0].Lines[0].Chords
	if !strings.HasPrefix(chords, "C ") || strings.Index(chords, "G") != 8 {
		t.Errorf("Expected G at column 8, got %q", chords)
	}
}

func TestExportSongMidiNoSections(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportSongMidi(Song{Title: "Empty"}, &buf); err == nil {
		t.Error("Expected error when exporting a song without sections")
	}
}

func TestParseBPM(t *testing.T) {
	tests := []struct {
		value    string
		expected float64
	}{
		{"120", 120},
		{" 96.5 ", 96.5},
		{DefaultBPM, exportDefaultBPM},
		{"fast", exportDefaultBPM},
		{"-10", exportDefaultBPM},
		{"", exportDefaultBPM},
		{"NaN", exportDefaultBPM},
		{"Inf", exportDefaultBPM},
		{"+Infinity", exportDefaultBPM},
		{"-Inf", exportDefaultBPM},
	}

	for _, tt := range tests {
		if got := parseBPM(tt.value); got != tt.expected {
			t.Errorf("parseBPM(%q) = %v, want %v", tt.value, got, tt.expected)
		}
	}
}
