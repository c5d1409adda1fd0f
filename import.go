package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"
)

// textSource is a plain chord sheet read from disk
type textSource struct {
	body string
}

func (t textSource) GetMetadata() map[string]string { return map[string]string{} }

func (t textSource) GetSheet() (string, error) { return t.body, nil }

// ImportSong reads a song file and normalizes it. The source format is
// picked by extension; anything unrecognized is read as chord-sheet text.
func ImportSong(filename string) (Song, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	fallbackTitle := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))

	var src SongSource
	var label string

	switch ext {
	case ".chart":
		chart, err := OpenChartFile(filename)
		if err != nil {
			return Song{}, err
		}
		src, label = chart, "Chart"

	case ".mid", ".midi":
		file, err := os.Open(filename)
		if err != nil {
			return Song{}, fmt.Errorf("error opening file: %w", err)
		}
		defer file.Close()

		midiFile, err := smf.ReadFrom(file)
		if err != nil {
			return Song{}, fmt.Errorf("error reading MIDI file: %w", err)
		}
		src, label = &MidiFile{SMF: midiFile}, "MIDI"

	case ".sng":
		sngFile, err := OpenSngFile(filename)
		if err != nil {
			return Song{}, fmt.Errorf("error opening SNG file: %w", err)
		}
		defer sngFile.Close()
		src, label = sngFile, "SNG"

	default:
		data, err := os.ReadFile(filename)
		if err != nil {
			return Song{}, fmt.Errorf("error reading file: %w", err)
		}
		src, label = textSource{body: string(data)}, DefaultSource
	}

	log.Debugf("importing %s as %s", filename, label)

	record, err := SourceRecord(src, label)
	if err != nil {
		return Song{}, fmt.Errorf("error reading %s: %w", filename, err)
	}

	song := NormalizeSong(record, fallbackTitle)
	if len(song.Chords) == 0 {
		song.Chords = SheetChords(song.Sections)
	}

	log.Infof("imported %q with %d sections", song.Title, len(song.Sections))
	return song, nil
}
